package ice

import (
	"encoding/json"
	"fmt"
	"strings"
)

// An ICE candidate, as carried by an SDP "candidate" attribute.
// See [RFC8839 §5.1] for a definition of fields.
//
// A Candidate is only ever produced fully formed by ParseCandidate and is not
// modified afterwards.
type Candidate struct {
	foundation string
	component  uint64
	transport  string
	priority   uint64
	address    string
	port       int
	typ        string

	// Optional
	raddr    string
	hasRaddr bool
	rport    int
	hasRport bool

	// Extension attributes, keyed by name. names records first-insertion order.
	attrs map[string]string
	names []string
}

func (c Candidate) Foundation() string { return c.foundation }
func (c Candidate) Component() uint64  { return c.component }
func (c Candidate) Transport() string  { return c.transport }
func (c Candidate) Priority() uint64   { return c.priority }
func (c Candidate) Address() string    { return c.address }
func (c Candidate) Port() int          { return c.port }
func (c Candidate) Type() string       { return c.typ }

// RelatedAddress returns the "raddr" value, if the line carried one.
func (c Candidate) RelatedAddress() (string, bool) {
	return c.raddr, c.hasRaddr
}

// RelatedPort returns the "rport" value, if the line carried one.
func (c Candidate) RelatedPort() (int, bool) {
	return c.rport, c.hasRport
}

// Extensions returns a copy of the extension attributes. The result is never
// nil.
func (c Candidate) Extensions() map[string]string {
	m := make(map[string]string, len(c.attrs))
	for k, v := range c.attrs {
		m[k] = v
	}
	return m
}

// Extension looks up a single extension attribute by name.
func (c Candidate) Extension(name string) (string, bool) {
	v, ok := c.attrs[name]
	return v, ok
}

// ExtensionNames lists extension attribute names in the order they first
// appeared on the line.
func (c Candidate) ExtensionNames() []string {
	return append([]string(nil), c.names...)
}

func (c *Candidate) setAttribute(name, value string) {
	if c.attrs == nil {
		c.attrs = make(map[string]string)
	}
	if _, found := c.attrs[name]; !found {
		c.names = append(c.names, name)
	}
	c.attrs[name] = value
}

// Debug rendering of every field. This is not SDP.
func (c Candidate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate{foundation=%s component=%d transport=%s priority=%d address=%s port=%d type=%s",
		c.foundation, c.component, c.transport, c.priority, c.address, c.port, c.typ)
	if c.hasRaddr {
		fmt.Fprintf(&b, " raddr=%s", c.raddr)
	}
	if c.hasRport {
		fmt.Fprintf(&b, " rport=%d", c.rport)
	}
	for _, name := range c.names {
		fmt.Fprintf(&b, " %s=%s", name, c.attrs[name])
	}
	b.WriteByte('}')
	return b.String()
}

type candidateJSON struct {
	Foundation     string            `json:"foundation"`
	Component      uint64            `json:"component"`
	Transport      string            `json:"transport"`
	Priority       uint64            `json:"priority"`
	Address        string            `json:"address"`
	Port           int               `json:"port"`
	Type           string            `json:"type"`
	RelatedAddress *string           `json:"relatedAddress,omitempty"`
	RelatedPort    *int              `json:"relatedPort,omitempty"`
	Extensions     map[string]string `json:"extensions"`
}

// MarshalJSON implements json.Marshaler. Absent related address/port fields
// are omitted.
func (c Candidate) MarshalJSON() ([]byte, error) {
	v := candidateJSON{
		Foundation: c.foundation,
		Component:  c.component,
		Transport:  c.transport,
		Priority:   c.priority,
		Address:    c.address,
		Port:       c.port,
		Type:       c.typ,
		Extensions: c.Extensions(),
	}
	if raddr, ok := c.RelatedAddress(); ok {
		v.RelatedAddress = &raddr
	}
	if rport, ok := c.RelatedPort(); ok {
		v.RelatedPort = &rport
	}
	return json.Marshal(v)
}
