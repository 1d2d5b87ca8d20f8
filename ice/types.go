package ice

import "strings"

// Candidate types defined by [RFC8445 §5.1.1]. The set is extensible, so
// Candidate.Type may hold other tokens too.
const (
	TypeHost            = "host"
	TypeServerReflexive = "srflx"
	TypePeerReflexive   = "prflx"
	TypeRelay           = "relay"
)

// IsUDP reports whether the transport is UDP, ignoring case.
func (c Candidate) IsUDP() bool {
	return strings.EqualFold(c.transport, "udp")
}

func (c Candidate) IsKnownType() bool {
	switch c.typ {
	case TypeHost, TypeServerReflexive, TypePeerReflexive, TypeRelay:
		return true
	}
	return false
}

func (c Candidate) IsReflexive() bool {
	return c.typ == TypeServerReflexive || c.typ == TypePeerReflexive
}

func (c Candidate) IsRelay() bool {
	return c.typ == TypeRelay
}

// IsMDNS reports whether the connection address is an mDNS hostname, as used
// by browsers to hide host IPs.
func (c Candidate) IsMDNS() bool {
	return strings.HasSuffix(c.address, ".local")
}
