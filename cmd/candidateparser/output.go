package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/lanikai/candidateparser/ice"
)

// A printer writes one parsed candidate per call.
type printer interface {
	Print(c ice.Candidate) error
}

type jsonPrinter struct {
	enc *json.Encoder
}

func newJSONPrinter(w io.Writer) *jsonPrinter {
	return &jsonPrinter{json.NewEncoder(w)}
}

func (p *jsonPrinter) Print(c ice.Candidate) error {
	return p.enc.Encode(c)
}

type textPrinter struct {
	w     io.Writer
	key   *color.Color
	value *color.Color
}

func newTextPrinter(w io.Writer, colorize bool) *textPrinter {
	p := &textPrinter{
		w:     w,
		key:   color.New(color.FgCyan),
		value: color.New(color.Bold),
	}
	if colorize {
		p.key.EnableColor()
		p.value.EnableColor()
	} else {
		p.key.DisableColor()
		p.value.DisableColor()
	}
	return p
}

func (p *textPrinter) field(name string, value interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.key.Sprintf("%-18s", name+":"), p.value.Sprint(value))
}

func (p *textPrinter) Print(c ice.Candidate) error {
	p.field("foundation", c.Foundation())
	p.field("component", c.Component())
	p.field("transport", c.Transport())
	p.field("priority", c.Priority())
	p.field("address", c.Address())
	p.field("port", c.Port())
	p.field("type", c.Type())
	if raddr, ok := c.RelatedAddress(); ok {
		p.field("related address", raddr)
	}
	if rport, ok := c.RelatedPort(); ok {
		p.field("related port", rport)
	}
	for _, name := range c.ExtensionNames() {
		v, _ := c.Extension(name)
		p.field(name, v)
	}
	_, err := fmt.Fprintln(p.w)
	return err
}
