package ice

import (
	"strconv"
	"strings"

	errors "golang.org/x/xerrors"
)

const (
	attributePrefix = "candidate:"
	typKeyword      = "typ"

	// foundation, component-id, transport, priority, address, port, "typ", type
	minTokens = 8
)

// An ICE candidate line is a string of the form
//   [candidate:]{foundation} {component-id} {transport} {priority} {address} {port} typ {type} *({name} {value})
// See [RFC8839 §5.1]. Address, transport and type are taken verbatim; only the
// numeric fields are validated.
func ParseCandidate(line string) (Candidate, error) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return Candidate{}, ErrEmptyInput
	}
	if len(tokens) < minTokens {
		return Candidate{}, errors.Errorf("expected at least %d fields, got %d: %w", minTokens, len(tokens), ErrMalformed)
	}

	var c Candidate
	var err error
	c.foundation = tokens[0]
	if c.component, err = parseUint(FieldComponent, tokens[1]); err != nil {
		return Candidate{}, err
	}
	c.transport = tokens[2]
	if c.priority, err = parseUint(FieldPriority, tokens[3]); err != nil {
		return Candidate{}, err
	}
	c.address = tokens[4]
	if c.port, err = parsePort(FieldPort, tokens[5]); err != nil {
		return Candidate{}, err
	}
	if tokens[6] != typKeyword {
		return Candidate{}, errors.Errorf("expected %q keyword, got %q: %w", typKeyword, tokens[6], ErrMalformed)
	}
	c.typ = tokens[7]

	// The rest of the candidate line consists of "name value" pairs.
	rest := tokens[minTokens:]
	if len(rest)%2 != 0 {
		return Candidate{}, errors.Errorf("unmatched attribute name %q: %w", rest[len(rest)-1], ErrMalformed)
	}
	for i := 0; i < len(rest); i += 2 {
		name, value := rest[i], rest[i+1]
		switch name {
		case "raddr":
			c.raddr, c.hasRaddr = value, true
		case "rport":
			if c.rport, err = parsePort(FieldRelPort, value); err != nil {
				return Candidate{}, err
			}
			c.hasRport = true
		default:
			c.setAttribute(name, value)
		}
	}

	return c, nil
}

// Split a candidate line into whitespace-separated tokens, after removing the
// line terminator and the optional attribute name.
func tokenize(line string) []string {
	// TrimSpace also takes care of a trailing CRLF or LF.
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, attributePrefix)
	return strings.Fields(line)
}

func parseUint(field, s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &NumberError{field, s, err}
	}
	return n, nil
}

// Ports are not range-checked against 65535, but must be non-negative
// decimal integers that fit an int32.
func parsePort(field, s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, &NumberError{field, s, err}
	}
	return int(n), nil
}
