package signaling

import (
	"github.com/lanikai/candidateparser/ice"
)

// A trickled candidate, in the shape of the browser's RTCIceCandidateInit.
type candidateInit struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

// Reply types
const (
	typeCandidate = "candidate"
	typeError     = "error"
	typeEnd       = "end"
)

// Server-to-client message. Exactly one of Candidate or Kind is set for
// "candidate" and "error" replies; "end" carries only the echoed mid/index.
type reply struct {
	Type          string         `json:"type"`
	SDPMid        *string        `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16        `json:"sdpMLineIndex,omitempty"`
	Candidate     *ice.Candidate `json:"candidate,omitempty"`

	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}
