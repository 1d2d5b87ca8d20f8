package signaling

import (
	"errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lanikai/candidateparser/ice"
	"github.com/lanikai/candidateparser/internal/metrics"
)

// Longest candidate text copied into a log line.
const maxLogged = 128

// A Session is one websocket connection over which a peer trickles ICE
// candidates. Each incoming candidate is answered with its parsed form, or with
// the reason it was rejected.
type Session struct {
	ID string

	ws      *websocket.Conn
	metrics *metrics.Metrics
}

func newSession(ws *websocket.Conn, m *metrics.Metrics) *Session {
	return &Session{
		ID:      uuid.New().String(),
		ws:      ws,
		metrics: m,
	}
}

// Process incoming websocket messages until the connection fails or the peer
// sends something that is not a JSON candidate message.
func (s *Session) run() error {
	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	log.Info("Session %s opened from %v", s.ID, s.ws.RemoteAddr())
	for {
		var msg candidateInit
		if err := s.ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("Session %s closed", s.ID)
				return nil
			}
			return err
		}
		if err := s.ws.WriteJSON(s.handle(msg)); err != nil {
			return err
		}
	}
}

func (s *Session) handle(msg candidateInit) reply {
	if msg.Candidate == "" {
		// An empty candidate indicates the end of ICE trickling.
		log.Debug("Session %s: end of candidates for mid %v", s.ID, deref(msg.SDPMid))
		return reply{Type: typeEnd, SDPMid: msg.SDPMid, SDPMLineIndex: msg.SDPMLineIndex}
	}

	c, err := ice.ParseCandidate(msg.Candidate)
	s.metrics.Observe(c, err)
	if err != nil {
		log.Warn("Session %s: invalid ICE candidate '%s': %v", s.ID, truncate(msg.Candidate, maxLogged), err)
		return errorReply(msg, err)
	}

	log.Debug("Session %s: remote candidate %s", s.ID, c)
	return reply{Type: typeCandidate, SDPMid: msg.SDPMid, SDPMLineIndex: msg.SDPMLineIndex, Candidate: &c}
}

func errorReply(msg candidateInit, err error) reply {
	r := reply{
		Type:          typeError,
		SDPMid:        msg.SDPMid,
		SDPMLineIndex: msg.SDPMLineIndex,
		Kind:          ice.Kind(err),
		Message:       err.Error(),
	}
	var numErr *ice.NumberError
	if errors.As(err, &numErr) {
		r.Field = numErr.Field
	}
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Shorten s to at most n bytes for logging, marking the cut with "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
