package signaling

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/candidateparser/internal/config"
	"github.com/lanikai/candidateparser/internal/metrics"
)

func startServer(t *testing.T) (*Server, *websocket.Conn) {
	s := NewServer(config.Default(), metrics.New())
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(hs.Close)

	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return s, ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg string) map[string]interface{} {
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(msg)))
	var r map[string]interface{}
	require.NoError(t, ws.ReadJSON(&r))
	return r
}

func TestTrickleCandidate(t *testing.T) {
	_, ws := startServer(t)

	r := roundTrip(t, ws, `{"candidate": "candidate:842163049 1 udp 1686052607 1.2.3.4 46154 typ srflx raddr 10.0.0.17 rport 46154 generation 0", "sdpMid": "0", "sdpMLineIndex": 0}`)
	assert.Equal(t, "candidate", r["type"])
	assert.Equal(t, "0", r["sdpMid"])
	assert.EqualValues(t, 0, r["sdpMLineIndex"])

	c := r["candidate"].(map[string]interface{})
	assert.Equal(t, "842163049", c["foundation"])
	assert.Equal(t, "srflx", c["type"])
	assert.Equal(t, "10.0.0.17", c["relatedAddress"])
	assert.EqualValues(t, 46154, c["relatedPort"])
	assert.Equal(t, map[string]interface{}{"generation": "0"}, c["extensions"])
}

func TestTrickleInvalidCandidate(t *testing.T) {
	s, ws := startServer(t)

	r := roundTrip(t, ws, `{"candidate": "842163049 1 udp abc 1.2.3.4 46154 typ srflx", "sdpMid": "audio"}`)
	assert.Equal(t, "error", r["type"])
	assert.Equal(t, "audio", r["sdpMid"])
	assert.Equal(t, "invalid-number", r["kind"])
	assert.Equal(t, "priority", r["field"])
	assert.Contains(t, r["message"], "abc")
	assert.NotContains(t, r, "candidate")

	r = roundTrip(t, ws, `{"candidate": "842163049 1 udp 1686052607 1.2.3.4 46154 srflx"}`)
	assert.Equal(t, "malformed", r["kind"])
	assert.NotContains(t, r, "field")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `candidateparser_candidates_rejected_total{kind="invalid-number"} 1`)
	assert.Contains(t, rec.Body.String(), `candidateparser_candidates_rejected_total{kind="malformed"} 1`)
	assert.Contains(t, rec.Body.String(), "candidateparser_sessions_active 1")
}

func TestTrickleEndOfCandidates(t *testing.T) {
	_, ws := startServer(t)

	r := roundTrip(t, ws, `{"candidate": "", "sdpMid": "0"}`)
	assert.Equal(t, "end", r["type"])
	assert.Equal(t, "0", r["sdpMid"])

	// The session stays open afterwards.
	r = roundTrip(t, ws, `{"candidate": "candidate:1 1 udp 1 1.2.3.4 5 typ host"}`)
	assert.Equal(t, "candidate", r["type"])
}

func TestTrickleBadJSONClosesSession(t *testing.T) {
	_, ws := startServer(t)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
}

func TestOversizeMessageClosesSession(t *testing.T) {
	s, ws := startServer(t)

	big := `{"candidate": "candidate:1 1 udp 1 1.2.3.4 5 typ host ufrag ` + strings.Repeat("x", maxMessageSize) + `"}`
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(big)))
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	if ce, ok := err.(*websocket.CloseError); ok {
		assert.Equal(t, websocket.CloseMessageTooBig, ce.Code)
	}

	waitFor(t, func() bool {
		return strings.Contains(scrape(t, s), "candidateparser_sessions_active 0")
	})
	assert.NotContains(t, scrape(t, s), "candidateparser_candidates_parsed_total")
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
	assert.Equal(t, "", truncate("", 0))
}

func scrape(t *testing.T, s *Server) string {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestShutdownClosesSessions(t *testing.T) {
	s := NewServer(config.Default(), metrics.New())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	r := roundTrip(t, ws, `{"candidate": "candidate:1 1 udp 1 1.2.3.4 5 typ host"}`)
	assert.Equal(t, "candidate", r["type"])
	assert.Contains(t, scrape(t, s), "candidateparser_sessions_active 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	// Serve waits for sessions to finish before returning.
	assert.Contains(t, scrape(t, s), "candidateparser_sessions_active 0")

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "%v", err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := NewServer(config.Default(), metrics.New())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestReplyJSON(t *testing.T) {
	b, err := json.Marshal(reply{Type: typeEnd})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"end"}`, string(b))
}
