package signaling

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lanikai/candidateparser/internal/config"
	"github.com/lanikai/candidateparser/internal/logging"
	"github.com/lanikai/candidateparser/internal/metrics"
)

var log = logging.DefaultLogger.WithTag("signaling")

const (
	shutdownTimeout = 5 * time.Second

	// Upper bound on a single incoming websocket message. Candidate lines are
	// short; anything larger is not a trickle message.
	maxMessageSize = 64 * 1024

	closeWait = time.Second
)

// Server accepts trickled ICE candidates over a websocket and exposes
// Prometheus metrics about them.
type Server struct {
	Metrics *metrics.Metrics

	server   *http.Server
	upgrader websocket.Upgrader

	// Open sessions. Hijacked websocket connections are not tracked by
	// http.Server, so Shutdown closes them through closeSessions.
	mu       sync.Mutex
	sessions map[*Session]struct{}
	closing  bool
	active   sync.WaitGroup
}

func NewServer(cfg config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		Metrics:  m,
		sessions: make(map[*Session]struct{}),
		upgrader: websocket.Upgrader{
			// Signaling peers are browsers on arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	router := http.NewServeMux()
	router.HandleFunc(cfg.WebsocketPath, s.handleWebsocket)
	router.Handle(cfg.MetricsPath, m.Handler())

	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server.RegisterOnShutdown(s.closeSessions)
	return s
}

// Handler exposes the router, for embedding in another server or for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", ln.Addr())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)

	// RegisterOnShutdown hooks run asynchronously; close here too so that no
	// session can start after we begin waiting.
	s.closeSessions()
	if werr := s.waitSessions(shutdownCtx); err == nil {
		err = werr
	}
	return err
}

// Send a going-away close frame to every open session and drop its
// connection. Sessions opened afterwards are refused.
func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return
	}
	s.closing = true

	for session := range s.sessions {
		goAway(session.ws)
		session.ws.Close()
	}
	if n := len(s.sessions); n > 0 {
		log.Info("Closed %d session(s) for shutdown", n)
	}
}

func goAway(ws *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
}

func (s *Server) waitSessions(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register a session, unless the server is shutting down.
func (s *Server) add(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[session] = struct{}{}
	s.active.Add(1)
	return true
}

func (s *Server) remove(session *Session) {
	s.mu.Lock()
	delete(s.sessions, session)
	s.mu.Unlock()
	s.active.Done()
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade websocket connection
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: %v", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxMessageSize)

	session := newSession(ws, s.Metrics)
	if !s.add(session) {
		goAway(ws)
		return
	}
	defer s.remove(session)

	if err := session.run(); err != nil {
		if s.isClosing() {
			log.Debug("Session %s: %v", session.ID, err)
		} else {
			log.Warn("Session %s: %v", session.ID, err)
		}
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}
