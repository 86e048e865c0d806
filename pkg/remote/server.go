package remote

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// MountFunc builds and mounts a tree for one connection. The returned
// unmount function runs when the connection closes; it may be nil.
type MountFunc func(r *http.Request, adapter *Adapter) (unmount func(), err error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithCheckOrigin overrides the websocket origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// WithReadLimit bounds incoming frame size in bytes.
func WithReadLimit(limit int64) Option {
	return func(s *Server) { s.readLimit = limit }
}

// Server accepts websocket connections and mounts one tree per session.
type Server struct {
	mount     MountFunc
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	readLimit int64
	router    chi.Router
}

// NewServer creates a server around the given mount function.
func NewServer(mount MountFunc, opts ...Option) *Server {
	s := &Server{
		mount:  mount,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		readLimit: 1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Get("/live", s.handleLive)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.readLimit)
	conn.SetReadDeadline(time.Time{})

	adapter := New()
	sess := newSession(conn, adapter, s.logger)

	unmount, err := s.mount(r, adapter)
	if err != nil {
		s.logger.Error("mount failed", "error", err)
		conn.Close()
		return
	}
	sess.unmount = unmount

	// Ship the initial render before reading events.
	if err := sess.Flush(); err != nil {
		s.logger.Error("initial flush failed", "error", err)
		conn.Close()
		return
	}

	s.logger.Info("session started", "remote", r.RemoteAddr, "request_id", chimw.GetReqID(r.Context()))
	sess.run(r.Context())
}
