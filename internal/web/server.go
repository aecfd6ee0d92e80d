package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/jaminalder/codex-gomoku/internal/app"
)

// Option configures the handler returned by NewServer.
type Option func(*handlers)

// WithHeartbeat sets the interval of SSE keep-alive comments.
func WithHeartbeat(d time.Duration) Option {
	return func(h *handlers) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(h *handlers) {
		if log != nil {
			h.log = log
		}
	}
}

// NewServer wires routes and returns an http.Handler. It installs a
// renderer on s so subscribers receive board fragments.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		heartbeat: 15 * time.Second,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
		r.Get("/state", h.state)
		r.Get("/events", h.events)
	})
	return r
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"request":  middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
