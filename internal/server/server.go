// Package server exposes a [Humanizer] over HTTP.
//
// Routes:
//
//   - GET  /              service description
//   - GET  /health        {"status":"healthy","version":"full"|"lite"}
//   - POST /humanize      one request, one response; ?debug=true adds an audit
//   - GET  /humanize/ws   WebSocket, one JSON request and response per message
//   - GET  /healthz, /readyz when a [health.Handler] is supplied
//
// Additional handlers such as /metrics and /mcp are mounted with
// [WithHandler]. Every route is wrapped with CORS, tracing, metrics and
// panic recovery.
//
// The Humanizer is held behind an atomic pointer so a configuration reload
// can [Server.SetHumanizer] a new instance while requests are in flight;
// each request uses the instance it started with.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/MrWong99/humanizer/internal/health"
	"github.com/MrWong99/humanizer/internal/observe"
)

// Defaults for [Server].
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
)

// Version is reported by GET /.
var Version = "1.0.0"

type humanizerBox struct{ h Humanizer }

// Server routes HTTP requests to the current Humanizer. It is safe for
// concurrent use.
type Server struct {
	current atomic.Pointer[humanizerBox]
	origins atomic.Pointer[[]string]

	metrics        *observe.Metrics
	health         *health.Handler
	extra          []route
	requestTimeout time.Duration
	maxBodyBytes   int64
}

type route struct {
	pattern string
	handler http.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealth mounts /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithHandler mounts h under pattern, e.g. "GET /metrics" or "/mcp".
func WithHandler(pattern string, h http.Handler) Option {
	return func(s *Server) { s.extra = append(s.extra, route{pattern, h}) }
}

// WithRequestTimeout bounds each humanize request and WebSocket message.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithMaxBodyBytes caps request bodies and WebSocket messages.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithCORSOrigins restricts the allowed origins. Empty allows all.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.SetCORSOrigins(origins) }
}

// New returns a Server that serves h.
func New(h Humanizer, opts ...Option) *Server {
	s := &Server{
		requestTimeout: DefaultRequestTimeout,
		maxBodyBytes:   DefaultMaxBodyBytes,
	}
	s.SetHumanizer(h)
	s.SetCORSOrigins(nil)
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// SetHumanizer swaps in h for all subsequent requests.
func (s *Server) SetHumanizer(h Humanizer) {
	s.current.Store(&humanizerBox{h})
}

// Humanizer returns the Humanizer new requests are served with.
func (s *Server) Humanizer() Humanizer {
	return s.current.Load().h
}

// SetCORSOrigins replaces the allowed origins.
func (s *Server) SetCORSOrigins(origins []string) {
	o := append([]string(nil), origins...)
	s.origins.Store(&o)
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /humanize", s.handleHumanize)
	mux.HandleFunc("GET /humanize/ws", s.handleStream)
	if s.health != nil {
		s.health.Register(mux)
	}
	for _, r := range s.extra {
		mux.Handle(r.pattern, r.handler)
	}

	return s.cors(observe.Middleware(s.metrics)(recoverer(mux)))
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// recoverer turns a handler panic into a 500 response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			observe.Logger(r.Context()).Error("handler panic",
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing text: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// isTooLarge reports whether err came from an [http.MaxBytesReader].
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
