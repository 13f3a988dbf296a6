// Package httpapi exposes the orchestrator and the task state store over
// JSON/HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/orchestrator"
)

// defaultMaxRequestBodyBytes limits request bodies (1 MiB).
const defaultMaxRequestBodyBytes = 1 << 20

// Orchestrator is the message and session surface served under /v1.
type Orchestrator interface {
	ProcessMessage(ctx context.Context, userID, message, sessionID string) (*orchestrator.Response, error)
	Session(ctx context.Context, sessionID string) (*core.Session, error)
	CloseSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context, userID string) ([]*core.Session, error)
}

// HTTPObserver records served requests.
type HTTPObserver interface {
	ObserveHTTP(method, route string, code int, d time.Duration)
}

// Options configures the Server.
type Options struct {
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// Observer receives per-request measurements when set.
	Observer HTTPObserver
	// MaxBodyBytes limits request bodies (defaults to 1 MiB).
	MaxBodyBytes int64
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Server routes HTTP requests to the orchestrator and state store.
type Server struct {
	orch   Orchestrator
	states core.StateStore
	opts   Options
	mux    *http.ServeMux
}

// New creates a Server and registers all routes.
func New(orch Orchestrator, states core.StateStore, optFns ...func(o *Options)) *Server {
	opts := Options{MaxBodyBytes: defaultMaxRequestBodyBytes, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxRequestBodyBytes
	}
	s := &Server{orch: orch, states: states, opts: opts, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	if s.opts.MetricsHandler != nil {
		s.mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	s.mux.HandleFunc("POST /v1/messages", s.handleMessage)

	s.mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("GET /v1/users/{user_id}/sessions", s.handleListSessions)

	s.mux.HandleFunc("GET /v1/users/{user_id}/tasks", s.handleListTasks)
	s.mux.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("PUT /v1/tasks/{id}", s.handleSaveTask)
	s.mux.HandleFunc("PUT /v1/tasks/{id}/status", s.handleTaskStatus)
	s.mux.HandleFunc("DELETE /v1/tasks/{id}", s.handleDeleteTask)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	}
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	dur := time.Since(start)
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveHTTP(r.Method, route, rec.code, dur)
	}
	s.opts.Logger.Debug("http.request", "method", r.Method, "path", r.URL.Path, "code", rec.code, "duration_ms", dur.Milliseconds())
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps err onto a status code. Internal errors are logged and
// reported generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	var nf *core.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeJSONError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ve):
		writeJSONError(w, http.StatusBadRequest, ve.Error())
	default:
		s.opts.Logger.Error("http.request.failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.NewValidationError("body", "invalid json")
	}
	return nil
}
