// Package planmesh provides a high-level façade over the orchestrator, the
// router and the storage services of a multi-domain planning assistant
// (meal planning, grocery shopping and travel). Most applications interact
// with this package by:
//  1. Creating a PlanMesh via New() (optionally overriding default in-memory
//     stores and stand-in agents) or via FromConfig()
//  2. Sending user messages through ProcessMessage
//  3. Serving the HTTP API returned by Handler
//
// All defaults are safe for local development and testing; production
// deployments supply real domain agents, durable stores and a structured
// logger.
package planmesh

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/planmesh/agents/stub"
	"github.com/hupe1980/planmesh/config"
	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/httpapi"
	"github.com/hupe1980/planmesh/internal/sqlitedb"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/memory"
	"github.com/hupe1980/planmesh/metrics"
	"github.com/hupe1980/planmesh/orchestrator"
	"github.com/hupe1980/planmesh/preference"
	"github.com/hupe1980/planmesh/router"
	"github.com/hupe1980/planmesh/session"
	"github.com/hupe1980/planmesh/state"
)

// Options configures the PlanMesh instance.
type Options struct {
	// Agents are the domain agents. Unset agents are replaced by the
	// deterministic stand-ins from agents/stub.
	Agents core.Agents

	// Router tuning (timeouts, fan-out mode, travel defaults).
	RouterOptions router.Options

	// Stores (defaults to in-memory implementations if not provided)
	Sessions      core.SessionStore
	States        core.StateStore
	Preferences   core.PreferenceStore
	Conversations core.ConversationStore

	// Metrics is optional; when set it records classification, routing,
	// agent and HTTP measurements and is served at /metrics.
	Metrics *metrics.Collector

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// PlanMesh is the high-level façade aggregating the orchestrator and its
// services.
type PlanMesh struct {
	opts   Options
	router *router.Router
	orch   *orchestrator.Orchestrator
	closer func() error
}

// New creates a new PlanMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *PlanMesh {
	opts := Options{
		RouterOptions: router.DefaultOptions,
		Sessions:      session.NewInMemoryStore(),
		States:        state.NewInMemoryStore(),
		Preferences:   preference.NewInMemoryStore(),
		Conversations: memory.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Agents.Meal == nil {
		opts.Agents.Meal = stub.NewMealPlanner(opts.RouterOptions.Now)
	}
	if opts.Agents.Shopping == nil {
		opts.Agents.Shopping = stub.NewShoppingPlanner(opts.Preferences, opts.RouterOptions.Now)
	}
	if opts.Agents.Travel == nil {
		opts.Agents.Travel = stub.NewTravelPlanner()
	}

	var recorder core.Recorder = core.NoopRecorder{}
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}

	r := router.New(opts.Agents, func(o *router.Options) {
		*o = opts.RouterOptions
		o.Logger = opts.Logger
		o.Recorder = recorder
	})

	orch := orchestrator.New(r, func(o *orchestrator.Options) {
		o.Sessions = opts.Sessions
		o.Preferences = opts.Preferences
		o.Conversations = opts.Conversations
		o.Logger = opts.Logger
		o.Recorder = recorder
	})

	return &PlanMesh{opts: opts, router: r, orch: orch}
}

// FromConfig builds a PlanMesh from cfg, opening the configured storage
// backend and logger. optFns are applied after the config-derived options.
// The caller must Close the returned instance.
func FromConfig(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*PlanMesh, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	opts := []func(o *Options){func(o *Options) {
		o.Logger = logger
		o.RouterOptions.AgentTimeout = cfg.GetAgentTimeout()
		o.RouterOptions.ParallelFanOut = cfg.Router.ParallelFanOut
		o.RouterOptions.DefaultBudget = cfg.Router.DefaultBudget
		o.RouterOptions.TripLeadDays = cfg.Router.TripLeadDays
		o.RouterOptions.TripNights = cfg.Router.TripNights
	}}

	var closer func() error
	switch cfg.Storage.Backend {
	case config.BackendMemory:
	case config.BackendFile:
		states, err := state.NewFileStore(cfg.StateDir())
		if err != nil {
			return nil, err
		}
		prefs, err := preference.NewFileStore(cfg.PreferenceDir())
		if err != nil {
			return nil, err
		}
		opts = append(opts, func(o *Options) {
			o.States = states
			o.Preferences = prefs
		})
	case config.BackendSQLite:
		db, err := sqlitedb.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		states, sessions, err := openSQLiteStores(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		prefs, err := preference.NewFileStore(cfg.PreferenceDir())
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		opts = append(opts, func(o *Options) {
			o.States = states
			o.Sessions = sessions
			o.Preferences = prefs
		})
		closer = db.Close
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	logger.Info("planmesh.storage.opened", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)

	m := New(append(opts, optFns...)...)
	m.closer = closer
	return m, nil
}

func openSQLiteStores(ctx context.Context, db *sql.DB) (*state.SQLiteStore, *session.SQLiteStore, error) {
	states, err := state.NewSQLiteStore(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := session.NewSQLiteStore(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return states, sessions, nil
}

// NewLogger builds the Logger selected by cfg.
func NewLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.Level)
	switch cfg.Backend {
	case "", "slog":
		return logging.NewSlogLogger(level, cfg.Format, false), nil
	case "zap":
		return logging.NewZapLogger(level, cfg.Format)
	default:
		return nil, fmt.Errorf("unknown logging backend %q", cfg.Backend)
	}
}

// ProcessMessage handles one user message; see orchestrator.ProcessMessage.
func (m *PlanMesh) ProcessMessage(ctx context.Context, userID, message, sessionID string) (*orchestrator.Response, error) {
	return m.orch.ProcessMessage(ctx, userID, message, sessionID)
}

// Orchestrator returns the underlying orchestrator.
func (m *PlanMesh) Orchestrator() *orchestrator.Orchestrator { return m.orch }

// Router returns the underlying router.
func (m *PlanMesh) Router() *router.Router { return m.router }

// States returns the task state store.
func (m *PlanMesh) States() core.StateStore { return m.opts.States }

// Preferences returns the preference store.
func (m *PlanMesh) Preferences() core.PreferenceStore { return m.opts.Preferences }

// Logger returns the configured logger.
func (m *PlanMesh) Logger() logging.Logger { return m.opts.Logger }

// Handler returns the HTTP API. /metrics is mounted when a metrics collector
// was configured.
func (m *PlanMesh) Handler() http.Handler {
	return httpapi.New(m.orch, m.opts.States, func(o *httpapi.Options) {
		o.Logger = m.opts.Logger
		if m.opts.Metrics != nil {
			o.MetricsHandler = m.opts.Metrics.Handler()
			o.Observer = m.opts.Metrics
		}
	})
}

// Serve runs the HTTP API on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (m *PlanMesh) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		m.opts.Logger.Info("planmesh.http.listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	m.opts.Logger.Info("planmesh.http.shutdown", "timeout", shutdownTimeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close flushes a zap logger and releases storage handles opened by
// FromConfig.
func (m *PlanMesh) Close() error {
	if z, ok := m.opts.Logger.(*logging.ZapAdapter); ok {
		// Sync reports EINVAL for terminals; a failed flush is not actionable.
		_ = z.Sync()
	}
	if m.closer == nil {
		return nil
	}
	return m.closer()
}
