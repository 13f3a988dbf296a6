package orchestrator

import (
	"context"
	"fmt"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/intent"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/memory"
	"github.com/hupe1980/planmesh/preference"
	"github.com/hupe1980/planmesh/session"
)

// MetadataPreferences is the session metadata key holding the preference
// snapshot taken at session creation.
const MetadataPreferences = "preferences"

// Router dispatches a classified intent.
type Router interface {
	Route(ctx context.Context, intent core.Intent, rc core.RouteContext) core.RouteResult
}

// Classifier labels a message with an intent.
type Classifier interface {
	Classify(message string) core.Intent
}

// Response is the envelope returned by ProcessMessage.
type Response struct {
	Response              string      `json:"response"`
	Intent                core.Intent `json:"intent"`
	Data                  any         `json:"data,omitempty"`
	SessionID             string      `json:"session_id"`
	RequiresClarification bool        `json:"requires_clarification,omitempty"`
}

// Options configures the Orchestrator.
type Options struct {
	// Stores (defaults to in-memory implementations if not provided)
	Sessions      core.SessionStore
	Preferences   core.PreferenceStore
	Conversations core.ConversationStore

	// Classifier (defaults to the built-in keyword vocabularies)
	Classifier Classifier

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// Recorder (defaults to a no-op recorder if nil)
	Recorder core.Recorder
}

// Orchestrator is the façade combining classification, routing and session
// bookkeeping.
type Orchestrator struct {
	opts   Options
	router Router
	locks  *keyLock
}

// New creates an Orchestrator dispatching through router. Any unset store is
// initialized with an in-memory implementation.
func New(router Router, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Sessions:      session.NewInMemoryStore(),
		Preferences:   preference.NewInMemoryStore(),
		Conversations: memory.NewInMemoryStore(),
		Classifier:    intent.Default(),
		Logger:        logging.NoOpLogger{},
		Recorder:      core.NoopRecorder{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Recorder == nil {
		opts.Recorder = core.NoopRecorder{}
	}
	return &Orchestrator{opts: opts, router: router, locks: newKeyLock()}
}

// ProcessMessage handles one user message. An empty sessionID starts a new
// session; an unknown one yields a *core.NotFoundError.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userID, message, sessionID string) (*Response, error) {
	if userID == "" {
		return nil, core.NewValidationError("user_id", "required")
	}
	log := logging.With(o.opts.Logger, "user_id", userID)

	if sessionID == "" {
		sess, err := o.createSession(ctx, userID)
		if err != nil {
			return nil, err
		}
		sessionID = sess.ID
		log.Info("orchestrator.session.created", "session_id", sessionID)
	}

	unlock := o.locks.Lock(sessionID)
	defer unlock()

	sess, err := o.opts.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess == nil || sess.UserID != userID {
		return nil, core.SessionNotFound(sessionID)
	}

	prefs, err := o.opts.Preferences.GetAllPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	in := o.opts.Classifier.Classify(message)
	o.opts.Recorder.IntentClassified(in)
	log.Info("orchestrator.intent", "session_id", sessionID, "intent", string(in))

	if in == core.IntentAmbiguous {
		return &Response{
			Response:              ClarificationText,
			Intent:                in,
			SessionID:             sessionID,
			RequiresClarification: true,
		}, nil
	}

	conv, err := o.opts.Conversations.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation context: %w", err)
	}

	res := o.router.Route(ctx, in, core.RouteContext{
		UserID:       userID,
		SessionID:    sessionID,
		Message:      message,
		Preferences:  prefs,
		Conversation: conv,
	})
	summary := Summarize(in, res)

	if plan := mealPlanOf(in, res); plan != nil {
		if err := o.opts.Conversations.RememberMealPlan(ctx, sessionID, plan); err != nil {
			return nil, fmt.Errorf("remember meal plan: %w", err)
		}
	}

	if err := o.opts.Sessions.Update(ctx, sessionID,
		core.NewMessage(core.RoleUser, message),
		core.NewMessage(core.RoleAssistant, summary),
	); err != nil {
		return nil, fmt.Errorf("update session %s: %w", sessionID, err)
	}

	return &Response{Response: summary, Intent: in, Data: res.Data, SessionID: sessionID}, nil
}

func (o *Orchestrator) createSession(ctx context.Context, userID string) (*core.Session, error) {
	snapshot, err := o.opts.Preferences.GetAllPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	sess, err := o.opts.Sessions.Create(ctx, userID, map[string]any{MetadataPreferences: snapshot})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// mealPlanOf returns the meal plan produced by a successful turn, if any.
func mealPlanOf(in core.Intent, res core.RouteResult) *core.MealPlan {
	switch in {
	case core.IntentMealPlanning:
		if plan, ok := res.Data.(*core.MealPlan); ok && res.Success {
			return plan
		}
	case core.IntentMultiDomain:
		for _, sub := range res.SubResults() {
			if plan, ok := sub.Data.(*core.MealPlan); ok && sub.Success && plan != nil {
				return plan
			}
		}
	}
	return nil
}

// History returns the messages of a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]core.Message, error) {
	sess, err := o.opts.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, core.SessionNotFound(sessionID)
	}
	return sess.Messages, nil
}

// Session returns a session or a *core.NotFoundError.
func (o *Orchestrator) Session(ctx context.Context, sessionID string) (*core.Session, error) {
	sess, err := o.opts.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, core.SessionNotFound(sessionID)
	}
	return sess, nil
}

// CloseSession deletes a session and its conversation context.
func (o *Orchestrator) CloseSession(ctx context.Context, sessionID string) error {
	unlock := o.locks.Lock(sessionID)
	defer unlock()
	if err := o.opts.Sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	return o.opts.Conversations.Forget(ctx, sessionID)
}

// ListSessions returns the user's sessions ordered by creation time.
func (o *Orchestrator) ListSessions(ctx context.Context, userID string) ([]*core.Session, error) {
	return o.opts.Sessions.ListByUser(ctx, userID)
}
