package router

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/logging"
)

// Result messages surfaced verbatim to users.
const (
	MsgNeedMealPlan    = "Please generate a meal plan first before creating a shopping list"
	MsgNeedDestination = "Please specify a destination for your trip"
	MsgMultiDomain     = "Completed multi-domain request"
	errorPrefix        = "Error processing request: "
)

// Options configures a Router.
type Options struct {
	// AgentTimeout bounds every domain agent call. Zero or negative disables
	// the bound.
	AgentTimeout time.Duration
	// ParallelFanOut runs multi-domain sub-routes concurrently.
	ParallelFanOut bool
	// DefaultBudget is the travel budget when the caller supplies none.
	DefaultBudget float64
	// TripLeadDays is the offset from today of the default trip start.
	TripLeadDays int
	// TripNights is the length of the default trip window.
	TripNights int
	// Now is the clock used for default trip dates.
	Now func() time.Time
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// Recorder (defaults to a no-op recorder if nil)
	Recorder core.Recorder
}

// DefaultOptions holds the router defaults.
var DefaultOptions = Options{
	AgentTimeout:  30 * time.Second,
	DefaultBudget: 2000,
	TripLeadDays:  30,
	TripNights:    7,
}

// Router maps intents to domain agent calls.
type Router struct {
	agents core.Agents
	opts   Options
}

// New creates a Router over agents.
func New(agents core.Agents, optFns ...func(o *Options)) *Router {
	opts := DefaultOptions
	opts.Now = time.Now
	opts.Logger = logging.NoOpLogger{}
	opts.Recorder = core.NoopRecorder{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Recorder == nil {
		opts.Recorder = core.NoopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Router{agents: agents, opts: opts}
}

// Route dispatches intent. It never returns an agent failure as an error;
// failures are reported through RouteResult.Success and Message.
func (r *Router) Route(ctx context.Context, intent core.Intent, rc core.RouteContext) core.RouteResult {
	var res core.RouteResult
	switch intent {
	case core.IntentMealPlanning:
		res = r.routeMeal(ctx, rc)
	case core.IntentShopping:
		res = r.routeShopping(ctx, rc)
	case core.IntentTravel:
		res = r.routeTravel(ctx, rc)
	case core.IntentMultiDomain:
		res = r.routeMulti(ctx, rc)
	default:
		res = core.RouteResult{Success: false, Message: fmt.Sprintf("Unknown intent: %s", intent)}
	}
	r.opts.Recorder.RouteCompleted(intent, res.Success)
	r.opts.Logger.Debug("router.route.complete", "intent", string(intent), "success", res.Success, "user_id", rc.UserID)
	return res
}

func (r *Router) routeMeal(ctx context.Context, rc core.RouteContext) core.RouteResult {
	if r.agents.Meal == nil {
		return failed(&core.DomainAgentError{Agent: "meal", Err: errors.New("no meal agent configured")})
	}
	days, ok := ExtractDays(rc.Message)
	if !ok {
		days = DefaultDays
	}
	plan, err := call(ctx, r, "meal", func(ctx context.Context) (*core.MealPlan, error) {
		return r.agents.Meal.GenerateMealPlan(ctx, rc.UserID, days, rc.Preferences)
	})
	if err != nil {
		return failed(err)
	}
	return core.RouteResult{Success: true, Data: plan, Message: fmt.Sprintf("Generated %d-day meal plan", days)}
}

func (r *Router) routeShopping(ctx context.Context, rc core.RouteContext) core.RouteResult {
	plan := rc.Conversation.LastMealPlan
	if plan == nil {
		return core.RouteResult{Success: false, Message: MsgNeedMealPlan}
	}
	if r.agents.Shopping == nil {
		return failed(&core.DomainAgentError{Agent: "shopping", Err: errors.New("no shopping agent configured")})
	}
	list, err := call(ctx, r, "shopping", func(ctx context.Context) (*core.ShoppingList, error) {
		return r.agents.Shopping.GenerateShoppingList(ctx, rc.UserID, plan, rc.Preferences)
	})
	if err != nil {
		return failed(err)
	}
	n := 0
	if list != nil {
		n = len(list.Items)
	}
	return core.RouteResult{Success: true, Data: list, Message: fmt.Sprintf("Generated shopping list with %d items", n)}
}

func (r *Router) routeTravel(ctx context.Context, rc core.RouteContext) core.RouteResult {
	dest, ok := ExtractDestination(rc.Message)
	if !ok {
		return core.RouteResult{Success: false, Message: MsgNeedDestination}
	}
	if r.agents.Travel == nil {
		return failed(&core.DomainAgentError{Agent: "travel", Err: errors.New("no travel agent configured")})
	}
	req := r.tripRequest(dest, rc.Trip)
	trip, err := call(ctx, r, "travel", func(ctx context.Context) (*core.TripPlan, error) {
		return r.agents.Travel.PlanTrip(ctx, rc.UserID, req, rc.Preferences)
	})
	if err != nil {
		return failed(err)
	}
	return core.RouteResult{Success: true, Data: trip, Message: fmt.Sprintf("Created trip plan for %s", dest)}
}

// tripRequest applies caller overrides on top of the default window and budget.
func (r *Router) tripRequest(dest string, o core.TripOverrides) core.TripRequest {
	now := r.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	req := core.TripRequest{
		Destination: dest,
		StartDate:   today.AddDate(0, 0, r.opts.TripLeadDays),
		Budget:      r.opts.DefaultBudget,
	}
	if !o.StartDate.IsZero() {
		req.StartDate = o.StartDate
	}
	req.EndDate = req.StartDate.AddDate(0, 0, r.opts.TripNights)
	if !o.EndDate.IsZero() {
		req.EndDate = o.EndDate
	}
	if o.Budget != nil {
		req.Budget = *o.Budget
	}
	return req
}

func (r *Router) routeMulti(ctx context.Context, rc core.RouteContext) core.RouteResult {
	lower := strings.ToLower(rc.Message)
	var intents []core.Intent
	for _, d := range fanOutDomains {
		if d.presentIn(lower) {
			intents = append(intents, d.intent)
		}
	}

	results := make([]core.RouteResult, len(intents))
	if r.opts.ParallelFanOut && len(intents) > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		for i, in := range intents {
			eg.Go(func() error {
				results[i] = r.Route(egCtx, in, rc)
				return nil
			})
		}
		_ = eg.Wait() // sub-routes report failures in their results
	} else {
		for i, in := range intents {
			results[i] = r.Route(ctx, in, rc)
		}
	}
	return core.RouteResult{Success: true, Data: results, Message: MsgMultiDomain}
}

type outcome[T any] struct {
	val T
	err error
}

// call runs fn under the agent timeout, converting panics, errors and
// expiry into a *core.DomainAgentError.
func call[T any](ctx context.Context, r *Router, agent string, fn func(context.Context) (T, error)) (T, error) {
	if r.opts.AgentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.AgentTimeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan outcome[T], 1)
	go func() {
		var o outcome[T]
		defer func() {
			if rec := recover(); rec != nil {
				o.err = &panicError{val: rec, stack: debug.Stack()}
			}
			done <- o
		}()
		o.val, o.err = fn(ctx)
	}()

	var (
		zero T
		o    outcome[T]
	)
	select {
	case o = <-done:
	case <-ctx.Done():
		o.err = ctx.Err()
		if errors.Is(o.err, context.DeadlineExceeded) {
			o.err = errTimedOut
		}
	}
	dur := time.Since(start)

	status := core.OutcomeSuccess
	var pe *panicError
	switch {
	case o.err == nil:
	case errors.Is(o.err, errTimedOut):
		status = core.OutcomeTimeout
	case errors.As(o.err, &pe):
		status = core.OutcomePanic
		r.opts.Logger.Error("router.agent.panic", "agent", agent, "recover", fmt.Sprint(pe.val), "stack", string(pe.stack))
	default:
		status = core.OutcomeError
	}
	r.opts.Recorder.AgentCalled(agent, status, dur)
	logging.LogAgentCall(r.opts.Logger, agent, dur, o.err == nil, o.err)

	if o.err != nil {
		return zero, &core.DomainAgentError{Agent: agent, Err: o.err}
	}
	return o.val, nil
}

var errTimedOut = errors.New("timed out")

type panicError struct {
	val   any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.val) }

// failed converts an agent error into a failed result.
func failed(err error) core.RouteResult {
	var de *core.DomainAgentError
	if errors.As(err, &de) && errors.Is(de.Err, errTimedOut) {
		return core.RouteResult{Success: false, Message: errorPrefix + de.Agent + " agent timed out"}
	}
	return core.RouteResult{Success: false, Message: errorPrefix + err.Error()}
}
