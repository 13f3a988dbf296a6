package core

import "time"

// RouteResult is the outcome of dispatching an intent to a domain agent.
// For multi-domain intents Data holds the ordered []RouteResult of each
// sub-route and Success is always true.
type RouteResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// SubResults returns the per-domain results of a multi-domain route, or nil.
func (r RouteResult) SubResults() []RouteResult {
	subs, _ := r.Data.([]RouteResult)
	return subs
}

// TripOverrides lets callers replace the default travel window and budget.
// Zero values keep the router defaults.
type TripOverrides struct {
	StartDate time.Time
	EndDate   time.Time
	Budget    *float64
}

// RouteContext carries everything the router needs for one dispatch.
type RouteContext struct {
	UserID       string
	SessionID    string
	Message      string
	Preferences  map[string]any
	Conversation ConversationContext
	Trip         TripOverrides
}
