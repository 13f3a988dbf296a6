package core

import "time"

// Agent call outcomes reported to a Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomePanic   = "panic"
)

// Recorder receives orchestration measurements. Implementations must be safe
// for concurrent use.
type Recorder interface {
	IntentClassified(intent Intent)
	RouteCompleted(intent Intent, success bool)
	AgentCalled(agent string, outcome string, d time.Duration)
}

// NoopRecorder discards all measurements.
type NoopRecorder struct{}

func (NoopRecorder) IntentClassified(Intent)                   {}
func (NoopRecorder) RouteCompleted(Intent, bool)               {}
func (NoopRecorder) AgentCalled(string, string, time.Duration) {}
