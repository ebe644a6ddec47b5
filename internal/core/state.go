package core

// State is a step of the review event state machine.
type State string

const (
	StateReceived    State = "received"
	StateRejected    State = "rejected"
	StateIgnored     State = "ignored"
	StateFetching    State = "fetching"
	StateNoTarget    State = "no_target"
	StateAnalyzing   State = "analyzing"
	StateAggregating State = "aggregating"
	StateReporting   State = "reporting"
	StateNotifying   State = "notifying"
	StateRecording   State = "recording"
	StateDone        State = "done"
	// StateFailed ends a job whose changed-file listing could not be obtained.
	StateFailed State = "failed"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateIgnored, StateNoTarget, StateDone, StateFailed:
		return true
	default:
		return false
	}
}

// StepResult is the outcome of one best-effort side effect of the pipeline.
type StepResult struct {
	Step    State
	Skipped bool
	Err     error
}

// OK reports whether the step ran, or was skipped, without error.
func (r StepResult) OK() bool { return r.Err == nil }

// Outcome is what a review job produced for one event.
type Outcome struct {
	State  State
	Report *ReviewReport
	Steps  []StepResult
	Err    error
}

// Step returns the result recorded for a step and whether one was recorded.
func (o *Outcome) Step(step State) (StepResult, bool) {
	for _, r := range o.Steps {
		if r.Step == step {
			return r, true
		}
	}
	return StepResult{}, false
}

// FailedSteps returns the side effects that ran and failed.
func (o *Outcome) FailedSteps() []StepResult {
	var out []StepResult
	for _, r := range o.Steps {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
