package rules

import (
	"fmt"
	"math"
)

// ValueAnomalyRuleID identifies the built-in statistical anomaly rule.
const ValueAnomalyRuleID = "value-anomaly"

// valueAnomalyRule keeps a bounded FIFO window of recently observed event
// values and fires when a new observation deviates from the window mean by
// more than the configured multiple of the window's standard deviation.
//
// The incoming value is scored against the window as it stood before the
// observation, then pushed into it. Windows with fewer than two samples or
// zero variance suppress the rule entirely; the score is never computed by
// dividing by zero.
type valueAnomalyRule struct {
	windowSize int
	zThreshold float64
	mode       VarianceMode
}

// Compile-time assertion that valueAnomalyRule implements the Rule interface.
var _ Rule = (*valueAnomalyRule)(nil)

// anomalyState is the rule's rolling-state namespace: the sliding window of
// recent observations.
type anomalyState struct {
	window *slidingWindow
}

// NewValueAnomalyRule creates the statistical anomaly rule. windowSize bounds
// the FIFO window, zThreshold is the firing multiple of the standard
// deviation (commonly 3), and mode selects the variance estimator.
func NewValueAnomalyRule(windowSize int, zThreshold float64, mode VarianceMode) *valueAnomalyRule {
	return &valueAnomalyRule{
		windowSize: windowSize,
		zThreshold: zThreshold,
		mode:       mode,
	}
}

func (r *valueAnomalyRule) ID() string {
	return ValueAnomalyRuleID
}

func (r *valueAnomalyRule) Description() string {
	return "detects event values that deviate sharply from the recent moving baseline"
}

func (r *valueAnomalyRule) Severity() Severity {
	return SeverityMedium
}

// NewState returns a fresh empty sliding window.
func (r *valueAnomalyRule) NewState() RollingState {
	return &anomalyState{window: newSlidingWindow(r.windowSize)}
}

// Evaluate scores the event value against the current window, records the
// observation, and fires when the absolute score exceeds the threshold.
func (r *valueAnomalyRule) Evaluate(event Event, state RollingState) ([]Finding, error) {
	st, ok := state.(*anomalyState)
	if !ok {
		return nil, fmt.Errorf("unexpected rolling state type %T", state)
	}

	observed := event.Value.Float64()

	score, defined := st.window.ZScore(observed, r.mode)
	st.window.Push(observed)

	if !defined || math.Abs(score) <= r.zThreshold {
		return nil, nil
	}

	description := fmt.Sprintf("value %s deviates %.2f standard deviations from the moving baseline (threshold %.2f)",
		event.Value, score, r.zThreshold)

	return []Finding{newDetection(r, event, description)}, nil
}
