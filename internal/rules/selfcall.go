package rules

import "fmt"

// SelfCallRuleID identifies the built-in self-call detection rule.
const SelfCallRuleID = "self-call"

// selfCallRule fires when an event's origin and destination are the same
// address, a pattern typical of reentrancy-style self-invocation.
type selfCallRule struct{}

// Compile-time assertion that selfCallRule implements the Rule interface.
var _ Rule = (*selfCallRule)(nil)

// NewSelfCallRule creates the self-call detection rule.
func NewSelfCallRule() *selfCallRule {
	return &selfCallRule{}
}

func (r *selfCallRule) ID() string {
	return SelfCallRuleID
}

func (r *selfCallRule) Description() string {
	return "detects contracts invoking themselves (reentrancy-style self-calls)"
}

func (r *selfCallRule) Severity() Severity {
	return SeverityHigh
}

// NewState returns nil: the self-call check is stateless.
func (r *selfCallRule) NewState() RollingState {
	return nil
}

// Evaluate emits exactly one finding when From == To, and none otherwise.
// Events with an empty origin and destination are ignored.
func (r *selfCallRule) Evaluate(event Event, _ RollingState) ([]Finding, error) {
	if event.From == "" || event.From != event.To {
		return nil, nil
	}

	description := fmt.Sprintf("address %s invoked itself", event.From)
	return []Finding{newDetection(r, event, description)}, nil
}
