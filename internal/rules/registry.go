package rules

import "errors"

// ErrDuplicateRuleID is returned by Register when a rule with the same
// identifier has already been registered. Duplicate registrations are a
// startup-time configuration mistake and must abort the process before any
// event is evaluated.
var ErrDuplicateRuleID = errors.New("rule id already registered")

// Registry holds the fixed set of detection rules for the lifetime of a run.
// Rules are registered once at process start; there is no removal operation.
// Evaluation honors registration order, which determines the reporting order
// of findings for a single event.
type Registry struct {
	ordered []Rule
	byID    map[string]struct{}
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		ordered: make([]Rule, 0),
		byID:    make(map[string]struct{}),
	}
}

// Register adds a rule to the registry. It returns ErrDuplicateRuleID if a
// rule with the same identifier already exists.
func (r *Registry) Register(rule Rule) error {
	if _, exists := r.byID[rule.ID()]; exists {
		return ErrDuplicateRuleID
	}

	r.byID[rule.ID()] = struct{}{}
	r.ordered = append(r.ordered, rule)
	return nil
}

// All returns the registered rules in registration order. The returned slice
// must not be modified by callers.
func (r *Registry) All() []Rule {
	return r.ordered
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.ordered)
}
