package rules

import (
	"fmt"

	"github.com/gabapcia/txsentinel/internal/pkg/types"
)

// LargeTransferRuleID identifies the built-in large transfer threshold rule.
const LargeTransferRuleID = "large-transfer"

// largeTransferRule fires when an event moves strictly more value than the
// configured threshold. The comparison is done on arbitrary-precision
// integers so token amounts never lose precision through floating point.
type largeTransferRule struct {
	threshold types.BigInt
}

// Compile-time assertion that largeTransferRule implements the Rule interface.
var _ Rule = (*largeTransferRule)(nil)

// NewLargeTransferRule creates the threshold rule with the configured cutoff.
func NewLargeTransferRule(threshold types.BigInt) *largeTransferRule {
	return &largeTransferRule{
		threshold: threshold,
	}
}

func (r *largeTransferRule) ID() string {
	return LargeTransferRuleID
}

func (r *largeTransferRule) Description() string {
	return "detects transfers whose value exceeds the configured threshold"
}

func (r *largeTransferRule) Severity() Severity {
	return SeverityMedium
}

// NewState returns nil: the threshold check is stateless.
func (r *largeTransferRule) NewState() RollingState {
	return nil
}

// Evaluate emits exactly one finding when event.Value > threshold, and none
// otherwise.
func (r *largeTransferRule) Evaluate(event Event, _ RollingState) ([]Finding, error) {
	if !event.Value.GreaterThan(r.threshold) {
		return nil, nil
	}

	description := fmt.Sprintf("large transfer of %s from %s to %s exceeds threshold %s",
		event.Value, event.From, event.To, r.threshold)

	return []Finding{newDetection(r, event, description)}, nil
}
