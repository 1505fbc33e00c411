// Package rules defines the detection rule model used by the evaluation
// engine: the Event and Finding records, the Severity scale, the Rule
// interface, and the built-in rule implementations.
package rules

import (
	"fmt"
	"time"

	"github.com/gabapcia/txsentinel/internal/pkg/types"
)

// Severity is the ordered scale used to rank findings, from informational
// up to critical. Higher values indicate more severe findings.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the canonical lowercase name of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// MarshalText encodes the severity as its canonical name, so findings
// serialize with readable levels instead of numeric codes.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind distinguishes genuine detections from pipeline-health reports.
// Both flow through the same dispatch channel so operators see detections
// and pipeline faults in a single stream.
type Kind string

const (
	KindDetection Kind = "detection"
	KindHealth    Kind = "health"
)

// Event represents one observed on-chain action (a transaction or an
// internal call trace), normalized by the ingestion layer. Events are
// immutable once created and read-only to every rule.
type Event struct {
	ID      string       // Unique event identifier (e.g., transaction hash)
	From    string       // Origin address
	To      string       // Destination address
	Value   types.BigInt // Value transferred, in base units (arbitrary precision)
	Height  uint64       // Block or sequence height the event belongs to
	Index   uint32       // Position of the event within its block
	Payload string       // Call-data reference, opaque to the rule set
}

// Finding is an immutable detection record produced by a rule against one
// event. Findings are write-once; they are consumed by the alert dispatcher
// and never mutated afterward.
type Finding struct {
	RuleID      string    `json:"rule_id"`     // Identifier of the rule that fired
	Kind        Kind      `json:"kind"`        // detection or health
	Severity    Severity  `json:"severity"`    // Severity assigned to the finding
	Description string    `json:"description"` // Human-readable explanation
	EventID     string    `json:"event_id"`    // Identifier of the triggering event
	DetectedAt  time.Time `json:"detected_at"` // Timestamp of detection
}

// RollingState is the mutable per-rule namespace of aggregates (counters,
// sums, moving statistics) a rule uses to detect patterns across multiple
// events. State is owned exclusively by the evaluation engine and handed by
// reference only to the rule that created it; rules must never share state.
type RollingState any

// Rule is a named unit of detection logic evaluated once per event.
// Implementations are registered at process start and never mutated during
// evaluation; any cross-event memory lives in the RollingState returned by
// NewState, not in the rule value itself.
type Rule interface {
	// ID returns the unique rule identifier.
	ID() string

	// Description returns a human-readable summary of what the rule detects.
	Description() string

	// Severity returns the default severity assigned to this rule's findings.
	Severity() Severity

	// NewState returns a fresh, empty rolling-state namespace for this rule.
	// The engine calls it once per run; a replay with fresh state must yield
	// identical findings for identical input.
	NewState() RollingState

	// Evaluate inspects a single event together with this rule's own rolling
	// state and returns zero or more findings. Implementations may mutate
	// the provided state; mutations become visible to this rule on the next
	// event, never to other rules.
	Evaluate(event Event, state RollingState) ([]Finding, error)
}

// newDetection builds a detection Finding for the given rule and event.
func newDetection(r Rule, event Event, description string) Finding {
	return Finding{
		RuleID:      r.ID(),
		Kind:        KindDetection,
		Severity:    r.Severity(),
		Description: description,
		EventID:     event.ID,
		DetectedAt:  time.Now().UTC(),
	}
}

// NewHealthFinding builds a pipeline-health Finding, used to surface
// non-fatal faults (ingestion anomalies, rule evaluation errors, delivery
// failures) through the same reporting channel as detections.
func NewHealthFinding(ruleID, eventID, description string) Finding {
	return Finding{
		RuleID:      ruleID,
		Kind:        KindHealth,
		Severity:    SeverityInfo,
		Description: description,
		EventID:     eventID,
		DetectedAt:  time.Now().UTC(),
	}
}
