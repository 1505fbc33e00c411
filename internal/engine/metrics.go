package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName identifies this package's instruments in the telemetry backend.
const meterName = "txsentinel/engine"

// metrics bundles the engine's OpenTelemetry counters. Instrument creation
// errors are ignored: the global meter falls back to a no-op implementation
// when telemetry is not configured.
type metrics struct {
	eventsEvaluated metric.Int64Counter
	findingsEmitted metric.Int64Counter
	ruleFaults      metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter(meterName)

	eventsEvaluated, _ := meter.Int64Counter("engine.events_evaluated",
		metric.WithDescription("Number of events dispatched to the rule set"))
	findingsEmitted, _ := meter.Int64Counter("engine.findings_emitted",
		metric.WithDescription("Number of findings produced by rules"))
	ruleFaults, _ := meter.Int64Counter("engine.rule_faults",
		metric.WithDescription("Number of isolated rule evaluation failures"))

	return &metrics{
		eventsEvaluated: eventsEvaluated,
		findingsEmitted: findingsEmitted,
		ruleFaults:      ruleFaults,
	}
}

func (m *metrics) recordEventEvaluated(ctx context.Context) {
	m.eventsEvaluated.Add(ctx, 1)
}

func (m *metrics) recordFindingEmitted(ctx context.Context, ruleID string) {
	m.findingsEmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("rule.id", ruleID)))
}

func (m *metrics) recordRuleFault(ctx context.Context, ruleID string) {
	m.ruleFaults.Add(ctx, 1, metric.WithAttributes(attribute.String("rule.id", ruleID)))
}
