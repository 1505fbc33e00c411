// Package engine implements the rule evaluation core: it owns all rolling
// state, dispatches every incoming event to every registered rule in
// registration order, isolates rule faults, and emits findings on a buffered
// channel so a slow consumer never stalls evaluation ordering.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/txsentinel/internal/pkg/logger"
	"github.com/gabapcia/txsentinel/internal/pkg/x/chflow"
	"github.com/gabapcia/txsentinel/internal/rules"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// findingChannelBufferSize bounds the internal findings queue that decouples
// evaluation from delivery.
const findingChannelBufferSize = 64

// Service drives rule evaluation over an ordered event stream.
type Service interface {
	// Start launches the single evaluation goroutine. It consumes events
	// from the given channel in arrival order and returns the channel on
	// which findings are emitted. The findings channel is closed once the
	// event channel is closed and every pending finding has been emitted.
	//
	// Returns ErrServiceAlreadyStarted if Start is called more than once.
	Start(ctx context.Context, events <-chan rules.Event) (<-chan rules.Finding, error)

	// Close aborts evaluation. It is safe to call Close even if the service
	// was never started.
	Close()
}

type closeFunc func()

// service is the internal implementation of the engine Service interface.
//
// All rolling state lives in the states map, keyed by rule ID, and is only
// ever touched from the single evaluation goroutine. That confinement is
// what guarantees deterministic, arrival-order state updates.
type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool       // ensures Start is called only once
	closeFunc closeFunc  // cancels the evaluation goroutine

	registry *rules.Registry
	metrics  *metrics
}

// Compile-time assertion that *service implements the Service interface.
var _ Service = (*service)(nil)

// New creates an evaluation engine over the given rule registry. The
// registry must be fully populated before Start; rules registered later are
// not picked up.
func New(registry *rules.Registry) *service {
	return &service{
		registry: registry,
		metrics:  newMetrics(),
	}
}

func (s *service) Start(ctx context.Context, events <-chan rules.Event) (<-chan rules.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	findingsCh := make(chan rules.Finding, findingChannelBufferSize)

	states := make(map[string]rules.RollingState, s.registry.Len())
	for _, rule := range s.registry.All() {
		states[rule.ID()] = rule.NewState()
	}

	go s.run(ctx, events, findingsCh, states)

	s.closeFunc = closeFunc(cancel)
	s.isStarted = true
	return findingsCh, nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

// run is the single evaluation loop. It drains the event channel to
// completion so a cooperative shutdown never leaves an event evaluated
// partially: the producer stops feeding the channel, run finishes what is
// in flight, then closes the findings channel.
func (s *service) run(ctx context.Context, events <-chan rules.Event, findingsCh chan<- rules.Finding, states map[string]rules.RollingState) {
	defer close(findingsCh)

	for event := range events {
		if !s.evaluate(ctx, event, states, findingsCh) {
			return
		}
	}
}

// evaluate runs every registered rule against one event, in registration
// order, and forwards the collected findings in that same order. It returns
// false when the context is canceled mid-emission.
func (s *service) evaluate(ctx context.Context, event rules.Event, states map[string]rules.RollingState, findingsCh chan<- rules.Finding) bool {
	s.metrics.recordEventEvaluated(ctx)

	for _, rule := range s.registry.All() {
		findings, err := evaluateRule(rule, event, states[rule.ID()])
		if err != nil {
			s.metrics.recordRuleFault(ctx, rule.ID())
			logger.Error(ctx, "rule evaluation failed",
				"rule.id", rule.ID(),
				"event.id", event.ID,
				"error", err,
			)

			health := rules.NewHealthFinding(rule.ID(), event.ID,
				fmt.Sprintf("rule evaluation error: %v", err))
			if !chflow.Send(ctx, findingsCh, health) {
				return false
			}

			continue
		}

		for _, finding := range findings {
			s.metrics.recordFindingEmitted(ctx, rule.ID())
			if !chflow.Send(ctx, findingsCh, finding) {
				return false
			}
		}
	}

	return true
}

// evaluateRule invokes a single rule, converting panics into errors so one
// faulty rule cannot take down the evaluation loop or starve the remaining
// rules for the same event.
func evaluateRule(rule rules.Rule, event rules.Event, state rules.RollingState) (findings []rules.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()

	return rule.Evaluate(event, state)
}
