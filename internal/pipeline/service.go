// Package pipeline wires the detection pipeline end to end: the ingestion
// stream feeds the rule evaluation engine, engine findings and stream health
// faults merge into a single reporting channel, and the alert dispatcher
// drains that channel. It also owns the cooperative shutdown sequence: stop
// ingesting, drain in-flight evaluation, flush pending findings, terminate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/txsentinel/internal/alerting"
	"github.com/gabapcia/txsentinel/internal/engine"
	"github.com/gabapcia/txsentinel/internal/pkg/x/chflow"
	"github.com/gabapcia/txsentinel/internal/rules"
	"github.com/gabapcia/txsentinel/internal/txstream"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// streamHealthRuleID tags health findings that originate from the ingestion
// layer rather than from a detection rule.
const streamHealthRuleID = "txstream"

// mergedFindingBufferSize bounds the merged findings channel feeding the
// dispatcher.
const mergedFindingBufferSize = 64

// Service defines the pipeline lifecycle and coordination entrypoint.
type Service interface {
	// Start launches ingestion, evaluation and dispatching. It returns
	// ErrServiceAlreadyStarted if called more than once. Call Close to shut
	// the pipeline down.
	Start(ctx context.Context) error

	// Close performs the cooperative shutdown: ingestion stops pulling new
	// events, in-flight evaluation drains, pending findings flush to the
	// sink, and only then do the background routines terminate. Safe to
	// call even if the service was never started.
	Close()
}

type closeFunc func()

// service is the internal implementation of the pipeline Service interface.
type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool       // ensures Start is called only once
	closeFunc closeFunc  // runs the shutdown sequence

	stream     txstream.Service
	engine     engine.Service
	dispatcher alerting.Service
}

// Compile-time assertion that *service implements the Service interface.
var _ Service = (*service)(nil)

// New creates a pipeline over the given stream, engine and dispatcher.
func New(stream txstream.Service, eng engine.Service, dispatcher alerting.Service) *service {
	return &service{
		stream:     stream,
		engine:     eng,
		dispatcher: dispatcher,
	}
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	// The pipeline context is canceled only after everything has drained;
	// stopping ingestion is the stream's Close, which lets in-flight events
	// flow through to the sink first.
	ctx, cancel := context.WithCancel(ctx)

	eventsCh, faultsCh, err := s.stream.Start(ctx)
	if err != nil {
		cancel()
		return err
	}

	ruleEventsCh := make(chan rules.Event, cap(eventsCh))
	go forwardEvents(ctx, eventsCh, ruleEventsCh)

	findingsCh, err := s.engine.Start(ctx, ruleEventsCh)
	if err != nil {
		s.stream.Close()
		cancel()
		return err
	}

	mergedCh := make(chan rules.Finding, mergedFindingBufferSize)

	var producers sync.WaitGroup
	producers.Add(2)
	go func() {
		defer producers.Done()
		forwardFindings(ctx, findingsCh, mergedCh)
	}()
	go func() {
		defer producers.Done()
		forwardFaults(ctx, faultsCh, mergedCh)
	}()
	go func() {
		producers.Wait()
		close(mergedCh)
	}()

	doneCh, err := s.dispatcher.Start(ctx, mergedCh)
	if err != nil {
		s.stream.Close()
		s.engine.Close()
		cancel()
		return err
	}

	s.closeFunc = func() {
		// Stop the producer first, then wait for the dispatcher to drain
		// everything still queued before tearing the rest down.
		s.stream.Close()
		<-doneCh
		cancel()
		s.engine.Close()
		s.dispatcher.Close()
	}
	s.isStarted = true
	return nil
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

// toRuleEvent converts a normalized stream event into the shape the rule set
// consumes.
func toRuleEvent(event txstream.Event) rules.Event {
	return rules.Event{
		ID:      event.ID,
		From:    event.From,
		To:      event.To,
		Value:   event.Value,
		Height:  event.Sequence.Height,
		Index:   event.Sequence.Index,
		Payload: event.Payload,
	}
}

// forwardEvents converts stream events for the engine. It closes the output
// channel once the stream channel closes, which is what lets the engine
// drain and finish during shutdown.
func forwardEvents(ctx context.Context, in <-chan txstream.Event, out chan<- rules.Event) {
	defer close(out)

	for event := range in {
		if ok := chflow.Send(ctx, out, toRuleEvent(event)); !ok {
			return
		}
	}
}

// forwardFindings copies engine findings onto the merged reporting channel.
func forwardFindings(ctx context.Context, in <-chan rules.Finding, out chan<- rules.Finding) {
	for finding := range in {
		if ok := chflow.Send(ctx, out, finding); !ok {
			return
		}
	}
}

// forwardFaults converts stream faults into health findings on the merged
// reporting channel, so operators see ingestion anomalies and detections in
// one stream, tagged apart by Kind.
func forwardFaults(ctx context.Context, in <-chan txstream.StreamFault, out chan<- rules.Finding) {
	for fault := range in {
		finding := rules.NewHealthFinding(streamHealthRuleID, fault.EventID,
			fmt.Sprintf("ingestion fault: %v", fault.Err))

		if ok := chflow.Send(ctx, out, finding); !ok {
			return
		}
	}
}
