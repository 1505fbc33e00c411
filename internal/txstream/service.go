// Package txstream implements the event ingestion adapter: it subscribes to
// an external event source, enforces the stream's ordering guarantee, applies
// backpressure through a bounded queue, and checkpoints progress so restarts
// resume where the previous run stopped.
package txstream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/txsentinel/internal/pkg/logger"
	"github.com/gabapcia/txsentinel/internal/pkg/x/chflow"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// ErrOutOfOrderEvent reports that the source violated the non-decreasing
// sequence guarantee. The violation is recoverable: the offending event is
// dropped and reported, and the stream continues.
var ErrOutOfOrderEvent = errors.New("event received out of order")

const (
	// defaultQueueCapacity bounds the outgoing event queue. Once full, the
	// ingestion goroutine blocks instead of dropping events: silently
	// losing events would defeat the detection guarantee.
	defaultQueueCapacity = 1024

	// faultChannelBufferSize bounds the stream fault reporting channel.
	faultChannelBufferSize = 8

	// defaultStreamName is used for checkpointing when no name is configured.
	defaultStreamName = "default"
)

// StreamFault describes a non-fatal ingestion anomaly: a source-side error
// or an ordering violation. Faults are reported through their own channel so
// the pipeline can surface them alongside findings.
type StreamFault struct {
	Sequence Sequence // sequence of the offending event (zero if unknown)
	EventID  string   // identifier of the offending event (empty if unknown)
	Err      error    // the underlying fault
}

// Service turns a Source subscription into a verified, checkpointed,
// bounded event stream.
type Service interface {
	// Start subscribes to the source and returns the event channel and the
	// fault channel. Events are delivered in non-decreasing sequence order;
	// ordering violations produce exactly one StreamFault per violating
	// event and the event is dropped. Both channels are closed once the
	// source channel closes or ctx is canceled.
	//
	// Returns ErrServiceAlreadyStarted if Start is called more than once.
	Start(ctx context.Context) (<-chan Event, <-chan StreamFault, error)

	// Close cancels the source subscription. Events the source already
	// produced still drain before the channels close. Safe to call if never
	// started.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool       // ensures Start is called only once
	closeFunc closeFunc  // cancels the ingestion goroutine

	streamName        string
	source            Source
	checkpointStorage CheckpointStorage
	queueCapacity     int
}

// Compile-time assertion that *service implements the Service interface.
var _ Service = (*service)(nil)

type config struct {
	streamName        string
	checkpointStorage CheckpointStorage
	queueCapacity     int
}

// Option customizes the stream service.
type Option func(*config)

// WithStreamName sets the name under which checkpoints are stored.
func WithStreamName(name string) Option {
	return func(c *config) {
		c.streamName = name
	}
}

// WithCheckpointStorage enables persistent resume points for the stream.
func WithCheckpointStorage(cs CheckpointStorage) Option {
	return func(c *config) {
		c.checkpointStorage = cs
	}
}

// WithQueueCapacity sets the bound of the outgoing event queue.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// New creates a stream service over the given source.
func New(source Source, opts ...Option) *service {
	cfg := config{
		streamName:        defaultStreamName,
		checkpointStorage: nopCheckpoint{},
		queueCapacity:     defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		streamName:        cfg.streamName,
		source:            source,
		checkpointStorage: cfg.checkpointStorage,
		queueCapacity:     cfg.queueCapacity,
	}
}

func (s *service) Start(ctx context.Context) (<-chan Event, <-chan StreamFault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, nil, ErrServiceAlreadyStarted
	}

	// Close cancels only the source subscription. The dispatch goroutine
	// keeps draining whatever the source already produced, so shutting down
	// never discards events sitting in flight.
	subCtx, cancel := context.WithCancel(ctx)

	from, err := s.resumePoint(ctx)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	sourceCh, err := s.source.Subscribe(subCtx, from)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	eventsCh := make(chan Event, s.queueCapacity)
	faultsCh := make(chan StreamFault, faultChannelBufferSize)

	go s.dispatchSourceEvents(ctx, sourceCh, eventsCh, faultsCh)

	s.closeFunc = closeFunc(cancel)
	s.isStarted = true
	return eventsCh, faultsCh, nil
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

// resumePoint loads the last checkpointed sequence for this stream and
// advances it to the next height, so the first block after a restart is the
// one following the last fully forwarded block. A missing checkpoint means
// the stream starts wherever the source considers current.
func (s *service) resumePoint(ctx context.Context) (Sequence, error) {
	last, err := s.checkpointStorage.LoadLatestCheckpoint(ctx, s.streamName)
	if err != nil {
		if errors.Is(err, ErrNoCheckpointFound) {
			return Sequence{}, nil
		}
		return Sequence{}, err
	}

	return Sequence{Height: last.Height + 1}, nil
}

// dispatchSourceEvents reads SourceEvent values, verifies stream ordering,
// checkpoints progress, and forwards events downstream. It owns both output
// channels and closes them on exit. The source channel is ranged to the end:
// once the source stops producing (Close canceled its subscription, or it is
// simply exhausted), everything already buffered still reaches downstream.
//
// Ordering enforcement: the first event establishes the watermark; any later
// event ordered strictly before the watermark is dropped and reported as a
// StreamFault wrapping ErrOutOfOrderEvent. Equal sequences are tolerated
// since sources may legitimately re-deliver the current position.
func (s *service) dispatchSourceEvents(ctx context.Context, sourceCh <-chan SourceEvent, eventsCh chan<- Event, faultsCh chan<- StreamFault) {
	defer close(eventsCh)
	defer close(faultsCh)

	var (
		watermark    Sequence
		hasWatermark bool
	)

	for sourceEvent := range sourceCh {
		if sourceEvent.Err != nil {
			fault := StreamFault{Err: sourceEvent.Err}
			if ok := chflow.Send(ctx, faultsCh, fault); !ok {
				return
			}
			continue
		}

		event := sourceEvent.Event
		if hasWatermark && event.Sequence.Before(watermark) {
			fault := StreamFault{
				Sequence: event.Sequence,
				EventID:  event.ID,
				Err: fmt.Errorf("%w: sequence %s behind watermark %s",
					ErrOutOfOrderEvent, event.Sequence, watermark),
			}
			if ok := chflow.Send(ctx, faultsCh, fault); !ok {
				return
			}
			continue
		}

		watermark = event.Sequence
		hasWatermark = true

		if err := s.checkpointStorage.SaveCheckpoint(ctx, s.streamName, event.Sequence); err != nil {
			// Checkpoint failures must not stop the stream; the worst case
			// on restart is re-observing already evaluated events.
			logger.Error(ctx, "failed to save stream checkpoint",
				"stream", s.streamName,
				"event.sequence", event.Sequence,
				"error", err,
			)
		}

		if ok := chflow.Send(ctx, eventsCh, event); !ok {
			return
		}
	}
}
