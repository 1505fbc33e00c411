// Package alerting implements the finding dispatcher: it consumes findings
// in emission order and delivers each one to the configured notification
// channel with bounded exponential backoff, preserving findings whose
// delivery ultimately fails.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/txsentinel/internal/pkg/logger"
	"github.com/gabapcia/txsentinel/internal/pkg/resilience/retry"
	"github.com/gabapcia/txsentinel/internal/rules"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// ErrDeliveryFailed wraps the final transport error after the retry budget
// for one finding has been exhausted. The finding itself is preserved in the
// failure journal, never dropped.
var ErrDeliveryFailed = errors.New("finding delivery failed")

// Service dispatches findings to the configured sink.
type Service interface {
	// Start launches the dispatch goroutine over the given findings
	// channel. The returned done channel is closed once the findings
	// channel has been drained and every delivery attempt has concluded,
	// which is what a cooperative shutdown waits on to flush pending
	// findings.
	//
	// Returns ErrServiceAlreadyStarted if Start is called more than once.
	Start(ctx context.Context, findings <-chan rules.Finding) (<-chan struct{}, error)

	// Close aborts dispatching. Safe to call if never started.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool       // ensures Start is called only once
	closeFunc closeFunc  // cancels the dispatch goroutine

	sink    Sink
	channel string
	retry   retry.Retry
	journal FailureJournal
}

// Compile-time assertion that *service implements the Service interface.
var _ Service = (*service)(nil)

type config struct {
	retry   retry.Retry
	journal FailureJournal
}

// Option customizes the dispatcher.
type Option func(*config)

// WithRetry sets the retry policy applied to each finding's delivery.
// Without it every finding gets a single delivery attempt.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithFailureJournal sets where findings land after delivery retries are
// exhausted.
func WithFailureJournal(j FailureJournal) Option {
	return func(c *config) {
		c.journal = j
	}
}

// New creates a dispatcher delivering findings to sink on the given channel.
func New(sink Sink, channel string, opts ...Option) *service {
	cfg := config{
		retry:   nil,
		journal: nopJournal{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		sink:    sink,
		channel: channel,
		retry:   cfg.retry,
		journal: cfg.journal,
	}
}

func (s *service) Start(ctx context.Context, findings <-chan rules.Finding) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go s.dispatch(ctx, findings, done)

	s.closeFunc = closeFunc(cancel)
	s.isStarted = true
	return done, nil
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

// dispatch consumes findings until the channel closes, delivering each one
// in order. The findings channel is ranged over directly so a cooperative
// shutdown (producer closes the channel) flushes everything still queued.
func (s *service) dispatch(ctx context.Context, findings <-chan rules.Finding, done chan<- struct{}) {
	defer close(done)

	for finding := range findings {
		s.deliver(ctx, finding)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// deliver attempts delivery of one finding, applying the configured retry
// policy. After the budget is exhausted the finding is logged and preserved
// in the failure journal; delivery failures never abort the stream.
func (s *service) deliver(ctx context.Context, finding rules.Finding) {
	attempt := func() error {
		return s.sink.Deliver(ctx, finding, s.channel)
	}

	var err error
	if s.retry != nil {
		err = s.retry.Execute(ctx, attempt)
	} else {
		err = attempt()
	}

	if err == nil {
		return
	}

	deliveryErr := fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	logger.Error(ctx, "finding delivery failed after retries",
		"finding.rule_id", finding.RuleID,
		"finding.event_id", finding.EventID,
		"channel", s.channel,
		"error", deliveryErr,
	)

	if err := s.journal.Preserve(ctx, finding, s.channel, deliveryErr); err != nil {
		logger.Error(ctx, "failed to preserve undelivered finding",
			"finding.rule_id", finding.RuleID,
			"finding.event_id", finding.EventID,
			"error", err,
		)
	}
}
