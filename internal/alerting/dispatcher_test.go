package alerting

import (
	"errors"
	"testing"
	"time"

	"github.com/gabapcia/txsentinel/internal/pkg/logger"
	"github.com/gabapcia/txsentinel/internal/pkg/resilience/retry"
	"github.com/gabapcia/txsentinel/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}

	m.Run()
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the dispatcher to drain")
	}
}

func fastRetry(attempts uint) retry.Retry {
	return retry.New(
		retry.WithAttempts(attempts),
		retry.WithDelay(time.Millisecond),
		retry.WithMaxDelay(5*time.Millisecond),
	)
}

func TestService_Start(t *testing.T) {
	t.Run("returns an error if started twice", func(t *testing.T) {
		svc := New(NewSinkMock(t), "webhook")
		defer svc.Close()

		findingsCh := make(chan rules.Finding)
		defer close(findingsCh)

		_, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)

		_, err = svc.Start(t.Context(), findingsCh)
		assert.ErrorIs(t, err, ErrServiceAlreadyStarted)
	})

	t.Run("closes the done channel once the findings channel drains", func(t *testing.T) {
		svc := New(NewSinkMock(t), "webhook")
		defer svc.Close()

		findingsCh := make(chan rules.Finding)

		done, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)

		close(findingsCh)
		waitDone(t, done)
	})
}

func TestService_Dispatch(t *testing.T) {
	t.Run("delivers findings in arrival order", func(t *testing.T) {
		first := rules.Finding{RuleID: "large-transfer", EventID: "0x1"}
		second := rules.Finding{RuleID: "self-call", EventID: "0x2"}

		var delivered []string
		sink := NewSinkMock(t)
		sink.On("Deliver", mock.Anything, mock.Anything, "webhook").
			Run(func(args mock.Arguments) {
				delivered = append(delivered, args.Get(1).(rules.Finding).EventID)
			}).
			Return(nil).Twice()

		svc := New(sink, "webhook")
		defer svc.Close()

		findingsCh := make(chan rules.Finding, 2)
		findingsCh <- first
		findingsCh <- second
		close(findingsCh)

		done, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)
		waitDone(t, done)

		assert.Equal(t, []string{"0x1", "0x2"}, delivered)
	})

	t.Run("retries a failing delivery until it succeeds", func(t *testing.T) {
		finding := rules.Finding{RuleID: "large-transfer", EventID: "0x1"}

		sink := NewSinkMock(t)
		sink.On("Deliver", mock.Anything, finding, "webhook").
			Return(errors.New("connection refused")).Twice()
		sink.On("Deliver", mock.Anything, finding, "webhook").
			Return(nil).Once()

		svc := New(sink, "webhook", WithRetry(fastRetry(3)))
		defer svc.Close()

		findingsCh := make(chan rules.Finding, 1)
		findingsCh <- finding
		close(findingsCh)

		done, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)
		waitDone(t, done)
	})

	t.Run("preserves the finding after the retry budget is exhausted", func(t *testing.T) {
		finding := rules.Finding{RuleID: "large-transfer", EventID: "0x1"}
		transportErr := errors.New("connection refused")

		sink := NewSinkMock(t)
		sink.On("Deliver", mock.Anything, finding, "webhook").
			Return(transportErr).Times(3)

		journal := NewFailureJournalMock(t)
		journal.On("Preserve", mock.Anything, finding, "webhook", mock.MatchedBy(func(err error) bool {
			return errors.Is(err, ErrDeliveryFailed)
		})).Return(nil).Once()

		svc := New(sink, "webhook", WithRetry(fastRetry(3)), WithFailureJournal(journal))
		defer svc.Close()

		findingsCh := make(chan rules.Finding, 1)
		findingsCh <- finding
		close(findingsCh)

		done, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)
		waitDone(t, done)
	})

	t.Run("a failed delivery does not block later findings", func(t *testing.T) {
		undeliverable := rules.Finding{RuleID: "large-transfer", EventID: "0xfail"}
		deliverable := rules.Finding{RuleID: "self-call", EventID: "0xok"}

		sink := NewSinkMock(t)
		sink.On("Deliver", mock.Anything, undeliverable, "webhook").
			Return(errors.New("boom")).Once()
		sink.On("Deliver", mock.Anything, deliverable, "webhook").
			Return(nil).Once()

		journal := NewFailureJournalMock(t)
		journal.On("Preserve", mock.Anything, undeliverable, "webhook", mock.Anything).
			Return(nil).Once()

		svc := New(sink, "webhook", WithFailureJournal(journal))
		defer svc.Close()

		findingsCh := make(chan rules.Finding, 2)
		findingsCh <- undeliverable
		findingsCh <- deliverable
		close(findingsCh)

		done, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)
		waitDone(t, done)
	})

	t.Run("a journal failure is swallowed after logging", func(t *testing.T) {
		finding := rules.Finding{RuleID: "large-transfer", EventID: "0x1"}

		sink := NewSinkMock(t)
		sink.On("Deliver", mock.Anything, finding, "webhook").
			Return(errors.New("boom")).Once()

		journal := NewFailureJournalMock(t)
		journal.On("Preserve", mock.Anything, finding, "webhook", mock.Anything).
			Return(errors.New("journal offline")).Once()

		svc := New(sink, "webhook", WithFailureJournal(journal))
		defer svc.Close()

		findingsCh := make(chan rules.Finding, 1)
		findingsCh <- finding
		close(findingsCh)

		done, err := svc.Start(t.Context(), findingsCh)
		require.NoError(t, err)
		waitDone(t, done)
	})
}
