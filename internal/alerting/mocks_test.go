package alerting

import (
	"context"
	"testing"

	"github.com/gabapcia/txsentinel/internal/rules"

	"github.com/stretchr/testify/mock"
)

// SinkMock is a hand-rolled testify mock for the Sink interface.
type SinkMock struct {
	mock.Mock
}

func NewSinkMock(t *testing.T) *SinkMock {
	m := new(SinkMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SinkMock) Deliver(ctx context.Context, finding rules.Finding, channel string) error {
	args := m.Called(ctx, finding, channel)
	return args.Error(0)
}

// FailureJournalMock is a hand-rolled testify mock for the FailureJournal
// interface.
type FailureJournalMock struct {
	mock.Mock
}

func NewFailureJournalMock(t *testing.T) *FailureJournalMock {
	m := new(FailureJournalMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *FailureJournalMock) Preserve(ctx context.Context, finding rules.Finding, channel string, deliveryErr error) error {
	args := m.Called(ctx, finding, channel, deliveryErr)
	return args.Error(0)
}
