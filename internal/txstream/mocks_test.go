package txstream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
)

// SourceMock is a hand-rolled testify mock for the Source interface.
type SourceMock struct {
	mock.Mock
}

func NewSourceMock(t *testing.T) *SourceMock {
	m := new(SourceMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SourceMock) Subscribe(ctx context.Context, from Sequence) (<-chan SourceEvent, error) {
	args := m.Called(ctx, from)

	var ch <-chan SourceEvent
	if v := args.Get(0); v != nil {
		ch = v.(chan SourceEvent)
	}
	return ch, args.Error(1)
}

// CheckpointStorageMock is a hand-rolled testify mock for the
// CheckpointStorage interface.
type CheckpointStorageMock struct {
	mock.Mock
}

func NewCheckpointStorageMock(t *testing.T) *CheckpointStorageMock {
	m := new(CheckpointStorageMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CheckpointStorageMock) SaveCheckpoint(ctx context.Context, stream string, seq Sequence) error {
	args := m.Called(ctx, stream, seq)
	return args.Error(0)
}

func (m *CheckpointStorageMock) LoadLatestCheckpoint(ctx context.Context, stream string) (Sequence, error) {
	args := m.Called(ctx, stream)
	return args.Get(0).(Sequence), args.Error(1)
}
