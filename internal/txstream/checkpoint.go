package txstream

import (
	"context"
	"errors"
)

// ErrNoCheckpointFound is returned by LoadLatestCheckpoint when no
// checkpoint has been saved yet for the requested stream.
var ErrNoCheckpointFound = errors.New("no checkpoint found for stream")

// CheckpointStorage persists and retrieves the latest forwarded sequence for
// each named event stream, so a restarted pipeline resumes where it left off
// instead of re-evaluating history.
type CheckpointStorage interface {
	// SaveCheckpoint records the given sequence as the latest checkpoint for
	// the specified stream. Calling it repeatedly for the same stream
	// overwrites any previous checkpoint.
	SaveCheckpoint(ctx context.Context, stream string, seq Sequence) error

	// LoadLatestCheckpoint returns the most recent sequence saved for the
	// specified stream, or ErrNoCheckpointFound if none exists.
	LoadLatestCheckpoint(ctx context.Context, stream string) (Sequence, error)
}

// nopCheckpoint is the default CheckpointStorage: nothing is persisted and
// every load reports no checkpoint, so streams always start fresh.
type nopCheckpoint struct{}

var _ CheckpointStorage = nopCheckpoint{}

func (nopCheckpoint) SaveCheckpoint(context.Context, string, Sequence) error {
	return nil
}

func (nopCheckpoint) LoadLatestCheckpoint(context.Context, string) (Sequence, error) {
	return Sequence{}, ErrNoCheckpointFound
}
