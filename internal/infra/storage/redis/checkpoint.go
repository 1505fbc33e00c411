package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/txsentinel/internal/txstream"

	"github.com/redis/go-redis/v9"
)

// txstreamKeyPrefix is the namespace prefix for all stream checkpoint keys.
const txstreamKeyPrefix = "txstream"

// checkpointKey constructs the Redis key storing the latest forwarded
// sequence for a stream. Format: "txstream:checkpoint:<stream>".
func checkpointKey(stream string) string {
	return fmt.Sprintf("%s:checkpoint:%s", txstreamKeyPrefix, stream)
}

// SaveCheckpoint persists the most recent sequence forwarded for a stream,
// stored as "height/index" with no expiration, so the pipeline resumes from
// the correct position after restarts.
func (c *client) SaveCheckpoint(ctx context.Context, stream string, seq txstream.Sequence) error {
	key := checkpointKey(stream)
	return c.conn.Set(ctx, key, seq.String(), 0).Err()
}

// LoadLatestCheckpoint retrieves the most recently saved sequence for the
// stream, or txstream.ErrNoCheckpointFound when none exists yet.
func (c *client) LoadLatestCheckpoint(ctx context.Context, stream string) (txstream.Sequence, error) {
	key := checkpointKey(stream)

	val, err := c.conn.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = txstream.ErrNoCheckpointFound
		}

		return txstream.Sequence{}, err
	}

	var seq txstream.Sequence
	if _, err := fmt.Sscanf(val, "%d/%d", &seq.Height, &seq.Index); err != nil {
		return txstream.Sequence{}, fmt.Errorf("malformed checkpoint %q: %w", val, err)
	}

	return seq, nil
}

// Compile-time assertion to ensure *client implements the CheckpointStorage interface.
var _ txstream.CheckpointStorage = new(client)
