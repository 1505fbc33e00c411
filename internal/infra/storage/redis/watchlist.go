package redis

import (
	"context"

	"github.com/gabapcia/txsentinel/internal/watchlist"
)

// watchlistKey is the Redis set holding every persisted watchlist address.
const watchlistKey = "watchlist:addresses"

// AddAddress implements the watchlist.Storage interface using a Redis set,
// which makes registration idempotent by construction.
func (c *client) AddAddress(ctx context.Context, entry watchlist.AddressEntry) error {
	return c.conn.SAdd(ctx, watchlistKey, entry.Address).Err()
}

// RemoveAddress removes the address from the persisted watchlist set.
// Removing an address that was never registered is a no-op.
func (c *client) RemoveAddress(ctx context.Context, entry watchlist.AddressEntry) error {
	return c.conn.SRem(ctx, watchlistKey, entry.Address).Err()
}

// ListAddresses returns every persisted watchlist address, in no guaranteed
// order.
func (c *client) ListAddresses(ctx context.Context) ([]string, error) {
	return c.conn.SMembers(ctx, watchlistKey).Result()
}

// Compile-time assertion to ensure *client satisfies the watchlist.Storage interface.
var _ watchlist.Storage = new(client)
