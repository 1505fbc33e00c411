// Package ethereum provides an implementation of the txstream.Source
// interface for Ethereum-compatible nodes using a JSON-RPC client. Blocks
// are polled periodically and flattened into individual, ordered events.
package ethereum

import (
	"time"

	"github.com/gabapcia/txsentinel/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/txsentinel/internal/txstream"
)

const (
	// eventChannelBufferSize sizes the source channel for roughly one block
	// worth of transactions.
	eventChannelBufferSize = 200

	// defaultPollInterval matches the expected time between Ethereum blocks.
	defaultPollInterval = 12 * time.Second
)

// client implements the txstream.Source interface for Ethereum-based
// networks. It communicates with a node via a JSON-RPC client.
type client struct {
	conn         jsonrpc.Client // Underlying JSON-RPC client used to interact with the node
	pollInterval time.Duration  // Delay between polling iterations
}

// Ensure client implements the txstream.Source interface at compile time.
var _ txstream.Source = (*client)(nil)

// Option customizes the Ethereum source.
type Option func(*client)

// WithPollInterval overrides the delay between polling iterations.
func WithPollInterval(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewClient creates a new Ethereum event source using the provided JSON-RPC
// connection.
func NewClient(conn jsonrpc.Client, opts ...Option) *client {
	c := &client{
		conn:         conn,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}
