package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gabapcia/txsentinel/internal/pkg/logger"
	"github.com/gabapcia/txsentinel/internal/pkg/types"
	"github.com/gabapcia/txsentinel/internal/pkg/x/chflow"
	"github.com/gabapcia/txsentinel/internal/txstream"
)

// transactionResponse mirrors the transaction object in an
// "eth_getBlockByNumber" response, restricted to the fields the pipeline
// consumes.
type transactionResponse struct {
	Hash             string `json:"hash"`             // Transaction hash
	From             string `json:"from"`             // Sender address
	To               string `json:"to"`               // Recipient address (empty for contract creation)
	Value            string `json:"value"`            // Transferred value, hexadecimal string
	TransactionIndex string `json:"transactionIndex"` // Position of the transaction within the block, hexadecimal string
	Input            string `json:"input"`            // Call data in hexadecimal format
}

// blockResponse mirrors the block object in an "eth_getBlockByNumber"
// response.
type blockResponse struct {
	Number       string                `json:"number"`       // Block number, hexadecimal string
	Transactions []transactionResponse `json:"transactions"` // Full transaction objects included in the block
}

// events converts the block's transactions into normalized stream events,
// preserving the in-block transaction order.
func (b blockResponse) events() ([]txstream.Event, error) {
	height, err := strconv.ParseUint(b.Number, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed block number %q: %w", b.Number, err)
	}

	events := make([]txstream.Event, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		index, err := strconv.ParseUint(tx.TransactionIndex, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed transaction index %q: %w", tx.TransactionIndex, err)
		}

		value, err := types.BigIntFromHex(tx.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed transaction value %q: %w", tx.Value, err)
		}

		events = append(events, txstream.Event{
			ID:      tx.Hash,
			From:    tx.From,
			To:      tx.To,
			Value:   value,
			Payload: tx.Input,
			Sequence: txstream.Sequence{
				Height: height,
				Index:  uint32(index),
			},
		})
	}

	return events, nil
}

// getLatestBlockNumber fetches the current chain head height via the
// "eth_blockNumber" RPC method.
func (c *client) getLatestBlockNumber(ctx context.Context) (uint64, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}

	var hexNumber string
	if err := json.Unmarshal(data, &hexNumber); err != nil {
		return 0, err
	}

	return strconv.ParseUint(hexNumber, 0, 64)
}

// getBlockByNumber fetches a block with its full transaction objects via the
// "eth_getBlockByNumber" RPC method.
func (c *client) getBlockByNumber(ctx context.Context, height uint64) (blockResponse, error) {
	hexNumber := "0x" + strconv.FormatUint(height, 16)

	data, err := c.conn.Fetch(ctx, "eth_getBlockByNumber", hexNumber, true)
	if err != nil {
		return blockResponse{}, err
	}

	var block blockResponse
	if err := json.Unmarshal(data, &block); err != nil {
		return blockResponse{}, err
	}

	return block, nil
}

// pollNewBlocks fetches every block from fromHeight up to the current chain
// head, flattens their transactions into events and sends them downstream in
// sequence order. It returns the height the next polling iteration should
// start from.
func (c *client) pollNewBlocks(ctx context.Context, fromHeight uint64, eventsCh chan<- txstream.SourceEvent) (uint64, error) {
	latestHeight, err := c.getLatestBlockNumber(ctx)
	if err != nil {
		return fromHeight, err
	}

	for height := fromHeight; height <= latestHeight; height++ {
		block, err := c.getBlockByNumber(ctx, height)
		if err != nil {
			return height, err
		}

		events, err := block.events()
		if err != nil {
			return height, err
		}

		for _, event := range events {
			if ok := chflow.Send(ctx, eventsCh, txstream.SourceEvent{Event: event}); !ok {
				return height, ctx.Err()
			}
		}
	}

	return latestHeight + 1, nil
}

// Subscribe implements the txstream.Source interface. It starts a polling
// goroutine that streams events from the given sequence onward. A zero
// sequence starts from the current chain head. The returned channel is
// closed when ctx is canceled.
//
// Fetch errors are reported on the channel and the poller keeps going, so a
// transient provider outage does not terminate the stream.
func (c *client) Subscribe(ctx context.Context, from txstream.Sequence) (<-chan txstream.SourceEvent, error) {
	fromHeight := from.Height
	if from.IsZero() {
		latestHeight, err := c.getLatestBlockNumber(ctx)
		if err != nil {
			return nil, err
		}

		fromHeight = latestHeight
	}

	eventsCh := make(chan txstream.SourceEvent, eventChannelBufferSize)
	go func() {
		defer close(eventsCh)

		height := fromHeight
		for {
			nextHeight, err := c.pollNewBlocks(ctx, height, eventsCh)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				logger.Error(ctx, "failed to poll new blocks", "fromHeight", nextHeight, "error", err)
				if ok := chflow.Send(ctx, eventsCh, txstream.SourceEvent{Err: err}); !ok {
					return
				}
			}
			height = nextHeight

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.pollInterval):
			}
		}
	}()

	return eventsCh, nil
}
