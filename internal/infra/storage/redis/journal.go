package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gabapcia/txsentinel/internal/alerting"
	"github.com/gabapcia/txsentinel/internal/rules"
)

// failedFindingsKey is the Redis list holding findings whose delivery
// exhausted the retry budget, newest first.
const failedFindingsKey = "alerting:failed"

// failedFindingRecord is the persisted shape of an undeliverable finding.
// The original finding is kept intact so it stays queryable for manual
// follow-up after the notification channel recovers.
type failedFindingRecord struct {
	Finding     rules.Finding `json:"finding"`
	Channel     string        `json:"channel"`
	DeliveryErr string        `json:"delivery_error"`
	PreservedAt time.Time     `json:"preserved_at"`
}

// Preserve implements the alerting.FailureJournal interface by pushing the
// finding onto the failed-findings list.
func (c *client) Preserve(ctx context.Context, finding rules.Finding, channel string, deliveryErr error) error {
	record := failedFindingRecord{
		Finding:     finding,
		Channel:     channel,
		DeliveryErr: deliveryErr.Error(),
		PreservedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return c.conn.LPush(ctx, failedFindingsKey, payload).Err()
}

// Compile-time assertion to ensure *client satisfies the FailureJournal interface.
var _ alerting.FailureJournal = new(client)
