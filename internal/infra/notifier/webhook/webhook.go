// Package webhook implements the alerting.Sink interface by POSTing findings
// as JSON payloads to a configured HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gabapcia/txsentinel/internal/alerting"
	"github.com/gabapcia/txsentinel/internal/rules"

	"github.com/hashicorp/go-retryablehttp"
)

// notification is the wire shape of a delivered finding. The channel rides
// along so a single endpoint can fan out to multiple destinations.
type notification struct {
	Channel     string        `json:"channel"`
	Finding     rules.Finding `json:"finding"`
	DeliveredAt time.Time     `json:"delivered_at"`
}

// notifier delivers findings to a webhook endpoint. Retries are owned by the
// alerting dispatcher, so the underlying HTTP client must be configured with
// retries disabled.
type notifier struct {
	endpoint   string
	httpClient *retryablehttp.Client
}

// Compile-time assertion that notifier implements the alerting.Sink interface.
var _ alerting.Sink = (*notifier)(nil)

// Deliver POSTs the finding to the webhook endpoint and reports any non-2xx
// response as a delivery failure.
func (n *notifier) Deliver(ctx context.Context, finding rules.Finding, channel string) error {
	body, err := json.Marshal(notification{
		Channel:     channel,
		Finding:     finding,
		DeliveredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned unexpected status code %d", res.StatusCode)
	}

	return nil
}

// NewNotifier creates an alerting.Sink that delivers findings to the given
// webhook endpoint.
func NewNotifier(httpClient *retryablehttp.Client, endpoint string) *notifier {
	return &notifier{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}
