package alerting

import (
	"context"

	"github.com/gabapcia/txsentinel/internal/rules"
)

// Sink is the external collaborator boundary for finding delivery: a
// notification transport (webhook call, queue publish, chat message).
// Channel-specific formatting and transport details live behind this
// interface, outside the pipeline core.
type Sink interface {
	// Deliver attempts to deliver one finding to the given channel. It
	// returns a non-nil error when the delivery attempt failed; the
	// dispatcher owns the retry policy, so implementations should report
	// failures instead of retrying internally.
	Deliver(ctx context.Context, finding rules.Finding, channel string) error
}
