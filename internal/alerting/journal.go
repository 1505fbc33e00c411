package alerting

import (
	"context"

	"github.com/gabapcia/txsentinel/internal/rules"
)

// FailureJournal preserves findings whose delivery failed after every retry,
// keeping them queryable for manual follow-up. A finding must never be lost
// just because its notification channel was down.
type FailureJournal interface {
	// Preserve records the finding together with the delivery error that
	// exhausted the retry budget.
	Preserve(ctx context.Context, finding rules.Finding, channel string, deliveryErr error) error
}

// nopJournal is the default FailureJournal: failed findings are only logged
// by the dispatcher, not persisted anywhere.
type nopJournal struct{}

var _ FailureJournal = nopJournal{}

func (nopJournal) Preserve(context.Context, rules.Finding, string, error) error {
	return nil
}
