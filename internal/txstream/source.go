package txstream

import "context"

// SourceEvent represents either a newly observed event or an error that
// occurred while the source was producing it.
type SourceEvent struct {
	Event Event // the normalized event (zero value if Err is set)
	Err   error // any error encountered during retrieval (nil on success)
}

// Source is the external collaborator boundary of the ingestion layer: a
// provider of a lazy, potentially unbounded sequence of on-chain events
// (a node RPC poller, an indexer subscription, a replay file).
//
// The source is expected to deliver events in non-decreasing Sequence order;
// the stream service verifies the guarantee and reports violations rather
// than trusting it blindly.
type Source interface {
	// Subscribe begins streaming events from the given sequence (inclusive).
	// If from is the zero value, the implementation should start from the
	// most recent data it knows about.
	//
	// It returns a receive-only channel of SourceEvent; the channel is
	// closed when ctx is canceled or the source is exhausted.
	Subscribe(ctx context.Context, from Sequence) (<-chan SourceEvent, error)
}
