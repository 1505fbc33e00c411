package txstream

import (
	"fmt"

	"github.com/gabapcia/txsentinel/internal/pkg/types"
)

// Sequence is the strict ordering key of the event stream: the block (or
// slot) height an event belongs to, plus its position within that block.
type Sequence struct {
	Height uint64 // Block or slot height
	Index  uint32 // Position of the event within its block
}

// Before reports whether s is strictly ordered before other.
func (s Sequence) Before(other Sequence) bool {
	if s.Height != other.Height {
		return s.Height < other.Height
	}
	return s.Index < other.Index
}

// IsZero reports whether the sequence is the zero value, used to signal
// "no resume point" when subscribing to a source.
func (s Sequence) IsZero() bool {
	return s.Height == 0 && s.Index == 0
}

// String renders the sequence as "height/index".
func (s Sequence) String() string {
	return fmt.Sprintf("%d/%d", s.Height, s.Index)
}

// Event represents one observed on-chain action (a transaction or an
// internal call within one), normalized into the canonical record every
// downstream component consumes. Events are immutable once ingested.
type Event struct {
	ID       string       // Unique event identifier (e.g., transaction hash)
	From     string       // Origin address
	To       string       // Destination address
	Value    types.BigInt // Value transferred, in base units (arbitrary precision)
	Sequence Sequence     // Strict stream ordering key
	Payload  string       // Call-data reference, uninterpreted by the stream
}
