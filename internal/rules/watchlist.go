package rules

import (
	"fmt"

	"github.com/gabapcia/txsentinel/internal/pkg/types"
)

// WatchlistRuleID identifies the built-in address-of-interest rule.
const WatchlistRuleID = "watchlist"

// watchlistRule fires when an event's origin or destination matches a
// watched address. It also tracks funds moved by a flagged actor: every
// address a watched actor sends to becomes watched transitively, up to a
// bounded hop count so the tracked set cannot grow without limit.
type watchlistRule struct {
	seed    types.Set[string] // addresses configured at startup (hop 0)
	maxHops int               // maximum transitive hop distance from a seed address
}

// Compile-time assertion that watchlistRule implements the Rule interface.
var _ Rule = (*watchlistRule)(nil)

// watchlistState is the rule's rolling-state namespace: the hop distance of
// every currently watched address. Seed addresses sit at hop 0; an address
// first funded by a hop-h actor is recorded at hop h+1.
type watchlistState struct {
	hops map[string]int
}

// NewWatchlistRule creates the address-of-interest rule for the given seed
// addresses and hop budget. A maxHops of zero disables transitive tracking.
func NewWatchlistRule(addresses []string, maxHops int) *watchlistRule {
	return &watchlistRule{
		seed:    types.NewSet(addresses...),
		maxHops: maxHops,
	}
}

func (r *watchlistRule) ID() string {
	return WatchlistRuleID
}

func (r *watchlistRule) Description() string {
	return "detects activity involving watched addresses and funds they move onward"
}

func (r *watchlistRule) Severity() Severity {
	return SeverityHigh
}

// NewState seeds a fresh hop map with the configured addresses at hop 0.
func (r *watchlistRule) NewState() RollingState {
	hops := make(map[string]int, r.seed.Len())
	for addr := range r.seed.ToIter() {
		hops[addr] = 0
	}

	return &watchlistState{hops: hops}
}

// Evaluate fires when either side of the event is watched. When the origin
// is watched at hop h and the hop budget allows, the destination becomes
// watched at hop h+1 (keeping the smaller hop if it is already tracked).
func (r *watchlistRule) Evaluate(event Event, state RollingState) ([]Finding, error) {
	st, ok := state.(*watchlistState)
	if !ok {
		return nil, fmt.Errorf("unexpected rolling state type %T", state)
	}

	fromHop, fromWatched := st.hops[event.From]
	_, toWatched := st.hops[event.To]

	if fromWatched && event.To != "" {
		nextHop := fromHop + 1
		if nextHop <= r.maxHops {
			if current, tracked := st.hops[event.To]; !tracked || nextHop < current {
				st.hops[event.To] = nextHop
			}
		}
	}

	var description string
	switch {
	case fromWatched && toWatched:
		description = fmt.Sprintf("watched addresses %s and %s interacted", event.From, event.To)
	case fromWatched:
		description = fmt.Sprintf("watched address %s (hop %d) moved %s to %s", event.From, fromHop, event.Value, event.To)
	case toWatched:
		description = fmt.Sprintf("watched address %s received %s from %s", event.To, event.Value, event.From)
	default:
		return nil, nil
	}

	return []Finding{newDetection(r, event, description)}, nil
}
