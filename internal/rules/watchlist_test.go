package rules

import (
	"testing"

	"github.com/gabapcia/txsentinel/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlistRule_Evaluate(t *testing.T) {
	t.Run("fires when the origin is a seed address", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 0)
		state := rule.NewState()

		event := Event{ID: "0x1", From: "0xbad", To: "0xother", Value: types.BigIntFromInt64(10)}

		findings, err := rule.Evaluate(event, state)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, WatchlistRuleID, findings[0].RuleID)
		assert.Equal(t, SeverityHigh, findings[0].Severity)
	})

	t.Run("fires when the destination is a seed address", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 0)
		state := rule.NewState()

		event := Event{ID: "0x1", From: "0xother", To: "0xbad", Value: types.BigIntFromInt64(10)}

		findings, err := rule.Evaluate(event, state)
		require.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("emits exactly one finding when both sides are watched", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad", "0xworse"}, 0)
		state := rule.NewState()

		event := Event{ID: "0x1", From: "0xbad", To: "0xworse"}

		findings, err := rule.Evaluate(event, state)
		require.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("does not fire for unwatched addresses", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 1)
		state := rule.NewState()

		event := Event{ID: "0x1", From: "0xa", To: "0xb"}

		findings, err := rule.Evaluate(event, state)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("tracks funds moved by a watched actor transitively", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 1)
		state := rule.NewState()

		// Hop 0 actor funds a fresh address, which becomes hop 1.
		first := Event{ID: "0x1", From: "0xbad", To: "0xmule"}
		findings, err := rule.Evaluate(first, state)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		// The hop 1 address is now watched.
		second := Event{ID: "0x2", From: "0xmule", To: "0xcashout"}
		findings, err = rule.Evaluate(second, state)
		require.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("stops propagation beyond the hop budget", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 1)
		state := rule.NewState()

		first := Event{ID: "0x1", From: "0xbad", To: "0xmule"}
		_, err := rule.Evaluate(first, state)
		require.NoError(t, err)

		// 0xmule sits at hop 1, the budget limit; 0xcashout must not be
		// tracked even though the event itself fires.
		second := Event{ID: "0x2", From: "0xmule", To: "0xcashout"}
		findings, err := rule.Evaluate(second, state)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		third := Event{ID: "0x3", From: "0xcashout", To: "0xclean"}
		findings, err = rule.Evaluate(third, state)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("zero hop budget disables transitive tracking", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 0)
		state := rule.NewState()

		first := Event{ID: "0x1", From: "0xbad", To: "0xmule"}
		_, err := rule.Evaluate(first, state)
		require.NoError(t, err)

		second := Event{ID: "0x2", From: "0xmule", To: "0xcashout"}
		findings, err := rule.Evaluate(second, state)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("keeps the smaller hop for addresses reached twice", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad", "0xalso"}, 2)
		state := rule.NewState()

		// 0xmule is first reached at hop 1 via 0xbad...
		_, err := rule.Evaluate(Event{ID: "0x1", From: "0xbad", To: "0xmule"}, state)
		require.NoError(t, err)

		// ...and a later hop 1 reach from 0xalso must not demote it.
		_, err = rule.Evaluate(Event{ID: "0x2", From: "0xalso", To: "0xmule"}, state)
		require.NoError(t, err)

		st, ok := state.(*watchlistState)
		require.True(t, ok)
		assert.Equal(t, 1, st.hops["0xmule"])
	})

	t.Run("returns an error for a foreign rolling state type", func(t *testing.T) {
		rule := NewWatchlistRule([]string{"0xbad"}, 0)

		_, err := rule.Evaluate(Event{ID: "0x1"}, "not a watchlist state")
		require.Error(t, err)
	})
}
