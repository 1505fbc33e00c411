package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfCallRule_Evaluate(t *testing.T) {
	rule := NewSelfCallRule()

	t.Run("fires when origin and destination match", func(t *testing.T) {
		event := Event{ID: "0xabc", From: "0xdead", To: "0xdead"}

		findings, err := rule.Evaluate(event, rule.NewState())
		require.NoError(t, err)
		require.Len(t, findings, 1)

		assert.Equal(t, SelfCallRuleID, findings[0].RuleID)
		assert.Equal(t, SeverityHigh, findings[0].Severity)
		assert.Equal(t, "0xabc", findings[0].EventID)
	})

	t.Run("does not fire when addresses differ", func(t *testing.T) {
		event := Event{ID: "0xabc", From: "0x1", To: "0x2"}

		findings, err := rule.Evaluate(event, rule.NewState())
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("ignores events with empty origin and destination", func(t *testing.T) {
		event := Event{ID: "0xabc"}

		findings, err := rule.Evaluate(event, rule.NewState())
		require.NoError(t, err)
		assert.Empty(t, findings)
	})
}
