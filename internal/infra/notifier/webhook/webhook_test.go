package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	transporthttp "github.com/gabapcia/txsentinel/internal/pkg/transport/http"
	"github.com/gabapcia/txsentinel/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Deliver(t *testing.T) {
	t.Run("posts the finding as JSON to the endpoint", func(t *testing.T) {
		var received notification

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		n := NewNotifier(transporthttp.NewClient(transporthttp.WithRetryMax(0)), srv.URL)

		finding := rules.Finding{
			RuleID:      rules.LargeTransferRuleID,
			Kind:        rules.KindDetection,
			Severity:    rules.SeverityMedium,
			Description: "large transfer",
			EventID:     "0xabc",
		}

		err := n.Deliver(t.Context(), finding, "security-alerts")
		require.NoError(t, err)

		assert.Equal(t, "security-alerts", received.Channel)
		assert.Equal(t, rules.LargeTransferRuleID, received.Finding.RuleID)
		assert.Equal(t, "0xabc", received.Finding.EventID)
	})

	t.Run("reports a non-2xx response as a delivery failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		n := NewNotifier(transporthttp.NewClient(transporthttp.WithRetryMax(0)), srv.URL)

		err := n.Deliver(t.Context(), rules.Finding{RuleID: "x"}, "security-alerts")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("reports an unreachable endpoint as a delivery failure", func(t *testing.T) {
		n := NewNotifier(transporthttp.NewClient(transporthttp.WithRetryMax(0)), "http://127.0.0.1:0")

		err := n.Deliver(t.Context(), rules.Finding{RuleID: "x"}, "security-alerts")
		require.Error(t, err)
	})
}
