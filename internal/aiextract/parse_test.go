package aiextract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/strack/internal/model"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":{"b":2}} hope that helps {"c":3}`, `{"a":{"b":2}}`},
		{"braces in strings", `{"reason":"use } carefully \" {","x":1}`, `{"reason":"use } carefully \" {","x":1}`},
		{"truncated", `{"name":"Netflix","pricing":[`, ""},
		{"no object", "sorry, I cannot help", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestParseResponse(t *testing.T) {
	text := "```json\n" + `{
  "name": "Netflix",
  "description": "Streaming video",
  "pricing": [{"plan": "Standard", "cost": "15,49", "currency": "usd", "billingCycle": "month"}],
  "recommendedPlan": {"cost": 15.49, "currency": "USD", "billingCycle": "monthly", "reason": "cheapest"},
  "category": "Streaming",
  "manageUrl": "https://www.netflix.com/account",
  "cancelUrl": "javascript:alert(1)",
  "logoUrl": null,
  "confidence": 1.7
}` + "\n```"

	out, err := ParseResponse(text)
	require.NoError(t, err)

	assert.Equal(t, "Netflix", out.Name)
	require.Len(t, out.Pricing, 1)
	assert.InDelta(t, 15.49, out.Pricing[0].Cost, 1e-9)
	assert.Equal(t, model.CurrencyUSD, out.Pricing[0].Currency)
	assert.Equal(t, model.BillingMonthly, out.Pricing[0].BillingCycle)
	assert.Equal(t, model.CategoryStreaming, out.Category)
	assert.Equal(t, "https://www.netflix.com/account", out.ManageURL)
	assert.Empty(t, out.CancelURL)
	assert.Empty(t, out.LogoURL)
	assert.Equal(t, 1.0, out.Confidence)
}

func TestParseResponse_Failures(t *testing.T) {
	for _, text := range []string{
		"",
		"I could not find any pricing.",
		`{"name": "Netflix", "pricing": [`,
		`{"name": "Netflix",}`,
	} {
		out, err := ParseResponse(text)
		assert.Nil(t, out, text)
		assert.True(t, errors.Is(err, ErrParse), text)
	}
}
