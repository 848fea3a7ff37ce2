package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "```json\n"},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "{}\n```"},
	}}
	assert.Equal(t, "```json\n{}\n```", resp.Text())

	var nilResp *MessageResponse
	assert.Empty(t, nilResp.Text())
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 6.0, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.InDelta(t, 18.0, u.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown-model"))
	assert.Zero(t, TokenUsage{}.EstimateCost("claude-haiku-4-5-20251001"))
}

func TestLogCost(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	u := TokenUsage{InputTokens: 2000, OutputTokens: 300}

	u.LogCost(zap.New(core), "claude-haiku-4-5-20251001", "ai_extract")

	entries := logs.FilterMessage("cost attribution").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "ai_extract", fields["phase"])
		assert.Equal(t, int64(2000), fields["input_tokens"])
		assert.InDelta(t, 0.0035, fields["estimated_cost_usd"], 1e-9)
	}

	assert.NotPanics(t, func() { u.LogCost(nil, "m", "p") })
}
