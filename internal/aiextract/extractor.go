// Package aiextract asks a language model to fill in subscription details
// from the resolved input and any scraped page.
package aiextract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/resilience"
	"github.com/yasinhessnawi1/strack/pkg/anthropic"
)

var (
	// ErrUnavailable means no model credential is configured.
	ErrUnavailable = eris.New("aiextract: AI extraction not configured")
	// ErrParse means the model replied with something that is not a usable
	// JSON object.
	ErrParse = eris.New("aiextract: failed to parse AI response")
)

// Defaults for Config.
const (
	DefaultModel       = "claude-haiku-4-5-20251001"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.1
)

const customPlanReason = "Extracted from user input"

// Config tunes the completion request.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Extractor runs one completion per Extract call through a shared handle.
type Extractor struct {
	handle *anthropic.Handle
	cfg    Config
}

// New creates an Extractor. A nil handle yields an unavailable extractor.
func New(h *anthropic.Handle, cfg Config) *Extractor {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Extractor{handle: h, cfg: cfg}
}

// Available reports whether a model credential is configured.
func (e *Extractor) Available() bool {
	return e != nil && e.handle.Available()
}

// Extract asks the model for subscription details. The whole call, retries
// included, is bounded by timeout. A nil extraction comes with an attempt
// describing the failure.
func (e *Extractor) Extract(
	ctx context.Context,
	in model.ResolvedInput,
	scraped *model.ScrapedContent,
	timeout time.Duration,
	maxRetries int,
) (*model.AIExtraction, model.Attempt) {
	start := time.Now()
	attempt := model.Attempt{Method: model.SourceAI}
	finish := func(out *model.AIExtraction, err error) (*model.AIExtraction, model.Attempt) {
		attempt.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			attempt.Error = err.Error()
			zap.L().Debug("aiextract: extraction failed",
				zap.String("input", in.OriginalInput),
				zap.Error(err),
				zap.Int64("duration_ms", attempt.DurationMs),
			)
			return nil, attempt
		}
		attempt.Success = true
		return out, attempt
	}

	if !e.Available() {
		return finish(nil, ErrUnavailable)
	}
	client, err := e.handle.Client()
	if err != nil {
		return finish(nil, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := e.request(BuildPrompt(in, scraped))
	policy := resilience.CompletionPolicy(maxRetries)
	policy.NonRetryable = nonRetryable

	resp, err := resilience.DoVal(callCtx, policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		resp, err := client.CreateMessage(ctx, req)
		if err != nil {
			return nil, classify(err)
		}
		return resp, nil
	})
	if err != nil {
		return finish(nil, describe(callCtx, err, timeout))
	}

	resp.Usage.LogCost(zap.L(), e.cfg.Model, "ai_extract")

	out, err := ParseResponse(resp.Text())
	if err != nil {
		return finish(nil, err)
	}
	if in.IsCustomSubscription {
		backfillCustom(out, in)
	}
	return finish(out, nil)
}

func (e *Extractor) request(prompt string) anthropic.MessageRequest {
	temp := e.cfg.Temperature
	return anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: &temp,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
	}
}

// classify marks API errors with their status so the retry policy can tell
// rate limits and server faults apart.
func classify(err error) error {
	code := anthropic.StatusCode(err)
	if resilience.IsTransientHTTPStatus(code) {
		return resilience.NewTransientError(err, code)
	}
	return err
}

// nonRetryable stops on rate limits and on client errors other than 408,
// which no amount of retrying will fix.
func nonRetryable(err error) bool {
	if resilience.IsRateLimit(err) {
		return true
	}
	code := anthropic.StatusCode(err)
	return code >= 400 && code < 500 && code != 408
}

func describe(ctx context.Context, err error, timeout time.Duration) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return eris.Wrap(err, fmt.Sprintf("aiextract: timed out after %s", timeout))
	case resilience.IsRateLimit(err):
		return eris.Wrap(err, "aiextract: rate limited")
	default:
		return eris.Wrap(err, "aiextract: completion failed")
	}
}

// backfillCustom fills pricing from the price found in the user's text when
// the model left it out.
func backfillCustom(out *model.AIExtraction, in model.ResolvedInput) {
	if in.ExtractedPrice == nil {
		return
	}
	currency := in.ExtractedCurrency
	if currency == "" {
		currency = model.CurrencyUSD
	}
	cycle := in.BillingHint
	if cycle == "" {
		cycle = model.BillingMonthly
	}

	if out.RecommendedPlan == nil || out.RecommendedPlan.Cost <= 0 {
		out.RecommendedPlan = &model.RecommendedPlan{
			Cost:         *in.ExtractedPrice,
			Currency:     currency,
			BillingCycle: cycle,
			Reason:       customPlanReason,
		}
	}
	if len(out.Pricing) == 0 {
		out.Pricing = []model.PricingTier{{
			Plan:         "Standard",
			Cost:         *in.ExtractedPrice,
			Currency:     currency,
			BillingCycle: cycle,
		}}
	}
}
