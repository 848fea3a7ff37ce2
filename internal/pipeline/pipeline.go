// Package pipeline turns raw user text into an ExtractionResult by trying
// progressively weaker sources: the user's own text, the known-service
// catalog, the AI extractor with scraped context, the scraper alone, and
// finally a manual-entry result.
package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yasinhessnawi1/strack/internal/config"
	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/resolve"
	"github.com/yasinhessnawi1/strack/internal/scrape"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// Scraper fetches the best pricing page for a base URL.
type Scraper interface {
	ScrapeBest(ctx context.Context, baseURL string, timeout time.Duration) scrape.ChainResult
}

// AIExtractor asks a model for subscription details.
type AIExtractor interface {
	Available() bool
	Extract(ctx context.Context, in model.ResolvedInput, scraped *model.ScrapedContent, timeout time.Duration, maxRetries int) (*model.AIExtraction, model.Attempt)
}

// Pipeline runs extractions. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	resolver *resolve.Resolver
	scraper  Scraper
	ai       AIExtractor
	cfg      config.ExtractionConfig
}

// New creates a Pipeline. Either collaborator may be nil, which disables
// that stage.
func New(r *resolve.Resolver, s Scraper, ai AIExtractor, cfg config.ExtractionConfig) *Pipeline {
	return &Pipeline{resolver: r, scraper: s, ai: ai, cfg: cfg}
}

// Resolver returns the resolver the pipeline classifies input with.
func (p *Pipeline) Resolver() *resolve.Resolver { return p.resolver }

// AIAvailable reports whether the AI extractor is configured.
func (p *Pipeline) AIAvailable() bool {
	return p.ai != nil && p.ai.Available()
}

// Option overrides one extraction setting for a single call.
type Option func(*config.ExtractionConfig)

// WithAIEnabled turns the AI stage on or off.
func WithAIEnabled(enabled bool) Option {
	return func(c *config.ExtractionConfig) { c.AIEnabled = enabled }
}

// WithScraperEnabled turns every page fetch on or off.
func WithScraperEnabled(enabled bool) Option {
	return func(c *config.ExtractionConfig) { c.ScraperEnabled = enabled }
}

// WithThreshold sets the minimum AI confidence accepted without merging.
func WithThreshold(t float64) Option {
	return func(c *config.ExtractionConfig) { c.AIConfidenceThreshold = t }
}

// WithAITimeout bounds the AI call, retries included.
func WithAITimeout(d time.Duration) Option {
	return func(c *config.ExtractionConfig) { c.AITimeoutMs = int(d.Milliseconds()) }
}

// WithScraperTimeout bounds each page fetch.
func WithScraperTimeout(d time.Duration) Option {
	return func(c *config.ExtractionConfig) { c.ScraperTimeoutMs = int(d.Milliseconds()) }
}

// WithMaxRetries sets how many times a failed AI call is retried.
func WithMaxRetries(n int) Option {
	return func(c *config.ExtractionConfig) { c.MaxRetries = n }
}

// settings applies opts over the base config. An option that leaves the
// config invalid is dropped and the rest still apply.
func (p *Pipeline) settings(log *zap.Logger, opts []Option) config.ExtractionConfig {
	cfg := p.cfg
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		next := cfg
		opt(&next)
		if err := next.Validate(); err != nil {
			log.Warn("pipeline: ignoring invalid override", zap.Error(err))
			continue
		}
		cfg = next
	}
	return cfg
}

// run is the state threaded through the stages of one invocation. Stages
// take it by value and return the updated copy.
type run struct {
	log      *zap.Logger
	id       string
	cfg      config.ExtractionConfig
	in       model.ResolvedInput
	attempts []model.Attempt

	scraped     *model.ScrapedContent
	scrapedURL  string
	scrapeTried bool
}

// record appends attempts to a copy of the trace and logs each one.
func (r run) record(stage string, attempts ...model.Attempt) run {
	r.attempts = slices.Concat(r.attempts, attempts)
	for _, a := range attempts {
		fields := []zap.Field{
			zap.String("stage", stage),
			zap.String("method", string(a.Method)),
			zap.Int64("duration_ms", a.DurationMs),
		}
		if a.Success {
			r.log.Info("pipeline: stage complete", fields...)
		} else {
			r.log.Warn("pipeline: stage failed", append(fields, zap.String("error", a.Error))...)
		}
	}
	return r
}

// Extract runs the pipeline on input. It never fails: every problem ends up
// in the returned result's attempts or requiresManualInput.
func (p *Pipeline) Extract(ctx context.Context, input string, opts ...Option) *model.ExtractionResult {
	start := time.Now()
	id := uuid.NewString()
	log := zap.L().With(zap.String("run_id", id))

	r := run{log: log, id: id, cfg: p.settings(log, opts)}

	v := validate.UserInput(input)
	if !v.Valid {
		log.Info("pipeline: invalid input", zap.String("error", v.Err()))
		r.in = model.ResolvedInput{OriginalInput: input, InputType: model.InputTypeServiceName}
		return p.finish(r, start, manualResult("Invalid input: "+v.Err()))
	}

	r.in = p.resolver.Resolve(v.Sanitized)
	r.log = log.With(zap.String("input", v.Sanitized))
	r.log.Info("pipeline: input resolved",
		zap.String("input_type", string(r.in.InputType)),
		zap.Bool("custom", r.in.IsCustomSubscription),
		zap.String("known_service", r.in.KnownServiceKey),
	)

	if r.in.IsCustomSubscription {
		return p.finish(r, start, customResult(r))
	}

	if svc := p.resolver.KnownService(r.in); svc != nil {
		res, next := p.knownService(ctx, r, svc)
		return p.finish(next, start, res)
	}

	res, r := p.aiWithContext(ctx, r)
	if res != nil {
		return p.finish(r, start, res)
	}

	res, r = p.scraperOnly(ctx, r)
	if res != nil {
		return p.finish(r, start, res)
	}

	return p.finish(r, start, manualResult(""))
}

func (p *Pipeline) finish(r run, start time.Time, res *model.ExtractionResult) *model.ExtractionResult {
	res.RunID = r.id
	res.ResolvedInput = r.in
	res.Attempts = r.attempts
	if res.Attempts == nil {
		res.Attempts = []model.Attempt{}
	}
	r.log.Info("pipeline: extraction complete",
		zap.String("source", string(res.Source)),
		zap.Bool("success", res.Success),
		zap.Float64("confidence", res.Confidence),
		zap.Strings("requires_manual_input", res.RequiresManualInput),
		zap.Int("attempts", len(res.Attempts)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res
}

func (p *Pipeline) aiUsable(cfg config.ExtractionConfig) bool {
	return cfg.AIEnabled && p.AIAvailable()
}

// scrapeOnce fetches context for baseURL at most once per run. Later calls
// reuse the first outcome, including a failure.
func (p *Pipeline) scrapeOnce(ctx context.Context, r run, baseURL string) run {
	if r.scrapeTried || !r.cfg.ScraperEnabled || p.scraper == nil || baseURL == "" {
		return r
	}
	r.scrapeTried = true
	res := p.scraper.ScrapeBest(ctx, baseURL, r.cfg.ScraperTimeout())
	r = r.record("scrape", res.Attempts...)
	r.scraped = res.Content
	r.scrapedURL = res.URL
	return r
}
