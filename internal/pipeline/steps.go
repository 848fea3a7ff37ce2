package pipeline

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/resolve"
	"github.com/yasinhessnawi1/strack/internal/scrape"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// Confidence levels and tolerances for each source.
const (
	knownServiceConfidence = 0.95
	customPricedConfidence = 0.9
	customBareConfidence   = 0.3
	lowConfidenceDiscount  = 0.8

	aiTolerance      = 1
	scraperTolerance = 2
)

func customResult(r run) *model.ExtractionResult {
	in := r.in
	res := &model.ExtractionResult{
		Source:       model.SourceManual,
		Confidence:   customBareConfidence,
		Name:         in.ServiceName,
		Description:  in.CustomDescription,
		Cost:         in.ExtractedPrice,
		Currency:     in.ExtractedCurrency,
		BillingCycle: in.BillingHint,
		Category:     resolve.DetectCategory(in.OriginalInput),
	}
	if res.Cost != nil {
		res.Confidence = customPricedConfidence
	}
	if res.Currency == "" {
		res.Currency = model.CurrencyUSD
	}
	if res.BillingCycle == "" {
		res.BillingCycle = model.BillingMonthly
	}

	res.RequiresManualInput = validate.RequiredManualFields(res)
	if len([]rune(res.Name)) == 1 {
		res.RequiresManualInput = append([]string{model.FieldName}, res.RequiresManualInput...)
	}
	res.Success = len(res.RequiresManualInput) == 0

	r.log.Info("pipeline: custom subscription",
		zap.String("name", res.Name),
		zap.String("category", string(res.Category)),
		zap.Bool("success", res.Success),
	)
	return res
}

// knownService builds the catalog result and, when it is incomplete, tries
// to fill the gaps with the AI. It always returns a result.
func (p *Pipeline) knownService(ctx context.Context, r run, svc *model.KnownService) (*model.ExtractionResult, run) {
	known := knownResult(r.in, svc)
	if len(known.RequiresManualInput) == 0 {
		r.log.Debug("pipeline: known service complete, skipping AI", zap.String("service", svc.Name))
		return known, r
	}
	if !p.aiUsable(r.cfg) {
		return known, r
	}

	r = p.scrapeOnce(ctx, r, p.resolver.BestURLForScraping(r.in))
	ai, attempt := p.ai.Extract(ctx, r.in, r.scraped, r.cfg.AITimeout(), r.cfg.MaxRetries)
	r = r.record("ai", attempt)

	if ai != nil && ai.Confidence >= r.cfg.AIConfidenceThreshold {
		return mergeKnownWithAI(known, ai), r
	}
	return known, r
}

// aiWithContext handles a service the catalog does not know: scrape for
// context, ask the AI, and merge with the scraped data when the AI is
// unsure. A nil result means the next stage should run.
func (p *Pipeline) aiWithContext(ctx context.Context, r run) (*model.ExtractionResult, run) {
	if !p.aiUsable(r.cfg) || r.in.URL == "" {
		return nil, r
	}

	r = p.scrapeOnce(ctx, r, r.in.URL)
	ai, attempt := p.ai.Extract(ctx, r.in, r.scraped, r.cfg.AITimeout(), r.cfg.MaxRetries)
	r = r.record("ai", attempt)

	switch {
	case ai == nil:
		return nil, r
	case ai.Confidence >= r.cfg.AIConfidenceThreshold:
		return aiResult(r.in, ai), r
	case r.scraped != nil:
		base := scraperResult(r.in, scrape.ExtractFromContent(r.scraped))
		return mergeScraperWithAI(base, ai), r
	default:
		return aiResult(r.in, ai), r
	}
}

// scraperOnly extracts straight from page content, reusing any page already
// fetched in this run.
func (p *Pipeline) scraperOnly(ctx context.Context, r run) (*model.ExtractionResult, run) {
	r = p.scrapeOnce(ctx, r, r.in.URL)
	if r.scraped == nil {
		return nil, r
	}
	return scraperResult(r.in, scrape.ExtractFromContent(r.scraped)), r
}

func manualResult(reason string) *model.ExtractionResult {
	return &model.ExtractionResult{
		Source:              model.SourceManual,
		Description:         reason,
		RequiresManualInput: model.CoreFields(),
	}
}

func knownResult(in model.ResolvedInput, svc *model.KnownService) *model.ExtractionResult {
	res := &model.ExtractionResult{
		Source:       model.SourceKnownService,
		Confidence:   knownServiceConfidence,
		Name:         svc.Name,
		Description:  svc.Name + " subscription",
		Currency:     svc.DefaultCurrency,
		BillingCycle: svc.DefaultBillingCycle,
		Category:     svc.Category,
		LogoURL:      svc.LogoURL,
		ManageURL:    svc.ManageURL,
		CancelURL:    svc.CancelURL,
	}
	if tier := pickTier(svc.TypicalPrices, in.BillingHint); tier != nil {
		cost := tier.Cost
		res.Cost = &cost
		res.BillingCycle = tier.BillingCycle
	}
	res.RequiresManualInput = validate.RequiredManualFields(res)
	res.Success = len(res.RequiresManualInput) == 0
	return res
}

// pickTier returns the cheapest tier by monthly equivalent, restricted to
// the hinted cycle when any tier has it.
func pickTier(tiers []model.PriceTier, hint model.BillingCycle) *model.PriceTier {
	cheapest := func(match func(model.PriceTier) bool) *model.PriceTier {
		var best *model.PriceTier
		bestMonthly := math.Inf(1)
		for i := range tiers {
			t := &tiers[i]
			if t.Cost <= 0 || !match(*t) {
				continue
			}
			if m := t.Cost * t.BillingCycle.MonthlyFactor(); m < bestMonthly {
				best, bestMonthly = t, m
			}
		}
		return best
	}

	if hint != "" {
		if t := cheapest(func(t model.PriceTier) bool { return t.BillingCycle == hint }); t != nil {
			return t
		}
	}
	return cheapest(func(model.PriceTier) bool { return true })
}

func aiResult(in model.ResolvedInput, ai *model.AIExtraction) *model.ExtractionResult {
	res := &model.ExtractionResult{
		Source:      model.SourceAI,
		Confidence:  ai.Confidence,
		Name:        firstNonEmpty(ai.Name, in.ServiceName),
		Description: ai.Description,
		Category:    ai.Category,
		LogoURL:     ai.LogoURL,
		ManageURL:   ai.ManageURL,
		CancelURL:   ai.CancelURL,
	}
	if plan := ai.RecommendedPlan; plan != nil {
		res.Cost = positive(plan.Cost)
		res.Currency = plan.Currency
		res.BillingCycle = plan.BillingCycle
	}
	res.RequiresManualInput = validate.RequiredManualFields(res)
	res.Success = len(res.RequiresManualInput) <= aiTolerance
	return res
}

func scraperResult(in model.ResolvedInput, data scrape.ContentData) *model.ExtractionResult {
	res := &model.ExtractionResult{
		Source:       model.SourceScraper,
		Confidence:   scrape.ContentConfidence,
		Name:         firstNonEmpty(data.Name, in.ServiceName),
		Cost:         data.Cost,
		Currency:     data.Currency,
		BillingCycle: data.BillingCycle,
		LogoURL:      data.LogoURL,
		ManageURL:    data.ManageURL,
		CancelURL:    data.CancelURL,
	}
	res.RequiresManualInput = validate.RequiredManualFields(res)
	res.Success = len(res.RequiresManualInput) <= scraperTolerance
	return res
}

// mergeKnownWithAI takes prices and description from the AI and everything
// stable from the catalog. Confidence never drops below the catalog's.
func mergeKnownWithAI(known *model.ExtractionResult, ai *model.AIExtraction) *model.ExtractionResult {
	merged := *known
	merged.Source = model.SourceAI
	merged.Confidence = math.Max(known.Confidence, ai.Confidence)
	merged.Description = firstNonEmpty(ai.Description, known.Description)
	merged.LogoURL = firstNonEmpty(known.LogoURL, ai.LogoURL)
	merged.ManageURL = firstNonEmpty(known.ManageURL, ai.ManageURL)
	merged.CancelURL = firstNonEmpty(known.CancelURL, ai.CancelURL)

	if plan := ai.RecommendedPlan; plan != nil {
		if c := positive(plan.Cost); c != nil {
			merged.Cost = c
		}
		if plan.Currency != "" {
			merged.Currency = plan.Currency
		}
		if plan.BillingCycle != "" {
			merged.BillingCycle = plan.BillingCycle
		}
	}

	merged.RequiresManualInput = validate.RequiredManualFields(&merged)
	merged.Success = len(merged.RequiresManualInput) <= aiTolerance
	return &merged
}

// mergeScraperWithAI keeps every scraped field and lets a low-confidence AI
// reply fill only what the page did not show.
func mergeScraperWithAI(base *model.ExtractionResult, ai *model.AIExtraction) *model.ExtractionResult {
	merged := *base
	merged.Confidence = math.Max(base.Confidence, ai.Confidence*lowConfidenceDiscount)
	merged.Name = firstNonEmpty(base.Name, ai.Name)
	merged.Description = firstNonEmpty(base.Description, ai.Description)
	merged.Category = model.Category(firstNonEmpty(string(base.Category), string(ai.Category)))
	merged.LogoURL = firstNonEmpty(base.LogoURL, ai.LogoURL)
	merged.ManageURL = firstNonEmpty(base.ManageURL, ai.ManageURL)
	merged.CancelURL = firstNonEmpty(base.CancelURL, ai.CancelURL)

	if plan := ai.RecommendedPlan; plan != nil {
		if merged.Cost == nil {
			merged.Cost = positive(plan.Cost)
		}
		if merged.Currency == "" {
			merged.Currency = plan.Currency
		}
		if merged.BillingCycle == "" {
			merged.BillingCycle = plan.BillingCycle
		}
	}

	merged.RequiresManualInput = validate.RequiredManualFields(&merged)
	merged.Success = len(merged.RequiresManualInput) <= aiTolerance
	return &merged
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
