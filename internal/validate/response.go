package validate

import "github.com/yasinhessnawi1/strack/internal/model"

const (
	maxPlanLength   = 100
	maxReasonLength = 500

	defaultPlanName = "Standard"
	defaultReason   = "Cheapest available"
)

// AIResponse converts a decoded model reply into a validated AIExtraction.
// It returns nil when v is not a JSON object. Individual bad fields are
// dropped or defaulted, never fatal.
func AIResponse(v any) *model.AIExtraction {
	data, ok := v.(map[string]any)
	if !ok || data == nil {
		return nil
	}

	out := &model.AIExtraction{
		Pricing:         pricingTiers(data["pricing"]),
		RecommendedPlan: recommendedPlan(data["recommendedPlan"]),
		Category:        Category(data["category"]),
		ManageURL:       URLField(data["manageUrl"]),
		CancelURL:       URLField(data["cancelUrl"]),
		LogoURL:         URLField(data["logoUrl"]),
		Confidence:      Confidence(data["confidence"]),
	}
	if s, ok := data["name"].(string); ok {
		out.Name = Sanitize(s, MaxNameLength)
	}
	if s, ok := data["description"].(string); ok {
		out.Description = Sanitize(s, MaxDescriptionLength)
	}
	return out
}

func pricingTiers(v any) []model.PricingTier {
	items, ok := v.([]any)
	if !ok {
		return []model.PricingTier{}
	}

	tiers := make([]model.PricingTier, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cost := Price(item["cost"])
		if cost == nil || *cost <= 0 {
			continue
		}
		tier := model.PricingTier{
			Plan:         defaultPlanName,
			Cost:         *cost,
			Currency:     orCurrency(Currency(item["currency"]), model.CurrencyUSD),
			BillingCycle: orCycle(BillingCycle(item["billingCycle"]), model.BillingMonthly),
		}
		if s, ok := item["plan"].(string); ok {
			if plan := Sanitize(s, maxPlanLength); plan != "" {
				tier.Plan = plan
			}
		}
		tiers = append(tiers, tier)
	}
	return tiers
}

func recommendedPlan(v any) *model.RecommendedPlan {
	data, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	cost := Price(data["cost"])
	if cost == nil || *cost <= 0 {
		return nil
	}

	plan := &model.RecommendedPlan{
		Cost:         *cost,
		Currency:     orCurrency(Currency(data["currency"]), model.CurrencyUSD),
		BillingCycle: orCycle(BillingCycle(data["billingCycle"]), model.BillingMonthly),
		Reason:       defaultReason,
	}
	if s, ok := data["reason"].(string); ok {
		plan.Reason = Sanitize(s, maxReasonLength)
	}
	return plan
}

func orCurrency(c, fallback model.Currency) model.Currency {
	if c == "" {
		return fallback
	}
	return c
}

func orCycle(c, fallback model.BillingCycle) model.BillingCycle {
	if c == "" {
		return fallback
	}
	return c
}
