package aiextract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yasinhessnawi1/strack/internal/model"
)

// Prompt size caps for scraped context.
const (
	MaxPromptBodyChars   = 5000
	MaxPromptJSONLDChars = 2000
)

const responseSchema = `{
  "name": "Service Name or Custom Subscription Name",
  "description": "Brief description of the service/subscription (1-2 sentences)",
  "pricing": [
    {"plan": "plan name", "cost": 0.00, "currency": "USD", "billingCycle": "monthly"}
  ],
  "recommendedPlan": {
    "cost": 0.00,
    "currency": "USD",
    "billingCycle": "monthly",
    "reason": "Why this plan is recommended"
  },
  "category": "streaming|software|cloud|productivity|entertainment|education|finance|health|news|other",
  "manageUrl": "https://... or null",
  "cancelUrl": "https://... or null",
  "logoUrl": "https://... or null",
  "confidence": 0.0
}`

const rules = `RULES:
1. ALWAYS recommend the CHEAPEST available plan as the default in recommendedPlan
2. Use ISO currency codes only: USD, EUR, GBP, SEK, NOK, DKK
3. Valid billing cycles: weekly, monthly, quarterly, yearly
4. Set confidence between 0.0 and 1.0 based on how certain you are
5. If a field cannot be determined, set it to null
6. For custom/personal subscriptions, use the pre-extracted price and currency if provided
7. For custom subscriptions, set manageUrl and cancelUrl to null
8. Category must be one of: streaming, software, cloud, productivity, entertainment, education, finance, health, news, other
9. Return ONLY the JSON object: no markdown code blocks, no explanations`

// BuildPrompt renders the extraction prompt for in and optional scraped
// context. Scraped text is truncated before embedding.
func BuildPrompt(in model.ResolvedInput, scraped *model.ScrapedContent) string {
	var ctx []string
	add := func(format string, args ...any) { ctx = append(ctx, fmt.Sprintf(format, args...)) }

	add("User Input: %q", in.OriginalInput)
	if in.ServiceName != "" {
		add("Service Name (detected): %s", in.ServiceName)
	}
	if in.URL != "" {
		add("URL: %s", in.URL)
	}
	if in.PlanHint != "" {
		add("Plan Hint: %s", in.PlanHint)
	}
	if in.BillingHint != "" {
		add("Billing Cycle Hint: %s", in.BillingHint)
	}
	if in.IsCustomSubscription {
		add("This appears to be a CUSTOM/PERSONAL subscription (not a commercial service).")
		if in.ExtractedPrice != nil {
			add("Pre-extracted Price: %g", *in.ExtractedPrice)
		}
		if in.ExtractedCurrency != "" {
			add("Pre-extracted Currency: %s", in.ExtractedCurrency)
		}
	}

	if scraped != nil {
		if scraped.Title != "" {
			add("Page Title: %s", scraped.Title)
		}
		if scraped.Description != "" {
			add("Page Description: %s", scraped.Description)
		}
		if scraped.BodyText != "" {
			add("Page Content (truncated): %s", truncate(scraped.BodyText, MaxPromptBodyChars))
		}
		if len(scraped.JSONLD) > 0 {
			if raw, err := json.Marshal(scraped.JSONLD); err == nil {
				add("Structured Data (JSON-LD): %s", truncate(string(raw), MaxPromptJSONLDChars))
			}
		}
	}

	var b strings.Builder
	b.WriteString("You are a subscription data extraction assistant. Extract subscription details from the context below and return ONLY a valid JSON object.\n\n")
	b.WriteString(strings.Join(ctx, "\n"))
	b.WriteString("\n\nReturn ONLY this exact JSON structure (no markdown, no explanations, just the JSON):\n\n")
	b.WriteString(responseSchema)
	b.WriteString("\n\n")
	b.WriteString(rules)
	b.WriteString("\n\nOutput must be parseable JSON. Do not include any text before or after the JSON object.")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
