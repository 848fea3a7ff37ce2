// Package resolve classifies raw user text into a ResolvedInput: a URL, a
// bare domain, a service name, or a custom subscription described in prose.
package resolve

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yasinhessnawi1/strack/internal/catalog"
	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// DefaultCustomName is used when nothing usable remains of custom text.
const DefaultCustomName = "Custom Subscription"

var (
	domainRe     = regexp.MustCompile(`^[\w-]+\.[\w.-]+$`)
	partialTLDRe = regexp.MustCompile(`(?i)\.(com|org|net|io|co|app|so|us|ai|tv|me|dev|cloud)$`)

	symbolPriceRe  = regexp.MustCompile(`([$€£])\s*(\d+(?:[.,]\d{1,2})?)`)
	wordPriceRe    = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{1,2})?)\s*(dollars?|euros?|pounds?|usd|eur|gbp|sek|nok|dkk|kr)`)
	contextPriceRe = regexp.MustCompile(`(?i)(?:for|costs?|price|at|=)\s*(\d+(?:[.,]\d{1,2})?)`)
	priceSignalRe  = regexp.MustCompile(`(?i)[$€£]|\d+\s*(dollars?|euros?|pounds?|usd|eur|gbp)`)

	contextNumberRe = regexp.MustCompile(`(?i)(?:for|costs?|price|at|=)\s*\d+`)
	slashCycleRe    = regexp.MustCompile(`(?i)\s*/\s*(?:mo(?:nth)?|yr|year|wk|week|qtr|quarter)s?\b`)
	fillerRe        = regexp.MustCompile(`(?i)\b(for|my|the|a|an|to|of|per)\b`)
	spacesRe        = regexp.MustCompile(`\s+`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]`)
	quotesRe        = regexp.MustCompile(`^["']|["']$`)
)

// Resolver turns sanitized user text into a ResolvedInput. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	catalog *catalog.Catalog
}

// New creates a Resolver backed by c.
func New(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve classifies input. Custom-subscription detection runs before URL
// detection so "training for $10 a month" never becomes a domain.
func (r *Resolver) Resolve(input string) model.ResolvedInput {
	text := validate.Sanitize(input, validate.MaxInputLength)

	out := model.ResolvedInput{
		OriginalInput: input,
		InputType:     model.InputTypeServiceName,
		BillingHint:   BillingHint(text),
		PlanHint:      PlanHint(text),
	}

	if r.isCustom(text) {
		price, currency := ExtractPrice(text)
		out.IsCustomSubscription = true
		out.ExtractedPrice = price
		out.ExtractedCurrency = currency
		out.ServiceName = CustomName(text)
		out.CustomDescription = text
		return out
	}

	switch {
	case hasProtocol(text):
		out.InputType = model.InputTypeURL
		r.resolveURL(&out, text)
	case looksLikePartialURL(text):
		out.InputType = model.InputTypePartialURL
		r.resolveURL(&out, text)
	case looksLikeURL(text):
		out.InputType = model.InputTypeURL
		r.resolveURL(&out, text)
	default:
		r.resolveName(&out, text)
	}
	return out
}

func (r *Resolver) isCustom(text string) bool {
	lower := strings.ToLower(text)
	hasBilling := BillingHint(lower) != ""
	hasPrice := priceSignalRe.MatchString(lower)
	if !hasBilling && !hasPrice {
		return false
	}

	hasPattern := false
	for _, p := range customPatterns {
		if strings.Contains(lower, p) {
			hasPattern = true
			break
		}
	}
	if !hasPattern && looksLikeURL(text) {
		return false
	}
	return r.catalog.FindByAliasOrName(CleanServiceName(text)) == nil
}

func (r *Resolver) resolveURL(out *model.ResolvedInput, text string) {
	normalized := NormalizeURL(text)
	if v := validate.URL(normalized); v.Valid {
		out.URL = v.Sanitized
	}

	if svc := r.catalog.FindByURL(normalized); svc != nil {
		out.ServiceName = svc.Name
		out.KnownServiceKey = svc.Domain
		return
	}

	host := catalog.Hostname(normalized)
	if label, _, _ := strings.Cut(host, "."); label != "" {
		out.ServiceName = titleCase(label)
	}
}

func (r *Resolver) resolveName(out *model.ResolvedInput, text string) {
	cleaned := CleanServiceName(text)
	if cleaned == "" {
		cleaned = strings.ToLower(text)
	}
	out.ServiceName = titleCase(cleaned)

	if svc := r.catalog.FindByAliasOrName(text); svc != nil {
		out.ServiceName = svc.Name
		out.KnownServiceKey = svc.Domain
		out.URL = serviceURL(svc)
		return
	}

	slug := nonAlnumRe.ReplaceAllString(strings.ToLower(cleaned), "")
	if len(slug) >= 2 {
		out.URL = "https://www." + slug + ".com"
	}
}

// BestURLForScraping prefers the cataloged pricing page over the resolved URL.
func (r *Resolver) BestURLForScraping(in model.ResolvedInput) string {
	if svc := r.KnownService(in); svc != nil && svc.PricingURL != "" {
		return svc.PricingURL
	}
	return in.URL
}

// KnownService returns the catalog entry in refers to, if any.
func (r *Resolver) KnownService(in model.ResolvedInput) *model.KnownService {
	return r.catalog.Get(in.KnownServiceKey)
}

// Catalog exposes the backing catalog.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

func serviceURL(svc *model.KnownService) string {
	if svc.PricingURL != "" {
		return svc.PricingURL
	}
	return "https://www." + svc.Domain
}

// BillingHint returns the cycle of the first billing keyword in text.
func BillingHint(text string) model.BillingCycle {
	lower := strings.ToLower(text)
	for _, h := range billingHints {
		if strings.Contains(lower, h.keyword) {
			return h.cycle
		}
	}
	return ""
}

// PlanHint returns the first plan keyword contained in text.
func PlanHint(text string) string {
	lower := strings.ToLower(text)
	for _, p := range planHints {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// ExtractPrice finds a price in free text: a leading currency symbol first,
// then a currency word suffix, then (only with billing context) a bare
// number after "for", "costs", "price", "at" or "=". The last form carries
// no currency.
func ExtractPrice(text string) (*float64, model.Currency) {
	if m := symbolPriceRe.FindStringSubmatch(text); m != nil {
		return validate.Price(m[2]), currencyWords[m[1]]
	}
	if m := wordPriceRe.FindStringSubmatch(text); m != nil {
		return validate.Price(m[1]), currencyWords[strings.ToLower(m[2])]
	}
	if BillingHint(text) != "" {
		if m := contextPriceRe.FindStringSubmatch(text); m != nil {
			return validate.Price(m[1]), ""
		}
	}
	return nil, ""
}

// CustomName builds a title-cased name from custom-subscription prose by
// removing prices, billing phrases and filler words.
func CustomName(text string) string {
	cleaned := symbolPriceRe.ReplaceAllString(text, "")
	cleaned = wordPriceRe.ReplaceAllString(cleaned, "")
	cleaned = contextNumberRe.ReplaceAllString(cleaned, "")
	cleaned = slashCycleRe.ReplaceAllString(cleaned, " ")
	for _, re := range billingStrip {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	cleaned = fillerRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))

	name := titleCase(cleaned)
	if len([]rune(name)) < 2 {
		return DefaultCustomName
	}
	return name
}

// CleanServiceName lowercases text and strips billing and plan keywords.
func CleanServiceName(text string) string {
	cleaned := slashCycleRe.ReplaceAllString(strings.ToLower(text), " ")
	for _, re := range billingStrip {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	for _, re := range planStrip {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	return strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))
}

// NormalizeURL strips wrapping quotes, adds https:// when no scheme is
// present, and drops one trailing slash.
func NormalizeURL(raw string) string {
	s := quotesRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if !hasProtocol(s) {
		s = "https://" + s
	}
	return strings.TrimSuffix(s, "/")
}

func hasProtocol(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func looksLikeURL(s string) bool {
	if hasProtocol(s) || domainRe.MatchString(s) {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "www.") || strings.Contains(lower, ".com") || strings.Contains(lower, ".io")
}

func looksLikePartialURL(s string) bool {
	if !strings.Contains(s, ".") || strings.Contains(s, " ") {
		return false
	}
	return partialTLDRe.MatchString(s)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
