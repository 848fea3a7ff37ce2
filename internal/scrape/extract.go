package scrape

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// ContentConfidence is the fixed confidence of a scraper-only extraction.
const ContentConfidence = 0.5

// minPlanPrice filters out amounts too small to be a subscription price.
const minPlanPrice = 0.99

type pricePattern struct {
	re       *regexp.Regexp
	currency model.Currency
}

const amount = `(\d+(?:[.,]\d{1,2})?)`

// pricePatterns run in order: symbol first, then suffix codes, then the
// Scandinavian "kr" and ":-" forms.
var pricePatterns = []pricePattern{
	{regexp.MustCompile(`\$\s*` + amount), model.CurrencyUSD},
	{regexp.MustCompile(`€\s*` + amount), model.CurrencyEUR},
	{regexp.MustCompile(`£\s*` + amount), model.CurrencyGBP},
	{regexp.MustCompile(`(?i)` + amount + `\s*USD`), model.CurrencyUSD},
	{regexp.MustCompile(`(?i)` + amount + `\s*EUR`), model.CurrencyEUR},
	{regexp.MustCompile(`(?i)` + amount + `\s*GBP`), model.CurrencyGBP},
	{regexp.MustCompile(`(?i)` + amount + `\s*SEK`), model.CurrencySEK},
	{regexp.MustCompile(`(?i)` + amount + `\s*NOK`), model.CurrencyNOK},
	{regexp.MustCompile(`(?i)` + amount + `\s*DKK`), model.CurrencyDKK},
	{regexp.MustCompile(`(?i)` + amount + `\s*kr`), model.CurrencySEK},
	{regexp.MustCompile(`(\d+):-`), model.CurrencySEK},
}

type cyclePattern struct {
	re    *regexp.Regexp
	cycle model.BillingCycle
}

var cyclePatterns = []cyclePattern{
	{regexp.MustCompile(`(?i)per\s*week|weekly|/\s*week|/wk`), model.BillingWeekly},
	{regexp.MustCompile(`(?i)per\s*month|monthly|/\s*mo(?:nth)?|/mo\b`), model.BillingMonthly},
	{regexp.MustCompile(`(?i)per\s*quarter|quarterly|every\s*3\s*months?|/\s*qtr`), model.BillingQuarterly},
	{regexp.MustCompile(`(?i)per\s*year|yearly|annually|annual|/\s*yr|/\s*year`), model.BillingYearly},
}

var (
	cancelKeywords = []string{"cancel", "unsubscribe", "end subscription", "stop subscription"}
	manageKeywords = []string{
		"account", "manage", "settings", "subscription", "billing", "profile",
		"my account", "my subscription",
	}
)

// Price is an amount found in page text.
type Price struct {
	Amount   float64
	Currency model.Currency
}

// ContentData is what ExtractFromContent derives without the AI.
type ContentData struct {
	Name         string
	Cost         *float64
	Currency     model.Currency
	BillingCycle model.BillingCycle
	LogoURL      string
	CancelURL    string
	ManageURL    string
}

// ExtractFromContent derives subscription fields straight from scraped
// content. The cheapest price of at least 0.99 is the representative cost.
func ExtractFromContent(c *model.ScrapedContent) ContentData {
	if c == nil {
		return ContentData{}
	}

	out := ContentData{
		Name:         c.Title,
		BillingCycle: DetectBillingCycle(c.BodyText),
		CancelURL:    findLink(c.Links, cancelKeywords),
		ManageURL:    findLink(c.Links, manageKeywords),
	}

	out.LogoURL = validate.URLField(c.MetaTags["og:image"])
	if out.LogoURL == "" {
		out.LogoURL = validate.URLField(c.MetaTags["twitter:image"])
	}

	for _, p := range FindPrices(c.BodyText) {
		if p.Amount >= minPlanPrice {
			cost := p.Amount
			out.Cost = &cost
			out.Currency = p.Currency
			break
		}
	}
	return out
}

// FindPrices returns the distinct prices in text, cheapest first. Ties keep
// pattern order.
func FindPrices(text string) []Price {
	seen := map[Price]bool{}
	var prices []Price
	for _, p := range pricePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v := validate.Price(m[1])
			if v == nil || *v <= 0 || *v >= validate.MaxPrice {
				continue
			}
			key := Price{Amount: *v, Currency: p.currency}
			if seen[key] {
				continue
			}
			seen[key] = true
			prices = append(prices, key)
		}
	}
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].Amount < prices[j].Amount })
	return prices
}

// DetectBillingCycle returns the first cycle whose pattern matches text.
func DetectBillingCycle(text string) model.BillingCycle {
	for _, p := range cyclePatterns {
		if p.re.MatchString(text) {
			return p.cycle
		}
	}
	return ""
}

func findLink(links []model.Link, keywords []string) string {
	for _, l := range links {
		text := strings.ToLower(l.Text)
		href := strings.ToLower(l.Href)
		for _, k := range keywords {
			if strings.Contains(text, k) || strings.Contains(href, k) {
				if u := validate.URLField(l.Href); u != "" {
					return u
				}
			}
		}
	}
	return ""
}
