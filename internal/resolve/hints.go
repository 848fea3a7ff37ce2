package resolve

import (
	"regexp"
	"sort"

	"github.com/yasinhessnawi1/strack/internal/model"
)

type billingHint struct {
	keyword string
	cycle   model.BillingCycle
}

// billingHints is scanned in order; the first contained keyword wins.
var billingHints = []billingHint{
	{"weekly", model.BillingWeekly},
	{"week", model.BillingWeekly},
	{"per week", model.BillingWeekly},
	{"a week", model.BillingWeekly},
	{"every week", model.BillingWeekly},
	{"monthly", model.BillingMonthly},
	{"month", model.BillingMonthly},
	{"per month", model.BillingMonthly},
	{"a month", model.BillingMonthly},
	{"every month", model.BillingMonthly},
	{"/mo", model.BillingMonthly},
	{"quarterly", model.BillingQuarterly},
	{"quarter", model.BillingQuarterly},
	{"3 months", model.BillingQuarterly},
	{"every 3 months", model.BillingQuarterly},
	{"yearly", model.BillingYearly},
	{"annual", model.BillingYearly},
	{"annually", model.BillingYearly},
	{"year", model.BillingYearly},
	{"per year", model.BillingYearly},
	{"a year", model.BillingYearly},
	{"every year", model.BillingYearly},
	{"/yr", model.BillingYearly},
}

var planHints = []string{
	"free", "basic", "starter", "standard", "plus", "pro", "premium",
	"professional", "business", "enterprise", "team", "teams", "family",
	"individual", "student", "unlimited", "ultimate",
}

var currencyWords = map[string]model.Currency{
	"$":       model.CurrencyUSD,
	"€":       model.CurrencyEUR,
	"£":       model.CurrencyGBP,
	"kr":      model.CurrencySEK,
	"dollar":  model.CurrencyUSD,
	"dollars": model.CurrencyUSD,
	"euro":    model.CurrencyEUR,
	"euros":   model.CurrencyEUR,
	"pound":   model.CurrencyGBP,
	"pounds":  model.CurrencyGBP,
	"usd":     model.CurrencyUSD,
	"eur":     model.CurrencyEUR,
	"gbp":     model.CurrencyGBP,
	"sek":     model.CurrencySEK,
	"nok":     model.CurrencyNOK,
	"dkk":     model.CurrencyDKK,
}

// customPatterns mark personal recurring expenses.
var customPatterns = []string{
	"training", "lesson", "class", "tutor", "gift", "allowance", "membership",
	"gym", "club", "donation", "support", "payment", "fee", "rent", "service",
	"subscription",
}

type categoryFamily struct {
	category model.Category
	re       *regexp.Regexp
}

// categoryFamilies is checked in order for custom subscriptions.
var categoryFamilies = []categoryFamily{
	{model.CategoryHealth, regexp.MustCompile(`(?i)gym|fitness|training|workout|yoga|pilates|crossfit|sport|health|medical|doctor|therapy|wellness`)},
	{model.CategoryEducation, regexp.MustCompile(`(?i)lesson|tutor|class|course|school|learn|education|training|coaching|teacher`)},
	{model.CategoryEntertainment, regexp.MustCompile(`(?i)game|gaming|hobby|fun|club|entertainment|music|movie|concert`)},
	{model.CategoryFinance, regexp.MustCompile(`(?i)insurance|bank|invest|saving|loan|mortgage|rent|fee|dues`)},
	{model.CategoryProductivity, regexp.MustCompile(`(?i)work|office|business|professional|tool|service`)},
	{model.CategoryNews, regexp.MustCompile(`(?i)news|magazine|newspaper|journal|media`)},
}

var (
	billingStrip []*regexp.Regexp
	planStrip    []*regexp.Regexp
)

func init() {
	// Strip longer phrases first so "per month" goes before "month".
	keywords := make([]string, 0, len(billingHints))
	for _, h := range billingHints {
		keywords = append(keywords, h.keyword)
	}
	sort.SliceStable(keywords, func(i, j int) bool { return len(keywords[i]) > len(keywords[j]) })
	for _, k := range keywords {
		billingStrip = append(billingStrip, regexp.MustCompile(`(?i)\s*`+regexp.QuoteMeta(k)+`\s*`))
	}

	plans := append([]string(nil), planHints...)
	sort.SliceStable(plans, func(i, j int) bool { return len(plans[i]) > len(plans[j]) })
	for _, p := range plans {
		planStrip = append(planStrip, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)+`\b`))
	}
}

// DetectCategory guesses a category for free-text custom subscriptions.
func DetectCategory(text string) model.Category {
	for _, f := range categoryFamilies {
		if f.re.MatchString(text) {
			return f.category
		}
	}
	return model.CategoryOther
}
