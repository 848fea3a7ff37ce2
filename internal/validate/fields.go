package validate

import (
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/yasinhessnawi1/strack/internal/model"
)

// MaxPrice is the largest cost accepted from any source.
const MaxPrice = 10000

var (
	priceStripRe   = regexp.MustCompile(`[$€£\s]`)
	decimalCommaRe = regexp.MustCompile(`^[^,]*,\d{1,2}$`)
	leadingNumRe   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

var currencySynonyms = map[string]model.Currency{
	"DOLLAR":   model.CurrencyUSD,
	"DOLLARS":  model.CurrencyUSD,
	"$":        model.CurrencyUSD,
	"EURO":     model.CurrencyEUR,
	"EUROS":    model.CurrencyEUR,
	"€":        model.CurrencyEUR,
	"POUND":    model.CurrencyGBP,
	"POUNDS":   model.CurrencyGBP,
	"STERLING": model.CurrencyGBP,
	"£":        model.CurrencyGBP,
	"KRONA":    model.CurrencySEK,
	"KRONOR":   model.CurrencySEK,
	"KRONE":    model.CurrencyNOK,
	"KRONER":   model.CurrencyDKK,
}

var billingSynonyms = map[string]model.BillingCycle{
	"week":        model.BillingWeekly,
	"per week":    model.BillingWeekly,
	"month":       model.BillingMonthly,
	"per month":   model.BillingMonthly,
	"/mo":         model.BillingMonthly,
	"/month":      model.BillingMonthly,
	"quarter":     model.BillingQuarterly,
	"per quarter": model.BillingQuarterly,
	"3 months":    model.BillingQuarterly,
	"year":        model.BillingYearly,
	"annual":      model.BillingYearly,
	"annually":    model.BillingYearly,
	"per year":    model.BillingYearly,
	"/yr":         model.BillingYearly,
	"/year":       model.BillingYearly,
}

// Price coerces v into a cost in [0, MaxPrice] rounded to cents. Numbers and
// numeric strings ("$9.99", "1,299", "9,99 €") are accepted; anything else
// yields nil.
func Price(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, ok := parsePriceString(t)
		if !ok {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > MaxPrice {
		return nil
	}
	rounded := math.Round(f*100) / 100
	return &rounded
}

func parsePriceString(s string) (float64, bool) {
	s = priceStripRe.ReplaceAllString(s, "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// Whichever separator comes last is the decimal point.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case decimalCommaRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	num := leadingNumRe.FindString(s)
	if num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Currency normalizes v to a supported currency code, or "" if unknown.
func Currency(v any) model.Currency {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	norm := strings.ToUpper(strings.TrimSpace(s))
	if slices.Contains(model.AllCurrencies(), model.Currency(norm)) {
		return model.Currency(norm)
	}
	return currencySynonyms[norm]
}

// BillingCycle normalizes v to a billing cycle, or "" if unknown.
func BillingCycle(v any) model.BillingCycle {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	norm := strings.ToLower(strings.TrimSpace(s))
	if slices.Contains(model.AllBillingCycles(), model.BillingCycle(norm)) {
		return model.BillingCycle(norm)
	}
	return billingSynonyms[norm]
}

// Category normalizes v to a known category, or "" if unknown.
func Category(v any) model.Category {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	norm := model.Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(model.AllCategories(), norm) {
		return norm
	}
	return ""
}

// Confidence clamps v to [0, 1]. Non-numeric values are 0.
func Confidence(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

// RequiredManualFields lists the core fields of r that are missing or
// invalid. It never returns nil.
func RequiredManualFields(r *model.ExtractionResult) []string {
	missing := []string{}
	if r == nil {
		return append(missing, model.CoreFields()...)
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, model.FieldName)
	}
	if r.Cost == nil || *r.Cost <= 0 {
		missing = append(missing, model.FieldCost)
	}
	if r.Currency == "" {
		missing = append(missing, model.FieldCurrency)
	}
	if r.BillingCycle == "" {
		missing = append(missing, model.FieldBillingCycle)
	}
	return missing
}
