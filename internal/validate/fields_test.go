package validate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/strack/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"float", 9.99, ptr(9.99)},
		{"rounds", 9.999, ptr(10)},
		{"int", 15, ptr(15)},
		{"json number", json.Number("4.5"), ptr(4.5)},
		{"zero", 0.0, ptr(0)},
		{"negative", -1.0, nil},
		{"too large", 10000.01, nil},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"dollar string", "$9.99", ptr(9.99)},
		{"euro decimal comma", "9,99 €", ptr(9.99)},
		{"grouping comma", "1,299", ptr(1299)},
		{"european grouping", "1.234,50", ptr(1234.5)},
		{"us grouping", "1,234.50", ptr(1234.5)},
		{"trailing text", "12.50/month", ptr(12.5)},
		{"garbage string", "free", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
		{"slice", []any{1}, nil},
		{"map", map[string]any{"cost": 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   any
		want model.Currency
	}{
		{"usd", model.CurrencyUSD},
		{" EUR ", model.CurrencyEUR},
		{"dollars", model.CurrencyUSD},
		{"$", model.CurrencyUSD},
		{"Sterling", model.CurrencyGBP},
		{"kronor", model.CurrencySEK},
		{"krone", model.CurrencyNOK},
		{"kroner", model.CurrencyDKK},
		{"JPY", ""},
		{12, ""},
		{nil, ""},
		{[]string{"USD"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "%v", tt.in)
	}
}

func TestBillingCycle(t *testing.T) {
	tests := []struct {
		in   any
		want model.BillingCycle
	}{
		{"Monthly", model.BillingMonthly},
		{"annual", model.BillingYearly},
		{"/mo", model.BillingMonthly},
		{"per week", model.BillingWeekly},
		{"3 months", model.BillingQuarterly},
		{"fortnightly", ""},
		{1, ""},
		{nil, ""},
		{map[string]any{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BillingCycle(tt.in), "%v", tt.in)
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, model.CategoryStreaming, Category(" Streaming "))
	assert.Equal(t, model.CategoryOther, Category("other"))
	assert.Equal(t, model.Category(""), Category("gaming"))
	assert.Equal(t, model.Category(""), Category(7))
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.8, Confidence(0.8), 0.0001)
	assert.InDelta(t, 1.0, Confidence(1.7), 0.0001)
	assert.InDelta(t, 0.0, Confidence(-0.2), 0.0001)
	assert.InDelta(t, 1.0, Confidence(3), 0.0001)
	assert.InDelta(t, 0.5, Confidence(json.Number("0.5")), 0.0001)
	assert.Zero(t, Confidence(math.NaN()))
	assert.Zero(t, Confidence("0.9"))
	assert.Zero(t, Confidence(nil))
	assert.Zero(t, Confidence([]any{0.9}))
}

func TestRequiredManualFields(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		assert.Equal(t, model.CoreFields(), RequiredManualFields(nil))
	})

	t.Run("empty result", func(t *testing.T) {
		assert.Equal(t, model.CoreFields(), RequiredManualFields(&model.ExtractionResult{}))
	})

	t.Run("complete", func(t *testing.T) {
		got := RequiredManualFields(&model.ExtractionResult{
			Name:         "Netflix",
			Cost:         ptr(15.49),
			Currency:     model.CurrencyUSD,
			BillingCycle: model.BillingMonthly,
		})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("zero cost", func(t *testing.T) {
		got := RequiredManualFields(&model.ExtractionResult{
			Name:         "Netflix",
			Cost:         ptr(0),
			Currency:     model.CurrencyUSD,
			BillingCycle: model.BillingMonthly,
		})
		assert.Equal(t, []string{model.FieldCost}, got)
	})

	t.Run("blank name", func(t *testing.T) {
		got := RequiredManualFields(&model.ExtractionResult{Name: "  ", Cost: ptr(1)})
		assert.Equal(t, []string{model.FieldName, model.FieldCurrency, model.FieldBillingCycle}, got)
	})
}
