package model

// InputType classifies what kind of text the user supplied.
type InputType string

const (
	InputTypeURL         InputType = "url"
	InputTypePartialURL  InputType = "partial_url"
	InputTypeServiceName InputType = "service_name"
)

// BillingCycle is how often a subscription is charged.
type BillingCycle string

const (
	BillingWeekly    BillingCycle = "weekly"
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingYearly    BillingCycle = "yearly"
)

// AllBillingCycles returns the closed set of billing cycles.
func AllBillingCycles() []BillingCycle {
	return []BillingCycle{BillingWeekly, BillingMonthly, BillingQuarterly, BillingYearly}
}

// MonthlyFactor converts a price in this cycle to a monthly equivalent.
func (b BillingCycle) MonthlyFactor() float64 {
	switch b {
	case BillingWeekly:
		return 4.33
	case BillingQuarterly:
		return 1.0 / 3
	case BillingYearly:
		return 1.0 / 12
	default:
		return 1
	}
}

// Currency is an ISO 4217 code from the supported set.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencySEK Currency = "SEK"
	CurrencyNOK Currency = "NOK"
	CurrencyDKK Currency = "DKK"
)

// AllCurrencies returns the closed set of supported currencies.
func AllCurrencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencySEK, CurrencyNOK, CurrencyDKK}
}

// Category groups subscriptions for reporting.
type Category string

const (
	CategoryStreaming     Category = "streaming"
	CategorySoftware      Category = "software"
	CategoryCloud         Category = "cloud"
	CategoryProductivity  Category = "productivity"
	CategoryEntertainment Category = "entertainment"
	CategoryEducation     Category = "education"
	CategoryFinance       Category = "finance"
	CategoryHealth        Category = "health"
	CategoryNews          Category = "news"
	CategoryOther         Category = "other"
)

// AllCategories returns the closed set of categories.
func AllCategories() []Category {
	return []Category{
		CategoryStreaming, CategorySoftware, CategoryCloud, CategoryProductivity,
		CategoryEntertainment, CategoryEducation, CategoryFinance, CategoryHealth,
		CategoryNews, CategoryOther,
	}
}

// Source identifies which extraction method produced a result.
type Source string

const (
	SourceAI           Source = "ai"
	SourceScraper      Source = "scraper"
	SourceManual       Source = "manual"
	SourceKnownService Source = "known_service"
)

// Core field names reported in RequiresManualInput.
const (
	FieldName         = "name"
	FieldCost         = "cost"
	FieldCurrency     = "currency"
	FieldBillingCycle = "billingCycle"
)

// CoreFields returns the four fields every subscription needs, in report order.
func CoreFields() []string {
	return []string{FieldName, FieldCost, FieldCurrency, FieldBillingCycle}
}

// ResolvedInput is the classified, normalized view of raw user text.
type ResolvedInput struct {
	OriginalInput        string       `json:"originalInput"`
	InputType            InputType    `json:"inputType"`
	URL                  string       `json:"url,omitempty"`
	ServiceName          string       `json:"serviceName,omitempty"`
	PlanHint             string       `json:"planHint,omitempty"`
	BillingHint          BillingCycle `json:"billingHint,omitempty"`
	KnownServiceKey      string       `json:"knownServiceKey,omitempty"`
	IsCustomSubscription bool         `json:"isCustomSubscription"`
	ExtractedPrice       *float64     `json:"extractedPrice,omitempty"`
	ExtractedCurrency    Currency     `json:"extractedCurrency,omitempty"`
	CustomDescription    string       `json:"customDescription,omitempty"`
}

// PriceTier is one typical plan price of a known service.
type PriceTier struct {
	Plan         string       `yaml:"plan" json:"plan" validate:"required"`
	Cost         float64      `yaml:"cost" json:"cost" validate:"gt=0,lte=10000"`
	BillingCycle BillingCycle `yaml:"billing_cycle" json:"billingCycle" validate:"oneof=weekly monthly quarterly yearly"`
}

// KnownService is a cataloged subscription provider. Values are immutable
// once loaded.
type KnownService struct {
	Domain              string       `yaml:"domain" json:"domain" validate:"required,hostname_rfc1123"`
	AltDomains          []string     `yaml:"alt_domains,omitempty" json:"altDomains,omitempty" validate:"dive,hostname_rfc1123"`
	Name                string       `yaml:"name" json:"name" validate:"required"`
	Aliases             []string     `yaml:"aliases" json:"aliases" validate:"dive,required"`
	DefaultCurrency     Currency     `yaml:"currency" json:"defaultCurrency" validate:"oneof=USD EUR GBP SEK NOK DKK"`
	DefaultBillingCycle BillingCycle `yaml:"billing_cycle" json:"defaultBillingCycle" validate:"oneof=weekly monthly quarterly yearly"`
	Category            Category     `yaml:"category" json:"category" validate:"oneof=streaming software cloud productivity entertainment education finance health news other"`
	LogoURL             string       `yaml:"logo_url,omitempty" json:"logoUrl,omitempty" validate:"omitempty,url"`
	PricingURL          string       `yaml:"pricing_url,omitempty" json:"pricingUrl,omitempty" validate:"omitempty,url"`
	ManageURL           string       `yaml:"manage_url,omitempty" json:"manageUrl,omitempty" validate:"omitempty,url"`
	CancelURL           string       `yaml:"cancel_url,omitempty" json:"cancelUrl,omitempty" validate:"omitempty,url"`
	TypicalPrices       []PriceTier  `yaml:"prices,omitempty" json:"typicalPrices,omitempty" validate:"dive"`
}

// Domains returns the primary domain followed by any alternates.
func (k *KnownService) Domains() []string {
	out := make([]string, 0, 1+len(k.AltDomains))
	out = append(out, k.Domain)
	return append(out, k.AltDomains...)
}
