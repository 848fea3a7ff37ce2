package model

// Link is an anchor found on a scraped page. Href is absolute.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// ScrapedContent is what the scraper pulled out of one fetched page.
type ScrapedContent struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	BodyText    string            `json:"bodyText"`
	MetaTags    map[string]string `json:"metaTags"`
	JSONLD      []any             `json:"jsonLd"`
	Links       []Link            `json:"links"`
	StatusCode  int               `json:"statusCode"`
}

// PricingTier is a validated plan price reported by the AI.
type PricingTier struct {
	Plan         string       `json:"plan"`
	Cost         float64      `json:"cost"`
	Currency     Currency     `json:"currency"`
	BillingCycle BillingCycle `json:"billingCycle"`
}

// RecommendedPlan is the plan the AI suggests as the default.
type RecommendedPlan struct {
	Cost         float64      `json:"cost"`
	Currency     Currency     `json:"currency"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Reason       string       `json:"reason"`
}

// AIExtraction is the validated shape of the model's reply. Every field has
// passed through the validators; nothing here is raw model output.
type AIExtraction struct {
	Name            string           `json:"name,omitempty"`
	Description     string           `json:"description,omitempty"`
	Pricing         []PricingTier    `json:"pricing"`
	RecommendedPlan *RecommendedPlan `json:"recommendedPlan"`
	Category        Category         `json:"category,omitempty"`
	ManageURL       string           `json:"manageUrl,omitempty"`
	CancelURL       string           `json:"cancelUrl,omitempty"`
	LogoURL         string           `json:"logoUrl,omitempty"`
	Confidence      float64          `json:"confidence"`
}

// Attempt records one stage the pipeline tried.
type Attempt struct {
	Method     Source `json:"method"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// ExtractionResult is the pipeline's output contract.
type ExtractionResult struct {
	Success             bool          `json:"success"`
	Source              Source        `json:"source"`
	Confidence          float64       `json:"confidence"`
	Attempts            []Attempt     `json:"attempts"`
	Name                string        `json:"name,omitempty"`
	Cost                *float64      `json:"cost,omitempty"`
	Currency            Currency      `json:"currency,omitempty"`
	BillingCycle        BillingCycle  `json:"billingCycle,omitempty"`
	Category            Category      `json:"category,omitempty"`
	LogoURL             string        `json:"logoUrl,omitempty"`
	ManageURL           string        `json:"manageUrl,omitempty"`
	CancelURL           string        `json:"cancelUrl,omitempty"`
	Description         string        `json:"description,omitempty"`
	RequiresManualInput []string      `json:"requiresManualInput"`
	ResolvedInput       ResolvedInput `json:"resolvedInput"`
	RunID               string        `json:"runId,omitempty"`
}

// ParserSubscriptionData is the flat view consumed by the legacy parse API.
// Field names are part of the public contract.
type ParserSubscriptionData struct {
	Name                 string       `json:"name,omitempty"`
	Cost                 *float64     `json:"cost,omitempty"`
	Currency             Currency     `json:"currency,omitempty"`
	BillingCycle         BillingCycle `json:"billingCycle,omitempty"`
	LogoURL              string       `json:"logoUrl,omitempty"`
	CancelURL            string       `json:"cancelUrl,omitempty"`
	ManageURL            string       `json:"manageUrl,omitempty"`
	Category             Category     `json:"category,omitempty"`
	Notes                string       `json:"notes,omitempty"`
	RequiresManualInput  []string     `json:"requiresManualInput"`
	Source               Source       `json:"source"`
	Confidence           float64      `json:"confidence"`
	Description          string       `json:"description,omitempty"`
	IsCustomSubscription bool         `json:"isCustomSubscription"`
}
