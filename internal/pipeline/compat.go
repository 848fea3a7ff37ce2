package pipeline

import "github.com/yasinhessnawi1/strack/internal/model"

// ToParserSubscriptionData flattens res into the legacy parse API shape.
// RequiresManualInput is shared with res, not copied. For custom
// subscriptions the description doubles as notes.
func ToParserSubscriptionData(res *model.ExtractionResult) model.ParserSubscriptionData {
	if res == nil {
		return model.ParserSubscriptionData{
			Source:              model.SourceManual,
			RequiresManualInput: model.CoreFields(),
		}
	}

	custom := res.ResolvedInput.IsCustomSubscription
	out := model.ParserSubscriptionData{
		Name:                 res.Name,
		Currency:             res.Currency,
		BillingCycle:         res.BillingCycle,
		LogoURL:              res.LogoURL,
		CancelURL:            res.CancelURL,
		ManageURL:            res.ManageURL,
		Category:             res.Category,
		RequiresManualInput:  res.RequiresManualInput,
		Source:               res.Source,
		Confidence:           res.Confidence,
		Description:          res.Description,
		IsCustomSubscription: custom,
	}
	if res.Cost != nil && *res.Cost > 0 {
		out.Cost = res.Cost
	}
	if custom {
		out.Notes = res.Description
	}
	return out
}
