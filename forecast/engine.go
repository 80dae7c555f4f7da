package forecast

import (
	"fmt"

	"agrimarket/apperrors"
	"agrimarket/models"
)

// Engine matches live prices to crops and merges them with the static
// forecast series.
type Engine struct {
	tables  *Tables
	matcher *Matcher
}

func NewEngine(tables *Tables, opts ...MatcherOption) *Engine {
	return &Engine{tables: tables, matcher: NewMatcher(tables.Aliases, opts...)}
}

func (e *Engine) Tables() *Tables {
	return e.tables
}

func (e *Engine) Match(crop models.CropID, prices []models.CommodityPrice) *models.CommodityPrice {
	return e.matcher.Match(crop, prices)
}

// Merge builds the reconciled view for crop. The forecast side is copied
// through untouched; only Current depends on the match.
func (e *Engine) Merge(crop models.CropID, matched *models.CommodityPrice) (models.ReconciledView, error) {
	series, ok := e.tables.Series[crop]
	if !ok {
		return models.ReconciledView{}, apperrors.Configuration(fmt.Sprintf("no forecast series for crop %q", crop))
	}

	view := models.ReconciledView{
		Crop:             crop,
		Current:          series.PreviousPrice,
		PreviousPrice:    series.PreviousPrice,
		ChangePercentage: series.ChangePercentage,
		Trend:            series.Trend,
		Predictions:      series.Predictions,
		Recommendation:   series.Recommendation,
		Factors:          series.Factors,
	}
	if matched != nil {
		live := *matched
		view.Live = &live
		view.HasLiveData = true
		view.Current = live.Today
	}
	return view, nil
}

// Reconcile is Match followed by Merge.
func (e *Engine) Reconcile(crop models.CropID, prices []models.CommodityPrice) (models.ReconciledView, error) {
	return e.Merge(crop, e.Match(crop, prices))
}
