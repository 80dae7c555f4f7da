package models

import "github.com/shopspring/decimal"

// CropID is one of the canonical crop identifiers a user can select.
type CropID string

type PredictionPoint struct {
	Label             string          `json:"label"`
	Price             decimal.Decimal `json:"price"`
	ConfidencePercent int             `json:"confidence"`
}

// ForecastSeries is static reference data for one crop.
type ForecastSeries struct {
	PreviousPrice    decimal.Decimal   `json:"previous_price"`
	ChangePercentage decimal.Decimal   `json:"change_percentage"`
	Trend            Trend             `json:"trend"`
	Predictions      []PredictionPoint `json:"predictions"`
	Recommendation   string            `json:"recommendation"`
	Factors          []string          `json:"factors"`
}

// ReconciledView merges the matched live price, if any, with the crop's
// forecast. Current is the live price when matched, else PreviousPrice.
type ReconciledView struct {
	Crop             CropID            `json:"crop"`
	GrowthStage      string            `json:"growth_stage,omitempty"`
	Current          decimal.Decimal   `json:"current_price"`
	HasLiveData      bool              `json:"has_live_data"`
	Live             *CommodityPrice   `json:"live,omitempty"`
	PreviousPrice    decimal.Decimal   `json:"previous_price"`
	ChangePercentage decimal.Decimal   `json:"change_percentage"`
	Trend            Trend             `json:"trend"`
	Predictions      []PredictionPoint `json:"predictions"`
	Recommendation   string            `json:"recommendation"`
	Factors          []string          `json:"factors"`
}
