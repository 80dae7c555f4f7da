package catalog

import "agrimarket/models"

type ProductSummary struct {
	Total        int `json:"total"`
	UpdatedToday int `json:"updated_today"`
	MissingToday int `json:"missing_today"`
}

type HistorySummary struct {
	TotalRecords int `json:"total_records"`
}

// SummarizeProducts counts products with and without today's average price.
// It is recomputed from scratch on every call.
func SummarizeProducts(products []models.Product) ProductSummary {
	var s ProductSummary
	for _, p := range products {
		if p.HasDataToday() {
			s.UpdatedToday++
		} else {
			s.MissingToday++
		}
	}
	s.Total = s.UpdatedToday + s.MissingToday
	return s
}

func SummarizeHistory(history []models.PriceHistoryEntry) HistorySummary {
	return HistorySummary{TotalRecords: len(history)}
}
