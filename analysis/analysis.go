package analysis

import (
	"sort"
	"strings"

	"agrimarket/models"

	"github.com/shopspring/decimal"
)

const (
	MarketUp     = "up"
	MarketDown   = "down"
	MarketStable = "stable"
)

var hundred = decimal.NewFromInt(100)

// Analyze compares every product's price on the latest recorded day with its
// price on the previous recorded day. Products without a previous record get
// a null yesterday and a zero change.
func Analyze(history []models.PriceHistoryEntry) models.MarketAnalysis {
	today, previous := latestDays(history)
	if today.IsZero() {
		return models.MarketAnalysis{MarketTrend: MarketStable, Changes: []models.CommodityPrice{}}
	}

	before := make(map[string]decimal.Decimal)
	var current []models.PriceHistoryEntry
	for _, h := range history {
		switch {
		case h.Date.Equal(today.Time):
			current = append(current, h)
		case !previous.IsZero() && h.Date.Equal(previous.Time):
			before[key(h.ProductName)] = h.AvgPrice
		}
	}
	sort.SliceStable(current, func(i, j int) bool {
		return strings.ToLower(current[i].ProductName) < strings.ToLower(current[j].ProductName)
	})

	changes := make([]models.CommodityPrice, 0, len(current))
	ups, downs := 0, 0
	for _, h := range current {
		c := models.CommodityPrice{Name: h.ProductName, Today: h.AvgPrice, Trend: models.TrendDown}
		if y, ok := before[key(h.ProductName)]; ok {
			c.Yesterday = decimal.NewNullDecimal(y)
			c.ChangePercentage = ChangePercent(y, h.AvgPrice)
			if c.ChangePercentage.IsPositive() {
				ups++
			} else if c.ChangePercentage.IsNegative() {
				downs++
			}
		}
		if c.ChangePercentage.IsPositive() {
			c.Trend = models.TrendUp
		}
		changes = append(changes, c)
	}

	return models.MarketAnalysis{Today: today, MarketTrend: marketTrend(ups, downs), Changes: changes}
}

// ChangePercent is (current - initial) / initial * 100 rounded to two
// places, or zero when there is no usable initial price.
func ChangePercent(initial, current decimal.Decimal) decimal.Decimal {
	if !initial.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(initial).Div(initial).Mul(hundred).Round(2)
}

func latestDays(history []models.PriceHistoryEntry) (today, previous models.Date) {
	for _, h := range history {
		if h.Date.After(today.Time) {
			today = h.Date
		}
	}
	for _, h := range history {
		if h.Date.Before(today.Time) && h.Date.After(previous.Time) {
			previous = h.Date
		}
	}
	return today, previous
}

func marketTrend(ups, downs int) string {
	switch {
	case ups > downs:
		return MarketUp
	case downs > ups:
		return MarketDown
	default:
		return MarketStable
	}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PriceChanges returns one product's history in date order, keeping only the
// days on which its average price moved.
func PriceChanges(history []models.PriceHistoryEntry, product string) []models.PriceHistoryEntry {
	want := key(product)
	var rows []models.PriceHistoryEntry
	for _, h := range history {
		if key(h.ProductName) == want {
			rows = append(rows, h)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date.Time) })

	changes := make([]models.PriceHistoryEntry, 0, len(rows))
	for i, h := range rows {
		if i > 0 && h.AvgPrice.Equal(changes[len(changes)-1].AvgPrice) {
			continue
		}
		changes = append(changes, h)
	}
	return changes
}
