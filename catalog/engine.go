package catalog

import (
	"slices"
	"strings"

	"agrimarket/models"
)

// Products filters and orders master products. items is never modified.
func Products(items []models.Product, c ProductCriteria) []models.Product {
	var presence func(models.Product) bool
	switch c.HasDataToday {
	case PresenceYes:
		presence = models.Product.HasDataToday
	case PresenceNo:
		presence = func(p models.Product) bool { return !p.HasDataToday() }
	}
	return apply(items, c.Criteria, productSchema.search, presence)
}

// History filters and orders price history entries. items is never modified.
func History(items []models.PriceHistoryEntry, c HistoryCriteria) []models.PriceHistoryEntry {
	return apply(items, c, historySchema.search, nil)
}

func apply[T any](items []T, c Criteria[T], name TextField[T], extra func(T) bool) []T {
	needle := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !strings.Contains(strings.ToLower(name.get(item)), needle) {
			continue
		}
		if extra != nil && !extra(item) {
			continue
		}
		if !inRanges(item, c) {
			continue
		}
		out = append(out, item)
	}

	if c.Sort.Key != nil {
		key, desc := c.Sort.Key, c.Sort.Desc
		slices.SortStableFunc(out, func(a, b T) int {
			if desc {
				return key.compare(b, a)
			}
			return key.compare(a, b)
		})
	}
	return out
}

func inRanges[T any](item T, c Criteria[T]) bool {
	for _, r := range c.Numbers {
		if r.active() && !r.keep(item) {
			return false
		}
	}
	for _, r := range c.Dates {
		if r.active() && !r.keep(item) {
			return false
		}
	}
	return true
}
