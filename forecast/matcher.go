package forecast

import (
	"strings"

	"agrimarket/models"
)

// TieBreak picks one commodity out of every feed entry that matched a crop.
// Candidates arrive in feed order and are never empty.
type TieBreak func(candidates []models.CommodityPrice) models.CommodityPrice

// FirstInFeed keeps the entry the market feed listed first. It is the
// default; feed order is the only tie-break the data source guarantees.
func FirstInFeed(candidates []models.CommodityPrice) models.CommodityPrice {
	return candidates[0]
}

// LowestToday picks the cheapest matching commodity, keeping feed order
// between equal prices.
func LowestToday(candidates []models.CommodityPrice) models.CommodityPrice {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Today.LessThan(best.Today) {
			best = c
		}
	}
	return best
}

// Matcher resolves a crop identifier against vernacular market names.
type Matcher struct {
	aliases  AliasTable
	tieBreak TieBreak
}

type MatcherOption func(*Matcher)

func WithTieBreak(tb TieBreak) MatcherOption {
	return func(m *Matcher) {
		if tb != nil {
			m.tieBreak = tb
		}
	}
}

func NewMatcher(aliases AliasTable, opts ...MatcherOption) *Matcher {
	m := &Matcher{aliases: aliases, tieBreak: FirstInFeed}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the commodity for crop, or nil when nothing in prices
// contains one of the crop's aliases. A nil result means "no live data".
func (m *Matcher) Match(crop models.CropID, prices []models.CommodityPrice) *models.CommodityPrice {
	aliases := m.aliases[crop]
	if len(aliases) == 0 || len(prices) == 0 {
		return nil
	}

	var candidates []models.CommodityPrice
	for _, p := range prices {
		if containsAny(strings.ToLower(p.Name), aliases) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	picked := m.tieBreak(candidates)
	return &picked
}

func containsAny(name string, aliases []string) bool {
	for _, alias := range aliases {
		if strings.Contains(name, alias) {
			return true
		}
	}
	return false
}
