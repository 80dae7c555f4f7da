package models

import "github.com/shopspring/decimal"

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// CommodityPrice is one row of the live market feed. Name is the market's
// vernacular name ("Tomato Small") and is not unique across aliases.
type CommodityPrice struct {
	Name             string              `json:"commodity"`
	Today            decimal.Decimal     `json:"today"`
	Yesterday        decimal.NullDecimal `json:"yesterday"`
	ChangePercentage decimal.Decimal     `json:"change_percentage"`
	Trend            Trend               `json:"trend"`
}

// MarketAnalysis is the day-over-day comparison served by the market
// analysis endpoint. It is replaced wholesale on every fetch.
type MarketAnalysis struct {
	Today       Date             `json:"today"`
	MarketTrend string           `json:"market_trend"`
	Changes     []CommodityPrice `json:"changes"`
}

// Quote is one commodity's prices for a single day as published on the
// market price board.
type Quote struct {
	Commodity string
	Unit      string
	Min       decimal.Decimal
	Max       decimal.Decimal
	Avg       decimal.Decimal
}
