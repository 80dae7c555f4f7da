package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a master catalog row: one commodity's latest aggregate prices.
// A null price means the commodity has no record for today. The ordering
// min <= avg <= max comes from upstream and is not enforced here.
type Product struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	CommodityName string              `gorm:"type:varchar(191);uniqueIndex;not null" json:"commodity_name"`
	Unit          *string             `gorm:"type:varchar(32)" json:"unit"`
	MinPrice      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"min_price"`
	MaxPrice      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"max_price"`
	AvgPrice      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"avg_price"`
	LastPrice     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"last_price"`
	InsertDate    time.Time           `gorm:"autoCreateTime" json:"insert_date"`
	LastUpdate    time.Time           `gorm:"autoUpdateTime" json:"last_update"`
}

func (Product) TableName() string {
	return "master_products"
}

// HasDataToday reports whether today's average price was recorded.
func (p Product) HasDataToday() bool {
	return p.AvgPrice.Valid
}
