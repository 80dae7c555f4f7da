package models

import "github.com/shopspring/decimal"

// PriceHistoryEntry is one dated price record for one product. The store
// keeps (product_name, date) unique.
type PriceHistoryEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductName string          `gorm:"type:varchar(191);not null;uniqueIndex:idx_history_product_date" json:"product_name"`
	Date        Date            `gorm:"not null;uniqueIndex:idx_history_product_date" json:"date"`
	MinPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_price"`
	MaxPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_price"`
	AvgPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"avg_price"`
}

func (PriceHistoryEntry) TableName() string {
	return "price_history"
}
