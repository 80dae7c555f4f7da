package catalog

import (
	"strings"
	"time"

	"agrimarket/models"

	"github.com/shopspring/decimal"
)

// SortKey orders items of one collection. The set of keys is closed: only
// the field selectors declared in this package implement it.
type SortKey[T any] interface {
	Name() string
	compare(a, b T) int
}

// NumberField selects a nullable decimal from T.
type NumberField[T any] struct {
	name string
	get  func(T) decimal.NullDecimal
}

func (f NumberField[T]) Name() string { return f.name }

// Null values sort after every number.
func (f NumberField[T]) compare(a, b T) int {
	x, y := f.get(a), f.get(b)
	switch {
	case !x.Valid && !y.Valid:
		return 0
	case !x.Valid:
		return 1
	case !y.Valid:
		return -1
	}
	return x.Decimal.Cmp(y.Decimal)
}

// DateField selects a point in time from T. The zero time counts as null.
type DateField[T any] struct {
	name string
	get  func(T) time.Time
}

func (f DateField[T]) Name() string { return f.name }

func (f DateField[T]) compare(a, b T) int {
	x, y := f.get(a), f.get(b)
	switch {
	case x.IsZero() && y.IsZero():
		return 0
	case x.IsZero():
		return 1
	case y.IsZero():
		return -1
	}
	return x.Compare(y)
}

// TextField selects a string from T. Ordering ignores case.
type TextField[T any] struct {
	name string
	get  func(T) string
}

func (f TextField[T]) Name() string { return f.name }

func (f TextField[T]) compare(a, b T) int {
	return strings.Compare(strings.ToLower(f.get(a)), strings.ToLower(f.get(b)))
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Master product fields.
var (
	ProductID = NumberField[models.Product]{"id", func(p models.Product) decimal.NullDecimal {
		return valid(decimal.NewFromInt(int64(p.ID)))
	}}
	ProductCommodityName = TextField[models.Product]{"commodity_name", func(p models.Product) string { return p.CommodityName }}
	ProductMinPrice      = NumberField[models.Product]{"min_price", func(p models.Product) decimal.NullDecimal { return p.MinPrice }}
	ProductMaxPrice      = NumberField[models.Product]{"max_price", func(p models.Product) decimal.NullDecimal { return p.MaxPrice }}
	ProductAvgPrice      = NumberField[models.Product]{"avg_price", func(p models.Product) decimal.NullDecimal { return p.AvgPrice }}
	ProductLastPrice     = NumberField[models.Product]{"last_price", func(p models.Product) decimal.NullDecimal { return p.LastPrice }}
	ProductInsertDate    = DateField[models.Product]{"insert_date", func(p models.Product) time.Time { return p.InsertDate }}
	ProductLastUpdate    = DateField[models.Product]{"last_update", func(p models.Product) time.Time { return p.LastUpdate }}
)

// Price history fields.
var (
	HistoryID = NumberField[models.PriceHistoryEntry]{"id", func(h models.PriceHistoryEntry) decimal.NullDecimal {
		return valid(decimal.NewFromInt(int64(h.ID)))
	}}
	HistoryProductName = TextField[models.PriceHistoryEntry]{"product_name", func(h models.PriceHistoryEntry) string { return h.ProductName }}
	HistoryDate        = DateField[models.PriceHistoryEntry]{"date", func(h models.PriceHistoryEntry) time.Time { return h.Date.Time }}
	HistoryMinPrice    = NumberField[models.PriceHistoryEntry]{"min_price", func(h models.PriceHistoryEntry) decimal.NullDecimal { return valid(h.MinPrice) }}
	HistoryMaxPrice    = NumberField[models.PriceHistoryEntry]{"max_price", func(h models.PriceHistoryEntry) decimal.NullDecimal { return valid(h.MaxPrice) }}
	HistoryAvgPrice    = NumberField[models.PriceHistoryEntry]{"avg_price", func(h models.PriceHistoryEntry) decimal.NullDecimal { return valid(h.AvgPrice) }}
)

// schema is the closed set of selectors one collection exposes to query
// parameters.
type schema[T any] struct {
	search  TextField[T]
	numbers map[string]NumberField[T]
	dates   map[string]DateField[T]
	texts   map[string]TextField[T]
}

func newSchema[T any](search TextField[T], numbers []NumberField[T], dates []DateField[T], texts []TextField[T]) schema[T] {
	s := schema[T]{
		search:  search,
		numbers: make(map[string]NumberField[T]),
		dates:   make(map[string]DateField[T]),
		texts:   make(map[string]TextField[T]),
	}
	for _, f := range numbers {
		s.numbers[f.name] = f
	}
	for _, f := range dates {
		s.dates[f.name] = f
	}
	for _, f := range texts {
		s.texts[f.name] = f
	}
	return s
}

func (s schema[T]) sortKey(name string) (SortKey[T], bool) {
	if f, ok := s.numbers[name]; ok {
		return f, true
	}
	if f, ok := s.dates[name]; ok {
		return f, true
	}
	if f, ok := s.texts[name]; ok {
		return f, true
	}
	return nil, false
}

var productSchema = newSchema(
	ProductCommodityName,
	[]NumberField[models.Product]{ProductID, ProductMinPrice, ProductMaxPrice, ProductAvgPrice, ProductLastPrice},
	[]DateField[models.Product]{ProductInsertDate, ProductLastUpdate},
	[]TextField[models.Product]{ProductCommodityName},
)

var historySchema = newSchema(
	HistoryProductName,
	[]NumberField[models.PriceHistoryEntry]{HistoryID, HistoryMinPrice, HistoryMaxPrice, HistoryAvgPrice},
	[]DateField[models.PriceHistoryEntry]{HistoryDate},
	[]TextField[models.PriceHistoryEntry]{HistoryProductName},
)
