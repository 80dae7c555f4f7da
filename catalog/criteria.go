package catalog

import (
	"time"

	"agrimarket/apperrors"
	"agrimarket/models"

	"github.com/shopspring/decimal"
)

// NumericRange keeps items whose field lies in [Min, Max]. An invalid bound
// is unbounded. Items with a null field fail any bound that is set.
type NumericRange[T any] struct {
	Field NumberField[T]
	Min   decimal.NullDecimal
	Max   decimal.NullDecimal
}

func (r NumericRange[T]) active() bool {
	return r.Field.get != nil && (r.Min.Valid || r.Max.Valid)
}

func (r NumericRange[T]) keep(item T) bool {
	v := r.Field.get(item)
	if !v.Valid {
		return false
	}
	if r.Min.Valid && v.Decimal.LessThan(r.Min.Decimal) {
		return false
	}
	if r.Max.Valid && v.Decimal.GreaterThan(r.Max.Decimal) {
		return false
	}
	return true
}

// DateBound is one side of a date range. A DayOnly bound names a calendar
// day in the compared value's own location; as an upper bound it covers the
// whole day.
type DateBound struct {
	Time    time.Time
	DayOnly bool
}

func (b DateBound) set() bool {
	return !b.Time.IsZero()
}

func (b DateBound) in(loc *time.Location) time.Time {
	if !b.DayOnly {
		return b.Time
	}
	y, m, d := b.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateRange keeps items whose field lies in [From, To].
type DateRange[T any] struct {
	Field DateField[T]
	From  DateBound
	To    DateBound
}

func (r DateRange[T]) active() bool {
	return r.Field.get != nil && (r.From.set() || r.To.set())
}

func (r DateRange[T]) keep(item T) bool {
	v := r.Field.get(item)
	if v.IsZero() {
		return false
	}
	if r.From.set() && v.Before(r.From.in(v.Location())) {
		return false
	}
	if r.To.set() {
		to := r.To.in(v.Location())
		if r.To.DayOnly {
			if !v.Before(to.AddDate(0, 0, 1)) {
				return false
			}
		} else if v.After(to) {
			return false
		}
	}
	return true
}

// Sort orders results by Key. A nil Key keeps input order.
type Sort[T any] struct {
	Key  SortKey[T]
	Desc bool
}

// Criteria is the filter and order applied to one collection. All active
// criteria are combined with AND.
type Criteria[T any] struct {
	Search  string
	Numbers []NumericRange[T]
	Dates   []DateRange[T]
	Sort    Sort[T]

	// Ignored lists query inputs that were malformed and treated as absent.
	Ignored []*apperrors.AppError
}

// Presence is the tri-state "has data today" filter.
type Presence int

const (
	PresenceAny Presence = iota
	PresenceYes
	PresenceNo
)

func (p Presence) String() string {
	switch p {
	case PresenceYes:
		return "yes"
	case PresenceNo:
		return "no"
	default:
		return "any"
	}
}

type ProductCriteria struct {
	Criteria[models.Product]
	HasDataToday Presence
}

type HistoryCriteria = Criteria[models.PriceHistoryEntry]
