package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"agrimarket/apperrors"
	"agrimarket/logger"
	"agrimarket/models"

	"github.com/shopspring/decimal"
)

// Query parameter names shared with the catalog endpoints.
const (
	ParamSearch       = "search"
	ParamOrdering     = "ordering"
	ParamHasDataToday = "has_data_today"
	ParamPage         = "page"
	ParamPageSize     = "page_size"

	suffixGTE = "__gte"
	suffixLTE = "__lte"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

var log = logger.GetLogger().WithComponent("catalog")

// ParseProductCriteria reads master product criteria from query parameters.
// Malformed values never fail the request: they are logged and dropped.
func ParseProductCriteria(params map[string]string) ProductCriteria {
	c := ProductCriteria{Criteria: parseCriteria(productSchema, params)}
	raw := strings.ToLower(strings.TrimSpace(params[ParamHasDataToday]))
	switch raw {
	case "", "any", "all":
		c.HasDataToday = PresenceAny
	case "yes", "true", "1":
		c.HasDataToday = PresenceYes
	case "no", "false", "0":
		c.HasDataToday = PresenceNo
	default:
		c.Ignored = append(c.Ignored, malformed(ParamHasDataToday, raw))
	}
	return c
}

func ParseHistoryCriteria(params map[string]string) HistoryCriteria {
	return parseCriteria(historySchema, params)
}

func parseCriteria[T any](s schema[T], params map[string]string) Criteria[T] {
	c := Criteria[T]{Search: strings.TrimSpace(params[ParamSearch])}

	numbers := make(map[string]*NumericRange[T])
	dates := make(map[string]*DateRange[T])

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, upper, ok := rangeParam(key)
		if !ok {
			continue
		}
		value := params[key]

		if f, ok := s.numbers[field]; ok {
			r := numbers[field]
			if r == nil {
				r = &NumericRange[T]{Field: f}
				numbers[field] = r
			}
			bound, bad := parseDecimalBound(key, value)
			if bad != nil {
				c.Ignored = append(c.Ignored, bad)
			}
			if upper {
				r.Max = bound
			} else {
				r.Min = bound
			}
			continue
		}

		if f, ok := s.dates[field]; ok {
			r := dates[field]
			if r == nil {
				r = &DateRange[T]{Field: f}
				dates[field] = r
			}
			bound, bad := parseDateBound(key, value)
			if bad != nil {
				c.Ignored = append(c.Ignored, bad)
			}
			if upper {
				r.To = bound
			} else {
				r.From = bound
			}
			continue
		}

		c.Ignored = append(c.Ignored, malformed(key, value))
	}

	for _, key := range sortedKeys(numbers) {
		if r := numbers[key]; r.active() {
			c.Numbers = append(c.Numbers, *r)
		}
	}
	for _, key := range sortedKeys(dates) {
		if r := dates[key]; r.active() {
			c.Dates = append(c.Dates, *r)
		}
	}

	if ordering := strings.TrimSpace(params[ParamOrdering]); ordering != "" {
		first := strings.TrimSpace(strings.Split(ordering, ",")[0])
		name := strings.TrimPrefix(first, "-")
		if key, ok := s.sortKey(name); ok {
			c.Sort = Sort[T]{Key: key, Desc: strings.HasPrefix(first, "-")}
		} else {
			c.Ignored = append(c.Ignored, malformed(ParamOrdering, ordering))
		}
	}
	return c
}

func rangeParam(key string) (field string, upper bool, ok bool) {
	switch {
	case strings.HasSuffix(key, suffixGTE):
		return strings.TrimSuffix(key, suffixGTE), false, true
	case strings.HasSuffix(key, suffixLTE):
		return strings.TrimSuffix(key, suffixLTE), true, true
	}
	return "", false, false
}

func parseDecimalBound(param, raw string) (decimal.NullDecimal, *apperrors.AppError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, malformed(param, raw)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func parseDateBound(param, raw string) (DateBound, *apperrors.AppError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DateBound{}, nil
	}
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return DateBound{Time: t, DayOnly: true}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateBound{Time: t}, nil
	}
	return DateBound{}, malformed(param, raw)
}

func malformed(param, raw string) *apperrors.AppError {
	err := apperrors.MalformedInput(param, raw)
	log.WithFields(logger.Fields{"param": param, "value": raw}).Warn("⚠️ malformed filter input treated as unbounded")
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParsePage reads page and page_size, falling back to the first page of
// DefaultPageSize items on missing or malformed values.
func ParsePage(params map[string]string) (page, size int) {
	page, err := strconv.Atoi(params[ParamPage])
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(params[ParamPageSize])
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Paginate slices one page out of items. Count is always the full length.
func Paginate[T any](items []T, page, size int) models.Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return models.Page[T]{Count: len(items), Results: append([]T{}, items[start:end]...)}
}
