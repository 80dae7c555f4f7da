package catalog

import (
	"reflect"
	"testing"
	"time"

	"agrimarket/apperrors"
	"agrimarket/models"

	"github.com/shopspring/decimal"
)

func price(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

var null = decimal.NullDecimal{}

func sampleProducts() []models.Product {
	day := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: 1, CommodityName: "Tomato Big", MinPrice: price(80), MaxPrice: price(100), AvgPrice: price(90), LastPrice: price(90), LastUpdate: day},
		{ID: 2, CommodityName: "Potato Red", MinPrice: price(45), MaxPrice: price(55), AvgPrice: price(50), LastPrice: price(50), LastUpdate: day.AddDate(0, 0, -1)},
		{ID: 3, CommodityName: "Onion Dry", AvgPrice: null, LastPrice: price(110), LastUpdate: day.AddDate(0, 0, -3)},
		{ID: 4, CommodityName: "Tomato Small", MinPrice: price(70), MaxPrice: price(90), AvgPrice: price(85), LastPrice: null, LastUpdate: day},
		{ID: 5, CommodityName: "Cauli Local", MinPrice: price(60), MaxPrice: price(50), AvgPrice: price(75), LastPrice: price(75)},
	}
}

func ids(products []models.Product) []uint {
	out := make([]uint, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestNoCriteriaIsIdentity(t *testing.T) {
	items := sampleProducts()
	got := Products(items, ProductCriteria{})
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("identity filter changed items: %v", ids(got))
	}

	empty := Products(nil, ProductCriteria{})
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty input should give empty, non-nil result")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	items := sampleProducts()
	criteria := []ProductCriteria{
		ParseProductCriteria(map[string]string{"search": "tomato", "ordering": "-avg_price"}),
		ParseProductCriteria(map[string]string{"avg_price__gte": "60", "ordering": "commodity_name"}),
		ParseProductCriteria(map[string]string{"has_data_today": "no"}),
		ParseProductCriteria(map[string]string{"last_update__lte": "2024-03-04", "ordering": "last_update"}),
	}
	for _, c := range criteria {
		once := Products(items, c)
		twice := Products(once, c)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent: %v vs %v", ids(once), ids(twice))
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := sampleProducts()
	before := ids(items)
	Products(items, ParseProductCriteria(map[string]string{"ordering": "-max_price"}))
	if !reflect.DeepEqual(ids(items), before) {
		t.Fatalf("input reordered: %v", ids(items))
	}
}

func TestSortDescIsReverseOfAsc(t *testing.T) {
	items := sampleProducts()[:4]
	items[2].LastPrice = price(120)
	items[3].LastPrice = price(60)

	asc := Products(items, ProductCriteria{Criteria: Criteria[models.Product]{Sort: Sort[models.Product]{Key: ProductLastPrice}}})
	desc := Products(items, ProductCriteria{Criteria: Criteria[models.Product]{Sort: Sort[models.Product]{Key: ProductLastPrice, Desc: true}}})

	a, d := ids(asc), ids(desc)
	for i := range a {
		if a[i] != d[len(d)-1-i] {
			t.Fatalf("asc %v is not the reverse of desc %v", a, d)
		}
	}
	if !reflect.DeepEqual(a, []uint{2, 4, 1, 3}) {
		t.Fatalf("asc = %v", a)
	}
}

func TestSortIsStable(t *testing.T) {
	items := sampleProducts()
	got := Products(items, ParseProductCriteria(map[string]string{"ordering": "last_update"}))
	// 1 and 4 share a timestamp and keep input order; the zero time sorts last.
	if want := []uint{3, 2, 1, 4, 5}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}

	desc := Products(items, ParseProductCriteria(map[string]string{"ordering": "-last_update"}))
	if want := []uint{5, 1, 4, 2, 3}; !reflect.DeepEqual(ids(desc), want) {
		t.Fatalf("desc got %v, want %v", ids(desc), want)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	got := Products(sampleProducts(), ParseProductCriteria(map[string]string{"search": "  TOMATO "}))
	if want := []uint{1, 4}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
}

func TestNumericRangeNullSemantics(t *testing.T) {
	items := sampleProducts()

	tests := []struct {
		name   string
		params map[string]string
		want   []uint
	}{
		{"min only excludes nulls", map[string]string{"last_price__gte": "80"}, []uint{1, 3}},
		{"max only excludes nulls", map[string]string{"last_price__lte": "80"}, []uint{2, 5}},
		{"inclusive both ends", map[string]string{"avg_price__gte": "50", "avg_price__lte": "85"}, []uint{2, 4, 5}},
		{"no bound keeps nulls", map[string]string{"last_price__gte": ""}, []uint{1, 2, 3, 4, 5}},
		{"inverted prices don't crash", map[string]string{"max_price__lte": "50"}, []uint{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Products(items, ParseProductCriteria(tt.params))
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Fatalf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestMalformedNumericBoundIsUnbounded(t *testing.T) {
	items := sampleProducts()
	c := ParseProductCriteria(map[string]string{"last_price__gte": "abc"})

	got := Products(items, c)
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("malformed bound filtered items: %v", ids(got))
	}
	if len(c.Ignored) != 1 || c.Ignored[0].Kind != apperrors.KindMalformedInput {
		t.Fatalf("malformed input not recorded: %+v", c.Ignored)
	}
}

func TestMalformedInputsNeverFail(t *testing.T) {
	items := sampleProducts()
	c := ParseProductCriteria(map[string]string{
		"last_update__gte": "last tuesday",
		"unit__gte":        "5",
		"ordering":         "-flavour",
		"has_data_today":   "maybe",
	})
	if got := Products(items, c); !reflect.DeepEqual(got, items) {
		t.Fatalf("malformed criteria filtered items: %v", ids(got))
	}
	if len(c.Ignored) != 4 {
		t.Fatalf("ignored = %d, want 4", len(c.Ignored))
	}
}

func TestHasDataToday(t *testing.T) {
	items := sampleProducts()
	yes := Products(items, ParseProductCriteria(map[string]string{"has_data_today": "yes"}))
	no := Products(items, ParseProductCriteria(map[string]string{"has_data_today": "no"}))
	if !reflect.DeepEqual(ids(yes), []uint{1, 2, 4, 5}) || !reflect.DeepEqual(ids(no), []uint{3}) {
		t.Fatalf("yes = %v, no = %v", ids(yes), ids(no))
	}
}

func TestCriteriaCombineWithAnd(t *testing.T) {
	got := Products(sampleProducts(), ParseProductCriteria(map[string]string{
		"search":         "tomato",
		"avg_price__lte": "88",
		"has_data_today": "yes",
	}))
	if want := []uint{4}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}

	none := Products(sampleProducts(), ParseProductCriteria(map[string]string{"search": "mango"}))
	if len(none) != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestHistoryDateRange(t *testing.T) {
	history := []models.PriceHistoryEntry{
		{ID: 1, ProductName: "Potato Red", Date: models.NewDate(2024, time.March, 3), AvgPrice: decimal.NewFromInt(48)},
		{ID: 2, ProductName: "Potato Red", Date: models.NewDate(2024, time.March, 4), AvgPrice: decimal.NewFromInt(50)},
		{ID: 3, ProductName: "Tomato Big", Date: models.NewDate(2024, time.March, 5), AvgPrice: decimal.NewFromInt(90)},
		{ID: 4, ProductName: "Tomato Big", Date: models.NewDate(2024, time.March, 6), AvgPrice: decimal.NewFromInt(92)},
	}

	got := History(history, ParseHistoryCriteria(map[string]string{"date__gte": "2024-03-04", "date__lte": "2024-03-05"}))
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("inclusive date range got %+v", got)
	}

	got = History(history, ParseHistoryCriteria(map[string]string{"date__lte": "not-a-date", "ordering": "-avg_price"}))
	if len(got) != 4 || got[0].ID != 4 || got[3].ID != 1 {
		t.Fatalf("malformed date bound should be unbounded, got %+v", got)
	}

	got = History(history, ParseHistoryCriteria(map[string]string{"search": "potato", "avg_price__gte": "49"}))
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("history search + range got %+v", got)
	}
}

func TestDateOnlyBoundsUseValueLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	products := []models.Product{
		// 01:00 on the 5th in WIB is still the 4th in UTC.
		{ID: 1, CommodityName: "Chili Red", LastUpdate: time.Date(2024, time.March, 5, 1, 0, 0, 0, wib)},
		{ID: 2, CommodityName: "Chili Green", LastUpdate: time.Date(2024, time.March, 4, 23, 30, 0, 0, wib)},
	}

	got := Products(products, ParseProductCriteria(map[string]string{"last_update__lte": "2024-03-04"}))
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("upper bound got %+v", got)
	}
	got = Products(products, ParseProductCriteria(map[string]string{"last_update__gte": "2024-03-05"}))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("lower bound got %+v", got)
	}
	got = Products(products, ParseProductCriteria(map[string]string{"last_update__gte": "2024-03-04T17:00:00Z"}))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("instant bound got %+v", got)
	}
}

func TestSummarizeProducts(t *testing.T) {
	s := SummarizeProducts([]models.Product{{AvgPrice: price(10)}, {AvgPrice: null}, {AvgPrice: price(5)}})
	if s != (ProductSummary{Total: 3, UpdatedToday: 2, MissingToday: 1}) {
		t.Fatalf("summary = %+v", s)
	}

	if s := SummarizeProducts(nil); s != (ProductSummary{}) {
		t.Fatalf("empty summary = %+v", s)
	}

	for _, items := range [][]models.Product{sampleProducts(), nil, {{}}} {
		s := SummarizeProducts(items)
		if s.Total != s.UpdatedToday+s.MissingToday || s.Total != len(items) {
			t.Fatalf("total mismatch: %+v", s)
		}
	}
}

func TestSummarizeHistory(t *testing.T) {
	if s := SummarizeHistory(make([]models.PriceHistoryEntry, 7)); s.TotalRecords != 7 {
		t.Fatalf("total records = %d", s.TotalRecords)
	}
}

func TestPaginate(t *testing.T) {
	items := sampleProducts()

	page := Paginate(items, 2, 2)
	if page.Count != 5 || !reflect.DeepEqual(ids(page.Results), []uint{3, 4}) {
		t.Fatalf("page = %+v", page)
	}
	beyond := Paginate(items, 9, 2)
	if beyond.Count != 5 || len(beyond.Results) != 0 || beyond.Results == nil {
		t.Fatalf("beyond = %+v", beyond)
	}

	p, size := ParsePage(map[string]string{"page": "x", "page_size": "10000"})
	if p != 1 || size != MaxPageSize {
		t.Fatalf("ParsePage = %d, %d", p, size)
	}
}
