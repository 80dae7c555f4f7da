package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agrimarket/logger"

	"github.com/shopspring/decimal"
)

const boardHTML = `<html><body>
<table class="nav"><tr><td>Home</td></tr></table>
<table id="commodityPriceParticular">
  <thead><tr><th>Commodity</th><th>Unit</th><th>Minimum</th><th>Maximum</th><th>Average</th></tr></thead>
  <tbody>
    <tr><td>Tomato Big(Nepali)</td><td>KG</td><td>Rs 80.00</td><td>Rs 90.00</td><td>Rs 85.00</td></tr>
    <tr><td>  Potato   Red </td><td>KG</td><td>रू ४५</td><td>रू ५५</td><td>रू ५०</td></tr>
    <tr><td>Ginger</td><td>KG</td><td>-</td><td>-</td><td>1,250</td></tr>
    <tr><td>Lettuce</td><td>KG</td><td>Rs 30</td><td>Rs 40</td><td>n/a</td></tr>
  </tbody>
</table></body></html>`

func TestParseBoard(t *testing.T) {
	rows, err := ParseBoard(strings.NewReader(boardHTML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Commodity != "Tomato Big(Nepali)" || !rows[0].Avg.Equal(decimal.NewFromInt(85)) || rows[0].Unit != "KG" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[1].Commodity != "Potato Red" || !rows[1].Min.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("devanagari row = %+v", rows[1])
	}
	if !rows[2].Avg.Equal(decimal.NewFromInt(1250)) || !rows[2].Min.Equal(rows[2].Avg) {
		t.Fatalf("missing min should default to avg: %+v", rows[2])
	}
}

func TestParseBoardWithoutTable(t *testing.T) {
	if _, err := ParseBoard(strings.NewReader("<html><p>closed today</p></html>")); err == nil {
		t.Fatalf("expected error for board without a price table")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(boardHTML))
	}))
	defer srv.Close()

	s := New(srv.URL, 5*time.Second, logger.Discard())
	rows, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, time.Second, logger.Discard()).Fetch(context.Background()); err == nil {
		t.Fatalf("expected status error")
	}
	if _, err := New("", time.Second, logger.Discard()).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
