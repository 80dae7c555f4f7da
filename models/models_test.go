package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateJSON(t *testing.T) {
	var entry PriceHistoryEntry
	raw := `{"id":7,"product_name":"Potato Red","date":"2024-03-05","min_price":"40","max_price":"50","avg_price":45}`
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !entry.Date.Equal(NewDate(2024, time.March, 5).Time) {
		t.Fatalf("date = %v", entry.Date)
	}
	if !entry.AvgPrice.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("avg = %v", entry.AvgPrice)
	}

	out, err := json.Marshal(entry.Date)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"2024-03-05"` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestDateAcceptsTimestampsAndNull(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-05T18:30:00Z"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-03-05" {
		t.Fatalf("date = %s", d)
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Fatalf("null should reset the date")
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &d); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan([]byte("2024-01-31 00:00:00")); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-01-31" {
		t.Fatalf("scan = %s", d)
	}
	v, err := d.Value()
	if err != nil || v != "2024-01-31" {
		t.Fatalf("value = %v, %v", v, err)
	}
}

func TestProductNullPrices(t *testing.T) {
	var p Product
	raw := `{"id":1,"commodity_name":"Tomato Big","unit":null,"avg_price":null,"last_price":"82.50"}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.HasDataToday() {
		t.Fatalf("null avg price should mean no data today")
	}
	if !p.LastPrice.Valid || p.LastPrice.Decimal.String() != "82.5" {
		t.Fatalf("last price = %+v", p.LastPrice)
	}
	if p.Unit != nil {
		t.Fatalf("unit should be nil")
	}
}

func TestUserPassword(t *testing.T) {
	var u User
	if err := u.HashPassword("s3cret"); err != nil {
		t.Fatal(err)
	}
	if !u.CheckPassword("s3cret") || u.CheckPassword("wrong") {
		t.Fatalf("password check mismatch")
	}
}

func TestUserEmptyPassword(t *testing.T) {
	var u User
	if err := u.HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if u.CheckPassword("") {
		t.Fatalf("empty hash must never match")
	}
}
