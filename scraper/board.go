package scraper

import (
	"fmt"
	"io"
	"strings"

	"agrimarket/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

type column int

const (
	colCommodity column = iota
	colUnit
	colMin
	colMax
	colAvg
)

// Header keywords, English and Nepali, as printed on the board.
var headerKeywords = map[column][]string{
	colCommodity: {"commodity", "कृषि उपज"},
	colUnit:      {"unit", "ईकाइ", "इकाइ"},
	colMin:       {"min", "न्यूनतम"},
	colMax:       {"max", "अधिकतम"},
	colAvg:       {"avg", "average", "औसत"},
}

var devanagariDigits = strings.NewReplacer(
	"०", "0", "१", "1", "२", "2", "३", "3", "४", "4",
	"५", "5", "६", "6", "७", "7", "८", "8", "९", "9",
)

// ParseBoard reads every price row from the first table whose header names a
// commodity column and an average column. Rows without a name or a readable
// average are skipped.
func ParseBoard(r io.Reader) ([]models.Quote, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing board: %w", err)
	}

	var rows []models.Quote
	found := false
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols := headerColumns(table)
		if _, ok := cols[colCommodity]; !ok {
			return true
		}
		if _, ok := cols[colAvg]; !ok {
			return true
		}
		found = true

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			cell := func(c column) string {
				idx, ok := cols[c]
				if !ok || idx >= cells.Length() {
					return ""
				}
				return strings.TrimSpace(cells.Eq(idx).Text())
			}

			name := strings.Join(strings.Fields(cell(colCommodity)), " ")
			avg, ok := parsePrice(cell(colAvg))
			if name == "" || !ok {
				return
			}
			row := models.Quote{Commodity: name, Unit: cell(colUnit), Avg: avg, Min: avg, Max: avg}
			if v, ok := parsePrice(cell(colMin)); ok {
				row.Min = v
			}
			if v, ok := parsePrice(cell(colMax)); ok {
				row.Max = v
			}
			rows = append(rows, row)
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("no price table found on board")
	}
	return rows, nil
}

func headerColumns(table *goquery.Selection) map[column]int {
	cols := make(map[column]int)
	table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(cell.Text()))
		for col, keywords := range headerKeywords {
			if _, seen := cols[col]; seen {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					cols[col] = i
					return
				}
			}
		}
	})
	return cols
}

// parsePrice accepts "Rs 80.00", "रू ८०" and "1,250".
func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = devanagariDigits.Replace(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
