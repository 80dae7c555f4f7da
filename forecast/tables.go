package forecast

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"agrimarket/apperrors"
	"agrimarket/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/crops.yaml
var defaultCrops []byte

// PredictionWeeks is the length of every forecast trajectory.
const PredictionWeeks = 4

// AliasTable maps a crop identifier to the ordered substrings used to find it
// in the market feed.
type AliasTable map[models.CropID][]string

// Tables is the immutable reference data loaded at startup.
type Tables struct {
	Aliases AliasTable
	Series  map[models.CropID]models.ForecastSeries
}

type cropsFile struct {
	Crops map[string]cropEntry `yaml:"crops"`
}

type cropEntry struct {
	Aliases  []string       `yaml:"aliases"`
	Forecast *forecastEntry `yaml:"forecast"`
}

type forecastEntry struct {
	PreviousPrice    float64      `yaml:"previous_price"`
	ChangePercentage float64      `yaml:"change_percentage"`
	Trend            string       `yaml:"trend"`
	Predictions      []pointEntry `yaml:"predictions"`
	Recommendation   string       `yaml:"recommendation"`
	Factors          []string     `yaml:"factors"`
}

type pointEntry struct {
	Label      string  `yaml:"label"`
	Price      float64 `yaml:"price"`
	Confidence int     `yaml:"confidence"`
}

// Default returns the tables compiled into the binary.
func Default() (*Tables, error) {
	return Parse(defaultCrops)
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forecast tables: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Tables, error) {
	var file cropsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode forecast tables: %w", err)
	}

	t := &Tables{
		Aliases: make(AliasTable, len(file.Crops)),
		Series:  make(map[models.CropID]models.ForecastSeries, len(file.Crops)),
	}
	for name, entry := range file.Crops {
		crop := models.CropID(strings.ToLower(strings.TrimSpace(name)))
		aliases := make([]string, 0, len(entry.Aliases))
		for _, a := range entry.Aliases {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				aliases = append(aliases, a)
			}
		}
		t.Aliases[crop] = aliases
		if entry.Forecast != nil {
			t.Series[crop] = entry.Forecast.series()
		}
	}
	return t, nil
}

func (f forecastEntry) series() models.ForecastSeries {
	points := make([]models.PredictionPoint, 0, len(f.Predictions))
	for _, p := range f.Predictions {
		points = append(points, models.PredictionPoint{
			Label:             p.Label,
			Price:             decimal.NewFromFloat(p.Price),
			ConfidencePercent: p.Confidence,
		})
	}
	return models.ForecastSeries{
		PreviousPrice:    decimal.NewFromFloat(f.PreviousPrice),
		ChangePercentage: decimal.NewFromFloat(f.ChangePercentage),
		Trend:            models.Trend(f.Trend),
		Predictions:      points,
		Recommendation:   f.Recommendation,
		Factors:          f.Factors,
	}
}

// Crops lists the selectable crop identifiers in sorted order.
func (t *Tables) Crops() []models.CropID {
	crops := make([]models.CropID, 0, len(t.Aliases))
	for c := range t.Aliases {
		crops = append(crops, c)
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i] < crops[j] })
	return crops
}

// Selectable reports whether crop is part of the enumerated selection set.
func (t *Tables) Selectable(crop models.CropID) bool {
	_, ok := t.Aliases[crop]
	return ok
}

// Validate checks that every selectable crop has aliases and a complete
// forecast series.
func (t *Tables) Validate() error {
	var problems []string
	for _, crop := range t.Crops() {
		if len(t.Aliases[crop]) == 0 {
			problems = append(problems, fmt.Sprintf("%s has no aliases", crop))
		}
		series, ok := t.Series[crop]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s has no forecast series", crop))
			continue
		}
		if len(series.Predictions) != PredictionWeeks {
			problems = append(problems, fmt.Sprintf("%s has %d prediction points, want %d", crop, len(series.Predictions), PredictionWeeks))
		}
	}
	if len(problems) > 0 {
		return apperrors.Configuration("forecast tables: " + strings.Join(problems, "; "))
	}
	return nil
}
