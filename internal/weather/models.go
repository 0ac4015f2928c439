package weather

import (
	"strings"
	"unicode"
)

// Place identifies a city a user can track.
type Place struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ID returns the canonical record key for this place.
func (p Place) ID() string {
	return PlaceID(p.Name, p.Country)
}

// Record is one normalized current-weather snapshot for a place.
// JSON field names match the persisted cache layout, so durable copies
// written by earlier versions of the dashboard load unchanged.
type Record struct {
	ID            string  `json:"id" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Country       string  `json:"country"`
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feelsLike"`
	Condition     string  `json:"condition"`
	ConditionIcon string  `json:"conditionIcon"`
	Humidity      float64 `json:"humidity" validate:"min=0,max=100"`
	WindSpeed     float64 `json:"windSpeed" validate:"min=0"`
	Pressure      float64 `json:"pressure"`
	Visibility    float64 `json:"visibility" validate:"min=0"`
	CloudCover    float64 `json:"cloudCover" validate:"min=0,max=100"`
	UVIndex       float64 `json:"uvIndex" validate:"min=0"`
	LastUpdated   int64   `json:"lastUpdated"`
}

// Place returns the place this record describes.
func (r Record) Place() Place {
	return Place{Name: r.Name, Country: r.Country}
}

// PlaceID derives the record key for a (name, country) pair:
// both parts lowercased with every whitespace run collapsed to a single
// hyphen, joined by an underscore. Deterministic for any input,
// including multi-byte names; diacritics pass through unchanged.
//
//	PlaceID("New York", "United States") == "new-york_united-states"
func PlaceID(name, country string) string {
	return hyphenateLower(name) + "_" + hyphenateLower(country)
}

func hyphenateLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			pending = true
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteRune(r)
	}
	if pending {
		b.WriteByte('-')
	}
	return b.String()
}
