package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"unicode/utf8"

	"github.com/skydeck/skydeck/internal/weather"
)

// minQueryLen is the shortest query worth sending upstream; single
// characters would burn quota on useless result sets.
const minQueryLen = 2

// SearchPlaces resolves a free-text query to candidate places. Search
// is advisory: any upstream or decode failure degrades to an empty
// result, never an error.
func (c *Client) SearchPlaces(ctx context.Context, query string) []weather.Place {
	if utf8.RuneCountInString(query) < minQueryLen {
		return []weather.Place{}
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("maxRows", "10")
	values.Set("username", c.opts.GeoUsername)
	values.Set("featureClass", "P") // populated places only
	values.Set("orderby", "population")

	body, err := c.get(ctx, c.geoCB, fmt.Sprintf("%s/searchJSON?%s", c.opts.GeoBaseURL, values.Encode()))
	if err != nil {
		log.Printf("gateway: place search failed for %q: %v", query, err)
		return []weather.Place{}
	}

	var payload struct {
		Geonames []struct {
			Name        string `json:"name"`
			CountryName string `json:"countryName"`
		} `json:"geonames"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("gateway: place search decode failed for %q: %v", query, err)
		return []weather.Place{}
	}

	places := make([]weather.Place, 0, len(payload.Geonames))
	for _, g := range payload.Geonames {
		places = append(places, weather.Place{Name: g.Name, Country: g.CountryName})
	}
	return places
}
