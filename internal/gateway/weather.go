package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/skydeck/skydeck/internal/weather"
)

// weatherstack-style current conditions payload. Only the consumed
// fields are declared; everything else is ignored.
type currentPayload struct {
	Error struct {
		Info string `json:"info"`
	} `json:"error"`
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		Temperature         float64  `json:"temperature"`
		FeelsLike           float64  `json:"feelslike"`
		WeatherDescriptions []string `json:"weather_descriptions"`
		WeatherIcons        []string `json:"weather_icons"`
		Humidity            float64  `json:"humidity"`
		WindSpeed           float64  `json:"wind_speed"`
		Pressure            float64  `json:"pressure"`
		Visibility          float64  `json:"visibility"`
		CloudCover          float64  `json:"cloudcover"`
		UVIndex             float64  `json:"uv_index"`
	} `json:"current"`
}

// FetchByName fetches current weather for a place name.
func (c *Client) FetchByName(ctx context.Context, name string) (weather.Record, error) {
	return c.fetchCurrent(ctx, name)
}

// FetchByCoords fetches current weather for a coordinate pair.
func (c *Client) FetchByCoords(ctx context.Context, lat, lon float64) (weather.Record, error) {
	return c.fetchCurrent(ctx, fmt.Sprintf("%f,%f", lat, lon))
}

func (c *Client) fetchCurrent(ctx context.Context, query string) (weather.Record, error) {
	const op = "fetch weather"

	values := url.Values{}
	values.Set("access_key", c.opts.WeatherAPIKey)
	values.Set("query", query)

	body, err := c.get(ctx, c.weatherCB, fmt.Sprintf("%s/current?%s", c.opts.WeatherBaseURL, values.Encode()))
	if err != nil {
		return weather.Record{}, &weather.NetworkError{Op: op, Err: err}
	}

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Record{}, &weather.NetworkError{Op: op, Err: err}
	}

	// The upstream reports both no-match and API errors in-band with a
	// 200 status; an empty location is the reliable no-match signal.
	if payload.Location.Name == "" {
		if payload.Error.Info != "" {
			return weather.Record{}, &weather.NetworkError{Op: op, Detail: payload.Error.Info}
		}
		return weather.Record{}, &weather.NotFoundError{What: query}
	}

	rec := c.normalize(payload)
	if err := c.validate.Struct(rec); err != nil {
		return weather.Record{}, &weather.NetworkError{Op: op, Detail: "malformed upstream payload", Err: err}
	}
	return rec, nil
}

func (c *Client) normalize(p currentPayload) weather.Record {
	condition := "Unknown"
	if len(p.Current.WeatherDescriptions) > 0 && p.Current.WeatherDescriptions[0] != "" {
		condition = p.Current.WeatherDescriptions[0]
	}
	icon := ""
	if len(p.Current.WeatherIcons) > 0 {
		icon = p.Current.WeatherIcons[0]
	}

	return weather.Record{
		ID:            weather.PlaceID(p.Location.Name, p.Location.Country),
		Name:          p.Location.Name,
		Country:       p.Location.Country,
		Temperature:   p.Current.Temperature,
		FeelsLike:     p.Current.FeelsLike,
		Condition:     condition,
		ConditionIcon: icon,
		Humidity:      p.Current.Humidity,
		WindSpeed:     p.Current.WindSpeed,
		Pressure:      p.Current.Pressure,
		Visibility:    p.Current.Visibility,
		CloudCover:    p.Current.CloudCover,
		UVIndex:       p.Current.UVIndex,
		LastUpdated:   c.now().UnixMilli(),
	}
}

// FetchMany fetches the given places one at a time with a fixed pause
// between requests. A failed place is logged and skipped; the result
// holds whatever succeeded, in request order. Cancelling ctx stops the
// walk early and returns the records collected so far.
func (c *Client) FetchMany(ctx context.Context, places []weather.Place) []weather.Record {
	records := make([]weather.Record, 0, len(places))

	for i, place := range places {
		if i > 0 {
			timer := time.NewTimer(c.opts.FetchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return records
			case <-timer.C:
			}
		}

		rec, err := c.FetchByName(ctx, place.Name)
		if err != nil {
			log.Printf("gateway: fetch failed for %s: %v", place.Name, err)
			continue
		}
		records = append(records, rec)
	}

	return records
}
