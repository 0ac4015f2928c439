package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeck/skydeck/internal/weather"
)

func currentBody(name, country string, temp float64) string {
	return fmt.Sprintf(`{
		"location": {"name": %q, "country": %q},
		"current": {
			"temperature": %v,
			"feelslike": %v,
			"weather_descriptions": ["Partly cloudy"],
			"weather_icons": ["https://cdn.example/icon.png"],
			"humidity": 60,
			"wind_speed": 11,
			"pressure": 1012,
			"visibility": 10,
			"cloudcover": 25,
			"uv_index": 4
		}
	}`, name, country, temp, temp)
}

func TestFetchByNameNormalizes(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/current", r.URL.Path)
		assert.Equal(t, "Tokyo", r.URL.Query().Get("query"))
		fmt.Fprint(w, currentBody("Tokyo", "Japan", 21.5))
	}))
	defer srv.Close()

	c := New(Options{WeatherBaseURL: srv.URL, FetchDelay: time.Millisecond})

	rec, err := c.FetchByName(context.Background(), "Tokyo")
	require.NoError(t, err)

	assert.Equal(t, "tokyo_japan", rec.ID)
	assert.Equal(t, "Tokyo", rec.Name)
	assert.Equal(t, "Japan", rec.Country)
	assert.Equal(t, 21.5, rec.Temperature)
	assert.Equal(t, "Partly cloudy", rec.Condition)
	assert.Equal(t, "https://cdn.example/icon.png", rec.ConditionIcon)
	assert.NotZero(t, rec.LastUpdated)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchByNameNoMatchIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"location": {}}`)
	}))
	defer srv.Close()

	c := New(Options{WeatherBaseURL: srv.URL})

	_, err := c.FetchByName(context.Background(), "Nowhereville")
	require.Error(t, err)
	assert.True(t, weather.IsNotFound(err), "missing location must be a not-found condition, got %v", err)
}

func TestFetchByNameUpstreamErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"info": "Your monthly usage limit has been reached."}}`)
	}))
	defer srv.Close()

	c := New(Options{WeatherBaseURL: srv.URL})

	_, err := c.FetchByName(context.Background(), "Tokyo")
	require.Error(t, err)
	assert.False(t, weather.IsNotFound(err))
	assert.Contains(t, err.Error(), "monthly usage limit", "upstream message must be carried through")
}

func TestFetchByCoordsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "35.680000,139.770000", r.URL.Query().Get("query"))
		fmt.Fprint(w, currentBody("Tokyo", "Japan", 19))
	}))
	defer srv.Close()

	c := New(Options{WeatherBaseURL: srv.URL})

	rec, err := c.FetchByCoords(context.Background(), 35.68, 139.77)
	require.NoError(t, err)
	assert.Equal(t, "tokyo_japan", rec.ID)
}

func TestFetchManySkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "Atlantis" {
			fmt.Fprint(w, `{"location": {}}`)
			return
		}
		name := r.URL.Query().Get("query")
		fmt.Fprint(w, currentBody(name, "Japan", 20))
	}))
	defer srv.Close()

	c := New(Options{WeatherBaseURL: srv.URL, FetchDelay: time.Millisecond})

	records := c.FetchMany(context.Background(), []weather.Place{
		{Name: "Tokyo", Country: "Japan"},
		{Name: "Atlantis", Country: "Nowhere"},
		{Name: "Osaka", Country: "Japan"},
	})

	require.Len(t, records, 2, "the failing place is skipped, not fatal")
	assert.Equal(t, "tokyo_japan", records[0].ID)
	assert.Equal(t, "osaka_japan", records[1].ID, "request order preserved")
}

func TestSearchPlacesShortQueryNoCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(Options{GeoBaseURL: srv.URL})

	got := c.SearchPlaces(context.Background(), "T")
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&calls), "queries under two characters never reach upstream")
}

func TestSearchPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchJSON", r.URL.Path)
		assert.Equal(t, "To", r.URL.Query().Get("q"))
		assert.Equal(t, "P", r.URL.Query().Get("featureClass"))
		fmt.Fprint(w, `{"geonames": [
			{"name": "Tokyo", "countryName": "Japan"},
			{"name": "Toronto", "countryName": "Canada"}
		]}`)
	}))
	defer srv.Close()

	c := New(Options{GeoBaseURL: srv.URL})

	got := c.SearchPlaces(context.Background(), "To")
	assert.Equal(t, []weather.Place{
		{Name: "Tokyo", Country: "Japan"},
		{Name: "Toronto", Country: "Canada"},
	}, got)
}

func TestSearchPlacesUpstreamFailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{GeoBaseURL: srv.URL})

	got := c.SearchPlaces(context.Background(), "Tokyo")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "success", "lat": 35.68, "lon": 139.77}`)
	}))
	defer srv.Close()

	c := New(Options{LocateBaseURL: srv.URL})

	lat, lon, err := c.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 35.68, lat)
	assert.Equal(t, 139.77, lon)
}

func TestLocateRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "fail", "message": "private range"}`)
	}))
	defer srv.Close()

	c := New(Options{LocateBaseURL: srv.URL})

	_, _, err := c.Locate(context.Background())
	var perm *weather.PermissionError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, "private range", perm.Reason)
}
