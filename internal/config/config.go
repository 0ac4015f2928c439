package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/skydeck/skydeck/internal/weather"
)

// defaultPlaces is the dashboard's initial city set: the 15 largest
// cities by population, in alphabetical order.
var defaultPlaces = []weather.Place{
	{Name: "Beijing", Country: "China"},
	{Name: "Buenos Aires", Country: "Argentina"},
	{Name: "Cairo", Country: "Egypt"},
	{Name: "Chongqing", Country: "China"},
	{Name: "Delhi", Country: "India"},
	{Name: "Dhaka", Country: "Bangladesh"},
	{Name: "Istanbul", Country: "Turkey"},
	{Name: "Karachi", Country: "Pakistan"},
	{Name: "Kolkata", Country: "India"},
	{Name: "Mexico City", Country: "Mexico"},
	{Name: "Mumbai", Country: "India"},
	{Name: "Osaka", Country: "Japan"},
	{Name: "São Paulo", Country: "Brazil"},
	{Name: "Shanghai", Country: "China"},
	{Name: "Tokyo", Country: "Japan"},
}

type AppConfig struct {
	WeatherAPIKey string
	GeoUsername   string

	// DBPath locates the durable store.
	DBPath string

	// DefaultPlaces seed the collection on a cold, stale, online start.
	DefaultPlaces []weather.Place

	// FreshnessMaxAge gates the automatic startup fetch.
	FreshnessMaxAge time.Duration

	// ResyncInterval drives the periodic sync check.
	ResyncInterval time.Duration

	// FetchDelay spaces consecutive batch requests.
	FetchDelay time.Duration

	// LocationTimeout bounds the whole locate-and-fetch sequence.
	LocationTimeout time.Duration

	HTTPTimeout time.Duration
	ProbeAddr   string
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERSTACK_API_KEY")
	cfg.GeoUsername = os.Getenv("GEONAMES_USERNAME")

	cfg.DBPath = getenvDefault("SKYDECK_DB", "skydeck.db")
	cfg.ProbeAddr = getenvDefault("CONNECTIVITY_PROBE_ADDR", "1.1.1.1:443")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.FreshnessMaxAge, err = getenvDuration("CACHE_MAX_AGE", "30m"); err != nil {
		return nil, err
	}
	if cfg.ResyncInterval, err = getenvDuration("RESYNC_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.FetchDelay, err = getenvDuration("FETCH_DELAY", "1s"); err != nil {
		return nil, err
	}
	if cfg.LocationTimeout, err = getenvDuration("LOCATION_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	places, err := loadPlaces()
	if err != nil {
		return nil, err
	}
	cfg.DefaultPlaces = places

	return cfg, nil
}

// loadPlaces reads the default place list from paired comma-separated
// env vars, falling back to the built-in list.
func loadPlaces() ([]weather.Place, error) {
	city := os.Getenv("SKYDECK_CITIES")
	country := os.Getenv("SKYDECK_COUNTRIES")
	if city == "" && country == "" {
		return defaultPlaces, nil
	}

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var places []weather.Place
	for i := range cities {
		places = append(places, weather.Place{
			Name:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}
	return places, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
