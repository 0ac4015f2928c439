// Package gateway holds the read-only upstream clients: current
// weather by place name or coordinates, city-name search, and a
// coarse position lookup for the "here" view. Upstream shapes are
// validated and converted into weather.Record at this boundary;
// nothing partially-validated leaves the package.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
)

// Options configures the upstream endpoints. Zero values fall back to
// the public services the dashboard was built against.
type Options struct {
	Client *http.Client

	WeatherBaseURL string
	WeatherAPIKey  string

	GeoBaseURL  string
	GeoUsername string

	LocateBaseURL string

	// FetchDelay is the fixed pause between consecutive requests in
	// FetchMany, respecting the upstream's rate limits.
	FetchDelay time.Duration
}

// Client is the remote data gateway.
type Client struct {
	http *http.Client
	opts Options

	weatherCB *gobreaker.CircuitBreaker
	geoCB     *gobreaker.CircuitBreaker
	locateCB  *gobreaker.CircuitBreaker

	validate *validator.Validate
	now      func() time.Time
}

// New creates a gateway client. Every upstream gets its own circuit
// breaker so a failing weather API does not shed search traffic.
// There is no automatic retry anywhere: retries are the user's call.
func New(opts Options) *Client {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.WeatherBaseURL == "" {
		opts.WeatherBaseURL = "http://api.weatherstack.com"
	}
	if opts.GeoBaseURL == "" {
		opts.GeoBaseURL = "http://api.geonames.org"
	}
	if opts.LocateBaseURL == "" {
		opts.LocateBaseURL = "http://ip-api.com"
	}
	if opts.FetchDelay <= 0 {
		opts.FetchDelay = time.Second
	}

	return &Client{
		http:      opts.Client,
		opts:      opts,
		weatherCB: newBreaker("weather"),
		geoCB:     newBreaker("geo"),
		locateCB:  newBreaker("locate"),
		validate:  validator.New(),
		now:       time.Now,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

var errUnexpectedStatus = errors.New("unexpected status code")

// get executes a single GET through the given breaker and returns the
// response body.
func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.http.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}
