package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/skydeck/skydeck/internal/weather"
)

// Permission is the tri-state location permission flag.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// LocationPersistence is the slice of storage the location container
// uses.
type LocationPersistence interface {
	SaveUserLocation(weather.Record)
	LoadUserLocation() *weather.Record
}

// Locator acquires the device's current coordinates.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

// CoordsFetcher fetches current weather for a coordinate pair.
type CoordsFetcher interface {
	FetchByCoords(ctx context.Context, lat, lon float64) (weather.Record, error)
}

// LocationSnapshot is a read-only view of the container state.
type LocationSnapshot struct {
	Record     *weather.Record `json:"location"`
	Permission Permission      `json:"permission"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
}

// Location owns the "weather here" state machine: no permission yet,
// loading, granted with a record, or denied with a reason. Denied and
// granted both accept a retry.
type Location struct {
	mu         sync.Mutex
	record     *weather.Record
	permission Permission
	loading    bool
	lastError  string

	store   LocationPersistence
	locator Locator
	fetcher CoordsFetcher
	timeout time.Duration
}

// NewLocation creates a location container. timeout bounds the whole
// acquire-and-fetch sequence of RequestLocation.
func NewLocation(store LocationPersistence, locator Locator, fetcher CoordsFetcher, timeout time.Duration) *Location {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Location{
		permission: PermissionUnknown,
		store:      store,
		locator:    locator,
		fetcher:    fetcher,
		timeout:    timeout,
	}
}

// Hydrate restores a persisted location, treating its existence as an
// implicit permission grant for display purposes. No network call.
// The load happens under the lock so it serializes with concurrent
// state transitions.
func (l *Location) Hydrate() {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.store.LoadUserLocation()
	if rec == nil {
		return
	}
	l.record = rec
	l.permission = PermissionGranted
}

// RequestLocation acquires coordinates and fetches weather for them.
// On success the record is stored and persisted; on any failure
// (refusal, timeout, fetch error) the container lands in the denied
// state with a human-readable reason and nothing is persisted. The
// failure becomes state, never an escaping error.
func (l *Location) RequestLocation(ctx context.Context) LocationSnapshot {
	l.mu.Lock()
	l.loading = true
	l.lastError = ""
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	lat, lon, err := l.locator.Locate(ctx)
	if err != nil {
		return l.deny(err)
	}

	rec, err := l.fetcher.FetchByCoords(ctx, lat, lon)
	if err != nil {
		return l.deny(err)
	}

	l.mu.Lock()
	l.record = &rec
	l.permission = PermissionGranted
	l.loading = false
	// Persist under the lock so a concurrent hydrate cannot load the
	// previous durable copy and clobber this grant.
	l.store.SaveUserLocation(rec)
	l.mu.Unlock()

	return l.Snapshot()
}

// Clear resets to the no-permission-yet state. The persisted copy is
// left alone; it goes stale until the next successful request.
func (l *Location) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record = nil
	l.permission = PermissionUnknown
	l.loading = false
	l.lastError = ""
}

// Snapshot returns the current container state.
func (l *Location) Snapshot() LocationSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rec *weather.Record
	if l.record != nil {
		copied := *l.record
		rec = &copied
	}
	return LocationSnapshot{
		Record:     rec,
		Permission: l.permission,
		Loading:    l.loading,
		Error:      l.lastError,
	}
}

func (l *Location) deny(err error) LocationSnapshot {
	reason := "failed to get current location"
	var perm *weather.PermissionError
	if errors.As(err, &perm) {
		reason = perm.Reason
	} else if err != nil {
		reason = err.Error()
	}

	l.mu.Lock()
	l.permission = PermissionDenied
	l.loading = false
	l.lastError = reason
	l.mu.Unlock()

	return l.Snapshot()
}
