// Package state holds the four domain state containers. Each owns the
// authoritative in-memory copy of one domain and mirrors every
// mutation to durable storage synchronously, whole-domain at a time.
// Containers are built explicitly and injected where needed; there is
// no package-level instance.
package state

import (
	"context"
	"sync"

	"github.com/skydeck/skydeck/internal/weather"
)

// CachePersistence is the slice of storage the weather container uses.
type CachePersistence interface {
	SaveWeatherCache(map[string]weather.Record)
	LoadWeatherCache() map[string]weather.Record
}

// Fetcher re-fetches current weather for a place name.
type Fetcher interface {
	FetchByName(ctx context.Context, name string) (weather.Record, error)
}

// Weather owns the tracked-city collection, keyed by record ID.
type Weather struct {
	mu     sync.RWMutex
	cities map[string]weather.Record

	store CachePersistence
	gw    Fetcher
}

// NewWeather creates an empty weather container.
func NewWeather(store CachePersistence, gw Fetcher) *Weather {
	return &Weather{
		cities: make(map[string]weather.Record),
		store:  store,
		gw:     gw,
	}
}

// Hydrate replaces the in-memory collection with the persisted copy.
// When nothing is persisted the collection is left untouched, so a
// redundant hydrate never wipes session data. The load happens under
// the write lock: mutations persist under the same lock, so the
// snapshot can never be stale and a mutation landing mid-hydrate is
// never reverted.
func (w *Weather) Hydrate() {
	w.mu.Lock()
	defer w.mu.Unlock()

	cached := w.store.LoadWeatherCache()
	if cached == nil {
		return
	}
	w.cities = cached
}

// Upsert inserts or overwrites the record under its ID and persists
// the whole collection.
func (w *Weather) Upsert(rec weather.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cities[rec.ID] = rec
	w.persistLocked()
}

// BulkUpsert applies Upsert semantics for each record with a single
// persistence write at the end.
func (w *Weather) BulkUpsert(records []weather.Record) {
	if len(records) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range records {
		w.cities[rec.ID] = rec
	}
	w.persistLocked()
}

// Remove deletes the record if present. Removing an absent ID is a
// no-op, not an error; the collection is persisted either way.
func (w *Weather) Remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.cities, id)
	w.persistLocked()
}

// RefreshOne re-fetches the place stored under id by its name and
// upserts the result. The not-found check happens before any network
// attempt.
func (w *Weather) RefreshOne(ctx context.Context, id string) (weather.Record, error) {
	w.mu.RLock()
	current, ok := w.cities[id]
	w.mu.RUnlock()

	if !ok {
		return weather.Record{}, &weather.NotFoundError{What: id}
	}

	rec, err := w.gw.FetchByName(ctx, current.Name)
	if err != nil {
		return weather.Record{}, err
	}

	w.Upsert(rec)
	return rec, nil
}

// Get returns the record under id, if any.
func (w *Weather) Get(id string) (weather.Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rec, ok := w.cities[id]
	return rec, ok
}

// All returns a copy of every tracked record, in no particular order.
func (w *Weather) All() []weather.Record {
	w.mu.RLock()
	defer w.mu.RUnlock()

	records := make([]weather.Record, 0, len(w.cities))
	for _, rec := range w.cities {
		records = append(records, rec)
	}
	return records
}

// Len returns the number of tracked records.
func (w *Weather) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.cities)
}

func (w *Weather) persistLocked() {
	snapshot := make(map[string]weather.Record, len(w.cities))
	for id, rec := range w.cities {
		snapshot[id] = rec
	}
	w.store.SaveWeatherCache(snapshot)
}
