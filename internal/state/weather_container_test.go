package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeck/skydeck/internal/weather"
)

func TestUpsertReplacesNotDuplicates(t *testing.T) {
	store := newFakeStore()
	w := NewWeather(store, &fakeGateway{})

	first := record("Tokyo", "Japan")
	first.Temperature = 18

	w.Upsert(first)
	assert.Equal(t, 1, w.Len())

	second := first
	second.Temperature = 24
	w.Upsert(second)

	assert.Equal(t, 1, w.Len(), "same id must overwrite, not duplicate")
	got, ok := w.Get("tokyo_japan")
	require.True(t, ok)
	assert.Equal(t, 24.0, got.Temperature)

	// Every mutation mirrors the whole collection to storage.
	assert.Equal(t, 2, store.cacheSaves)
	assert.Len(t, store.cache, 1)
}

func TestRemoveAbsentIsNoError(t *testing.T) {
	store := newFakeStore()
	w := NewWeather(store, &fakeGateway{})

	w.Upsert(record("Tokyo", "Japan"))
	w.Remove("atlantis_nowhere")

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 2, store.cacheSaves, "remove persists even when absent")
}

func TestHydrateIsNonDestructive(t *testing.T) {
	store := newFakeStore()
	w := NewWeather(store, &fakeGateway{})

	w.Upsert(record("Tokyo", "Japan"))

	// Nothing persisted under the cache key: hydrate must not wipe the
	// already-loaded session data.
	store.cache = nil
	w.Hydrate()
	assert.Equal(t, 1, w.Len())

	// With a persisted copy present, hydrate replaces wholesale.
	store.cache = map[string]weather.Record{
		"osaka_japan": record("Osaka", "Japan"),
	}
	w.Hydrate()
	assert.Equal(t, 1, w.Len())
	_, ok := w.Get("osaka_japan")
	assert.True(t, ok)
	_, ok = w.Get("tokyo_japan")
	assert.False(t, ok)
}

func TestRefreshOneNotFoundBeforeNetwork(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{}
	w := NewWeather(store, gw)

	_, err := w.RefreshOne(context.Background(), "tokyo_japan")
	require.Error(t, err)
	assert.True(t, weather.IsNotFound(err))
	assert.Zero(t, gw.nameCalls, "no network call may be attempted for an absent id")
}

func TestRefreshOneFetchesByStoredName(t *testing.T) {
	store := newFakeStore()
	fresh := record("Tokyo", "Japan")
	fresh.Temperature = 30
	gw := &fakeGateway{byName: map[string]weather.Record{"Tokyo": fresh}}
	w := NewWeather(store, gw)

	stale := record("Tokyo", "Japan")
	stale.Temperature = 10
	w.Upsert(stale)

	got, err := w.RefreshOne(context.Background(), "tokyo_japan")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Temperature)
	assert.Equal(t, 1, gw.nameCalls)

	cached, _ := w.Get("tokyo_japan")
	assert.Equal(t, 30.0, cached.Temperature)
}

func TestRefreshOneFailureLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{nameErr: &weather.NetworkError{Op: "fetch weather"}}
	w := NewWeather(store, gw)

	stale := record("Tokyo", "Japan")
	stale.Temperature = 10
	w.Upsert(stale)
	savesBefore := store.cacheSaves

	_, err := w.RefreshOne(context.Background(), "tokyo_japan")
	require.Error(t, err)

	cached, _ := w.Get("tokyo_japan")
	assert.Equal(t, 10.0, cached.Temperature, "prior state stays on fetch failure")
	assert.Equal(t, savesBefore, store.cacheSaves)
}

func TestBulkUpsert(t *testing.T) {
	store := newFakeStore()
	w := NewWeather(store, &fakeGateway{})

	w.BulkUpsert([]weather.Record{
		record("Tokyo", "Japan"),
		record("London", "United Kingdom"),
	})

	assert.Equal(t, 2, w.Len())
	assert.Equal(t, 1, store.cacheSaves, "bulk upsert persists once")
	assert.Contains(t, store.cache, "tokyo_japan")
	assert.Contains(t, store.cache, "london_united-kingdom")

	// Empty input is a no-op, including persistence.
	w.BulkUpsert(nil)
	assert.Equal(t, 1, store.cacheSaves)
}
