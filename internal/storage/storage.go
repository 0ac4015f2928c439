// Package storage is the durable mirror behind the state containers:
// one SQLite key/value table holding a JSON document per domain. The
// in-memory containers are authoritative; every load here returns a
// domain default on absence or corruption rather than an error, since
// the durable store is untrusted and the caller has no better remedy
// than "no cached data".
package storage

import (
	"database/sql"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"

	"github.com/skydeck/skydeck/internal/weather"
)

// Logical keys, one per persisted domain. Fixed, non-overlapping.
const (
	keyWeatherCache = "weather_cache"
	keyFavorites    = "favorites"
	keyNotes        = "city_notes"
	keyLastSync     = "last_sync"
	keyUserLocation = "user_location"
)

var allKeys = []string{keyWeatherCache, keyFavorites, keyNotes, keyLastSync, keyUserLocation}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store persists the dashboard's domains in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at dsn. Tests pass
// ":memory:".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Single writer; also keeps ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveWeatherCache overwrites the durable weather cache and stamps the
// last-sync slot with the current time. The two writes are independent:
// either failing is logged and swallowed, never raised.
func (s *Store) SaveWeatherCache(cities map[string]weather.Record) {
	if err := s.set(keyWeatherCache, cities); err != nil {
		log.Printf("storage: failed to save weather cache: %v", err)
	}
	ms := s.now().UnixMilli()
	if err := s.setRaw(keyLastSync, strconv.FormatInt(ms, 10)); err != nil {
		log.Printf("storage: failed to save last sync: %v", err)
	}
}

// LoadWeatherCache returns the persisted cache, or nil when absent or
// malformed. Callers treat nil as "nothing persisted".
func (s *Store) LoadWeatherCache() map[string]weather.Record {
	var cities map[string]weather.Record
	if !s.get(keyWeatherCache, &cities) {
		return nil
	}
	return cities
}

// SaveFavorites overwrites the durable favorites sequence.
func (s *Store) SaveFavorites(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	if err := s.set(keyFavorites, ids); err != nil {
		log.Printf("storage: failed to save favorites: %v", err)
	}
}

// LoadFavorites returns the persisted favorites, defaulting to an
// empty (never nil) sequence.
func (s *Store) LoadFavorites() []string {
	var ids []string
	if !s.get(keyFavorites, &ids) || ids == nil {
		return []string{}
	}
	return ids
}

// SaveNotes overwrites the durable notes mapping.
func (s *Store) SaveNotes(notes map[string]string) {
	if notes == nil {
		notes = map[string]string{}
	}
	if err := s.set(keyNotes, notes); err != nil {
		log.Printf("storage: failed to save notes: %v", err)
	}
}

// LoadNotes returns the persisted notes, defaulting to an empty
// (never nil) mapping.
func (s *Store) LoadNotes() map[string]string {
	var notes map[string]string
	if !s.get(keyNotes, &notes) || notes == nil {
		return map[string]string{}
	}
	return notes
}

// SaveUserLocation overwrites the durable "here" record.
func (s *Store) SaveUserLocation(rec weather.Record) {
	if err := s.set(keyUserLocation, rec); err != nil {
		log.Printf("storage: failed to save user location: %v", err)
	}
}

// LoadUserLocation returns the persisted location record, or nil when
// absent or malformed.
func (s *Store) LoadUserLocation() *weather.Record {
	var rec weather.Record
	if !s.get(keyUserLocation, &rec) {
		return nil
	}
	return &rec
}

// LastSync returns the epoch-millis timestamp of the last weather-cache
// write, and whether one exists.
func (s *Store) LastSync() (int64, bool) {
	raw, ok := s.getRaw(keyLastSync)
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("storage: %v", &weather.CorruptError{Key: keyLastSync, Err: err})
		return 0, false
	}
	return ms, true
}

// ClearAll removes every domain's durable copy. Per-key failures are
// aggregated and logged; the in-memory state is untouched.
func (s *Store) ClearAll() {
	var errs *multierror.Error
	for _, key := range allKeys {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		log.Printf("storage: failed to clear: %v", err)
	}
}

func (s *Store) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.setRaw(key, string(data))
}

func (s *Store) setRaw(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// get unmarshals the value stored under key into out. A malformed
// payload is logged and reported as absence.
func (s *Store) get(key string, out any) bool {
	raw, ok := s.getRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("storage: %v", &weather.CorruptError{Key: key, Err: err})
		return false
	}
	return true
}

func (s *Store) getRaw(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return "", false
	case err != nil:
		log.Printf("storage: failed to read %q: %v", key, err)
		return "", false
	}
	return value, true
}
