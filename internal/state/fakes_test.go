package state

import (
	"context"

	"github.com/skydeck/skydeck/internal/weather"
)

// fakeStore satisfies every container persistence interface and counts
// writes, standing in for the sqlite adapter.
type fakeStore struct {
	cache     map[string]weather.Record
	favorites []string
	notes     map[string]string
	location  *weather.Record

	cacheSaves    int
	favoriteSaves int
	noteSaves     int
	locationSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) SaveWeatherCache(cities map[string]weather.Record) {
	s.cache = cities
	s.cacheSaves++
}

func (s *fakeStore) LoadWeatherCache() map[string]weather.Record { return s.cache }

func (s *fakeStore) SaveFavorites(ids []string) {
	s.favorites = ids
	s.favoriteSaves++
}

func (s *fakeStore) LoadFavorites() []string {
	if s.favorites == nil {
		return []string{}
	}
	return s.favorites
}

func (s *fakeStore) SaveNotes(notes map[string]string) {
	s.notes = notes
	s.noteSaves++
}

func (s *fakeStore) LoadNotes() map[string]string {
	if s.notes == nil {
		return map[string]string{}
	}
	return s.notes
}

func (s *fakeStore) SaveUserLocation(rec weather.Record) {
	s.location = &rec
	s.locationSaves++
}

func (s *fakeStore) LoadUserLocation() *weather.Record { return s.location }

// fakeGateway counts upstream calls and serves canned records.
type fakeGateway struct {
	byName   map[string]weather.Record
	byCoords weather.Record

	nameErr   error
	coordsErr error

	nameCalls   int
	coordsCalls int
}

func (g *fakeGateway) FetchByName(_ context.Context, name string) (weather.Record, error) {
	g.nameCalls++
	if g.nameErr != nil {
		return weather.Record{}, g.nameErr
	}
	rec, ok := g.byName[name]
	if !ok {
		return weather.Record{}, &weather.NotFoundError{What: name}
	}
	return rec, nil
}

func (g *fakeGateway) FetchByCoords(_ context.Context, lat, lon float64) (weather.Record, error) {
	g.coordsCalls++
	if g.coordsErr != nil {
		return weather.Record{}, g.coordsErr
	}
	return g.byCoords, nil
}

// fakeLocator serves fixed coordinates or a fixed error.
type fakeLocator struct {
	lat, lon float64
	err      error
	calls    int
}

func (l *fakeLocator) Locate(context.Context) (float64, float64, error) {
	l.calls++
	if l.err != nil {
		return 0, 0, l.err
	}
	return l.lat, l.lon, nil
}

func record(name, country string) weather.Record {
	return weather.Record{
		ID:      weather.PlaceID(name, country),
		Name:    name,
		Country: country,
	}
}
