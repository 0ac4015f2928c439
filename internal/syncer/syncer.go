// Package syncer decides when the weather collection is refreshed from
// upstream. The upstream is quota-constrained, so the automatic path
// is deliberately conservative.
package syncer

import (
	"context"
	"log"
	"net"
	"time"

	"github.com/skydeck/skydeck/internal/state"
	"github.com/skydeck/skydeck/internal/weather"
)

// BatchFetcher fetches many places sequentially, skipping failures.
type BatchFetcher interface {
	FetchMany(ctx context.Context, places []weather.Place) []weather.Record
}

// MetaStore exposes the last-sync timestamp.
type MetaStore interface {
	LastSync() (int64, bool)
}

// OnlineFunc reports current connectivity.
type OnlineFunc func() bool

// Policy orchestrates startup hydration and gated refresh across the
// four containers.
type Policy struct {
	weather   *state.Weather
	favorites *state.Favorites
	notes     *state.Notes
	location  *state.Location

	meta   MetaStore
	gw     BatchFetcher
	online OnlineFunc

	defaults []weather.Place
	maxAge   time.Duration

	now func() time.Time
}

// New creates a sync policy. maxAge is the freshness threshold gating
// the automatic startup fetch.
func New(
	w *state.Weather,
	f *state.Favorites,
	n *state.Notes,
	l *state.Location,
	meta MetaStore,
	gw BatchFetcher,
	online OnlineFunc,
	defaults []weather.Place,
	maxAge time.Duration,
) *Policy {
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &Policy{
		weather:   w,
		favorites: f,
		notes:     n,
		location:  l,
		meta:      meta,
		gw:        gw,
		online:    online,
		defaults:  defaults,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// Run hydrates all four containers and then fetches the default place
// list only when connectivity is present, the last sync is older than
// the freshness threshold, and the collection is empty. All three
// conditions must hold; anything less would burn upstream quota on
// every start. A failed batch leaves the app hydrated and usable
// offline — startup never aborts.
func (p *Policy) Run(ctx context.Context) {
	p.weather.Hydrate()
	p.favorites.Hydrate()
	p.notes.Hydrate()
	p.location.Hydrate()

	if !p.online() {
		log.Println("syncer: offline; serving cached data only")
		return
	}
	if !p.stale() {
		log.Println("syncer: cache is fresh; skipping fetch")
		return
	}
	if p.weather.Len() > 0 {
		log.Println("syncer: collection already populated; skipping fetch")
		return
	}

	log.Printf("syncer: fetching %d default places", len(p.defaults))
	records := p.gw.FetchMany(ctx, p.defaults)
	if len(records) == 0 {
		log.Println("syncer: initial fetch produced no records; staying on cached data")
		return
	}
	p.weather.BulkUpsert(records)
}

// RefreshAll re-fetches every tracked place by name and upserts the
// results, bypassing the age and emptiness gates. It still requires
// connectivity; confirmation of the quota cost is the caller's job.
func (p *Policy) RefreshAll(ctx context.Context) error {
	if !p.online() {
		return &weather.NetworkError{Op: "refresh all", Detail: "you appear to be offline"}
	}

	current := p.weather.All()
	places := make([]weather.Place, 0, len(current))
	for _, rec := range current {
		places = append(places, rec.Place())
	}

	records := p.gw.FetchMany(ctx, places)
	if len(records) == 0 && len(places) > 0 {
		return &weather.NetworkError{Op: "refresh all"}
	}
	p.weather.BulkUpsert(records)
	return nil
}

// Status reports the last sync timestamp (zero when never synced) and
// current connectivity.
func (p *Policy) Status() (lastSync int64, online bool) {
	ms, _ := p.meta.LastSync()
	return ms, p.online()
}

func (p *Policy) stale() bool {
	last, ok := p.meta.LastSync()
	if !ok {
		return true
	}
	age := p.now().Sub(time.UnixMilli(last))
	return age > p.maxAge
}

// DialProbe returns an OnlineFunc that reports connectivity by opening
// a TCP connection to addr.
func DialProbe(addr string, timeout time.Duration) OnlineFunc {
	return func() bool {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}
