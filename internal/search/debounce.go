// Package search paces search-as-you-type input: rapid keystrokes
// collapse to at most one upstream call per quiet period.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/skydeck/skydeck/internal/weather"
)

// PlaceSearcher is the gateway slice the debouncer schedules against.
type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, query string) []weather.Place
}

// Debouncer schedules one search per quiet period. Each new input
// cancels the pending scheduled call and schedules a fresh one, so
// only the most recent query at the end of a burst is sent. An
// in-flight call is not interrupted; a later delivery simply wins.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer

	gw      PlaceSearcher
	delay   time.Duration
	timeout time.Duration
}

// New creates a debouncer with the given quiet window.
func New(gw PlaceSearcher, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{
		gw:      gw,
		delay:   delay,
		timeout: 10 * time.Second,
	}
}

// Input registers a keystroke's query. After the quiet window elapses
// with no newer input, the query is searched and the results handed to
// deliver on the timer goroutine.
func (d *Debouncer) Input(query string, deliver func([]weather.Place)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		deliver(d.gw.SearchPlaces(ctx, query))
	})
}

// Cancel drops any pending scheduled search.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
