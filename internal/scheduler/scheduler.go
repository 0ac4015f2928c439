package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skydeck/skydeck/internal/syncer"
)

// Scheduler periodically re-runs the sync policy. The policy gates
// itself on connectivity, cache age, and collection emptiness, so a
// tick while the cache is fresh costs nothing upstream.
type Scheduler struct {
	scheduler *gocron.Scheduler
	policy    *syncer.Policy
	interval  time.Duration
}

// New creates a Scheduler.
func New(policy *syncer.Policy, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		policy:    policy,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running sync check")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		s.policy.Run(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
