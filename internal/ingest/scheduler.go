package ingest

import (
	"context"
	"time"
)

// Scheduler runs a job once at start and then every Interval until its
// context is cancelled. Runs never overlap.
type Scheduler struct {
	Interval time.Duration
	Job      func(context.Context)
}

// Start launches the loop and returns a channel closed after it has stopped.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		// Run immediately once at startup
		s.Job(ctx)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Job(ctx)
			}
		}
	}()
	return done
}
