// Package scheduler drives pipeline runs in daemon mode.
package scheduler

import (
	"context"
	"time"

	"TrackerPipeline/internal/ports"
)

// Daily runs the job immediately on start, then once per interval. The
// pipeline is designed around one run a day; the interval is configurable
// for tests only.
type Daily struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*Daily)(nil)

// NewDaily builds a scheduler ticking every 24 hours.
func NewDaily() *Daily {
	return &Daily{interval: 24 * time.Hour}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (d *Daily) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (d *Daily) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}
