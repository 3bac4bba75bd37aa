package booking

import (
	"context"
	"log"
	"time"
)

// Sweeper runs the expiry sweep on a fixed interval.  The sweep itself is
// idempotent, so overlapping runs (manual trigger plus the ticker) are
// harmless.
type Sweeper struct {
	svc      *Service
	interval time.Duration
}

// NewSweeper builds a periodic sweeper.  Intervals below one second are
// clamped to one minute.
func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	if interval < time.Second {
		interval = time.Minute
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.  Sweep
// errors are logged and the loop keeps going; a transient database
// failure must not kill the background worker.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	log.Printf("sweeper: running every %s", w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			n, err := w.svc.SweepExpired(ctx)
			if err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: expired %d reservation(s)", n)
			}
		}
	}
}
