package workers

import (
	"context"
	"log"
	"time"
)

// Settler is what the sweep needs from the challenge service.
type Settler interface {
	SettleExpired(ctx context.Context) (int, error)
}

// StartSettlementWorker runs the expired-challenge sweep on a fixed interval
// until the context is cancelled. The sweep is idempotent, so overlapping
// with lazy settlement on reads is harmless.
func StartSettlementWorker(ctx context.Context, settler Settler, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Settlement worker stopped")
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				settled, err := settler.SettleExpired(sweepCtx)
				cancel()
				if err != nil {
					log.Printf("Settlement sweep failed: %v", err)
					continue
				}
				if settled > 0 {
					log.Printf("Settlement sweep: settled %d challenges", settled)
				}
			}
		}
	}()
}
