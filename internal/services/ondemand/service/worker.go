package service

import (
	"context"
	"time"

	"plateful/internal/platform/logger"
)

// Run implements domain.WorkerPort: a ticker loop that sweeps the pending
// backlog and pushes each row through admission, bounded by a semaphore
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("ondemand-worker")
	sem := make(chan struct{}, max(1, s.cfg.Concurrency))
	ticker := time.NewTicker(s.cfg.TickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rows, err := s.storage.SweepBatch(ctx, s.cfg.SweepBatch)
			if err != nil {
				log.Error().Err(err).Msg("sweep batch failed")
				continue
			}
			for i := range rows {
				sem <- struct{}{}
				r := rows[i]
				go func() {
					defer func() { <-sem }()
					if rec := s.admit(ctx, r); rec.Queued {
						log.Debug().
							Str("term", r.Term).
							Str("location_key", r.LocationKey).
							Msg("swept request queued")
					}
				}()
			}
		}
	}
}
