package services

import (
	"context"
	"time"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	"github.com/lingora/lingora/pkg/composables"
	"github.com/lingora/lingora/pkg/metrics"
)

// StagingSweeper evicts expired upload sessions and releases their staged
// blobs. Sweep is idempotent and safe to call concurrently with uploads.
type StagingSweeper struct {
	registry staging.Registry
	blobs    blob.Store
	interval time.Duration
}

func NewStagingSweeper(registry staging.Registry, blobs blob.Store, interval time.Duration) *StagingSweeper {
	return &StagingSweeper{
		registry: registry,
		blobs:    blobs,
		interval: interval,
	}
}

// Sweep removes every expired session and returns how many were evicted.
// A blob that cannot be deleted is logged and skipped; the sweep itself
// still succeeds.
func (s *StagingSweeper) Sweep(ctx context.Context) (int, error) {
	evicted, err := s.registry.SweepExpired(ctx)
	if err != nil {
		return 0, err
	}

	logger := composables.UseLogger(ctx)
	for _, session := range evicted {
		for _, file := range session.Files {
			if err := s.blobs.Delete(ctx, file.BlobRef); err != nil {
				logger.WithError(err).
					WithField("blobRef", file.BlobRef).
					Warn("failed to delete staged blob during sweep")
			}
		}
	}

	if len(evicted) > 0 {
		metrics.SessionsSwept.Add(float64(len(evicted)))
		logger.WithField("count", len(evicted)).Info("swept expired staging sessions")
	}
	return len(evicted), nil
}

// Start runs periodic sweeps until the context is cancelled.
func (s *StagingSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					composables.UseLogger(ctx).WithError(err).Error("staging sweep failed")
				}
			}
		}
	}()
}
