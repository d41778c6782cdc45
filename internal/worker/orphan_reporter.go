package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
)

const orphanReportLimit = 50

// OrphanLister reads the unresolved part of the orphan ledger.
type OrphanLister interface {
	ListUnresolved(ctx context.Context, limit int) ([]domain.OrphanedSubscription, error)
}

// startOrphanReporter logs unresolved orphaned subscriptions every interval until ctx is cancelled.
func startOrphanReporter(ctx context.Context, lister OrphanLister, interval time.Duration, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ReportOrphans(ctx, lister, logger)
			}
		}
	}()
}

// ReportOrphans logs one warning per unresolved orphan and returns how many were found.
func ReportOrphans(ctx context.Context, lister OrphanLister, logger *zap.Logger) int {
	orphans, err := lister.ListUnresolved(ctx, orphanReportLimit)
	if err != nil {
		logger.Error("list orphaned subscriptions", zap.Error(err))
		return 0
	}
	for _, o := range orphans {
		logger.Warn("unresolved orphaned subscription",
			zap.String("subscription_id", o.SubscriptionID),
			zap.String("email", o.Email),
			zap.String("artist_uri", o.ArtistURI),
			zap.Time("created_at", o.CreatedAt))
	}
	return len(orphans)
}
