// Package worker runs the background side of the subscription workflow.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/service"
)

// Config selects which background jobs run.
type Config struct {
	// Notifications receives subscription lifecycle events. Nil skips registration.
	Notifications *service.NotificationService
	// Orphans is the ledger read by the reporter. Nil disables reporting.
	Orphans OrphanLister
	// ReportInterval is the reporter period; zero disables reporting.
	ReportInterval time.Duration
}

// Start wires the event handlers and launches the orphan reporter. The
// reporter stops when ctx is cancelled.
func Start(ctx context.Context, cfg Config, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Notifications != nil {
		cfg.Notifications.RegisterHandlers()
	}
	if cfg.Orphans != nil && cfg.ReportInterval > 0 {
		logger.Info("orphan reporter started", zap.Duration("interval", cfg.ReportInterval))
		startOrphanReporter(ctx, cfg.Orphans, cfg.ReportInterval, logger)
	}
}
