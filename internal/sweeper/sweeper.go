// Package sweeper permanently removes tombstoned messages once they age out.
// Deleting a message only hides it from the live conversation; the versioned
// record stays behind so edits and deletes remain auditable for a while. The
// sweeper walks those versions on a cron schedule and purges the ones older
// than the configured period.
package sweeper

import (
	"context"
	"time"

	"github.com/adhocore/gronx"

	"clinichat/pkg/logger"
	"clinichat/pkg/store"
)

const defaultCron = "0 2 * * *"

// Start launches the sweep scheduler. An invalid cron expression is logged
// and the sweeper stays idle rather than failing startup.
func Start(ctx context.Context, cronExpr string, period time.Duration) {
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("sweep_invalid_cron", "cron", cronExpr)
		return
	}
	logger.Info("sweep_enabled", "cron", cronExpr, "period", period.String())
	go runScheduler(ctx, cronExpr, period)
}

// runScheduler computes the next tick for the cron expression and sleeps
// until that time.
func runScheduler(ctx context.Context, cronExpr string, period time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweep_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			RunOnce(period)
			// avoid a tight loop when the tick is already due
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			RunOnce(period)
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		}
	}
}

// RunOnce purges tombstoned message versions older than period. Exposed so
// tests and admin triggers can force a sweep without waiting on cron.
func RunOnce(period time.Duration) {
	cutoff := time.Now().Add(-period).UnixNano()
	n, err := store.PurgeDeleted(cutoff)
	if err != nil {
		logger.Error("sweep_run_error", "error", err)
		return
	}
	if n > 0 {
		logger.Info("sweep_purged", "count", n)
	}
}
