// Package maintenance runs the cron-scheduled store sweep: it walks the
// thread and message keyspace, publishes store gauges and logs a summary.
// Threads are never expired or deleted here; the sweep only observes.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"careline/pkg/config"
	"careline/pkg/logger"
	"careline/pkg/store"
	"careline/pkg/telemetry"
)

// Start starts the maintenance scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg *config.Config) (context.CancelFunc, error) {
	if !cfg.Maintenance.Enabled {
		logger.Info("maintenance_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Maintenance.Cron
	if cronExpr == "" {
		cronExpr = "0 3 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("maintenance_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid maintenance cron expression: %s", cronExpr)
	}

	logger.Info("maintenance_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured
// cron expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("maintenance_next_tick_failed", "cron", cronExpr, "error", err)
			return
		}
		select {
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		case <-time.After(next.Sub(now)):
		}
		if err := RunOnce(); err != nil {
			logger.Error("maintenance_sweep_failed", "error", err)
		}
	}
}

// RunOnce performs a single sweep. Exposed so operators (and tests) can
// trigger it on demand.
func RunOnce() error {
	start := time.Now()
	threads, msgs, unread, err := sweepCounts()
	if err != nil {
		return err
	}
	stats := store.GetStats()

	telemetry.StoreThreads.Set(float64(threads))
	telemetry.StoreMessages.Set(float64(msgs))
	telemetry.StoreUnread.Set(float64(unread))
	telemetry.StoreDiskBytes.Set(float64(stats.DiskBytes))

	logger.Info("maintenance_sweep_done",
		"threads", threads,
		"messages", msgs,
		"unread", unread,
		"disk_bytes", stats.DiskBytes,
		"wal_bytes", stats.WALBytes,
		"l0_files", stats.L0Files,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func sweepCounts() (threads, msgs, unread int, err error) {
	ths, err := store.ListAllThreads()
	if err != nil {
		return 0, 0, 0, err
	}
	threads = len(ths)
	for _, th := range ths {
		ms, err := store.ListMessages(th.ID)
		if err != nil {
			return 0, 0, 0, err
		}
		msgs += len(ms)
		for _, m := range ms {
			if !m.IsRead {
				unread++
			}
		}
	}
	return threads, msgs, unread, nil
}
