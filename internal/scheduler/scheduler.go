package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/crucial707/opificio-cmms/internal/scan"
	"github.com/robfig/cron/v3"
)

// runTimeout bounds one scan invocation so a stuck database call cannot pile
// up overlapping runs.
const runTimeout = 5 * time.Minute

// Run starts a background cron that executes the preventive-maintenance scan
// on the given spec (standard 5-field cron). Returns the started cron so the
// caller can Stop it on shutdown; returns nil when spec is empty (disabled)
// or invalid.
func Run(spec string, engine *scan.Engine, batchLimit int) *cron.Cron {
	if spec == "" {
		slog.Info("scheduler: background scan disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		res, err := engine.Run(ctx, batchLimit)
		if err != nil {
			slog.Error("scheduler: scan run failed", "error", err)
			return
		}
		if res.Generated > 0 || len(res.Errors) > 0 {
			slog.Info("scheduler: scan run", "generated", res.Generated, "failed", len(res.Errors))
		}
	})
	if err != nil {
		slog.Error("scheduler: invalid cron spec", "spec", spec, "error", err)
		return nil
	}

	c.Start()
	slog.Info("scheduler: background scan enabled", "spec", spec, "batch_limit", batchLimit)
	return c
}
