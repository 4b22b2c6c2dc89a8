// Package scan turns due preventive schedules into work orders.
package scan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/opificio-cmms/internal/metrics"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
)

// TitlePrefix marks work orders generated automatically from a schedule.
const TitlePrefix = "[PM] "

// DueDateOffsetDays is how long a generated work order has until it is due.
const DueDateOffsetDays = 7

// DefaultBatchLimit bounds the work per invocation when the caller does not
// specify one.
const DefaultBatchLimit = 50

// Result is the outcome of one scan run. Errors holds one message per failed
// schedule; a failure does not abort the rest of the batch.
type Result struct {
	Generated int      `json:"count"`
	Errors    []string `json:"errors,omitempty"`
}

// Engine generates work orders from due preventive schedules. Each schedule
// is processed in its own transaction: the work order insert and the schedule
// advance either both persist or neither does, so a failed schedule is simply
// picked up again on the next run.
type Engine struct {
	DB        *sql.DB
	Schedules *repo.ScheduleRepo

	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewEngine returns an Engine over the given database handle.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{DB: db, Schedules: repo.NewScheduleRepo(db)}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Run selects up to batchLimit schedules with next_due_date <= now and
// generates one OPEN work order per schedule, advancing the schedule past now.
// Re-running immediately after a successful run generates nothing, because
// every processed schedule's next due date moved into the future.
func (e *Engine) Run(ctx context.Context, batchLimit int) (Result, error) {
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}
	now := e.now()

	due, err := e.Schedules.ListDue(ctx, now, batchLimit)
	if err != nil {
		return Result{}, fmt.Errorf("list due schedules: %w", err)
	}
	if len(due) == 0 {
		return Result{}, nil
	}

	var res Result
	for i := range due {
		if err := e.generate(ctx, &due[i], now); err != nil {
			slog.Error("scan: schedule failed", "schedule_id", due[i].ID, "error", err)
			metrics.IncScanErrors()
			res.Errors = append(res.Errors, fmt.Sprintf("schedule %d: %v", due[i].ID, err))
			continue
		}
		metrics.IncScanWorkOrdersGenerated()
		res.Generated++
	}

	slog.Info("scan: run finished", "due", len(due), "generated", res.Generated, "failed", len(res.Errors))
	return res, nil
}

// generate inserts the work order and advances the schedule in one transaction.
func (e *Engine) generate(ctx context.Context, s *models.PreventiveSchedule, now time.Time) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	dueDate := now.AddDate(0, 0, DueDateOffsetDays)
	description := s.Description
	if description == "" {
		description = "Generated from preventive schedule " + s.TaskTitle
	}

	var workOrderID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO work_orders (title, description, asset_id, priority, category, status, origin_schedule_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, TitlePrefix+s.TaskTitle, description, s.AssetID,
		models.PriorityMedium, models.CategoryPreventive, models.StatusOpen,
		s.ID, dueDate,
	).Scan(&workOrderID)
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}

	nextDue := now.AddDate(0, 0, s.EffectiveFrequencyDays())
	_, err = tx.ExecContext(ctx,
		`UPDATE preventive_schedules SET last_run_date = $1, next_due_date = $2 WHERE id = $3`,
		now, nextDue, s.ID,
	)
	if err != nil {
		return fmt.Errorf("advance schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.Info("scan: work order generated",
		"schedule_id", s.ID, "work_order_id", workOrderID, "next_due", nextDue)
	return nil
}
