package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/opificio-cmms/internal/models"
)

// ScheduleRepo persists preventive maintenance schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

const scheduleColumns = "id, asset_id, task_title, description, frequency_days, last_run_date, next_due_date, created_at"

// Count returns the total number of schedules.
func (r *ScheduleRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM preventive_schedules").Scan(&n)
	return n, err
}

// List returns schedules, most recent first. limit/offset for pagination.
func (r *ScheduleRepo) List(ctx context.Context, limit, offset int) ([]models.PreventiveSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM preventive_schedules
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// ListDue returns up to limit schedules whose next due date has passed,
// oldest due first with id as tiebreaker, so a backlog cannot starve any
// schedule: a row skipped by the limit only sorts earlier on the next run.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]models.PreventiveSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM preventive_schedules
		WHERE next_due_date <= $1
		ORDER BY next_due_date ASC, id ASC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// GetByID returns one schedule by id, or nil if not found.
func (r *ScheduleRepo) GetByID(ctx context.Context, id int) (*models.PreventiveSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM preventive_schedules
		WHERE id = $1
	`
	s, err := scanSchedule(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new schedule and returns it with id set.
func (r *ScheduleRepo) Create(ctx context.Context, assetID int, taskTitle, description string, frequencyDays int, nextDueDate time.Time) (*models.PreventiveSchedule, error) {
	query := `
		INSERT INTO preventive_schedules (asset_id, task_title, description, frequency_days, next_due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + scheduleColumns + `
	`
	return scanSchedule(r.DB.QueryRowContext(ctx, query, assetID, taskTitle, description, frequencyDays, nextDueDate))
}

// Update updates the editable fields for the given id.
func (r *ScheduleRepo) Update(ctx context.Context, id int, taskTitle, description string, frequencyDays int, nextDueDate time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE preventive_schedules SET task_title = $1, description = $2, frequency_days = $3, next_due_date = $4 WHERE id = $5`,
		taskTitle, description, frequencyDays, nextDueDate, id,
	)
	return err
}

// Delete removes a schedule by id. Work orders generated from it keep their
// origin reference nulled out, not deleted.
func (r *ScheduleRepo) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM preventive_schedules WHERE id = $1`, id)
	return err
}

func scanSchedule(row rowScanner) (*models.PreventiveSchedule, error) {
	s := &models.PreventiveSchedule{}
	var lastRun sql.NullTime
	err := row.Scan(&s.ID, &s.AssetID, &s.TaskTitle, &s.Description, &s.FrequencyDays, &lastRun, &s.NextDueDate, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.LastRunDate = timePtr(lastRun)
	return s, nil
}

func collectSchedules(rows *sql.Rows) ([]models.PreventiveSchedule, error) {
	var list []models.PreventiveSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}
