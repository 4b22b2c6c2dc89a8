// Package labor tracks work time on work orders as start/pause sessions.
// Elapsed time is a pure function of wall-clock time; nothing ticks in the
// background.
package labor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crucial707/opificio-cmms/internal/metrics"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrAlreadyActive is returned by Start when a running session already
	// exists for the (work order, user) pair.
	ErrAlreadyActive = errors.New("a session is already running for this work order")

	// ErrNoActiveSession is returned by Pause when no running session exists
	// for the (work order, user) pair.
	ErrNoActiveSession = errors.New("no running session for this work order")

	// ErrNotCompletable is returned by Complete when the work order's status
	// does not allow the transition to COMPLETED.
	ErrNotCompletable = errors.New("work order cannot be completed from its current status")
)

// activeSessionIndex is the partial unique index backing the one-active-
// session invariant; a concurrent Start loses with a unique violation on it.
const activeSessionIndex = "idx_labor_sessions_active"

// Timer records labor sessions against work orders.
type Timer struct {
	DB *sql.DB

	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewTimer returns a Timer over the given database handle.
func NewTimer(db *sql.DB) *Timer {
	return &Timer{DB: db}
}

func (t *Timer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

const sessionColumns = "id, work_order_id, user_id, start_time, end_time, duration_minutes, note"

// Start opens a session for the user on the work order. The database's
// partial unique index makes this safe under concurrent calls: the loser
// gets ErrAlreadyActive, same as the pre-check.
func (t *Timer) Start(ctx context.Context, workOrderID, userID int) (*models.LaborSession, error) {
	active, err := t.Active(ctx, workOrderID, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadyActive
	}

	s := &models.LaborSession{}
	var end sql.NullTime
	err = t.DB.QueryRowContext(ctx, `
		INSERT INTO labor_sessions (work_order_id, user_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING `+sessionColumns+`
	`, workOrderID, userID, t.now()).
		Scan(&s.ID, &s.WorkOrderID, &s.UserID, &s.StartTime, &end, &s.DurationMinutes, &s.Note)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == activeSessionIndex {
			return nil, ErrAlreadyActive
		}
		return nil, fmt.Errorf("start session: %w", err)
	}

	metrics.IncLaborSessionsActive()
	return s, nil
}

// Pause closes the user's running session on the work order, recording the
// rounded duration and the optional note.
func (t *Timer) Pause(ctx context.Context, workOrderID, userID int, note string) (*models.LaborSession, error) {
	active, err := t.Active(ctx, workOrderID, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveSession
	}

	now := t.now()
	if err := t.close(ctx, active, now, note); err != nil {
		return nil, err
	}
	return active, nil
}

// Complete closes every running session on the work order (any user) and
// transitions the work order to COMPLETED. Returns the number of sessions
// closed.
func (t *Timer) Complete(ctx context.Context, workOrderID int) (int, error) {
	var status string
	err := t.DB.QueryRowContext(ctx,
		`SELECT status FROM work_orders WHERE id = $1`, workOrderID).Scan(&status)
	if err == sql.ErrNoRows {
		return 0, sql.ErrNoRows
	}
	if err != nil {
		return 0, fmt.Errorf("load work order: %w", err)
	}
	if !models.CanTransition(status, models.StatusCompleted) {
		return 0, ErrNotCompletable
	}

	now := t.now()
	open, err := t.listActive(ctx, workOrderID)
	if err != nil {
		return 0, err
	}
	for i := range open {
		if err := t.close(ctx, &open[i], now, ""); err != nil {
			return 0, err
		}
	}

	_, err = t.DB.ExecContext(ctx,
		`UPDATE work_orders SET status = $1 WHERE id = $2`,
		models.StatusCompleted, workOrderID)
	if err != nil {
		return 0, fmt.Errorf("complete work order: %w", err)
	}
	return len(open), nil
}

// Active returns the user's running session on the work order, or nil.
func (t *Timer) Active(ctx context.Context, workOrderID, userID int) (*models.LaborSession, error) {
	s := &models.LaborSession{}
	var end sql.NullTime
	err := t.DB.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM labor_sessions
		WHERE work_order_id = $1 AND user_id = $2 AND end_time IS NULL
	`, workOrderID, userID).
		Scan(&s.ID, &s.WorkOrderID, &s.UserID, &s.StartTime, &end, &s.DurationMinutes, &s.Note)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return s, nil
}

// Sessions returns all sessions on a work order, oldest first.
func (t *Timer) Sessions(ctx context.Context, workOrderID int) ([]models.LaborSession, error) {
	rows, err := t.DB.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM labor_sessions
		WHERE work_order_id = $1
		ORDER BY start_time ASC, id ASC
	`, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Summary is the accumulated time on a work order. LiveMinutes counts the
// elapsed time of still-running sessions and is never persisted.
type Summary struct {
	RecordedMinutes int `json:"recorded_minutes"`
	ActiveSessions  int `json:"active_sessions"`
	LiveMinutes     int `json:"live_minutes"`
	TotalMinutes    int `json:"total_minutes"`
}

// Total computes the time summary for a work order at the current moment.
func (t *Timer) Total(ctx context.Context, workOrderID int) (Summary, error) {
	sessions, err := t.Sessions(ctx, workOrderID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(sessions, t.now()), nil
}

// Summarize folds a session list into a Summary as of the given instant.
func Summarize(sessions []models.LaborSession, now time.Time) Summary {
	var sum Summary
	for i := range sessions {
		s := &sessions[i]
		if s.Active() {
			sum.ActiveSessions++
			sum.LiveMinutes += int(Elapsed(s, now).Minutes())
			continue
		}
		sum.RecordedMinutes += s.DurationMinutes
	}
	sum.TotalMinutes = sum.RecordedMinutes + sum.LiveMinutes
	return sum
}

// Elapsed returns the running time of an active session as of now. For a
// closed session it returns the recorded interval.
func Elapsed(s *models.LaborSession, now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	d := now.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

func (t *Timer) close(ctx context.Context, s *models.LaborSession, now time.Time, note string) error {
	minutes := models.DurationMinutesBetween(s.StartTime, now)
	_, err := t.DB.ExecContext(ctx, `
		UPDATE labor_sessions
		SET end_time = $1, duration_minutes = $2, note = $3
		WHERE id = $4 AND end_time IS NULL
	`, now, minutes, note, s.ID)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	end := now
	s.EndTime = &end
	s.DurationMinutes = minutes
	s.Note = note
	metrics.DecLaborSessionsActive()
	return nil
}

func (t *Timer) listActive(ctx context.Context, workOrderID int) ([]models.LaborSession, error) {
	rows, err := t.DB.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM labor_sessions
		WHERE work_order_id = $1 AND end_time IS NULL
		ORDER BY id ASC
	`, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows *sql.Rows) ([]models.LaborSession, error) {
	var list []models.LaborSession
	for rows.Next() {
		var s models.LaborSession
		var end sql.NullTime
		if err := rows.Scan(&s.ID, &s.WorkOrderID, &s.UserID, &s.StartTime, &end, &s.DurationMinutes, &s.Note); err != nil {
			return nil, err
		}
		if end.Valid {
			v := end.Time
			s.EndTime = &v
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
