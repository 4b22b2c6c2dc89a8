package scan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const scheduleCols = "id, asset_id, task_title, description, frequency_days, last_run_date, next_due_date, created_at"

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(scheduleCols, ", "))
}

func newTestEngine(t *testing.T, now time.Time) (*Engine, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	e := NewEngine(db)
	e.Now = func() time.Time { return now }
	return e, mock, func() { db.Close() }
}

func TestEngine_Run_GeneratesAndAdvances(t *testing.T) {
	// The worked example: frequency 30 days, due 2024-01-01, scanned 2024-01-15.
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	oldDue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created := oldDue.AddDate(0, -1, 0)

	e, mock, closeDB := newTestEngine(t, now)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WithArgs(now, DefaultBatchLimit).
		WillReturnRows(scheduleRows().
			AddRow(7, 3, "Grease bearings", "Monthly greasing", 30, nil, oldDue, created))

	wantWODue := now.AddDate(0, 0, DueDateOffsetDays) // 2024-01-22
	wantNextDue := now.AddDate(0, 0, 30)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO work_orders`).
		WithArgs(TitlePrefix+"Grease bearings", "Monthly greasing", 3,
			"MEDIUM", "PREVENTIVE", "OPEN", 7, wantWODue).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
	mock.ExpectExec(`UPDATE preventive_schedules SET last_run_date`).
		WithArgs(now, wantNextDue, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := e.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Generated != 1 {
		t.Errorf("generated: got %d, want 1", res.Generated)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngine_Run_NothingDue(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	e, mock, closeDB := newTestEngine(t, now)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WithArgs(now, 10).
		WillReturnRows(scheduleRows())

	res, err := e.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Generated != 0 || len(res.Errors) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngine_Run_PartialFailureIsolation(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -1)

	e, mock, closeDB := newTestEngine(t, now)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WithArgs(now, DefaultBatchLimit).
		WillReturnRows(scheduleRows().
			AddRow(1, 99, "Broken one", "", 7, nil, due, due).
			AddRow(2, 5, "Healthy one", "Weekly check", 7, nil, due, due))

	// Schedule 1: insert fails, whole unit rolls back.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO work_orders`).
		WillReturnError(errors.New("fk violation: asset 99 does not exist"))
	mock.ExpectRollback()

	// Schedule 2: proceeds normally.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO work_orders`).
		WithArgs(TitlePrefix+"Healthy one", "Weekly check", 5,
			"MEDIUM", "PREVENTIVE", "OPEN", 2, now.AddDate(0, 0, DueDateOffsetDays)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`UPDATE preventive_schedules SET last_run_date`).
		WithArgs(now, now.AddDate(0, 0, 7), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := e.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Generated != 1 {
		t.Errorf("generated: got %d, want 1", res.Generated)
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "schedule 1:") {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngine_Run_InvalidFrequencyFallsBack(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -3)

	e, mock, closeDB := newTestEngine(t, now)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WithArgs(now, DefaultBatchLimit).
		WillReturnRows(scheduleRows().
			AddRow(4, 1, "Bad cadence", "", 0, nil, due, due))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO work_orders`).
		WithArgs(TitlePrefix+"Bad cadence", "Generated from preventive schedule Bad cadence", 1,
			"MEDIUM", "PREVENTIVE", "OPEN", 4, now.AddDate(0, 0, DueDateOffsetDays)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))
	// A zero frequency must advance by the 30-day default, never by zero.
	mock.ExpectExec(`UPDATE preventive_schedules SET last_run_date`).
		WithArgs(now, now.AddDate(0, 0, 30), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := e.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Generated != 1 {
		t.Errorf("generated: got %d, want 1", res.Generated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngine_Run_ListError(t *testing.T) {
	now := time.Now()
	e, mock, closeDB := newTestEngine(t, now)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WillReturnError(errors.New("connection refused"))

	if _, err := e.Run(context.Background(), 0); err == nil {
		t.Fatal("expected error when the due query fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
