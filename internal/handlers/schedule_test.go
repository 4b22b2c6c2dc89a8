package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
)

func TestScheduleHandler_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	nextDue := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO preventive_schedules`).
		WithArgs(1, "Grease bearings", "Monthly greasing", 30, nextDue).
		WillReturnRows(sqlmock.NewRows([]string{"id", "asset_id", "task_title", "description", "frequency_days", "last_run_date", "next_due_date", "created_at"}).
			AddRow(1, 1, "Grease bearings", "Monthly greasing", 30, nil, nextDue, now))

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id":       1,
		"task_title":     "Grease bearings",
		"description":    "Monthly greasing",
		"frequency_days": 30,
		"next_due_date":  nextDue.Format(time.RFC3339),
	})
	req := httptest.NewRequest("POST", "/schedules", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateSchedule(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var out models.PreventiveSchedule
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out.ID != 1 || out.FrequencyDays != 30 {
		t.Errorf("unexpected schedule: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleHandler_Create_InvalidFrequencyFallsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	// A non-positive cadence must be stored as the 30-day default.
	mock.ExpectQuery(`INSERT INTO preventive_schedules`).
		WithArgs(1, "Broken cadence", "", models.DefaultFrequencyDays, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "asset_id", "task_title", "description", "frequency_days", "last_run_date", "next_due_date", "created_at"}).
			AddRow(2, 1, "Broken cadence", "", models.DefaultFrequencyDays, nil, now.AddDate(0, 0, 30), now))

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id":       1,
		"task_title":     "Broken cadence",
		"frequency_days": -5,
	})
	req := httptest.NewRequest("POST", "/schedules", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateSchedule(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var out models.PreventiveSchedule
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out.FrequencyDays != models.DefaultFrequencyDays {
		t.Errorf("frequency: got %d, want %d", out.FrequencyDays, models.DefaultFrequencyDays)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleHandler_Create_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{"asset_id": 0, "task_title": ""})
	req := httptest.NewRequest("POST", "/schedules", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateSchedule(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestScheduleHandler_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "asset_id", "task_title", "description", "frequency_days", "last_run_date", "next_due_date", "created_at"}))

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	req := requestWithChiURLParams("GET", "/schedules/99", nil, map[string]string{"id": "99"})
	rr := httptest.NewRecorder()
	h.GetSchedule(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestScheduleHandler_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM preventive_schedules WHERE id`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	req := requestWithChiURLParams("DELETE", "/schedules/1", nil, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.DeleteSchedule(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
