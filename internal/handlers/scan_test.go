package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/opificio-cmms/internal/scan"
)

var scheduleTestCols = []string{"id", "asset_id", "task_title", "description", "frequency_days", "last_run_date", "next_due_date", "created_at"}

func TestScanHandler_RunScan_NothingDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WillReturnRows(sqlmock.NewRows(scheduleTestCols))

	h := &ScanHandler{Engine: scan.NewEngine(db)}

	req := httptest.NewRequest("POST", "/scan/run", nil)
	rr := httptest.NewRecorder()
	h.RunScan(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Count != 0 || out.Message != "no schedules due" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScanHandler_RunScan_Generates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WillReturnRows(sqlmock.NewRows(scheduleTestCols).
			AddRow(7, 3, "Grease bearings", "", 30, nil, due, due))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO work_orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
	mock.ExpectExec(`UPDATE preventive_schedules SET last_run_date`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	engine := scan.NewEngine(db)
	engine.Now = func() time.Time { return now }
	h := &ScanHandler{Engine: engine}

	req := httptest.NewRequest("POST", "/scan/run", nil)
	rr := httptest.NewRecorder()
	h.RunScan(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Success bool     `json:"success"`
		Count   int      `json:"count"`
		Errors  []string `json:"errors"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Count != 1 || len(out.Errors) != 0 {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScanHandler_RunScan_EngineError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, asset_id, task_title`).
		WillReturnError(errors.New("connection refused"))

	h := &ScanHandler{Engine: scan.NewEngine(db)}

	req := httptest.NewRequest("POST", "/scan/run", nil)
	rr := httptest.NewRecorder()
	h.RunScan(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || out.Error != ErrMessageInternal {
		t.Errorf("unexpected response: %+v", out)
	}
}
