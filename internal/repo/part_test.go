package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPartRepo_AdjustQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE parts SET quantity = quantity`).
		WithArgs(-3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(7))

	r := NewPartRepo(db)
	qty, err := r.AdjustQuantity(context.Background(), 1, -3)
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if qty != 7 {
		t.Errorf("quantity: got %d, want 7", qty)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPartRepo_AdjustQuantity_Insufficient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Guarded update matches no row, but the part exists: the delta would go negative.
	mock.ExpectQuery(`UPDATE parts SET quantity = quantity`).
		WithArgs(-100, 1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT 1 FROM parts WHERE id`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	r := NewPartRepo(db)
	if _, err := r.AdjustQuantity(context.Background(), 1, -100); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPartRepo_AdjustQuantity_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE parts SET quantity = quantity`).
		WithArgs(5, 99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT 1 FROM parts WHERE id`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	r := NewPartRepo(db)
	if _, err := r.AdjustQuantity(context.Background(), 99, 5); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPartRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, code`).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	r := NewPartRepo(db)
	p, err := r.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
