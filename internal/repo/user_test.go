package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepo_Create_HashesPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("mario", sqlmock.AnyArg(), "technician").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).
			AddRow(1, "mario", "$2a$10$fakehash", "technician"))

	r := NewUserRepo(db)
	u, err := r.Create(context.Background(), "mario", "s3cret", "technician")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != 1 || u.Username != "mario" || u.Role != "technician" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	r := NewUserRepo(db)
	u, err := r.GetByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_UpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs("admin", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewUserRepo(db)
	if err := r.UpdateRole(context.Background(), 2, "admin"); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBcryptHashRoundTrip(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(h, []byte("s3cret")); err != nil {
		t.Errorf("hash should verify: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(h, []byte("wrong")); err == nil {
		t.Error("wrong password should not verify")
	}
}
