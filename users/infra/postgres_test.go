package infra

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"stock-market-service/users/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestPostgresDirectory_RegisterInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Ana", "Souza", "ana@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	dir := NewPostgresDirectory(db)
	u, err := dir.Register(context.Background(), "Ana", "Souza", "ana@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" || u.APIKey == "" {
		t.Fatalf("expected generated id and api key, got %+v", u)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresDirectory_RegisterTranslatesUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	dir := NewPostgresDirectory(db)
	_, err = dir.Register(context.Background(), "Ana", "Souza", "ana@example.com")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestPostgresDirectory_FindByAPIKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "last_name", "email", "api_key"}).
		AddRow("id-1", "Ana", "Souza", "ana@example.com", "key-1")
	mock.ExpectQuery("SELECT id, name, last_name, email, api_key").
		WithArgs("key-1").
		WillReturnRows(rows)

	dir := NewPostgresDirectory(db)
	u, err := dir.FindByAPIKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("expected user row to be scanned, got %+v", u)
	}
}

func TestPostgresDirectory_FindByAPIKeyNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, last_name, email, api_key").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	dir := NewPostgresDirectory(db)
	_, err = dir.FindByAPIKey(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
