package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestCreateInviteForeignEmployee(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectExec("INSERT INTO invites").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	err = store.CreateInvite(context.Background(), "org-a", "emp-from-org-b", "bob@example.com", "hash", time.Now().Add(time.Hour))
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLinkEmployeeScopedToOrganization(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectExec("UPDATE employees SET user_id").
		WithArgs("user-1", "org-a", "emp-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.LinkEmployee(context.Background(), "org-a", "user-1", "emp-1"); err != nil {
		t.Fatalf("LinkEmployee failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
