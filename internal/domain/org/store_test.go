package org

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestGetOrganizationNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectQuery("FROM organizations").
		WithArgs("org-404").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.Get(context.Background(), "org-404"); !errors.Is(err, ErrOrganizationNotFound) {
		t.Fatalf("expected ErrOrganizationNotFound, got %v", err)
	}
}

func TestCreateDepartmentDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectQuery("INSERT INTO departments").
		WithArgs("org-1", "Engineering").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	if _, err := store.CreateDepartment(context.Background(), "org-1", "Engineering"); !errors.Is(err, ErrDepartmentExists) {
		t.Fatalf("expected ErrDepartmentExists, got %v", err)
	}
}

func TestDeleteDepartmentInUse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("org-1", "dep-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	if err := store.DeleteDepartment(context.Background(), "org-1", "dep-1"); !errors.Is(err, ErrDepartmentInUse) {
		t.Fatalf("expected ErrDepartmentInUse, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteDepartmentNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("org-1", "dep-404").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM departments").
		WithArgs("org-1", "dep-404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.DeleteDepartment(context.Background(), "org-1", "dep-404"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestDeleteDepartmentSucceeds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("org-1", "dep-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM departments").
		WithArgs("org-1", "dep-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := store.DeleteDepartment(context.Background(), "org-1", "dep-1"); err != nil {
		t.Fatalf("DeleteDepartment failed: %v", err)
	}
}
