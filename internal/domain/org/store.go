package org

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"reviewhub/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, orgID string) (*Organization, error) {
	var organization Organization
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(description, ''), created_at, updated_at
    FROM organizations
    WHERE id = $1
  `, orgID).Scan(&organization.ID, &organization.Name, &organization.Description, &organization.CreatedAt, &organization.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &organization, nil
}

func (s *Store) UpdateProfile(ctx context.Context, orgID, name, description string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE organizations
    SET name = $1, description = $2, updated_at = now()
    WHERE id = $3
  `, name, description, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (s *Store) ListDepartments(ctx context.Context, orgID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM departments
    WHERE org_id = $1
    ORDER BY name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var dept Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, orgID, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (org_id, name)
    VALUES ($1, $2)
    RETURNING id
  `, orgID, name).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return "", ErrDepartmentExists
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// DeleteDepartment refuses to remove a department that employees still
// reference.
func (s *Store) DeleteDepartment(ctx context.Context, orgID, departmentID string) error {
	var inUse int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE org_id = $1 AND department_id = $2
  `, orgID, departmentID).Scan(&inUse); err != nil {
		if isInvalidID(err) {
			return ErrDepartmentNotFound
		}
		return err
	}
	if inUse > 0 {
		return ErrDepartmentInUse
	}

	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE org_id = $1 AND id = $2", orgID, departmentID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return ErrDepartmentInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
