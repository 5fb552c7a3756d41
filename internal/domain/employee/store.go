package employee

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

const employeeColumns = `id, name, title, email, COALESCE(department_id::text, ''), COALESCE(user_id::text, ''), created_at, updated_at`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.Title, &emp.Email, &emp.DepartmentID, &emp.UserID, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) Get(ctx context.Context, orgID, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE org_id = $1 AND id = $2
  `, orgID, employeeID)
	return scanEmployee(row)
}

// List returns employees in creation order. Ranking relies on this order for
// its stable tie-break, so keep it deterministic.
func (s *Store) List(ctx context.Context, orgID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE org_id = $1
    ORDER BY created_at, id
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Title, &emp.Email, &emp.DepartmentID, &emp.UserID, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) Create(ctx context.Context, orgID, name, title, email string, departmentID any) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (org_id, name, title, email, department_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, orgID, name, title, email, departmentID).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrEmailTaken
	}
	if isForeignKeyViolation(err) || isInvalidID(err) {
		return "", ErrDepartmentNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, orgID, employeeID, name, title, email string, departmentID any) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1, title = $2, email = $3, department_id = $4, updated_at = now()
    WHERE org_id = $5 AND id = $6
  `, name, title, email, departmentID, orgID, employeeID)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if isForeignKeyViolation(err) {
		return ErrDepartmentNotFound
	}
	if isInvalidID(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete relies on ON DELETE CASCADE to drop the employee's assignment edges.
func (s *Store) Delete(ctx context.Context, orgID, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE org_id = $1 AND id = $2", orgID, employeeID)
	if isInvalidID(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAssignment inserts the reviewer -> reviewee edge. The composite
// foreign keys on (org_id, employee id) refuse endpoints that belong to
// another organization.
func (s *Store) CreateAssignment(ctx context.Context, orgID, reviewerID, revieweeID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO review_assignments (org_id, reviewer_id, reviewee_id)
    VALUES ($1, $2, $3)
  `, orgID, reviewerID, revieweeID)
	if isUniqueViolation(err) {
		return ErrAssignmentExists
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return ErrNotFound
		case pgerrcode.CheckViolation:
			return ErrSelfAssignment
		}
	}
	return err
}

func (s *Store) DeleteAssignment(ctx context.Context, orgID, reviewerID, revieweeID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM review_assignments
    WHERE org_id = $1 AND reviewer_id = $2 AND reviewee_id = $3
  `, orgID, reviewerID, revieweeID)
	if isInvalidID(err) {
		return ErrAssignmentNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, orgID, reviewerID string) ([]Assignment, error) {
	query := `
    SELECT reviewer_id, reviewee_id, created_at
    FROM review_assignments
    WHERE org_id = $1
  `
	args := []any{orgID}
	if reviewerID != "" {
		query += " AND reviewer_id = $2"
		args = append(args, reviewerID)
	}
	query += " ORDER BY created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var asg Assignment
		if err := rows.Scan(&asg.ReviewerID, &asg.RevieweeID, &asg.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, asg)
	}
	return assignments, rows.Err()
}

func (s *Store) AssignmentExists(ctx context.Context, orgID, reviewerID, revieweeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM review_assignments
    WHERE org_id = $1 AND reviewer_id = $2 AND reviewee_id = $3
  `, orgID, reviewerID, revieweeID).Scan(&count)
	if isInvalidID(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// isInvalidID matches the error Postgres raises when a malformed id fails
// the uuid cast. Callers translate it to their not-found sentinel.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
