package report

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

const reportColumns = `id, employee_id, month, ranking, improvements, qualities, summary, created_at, updated_at`

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.EmployeeID, &rep.Month, &rep.Ranking, &rep.Improvements, &rep.Qualities, &rep.Summary, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if rep.Improvements == nil {
		rep.Improvements = []string{}
	}
	if rep.Qualities == nil {
		rep.Qualities = []string{}
	}
	return &rep, nil
}

// GetByMonth returns nil (no error) when no report exists for the pair, so
// callers can branch on presence without unwrapping.
func (s *Store) GetByMonth(ctx context.Context, orgID, employeeID string, month Month) (*Report, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+reportColumns+`
    FROM reports
    WHERE org_id = $1 AND employee_id = $2 AND month = $3
  `, orgID, employeeID, month.String())
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Store) GetByID(ctx context.Context, orgID, reportID string) (*Report, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+reportColumns+`
    FROM reports
    WHERE org_id = $1 AND id = $2
  `, orgID, reportID)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Store) ListByEmployee(ctx context.Context, orgID, employeeID string) ([]Report, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+reportColumns+`
    FROM reports
    WHERE org_id = $1 AND employee_id = $2
    ORDER BY month DESC
  `, orgID, employeeID)
	if isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.EmployeeID, &rep.Month, &rep.Ranking, &rep.Improvements, &rep.Qualities, &rep.Summary, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		if rep.Improvements == nil {
			rep.Improvements = []string{}
		}
		if rep.Qualities == nil {
			rep.Qualities = []string{}
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Create inserts the report row. The UNIQUE(employee_id, month) constraint,
// not an application-level check, closes the race between concurrent
// generation requests; a duplicate insert surfaces as ErrDuplicateReport.
func (s *Store) Create(ctx context.Context, orgID, employeeID string, month Month, syn Synthesis) (*Report, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO reports (org_id, employee_id, month, ranking, improvements, qualities, summary)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING `+reportColumns+`
  `, orgID, employeeID, month.String(), syn.Ranking, syn.Improvements, syn.Qualities, syn.Summary)
	rep, err := scanReport(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return nil, ErrDuplicateReport
	}
	if isInvalidID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// isInvalidID matches the uuid cast failure Postgres raises for a malformed
// id, so the caller sees absence instead of a 500.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
