package review

import (
	"context"
	"errors"
	"time"

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

func (s *Store) Get(ctx context.Context, orgID, reviewID string) (*Review, error) {
	var rev Review
	err := s.DB.QueryRow(ctx, `
    SELECT id, author_id, subject_id, content, created_at, updated_at
    FROM reviews
    WHERE org_id = $1 AND id = $2
  `, orgID, reviewID).Scan(&rev.ID, &rev.AuthorID, &rev.SubjectID, &rev.Content, &rev.CreatedAt, &rev.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (s *Store) List(ctx context.Context, orgID, subjectID, authorID string) ([]Review, error) {
	query := `
    SELECT id, author_id, subject_id, content, created_at, updated_at
    FROM reviews
    WHERE org_id = $1
  `
	args := []any{orgID}
	if subjectID != "" {
		args = append(args, subjectID)
		query += " AND subject_id = $2"
	}
	if authorID != "" {
		args = append(args, authorID)
		if len(args) == 2 {
			query += " AND author_id = $2"
		} else {
			query += " AND author_id = $3"
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.AuthorID, &rev.SubjectID, &rev.Content, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (s *Store) Create(ctx context.Context, orgID, authorID, subjectID, content string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO reviews (org_id, author_id, subject_id, content)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, orgID, authorID, subjectID, content).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateContent changes only the review text. Author and subject are
// immutable once written.
func (s *Store) UpdateContent(ctx context.Context, orgID, reviewID, content string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reviews
    SET content = $1, updated_at = now()
    WHERE org_id = $2 AND id = $3
  `, content, orgID, reviewID)
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

func (s *Store) Delete(ctx context.Context, orgID, reviewID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM reviews WHERE org_id = $1 AND id = $2", orgID, reviewID)
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

// TextsForRange collects the review contents written about one employee
// inside [start, end). The synthesizer does not care about ordering; oldest
// first keeps the prompt deterministic.
func (s *Store) TextsForRange(ctx context.Context, orgID, employeeID string, start, end time.Time) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT content
    FROM reviews
    WHERE org_id = $1 AND subject_id = $2 AND created_at >= $3 AND created_at < $4
    ORDER BY created_at
  `, orgID, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		texts = append(texts, content)
	}
	return texts, rows.Err()
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
