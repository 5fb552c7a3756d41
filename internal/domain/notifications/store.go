package notifications

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

func (s *Store) CreateNotification(ctx context.Context, orgID, userID, ntype, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (org_id, user_id, type, title, body)
    VALUES ($1, $2, $3, $4, $5)
  `, orgID, userID, ntype, title, body)
	return err
}

func (s *Store) UserEmail(ctx context.Context, orgID, userID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE org_id = $1 AND id = $2", orgID, userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) UserIDForEmployee(ctx context.Context, orgID, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(user_id::text, '')
    FROM employees
    WHERE org_id = $1 AND id = $2
  `, orgID, employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) ListNotifications(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, type, title, body, read, created_at
    FROM notifications
    WHERE org_id = $1 AND user_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, orgID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkRead is a no-op for ids that match nothing, malformed ones included.
func (s *Store) MarkRead(ctx context.Context, orgID, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications
    SET read = TRUE
    WHERE org_id = $1 AND user_id = $2 AND id = $3
  `, orgID, userID, notificationID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
		return nil
	}
	return err
}
