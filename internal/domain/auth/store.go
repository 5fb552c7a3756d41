package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"reviewhub/internal/platform/querier"
)

type AuthUser struct {
	ID           string
	OrgID        string
	Email        string
	PasswordHash string
	Role         string
	EmployeeID   string
}

type Invite struct {
	ID         string
	OrgID      string
	EmployeeID string
	Email      string
	ExpiresAt  time.Time
	Used       bool
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, org_id, email, password_hash, role, COALESCE(employee_id::text, '')
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&user.ID, &user.OrgID, &user.Email, &user.PasswordHash, &user.Role, &user.EmployeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	if err != nil {
		return AuthUser{}, err
	}
	return user, nil
}

func (s *Store) CreateOrganization(ctx context.Context, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "INSERT INTO organizations (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) CreateUser(ctx context.Context, orgID, email, passwordHash, role string, employeeID any) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (org_id, email, password_hash, role, employee_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, orgID, email, passwordHash, role, employeeID).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateInvite inserts the invite row. The composite foreign key on
// (org_id, employee_id) rejects an employee id from another organization.
func (s *Store) CreateInvite(ctx context.Context, orgID, employeeID, email, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO invites (org_id, employee_id, email, token_hash, expires_at)
    VALUES ($1, $2, $3, $4, $5)
  `, orgID, employeeID, email, tokenHash, expires)
	if isForeignKeyViolation(err) || isInvalidID(err) {
		return ErrEmployeeNotFound
	}
	return err
}

func (s *Store) InviteByTokenHash(ctx context.Context, tokenHash string) (Invite, error) {
	var inv Invite
	var usedAt *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT id, org_id, employee_id, email, expires_at, used_at
    FROM invites
    WHERE token_hash = $1
  `, tokenHash).Scan(&inv.ID, &inv.OrgID, &inv.EmployeeID, &inv.Email, &inv.ExpiresAt, &usedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invite{}, ErrInviteInvalid
	}
	if err != nil {
		return Invite{}, err
	}
	inv.Used = usedAt != nil
	return inv, nil
}

func (s *Store) MarkInviteUsed(ctx context.Context, inviteID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE invites SET used_at = now() WHERE id = $1", inviteID)
	return err
}

func (s *Store) CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO password_resets (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) PasswordResetUserID(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT user_id
    FROM password_resets
    WHERE token_hash = $1 AND used = FALSE AND expires_at > now()
  `, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrResetInvalid
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE password_resets SET used = TRUE WHERE token_hash = $1", tokenHash)
	return err
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

// LinkEmployee stamps the employee row with its user account. Scoped to the
// invite's organization so the update can never touch a foreign tenant.
func (s *Store) LinkEmployee(ctx context.Context, orgID, userID, employeeID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE employees SET user_id = $1 WHERE org_id = $2 AND id = $3", userID, orgID, employeeID)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
