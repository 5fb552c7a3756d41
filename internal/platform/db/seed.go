package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/platform/config"
)

// Seed provisions a default organization with an admin account so a fresh
// deployment is usable before any self-signup happens. Every step is
// idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedOrgName) == "" || strings.TrimSpace(cfg.SeedAdminEmail) == "" {
		return nil
	}

	orgID, err := ensureOrganization(ctx, pool, cfg.SeedOrgName)
	if err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO organizations (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE org_id = $1 AND email = $2", orgID, email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if strings.TrimSpace(password) == "" {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (org_id, email, password_hash, role)
    VALUES ($1, $2, $3, $4)
  `, orgID, email, hash, auth.RoleAdmin)
	return err
}
