package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrcrm/internal/domain/auth"
	"hrcrm/internal/platform/config"
)

// Seed bootstraps the default tenant, the permission catalogue, the built-in
// roles and an initial admin user. Every statement is idempotent so the seed
// can run on each startup.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var tenantID string
	err := pool.QueryRow(ctx, `
    INSERT INTO tenants (name)
    VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, cfg.SeedTenantName).Scan(&tenantID)
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	for _, perm := range auth.DefaultPermissions {
		if _, err := pool.Exec(ctx, `
      INSERT INTO permissions (key) VALUES ($1)
      ON CONFLICT (key) DO NOTHING
    `, perm); err != nil {
			return fmt.Errorf("seed permission %s: %w", perm, err)
		}
	}

	for role, perms := range auth.RolePermissions {
		var roleID string
		err := pool.QueryRow(ctx, `
      INSERT INTO roles (tenant_id, name)
      VALUES ($1, $2)
      ON CONFLICT (tenant_id, name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id
    `, tenantID, role).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
		for _, perm := range perms {
			if _, err := pool.Exec(ctx, `
        INSERT INTO role_permissions (role_id, permission_id)
        SELECT $1, p.id FROM permissions p WHERE p.key = $2
        ON CONFLICT DO NOTHING
      `, roleID, perm); err != nil {
				return fmt.Errorf("seed role permission %s/%s: %w", role, perm, err)
			}
		}
	}

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		slog.Info("seed complete", "tenantId", tenantID, "adminUser", false)
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id, status)
    SELECT $1, $2, $3, r.id, 'active'
    FROM roles r
    WHERE r.tenant_id = $1 AND r.name = $4
    ON CONFLICT (tenant_id, email) DO NOTHING
  `, tenantID, cfg.SeedAdminEmail, hash, auth.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	slog.Info("seed complete", "tenantId", tenantID, "adminUser", true)
	return nil
}
