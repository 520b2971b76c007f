package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyvault/partyvault/internal/domain"
)

// PermissionRepository implements usecase.PermissionRepository.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a new PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

const permissionColumns = `id, vault_id, user_id, can_split, can_edit, created_at, updated_at`

// Get returns the member's permission row, or nil when none exists.
func (r *PermissionRepository) Get(ctx context.Context, vaultID, userID string) (*domain.Permission, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+permissionColumns+` FROM permissions
		WHERE vault_id = $1 AND user_id = $2`,
		vaultID, userID,
	)

	perm, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return perm, nil
}

// Upsert inserts or replaces a member's permission flags.
func (r *PermissionRepository) Upsert(ctx context.Context, perm *domain.Permission) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO permissions (id, vault_id, user_id, can_split, can_edit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (vault_id, user_id) DO UPDATE
		SET can_split = EXCLUDED.can_split,
		    can_edit = EXCLUDED.can_edit,
		    updated_at = EXCLUDED.updated_at`,
		perm.ID,
		perm.VaultID,
		perm.UserID,
		perm.CanSplit,
		perm.CanEdit,
		timeToPgTimestamptz(perm.CreatedAt),
		timeToPgTimestamptz(perm.UpdatedAt),
	)

	return err
}

// ListByVault lists all permission rows of a vault.
func (r *PermissionRepository) ListByVault(ctx context.Context, vaultID string) ([]*domain.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+permissionColumns+` FROM permissions
		WHERE vault_id = $1
		ORDER BY created_at ASC`,
		vaultID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*domain.Permission

	for rows.Next() {
		perm, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}

		perms = append(perms, perm)
	}

	return perms, rows.Err()
}

func scanPermission(row pgx.Row) (*domain.Permission, error) {
	var (
		perm      domain.Permission
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&perm.ID,
		&perm.VaultID,
		&perm.UserID,
		&perm.CanSplit,
		&perm.CanEdit,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	perm.CreatedAt = createdAt.Time
	perm.UpdatedAt = updatedAt.Time

	return &perm, nil
}
