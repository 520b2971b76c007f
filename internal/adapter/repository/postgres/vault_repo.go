package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// VaultRepository implements usecase.VaultRepository.
type VaultRepository struct {
	pool *pgxpool.Pool
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(pool *pgxpool.Pool) *VaultRepository {
	return &VaultRepository{pool: pool}
}

const vaultColumns = `id, owner_id, name, base_currency_id, common_currency_id, created_at, updated_at`

// Create creates a new vault.
func (r *VaultRepository) Create(ctx context.Context, vault *domain.Vault) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vaults (id, owner_id, name, base_currency_id, common_currency_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		vault.ID,
		vault.OwnerID,
		vault.Name,
		textOrNilFromString(vault.BaseCurrencyID),
		textOrNilFromString(vault.CommonCurrencyID),
		timeToPgTimestamptz(vault.CreatedAt),
		timeToPgTimestamptz(vault.UpdatedAt),
	)

	return err
}

// GetByID retrieves a vault by ID.
func (r *VaultRepository) GetByID(ctx context.Context, id string) (*domain.Vault, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vaultColumns+` FROM vaults WHERE id = $1`, id)

	return scanVault(row)
}

// GetByIDForUpdate retrieves a vault by ID with a FOR UPDATE lock. The lock
// serializes splits against the same vault until the transaction ends.
func (r *VaultRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Vault, error) {
	row := txOf(tx).QueryRow(ctx, `SELECT `+vaultColumns+` FROM vaults WHERE id = $1 FOR UPDATE`, id)

	return scanVault(row)
}

// ListByOwner lists vaults owned by a user with pagination.
func (r *VaultRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Vault, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+vaultColumns+` FROM vaults
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		ownerID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vaults []*domain.Vault

	for rows.Next() {
		vault, err := scanVault(rows)
		if err != nil {
			return nil, err
		}

		vaults = append(vaults, vault)
	}

	return vaults, rows.Err()
}

// SetBaseCurrency designates the vault's base currency.
func (r *VaultRepository) SetBaseCurrency(ctx context.Context, id, currencyID string, updatedAt time.Time) error {
	return r.setCurrencyColumn(ctx, `base_currency_id`, id, currencyID, updatedAt)
}

// SetCommonCurrency designates the vault's display currency.
func (r *VaultRepository) SetCommonCurrency(ctx context.Context, id, currencyID string, updatedAt time.Time) error {
	return r.setCurrencyColumn(ctx, `common_currency_id`, id, currencyID, updatedAt)
}

func (r *VaultRepository) setCurrencyColumn(ctx context.Context, column, id, currencyID string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE vaults SET `+column+` = $1, updated_at = $2 WHERE id = $3`,
		currencyID, timeToPgTimestamptz(updatedAt), id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVaultNotFound
	}

	return nil
}

func scanVault(row pgx.Row) (*domain.Vault, error) {
	var (
		vault          domain.Vault
		baseCurrency   pgtype.Text
		commonCurrency pgtype.Text
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&vault.ID,
		&vault.OwnerID,
		&vault.Name,
		&baseCurrency,
		&commonCurrency,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVaultNotFound
		}

		return nil, err
	}

	vault.BaseCurrencyID = textOrEmpty(baseCurrency)
	vault.CommonCurrencyID = textOrEmpty(commonCurrency)
	vault.CreatedAt = createdAt.Time
	vault.UpdatedAt = updatedAt.Time

	return &vault, nil
}
