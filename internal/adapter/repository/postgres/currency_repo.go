package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

const currencyColumns = `id, vault_id, name, code, rate, created_at, updated_at`

// Create creates a new currency.
func (r *CurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO currencies (id, vault_id, name, code, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		currency.ID,
		currency.VaultID,
		currency.Name,
		currency.Code,
		decimalToNumeric(currency.Rate),
		timeToPgTimestamptz(currency.CreatedAt),
		timeToPgTimestamptz(currency.UpdatedAt),
	)

	return err
}

// GetByID retrieves a currency by ID.
func (r *CurrencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE id = $1`, id)

	return scanCurrency(row)
}

// ListByVault returns a vault's currency directory ordered by descending rate.
func (r *CurrencyRepository) ListByVault(ctx context.Context, vaultID string) ([]*domain.Currency, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+currencyColumns+` FROM currencies
		WHERE vault_id = $1
		ORDER BY rate DESC, code ASC`,
		vaultID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCurrencies(rows)
}

// ListByVaultTx is ListByVault inside an open transaction, so a split reads
// the directory from the same snapshot as the balances.
func (r *CurrencyRepository) ListByVaultTx(ctx context.Context, tx usecase.Transaction, vaultID string) ([]*domain.Currency, error) {
	rows, err := txOf(tx).Query(ctx, `
		SELECT `+currencyColumns+` FROM currencies
		WHERE vault_id = $1
		ORDER BY rate DESC, code ASC`,
		vaultID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCurrencies(rows)
}

// Update updates a currency's name, code and rate.
func (r *CurrencyRepository) Update(ctx context.Context, currency *domain.Currency) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE currencies SET name = $1, code = $2, rate = $3, updated_at = $4
		WHERE id = $5`,
		currency.Name,
		currency.Code,
		decimalToNumeric(currency.Rate),
		timeToPgTimestamptz(currency.UpdatedAt),
		currency.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCurrencyNotFound
	}

	return nil
}

func collectCurrencies(rows pgx.Rows) ([]*domain.Currency, error) {
	var currencies []*domain.Currency

	for rows.Next() {
		currency, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}

		currencies = append(currencies, currency)
	}

	return currencies, rows.Err()
}

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var (
		currency  domain.Currency
		rate      pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&currency.ID,
		&currency.VaultID,
		&currency.Name,
		&currency.Code,
		&rate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCurrencyNotFound
		}

		return nil, err
	}

	currency.Rate = numericToDecimal(rate)
	currency.CreatedAt = createdAt.Time
	currency.UpdatedAt = updatedAt.Time

	return &currency, nil
}
