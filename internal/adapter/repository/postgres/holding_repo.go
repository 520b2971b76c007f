package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// HoldingRepository implements usecase.HoldingRepository.
type HoldingRepository struct {
	pool *pgxpool.Pool
}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

const holdingColumns = `id, vault_id, currency_id, value, archived, change_by, created_at`

// Create appends one ledger entry.
func (r *HoldingRepository) Create(ctx context.Context, entry *domain.HoldingsEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO holdings_entries (id, vault_id, currency_id, value, archived, change_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID,
		entry.VaultID,
		entry.CurrencyID,
		decimalToNumeric(entry.Value),
		entry.Archived,
		textOrNil(entry.ChangeBy),
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// CreateBatch inserts the retained entries of a split in one round trip.
func (r *HoldingRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.HoldingsEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, entry := range entries {
		batch.Queue(`
			INSERT INTO holdings_entries (id, vault_id, currency_id, value, archived, change_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.ID,
			entry.VaultID,
			entry.CurrencyID,
			decimalToNumeric(entry.Value),
			entry.Archived,
			textOrNil(entry.ChangeBy),
			timeToPgTimestamptz(entry.CreatedAt),
		)
	}

	results := txOf(tx).SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// TotalsByCurrency aggregates unarchived entries per currency inside an open
// transaction, carrying the contributing entry ids so the caller can archive
// exactly what it summed.
func (r *HoldingRepository) TotalsByCurrency(ctx context.Context, tx usecase.Transaction, vaultID string) ([]domain.CurrencyTotal, error) {
	rows, err := txOf(tx).Query(ctx, `
		SELECT currency_id, SUM(value), ARRAY_AGG(id ORDER BY created_at)
		FROM holdings_entries
		WHERE vault_id = $1 AND archived = false
		GROUP BY currency_id
		ORDER BY currency_id`,
		vaultID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTotals(rows)
}

// Balances is the read-only variant of TotalsByCurrency used outside splits.
func (r *HoldingRepository) Balances(ctx context.Context, vaultID string) ([]domain.CurrencyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT currency_id, SUM(value), ARRAY_AGG(id ORDER BY created_at)
		FROM holdings_entries
		WHERE vault_id = $1 AND archived = false
		GROUP BY currency_id
		ORDER BY currency_id`,
		vaultID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTotals(rows)
}

// Archive marks the given unarchived entries archived. The affected count
// lets the caller detect rows consumed by a concurrent split.
func (r *HoldingRepository) Archive(ctx context.Context, tx usecase.Transaction, ids []string) (int64, error) {
	tag, err := txOf(tx).Exec(ctx, `
		UPDATE holdings_entries SET archived = true
		WHERE id = ANY($1) AND archived = false`,
		ids,
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ListByVault lists a vault's ledger entries, newest first.
func (r *HoldingRepository) ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*domain.HoldingsEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+holdingColumns+` FROM holdings_entries
		WHERE vault_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		vaultID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.HoldingsEntry

	for rows.Next() {
		entry, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func collectTotals(rows pgx.Rows) ([]domain.CurrencyTotal, error) {
	var totals []domain.CurrencyTotal

	for rows.Next() {
		var (
			total domain.CurrencyTotal
			sum   pgtype.Numeric
		)

		if err := rows.Scan(&total.CurrencyID, &sum, &total.EntryIDs); err != nil {
			return nil, err
		}

		total.Total = numericToDecimal(sum)
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

func scanHolding(row pgx.Row) (*domain.HoldingsEntry, error) {
	var (
		entry     domain.HoldingsEntry
		value     pgtype.Numeric
		changeBy  pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.VaultID,
		&entry.CurrencyID,
		&value,
		&entry.Archived,
		&changeBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Value = numericToDecimal(value)
	entry.ChangeBy = textToPtr(changeBy)
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
