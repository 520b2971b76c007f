package usecase

import (
	"context"
	"time"

	"github.com/partyvault/partyvault/internal/domain"
)

// VaultRepository defines data access for vaults.
type VaultRepository interface {
	Create(ctx context.Context, vault *domain.Vault) error
	GetByID(ctx context.Context, id string) (*domain.Vault, error)
	// GetByIDForUpdate locks the vault row for the duration of the
	// transaction, serializing splits against the same vault.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Vault, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Vault, error)
	SetBaseCurrency(ctx context.Context, id, currencyID string, updatedAt time.Time) error
	SetCommonCurrency(ctx context.Context, id, currencyID string, updatedAt time.Time) error
}

// CurrencyRepository defines data access for vault currencies.
type CurrencyRepository interface {
	Create(ctx context.Context, currency *domain.Currency) error
	GetByID(ctx context.Context, id string) (*domain.Currency, error)
	ListByVault(ctx context.Context, vaultID string) ([]*domain.Currency, error)
	ListByVaultTx(ctx context.Context, tx Transaction, vaultID string) ([]*domain.Currency, error)
	Update(ctx context.Context, currency *domain.Currency) error
}

// HoldingRepository defines data access for holdings ledger entries.
type HoldingRepository interface {
	Create(ctx context.Context, entry *domain.HoldingsEntry) error
	CreateBatch(ctx context.Context, tx Transaction, entries []*domain.HoldingsEntry) error
	// TotalsByCurrency sums unarchived entries per currency and collects the
	// contributing entry ids, inside the split transaction.
	TotalsByCurrency(ctx context.Context, tx Transaction, vaultID string) ([]domain.CurrencyTotal, error)
	// Balances is the read-only variant used outside a split.
	Balances(ctx context.Context, vaultID string) ([]domain.CurrencyTotal, error)
	// Archive marks the given unarchived entries archived and reports how
	// many rows were actually affected.
	Archive(ctx context.Context, tx Transaction, ids []string) (int64, error)
	ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*domain.HoldingsEntry, error)
}

// PermissionRepository defines data access for vault member permissions.
type PermissionRepository interface {
	// Get returns nil without error when the user has no permission row.
	Get(ctx context.Context, vaultID, userID string) (*domain.Permission, error)
	Upsert(ctx context.Context, perm *domain.Permission) error
	ListByVault(ctx context.Context, vaultID string) ([]*domain.Permission, error)
}

// ActivityRepository defines data access for vault activity logs.
type ActivityRepository interface {
	Create(ctx context.Context, log *domain.ActivityLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.ActivityLog) error
	List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.ActivityLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on retryable storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyProcessing is the placeholder stored under a freshly claimed
// key until the owning request writes its final response.
const IdempotencyProcessing = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}
