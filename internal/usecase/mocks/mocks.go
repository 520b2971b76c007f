package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// MockVaultRepository is a mock implementation of VaultRepository.
type MockVaultRepository struct {
	mu     sync.RWMutex
	vaults map[string]*domain.Vault

	CreateFunc            func(ctx context.Context, vault *domain.Vault) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Vault, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Vault, error)
	ListByOwnerFunc       func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Vault, error)
	SetBaseCurrencyFunc   func(ctx context.Context, id, currencyID string, updatedAt time.Time) error
	SetCommonCurrencyFunc func(ctx context.Context, id, currencyID string, updatedAt time.Time) error

	Calls []string
}

func NewMockVaultRepository() *MockVaultRepository {
	return &MockVaultRepository{vaults: make(map[string]*domain.Vault)}
}

func (m *MockVaultRepository) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockVaultRepository) Create(ctx context.Context, vault *domain.Vault) error {
	m.record("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, vault)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vaults[vault.ID] = vault
	return nil
}

func (m *MockVaultRepository) GetByID(ctx context.Context, id string) (*domain.Vault, error) {
	m.record("GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vaults[id]; ok {
		return v, nil
	}
	return nil, domain.ErrVaultNotFound
}

func (m *MockVaultRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Vault, error) {
	m.record("GetByIDForUpdate")
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockVaultRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Vault, error) {
	m.record("ListByOwner")
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var vaults []*domain.Vault
	for _, v := range m.vaults {
		if v.OwnerID == ownerID {
			vaults = append(vaults, v)
		}
	}
	return vaults, nil
}

func (m *MockVaultRepository) SetBaseCurrency(ctx context.Context, id, currencyID string, updatedAt time.Time) error {
	m.record("SetBaseCurrency")
	if m.SetBaseCurrencyFunc != nil {
		return m.SetBaseCurrencyFunc(ctx, id, currencyID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vaults[id]; ok {
		v.BaseCurrencyID = currencyID
		v.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockVaultRepository) SetCommonCurrency(ctx context.Context, id, currencyID string, updatedAt time.Time) error {
	m.record("SetCommonCurrency")
	if m.SetCommonCurrencyFunc != nil {
		return m.SetCommonCurrencyFunc(ctx, id, currencyID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vaults[id]; ok {
		v.CommonCurrencyID = currencyID
		v.UpdatedAt = updatedAt
	}
	return nil
}

// MockCurrencyRepository is a mock implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency

	CreateFunc        func(ctx context.Context, currency *domain.Currency) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Currency, error)
	ListByVaultFunc   func(ctx context.Context, vaultID string) ([]*domain.Currency, error)
	ListByVaultTxFunc func(ctx context.Context, tx usecase.Transaction, vaultID string) ([]*domain.Currency, error)
	UpdateFunc        func(ctx context.Context, currency *domain.Currency) error
}

func NewMockCurrencyRepository() *MockCurrencyRepository {
	return &MockCurrencyRepository{currencies: make(map[string]*domain.Currency)}
}

func (m *MockCurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies[currency.ID] = currency
	return nil
}

func (m *MockCurrencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.currencies[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCurrencyNotFound
}

func (m *MockCurrencyRepository) ListByVault(ctx context.Context, vaultID string) ([]*domain.Currency, error) {
	if m.ListByVaultFunc != nil {
		return m.ListByVaultFunc(ctx, vaultID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var currencies []*domain.Currency
	for _, c := range m.currencies {
		if c.VaultID == vaultID {
			currencies = append(currencies, c)
		}
	}
	return currencies, nil
}

func (m *MockCurrencyRepository) ListByVaultTx(ctx context.Context, tx usecase.Transaction, vaultID string) ([]*domain.Currency, error) {
	if m.ListByVaultTxFunc != nil {
		return m.ListByVaultTxFunc(ctx, tx, vaultID)
	}
	return m.ListByVault(ctx, vaultID)
}

func (m *MockCurrencyRepository) Update(ctx context.Context, currency *domain.Currency) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies[currency.ID] = currency
	return nil
}

// MockHoldingRepository is a mock implementation of HoldingRepository.
type MockHoldingRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.HoldingsEntry

	CreateFunc           func(ctx context.Context, entry *domain.HoldingsEntry) error
	CreateBatchFunc      func(ctx context.Context, tx usecase.Transaction, entries []*domain.HoldingsEntry) error
	TotalsByCurrencyFunc func(ctx context.Context, tx usecase.Transaction, vaultID string) ([]domain.CurrencyTotal, error)
	BalancesFunc         func(ctx context.Context, vaultID string) ([]domain.CurrencyTotal, error)
	ArchiveFunc          func(ctx context.Context, tx usecase.Transaction, ids []string) (int64, error)
	ListByVaultFunc      func(ctx context.Context, vaultID string, limit, offset int) ([]*domain.HoldingsEntry, error)

	Calls []string
}

func NewMockHoldingRepository() *MockHoldingRepository {
	return &MockHoldingRepository{entries: make(map[string]*domain.HoldingsEntry)}
}

func (m *MockHoldingRepository) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// Seed inserts entries directly into the in-memory ledger.
func (m *MockHoldingRepository) Seed(entries ...*domain.HoldingsEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
}

// Unarchived returns the live entries for assertions.
func (m *MockHoldingRepository) Unarchived() []*domain.HoldingsEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.HoldingsEntry
	for _, e := range m.entries {
		if !e.Archived {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockHoldingRepository) Create(ctx context.Context, entry *domain.HoldingsEntry) error {
	m.record("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockHoldingRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.HoldingsEntry) error {
	m.record("CreateBatch")
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, entries)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return nil
}

func (m *MockHoldingRepository) TotalsByCurrency(ctx context.Context, tx usecase.Transaction, vaultID string) ([]domain.CurrencyTotal, error) {
	m.record("TotalsByCurrency")
	if m.TotalsByCurrencyFunc != nil {
		return m.TotalsByCurrencyFunc(ctx, tx, vaultID)
	}
	return m.sums(vaultID), nil
}

func (m *MockHoldingRepository) Balances(ctx context.Context, vaultID string) ([]domain.CurrencyTotal, error) {
	m.record("Balances")
	if m.BalancesFunc != nil {
		return m.BalancesFunc(ctx, vaultID)
	}
	return m.sums(vaultID), nil
}

func (m *MockHoldingRepository) sums(vaultID string) []domain.CurrencyTotal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index := make(map[string]int)
	var totals []domain.CurrencyTotal
	for _, e := range m.entries {
		if e.VaultID != vaultID || e.Archived {
			continue
		}
		i, ok := index[e.CurrencyID]
		if !ok {
			i = len(totals)
			index[e.CurrencyID] = i
			totals = append(totals, domain.CurrencyTotal{CurrencyID: e.CurrencyID})
		}
		totals[i].Total = totals[i].Total.Add(e.Value)
		totals[i].EntryIDs = append(totals[i].EntryIDs, e.ID)
	}
	return totals
}

func (m *MockHoldingRepository) Archive(ctx context.Context, tx usecase.Transaction, ids []string) (int64, error) {
	m.record("Archive")
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, tx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, id := range ids {
		if e, ok := m.entries[id]; ok && !e.Archived {
			e.Archived = true
			affected++
		}
	}
	return affected, nil
}

func (m *MockHoldingRepository) ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*domain.HoldingsEntry, error) {
	m.record("ListByVault")
	if m.ListByVaultFunc != nil {
		return m.ListByVaultFunc(ctx, vaultID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.HoldingsEntry
	for _, e := range m.entries {
		if e.VaultID == vaultID {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockPermissionRepository is a mock implementation of PermissionRepository.
type MockPermissionRepository struct {
	mu    sync.RWMutex
	perms map[string]*domain.Permission

	GetFunc         func(ctx context.Context, vaultID, userID string) (*domain.Permission, error)
	UpsertFunc      func(ctx context.Context, perm *domain.Permission) error
	ListByVaultFunc func(ctx context.Context, vaultID string) ([]*domain.Permission, error)
}

func NewMockPermissionRepository() *MockPermissionRepository {
	return &MockPermissionRepository{perms: make(map[string]*domain.Permission)}
}

func permKey(vaultID, userID string) string {
	return fmt.Sprintf("%s/%s", vaultID, userID)
}

func (m *MockPermissionRepository) Get(ctx context.Context, vaultID, userID string) (*domain.Permission, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, vaultID, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.perms[permKey(vaultID, userID)], nil
}

func (m *MockPermissionRepository) Upsert(ctx context.Context, perm *domain.Permission) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, perm)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perms[permKey(perm.VaultID, perm.UserID)] = perm
	return nil
}

func (m *MockPermissionRepository) ListByVault(ctx context.Context, vaultID string) ([]*domain.Permission, error) {
	if m.ListByVaultFunc != nil {
		return m.ListByVaultFunc(ctx, vaultID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Permission
	for _, p := range m.perms {
		if p.VaultID == vaultID {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	mu   sync.RWMutex
	logs []*domain.ActivityLog

	CreateFunc   func(ctx context.Context, log *domain.ActivityLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.ActivityLog) error
	ListFunc     func(ctx context.Context, filter domain.ActivityFilter) ([]*domain.ActivityLog, error)
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Create(ctx context.Context, log *domain.ActivityLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockActivityRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.ActivityLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockActivityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.ActivityLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ActivityLog
	for _, l := range m.logs {
		if filter.VaultID != "" && l.VaultID != filter.VaultID {
			continue
		}
		if !filter.Since.IsZero() && !l.CreatedAt.After(filter.Since) {
			continue
		}
		out = append(out, l)
	}
	// Newest first, like the real repository.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Logs returns the recorded activity logs for assertions.
func (m *MockActivityRepository) Logs() []*domain.ActivityLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.ActivityLog(nil), m.logs...)
}

// MockTransaction is a mock transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

// Transactions returns all transactions handed out.
func (m *MockTransactionManager) Transactions() []*MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockTransaction(nil), m.txs...)
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockRetrier runs the operation once, no backoff.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
