package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/domain"
)

const balancesCacheTTL = 30 * time.Second

// balancesCacheKey is shared with the split path, which invalidates it.
func balancesCacheKey(vaultID string) string {
	return "balances:" + vaultID
}

// HoldingUseCase handles holdings ledger business logic outside of splits.
type HoldingUseCase struct {
	vaultRepo      VaultRepository
	currencyRepo   CurrencyRepository
	holdingRepo    HoldingRepository
	permissionRepo PermissionRepository
	activityRepo   ActivityRepository
	idGen          IDGenerator
	cache          Cache
}

// NewHoldingUseCase creates a new HoldingUseCase. The cache may be nil, in
// which case balance reads always hit the database.
func NewHoldingUseCase(
	vaultRepo VaultRepository,
	currencyRepo CurrencyRepository,
	holdingRepo HoldingRepository,
	permissionRepo PermissionRepository,
	activityRepo ActivityRepository,
	idGen IDGenerator,
	cache Cache,
) *HoldingUseCase {
	return &HoldingUseCase{
		vaultRepo:      vaultRepo,
		currencyRepo:   currencyRepo,
		holdingRepo:    holdingRepo,
		permissionRepo: permissionRepo,
		activityRepo:   activityRepo,
		idGen:          idGen,
		cache:          cache,
	}
}

// RecordEntryInput represents input for recording a holdings change.
type RecordEntryInput struct {
	VaultID    string
	ActorID    string
	CurrencyID string
	Value      decimal.Decimal
}

// RecordEntry appends one ledger line. Negative values record spending or
// debt; zero is rejected because it would be pure noise in the ledger.
func (uc *HoldingUseCase) RecordEntry(ctx context.Context, input RecordEntryInput) (*domain.HoldingsEntry, error) {
	if input.Value.IsZero() {
		return nil, domain.ErrZeroValueEntry
	}

	vault, err := uc.vaultRepo.GetByID(ctx, input.VaultID)
	if err != nil {
		return nil, err
	}

	if vault.OwnerID != input.ActorID {
		perm, err := uc.permissionRepo.Get(ctx, vault.ID, input.ActorID)
		if err != nil {
			return nil, err
		}

		if !domain.AllowsEdit(vault, input.ActorID, perm) {
			return nil, domain.ErrPermissionDenied
		}
	}

	currency, err := uc.currencyRepo.GetByID(ctx, input.CurrencyID)
	if err != nil {
		return nil, err
	}

	if currency.VaultID != vault.ID {
		return nil, domain.ErrCurrencyNotFound
	}

	now := time.Now().UTC()
	actorID := input.ActorID

	entry := &domain.HoldingsEntry{
		ID:         uc.idGen.Generate(),
		VaultID:    vault.ID,
		CurrencyID: currency.ID,
		Value:      input.Value,
		ChangeBy:   &actorID,
		CreatedAt:  now,
	}

	if err := uc.holdingRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balancesCacheKey(vault.ID))
	}

	_ = uc.activityRepo.Create(ctx, &domain.ActivityLog{
		ID:        uc.idGen.Generate(),
		VaultID:   vault.ID,
		ActorID:   input.ActorID,
		Action:    domain.ActivityEntryRecorded,
		Detail:    domain.MarshalDetail(map[string]any{"currency_id": currency.ID, "value": input.Value}),
		CreatedAt: now,
	})

	return entry, nil
}

// Balances returns per-currency unarchived totals for a vault.
func (uc *HoldingUseCase) Balances(ctx context.Context, vaultID string) ([]domain.CurrencyTotal, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, balancesCacheKey(vaultID)); err == nil {
			var totals []domain.CurrencyTotal
			if json.Unmarshal(raw, &totals) == nil {
				return totals, nil
			}
		}
	}

	totals, err := uc.holdingRepo.Balances(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(totals); err == nil {
			_ = uc.cache.Set(ctx, balancesCacheKey(vaultID), raw, balancesCacheTTL)
		}
	}

	return totals, nil
}

// ListEntriesInput represents input for listing ledger entries.
type ListEntriesInput struct {
	VaultID string
	Limit   int
	Offset  int
}

// ListEntries lists a vault's ledger entries, newest first.
func (uc *HoldingUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.HoldingsEntry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.holdingRepo.ListByVault(ctx, input.VaultID, limit, offset)
}
