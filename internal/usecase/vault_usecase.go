package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/domain"
)

// VaultUseCase handles vault and currency directory business logic.
type VaultUseCase struct {
	vaultRepo      VaultRepository
	currencyRepo   CurrencyRepository
	permissionRepo PermissionRepository
	activityRepo   ActivityRepository
	idGen          IDGenerator
}

// NewVaultUseCase creates a new VaultUseCase.
func NewVaultUseCase(
	vaultRepo VaultRepository,
	currencyRepo CurrencyRepository,
	permissionRepo PermissionRepository,
	activityRepo ActivityRepository,
	idGen IDGenerator,
) *VaultUseCase {
	return &VaultUseCase{
		vaultRepo:      vaultRepo,
		currencyRepo:   currencyRepo,
		permissionRepo: permissionRepo,
		activityRepo:   activityRepo,
		idGen:          idGen,
	}
}

// CreateVaultInput represents input for creating a vault.
type CreateVaultInput struct {
	OwnerID string
	Name    string
}

// CreateVault creates a new vault.
func (uc *VaultUseCase) CreateVault(ctx context.Context, input CreateVaultInput) (*domain.Vault, error) {
	if err := domain.ValidateVaultName(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	vault := &domain.Vault{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.vaultRepo.Create(ctx, vault); err != nil {
		return nil, err
	}

	_ = uc.activityRepo.Create(ctx, &domain.ActivityLog{
		ID:        uc.idGen.Generate(),
		VaultID:   vault.ID,
		ActorID:   input.OwnerID,
		Action:    domain.ActivityVaultCreated,
		Detail:    domain.MarshalDetail(map[string]any{"name": vault.Name}),
		CreatedAt: now,
	})

	return vault, nil
}

// GetVault retrieves a vault, enforcing membership.
func (uc *VaultUseCase) GetVault(ctx context.Context, id, userID string) (*domain.Vault, error) {
	vault, err := uc.vaultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if vault.OwnerID != userID {
		perm, err := uc.permissionRepo.Get(ctx, vault.ID, userID)
		if err != nil {
			return nil, err
		}

		if perm == nil {
			return nil, domain.ErrPermissionDenied
		}
	}

	return vault, nil
}

// ListVaultsInput represents input for listing vaults.
type ListVaultsInput struct {
	OwnerID string
	Limit   int
	Offset  int
}

// ListVaults lists vaults owned by a user.
func (uc *VaultUseCase) ListVaults(ctx context.Context, input ListVaultsInput) ([]*domain.Vault, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.vaultRepo.ListByOwner(ctx, input.OwnerID, limit, offset)
}

// AddCurrencyInput represents input for adding a currency to a vault.
type AddCurrencyInput struct {
	VaultID string
	ActorID string
	Name    string
	Code    string
	Rate    decimal.Decimal
}

// AddCurrency adds a currency to a vault's directory. A rate-one currency
// becomes the vault's base currency; a second one is rejected.
func (uc *VaultUseCase) AddCurrency(ctx context.Context, input AddCurrencyInput) (*domain.Currency, error) {
	vault, err := uc.requireEdit(ctx, input.VaultID, input.ActorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	currency := &domain.Currency{
		ID:        uc.idGen.Generate(),
		VaultID:   vault.ID,
		Name:      input.Name,
		Code:      domain.NormalizeCurrencyCode(input.Code),
		Rate:      input.Rate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := domain.ValidateCurrencyName(currency.Name); err != nil {
		return nil, err
	}

	if err := currency.Validate(); err != nil {
		return nil, err
	}

	if currency.IsBase() {
		existing, err := uc.currencyRepo.ListByVault(ctx, vault.ID)
		if err != nil {
			return nil, err
		}

		for _, c := range existing {
			if c.IsBase() {
				return nil, domain.ErrDuplicateBaseCurrency
			}
		}
	}

	if err := uc.currencyRepo.Create(ctx, currency); err != nil {
		return nil, err
	}

	if currency.IsBase() {
		if err := uc.vaultRepo.SetBaseCurrency(ctx, vault.ID, currency.ID, now); err != nil {
			return nil, err
		}
	}

	_ = uc.activityRepo.Create(ctx, &domain.ActivityLog{
		ID:        uc.idGen.Generate(),
		VaultID:   vault.ID,
		ActorID:   input.ActorID,
		Action:    domain.ActivityCurrencyCreated,
		Detail:    domain.MarshalDetail(map[string]any{"code": currency.Code, "rate": currency.Rate}),
		CreatedAt: now,
	})

	return currency, nil
}

// ListCurrencies returns a vault's currency directory.
func (uc *VaultUseCase) ListCurrencies(ctx context.Context, vaultID string) ([]*domain.Currency, error) {
	return uc.currencyRepo.ListByVault(ctx, vaultID)
}

// SetCommonCurrency designates the vault's display currency.
func (uc *VaultUseCase) SetCommonCurrency(ctx context.Context, vaultID, actorID, currencyID string) error {
	vault, err := uc.requireEdit(ctx, vaultID, actorID)
	if err != nil {
		return err
	}

	currency, err := uc.currencyRepo.GetByID(ctx, currencyID)
	if err != nil {
		return err
	}

	if currency.VaultID != vault.ID {
		return domain.ErrCurrencyNotFound
	}

	return uc.vaultRepo.SetCommonCurrency(ctx, vault.ID, currency.ID, time.Now().UTC())
}

// GrantPermissionInput represents input for granting member permissions.
type GrantPermissionInput struct {
	VaultID  string
	ActorID  string
	UserID   string
	CanSplit bool
	CanEdit  bool
}

// GrantPermission upserts a member's permission flags. Owner only.
func (uc *VaultUseCase) GrantPermission(ctx context.Context, input GrantPermissionInput) error {
	vault, err := uc.vaultRepo.GetByID(ctx, input.VaultID)
	if err != nil {
		return err
	}

	if vault.OwnerID != input.ActorID {
		return domain.ErrPermissionDenied
	}

	now := time.Now().UTC()

	return uc.permissionRepo.Upsert(ctx, &domain.Permission{
		ID:        uc.idGen.Generate(),
		VaultID:   vault.ID,
		UserID:    input.UserID,
		CanSplit:  input.CanSplit,
		CanEdit:   input.CanEdit,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (uc *VaultUseCase) requireEdit(ctx context.Context, vaultID, actorID string) (*domain.Vault, error) {
	vault, err := uc.vaultRepo.GetByID(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	if vault.OwnerID == actorID {
		return vault, nil
	}

	perm, err := uc.permissionRepo.Get(ctx, vault.ID, actorID)
	if err != nil {
		return nil, err
	}

	if !domain.AllowsEdit(vault, actorID, perm) {
		return nil, domain.ErrPermissionDenied
	}

	return vault, nil
}
