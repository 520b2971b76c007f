package dto

import (
	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// CreateVaultRequest represents a request to create a vault.
type CreateVaultRequest struct {
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateVaultRequest) ToUseCaseInput(ownerID string) usecase.CreateVaultInput {
	return usecase.CreateVaultInput{
		OwnerID: ownerID,
		Name:    r.Name,
	}
}

// AddCurrencyRequest represents a request to add a currency to a vault.
type AddCurrencyRequest struct {
	Name string          `json:"name"`
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// ToUseCaseInput converts to use case input.
func (r *AddCurrencyRequest) ToUseCaseInput(vaultID, actorID string) usecase.AddCurrencyInput {
	return usecase.AddCurrencyInput{
		VaultID: vaultID,
		ActorID: actorID,
		Name:    r.Name,
		Code:    r.Code,
		Rate:    r.Rate,
	}
}

// RecordEntryRequest represents a request to record a holdings change.
type RecordEntryRequest struct {
	CurrencyID string          `json:"currency_id"`
	Value      decimal.Decimal `json:"value"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordEntryRequest) ToUseCaseInput(vaultID, actorID string) usecase.RecordEntryInput {
	return usecase.RecordEntryInput{
		VaultID:    vaultID,
		ActorID:    actorID,
		CurrencyID: r.CurrencyID,
		Value:      r.Value,
	}
}

// SplitRequest represents a request to split a vault's holdings.
type SplitRequest struct {
	PartyMemberCount int    `json:"party_member_count"`
	KeepPartyShare   bool   `json:"keep_party_share"`
	Mode             string `json:"mode"`
}

// ToUseCaseInput converts to use case input. The mode string is parsed here
// so an unknown mode fails before the use case runs.
func (r *SplitRequest) ToUseCaseInput(vaultID, actorID string) (usecase.SplitInput, error) {
	mode, err := domain.ParseSplitMode(r.Mode)
	if err != nil {
		return usecase.SplitInput{}, err
	}

	return usecase.SplitInput{
		VaultID:          vaultID,
		ActorID:          actorID,
		PartyMemberCount: r.PartyMemberCount,
		KeepPartyShare:   r.KeepPartyShare,
		Mode:             mode,
	}, nil
}

// SetCommonCurrencyRequest designates a vault's display currency.
type SetCommonCurrencyRequest struct {
	CurrencyID string `json:"currency_id"`
}

// GrantPermissionRequest represents a request to grant member permissions.
type GrantPermissionRequest struct {
	UserID   string `json:"user_id"`
	CanSplit bool   `json:"can_split"`
	CanEdit  bool   `json:"can_edit"`
}

// ToUseCaseInput converts to use case input.
func (r *GrantPermissionRequest) ToUseCaseInput(vaultID, actorID string) usecase.GrantPermissionInput {
	return usecase.GrantPermissionInput{
		VaultID:  vaultID,
		ActorID:  actorID,
		UserID:   r.UserID,
		CanSplit: r.CanSplit,
		CanEdit:  r.CanEdit,
	}
}
