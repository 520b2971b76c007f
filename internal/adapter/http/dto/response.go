package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// VaultResponse represents a vault in API responses.
type VaultResponse struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Name             string    `json:"name"`
	BaseCurrencyID   string    `json:"base_currency_id,omitempty"`
	CommonCurrencyID string    `json:"common_currency_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VaultFromDomain converts a domain vault to a response.
func VaultFromDomain(v *domain.Vault) *VaultResponse {
	return &VaultResponse{
		ID:               v.ID,
		OwnerID:          v.OwnerID,
		Name:             v.Name,
		BaseCurrencyID:   v.BaseCurrencyID,
		CommonCurrencyID: v.CommonCurrencyID,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

// VaultsFromDomain converts domain vaults to responses.
func VaultsFromDomain(vaults []*domain.Vault) []*VaultResponse {
	result := make([]*VaultResponse, len(vaults))
	for i, v := range vaults {
		result[i] = VaultFromDomain(v)
	}
	return result
}

// CurrencyResponse represents a currency in API responses.
type CurrencyResponse struct {
	ID        string          `json:"id"`
	VaultID   string          `json:"vault_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Rate      decimal.Decimal `json:"rate"`
	IsBase    bool            `json:"is_base"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CurrencyFromDomain converts a domain currency to a response.
func CurrencyFromDomain(c *domain.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		ID:        c.ID,
		VaultID:   c.VaultID,
		Name:      c.Name,
		Code:      c.Code,
		Rate:      c.Rate,
		IsBase:    c.IsBase(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CurrenciesFromDomain converts domain currencies to responses.
func CurrenciesFromDomain(currencies []*domain.Currency) []*CurrencyResponse {
	result := make([]*CurrencyResponse, len(currencies))
	for i, c := range currencies {
		result[i] = CurrencyFromDomain(c)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID         string          `json:"id"`
	VaultID    string          `json:"vault_id"`
	CurrencyID string          `json:"currency_id"`
	Value      decimal.Decimal `json:"value"`
	Archived   bool            `json:"archived"`
	ChangeBy   *string         `json:"change_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.HoldingsEntry) *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		VaultID:    e.VaultID,
		CurrencyID: e.CurrencyID,
		Value:      e.Value,
		Archived:   e.Archived,
		ChangeBy:   e.ChangeBy,
		CreatedAt:  e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.HoldingsEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse is one per-currency unarchived total.
type BalanceResponse struct {
	CurrencyID string          `json:"currency_id"`
	Total      decimal.Decimal `json:"total"`
	EntryCount int             `json:"entry_count"`
}

// BalancesFromDomain converts currency totals to responses.
func BalancesFromDomain(totals []domain.CurrencyTotal) []*BalanceResponse {
	result := make([]*BalanceResponse, len(totals))
	for i, t := range totals {
		result[i] = &BalanceResponse{
			CurrencyID: t.CurrencyID,
			Total:      t.Total,
			EntryCount: len(t.EntryIDs),
		}
	}
	return result
}

// SplitCurrencyResponse is one per-currency line of a split result.
type SplitCurrencyResponse struct {
	CurrencyID    string           `json:"currency_id"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	Shares        int              `json:"shares"`
	ShareAmount   decimal.Decimal  `json:"share_amount"`
	Remainder     *decimal.Decimal `json:"remainder,omitempty"`
	ArchivedCount int              `json:"archived_count"`
	CreatedCount  int              `json:"created_count"`
}

// SplitData is the payload of a successful split.
type SplitData struct {
	Mode           string                   `json:"mode"`
	Shares         int                      `json:"shares"`
	ByCurrency     []*SplitCurrencyResponse `json:"by_currency"`
	BaseCurrencyID string                   `json:"base_currency_id,omitempty"`
	TotalBase      *decimal.Decimal         `json:"total_base,omitempty"`
	ShareBase      *decimal.Decimal         `json:"share_base,omitempty"`
	RemainderBase  *decimal.Decimal         `json:"remainder_base,omitempty"`
	ArchivedCount  int                      `json:"archived_count"`
	CreatedCount   int                      `json:"created_count"`
}

// SplitEnvelope wraps the split result so the caller always gets an explicit
// ok flag with either data or an error message, never both.
type SplitEnvelope struct {
	OK    bool       `json:"ok"`
	Error *string    `json:"error"`
	Data  *SplitData `json:"data"`
}

// SplitSuccess builds the success envelope from a use case output.
func SplitSuccess(out *usecase.SplitOutput) SplitEnvelope {
	data := &SplitData{
		Mode:          out.Mode.String(),
		Shares:        out.Shares,
		ByCurrency:    make([]*SplitCurrencyResponse, 0, len(out.ByCurrency)),
		ArchivedCount: out.ArchivedCount,
		CreatedCount:  out.CreatedCount,
	}

	perCurrency := out.Mode == domain.SplitPerCurrency

	for _, c := range out.ByCurrency {
		line := &SplitCurrencyResponse{
			CurrencyID:    c.CurrencyID,
			Shares:        c.Shares,
			ShareAmount:   c.ShareAmount,
			ArchivedCount: c.ArchivedCount,
			CreatedCount:  c.CreatedCount,
		}

		if perCurrency {
			total := c.Total
			remainder := c.Remainder
			line.Total = &total
			line.Remainder = &remainder
		} else if !c.Remainder.IsZero() {
			remainder := c.Remainder
			line.Remainder = &remainder
		}

		data.ByCurrency = append(data.ByCurrency, line)
	}

	if !perCurrency {
		data.BaseCurrencyID = out.BaseCurrencyID
		totalBase := out.TotalBase
		shareBase := out.ShareBase
		remainderBase := out.RemainderBase
		data.TotalBase = &totalBase
		data.ShareBase = &shareBase
		data.RemainderBase = &remainderBase
	}

	return SplitEnvelope{OK: true, Data: data}
}

// SplitFailure builds the failure envelope.
func SplitFailure(message string) SplitEnvelope {
	return SplitEnvelope{OK: false, Error: &message}
}

// PermissionResponse represents a member permission in API responses.
type PermissionResponse struct {
	VaultID  string `json:"vault_id"`
	UserID   string `json:"user_id"`
	CanSplit bool   `json:"can_split"`
	CanEdit  bool   `json:"can_edit"`
}

// PermissionFromDomain converts a domain permission to a response.
func PermissionFromDomain(p *domain.Permission) *PermissionResponse {
	return &PermissionResponse{
		VaultID:  p.VaultID,
		UserID:   p.UserID,
		CanSplit: p.CanSplit,
		CanEdit:  p.CanEdit,
	}
}

// ActivityResponse represents an activity log row in API responses.
type ActivityResponse struct {
	ID        string      `json:"id"`
	VaultID   string      `json:"vault_id"`
	ActorID   string      `json:"actor_id"`
	Action    string      `json:"action"`
	Detail    domain.JSON `json:"detail,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ActivitiesFromDomain converts activity logs to responses.
func ActivitiesFromDomain(logs []*domain.ActivityLog) []*ActivityResponse {
	result := make([]*ActivityResponse, len(logs))
	for i, l := range logs {
		result[i] = &ActivityResponse{
			ID:        l.ID,
			VaultID:   l.VaultID,
			ActorID:   l.ActorID,
			Action:    string(l.Action),
			Detail:    l.Detail,
			CreatedAt: l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
