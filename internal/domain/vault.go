package domain

import (
	"time"
)

// Vault is a party treasury owned by a single user. It holds the currency
// directory and the holdings ledger for that party.
type Vault struct {
	ID               string
	OwnerID          string
	Name             string
	BaseCurrencyID   string
	CommonCurrencyID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BaseCurrency returns the rate == 1 currency from the given directory,
// preferring the vault's designated base currency id.
func (v *Vault) BaseCurrency(currencies []*Currency) (*Currency, error) {
	for _, c := range currencies {
		if v.BaseCurrencyID != "" && c.ID == v.BaseCurrencyID && c.IsBase() {
			return c, nil
		}
	}

	for _, c := range currencies {
		if c.IsBase() {
			return c, nil
		}
	}

	return nil, ErrNoBaseCurrency
}
