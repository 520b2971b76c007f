package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a vault-scoped denomination. Rate is expressed as units of the
// vault's base currency per one unit of this currency; the base currency
// itself has rate == 1 and a vault may have at most one such currency.
type Currency struct {
	ID        string
	VaultID   string
	Name      string
	Code      string
	Rate      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBase reports whether this currency is the vault's base (rate == 1).
func (c *Currency) IsBase() bool {
	return c.Rate.Equal(decimal.NewFromInt(1))
}

// Validate checks the currency fields.
func (c *Currency) Validate() error {
	if err := ValidateCurrencyCode(c.Code); err != nil {
		return err
	}

	if !c.Rate.IsPositive() {
		return ErrInvalidCurrencyRate
	}

	return nil
}

// NormalizeCurrencyCode uppercases a display code and strips all whitespace.
func NormalizeCurrencyCode(code string) string {
	code = strings.ToUpper(code)

	return strings.Join(strings.Fields(code), "")
}
