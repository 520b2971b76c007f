package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingsEntry is one ledger line in a vault. The current balance of a
// currency is the sum of Value over all entries with Archived == false.
// Consumed entries are never deleted; a split marks them archived and inserts
// new entries for whatever the vault retains.
type HoldingsEntry struct {
	ID         string
	VaultID    string
	CurrencyID string
	Value      decimal.Decimal
	Archived   bool
	ChangeBy   *string
	CreatedAt  time.Time
}

// CurrencyTotal is the unarchived balance of one currency together with the
// ids of the entries that produced it.
type CurrencyTotal struct {
	CurrencyID string
	Total      decimal.Decimal
	EntryIDs   []string
}
