package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SplitMode selects how accumulated holdings are divided.
type SplitMode int

const (
	// SplitPerCurrency divides each currency independently, no conversion.
	SplitPerCurrency SplitMode = iota

	// SplitMergeToBase converts all balances to the base currency, divides
	// the merged total, and re-denominates each share greedily into the
	// largest available units.
	SplitMergeToBase
)

// String returns the wire name of the mode.
func (m SplitMode) String() string {
	switch m {
	case SplitMergeToBase:
		return "base"
	default:
		return "per_currency"
	}
}

// ParseSplitMode parses a wire mode name. The empty string means per-currency.
func ParseSplitMode(s string) (SplitMode, error) {
	switch s {
	case "", "per_currency":
		return SplitPerCurrency, nil
	case "base", "merge":
		return SplitMergeToBase, nil
	default:
		return SplitPerCurrency, fmt.Errorf("unknown split mode %q", s)
	}
}

// residueEpsilon treats sub-denomination residues below 1e-6 base units as zero.
var residueEpsilon = decimal.New(1, -6)

// SplitRequest describes one split operation against a vault.
type SplitRequest struct {
	VaultID          string
	PartyMemberCount int
	KeepPartyShare   bool
	Mode             SplitMode
}

// Shares is the number of recipient shares: one per party member, plus one
// kept by the vault when KeepPartyShare is set.
func (r *SplitRequest) Shares() int {
	shares := r.PartyMemberCount
	if r.KeepPartyShare {
		shares++
	}

	return shares
}

// Validate rejects impossible requests before any data access.
func (r *SplitRequest) Validate() error {
	if r.PartyMemberCount < 0 {
		return ErrInvalidPartyCount
	}

	if r.Shares() <= 0 {
		return ErrNoShares
	}

	return nil
}

// CurrencyShare is the per-currency outcome of a per-currency split.
type CurrencyShare struct {
	CurrencyID  string
	Total       decimal.Decimal
	ShareAmount decimal.Decimal
	Remainder   decimal.Decimal
}

// Payout is one re-denominated line of a merged share, e.g. "6 silver".
type Payout struct {
	CurrencyID string
	Quantity   decimal.Decimal
}

// SplitPlan is the pure arithmetic result of a split, before any ledger
// mutation. Exactly one of PerCurrency or Payouts is populated depending on
// the mode.
type SplitPlan struct {
	Mode           SplitMode
	Shares         int
	KeepPartyShare bool

	// Per-currency mode
	PerCurrency []CurrencyShare

	// Merge mode
	Payouts        []Payout
	BaseCurrencyID string
	TotalBase      decimal.Decimal
	ShareBase      decimal.Decimal
	RemainderBase  decimal.Decimal
}

// ComputeSplit runs the split arithmetic. It never mutates anything and it is
// deterministic: per-currency results are ordered by currency id, merge-mode
// payouts by descending rate.
func ComputeSplit(vault *Vault, req *SplitRequest, totals []CurrencyTotal, currencies []*Currency) (*SplitPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Mode == SplitMergeToBase {
		return computeMergeSplit(vault, req, totals, currencies)
	}

	return computePerCurrencySplit(req, totals)
}

func computePerCurrencySplit(req *SplitRequest, totals []CurrencyTotal) (*SplitPlan, error) {
	shares := decimal.NewFromInt(int64(req.Shares()))

	sorted := make([]CurrencyTotal, len(totals))
	copy(sorted, totals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CurrencyID < sorted[j].CurrencyID })

	plan := &SplitPlan{
		Mode:           SplitPerCurrency,
		Shares:         req.Shares(),
		KeepPartyShare: req.KeepPartyShare,
	}

	for _, t := range sorted {
		// Non-positive balances take no part in the split.
		if !t.Total.IsPositive() {
			continue
		}

		shareAmount := t.Total.Div(shares).Floor()
		remainder := t.Total.Sub(shareAmount.Mul(shares))

		plan.PerCurrency = append(plan.PerCurrency, CurrencyShare{
			CurrencyID:  t.CurrencyID,
			Total:       t.Total,
			ShareAmount: shareAmount,
			Remainder:   remainder,
		})
	}

	return plan, nil
}

func computeMergeSplit(vault *Vault, req *SplitRequest, totals []CurrencyTotal, currencies []*Currency) (*SplitPlan, error) {
	base, err := vault.BaseCurrency(currencies)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Currency, len(currencies))
	for _, c := range currencies {
		byID[c.ID] = c
	}

	// Convert every nonzero balance to base units. A balance in a currency
	// without a usable rate fails the whole operation rather than silently
	// dropping value.
	totalBase := decimal.Zero

	for _, t := range totals {
		if t.Total.IsZero() {
			continue
		}

		c, ok := byID[t.CurrencyID]
		if !ok {
			return nil, fmt.Errorf("%w: currency %s has a balance but no directory entry", ErrCurrencyNotFound, t.CurrencyID)
		}

		if !c.Rate.IsPositive() {
			return nil, fmt.Errorf("%w: currency %s", ErrInvalidCurrencyRate, c.Code)
		}

		totalBase = totalBase.Add(t.Total.Mul(c.Rate))
	}

	shares := decimal.NewFromInt(int64(req.Shares()))
	shareBase := totalBase.Div(shares)

	// Greedy re-denomination, highest value first.
	ordered := make([]*Currency, len(currencies))
	copy(ordered, currencies)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Rate.Equal(ordered[j].Rate) {
			return ordered[i].Rate.GreaterThan(ordered[j].Rate)
		}

		return ordered[i].Code < ordered[j].Code
	})

	plan := &SplitPlan{
		Mode:           SplitMergeToBase,
		Shares:         req.Shares(),
		KeepPartyShare: req.KeepPartyShare,
		BaseCurrencyID: base.ID,
		TotalBase:      totalBase,
		ShareBase:      shareBase,
	}

	remaining := shareBase
	distributed := decimal.Zero

	for _, c := range ordered {
		if !c.Rate.IsPositive() {
			continue
		}

		qty := remaining.Div(c.Rate).Floor()
		if !qty.IsPositive() {
			continue
		}

		value := qty.Mul(c.Rate)
		remaining = remaining.Sub(value)
		distributed = distributed.Add(value)

		plan.Payouts = append(plan.Payouts, Payout{CurrencyID: c.ID, Quantity: qty})
	}

	// Whatever a share cannot express in whole units stays with the vault.
	// Derived from the totals rather than the residue so the plan conserves
	// value exactly: totalBase == shares*distributed + remainderBase.
	remainderBase := totalBase.Sub(distributed.Mul(shares))
	if remainderBase.Abs().LessThan(residueEpsilon) {
		remainderBase = decimal.Zero
	}

	plan.RemainderBase = remainderBase

	return plan, nil
}
