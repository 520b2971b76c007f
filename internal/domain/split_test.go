package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestSplitRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SplitRequest
		wantErr error
	}{
		{
			name: "three members",
			req:  SplitRequest{PartyMemberCount: 3},
		},
		{
			name: "zero members with party share",
			req:  SplitRequest{PartyMemberCount: 0, KeepPartyShare: true},
		},
		{
			name:    "negative members",
			req:     SplitRequest{PartyMemberCount: -1},
			wantErr: ErrInvalidPartyCount,
		},
		{
			name:    "zero shares",
			req:     SplitRequest{PartyMemberCount: 0},
			wantErr: ErrNoShares,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitRequestShares(t *testing.T) {
	req := SplitRequest{PartyMemberCount: 2, KeepPartyShare: true}
	if req.Shares() != 3 {
		t.Errorf("Shares() = %d, want 3", req.Shares())
	}

	req.KeepPartyShare = false
	if req.Shares() != 2 {
		t.Errorf("Shares() = %d, want 2", req.Shares())
	}
}

func TestComputeSplitPerCurrency(t *testing.T) {
	vault := &Vault{ID: "v1"}

	t.Run("scenario gold and silver three ways", func(t *testing.T) {
		req := &SplitRequest{PartyMemberCount: 3, Mode: SplitPerCurrency}
		totals := []CurrencyTotal{
			{CurrencyID: "gold", Total: dec("100")},
			{CurrencyID: "silver", Total: dec("37")},
		}

		plan, err := ComputeSplit(vault, req, totals, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(plan.PerCurrency) != 2 {
			t.Fatalf("expected 2 currency shares, got %d", len(plan.PerCurrency))
		}

		gold := plan.PerCurrency[0]
		if gold.CurrencyID != "gold" || !gold.ShareAmount.Equal(dec("33")) || !gold.Remainder.Equal(dec("1")) {
			t.Errorf("gold = %s share %s remainder %s, want 33 and 1", gold.CurrencyID, gold.ShareAmount, gold.Remainder)
		}

		silver := plan.PerCurrency[1]
		if !silver.ShareAmount.Equal(dec("12")) || !silver.Remainder.Equal(dec("1")) {
			t.Errorf("silver share %s remainder %s, want 12 and 1", silver.ShareAmount, silver.Remainder)
		}
	})

	t.Run("kept party share counts as extra recipient", func(t *testing.T) {
		req := &SplitRequest{PartyMemberCount: 2, KeepPartyShare: true, Mode: SplitPerCurrency}
		totals := []CurrencyTotal{{CurrencyID: "gold", Total: dec("10")}}

		plan, err := ComputeSplit(vault, req, totals, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if plan.Shares != 3 {
			t.Errorf("shares = %d, want 3", plan.Shares)
		}

		gold := plan.PerCurrency[0]
		if !gold.ShareAmount.Equal(dec("3")) || !gold.Remainder.Equal(dec("1")) {
			t.Errorf("share %s remainder %s, want 3 and 1", gold.ShareAmount, gold.Remainder)
		}
	})

	t.Run("fractional totals floor to whole units", func(t *testing.T) {
		req := &SplitRequest{PartyMemberCount: 2, Mode: SplitPerCurrency}
		totals := []CurrencyTotal{{CurrencyID: "gold", Total: dec("7.5")}}

		plan, err := ComputeSplit(vault, req, totals, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		gold := plan.PerCurrency[0]
		if !gold.ShareAmount.Equal(dec("3")) || !gold.Remainder.Equal(dec("1.5")) {
			t.Errorf("share %s remainder %s, want 3 and 1.5", gold.ShareAmount, gold.Remainder)
		}
	})

	t.Run("non-positive balances are skipped", func(t *testing.T) {
		req := &SplitRequest{PartyMemberCount: 2, Mode: SplitPerCurrency}
		totals := []CurrencyTotal{
			{CurrencyID: "gold", Total: dec("0")},
			{CurrencyID: "silver", Total: dec("-4")},
		}

		plan, err := ComputeSplit(vault, req, totals, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(plan.PerCurrency) != 0 {
			t.Errorf("expected no currency shares, got %d", len(plan.PerCurrency))
		}
	})
}

// Conservation: shares*shareAmount + remainder == total, remainder in [0, shares).
func TestPerCurrencySplitConservation(t *testing.T) {
	vault := &Vault{ID: "v1"}

	cases := []struct {
		total  string
		shares int
	}{
		{"100", 3},
		{"37", 3},
		{"7.5", 2},
		{"1", 7},
		{"0.25", 4},
		{"999999.99", 13},
	}

	for _, tc := range cases {
		req := &SplitRequest{PartyMemberCount: tc.shares, Mode: SplitPerCurrency}
		totals := []CurrencyTotal{{CurrencyID: "c", Total: dec(tc.total)}}

		plan, err := ComputeSplit(vault, req, totals, nil)
		if err != nil {
			t.Fatalf("total=%s shares=%d: %v", tc.total, tc.shares, err)
		}

		cs := plan.PerCurrency[0]
		shares := decimal.NewFromInt(int64(tc.shares))

		reassembled := cs.ShareAmount.Mul(shares).Add(cs.Remainder)
		if !reassembled.Equal(cs.Total) {
			t.Errorf("total=%s shares=%d: %s*%s+%s = %s, value not conserved",
				tc.total, tc.shares, cs.ShareAmount, shares, cs.Remainder, reassembled)
		}

		if cs.Remainder.IsNegative() || cs.Remainder.GreaterThanOrEqual(shares) {
			t.Errorf("total=%s shares=%d: remainder %s out of [0, %d)", tc.total, tc.shares, cs.Remainder, tc.shares)
		}

		if !cs.ShareAmount.Equal(cs.Total.Div(shares).Floor()) {
			t.Errorf("total=%s shares=%d: share %s is not floor(total/shares)", tc.total, tc.shares, cs.ShareAmount)
		}
	}
}

func mergeFixture() (*Vault, []*Currency) {
	vault := &Vault{ID: "v1", BaseCurrencyID: "copper"}
	currencies := []*Currency{
		{ID: "copper", VaultID: "v1", Code: "CP", Rate: dec("1")},
		{ID: "silver", VaultID: "v1", Code: "SP", Rate: dec("10")},
		{ID: "gold", VaultID: "v1", Code: "GP", Rate: dec("100")},
	}

	return vault, currencies
}

func TestComputeSplitMergeToBase(t *testing.T) {
	t.Run("greedy re-denomination", func(t *testing.T) {
		vault, currencies := mergeFixture()
		req := &SplitRequest{PartyMemberCount: 2, Mode: SplitMergeToBase}
		totals := []CurrencyTotal{
			{CurrencyID: "copper", Total: dec("5")},
			{CurrencyID: "silver", Total: dec("2")},
			{CurrencyID: "gold", Total: dec("1")},
		}

		plan, err := ComputeSplit(vault, req, totals, currencies)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !plan.TotalBase.Equal(dec("125")) {
			t.Errorf("totalBase = %s, want 125", plan.TotalBase)
		}

		if !plan.ShareBase.Equal(dec("62.5")) {
			t.Errorf("shareBase = %s, want 62.5", plan.ShareBase)
		}

		// 62.5 copper per head = 6 silver + 2 copper, 0.5 left over.
		if len(plan.Payouts) != 2 {
			t.Fatalf("expected 2 payouts, got %d", len(plan.Payouts))
		}

		if plan.Payouts[0].CurrencyID != "silver" || !plan.Payouts[0].Quantity.Equal(dec("6")) {
			t.Errorf("payout[0] = %s x%s, want silver x6", plan.Payouts[0].CurrencyID, plan.Payouts[0].Quantity)
		}

		if plan.Payouts[1].CurrencyID != "copper" || !plan.Payouts[1].Quantity.Equal(dec("2")) {
			t.Errorf("payout[1] = %s x%s, want copper x2", plan.Payouts[1].CurrencyID, plan.Payouts[1].Quantity)
		}

		if !plan.RemainderBase.Equal(dec("1")) {
			t.Errorf("remainderBase = %s, want 1", plan.RemainderBase)
		}

		if plan.BaseCurrencyID != "copper" {
			t.Errorf("baseCurrencyID = %s, want copper", plan.BaseCurrencyID)
		}
	})

	t.Run("missing base currency", func(t *testing.T) {
		vault := &Vault{ID: "v1"}
		currencies := []*Currency{
			{ID: "silver", Code: "SP", Rate: dec("10")},
			{ID: "gold", Code: "GP", Rate: dec("100")},
		}
		req := &SplitRequest{PartyMemberCount: 2, Mode: SplitMergeToBase}
		totals := []CurrencyTotal{{CurrencyID: "gold", Total: dec("1")}}

		_, err := ComputeSplit(vault, req, totals, currencies)
		if !errors.Is(err, ErrNoBaseCurrency) {
			t.Errorf("expected ErrNoBaseCurrency, got %v", err)
		}
	})

	t.Run("balance in unknown currency fails whole split", func(t *testing.T) {
		vault, currencies := mergeFixture()
		req := &SplitRequest{PartyMemberCount: 2, Mode: SplitMergeToBase}
		totals := []CurrencyTotal{
			{CurrencyID: "gold", Total: dec("1")},
			{CurrencyID: "mithril", Total: dec("3")},
		}

		_, err := ComputeSplit(vault, req, totals, currencies)
		if !errors.Is(err, ErrCurrencyNotFound) {
			t.Errorf("expected ErrCurrencyNotFound, got %v", err)
		}
	})
}

// Merge-mode conservation: totalBase == shares*sum(qty_i*rate_i) + remainderBase.
func TestMergeSplitConservation(t *testing.T) {
	vault, currencies := mergeFixture()
	rates := map[string]decimal.Decimal{}
	for _, c := range currencies {
		rates[c.ID] = c.Rate
	}

	cases := []struct {
		name    string
		totals  []CurrencyTotal
		members int
	}{
		{"uneven", []CurrencyTotal{
			{CurrencyID: "copper", Total: dec("5")},
			{CurrencyID: "silver", Total: dec("2")},
			{CurrencyID: "gold", Total: dec("1")},
		}, 2},
		{"three ways", []CurrencyTotal{
			{CurrencyID: "copper", Total: dec("100")},
		}, 3},
		{"fractional copper", []CurrencyTotal{
			{CurrencyID: "copper", Total: dec("10.75")},
			{CurrencyID: "gold", Total: dec("3")},
		}, 4},
		{"five members", []CurrencyTotal{
			{CurrencyID: "silver", Total: dec("33")},
			{CurrencyID: "gold", Total: dec("7")},
		}, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &SplitRequest{PartyMemberCount: tc.members, Mode: SplitMergeToBase}

			plan, err := ComputeSplit(vault, req, tc.totals, currencies)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			distributed := decimal.Zero
			for _, p := range plan.Payouts {
				distributed = distributed.Add(p.Quantity.Mul(rates[p.CurrencyID]))
			}

			if distributed.GreaterThan(plan.ShareBase) {
				t.Errorf("distributed %s exceeds shareBase %s", distributed, plan.ShareBase)
			}

			shares := decimal.NewFromInt(int64(tc.members))
			reassembled := distributed.Mul(shares).Add(plan.RemainderBase)
			if !reassembled.Equal(plan.TotalBase) {
				t.Errorf("%s*%s+%s = %s, want totalBase %s",
					distributed, shares, plan.RemainderBase, reassembled, plan.TotalBase)
			}
		})
	}
}

func TestParseSplitMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitMode
		wantErr bool
	}{
		{"", SplitPerCurrency, false},
		{"per_currency", SplitPerCurrency, false},
		{"base", SplitMergeToBase, false},
		{"merge", SplitMergeToBase, false},
		{"bogus", SplitPerCurrency, true},
	}

	for _, tt := range tests {
		got, err := ParseSplitMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSplitMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}

		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSplitMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
