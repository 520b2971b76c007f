package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeCurrencyCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gp", "GP"},
		{" g p ", "GP"},
		{"Gold Pieces", "GOLDPIECES"},
		{"SP", "SP"},
	}

	for _, tt := range tests {
		if got := NormalizeCurrencyCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCurrencyCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateCurrencyCode(t *testing.T) {
	if err := ValidateCurrencyCode("GP"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateCurrencyCode(""); !errors.Is(err, ErrInvalidCurrencyCode) {
		t.Errorf("empty code: expected ErrInvalidCurrencyCode, got %v", err)
	}

	if err := ValidateCurrencyCode(strings.Repeat("X", 17)); !errors.Is(err, ErrInvalidCurrencyCode) {
		t.Errorf("long code: expected ErrInvalidCurrencyCode, got %v", err)
	}
}

func TestCurrencyValidate(t *testing.T) {
	c := &Currency{Code: "GP", Rate: decimal.NewFromInt(100)}
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	c.Rate = decimal.Zero
	if err := c.Validate(); !errors.Is(err, ErrInvalidCurrencyRate) {
		t.Errorf("zero rate: expected ErrInvalidCurrencyRate, got %v", err)
	}

	c.Rate = decimal.NewFromInt(-5)
	if err := c.Validate(); !errors.Is(err, ErrInvalidCurrencyRate) {
		t.Errorf("negative rate: expected ErrInvalidCurrencyRate, got %v", err)
	}
}

func TestCurrencyIsBase(t *testing.T) {
	base := &Currency{Rate: decimal.NewFromInt(1)}
	if !base.IsBase() {
		t.Error("rate 1 should be base")
	}

	other := &Currency{Rate: decimal.NewFromInt(10)}
	if other.IsBase() {
		t.Error("rate 10 should not be base")
	}
}

func TestVaultBaseCurrency(t *testing.T) {
	one := decimal.NewFromInt(1)

	t.Run("designated base preferred", func(t *testing.T) {
		vault := &Vault{ID: "v1", BaseCurrencyID: "copper"}
		currencies := []*Currency{
			{ID: "copper", Rate: one},
			{ID: "gold", Rate: decimal.NewFromInt(100)},
		}

		base, err := vault.BaseCurrency(currencies)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if base.ID != "copper" {
			t.Errorf("base = %s, want copper", base.ID)
		}
	})

	t.Run("falls back to any rate-one currency", func(t *testing.T) {
		vault := &Vault{ID: "v1"}
		currencies := []*Currency{
			{ID: "gold", Rate: decimal.NewFromInt(100)},
			{ID: "copper", Rate: one},
		}

		base, err := vault.BaseCurrency(currencies)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if base.ID != "copper" {
			t.Errorf("base = %s, want copper", base.ID)
		}
	})

	t.Run("no base currency", func(t *testing.T) {
		vault := &Vault{ID: "v1"}
		currencies := []*Currency{{ID: "gold", Rate: decimal.NewFromInt(100)}}

		if _, err := vault.BaseCurrency(currencies); !errors.Is(err, ErrNoBaseCurrency) {
			t.Errorf("expected ErrNoBaseCurrency, got %v", err)
		}
	})
}

func TestAllowsSplit(t *testing.T) {
	vault := &Vault{ID: "v1", OwnerID: "owner"}

	if !AllowsSplit(vault, "owner", nil) {
		t.Error("owner should always split")
	}

	if AllowsSplit(vault, "member", nil) {
		t.Error("member without permission should not split")
	}

	if !AllowsSplit(vault, "member", &Permission{CanSplit: true}) {
		t.Error("member with can_split should split")
	}

	if AllowsSplit(vault, "member", &Permission{CanEdit: true}) {
		t.Error("can_edit alone should not allow split")
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("got %d/%d, want 50/0", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("got limit %d, want 1000", limit)
	}
}
