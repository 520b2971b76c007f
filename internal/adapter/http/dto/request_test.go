package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

func TestCreateVaultRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateVaultRequest{Name: "Dragon Hoard"}

	got := req.ToUseCaseInput("user-1")
	want := usecase.CreateVaultInput{OwnerID: "user-1", Name: "Dragon Hoard"}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestAddCurrencyRequest_ToUseCaseInput(t *testing.T) {
	req := &AddCurrencyRequest{
		Name: "Gold Piece",
		Code: "GP",
		Rate: decimal.NewFromInt(100),
	}

	got := req.ToUseCaseInput("vault-1", "user-1")

	if got.VaultID != "vault-1" || got.ActorID != "user-1" {
		t.Fatalf("ids not carried: %+v", got)
	}
	if got.Code != "GP" || !got.Rate.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("currency fields not carried: %+v", got)
	}
}

func TestSplitRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name        string
		request     *SplitRequest
		wantMode    domain.SplitMode
		expectError bool
	}{
		{
			name:     "default mode is per-currency",
			request:  &SplitRequest{PartyMemberCount: 4},
			wantMode: domain.SplitPerCurrency,
		},
		{
			name:     "explicit per_currency",
			request:  &SplitRequest{PartyMemberCount: 4, Mode: "per_currency"},
			wantMode: domain.SplitPerCurrency,
		},
		{
			name:     "base mode",
			request:  &SplitRequest{PartyMemberCount: 4, Mode: "base", KeepPartyShare: true},
			wantMode: domain.SplitMergeToBase,
		},
		{
			name:     "merge alias",
			request:  &SplitRequest{PartyMemberCount: 4, Mode: "merge"},
			wantMode: domain.SplitMergeToBase,
		},
		{
			name:        "unknown mode",
			request:     &SplitRequest{PartyMemberCount: 4, Mode: "thirds"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput("vault-1", "user-1")

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error for unknown mode")
				}
				return
			}

			if err != nil {
				t.Fatalf("ToUseCaseInput() error = %v", err)
			}
			if got.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", got.Mode, tt.wantMode)
			}
			if got.PartyMemberCount != tt.request.PartyMemberCount {
				t.Errorf("PartyMemberCount = %d, want %d", got.PartyMemberCount, tt.request.PartyMemberCount)
			}
			if got.KeepPartyShare != tt.request.KeepPartyShare {
				t.Errorf("KeepPartyShare = %v, want %v", got.KeepPartyShare, tt.request.KeepPartyShare)
			}
		})
	}
}

func TestGrantPermissionRequest_ToUseCaseInput(t *testing.T) {
	req := &GrantPermissionRequest{UserID: "user-2", CanSplit: true}

	got := req.ToUseCaseInput("vault-1", "user-1")
	want := usecase.GrantPermissionInput{
		VaultID:  "vault-1",
		ActorID:  "user-1",
		UserID:   "user-2",
		CanSplit: true,
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}
