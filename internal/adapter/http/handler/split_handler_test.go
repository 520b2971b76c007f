package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/adapter/http/dto"
	"github.com/partyvault/partyvault/internal/adapter/http/handler"
	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
	"github.com/partyvault/partyvault/internal/usecase/mocks"
)

type splitHandlerFixture struct {
	handler      *handler.SplitHandler
	vaultRepo    *mocks.MockVaultRepository
	currencyRepo *mocks.MockCurrencyRepository
	holdingRepo  *mocks.MockHoldingRepository
}

func newSplitHandlerFixture() *splitHandlerFixture {
	f := &splitHandlerFixture{
		vaultRepo:    mocks.NewMockVaultRepository(),
		currencyRepo: mocks.NewMockCurrencyRepository(),
		holdingRepo:  mocks.NewMockHoldingRepository(),
	}

	uc := usecase.NewSplitUseCase(
		mocks.NewMockTransactionManager(),
		f.vaultRepo,
		f.currencyRepo,
		f.holdingRepo,
		mocks.NewMockPermissionRepository(),
		mocks.NewMockActivityRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		nil,
		nil,
	)
	f.handler = handler.NewSplitHandler(uc)

	return f
}

func (f *splitHandlerFixture) serve(t *testing.T, vaultID, userID, body string) (*httptest.ResponseRecorder, dto.SplitEnvelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/"+vaultID+"/split", strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", vaultID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)

	if userID != "" {
		ctx = context.WithValue(ctx, middleware.UserContextKey, &domain.User{ID: userID, Email: userID + "@partyvault.io"})
	}

	rec := httptest.NewRecorder()
	f.handler.Split(rec, req.WithContext(ctx))

	var envelope dto.SplitEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}

	return rec, envelope
}

func TestSplitHandler_Success(t *testing.T) {
	f := newSplitHandlerFixture()

	f.vaultRepo.Create(context.Background(), &domain.Vault{ID: "vault-1", OwnerID: "user-1", Name: "Dragon Hoard"})
	f.currencyRepo.Create(context.Background(), &domain.Currency{ID: "cur-gold", VaultID: "vault-1", Code: "GOLD", Rate: decimal.NewFromInt(1)})
	f.holdingRepo.Seed(&domain.HoldingsEntry{ID: "e1", VaultID: "vault-1", CurrencyID: "cur-gold", Value: decimal.NewFromInt(100)})

	rec, envelope := f.serve(t, "vault-1", "user-1", `{"party_member_count":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !envelope.OK || envelope.Error != nil {
		t.Fatalf("envelope = %+v, want ok with no error", envelope)
	}
	if envelope.Data == nil {
		t.Fatal("envelope data missing")
	}
	if envelope.Data.Shares != 3 || envelope.Data.Mode != "per_currency" {
		t.Errorf("data = shares %d mode %s, want 3 per_currency", envelope.Data.Shares, envelope.Data.Mode)
	}
	if len(envelope.Data.ByCurrency) != 1 {
		t.Fatalf("by_currency len = %d, want 1", len(envelope.Data.ByCurrency))
	}
}

func TestSplitHandler_Unauthorized(t *testing.T) {
	f := newSplitHandlerFixture()

	rec, envelope := f.serve(t, "vault-1", "", `{"party_member_count":3}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if envelope.OK || envelope.Error == nil {
		t.Fatalf("envelope = %+v, want failure", envelope)
	}
}

func TestSplitHandler_BadMode(t *testing.T) {
	f := newSplitHandlerFixture()

	rec, envelope := f.serve(t, "vault-1", "user-1", `{"party_member_count":3,"mode":"thirds"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.OK {
		t.Fatal("expected failure envelope for unknown mode")
	}
}

func TestSplitHandler_InvalidBody(t *testing.T) {
	f := newSplitHandlerFixture()

	rec, envelope := f.serve(t, "vault-1", "user-1", `{"party_member_count":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.OK {
		t.Fatal("expected failure envelope for malformed body")
	}
}

func TestSplitHandler_VaultNotFound(t *testing.T) {
	f := newSplitHandlerFixture()

	rec, envelope := f.serve(t, "vault-missing", "user-1", `{"party_member_count":3}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if envelope.OK || envelope.Error == nil {
		t.Fatalf("envelope = %+v, want failure", envelope)
	}
}

func TestSplitHandler_PermissionDenied(t *testing.T) {
	f := newSplitHandlerFixture()

	f.vaultRepo.Create(context.Background(), &domain.Vault{ID: "vault-1", OwnerID: "user-1", Name: "Dragon Hoard"})

	rec, envelope := f.serve(t, "vault-1", "user-2", `{"party_member_count":3}`)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if envelope.OK {
		t.Fatal("expected failure envelope for stranger")
	}
}

func TestSplitHandler_MergeWithoutBase(t *testing.T) {
	f := newSplitHandlerFixture()

	f.vaultRepo.Create(context.Background(), &domain.Vault{ID: "vault-1", OwnerID: "user-1", Name: "Dragon Hoard"})
	f.currencyRepo.Create(context.Background(), &domain.Currency{ID: "cur-gold", VaultID: "vault-1", Code: "GOLD", Rate: decimal.NewFromInt(1)})
	f.holdingRepo.Seed(&domain.HoldingsEntry{ID: "e1", VaultID: "vault-1", CurrencyID: "cur-gold", Value: decimal.NewFromInt(10)})

	rec, envelope := f.serve(t, "vault-1", "user-1", `{"party_member_count":2,"mode":"base"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.OK || envelope.Error == nil {
		t.Fatalf("envelope = %+v, want failure", envelope)
	}
}
