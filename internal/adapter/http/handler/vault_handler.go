package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partyvault/partyvault/internal/adapter/http/dto"
	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	"github.com/partyvault/partyvault/internal/usecase"
)

// VaultHandler handles vault and currency directory HTTP requests.
type VaultHandler struct {
	vaultUC *usecase.VaultUseCase
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(vaultUC *usecase.VaultUseCase) *VaultHandler {
	return &VaultHandler{vaultUC: vaultUC}
}

// Create creates a new vault owned by the caller.
func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateVaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	vault, err := h.vaultUC.CreateVault(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create vault", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.VaultFromDomain(vault))
}

// Get retrieves a vault by ID.
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing vault ID", "")
		return
	}

	vault, err := h.vaultUC.GetVault(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get vault", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultFromDomain(vault))
}

// List lists the caller's vaults.
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	vaults, err := h.vaultUC.ListVaults(r.Context(), usecase.ListVaultsInput{
		OwnerID: user.ID,
		Limit:   parseIntQuery(r, "limit", 20),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list vaults", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultsFromDomain(vaults))
}

// AddCurrency adds a currency to the vault's directory.
func (h *VaultHandler) AddCurrency(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	vaultID := chi.URLParam(r, "id")
	if vaultID == "" {
		writeError(w, http.StatusBadRequest, "missing vault ID", "")
		return
	}

	var req dto.AddCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, err := h.vaultUC.AddCurrency(r.Context(), req.ToUseCaseInput(vaultID, user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add currency", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyFromDomain(currency))
}

// ListCurrencies returns the vault's currency directory.
func (h *VaultHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "id")
	if vaultID == "" {
		writeError(w, http.StatusBadRequest, "missing vault ID", "")
		return
	}

	currencies, err := h.vaultUC.ListCurrencies(r.Context(), vaultID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list currencies", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(currencies))
}

// SetCommonCurrency designates the vault's display currency.
func (h *VaultHandler) SetCommonCurrency(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	vaultID := chi.URLParam(r, "id")

	var req dto.SetCommonCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.vaultUC.SetCommonCurrency(r.Context(), vaultID, user.ID, req.CurrencyID); err != nil {
		writeError(w, mapDomainError(err), "failed to set common currency", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GrantPermission upserts a member's permission flags.
func (h *VaultHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	vaultID := chi.URLParam(r, "id")

	var req dto.GrantPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.vaultUC.GrantPermission(r.Context(), req.ToUseCaseInput(vaultID, user.ID)); err != nil {
		writeError(w, mapDomainError(err), "failed to grant permission", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
