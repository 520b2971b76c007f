package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partyvault/partyvault/internal/adapter/http/dto"
	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	"github.com/partyvault/partyvault/internal/usecase"
)

// HoldingHandler handles holdings ledger HTTP requests.
type HoldingHandler struct {
	holdingUC *usecase.HoldingUseCase
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingUC *usecase.HoldingUseCase) *HoldingHandler {
	return &HoldingHandler{holdingUC: holdingUC}
}

// RecordEntry appends one ledger line to the vault.
func (h *HoldingHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
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

	var req dto.RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.holdingUC.RecordEntry(r.Context(), req.ToUseCaseInput(vaultID, user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Balances returns the vault's per-currency unarchived totals.
func (h *HoldingHandler) Balances(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "id")
	if vaultID == "" {
		writeError(w, http.StatusBadRequest, "missing vault ID", "")
		return
	}

	totals, err := h.holdingUC.Balances(r.Context(), vaultID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(totals))
}

// ListEntries lists the vault's ledger entries, newest first.
func (h *HoldingHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "id")
	if vaultID == "" {
		writeError(w, http.StatusBadRequest, "missing vault ID", "")
		return
	}

	entries, err := h.holdingUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		VaultID: vaultID,
		Limit:   parseIntQuery(r, "limit", 20),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
