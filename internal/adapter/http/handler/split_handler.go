package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partyvault/partyvault/internal/adapter/http/dto"
	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	"github.com/partyvault/partyvault/internal/usecase"
)

// SplitHandler handles the split operation. Unlike the CRUD endpoints it
// answers with an explicit ok/error/data envelope, so the table-side client
// can always reconcile what happened to the money.
type SplitHandler struct {
	splitUC *usecase.SplitUseCase
}

// NewSplitHandler creates a new SplitHandler.
func NewSplitHandler(splitUC *usecase.SplitUseCase) *SplitHandler {
	return &SplitHandler{splitUC: splitUC}
}

// Split divides the vault's unarchived holdings across the party.
func (h *SplitHandler) Split(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, dto.SplitFailure("unauthorized"))
		return
	}

	vaultID := chi.URLParam(r, "id")
	if vaultID == "" {
		writeJSON(w, http.StatusBadRequest, dto.SplitFailure("missing vault ID"))
		return
	}

	var req dto.SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.SplitFailure("invalid request body: "+err.Error()))
		return
	}

	input, err := req.ToUseCaseInput(vaultID, user.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.SplitFailure(err.Error()))
		return
	}

	out, err := h.splitUC.Split(r.Context(), input)
	if err != nil {
		writeJSON(w, mapDomainError(err), dto.SplitFailure(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, dto.SplitSuccess(out))
}
