package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partyvault/partyvault/internal/adapter/http/dto"
	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// ActivityHandler exposes the vault activity log.
type ActivityHandler struct {
	activityUC *usecase.ActivityUseCase
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityUC *usecase.ActivityUseCase) *ActivityHandler {
	return &ActivityHandler{activityUC: activityUC}
}

// ListByVault lists a vault's activity, newest first.
func (h *ActivityHandler) ListByVault(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "id")
	if vaultID == "" {
		writeError(w, http.StatusBadRequest, "missing vault ID", "")
		return
	}

	logs, err := h.activityUC.List(r.Context(), domain.ActivityFilter{
		VaultID: vaultID,
		ActorID: r.URL.Query().Get("actor_id"),
		Action:  r.URL.Query().Get("action"),
		Limit:   parseIntQuery(r, "limit", 50),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list activity", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ActivitiesFromDomain(logs))
}
