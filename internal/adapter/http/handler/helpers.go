package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/partyvault/partyvault/internal/adapter/http/dto"
	"github.com/partyvault/partyvault/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrVaultNotFound),
		errors.Is(err, domain.ErrCurrencyNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConcurrentSplit):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDuplicateBaseCurrency),
		errors.Is(err, domain.ErrInvalidCurrencyRate),
		errors.Is(err, domain.ErrNoBaseCurrency),
		errors.Is(err, domain.ErrZeroValueEntry),
		errors.Is(err, domain.ErrInvalidPartyCount),
		errors.Is(err, domain.ErrNoShares),
		errors.Is(err, domain.ErrInvalidVaultName),
		errors.Is(err, domain.ErrInvalidCurrencyCode),
		errors.Is(err, domain.ErrInvalidCurrencyName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
