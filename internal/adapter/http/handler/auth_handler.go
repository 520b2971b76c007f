package handler

import (
	"encoding/json"
	"net/http"

	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/infrastructure/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo represents user information.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DEMO ONLY: hardcoded users for testing. In production, validate against a
// user database with hashed passwords.
var demoUsers = map[string]struct {
	password string
	user     domain.User
}{
	"gm@partyvault.io": {
		password: "gm123",
		user:     domain.User{ID: "user-gm-1", Email: "gm@partyvault.io", Name: "Game Master"},
	},
	"player@partyvault.io": {
		password: "player123",
		user:     domain.User{ID: "user-player-1", Email: "player@partyvault.io", Name: "Player One"},
	},
}

// Login handles user login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, ok := demoUsers[req.Email]
	if !ok || entry.password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	user := entry.user

	token, err := h.jwtManager.Generate(&user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  UserInfo{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// GetCurrentUser returns the current authenticated user.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	writeJSON(w, http.StatusOK, UserInfo{ID: user.ID, Email: user.Email, Name: user.Name})
}
