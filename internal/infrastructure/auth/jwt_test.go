package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/partyvault/partyvault/internal/domain"
)

func TestJWTGenerateAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	user := &domain.User{ID: "user-1", Email: "gm@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.UserID != "user-1" || claims.Email != "gm@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := manager.Verify(token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := manager.Generate(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
