package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidVaultName    = errors.New("invalid vault name")
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	ErrInvalidCurrencyName = errors.New("invalid currency name")
)

// Validation constants
const (
	MaxVaultNameLength    = 255
	MaxCurrencyNameLength = 128
	MaxCurrencyCodeLength = 16
)

// ValidateVaultName validates a vault name.
func ValidateVaultName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidVaultName)
	}

	if len(name) > MaxVaultNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidVaultName, MaxVaultNameLength)
	}

	return nil
}

// ValidateCurrencyCode validates a normalized display code.
func ValidateCurrencyCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: code cannot be empty", ErrInvalidCurrencyCode)
	}

	if len(code) > MaxCurrencyCodeLength {
		return fmt.Errorf("%w: code exceeds %d characters", ErrInvalidCurrencyCode, MaxCurrencyCodeLength)
	}

	if strings.ContainsAny(code, " \t\n") {
		return fmt.Errorf("%w: code must not contain whitespace", ErrInvalidCurrencyCode)
	}

	return nil
}

// ValidateCurrencyName validates a currency display name.
func ValidateCurrencyName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCurrencyName)
	}

	if len(name) > MaxCurrencyNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidCurrencyName, MaxCurrencyNameLength)
	}

	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
