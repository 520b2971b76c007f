package domain

import "errors"

var (
	// Vault errors
	ErrVaultNotFound    = errors.New("vault not found")
	ErrPermissionDenied = errors.New("permission denied for this vault")

	// Currency errors
	ErrCurrencyNotFound      = errors.New("currency not found")
	ErrDuplicateBaseCurrency = errors.New("vault already has a base currency (rate == 1)")
	ErrInvalidCurrencyRate   = errors.New("currency rate must be positive")
	ErrNoBaseCurrency        = errors.New("vault has no base currency (rate == 1) required for a merge split")

	// Holdings errors
	ErrEntryNotFound  = errors.New("holdings entry not found")
	ErrZeroValueEntry = errors.New("holdings entry value must be non-zero")

	// Split errors
	ErrInvalidPartyCount = errors.New("party member count must be a non-negative integer")
	ErrNoShares          = errors.New("split requires at least one share")
	ErrConcurrentSplit   = errors.New("holdings changed during split, try again")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// Cache errors
	ErrCacheMiss = errors.New("cache miss")
)
