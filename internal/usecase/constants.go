package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a split transaction so a stuck request
	// cannot hold the vault lock indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
