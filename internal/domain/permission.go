package domain

import "time"

// Permission grants a non-owner member rights on a vault.
type Permission struct {
	ID        string
	VaultID   string
	UserID    string
	CanSplit  bool
	CanEdit   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowsSplit reports whether a user may split the vault's holdings.
// The owner always may; members need the can_split flag.
func AllowsSplit(vault *Vault, userID string, perm *Permission) bool {
	if vault.OwnerID == userID {
		return true
	}

	return perm != nil && perm.CanSplit
}

// AllowsEdit reports whether a user may mutate vault contents.
func AllowsEdit(vault *Vault, userID string, perm *Permission) bool {
	if vault.OwnerID == userID {
		return true
	}

	return perm != nil && perm.CanEdit
}
