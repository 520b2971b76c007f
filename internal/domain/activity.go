package domain

import (
	"encoding/json"
	"time"
)

// ActivityLog is an append-only record of something that happened in a vault.
type ActivityLog struct {
	ID        string
	VaultID   string
	ActorID   string
	Action    ActivityAction
	Detail    JSON
	CreatedAt time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// ActivityAction names the auditable vault operations.
type ActivityAction string

const (
	ActivityVaultCreated    ActivityAction = "vault.created"
	ActivityCurrencyCreated ActivityAction = "currency.created"
	ActivityCurrencyUpdated ActivityAction = "currency.updated"
	ActivityEntryRecorded   ActivityAction = "holdings.recorded"
	ActivitySplitCompleted  ActivityAction = "holdings.split"
)

// MarshalDetail converts a value to JSON detail for activity logging.
func MarshalDetail(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal detail"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal detail"}
	}

	return result
}

// ActivityFilter defines filters for querying activity logs.
type ActivityFilter struct {
	VaultID string
	ActorID string
	Action  string
	Since   time.Time
	Limit   int
	Offset  int
}
