package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// ActivityRepository implements usecase.ActivityRepository.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

const activityInsert = `
	INSERT INTO activity_logs (id, vault_id, actor_id, action, detail, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Create appends one activity log row.
func (r *ActivityRepository) Create(ctx context.Context, log *domain.ActivityLog) error {
	detail, err := json.Marshal(log.Detail)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, activityInsert,
		log.ID, log.VaultID, log.ActorID, string(log.Action), detail, timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// CreateTx appends one activity log row inside an open transaction so the
// audit line commits or rolls back together with the mutation it records.
func (r *ActivityRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.ActivityLog) error {
	detail, err := json.Marshal(log.Detail)
	if err != nil {
		return err
	}

	_, err = txOf(tx).Exec(ctx, activityInsert,
		log.ID, log.VaultID, log.ActorID, string(log.Action), detail, timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// List returns activity logs matching the filter, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.ActivityLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vault_id, actor_id, action, detail, created_at
		FROM activity_logs
		WHERE ($1 = '' OR vault_id = $1)
		  AND ($2 = '' OR actor_id = $2)
		  AND ($3 = '' OR action = $3)
		  AND created_at > $4
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`,
		filter.VaultID, filter.ActorID, filter.Action, timeToPgTimestamptz(filter.Since),
		int32(filter.Limit), int32(filter.Offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.ActivityLog

	for rows.Next() {
		log, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}

		logs = append(logs, log)
	}

	return logs, rows.Err()
}

func scanActivity(row pgx.Row) (*domain.ActivityLog, error) {
	var (
		log       domain.ActivityLog
		action    string
		detail    []byte
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(&log.ID, &log.VaultID, &log.ActorID, &action, &detail, &createdAt); err != nil {
		return nil, err
	}

	log.Action = domain.ActivityAction(action)
	log.CreatedAt = createdAt.Time

	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &log.Detail); err != nil {
			return nil, err
		}
	}

	return &log, nil
}
