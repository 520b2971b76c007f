package activityfeed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/usecase"
)

// Publisher delivers one activity log line to an external consumer, such as
// a party chat webhook or a log sink.
type Publisher interface {
	Publish(ctx context.Context, log *domain.ActivityLog) error
}

// Broadcaster polls the activity log and pushes new lines to a Publisher.
// Delivery is at-least-once: a line that fails to publish is retried on the
// next tick because the cursor only advances past published lines.
type Broadcaster struct {
	activityRepo usecase.ActivityRepository
	publisher    Publisher
	logger       zerolog.Logger
	batchSize    int
	interval     time.Duration
	cursor       time.Time
}

// Config for Broadcaster.
type Config struct {
	ActivityRepo usecase.ActivityRepository
	Publisher    Publisher
	Logger       zerolog.Logger
	BatchSize    int
	Interval     time.Duration
}

// NewBroadcaster creates a new Broadcaster. Polling starts from the moment
// of creation; historical activity is not replayed.
func NewBroadcaster(cfg Config) *Broadcaster {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &Broadcaster{
		activityRepo: cfg.ActivityRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
		batchSize:    cfg.BatchSize,
		interval:     cfg.Interval,
		cursor:       time.Now().UTC(),
	}
}

// Start runs the polling loop until the context is cancelled.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.logger.Info().
		Int("batch_size", b.batchSize).
		Dur("interval", b.interval).
		Msg("activity broadcaster started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("activity broadcaster shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := b.broadcastNew(ctx); err != nil {
				b.logger.Error().Err(err).Msg("error broadcasting activity")
			}
		}
	}
}

func (b *Broadcaster) broadcastNew(ctx context.Context) error {
	logs, err := b.activityRepo.List(ctx, domain.ActivityFilter{
		Since: b.cursor,
		Limit: b.batchSize,
	})
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		return nil
	}

	// List returns newest first; publish in chronological order.
	for i := len(logs) - 1; i >= 0; i-- {
		log := logs[i]

		if err := b.publisher.Publish(ctx, log); err != nil {
			b.logger.Error().
				Err(err).
				Str("activity_id", log.ID).
				Str("action", string(log.Action)).
				Msg("failed to publish activity, will retry")
			return err
		}

		b.cursor = log.CreatedAt
	}

	return nil
}

// LogPublisher publishes activity lines to the application log.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the activity line.
func (p *LogPublisher) Publish(ctx context.Context, log *domain.ActivityLog) error {
	p.logger.Info().
		Str("activity_id", log.ID).
		Str("vault_id", log.VaultID).
		Str("actor_id", log.ActorID).
		Str("action", string(log.Action)).
		Interface("detail", log.Detail).
		Msg("vault activity")

	return nil
}
