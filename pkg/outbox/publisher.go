package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
)

// TopicPublisher is the transport-side surface the publisher drains into.
type TopicPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// Publisher polls outbox_events and ships unpublished rows to the
// message broker. At-least-once: a crash between Publish and
// MarkPublished re-sends the event, so consumers dedupe by event id.
type Publisher struct {
	repo  *Repository
	topic TopicPublisher
	cfg   config.OutboxConfig
	logg  *logger.Logger
}

func NewPublisher(repo *Repository, topic TopicPublisher, cfg config.OutboxConfig, logg *logger.Logger) (*Publisher, error) {
	if repo == nil {
		return nil, errors.New("outbox repository is required")
	}
	if topic == nil {
		return nil, errors.New("topic publisher is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Publisher{repo: repo, topic: topic, cfg: cfg, logg: logg}, nil
}

// Run drains the outbox until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.DrainOnce(ctx); err != nil && p.logg != nil {
				p.logg.Error(ctx, "outbox drain failed", err)
			}
		}
	}
}

// DrainOnce publishes one batch of unpublished events.
func (p *Publisher) DrainOnce(ctx context.Context) error {
	rows, err := p.repo.FetchUnpublished(p.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if p.cfg.MaxAttempts > 0 && row.AttemptCount >= p.cfg.MaxAttempts {
			continue
		}
		attrs := map[string]string{
			"event_id":       row.ID.String(),
			"event_type":     row.EventType.String(),
			"aggregate_type": row.AggregateType.String(),
			"aggregate_id":   row.AggregateID.String(),
		}
		if err := p.topic.Publish(ctx, row.Payload, attrs); err != nil {
			if markErr := p.repo.MarkFailed(row.ID, err); markErr != nil && p.logg != nil {
				p.logg.Error(ctx, "marking outbox event failed", markErr)
			}
			continue
		}
		if err := p.repo.MarkPublished(row.ID); err != nil {
			return err
		}
	}
	return nil
}
