package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rewrite-manager/core/utils"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Event types published by the regeneration commands.
const (
	EventPathRegenerated  = "category_url_path_regenerated"
	EventReindexRequested = "reindex_requested"
)

// Event is a notification for downstream indexers.
type Event struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	EntityType string    `json:"entity_type"`
	StoreID    int64     `json:"store_id"`
	EntityIDs  []int64   `json:"entity_ids"`
	URLPath    string    `json:"url_path,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to the indexing system.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// New returns a Pub/Sub publisher when enabled, otherwise a log-only publisher.
func New(ctx context.Context, cfg Config, l *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NewLogPublisher(l), nil
	}
	if cfg.ProjectID == "" || cfg.Topic == "" {
		return nil, fmt.Errorf("notify: project_id and topic are required when enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return NewPubSubPublisher(client, cfg.Topic, l), nil
}

// PubSubPublisher publishes events as JSON messages.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubPublisher publishes to topicID using an existing client.
func NewPubSubPublisher(client *pubsub.Client, topicID string, l *zap.Logger) *PubSubPublisher {
	return &PubSubPublisher{client: client, topic: client.Topic(topicID), logger: l}
}

// Publish sends the event and waits for the server-assigned id.
func (p *PubSubPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	res := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":        ev.Type,
			"entity_type": ev.EntityType,
			"store_id":    utils.ToString(ev.StoreID),
		},
	})
	id, err := res.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}

	p.logger.Debug("Published notification", zap.String("type", ev.Type), zap.String("message_id", id))
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

// LogPublisher records events in the log instead of publishing them.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher that only logs events.
func NewLogPublisher(l *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: l}
}

// Publish logs the event at info level.
func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	p.logger.Info("Notification",
		zap.String("type", ev.Type),
		zap.String("entity_type", ev.EntityType),
		zap.Int64("store_id", ev.StoreID),
		zap.Int64s("entity_ids", ev.EntityIDs),
		zap.String("url_path", ev.URLPath),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
