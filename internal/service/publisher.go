package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"homesentry-data/internal/redisstream"
)

// StreamNotice is the payload appended to the Redis stream after a
// telemetry row has been committed.
type StreamNotice struct {
	Stream    string `json:"stream"`
	ID        int64  `json:"id"`
	Mac       string `json:"mac"`
	LocalTime string `json:"local_time"`
}

// EventPublisher fans committed appends out to a Redis stream.
// Publishing is best-effort: a Redis outage never fails an ingest.
type EventPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewEventPublisher(client *redis.Client, stream string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Publish appends one notice for a committed row.
func (p *EventPublisher) Publish(ctx context.Context, stream string, id int64, mac string, localTime time.Time) error {
	notice := StreamNotice{
		Stream:    stream,
		ID:        id,
		Mac:       mac,
		LocalTime: localTime.Format(time.RFC3339),
	}

	msgID, err := redisstream.PublishJSONToStream(ctx, p.client, p.stream, notice)
	if err != nil {
		return err
	}

	p.logger.Debug("Published stream notice",
		zap.String("message_id", msgID),
		zap.String("stream", stream),
		zap.Int64("row_id", id))
	return nil
}

// Close releases the Redis connection.
func (p *EventPublisher) Close() error {
	return p.client.Close()
}
