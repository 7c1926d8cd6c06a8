package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// EventMessage asks a worker to forward one persisted event.
type EventMessage struct {
	EventRecordID int64
	EventID       string
	Fingerprint   string
	WorkspaceID   *int64
	EventType     string
	TraceID       *string
	Attempt       int
}

type Producer interface {
	Enqueue(ctx context.Context, msg EventMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg EventMessage) error {
	m := Message{
		EventRecordID: msg.EventRecordID,
		EventID:       msg.EventID,
		Fingerprint:   msg.Fingerprint,
		WorkspaceID:   msg.WorkspaceID,
		EventType:     msg.EventType,
		Attempt:       msg.Attempt,
	}
	if msg.TraceID != nil {
		m.TraceID = *msg.TraceID
	}
	attempt := m.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: messageValues(m, attempt),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued event record",
		"event_record_id", msg.EventRecordID,
		"event_id", msg.EventID,
		"event_type", msg.EventType,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
