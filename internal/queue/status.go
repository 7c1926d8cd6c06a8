package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusUpdate is one entry of a workspace's realtime event feed.
type StatusUpdate struct {
	EventRecordID int64
	EventID       string
	EventType     string
	Status        string
	Error         string
	At            time.Time
}

// StatusPublisher appends updates to the per-workspace feed streams.
type StatusPublisher interface {
	Publish(ctx context.Context, workspaceID int64, update StatusUpdate) error
}

type redisStatusPublisher struct {
	client *redis.Client
	prefix string
	maxLen int64
}

func NewRedisStatusPublisher(client *redis.Client, prefix string, maxLen int64) StatusPublisher {
	return &redisStatusPublisher{client: client, prefix: prefix, maxLen: maxLen}
}

// StatusStream names the feed stream of a workspace.
func StatusStream(prefix string, workspaceID int64) string {
	return fmt.Sprintf("%s:workspace-%d", prefix, workspaceID)
}

func (p *redisStatusPublisher) Publish(ctx context.Context, workspaceID int64, update StatusUpdate) error {
	if update.At.IsZero() {
		update.At = time.Now()
	}
	values := map[string]any{
		"event_record_id": strconv.FormatInt(update.EventRecordID, 10),
		"event_id":        update.EventID,
		"event_type":      update.EventType,
		"status":          update.Status,
		"at":              update.At.UTC().Format(time.RFC3339Nano),
	}
	if update.Error != "" {
		values["error"] = update.Error
	}

	args := &redis.XAddArgs{
		Stream: StatusStream(p.prefix, workspaceID),
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd status (workspace=%d): %w", workspaceID, err)
	}
	return nil
}
