package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"captainhub.app/relay/internal/queue"
)

const streamKeepAlive = 25 * time.Second

// EventStreamHandler relays a workspace's status feed as server-sent events.
type EventStreamHandler struct {
	redis  *redis.Client
	prefix string
}

func NewEventStreamHandler(redisClient *redis.Client, prefix string) *EventStreamHandler {
	return &EventStreamHandler{redis: redisClient, prefix: prefix}
}

func (h *EventStreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "redis not configured"})
		return
	}

	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	stream := queue.StatusStream(h.prefix, workspaceID)
	// "$" only delivers entries added after the client connected.
	lastID := c.Query("last_id")
	if lastID == "" {
		lastID = c.GetHeader("Last-Event-ID")
	}
	if lastID == "" {
		lastID = "$"
	}

	setSSEHeaders(c.Writer)
	writeSSE(c.Writer, "", "ping", "ready")
	flusher.Flush()

	slog.DebugContext(ctx, "event stream opened", "stream", stream, "last_id", lastID)

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := h.redis.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Block:   streamKeepAlive,
			Count:   100,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				writeSSE(c.Writer, "", "ping", time.Now().UTC().Format(time.RFC3339Nano))
				flusher.Flush()
				continue
			}
			if ctx.Err() != nil {
				return
			}
			slog.WarnContext(ctx, "event stream read failed", "error", err, "stream", stream)
			writeSSE(c.Writer, "", "error", map[string]string{"error": err.Error()})
			flusher.Flush()
			return
		}

		for _, streamRes := range res {
			for _, msg := range streamRes.Messages {
				lastID = msg.ID
				writeSSE(c.Writer, msg.ID, "status", msg.Values)
			}
		}
		flusher.Flush()
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

func writeSSE(w http.ResponseWriter, id, event string, data any) {
	if id != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", id)
	}
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(ssePayload(data), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

func ssePayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(b)
	}
}
