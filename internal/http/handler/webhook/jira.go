package webhook

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"captainhub.app/relay/common/logger"
	"captainhub.app/relay/internal/http/dto"
	"captainhub.app/relay/internal/mapper"
	"captainhub.app/relay/internal/service"
)

type JiraWebhookHandler struct {
	eventIngest service.EventIngestService
	source      string
	maxBatch    int
	traceHeader string
}

func NewJiraWebhookHandler(eventIngest service.EventIngestService, source string, maxBatch int, traceHeader string) *JiraWebhookHandler {
	return &JiraWebhookHandler{
		eventIngest: eventIngest,
		source:      source,
		maxBatch:    maxBatch,
		traceHeader: traceHeader,
	}
}

// HandleEvent accepts one delivery object or an array of them. It always
// answers 200 so the tracker does not retry; ok=false signals a failure.
func (h *JiraWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		Component: "relay.webhook.jira",
	})

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.WarnContext(ctx, "failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, dto.WebhookResponse{OK: false})
		return
	}

	payloads := decodeDeliveries(body)
	resp := dto.WebhookResponse{OK: true, Received: len(payloads)}
	if len(payloads) == 0 {
		c.JSON(http.StatusOK, resp)
		return
	}

	params := service.IngestParams{Source: h.source}
	if traceID := h.traceID(c); traceID != "" {
		params.TraceID = &traceID
	}

	for _, chunk := range chunks(payloads, h.maxBatch) {
		params.Payloads = chunk
		result, err := h.eventIngest.IngestBatch(ctx, params)
		if err != nil {
			slog.ErrorContext(ctx, "failed to ingest webhook batch", "error", err, "batch_size", len(chunk))
			resp.OK = false
			break
		}
		resp.Inserted += result.Inserted
		resp.Notified += result.Notified
	}
	if resp.OK {
		resp.Skipped = resp.Received - resp.Inserted
	}

	c.JSON(http.StatusOK, resp)
}

func (h *JiraWebhookHandler) traceID(c *gin.Context) string {
	if h.traceHeader != "" {
		if id := c.GetHeader(h.traceHeader); id != "" {
			return id
		}
	}
	if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// decodeDeliveries reads a body as one object or an array of objects.
// Unparseable bodies read as a single empty delivery, which normalizes to
// nothing.
func decodeDeliveries(body []byte) []map[string]any {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []map[string]any{{}}
	}

	if body[0] == '[' {
		var items []any
		if err := mapper.DecodePayload(body, &items); err != nil {
			return []map[string]any{{}}
		}
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			m, _ := item.(map[string]any)
			out = append(out, m)
		}
		return out
	}

	var single map[string]any
	if err := mapper.DecodePayload(body, &single); err != nil {
		return []map[string]any{{}}
	}
	return []map[string]any{single}
}

func chunks(items []map[string]any, size int) [][]map[string]any {
	if size <= 0 || len(items) <= size {
		return [][]map[string]any{items}
	}
	out := make([][]map[string]any, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
