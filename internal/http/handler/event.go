package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/dto"
	"captainhub.app/relay/internal/service"
)

type EventHandler struct {
	events service.EventQueryService
}

func NewEventHandler(events service.EventQueryService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.events.List(ctx, workspaceID, int32(limit))
	if err != nil {
		if errors.Is(err, service.ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to list events", "error", err, "workspace_id", workspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	resp := dto.ListEventsResponse{Events: make([]dto.EventRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Events = append(resp.Events, dto.ToEventRecordResponse(rec))
	}
	c.JSON(http.StatusOK, resp)
}
