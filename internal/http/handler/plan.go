package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/dto"
	"captainhub.app/relay/internal/plan"
	"captainhub.app/relay/internal/service"
)

type PlanHandler struct {
	plans service.PlanService
}

func NewPlanHandler(plans service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

func (h *PlanHandler) Board(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	var req dto.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.plans.Board(c.Request.Context(), workspaceID, req.Issues)
	if err != nil {
		h.fail(c, err, "failed to build board")
		return
	}

	c.JSON(http.StatusOK, dto.BoardResponse{Issues: board.Issues, Summary: board.Summary})
}

func (h *PlanHandler) Get(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	items, err := h.plans.GetPlan(c.Request.Context(), workspaceID)
	if err != nil {
		h.fail(c, err, "failed to load plan")
		return
	}

	c.JSON(http.StatusOK, dto.PlanResponse{Items: items})
}

func (h *PlanHandler) Replace(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	var req dto.ReplacePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.plans.ReplacePlan(c.Request.Context(), workspaceID, req.Items)
	if err != nil {
		h.fail(c, err, "failed to save plan")
		return
	}

	c.JSON(http.StatusOK, dto.PlanResponse{Items: items})
}

func (h *PlanHandler) Clear(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	if err := h.plans.ClearPlan(c.Request.Context(), workspaceID); err != nil {
		h.fail(c, err, "failed to clear plan")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PlanHandler) RemoveItem(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	removed, err := h.plans.RemoveItem(c.Request.Context(), workspaceID, c.Param("issue_key"))
	if err != nil {
		h.fail(c, err, "failed to remove plan item")
		return
	}

	c.JSON(http.StatusOK, dto.RemovePlanItemResponse{Removed: removed})
}

func (h *PlanHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrWorkspaceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
	case errors.Is(err, service.ErrPlanItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIssueKeyRequired), errors.Is(err, plan.ErrInvalidPlanItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
