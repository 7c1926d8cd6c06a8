package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/dto"
	"captainhub.app/relay/internal/service"
)

type WorkspaceHandler struct {
	workspaces service.WorkspaceService
}

func NewWorkspaceHandler(workspaces service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := h.workspaces.Create(c.Request.Context(), req.Name, req.JiraProjectKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkspaceNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrProjectKeyTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			slog.ErrorContext(c.Request.Context(), "failed to create workspace", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create workspace"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceResponse(ws))
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, ok := workspaceIDParam(c)
	if !ok {
		return
	}

	ws, err := h.workspaces.Get(c.Request.Context(), workspaceID)
	if err != nil {
		if errors.Is(err, service.ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to load workspace", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceResponse(ws))
}
