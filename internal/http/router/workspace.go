package router

import (
	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/handler"
)

func WorkspaceRouter(rg *gin.RouterGroup, h *handler.WorkspaceHandler) {
	rg.POST("", h.Create)
	rg.GET("/:workspace_id", h.Get)
}
