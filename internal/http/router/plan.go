package router

import (
	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/handler"
)

func PlanRouter(rg *gin.RouterGroup, h *handler.PlanHandler) {
	rg.POST("/board", h.Board)
	rg.GET("/plan", h.Get)
	rg.PUT("/plan", h.Replace)
	rg.DELETE("/plan", h.Clear)
	rg.DELETE("/plan/items/:issue_key", h.RemoveItem)
}
