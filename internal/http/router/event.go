package router

import (
	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/handler"
)

func EventRouter(rg *gin.RouterGroup, h *handler.EventHandler, stream *handler.EventStreamHandler) {
	rg.GET("/events", h.List)
	rg.GET("/events/stream", stream.Stream)
}
