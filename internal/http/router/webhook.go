package router

import (
	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/http/handler/webhook"
)

func WebhookRouter(rg *gin.RouterGroup, h *webhook.JiraWebhookHandler) {
	rg.POST("/jira", h.HandleEvent)
}
