package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"captainhub.app/relay/internal/http/handler"
	"captainhub.app/relay/internal/http/handler/webhook"
	"captainhub.app/relay/internal/http/middleware"
	"captainhub.app/relay/internal/service"
)

type RouterConfig struct {
	AdminAPIKey        string
	TraceHeaderName    string
	Source             string
	MaxBatch           int
	MaxBodyBytes       int64
	WebhookSecret      string
	StatusStreamPrefix string
	Redis              *redis.Client
	// ReadinessChecks back GET /ready, keyed by dependency name.
	ReadinessChecks    map[string]handler.Check
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", handler.Health)
	router.GET("/ready", handler.Readiness(cfg.ReadinessChecks))

	jiraHandler := webhook.NewJiraWebhookHandler(services.EventIngest(), cfg.Source, cfg.MaxBatch, cfg.TraceHeaderName)
	WebhookRouter(router.Group("/webhooks",
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.VerifyWebhookSignature(cfg.WebhookSecret),
	), jiraHandler)

	v1 := router.Group("/api/v1", middleware.RequireAPIKey(cfg.AdminAPIKey))
	{
		v1.GET("/schema/ues", handler.UESSchema)

		WorkspaceRouter(v1.Group("/workspaces"), handler.NewWorkspaceHandler(services.Workspaces()))

		workspaces := v1.Group("/workspaces/:workspace_id")
		PlanRouter(workspaces, handler.NewPlanHandler(services.Plans()))
		EventRouter(workspaces, handler.NewEventHandler(services.Events()),
			handler.NewEventStreamHandler(cfg.Redis, cfg.StatusStreamPrefix))
	}
}
