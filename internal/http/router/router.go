package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/http/handler"
	"basegraph.app/correlate/internal/http/handler/webhook"
	"basegraph.app/correlate/internal/http/middleware"
	"basegraph.app/correlate/internal/service"
)

type RouterConfig struct {
	GitLab      config.GitLabConfig
	AdminAPIKey string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1", middleware.RequireOrganization())
	{
		ingestHandler := handler.NewIngestHandler(services.Ingest(), services.GitLabImporter(), cfg.GitLab)
		IngestRouter(v1.Group("/ingest"), ingestHandler)
		ImportRouter(v1.Group("/import"), ingestHandler)

		webhookHandler := webhook.NewGitLabWebhookHandler(services.Ingest(), cfg.GitLab.WebhookSecret)
		WebhookRouter(v1.Group("/webhooks"), webhookHandler)

		EntityRouter(v1, handler.NewEntityHandler(services.Entities()))

		var asker handler.Asker
		if s := services.Synth(); s != nil {
			asker = s
		}
		SearchRouter(v1, handler.NewSearchHandler(services.Retriever(), asker), asker != nil)

		GapRouter(v1.Group("/gaps"), handler.NewGapHandler(services.Gaps()))
		ImpactRouter(v1.Group("/impact"), handler.NewImpactHandler(services.Impact()))
		GraphRouter(v1.Group("/graph"), handler.NewGraphHandler(services.Graph()))

		if d := services.Decisions(); d != nil {
			DecisionRouter(v1.Group("/decisions"), handler.NewDecisionHandler(d))
		}

		admin := v1.Group("/admin", middleware.RequireAdminKey(cfg.AdminAPIKey))
		AdminRouter(admin, handler.NewAdminHandler(services.Indexer(), services.Retriever()))
	}
}
