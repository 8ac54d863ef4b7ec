package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/http/handler"
	"basegraph.app/correlate/internal/http/handler/webhook"
)

func IngestRouter(router *gin.RouterGroup, handler *handler.IngestHandler) {
	router.POST("/tickets", handler.Tickets)
	router.POST("/commits", handler.Commits)
	router.POST("/pull-requests", handler.PullRequests)
	router.POST("/code-files", handler.CodeFiles)
	router.POST("/documents", handler.Documents)
}

func ImportRouter(router *gin.RouterGroup, handler *handler.IngestHandler) {
	router.POST("/gitlab", handler.ImportGitLab)
}

func WebhookRouter(router *gin.RouterGroup, handler *webhook.GitLabWebhookHandler) {
	router.POST("/gitlab", handler.HandleEvent)
}
