package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/http/handler"
)

func EntityRouter(router *gin.RouterGroup, handler *handler.EntityHandler) {
	router.GET("/tickets/:key", handler.Ticket)
	router.GET("/commits/:sha", handler.Commit)
	router.GET("/pull-requests/:number", handler.PullRequest)
	router.GET("/code-files", handler.CodeFile)
	router.GET("/documents", handler.Document)
}
