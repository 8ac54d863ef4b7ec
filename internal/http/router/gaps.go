package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/http/handler"
)

func GapRouter(router *gin.RouterGroup, handler *handler.GapHandler) {
	router.GET("/orphaned", handler.Orphaned)
	router.GET("/undocumented", handler.Undocumented)
	router.GET("/missing-decisions", handler.MissingDecisions)
	router.GET("/stale", handler.Stale)
	router.GET("/comprehensive", handler.Comprehensive)
}

func ImpactRouter(router *gin.RouterGroup, handler *handler.ImpactHandler) {
	router.GET("/file", handler.File)
	router.GET("/ticket/:key", handler.Ticket)
	router.GET("/commit/:sha", handler.Commit)
	router.POST("/reviewers", handler.Reviewers)
}
