package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/http/handler"
)

func DecisionRouter(router *gin.RouterGroup, handler *handler.DecisionHandler) {
	router.GET("", handler.List)
	router.GET("/search", handler.Search)
	router.GET("/:id", handler.Get)
	router.GET("/by-ticket/:key", handler.ByTicket)
	router.GET("/status/:key", handler.Status)
	router.POST("/analyze/:key", handler.Analyze)
}

func GraphRouter(router *gin.RouterGroup, handler *handler.GraphHandler) {
	router.GET("/related/:kind/*key", handler.Related)
}

func AdminRouter(router *gin.RouterGroup, handler *handler.AdminHandler) {
	router.POST("/backfill", handler.Backfill)
	router.GET("/index-status", handler.IndexStatus)
	router.POST("/clear-cache", handler.ClearCache)
}
