package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/http/handler"
)

// SearchRouter only routes /ask when a chat model is configured.
func SearchRouter(router *gin.RouterGroup, h *handler.SearchHandler, askEnabled bool) {
	router.GET("/search", h.Search)
	if askEnabled {
		router.POST("/ask", h.Ask)
	}
}
