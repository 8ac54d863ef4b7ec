package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/model"
)

type RelatedFinder interface {
	Related(ctx context.Context, orgID int64, kind model.EntityKind, key string, depth int) (*model.RelatedEntities, error)
}

type GraphHandler struct {
	graph RelatedFinder
}

func NewGraphHandler(graph RelatedFinder) *GraphHandler {
	return &GraphHandler{graph: graph}
}

// Related is routed with a catch-all key since code file and pull request
// keys contain slashes.
func (h *GraphHandler) Related(c *gin.Context) {
	depth, err := queryInt(c, "depth")
	if err != nil {
		RespondError(c, err, "find related entities")
		return
	}
	kind := model.EntityKind(c.Param("kind"))
	key := strings.TrimPrefix(c.Param("key"), "/")

	related, err := h.graph.Related(c.Request.Context(), OrganizationID(c), kind, key, depth)
	if err != nil {
		RespondError(c, err, "find related entities")
		return
	}
	c.JSON(http.StatusOK, related)
}
