package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/http/dto"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
)

type IndexAdmin interface {
	Backfill(ctx context.Context, orgID int64, opts indexer.BackfillOptions) (*model.BackfillReport, error)
	Status(ctx context.Context, orgID int64) ([]model.IndexStatusCounts, error)
}

type CacheAdmin interface {
	ClearCache(ctx context.Context, orgID int64) (int, error)
}

type AdminHandler struct {
	index IndexAdmin
	cache CacheAdmin
}

func NewAdminHandler(index IndexAdmin, cache CacheAdmin) *AdminHandler {
	return &AdminHandler{index: index, cache: cache}
}

// Backfill runs synchronously; large tenants should use the CLI.
func (h *AdminHandler) Backfill(c *gin.Context) {
	var req dto.BackfillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	for _, k := range req.Kinds {
		if !k.Valid() {
			RespondError(c, domain.Invalid("kinds", "unknown kind "+string(k)), "backfill")
			return
		}
	}

	report, err := h.index.Backfill(c.Request.Context(), OrganizationID(c), indexer.BackfillOptions{
		Kinds:      req.Kinds,
		OnlyFailed: req.OnlyFailed,
	})
	if err != nil {
		RespondError(c, err, "backfill vector index")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) IndexStatus(c *gin.Context) {
	counts, err := h.index.Status(c.Request.Context(), OrganizationID(c))
	if err != nil {
		RespondError(c, err, "read index status")
		return
	}
	if counts == nil {
		counts = []model.IndexStatusCounts{}
	}
	c.JSON(http.StatusOK, dto.IndexStatusResponse{Kinds: counts})
}

// ClearCache drops the organization's cached search results.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	n, err := h.cache.ClearCache(c.Request.Context(), OrganizationID(c))
	if err != nil {
		RespondError(c, err, "clear search cache")
		return
	}
	c.JSON(http.StatusOK, dto.ClearCacheResponse{Cleared: n})
}
