package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/http/dto"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
	"basegraph.app/correlate/internal/synth"
)

type Searcher interface {
	Search(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int) ([]model.SearchHit, error)
}

type Asker interface {
	Ask(ctx context.Context, orgID int64, q synth.Query) (*model.Answer, error)
}

type SearchHandler struct {
	searcher Searcher
	asker    Asker
}

// NewSearchHandler accepts a nil asker when no chat model is configured;
// Ask is then not routed.
func NewSearchHandler(searcher Searcher, asker Asker) *SearchHandler {
	return &SearchHandler{searcher: searcher, asker: asker}
}

func (h *SearchHandler) Search(c *gin.Context) {
	kind := model.EntityKind(c.Query("kind"))
	if !kind.Valid() {
		RespondError(c, domain.Invalid("kind", "must be one of ticket, commit, pull_request, code_file, document"), "search")
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		RespondError(c, err, "search")
		return
	}

	query := c.Query("q")
	hits, err := h.searcher.Search(c.Request.Context(), OrganizationID(c), kind, query, limit)
	if err != nil {
		RespondError(c, err, "search")
		return
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Kind: kind, Query: query, Hits: hits})
}

func (h *SearchHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	filter := retriever.AllSources()
	if req.Sources != nil {
		filter = *req.Sources
	}

	answer, err := h.asker.Ask(c.Request.Context(), OrganizationID(c), synth.Query{
		Question:  req.Question,
		Filter:    filter,
		SessionID: req.SessionID,
	})
	if err != nil {
		RespondError(c, err, "answer question")
		return
	}
	c.JSON(http.StatusOK, answer)
}
