package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/http/dto"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

type DecisionAnalyzer interface {
	Analyze(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error)
	Get(ctx context.Context, orgID, decisionID int64) (*model.Decision, error)
	ByTicket(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error)
	Search(ctx context.Context, orgID int64, query string, limit int) ([]store.Scored[model.Decision], error)
	List(ctx context.Context, orgID int64, limit, offset int) ([]model.Decision, error)
	Status(ctx context.Context, orgID int64, ticketKey string) (*model.DecisionStatus, error)
}

type DecisionHandler struct {
	decisions DecisionAnalyzer
}

func NewDecisionHandler(decisions DecisionAnalyzer) *DecisionHandler {
	return &DecisionHandler{decisions: decisions}
}

// Analyze blocks until extraction finishes. A concurrent request for the same
// ticket gets 409.
func (h *DecisionHandler) Analyze(c *gin.Context) {
	d, err := h.decisions.Analyze(c.Request.Context(), OrganizationID(c), c.Param("key"))
	if err != nil {
		RespondError(c, err, "analyze decision")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DecisionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, domain.Invalid("id", "must be an integer"), "get decision")
		return
	}
	d, err := h.decisions.Get(c.Request.Context(), OrganizationID(c), id)
	if err != nil {
		RespondError(c, err, "get decision")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DecisionHandler) ByTicket(c *gin.Context) {
	d, err := h.decisions.ByTicket(c.Request.Context(), OrganizationID(c), c.Param("key"))
	if err != nil {
		RespondError(c, err, "get decision")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DecisionHandler) Search(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		RespondError(c, err, "search decisions")
		return
	}
	query := c.Query("q")
	scored, err := h.decisions.Search(c.Request.Context(), OrganizationID(c), query, limit)
	if err != nil {
		RespondError(c, err, "search decisions")
		return
	}
	c.JSON(http.StatusOK, dto.DecisionSearchResponse{Query: query, Hits: dto.ToDecisionSearchHits(scored)})
}

func (h *DecisionHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		RespondError(c, err, "list decisions")
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		RespondError(c, err, "list decisions")
		return
	}
	decisions, err := h.decisions.List(c.Request.Context(), OrganizationID(c), limit, offset)
	if err != nil {
		RespondError(c, err, "list decisions")
		return
	}
	if decisions == nil {
		decisions = []model.Decision{}
	}
	c.JSON(http.StatusOK, dto.DecisionListResponse{Decisions: decisions, Limit: limit, Offset: offset})
}

func (h *DecisionHandler) Status(c *gin.Context) {
	status, err := h.decisions.Status(c.Request.Context(), OrganizationID(c), c.Param("key"))
	if err != nil {
		RespondError(c, err, "get analysis status")
		return
	}
	c.JSON(http.StatusOK, status)
}
