package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/http/dto"
	"basegraph.app/correlate/internal/model"
)

type ImpactAnalyzer interface {
	File(ctx context.Context, orgID int64, path string) (*model.FileImpact, error)
	Ticket(ctx context.Context, orgID int64, key string) (*model.TicketImpact, error)
	Commit(ctx context.Context, orgID int64, sha string) (*model.CommitImpact, error)
	SuggestReviewers(ctx context.Context, orgID int64, paths []string) ([]model.Reviewer, error)
}

type ImpactHandler struct {
	impact ImpactAnalyzer
}

func NewImpactHandler(impact ImpactAnalyzer) *ImpactHandler {
	return &ImpactHandler{impact: impact}
}

func (h *ImpactHandler) File(c *gin.Context) {
	report, err := h.impact.File(c.Request.Context(), OrganizationID(c), c.Query("path"))
	if err != nil {
		RespondError(c, err, "analyze file impact")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ImpactHandler) Ticket(c *gin.Context) {
	report, err := h.impact.Ticket(c.Request.Context(), OrganizationID(c), c.Param("key"))
	if err != nil {
		RespondError(c, err, "analyze ticket impact")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ImpactHandler) Commit(c *gin.Context) {
	report, err := h.impact.Commit(c.Request.Context(), OrganizationID(c), c.Param("sha"))
	if err != nil {
		RespondError(c, err, "analyze commit impact")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ImpactHandler) Reviewers(c *gin.Context) {
	var req dto.SuggestReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	reviewers, err := h.impact.SuggestReviewers(c.Request.Context(), OrganizationID(c), req.Paths)
	if err != nil {
		RespondError(c, err, "suggest reviewers")
		return
	}
	c.JSON(http.StatusOK, dto.SuggestReviewersResponse{Reviewers: reviewers})
}
