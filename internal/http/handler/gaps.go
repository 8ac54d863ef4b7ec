package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/model"
)

type GapDetector interface {
	OrphanedTickets(ctx context.Context, orgID int64, days int) (*model.OrphanedTicketsReport, error)
	Undocumented(ctx context.Context, orgID int64) (*model.UndocumentedReport, error)
	MissingDecisions(ctx context.Context, orgID int64) (*model.MissingDecisionsReport, error)
	StaleWork(ctx context.Context, orgID int64, days int) (*model.StaleWorkReport, error)
	Comprehensive(ctx context.Context, orgID int64) (*model.ComprehensiveGapReport, error)
}

type GapHandler struct {
	gaps GapDetector
}

func NewGapHandler(gaps GapDetector) *GapHandler {
	return &GapHandler{gaps: gaps}
}

func (h *GapHandler) Orphaned(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		RespondError(c, err, "detect orphaned tickets")
		return
	}
	report, err := h.gaps.OrphanedTickets(c.Request.Context(), OrganizationID(c), days)
	if err != nil {
		RespondError(c, err, "detect orphaned tickets")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *GapHandler) Undocumented(c *gin.Context) {
	report, err := h.gaps.Undocumented(c.Request.Context(), OrganizationID(c))
	if err != nil {
		RespondError(c, err, "detect undocumented changes")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *GapHandler) MissingDecisions(c *gin.Context) {
	report, err := h.gaps.MissingDecisions(c.Request.Context(), OrganizationID(c))
	if err != nil {
		RespondError(c, err, "detect missing decisions")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *GapHandler) Stale(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		RespondError(c, err, "detect stale work")
		return
	}
	report, err := h.gaps.StaleWork(c.Request.Context(), OrganizationID(c), days)
	if err != nil {
		RespondError(c, err, "detect stale work")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *GapHandler) Comprehensive(c *gin.Context) {
	report, err := h.gaps.Comprehensive(c.Request.Context(), OrganizationID(c))
	if err != nil {
		RespondError(c, err, "build gap report")
		return
	}
	c.JSON(http.StatusOK, report)
}
