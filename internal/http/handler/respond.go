package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/http/middleware"
)

// RespondError maps domain errors onto status codes. action names the
// operation in the generic 500 message.
func RespondError(c *gin.Context, err error, action string) {
	ctx := c.Request.Context()

	var invalid *domain.ValidationError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "field": invalid.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDependencyTimeout):
		slog.WarnContext(ctx, "dependency timed out", "action", action, "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": action + " timed out", "retryable": true})
	case errors.Is(err, domain.ErrAnalysisInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, domain.ErrBackfillRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAnalysisFailure):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, "request failed", "action", action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}

func bindError(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// OrganizationID is the tenant resolved by middleware.RequireOrganization.
func OrganizationID(c *gin.Context) int64 {
	orgID, _ := middleware.OrganizationID(c.Request.Context())
	return orgID
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	return n, nil
}
