package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/common/logger"
)

type contextKey string

const (
	OrganizationHeader = "X-Organization-ID"
	AdminKeyHeader     = "X-Admin-Key"

	organizationContextKey contextKey = "organization_id"
)

// RequireOrganization resolves the tenant from the X-Organization-ID header,
// falling back to the organization_id query parameter for webhook senders
// that cannot set headers. Every downstream log line carries it.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(OrganizationHeader))
		if raw == "" {
			raw = c.Query("organization_id")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + OrganizationHeader + " header"})
			return
		}
		orgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || orgID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), organizationContextKey, orgID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{OrganizationID: &orgID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func OrganizationID(ctx context.Context) (int64, bool) {
	orgID, ok := ctx.Value(organizationContextKey).(int64)
	return orgID, ok
}

// RequireAdminKey rejects requests without the configured key. An empty key
// disables the check.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
