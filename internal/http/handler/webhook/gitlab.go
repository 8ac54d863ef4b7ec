package webhook

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/correlate/internal/http/handler"
	"basegraph.app/correlate/internal/service"
)

const maxBodyBytes = 5 << 20

type GitLabWebhookHandler struct {
	ingest service.IngestService
	secret string
}

// NewGitLabWebhookHandler checks X-Gitlab-Token against secret when one is
// configured.
func NewGitLabWebhookHandler(ingest service.IngestService, secret string) *GitLabWebhookHandler {
	return &GitLabWebhookHandler{ingest: ingest, secret: secret}
}

func (h *GitLabWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	if h.secret != "" {
		token := c.GetHeader("X-Gitlab-Token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing webhook token"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
	}

	eventType := gitlab.HookEventType(c.Request)
	if eventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Gitlab-Event header"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := h.ingest.GitLabWebhook(ctx, handler.OrganizationID(c), eventType, body)
	if err != nil {
		slog.WarnContext(ctx, "gitlab webhook not processed",
			"event_type", eventType,
			"error", err)
		handler.RespondError(c, err, "process gitlab event")
		return
	}

	if result.Ignored {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "event type not supported"})
		return
	}
	c.JSON(http.StatusOK, result)
}
