package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/service"
)

type EntityHandler struct {
	entities service.EntityService
}

func NewEntityHandler(entities service.EntityService) *EntityHandler {
	return &EntityHandler{entities: entities}
}

func (h *EntityHandler) Ticket(c *gin.Context) {
	t, err := h.entities.Ticket(c.Request.Context(), OrganizationID(c), c.Param("key"))
	if err != nil {
		RespondError(c, err, "get ticket")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *EntityHandler) Commit(c *gin.Context) {
	commit, err := h.entities.Commit(c.Request.Context(), OrganizationID(c), c.Param("sha"))
	if err != nil {
		RespondError(c, err, "get commit")
		return
	}
	c.JSON(http.StatusOK, commit)
}

// PullRequest takes the repository as a query parameter since it contains
// slashes.
func (h *EntityHandler) PullRequest(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		RespondError(c, domain.Invalid("number", "must be an integer"), "get pull request")
		return
	}
	pr, err := h.entities.PullRequest(c.Request.Context(), OrganizationID(c), c.Query("repository"), number)
	if err != nil {
		RespondError(c, err, "get pull request")
		return
	}
	c.JSON(http.StatusOK, pr)
}

func (h *EntityHandler) CodeFile(c *gin.Context) {
	f, err := h.entities.CodeFile(c.Request.Context(), OrganizationID(c), c.Query("repository"), c.Query("path"))
	if err != nil {
		RespondError(c, err, "get code file")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *EntityHandler) Document(c *gin.Context) {
	d, err := h.entities.Document(c.Request.Context(), OrganizationID(c), c.Query("source_id"))
	if err != nil {
		RespondError(c, err, "get document")
		return
	}
	c.JSON(http.StatusOK, d)
}
