package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/http/dto"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/service"
)

type IngestHandler struct {
	ingest   service.IngestService
	importer service.GitLabImporter
	gitlab   config.GitLabConfig
}

func NewIngestHandler(ingest service.IngestService, importer service.GitLabImporter, gitlab config.GitLabConfig) *IngestHandler {
	return &IngestHandler{ingest: ingest, importer: importer, gitlab: gitlab}
}

func (h *IngestHandler) Tickets(c *gin.Context) {
	var req dto.IngestTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sum, err := h.ingest.Tickets(c.Request.Context(), OrganizationID(c), req.Tickets)
	respondIngest(c, sum, err)
}

func (h *IngestHandler) Commits(c *gin.Context) {
	var req dto.IngestCommitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sum, err := h.ingest.Commits(c.Request.Context(), OrganizationID(c), req.Commits)
	respondIngest(c, sum, err)
}

func (h *IngestHandler) PullRequests(c *gin.Context) {
	var req dto.IngestPullRequestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sum, err := h.ingest.PullRequests(c.Request.Context(), OrganizationID(c), req.PullRequests)
	respondIngest(c, sum, err)
}

func (h *IngestHandler) CodeFiles(c *gin.Context) {
	var req dto.IngestCodeFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sum, err := h.ingest.CodeFiles(c.Request.Context(), OrganizationID(c), req.CodeFiles)
	respondIngest(c, sum, err)
}

func (h *IngestHandler) Documents(c *gin.Context) {
	var req dto.IngestDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sum, err := h.ingest.Documents(c.Request.Context(), OrganizationID(c), req.Documents)
	respondIngest(c, sum, err)
}

// ImportGitLab pulls a project's history. Token and instance fall back to the
// server's GitLab settings.
func (h *IngestHandler) ImportGitLab(c *gin.Context) {
	var req dto.ImportGitLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	opts := service.GitLabImportOptions{
		InstanceURL:  req.InstanceURL,
		Token:        req.Token,
		Project:      req.Project,
		Ref:          strings.TrimSpace(req.Ref),
		Since:        req.Since,
		MaxCommits:   req.MaxCommits,
		MaxMerges:    req.MaxMerges,
		IncludeWiki:  req.IncludeWiki,
		IncludeFiles: req.IncludeFiles,
	}
	if opts.InstanceURL == "" {
		opts.InstanceURL = h.gitlab.InstanceURL
	}
	if opts.Token == "" {
		opts.Token = h.gitlab.Token
	}

	result, err := h.importer.Import(c.Request.Context(), OrganizationID(c), opts)
	if err != nil {
		RespondError(c, err, "import gitlab project")
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondIngest answers 200 when both writes landed and 207 when the entity
// store accepted the batch but some vector writes failed. A store failure
// still reports what was written before it.
func respondIngest(c *gin.Context, sum *indexer.Summary, err error) {
	if err != nil {
		if sum != nil && sum.Stored > 0 && !errors.Is(err, domain.ErrValidation) {
			slog.ErrorContext(c.Request.Context(), "ingest stopped after partial write",
				"kind", sum.Kind, "stored", sum.Stored, "received", sum.Received, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "entity store write failed", "summary": sum})
			return
		}
		RespondError(c, err, "ingest")
		return
	}

	if warn := sum.PartialFailure(); warn != nil {
		c.JSON(http.StatusMultiStatus, dto.IngestResponse{Summary: sum, Warning: warn.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.IngestResponse{Summary: sum})
}
