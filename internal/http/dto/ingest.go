package dto

import (
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/service"
)

type IngestTicketsRequest struct {
	Tickets []model.Ticket `json:"tickets" binding:"required"`
}

type IngestCommitsRequest struct {
	Commits []model.Commit `json:"commits" binding:"required"`
}

type IngestPullRequestsRequest struct {
	PullRequests []model.PullRequest `json:"pull_requests" binding:"required"`
}

type IngestCodeFilesRequest struct {
	CodeFiles []service.CodeFileInput `json:"code_files" binding:"required"`
}

type IngestDocumentsRequest struct {
	Documents []model.Document `json:"documents" binding:"required"`
}

// IngestResponse carries the per-entity {primary, secondary} outcomes.
// Warning is set when some vector writes failed after the entity store
// accepted them.
type IngestResponse struct {
	*indexer.Summary
	Warning string `json:"warning,omitempty"`
}
