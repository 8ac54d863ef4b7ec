// Package mapper normalizes source-system webhooks into entity records the
// indexer can ingest.
package mapper

import (
	"errors"

	"basegraph.app/correlate/internal/model"
)

// ErrUnsupportedEvent is returned for webhook events that carry no entities.
var ErrUnsupportedEvent = errors.New("unsupported webhook event")

// Batch holds the records extracted from one webhook delivery. Ticket
// references are left to the ingestion boundary, which derives them from
// message and description text.
type Batch struct {
	Commits      []model.Commit
	PullRequests []model.PullRequest
	Documents    []model.Document
}

func (b *Batch) Empty() bool {
	return len(b.Commits) == 0 && len(b.PullRequests) == 0 && len(b.Documents) == 0
}
