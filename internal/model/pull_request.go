package model

import (
	"fmt"
	"time"
)

type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateMerged PullRequestState = "merged"
	PullRequestStateClosed PullRequestState = "closed"
)

func (s PullRequestState) Valid() bool {
	switch s {
	case PullRequestStateOpen, PullRequestStateMerged, PullRequestStateClosed:
		return true
	}
	return false
}

// PullRequest is unique per organization, repository and number.
type PullRequest struct {
	ID               int64            `json:"id"`
	OrganizationID   int64            `json:"organization_id"`
	Repository       string           `json:"repository"`
	Number           int64            `json:"number"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	State            PullRequestState `json:"state"`
	AuthorName       string           `json:"author_name"`
	FilesChanged     []string         `json:"files_changed"`
	TicketReferences []string         `json:"ticket_references"`
	URL              *string          `json:"url,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	MergedAt         *time.Time       `json:"merged_at,omitempty"`
	SyncedAt         time.Time        `json:"synced_at"`
}

// Ref renders the pull request as repository#number.
func (p PullRequest) Ref() string {
	return fmt.Sprintf("%s#%d", p.Repository, p.Number)
}

func (p PullRequest) EntityKey() string { return p.Ref() }
