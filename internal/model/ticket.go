package model

import (
	"slices"
	"time"
)

// Ticket is an issue-tracker item. Key is unique per organization.
type Ticket struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	Key            string     `json:"key"`
	Summary        string     `json:"summary"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	IssueType      string     `json:"issue_type"`
	Priority       string     `json:"priority"`
	Assignee       *string    `json:"assignee,omitempty"`
	Reporter       *string    `json:"reporter,omitempty"`
	Labels         []string   `json:"labels"`
	Components     []string   `json:"components"`
	URL            *string    `json:"url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	SyncedAt       time.Time  `json:"synced_at"`
}

// TerminalStatuses are workflow states that end a ticket's lifecycle.
var TerminalStatuses = []string{"Done", "Closed", "Resolved", "Cancelled"}

func (t Ticket) IsTerminal() bool {
	return slices.Contains(TerminalStatuses, t.Status)
}

// DecisionIssueTypes are the issue types expected to carry recorded design rationale.
var DecisionIssueTypes = []string{"story", "epic", "feature"}

func (t Ticket) EntityKey() string { return t.Key }
