package model

import "time"

// Document is a wiki-style page. SourceID is the page id in the originating system.
type Document struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	SourceID       string    `json:"source_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Space          string    `json:"space,omitempty"`
	URL            *string   `json:"url,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
	SyncedAt       time.Time `json:"synced_at"`
}

func (d Document) EntityKey() string { return d.SourceID }
