package model

import "time"

// Commit is a source-control commit. SHA is unique per organization and repository.
type Commit struct {
	ID               int64     `json:"id"`
	OrganizationID   int64     `json:"organization_id"`
	Repository       string    `json:"repository"`
	SHA              string    `json:"sha"`
	Message          string    `json:"message"`
	AuthorName       string    `json:"author_name"`
	AuthorEmail      string    `json:"author_email"`
	CommitDate       time.Time `json:"commit_date"`
	Additions        int32     `json:"additions"`
	Deletions        int32     `json:"deletions"`
	FilesChanged     []string  `json:"files_changed"`
	TicketReferences []string  `json:"ticket_references"`
	URL              *string   `json:"url,omitempty"`
	SyncedAt         time.Time `json:"synced_at"`
}

func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

func (c Commit) LinesChanged() int {
	return int(c.Additions) + int(c.Deletions)
}

// EntityKey is repository:sha.
func (c Commit) EntityKey() string { return c.Repository + ":" + c.SHA }
