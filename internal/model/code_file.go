package model

import "time"

// CodeFile is the latest snapshot of a file in a repository.
type CodeFile struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Repository     string    `json:"repository"`
	FilePath       string    `json:"file_path"`
	Language       string    `json:"language"`
	Functions      []string  `json:"functions"`
	Classes        []string  `json:"classes"`
	SizeBytes      int64     `json:"size_bytes"`
	URL            *string   `json:"url,omitempty"`
	SyncedAt       time.Time `json:"synced_at"`
}

// EntityKey is repository:file_path.
func (f CodeFile) EntityKey() string { return f.Repository + ":" + f.FilePath }
