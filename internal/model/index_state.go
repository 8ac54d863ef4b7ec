package model

import "time"

type IndexStatus string

const (
	IndexStatusPending IndexStatus = "pending"
	IndexStatusIndexed IndexStatus = "indexed"
	IndexStatusFailed  IndexStatus = "failed"
)

// IndexState records the outcome of the last vector write for one entity, so
// backfill can target exactly the entities whose projection is behind.
type IndexState struct {
	OrganizationID int64       `json:"organization_id"`
	Kind           EntityKind  `json:"kind"`
	EntityKey      string      `json:"entity_key"`
	Status         IndexStatus `json:"status"`
	Attempts       int32       `json:"attempts"`
	LastError      *string     `json:"last_error,omitempty"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type IndexStatusCounts struct {
	Kind    EntityKind `json:"kind"`
	Pending int64      `json:"pending"`
	Indexed int64      `json:"indexed"`
	Failed  int64      `json:"failed"`
}

// BackfillCounts is the per-kind outcome of a backfill run.
type BackfillCounts struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

type BackfillReport struct {
	OrganizationID int64                         `json:"organization_id"`
	Kinds          map[EntityKind]BackfillCounts `json:"kinds"`
	StartedAt      time.Time                     `json:"started_at"`
	FinishedAt     time.Time                     `json:"finished_at"`
}
