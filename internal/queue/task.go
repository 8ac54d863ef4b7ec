package queue

import "basegraph.app/correlate/internal/model"

type TaskType string

const (
	// TaskTypeIndexEntity asks a worker to embed one stored entity and upsert
	// it into the vector index.
	TaskTypeIndexEntity TaskType = "index_entity"
)

type IndexTask struct {
	OrganizationID int64
	Kind           model.EntityKind
	EntityKey      string
	Attempt        int
	// Trace carries W3C propagation fields from the ingest request.
	Trace map[string]string
}
