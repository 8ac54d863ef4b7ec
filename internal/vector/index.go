// Package vector holds the semantic projection of the entity store: one
// logical collection per entity kind, searched by cosine similarity and always
// filtered by organization.
package vector

import (
	"context"
	"fmt"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
)

const defaultLimit = 5

// Payload keys shared by every kind. Kind-specific fields sit alongside them.
const (
	PayloadKey   = "key"
	PayloadTitle = "title"
	PayloadText  = "text"
	PayloadURL   = "url"
)

// Point is one embedded entity. ID is a deterministic UUID derived from
// (organization, kind, entity key), so re-indexing overwrites in place.
type Point struct {
	ID             string
	OrganizationID int64
	Kind           model.EntityKind
	EntityKey      string
	Text           string
	Vector         []float32
	Payload        map[string]any
}

type Hit struct {
	Kind      model.EntityKind
	EntityKey string
	Score     float64
	Payload   map[string]any
}

type Query struct {
	OrganizationID int64
	Kind           model.EntityKind
	Vector         []float32
	Limit          int
}

// Index is implemented by every vector backend. Search results are ordered by
// descending similarity.
type Index interface {
	Ensure(ctx context.Context) error
	Upsert(ctx context.Context, points ...Point) error
	Search(ctx context.Context, q Query) ([]Hit, error)
}

func (q Query) validate() (Query, error) {
	if q.OrganizationID <= 0 {
		return q, domain.Invalid("organization_id", "required")
	}
	if !q.Kind.Valid() {
		return q, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", q.Kind))
	}
	if len(q.Vector) == 0 {
		return q, domain.Invalid("vector", "empty")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	return q, nil
}

func validatePoint(p Point) error {
	if p.OrganizationID <= 0 {
		return domain.Invalid("organization_id", "required")
	}
	if !p.Kind.Valid() {
		return domain.Invalid("kind", fmt.Sprintf("unknown kind %q", p.Kind))
	}
	if p.ID == "" || p.EntityKey == "" {
		return domain.Invalid("id", "point id and entity key are required")
	}
	if len(p.Vector) == 0 {
		return domain.Invalid("vector", "empty")
	}
	return nil
}

// ToFloat32 narrows encoder output to the storage precision.
func ToFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
