package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"basegraph.app/correlate/internal/model"
)

type memoryKey struct {
	org  int64
	kind model.EntityKind
}

// MemoryIndex is an in-process Index with exact cosine search.
type MemoryIndex struct {
	mu     sync.RWMutex
	points map[memoryKey]map[string]Point
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{points: make(map[memoryKey]map[string]Point)}
}

func (m *MemoryIndex) Ensure(context.Context) error { return nil }

func (m *MemoryIndex) Upsert(_ context.Context, points ...Point) error {
	for _, p := range points {
		if err := validatePoint(p); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		k := memoryKey{org: p.OrganizationID, kind: p.Kind}
		if m.points[k] == nil {
			m.points[k] = make(map[string]Point)
		}
		m.points[k][p.ID] = p
	}
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, q Query) ([]Hit, error) {
	q, err := q.validate()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	collection := m.points[memoryKey{org: q.OrganizationID, kind: q.Kind}]
	hits := make([]Hit, 0, len(collection))
	for _, p := range collection {
		hits = append(hits, Hit{
			Kind:      p.Kind,
			EntityKey: p.EntityKey,
			Score:     cosine(q.Vector, p.Vector),
			Payload:   p.Payload,
		})
	}
	m.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].EntityKey < hits[j].EntityKey
		}
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// Len reports the number of points stored for one organization and kind.
func (m *MemoryIndex) Len(orgID int64, kind model.EntityKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points[memoryKey{org: orgID, kind: kind}])
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
