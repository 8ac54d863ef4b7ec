package vector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// Conn is the subset of pgxpool.Pool used by PGVectorIndex.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PGVectorIndex stores embeddings in the entity_embeddings table next to the
// relational entities. Each kind is a logical collection selected by the kind
// column.
type PGVectorIndex struct {
	conn      Conn
	dimension int
}

func NewPGVectorIndex(conn Conn, dimension int) *PGVectorIndex {
	return &PGVectorIndex{conn: conn, dimension: dimension}
}

// Ensure checks that the extension and table exist. Migrations create them.
func (p *PGVectorIndex) Ensure(ctx context.Context) error {
	rows, err := p.conn.Query(ctx, `SELECT 1 FROM pg_extension WHERE extname = 'vector'`)
	if err != nil {
		return fmt.Errorf("checking pgvector extension: %w", err)
	}
	found := rows.Next()
	rows.Close()
	if !found {
		return fmt.Errorf("pgvector extension is not installed")
	}
	if _, err := p.conn.Exec(ctx, `SELECT 1 FROM entity_embeddings LIMIT 1`); err != nil {
		return fmt.Errorf("checking entity_embeddings: %w", err)
	}
	return nil
}

const upsertEmbedding = `
INSERT INTO entity_embeddings (organization_id, kind, entity_key, point_id, embedding, payload, updated_at)
VALUES ($1, $2, $3, $4::text::uuid, $5, $6, now())
ON CONFLICT (organization_id, kind, entity_key) DO UPDATE SET
    point_id = EXCLUDED.point_id,
    embedding = EXCLUDED.embedding,
    payload = EXCLUDED.payload,
    updated_at = now()`

func (p *PGVectorIndex) Upsert(ctx context.Context, points ...Point) error {
	if len(points) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, pt := range points {
		if err := validatePoint(pt); err != nil {
			return err
		}
		if p.dimension > 0 && len(pt.Vector) != p.dimension {
			return fmt.Errorf("vector for %s %s has %d dimensions, want %d", pt.Kind, pt.EntityKey, len(pt.Vector), p.dimension)
		}
		payload, err := json.Marshal(pt.Payload)
		if err != nil {
			return fmt.Errorf("marshaling payload for %s %s: %w", pt.Kind, pt.EntityKey, err)
		}
		batch.Queue(upsertEmbedding,
			pt.OrganizationID, string(pt.Kind), pt.EntityKey, pt.ID, pgvector.NewVector(pt.Vector), payload)
	}

	results := p.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range points {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting embedding: %w", err)
		}
	}
	return nil
}

const searchEmbeddings = `
SELECT entity_key, payload, (1 - (embedding <=> $1))::float8 AS score
FROM entity_embeddings
WHERE organization_id = $2 AND kind = $3
ORDER BY embedding <=> $1
LIMIT $4`

func (p *PGVectorIndex) Search(ctx context.Context, q Query) ([]Hit, error) {
	q, err := q.validate()
	if err != nil {
		return nil, err
	}

	rows, err := p.conn.Query(ctx, searchEmbeddings,
		pgvector.NewVector(q.Vector), q.OrganizationID, string(q.Kind), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s embeddings: %w", q.Kind, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			key     string
			payload []byte
			score   float64
		)
		if err := rows.Scan(&key, &payload, &score); err != nil {
			return nil, fmt.Errorf("scanning %s embedding: %w", q.Kind, err)
		}
		hit := Hit{Kind: q.Kind, EntityKey: key, Score: score}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &hit.Payload); err != nil {
				return nil, fmt.Errorf("decoding payload for %s %s: %w", q.Kind, key, err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
