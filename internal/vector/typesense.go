package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/model"
	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"
)

const (
	fieldOrganization = "organization_id"
	fieldEntityKey    = "entity_key"
	fieldText         = "text"
	fieldEmbedding    = "embedding"
	fieldPayload      = "payload_json"
)

type TypesenseConfig struct {
	URL              string
	APIKey           string
	CollectionPrefix string
	Dimension        int
}

// TypesenseIndex keeps one Typesense collection per entity kind.
type TypesenseIndex struct {
	client    *typesense.Client
	prefix    string
	dimension int
}

func NewTypesenseIndex(cfg TypesenseConfig) (*TypesenseIndex, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("typesense url is required")
	}
	prefix, err := common.Identifier(cfg.CollectionPrefix, "correlate")
	if err != nil {
		return nil, fmt.Errorf("collection prefix: %w", err)
	}
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(10*time.Second),
	)
	return &TypesenseIndex{client: client, prefix: prefix, dimension: cfg.Dimension}, nil
}

func (t *TypesenseIndex) collection(kind model.EntityKind) string {
	return t.prefix + "_" + string(kind)
}

func (t *TypesenseIndex) schema(kind model.EntityKind) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: t.collection(kind),
		Fields: []api.Field{
			{Name: fieldOrganization, Type: "int64", Facet: pointer.True()},
			{Name: fieldEntityKey, Type: "string"},
			{Name: fieldText, Type: "string"},
			{Name: fieldEmbedding, Type: "float[]", NumDim: pointer.Int(t.dimension)},
			{Name: fieldPayload, Type: "string", Index: pointer.False(), Optional: pointer.True()},
		},
	}
}

// Ensure creates any missing per-kind collection.
func (t *TypesenseIndex) Ensure(ctx context.Context) error {
	for _, kind := range model.AllKinds {
		if _, err := t.client.Collection(t.collection(kind)).Retrieve(ctx); err == nil {
			continue
		}
		if _, err := t.client.Collections().Create(ctx, t.schema(kind)); err != nil {
			var httpErr *typesense.HTTPError
			if errors.As(err, &httpErr) && httpErr.Status == http.StatusConflict {
				continue
			}
			return fmt.Errorf("creating collection %s: %w", t.collection(kind), err)
		}
	}
	return nil
}

func (t *TypesenseIndex) Upsert(ctx context.Context, points ...Point) error {
	for _, p := range points {
		if err := validatePoint(p); err != nil {
			return err
		}
		doc, err := toTypesenseDocument(p)
		if err != nil {
			return err
		}
		if _, err := t.client.Collection(t.collection(p.Kind)).Documents().Upsert(ctx, doc, &api.DocumentIndexParameters{}); err != nil {
			return fmt.Errorf("upserting %s %s: %w", p.Kind, p.EntityKey, err)
		}
	}
	return nil
}

func (t *TypesenseIndex) Search(ctx context.Context, q Query) ([]Hit, error) {
	q, err := q.validate()
	if err != nil {
		return nil, err
	}

	params := &api.SearchCollectionParams{
		Q:             pointer.String("*"),
		QueryBy:       pointer.String(fieldText),
		FilterBy:      pointer.String(organizationFilter(q.OrganizationID)),
		VectorQuery:   pointer.String(vectorQuery(q.Vector, q.Limit)),
		PerPage:       pointer.Int(q.Limit),
		ExcludeFields: pointer.String(fieldEmbedding),
	}
	result, err := t.client.Collection(t.collection(q.Kind)).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("searching %s collection: %w", q.Kind, err)
	}
	if result.Hits == nil {
		return nil, nil
	}

	hits := make([]Hit, 0, len(*result.Hits))
	for _, h := range *result.Hits {
		if h.Document == nil {
			continue
		}
		hit, err := fromTypesenseDocument(q.Kind, *h.Document)
		if err != nil {
			return nil, err
		}
		if h.VectorDistance != nil {
			// Typesense reports cosine distance in [0, 2].
			hit.Score = 1 - float64(*h.VectorDistance)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func organizationFilter(orgID int64) string {
	return fieldOrganization + ":=" + strconv.FormatInt(orgID, 10)
}

func vectorQuery(v []float32, k int) string {
	var b strings.Builder
	b.WriteString(fieldEmbedding)
	b.WriteString(":([")
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteString("], k:")
	b.WriteString(strconv.Itoa(k))
	b.WriteByte(')')
	return b.String()
}

func toTypesenseDocument(p Point) (map[string]any, error) {
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload for %s %s: %w", p.Kind, p.EntityKey, err)
	}
	return map[string]any{
		"id":              p.ID,
		fieldOrganization: p.OrganizationID,
		fieldEntityKey:    p.EntityKey,
		fieldText:         p.Text,
		fieldEmbedding:    p.Vector,
		fieldPayload:      string(payload),
	}, nil
}

func fromTypesenseDocument(kind model.EntityKind, doc map[string]any) (Hit, error) {
	hit := Hit{Kind: kind}
	hit.EntityKey, _ = doc[fieldEntityKey].(string)
	if raw, ok := doc[fieldPayload].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &hit.Payload); err != nil {
			return Hit{}, fmt.Errorf("decoding payload for %s %s: %w", kind, hit.EntityKey, err)
		}
	}
	return hit, nil
}
