package store

import (
	"context"
	"time"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type documentStore struct {
	queries *sqlc.Queries
}

func newDocumentStore(queries *sqlc.Queries) DocumentStore {
	return &documentStore{queries: queries}
}

func (s *documentStore) Upsert(ctx context.Context, d *model.Document) (*model.Document, error) {
	if d.ID == 0 {
		d.ID = id.New()
	}
	updatedAt := d.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	row, err := s.queries.UpsertDocument(ctx, sqlc.UpsertDocumentParams{
		ID:             d.ID,
		OrganizationID: d.OrganizationID,
		SourceID:       d.SourceID,
		Title:          d.Title,
		Body:           d.Body,
		Space:          d.Space,
		URL:            d.URL,
		UpdatedAt:      toTimestamp(updatedAt),
	})
	if err != nil {
		return nil, err
	}
	result := toDocumentModel(row)
	return &result, nil
}

func (s *documentStore) Get(ctx context.Context, orgID int64, sourceID string) (*model.Document, error) {
	row, err := s.queries.GetDocument(ctx, sqlc.GetDocumentParams{
		OrganizationID: orgID,
		SourceID:       sourceID,
	})
	if err != nil {
		return nil, notFound(err)
	}
	result := toDocumentModel(row)
	return &result, nil
}

func (s *documentStore) ListMentioning(ctx context.Context, orgID int64, term string, limit int32) ([]model.Document, error) {
	rows, err := s.queries.ListDocumentsMentioning(ctx, sqlc.ListDocumentsMentioningParams{
		OrganizationID: orgID,
		Term:           term,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toDocumentModel), nil
}

func (s *documentStore) ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Document, error) {
	rows, err := s.queries.ListDocumentsForIndex(ctx, sqlc.ListDocumentsForIndexParams{
		OrganizationID: orgID,
		AfterID:        afterID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toDocumentModel), nil
}

func (s *documentStore) SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Document], error) {
	rows, err := s.queries.SearchDocumentsFuzzy(ctx, sqlc.SearchDocumentsFuzzyParams{
		Query:          query,
		OrganizationID: orgID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.SearchDocumentsFuzzyRow) Scored[model.Document] {
		return Scored[model.Document]{Item: toDocumentModel(r.Document), Score: r.Similarity}
	}), nil
}

func toDocumentModel(row sqlc.Document) model.Document {
	return model.Document{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		SourceID:       row.SourceID,
		Title:          row.Title,
		Body:           row.Body,
		Space:          row.Space,
		URL:            row.URL,
		UpdatedAt:      row.UpdatedAt.Time,
		SyncedAt:       row.SyncedAt.Time,
	}
}
