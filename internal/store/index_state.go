package store

import (
	"context"

	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type indexStateStore struct {
	queries *sqlc.Queries
}

func newIndexStateStore(queries *sqlc.Queries) IndexStateStore {
	return &indexStateStore{queries: queries}
}

func (s *indexStateStore) Record(ctx context.Context, state model.IndexState) error {
	return s.queries.UpsertIndexState(ctx, sqlc.UpsertIndexStateParams{
		OrganizationID: state.OrganizationID,
		Kind:           string(state.Kind),
		EntityKey:      state.EntityKey,
		Status:         string(state.Status),
		LastError:      state.LastError,
	})
}

// Counts folds the (kind, status) histogram into one row per kind, in
// model.AllKinds order. Kinds with no recorded writes report zeros.
func (s *indexStateStore) Counts(ctx context.Context, orgID int64) ([]model.IndexStatusCounts, error) {
	rows, err := s.queries.CountIndexStates(ctx, orgID)
	if err != nil {
		return nil, err
	}

	byKind := make(map[model.EntityKind]*model.IndexStatusCounts, len(model.AllKinds))
	result := make([]model.IndexStatusCounts, len(model.AllKinds))
	for i, kind := range model.AllKinds {
		result[i].Kind = kind
		byKind[kind] = &result[i]
	}

	for _, row := range rows {
		counts, ok := byKind[model.EntityKind(row.Kind)]
		if !ok {
			continue
		}
		switch model.IndexStatus(row.Status) {
		case model.IndexStatusPending:
			counts.Pending += row.Total
		case model.IndexStatusIndexed:
			counts.Indexed += row.Total
		case model.IndexStatusFailed:
			counts.Failed += row.Total
		}
	}
	return result, nil
}

func (s *indexStateStore) ListByStatus(ctx context.Context, orgID int64, kind model.EntityKind, status model.IndexStatus, limit int32) ([]model.IndexState, error) {
	rows, err := s.queries.ListIndexStatesByStatus(ctx, sqlc.ListIndexStatesByStatusParams{
		OrganizationID: orgID,
		Kind:           string(kind),
		Status:         string(status),
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toIndexStateModel), nil
}

func (s *indexStateStore) OrganizationIDs(ctx context.Context) ([]int64, error) {
	return s.queries.ListOrganizationIDs(ctx)
}

func toIndexStateModel(row sqlc.IndexState) model.IndexState {
	return model.IndexState{
		OrganizationID: row.OrganizationID,
		Kind:           model.EntityKind(row.Kind),
		EntityKey:      row.EntityKey,
		Status:         model.IndexStatus(row.Status),
		Attempts:       row.Attempts,
		LastError:      row.LastError,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
