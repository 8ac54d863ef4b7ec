package store

import (
	"context"
	"time"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type ticketStore struct {
	queries *sqlc.Queries
}

func newTicketStore(queries *sqlc.Queries) TicketStore {
	return &ticketStore{queries: queries}
}

func (s *ticketStore) Upsert(ctx context.Context, t *model.Ticket) (*model.Ticket, error) {
	if t.ID == 0 {
		t.ID = id.New()
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	row, err := s.queries.UpsertTicket(ctx, sqlc.UpsertTicketParams{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		TicketKey:      t.Key,
		Summary:        t.Summary,
		Description:    t.Description,
		Status:         t.Status,
		IssueType:      t.IssueType,
		Priority:       t.Priority,
		Assignee:       t.Assignee,
		Reporter:       t.Reporter,
		Labels:         nonNil(t.Labels),
		Components:     nonNil(t.Components),
		URL:            t.URL,
		CreatedAt:      toTimestamp(createdAt),
		UpdatedAt:      toTimestamp(updatedAt),
		ResolvedAt:     toNullableTimestamp(t.ResolvedAt),
	})
	if err != nil {
		return nil, err
	}
	ticket := toTicketModel(row)
	return &ticket, nil
}

func (s *ticketStore) GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error) {
	row, err := s.queries.GetTicketByKey(ctx, sqlc.GetTicketByKeyParams{
		OrganizationID: orgID,
		TicketKey:      key,
	})
	if err != nil {
		return nil, notFound(err)
	}
	ticket := toTicketModel(row)
	return &ticket, nil
}

func (s *ticketStore) ListByKeys(ctx context.Context, orgID int64, keys []string) ([]model.Ticket, error) {
	if len(keys) == 0 {
		return []model.Ticket{}, nil
	}
	rows, err := s.queries.ListTicketsByKeys(ctx, sqlc.ListTicketsByKeysParams{
		OrganizationID: orgID,
		TicketKeys:     keys,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toTicketModel), nil
}

func (s *ticketStore) List(ctx context.Context, f TicketFilter) ([]model.Ticket, error) {
	rows, err := s.queries.ListTickets(ctx, sqlc.ListTicketsParams{
		OrganizationID: f.OrganizationID,
		Status:         f.Status,
		IssueType:      f.IssueType,
		Assignee:       f.Assignee,
		Label:          f.Label,
		Component:      f.Component,
		CreatedFrom:    toNullableTimestamp(f.CreatedFrom),
		CreatedTo:      toNullableTimestamp(f.CreatedTo),
		Limit:          f.Limit,
		Offset:         f.Offset,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toTicketModel), nil
}

func (s *ticketStore) SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Ticket], error) {
	rows, err := s.queries.SearchTicketsFuzzy(ctx, sqlc.SearchTicketsFuzzyParams{
		Query:          query,
		OrganizationID: orgID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.SearchTicketsFuzzyRow) Scored[model.Ticket] {
		return Scored[model.Ticket]{Item: toTicketModel(r.Ticket), Score: r.Similarity}
	}), nil
}

func (s *ticketStore) ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Ticket, error) {
	rows, err := s.queries.ListTicketsForIndex(ctx, sqlc.ListTicketsForIndexParams{
		OrganizationID: orgID,
		AfterID:        afterID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toTicketModel), nil
}

func (s *ticketStore) ListOrphaned(ctx context.Context, orgID int64, since time.Time, limit int32) ([]model.Ticket, error) {
	rows, err := s.queries.ListOrphanedTickets(ctx, sqlc.ListOrphanedTicketsParams{
		OrganizationID: orgID,
		Since:          toTimestamp(since),
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toTicketModel), nil
}

func (s *ticketStore) ListStale(ctx context.Context, orgID int64, cutoff time.Time, limit int32) ([]model.Ticket, error) {
	rows, err := s.queries.ListStaleTickets(ctx, sqlc.ListStaleTicketsParams{
		OrganizationID:   orgID,
		Cutoff:           toTimestamp(cutoff),
		TerminalStatuses: model.TerminalStatuses,
		Limit:            limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toTicketModel), nil
}

func (s *ticketStore) ListMissingDecision(ctx context.Context, orgID int64, issueTypes []string, limit int32) ([]TicketCommitCount, error) {
	rows, err := s.queries.ListMissingDecisionTickets(ctx, sqlc.ListMissingDecisionTicketsParams{
		OrganizationID: orgID,
		IssueTypes:     issueTypes,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.ListMissingDecisionTicketsRow) TicketCommitCount {
		return TicketCommitCount{Ticket: toTicketModel(r.Ticket), CommitCount: r.CommitCount}
	}), nil
}

func (s *ticketStore) ListSimilar(ctx context.Context, q SimilarTicketsQuery) ([]Scored[model.Ticket], error) {
	rows, err := s.queries.ListSimilarTickets(ctx, sqlc.ListSimilarTicketsParams{
		Summary:        q.Summary,
		OrganizationID: q.OrganizationID,
		TicketKey:      q.TicketKey,
		Components:     nonNil(q.Components),
		Threshold:      q.Threshold,
		Limit:          q.Limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.ListSimilarTicketsRow) Scored[model.Ticket] {
		return Scored[model.Ticket]{Item: toTicketModel(r.Ticket), Score: r.Similarity}
	}), nil
}

func toTicketModel(row sqlc.Ticket) model.Ticket {
	return model.Ticket{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Key:            row.TicketKey,
		Summary:        row.Summary,
		Description:    row.Description,
		Status:         row.Status,
		IssueType:      row.IssueType,
		Priority:       row.Priority,
		Assignee:       row.Assignee,
		Reporter:       row.Reporter,
		Labels:         row.Labels,
		Components:     row.Components,
		URL:            row.URL,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
		ResolvedAt:     toTimePointer(row.ResolvedAt),
		SyncedAt:       row.SyncedAt.Time,
	}
}
