package store

import (
	"context"
	"time"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type pullRequestStore struct {
	queries *sqlc.Queries
}

func newPullRequestStore(queries *sqlc.Queries) PullRequestStore {
	return &pullRequestStore{queries: queries}
}

func (s *pullRequestStore) Upsert(ctx context.Context, pr *model.PullRequest) (*model.PullRequest, error) {
	if pr.ID == 0 {
		pr.ID = id.New()
	}
	createdAt := pr.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row, err := s.queries.UpsertPullRequest(ctx, sqlc.UpsertPullRequestParams{
		ID:               pr.ID,
		OrganizationID:   pr.OrganizationID,
		Repository:       pr.Repository,
		Number:           pr.Number,
		Title:            pr.Title,
		Description:      pr.Description,
		State:            string(pr.State),
		AuthorName:       pr.AuthorName,
		FilesChanged:     nonNil(pr.FilesChanged),
		TicketReferences: nonNil(pr.TicketReferences),
		URL:              pr.URL,
		CreatedAt:        toTimestamp(createdAt),
		MergedAt:         toNullableTimestamp(pr.MergedAt),
	})
	if err != nil {
		return nil, err
	}
	result := toPullRequestModel(row)
	return &result, nil
}

func (s *pullRequestStore) Get(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error) {
	row, err := s.queries.GetPullRequest(ctx, sqlc.GetPullRequestParams{
		OrganizationID: orgID,
		Repository:     repository,
		Number:         number,
	})
	if err != nil {
		return nil, notFound(err)
	}
	result := toPullRequestModel(row)
	return &result, nil
}

func (s *pullRequestStore) ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.PullRequest, error) {
	rows, err := s.queries.ListPullRequestsByTicket(ctx, sqlc.ListPullRequestsByTicketParams{
		OrganizationID: orgID,
		TicketKey:      ticketKey,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toPullRequestModel), nil
}

func (s *pullRequestStore) ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.PullRequest, error) {
	rows, err := s.queries.ListPullRequestsTouchingFile(ctx, sqlc.ListPullRequestsTouchingFileParams{
		OrganizationID: orgID,
		FilePath:       path,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toPullRequestModel), nil
}

func (s *pullRequestStore) ListUndocumented(ctx context.Context, orgID int64, excludePatterns []string, limit int32) ([]model.PullRequest, error) {
	rows, err := s.queries.ListUndocumentedPullRequests(ctx, sqlc.ListUndocumentedPullRequestsParams{
		OrganizationID:  orgID,
		ExcludePatterns: nonNil(excludePatterns),
		Limit:           limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toPullRequestModel), nil
}

func (s *pullRequestStore) ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.PullRequest, error) {
	rows, err := s.queries.ListPullRequestsForIndex(ctx, sqlc.ListPullRequestsForIndexParams{
		OrganizationID: orgID,
		AfterID:        afterID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toPullRequestModel), nil
}

func (s *pullRequestStore) SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.PullRequest], error) {
	rows, err := s.queries.SearchPullRequestsFuzzy(ctx, sqlc.SearchPullRequestsFuzzyParams{
		Query:          query,
		OrganizationID: orgID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.SearchPullRequestsFuzzyRow) Scored[model.PullRequest] {
		return Scored[model.PullRequest]{Item: toPullRequestModel(r.PullRequest), Score: r.Similarity}
	}), nil
}

func toPullRequestModel(row sqlc.PullRequest) model.PullRequest {
	return model.PullRequest{
		ID:               row.ID,
		OrganizationID:   row.OrganizationID,
		Repository:       row.Repository,
		Number:           row.Number,
		Title:            row.Title,
		Description:      row.Description,
		State:            model.PullRequestState(row.State),
		AuthorName:       row.AuthorName,
		FilesChanged:     row.FilesChanged,
		TicketReferences: row.TicketReferences,
		URL:              row.URL,
		CreatedAt:        row.CreatedAt.Time,
		MergedAt:         toTimePointer(row.MergedAt),
		SyncedAt:         row.SyncedAt.Time,
	}
}
