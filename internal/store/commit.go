package store

import (
	"context"
	"time"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type commitStore struct {
	queries *sqlc.Queries
}

func newCommitStore(queries *sqlc.Queries) CommitStore {
	return &commitStore{queries: queries}
}

// Upsert inserts the commit or enriches an existing one. Message and date of a
// stored commit are never rewritten.
func (s *commitStore) Upsert(ctx context.Context, c *model.Commit) (*model.Commit, error) {
	if c.ID == 0 {
		c.ID = id.New()
	}
	commitDate := c.CommitDate
	if commitDate.IsZero() {
		commitDate = time.Now().UTC()
	}

	row, err := s.queries.UpsertCommit(ctx, sqlc.UpsertCommitParams{
		ID:               c.ID,
		OrganizationID:   c.OrganizationID,
		Repository:       c.Repository,
		SHA:              c.SHA,
		Message:          c.Message,
		AuthorName:       c.AuthorName,
		AuthorEmail:      c.AuthorEmail,
		CommitDate:       toTimestamp(commitDate),
		Additions:        c.Additions,
		Deletions:        c.Deletions,
		FilesChanged:     nonNil(c.FilesChanged),
		TicketReferences: nonNil(c.TicketReferences),
		URL:              c.URL,
	})
	if err != nil {
		return nil, err
	}
	commit := toCommitModel(row)
	return &commit, nil
}

func (s *commitStore) GetBySHAPrefix(ctx context.Context, orgID int64, prefix string) ([]model.Commit, error) {
	rows, err := s.queries.GetCommitsBySHAPrefix(ctx, sqlc.GetCommitsBySHAPrefixParams{
		OrganizationID: orgID,
		ShaPrefix:      prefix,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCommitModel), nil
}

func (s *commitStore) ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.Commit, error) {
	rows, err := s.queries.ListCommitsByTicket(ctx, sqlc.ListCommitsByTicketParams{
		OrganizationID: orgID,
		TicketKey:      ticketKey,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCommitModel), nil
}

func (s *commitStore) ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.Commit, error) {
	rows, err := s.queries.ListCommitsTouchingFile(ctx, sqlc.ListCommitsTouchingFileParams{
		OrganizationID: orgID,
		FilePath:       path,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCommitModel), nil
}

func (s *commitStore) ListUndocumented(ctx context.Context, orgID int64, excludePatterns []string, limit int32) ([]model.Commit, error) {
	rows, err := s.queries.ListUndocumentedCommits(ctx, sqlc.ListUndocumentedCommitsParams{
		OrganizationID:  orgID,
		ExcludePatterns: nonNil(excludePatterns),
		Limit:           limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCommitModel), nil
}

func (s *commitStore) RankAuthors(ctx context.Context, orgID int64, paths []string, limit int32) ([]AuthorRank, error) {
	rows, err := s.queries.RankAuthorsByFiles(ctx, sqlc.RankAuthorsByFilesParams{
		OrganizationID: orgID,
		FilePaths:      nonNil(paths),
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.RankAuthorsByFilesRow) AuthorRank {
		return AuthorRank{
			Name:           r.AuthorName,
			Email:          r.AuthorEmail,
			CommitCount:    r.CommitCount,
			LastCommitDate: r.LastCommitDate.Time,
		}
	}), nil
}

func (s *commitStore) ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Commit, error) {
	rows, err := s.queries.ListCommitsForIndex(ctx, sqlc.ListCommitsForIndexParams{
		OrganizationID: orgID,
		AfterID:        afterID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCommitModel), nil
}

func (s *commitStore) SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Commit], error) {
	rows, err := s.queries.SearchCommitsFuzzy(ctx, sqlc.SearchCommitsFuzzyParams{
		Query:          query,
		OrganizationID: orgID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.SearchCommitsFuzzyRow) Scored[model.Commit] {
		return Scored[model.Commit]{Item: toCommitModel(r.Commit), Score: r.Similarity}
	}), nil
}

func toCommitModel(row sqlc.Commit) model.Commit {
	return model.Commit{
		ID:               row.ID,
		OrganizationID:   row.OrganizationID,
		Repository:       row.Repository,
		SHA:              row.SHA,
		Message:          row.Message,
		AuthorName:       row.AuthorName,
		AuthorEmail:      row.AuthorEmail,
		CommitDate:       row.CommitDate.Time,
		Additions:        row.Additions,
		Deletions:        row.Deletions,
		FilesChanged:     row.FilesChanged,
		TicketReferences: row.TicketReferences,
		URL:              row.URL,
		SyncedAt:         row.SyncedAt.Time,
	}
}
