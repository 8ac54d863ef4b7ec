package store

import (
	"context"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type codeFileStore struct {
	queries *sqlc.Queries
}

func newCodeFileStore(queries *sqlc.Queries) CodeFileStore {
	return &codeFileStore{queries: queries}
}

// Upsert supersedes any previous snapshot of the same repository path.
func (s *codeFileStore) Upsert(ctx context.Context, f *model.CodeFile) (*model.CodeFile, error) {
	if f.ID == 0 {
		f.ID = id.New()
	}
	row, err := s.queries.UpsertCodeFile(ctx, sqlc.UpsertCodeFileParams{
		ID:             f.ID,
		OrganizationID: f.OrganizationID,
		Repository:     f.Repository,
		FilePath:       f.FilePath,
		Language:       f.Language,
		Functions:      nonNil(f.Functions),
		Classes:        nonNil(f.Classes),
		SizeBytes:      f.SizeBytes,
		URL:            f.URL,
	})
	if err != nil {
		return nil, err
	}
	result := toCodeFileModel(row)
	return &result, nil
}

func (s *codeFileStore) Get(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error) {
	row, err := s.queries.GetCodeFile(ctx, sqlc.GetCodeFileParams{
		OrganizationID: orgID,
		Repository:     repository,
		FilePath:       path,
	})
	if err != nil {
		return nil, notFound(err)
	}
	result := toCodeFileModel(row)
	return &result, nil
}

func (s *codeFileStore) ListByPaths(ctx context.Context, orgID int64, paths []string) ([]model.CodeFile, error) {
	if len(paths) == 0 {
		return []model.CodeFile{}, nil
	}
	rows, err := s.queries.ListCodeFilesByPaths(ctx, sqlc.ListCodeFilesByPathsParams{
		OrganizationID: orgID,
		FilePaths:      paths,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCodeFileModel), nil
}

func (s *codeFileStore) ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.CodeFile, error) {
	rows, err := s.queries.ListCodeFilesForIndex(ctx, sqlc.ListCodeFilesForIndexParams{
		OrganizationID: orgID,
		AfterID:        afterID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toCodeFileModel), nil
}

func (s *codeFileStore) SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.CodeFile], error) {
	rows, err := s.queries.SearchCodeFilesFuzzy(ctx, sqlc.SearchCodeFilesFuzzyParams{
		Query:          query,
		OrganizationID: orgID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(rows, func(r sqlc.SearchCodeFilesFuzzyRow) Scored[model.CodeFile] {
		return Scored[model.CodeFile]{Item: toCodeFileModel(r.CodeFile), Score: r.Similarity}
	}), nil
}

func toCodeFileModel(row sqlc.CodeFile) model.CodeFile {
	return model.CodeFile{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Repository:     row.Repository,
		FilePath:       row.FilePath,
		Language:       row.Language,
		Functions:      row.Functions,
		Classes:        row.Classes,
		SizeBytes:      row.SizeBytes,
		URL:            row.URL,
		SyncedAt:       row.SyncedAt.Time,
	}
}
