package service

import (
	"context"
	"fmt"
	"strings"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
)

type EntityTicketStore interface {
	GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
}

type EntityCommitStore interface {
	GetBySHAPrefix(ctx context.Context, orgID int64, prefix string) ([]model.Commit, error)
}

type EntityPullRequestStore interface {
	Get(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error)
}

type EntityCodeFileStore interface {
	Get(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error)
}

type EntityDocumentStore interface {
	Get(ctx context.Context, orgID int64, sourceID string) (*model.Document, error)
}

type EntityStores struct {
	Tickets      EntityTicketStore
	Commits      EntityCommitStore
	PullRequests EntityPullRequestStore
	CodeFiles    EntityCodeFileStore
	Documents    EntityDocumentStore
}

// EntityService reads single entities by natural key.
type EntityService interface {
	Ticket(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
	Commit(ctx context.Context, orgID int64, sha string) (*model.Commit, error)
	PullRequest(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error)
	CodeFile(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error)
	Document(ctx context.Context, orgID int64, sourceID string) (*model.Document, error)
}

type entityService struct {
	stores EntityStores
}

func NewEntityService(stores EntityStores) EntityService {
	return &entityService{stores: stores}
}

func (s *entityService) Ticket(ctx context.Context, orgID int64, key string) (*model.Ticket, error) {
	key = common.NormalizeTicketKey(key)
	if err := requireKey(orgID, "key", key); err != nil {
		return nil, err
	}
	t, err := s.stores.Tickets.GetByKey(ctx, orgID, key)
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", key, err)
	}
	return t, nil
}

// Commit resolves a full or abbreviated sha. A prefix that matches more than
// one commit is rejected.
func (s *entityService) Commit(ctx context.Context, orgID int64, sha string) (*model.Commit, error) {
	sha = strings.ToLower(strings.TrimSpace(sha))
	if err := requireKey(orgID, "sha", sha); err != nil {
		return nil, err
	}
	if len(sha) < minSHALength || !isHex(sha) {
		return nil, domain.Invalid("sha", "must be at least 7 hex characters")
	}
	commits, err := s.stores.Commits.GetBySHAPrefix(ctx, orgID, sha)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", sha, err)
	}
	switch len(commits) {
	case 0:
		return nil, fmt.Errorf("commit %s: %w", sha, domain.ErrNotFound)
	case 1:
		return &commits[0], nil
	}
	return nil, domain.Invalid("sha", "prefix matches more than one commit")
}

func (s *entityService) PullRequest(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error) {
	repository = strings.TrimSpace(repository)
	if err := requireKey(orgID, "repository", repository); err != nil {
		return nil, err
	}
	if number <= 0 {
		return nil, domain.Invalid("number", "must be positive")
	}
	pr, err := s.stores.PullRequests.Get(ctx, orgID, repository, number)
	if err != nil {
		return nil, fmt.Errorf("get pull request %s#%d: %w", repository, number, err)
	}
	return pr, nil
}

func (s *entityService) CodeFile(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error) {
	repository = strings.TrimSpace(repository)
	path = common.CleanPath(path)
	if err := requireKey(orgID, "repository", repository); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, domain.Invalid("path", "required")
	}
	f, err := s.stores.CodeFiles.Get(ctx, orgID, repository, path)
	if err != nil {
		return nil, fmt.Errorf("get code file %s:%s: %w", repository, path, err)
	}
	return f, nil
}

func (s *entityService) Document(ctx context.Context, orgID int64, sourceID string) (*model.Document, error) {
	sourceID = strings.TrimSpace(sourceID)
	if err := requireKey(orgID, "source_id", sourceID); err != nil {
		return nil, err
	}
	d, err := s.stores.Documents.Get(ctx, orgID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", sourceID, err)
	}
	return d, nil
}

func requireKey(orgID int64, field, value string) error {
	if err := checkTenant(orgID); err != nil {
		return err
	}
	if value == "" {
		return domain.Invalid(field, "required")
	}
	return nil
}
