package store

import (
	"context"
	"time"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = domain.ErrNotFound

// Scored pairs an entity with a similarity or rank score from the database.
type Scored[T any] struct {
	Item  T
	Score float64
}

type TicketFilter struct {
	OrganizationID int64
	Status         *string
	IssueType      *string
	Assignee       *string
	Label          *string
	Component      *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Limit          int32
	Offset         int32
}

type SimilarTicketsQuery struct {
	OrganizationID int64
	TicketKey      string
	Summary        string
	Components     []string
	Threshold      float64
	Limit          int32
}

type TicketCommitCount struct {
	Ticket      model.Ticket
	CommitCount int64
}

type AuthorRank struct {
	Name           string
	Email          string
	CommitCount    int64
	LastCommitDate time.Time
}

// TicketStore defines the contract for ticket data access
type TicketStore interface {
	Upsert(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
	ListByKeys(ctx context.Context, orgID int64, keys []string) ([]model.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]model.Ticket, error)
	SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Ticket], error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Ticket, error)
	ListOrphaned(ctx context.Context, orgID int64, since time.Time, limit int32) ([]model.Ticket, error)
	ListStale(ctx context.Context, orgID int64, cutoff time.Time, limit int32) ([]model.Ticket, error)
	ListMissingDecision(ctx context.Context, orgID int64, issueTypes []string, limit int32) ([]TicketCommitCount, error)
	ListSimilar(ctx context.Context, q SimilarTicketsQuery) ([]Scored[model.Ticket], error)
}

// CommitStore defines the contract for commit data access
type CommitStore interface {
	Upsert(ctx context.Context, commit *model.Commit) (*model.Commit, error)
	// GetBySHAPrefix returns at most two matches so callers can detect ambiguity.
	GetBySHAPrefix(ctx context.Context, orgID int64, prefix string) ([]model.Commit, error)
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.Commit, error)
	ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.Commit, error)
	ListUndocumented(ctx context.Context, orgID int64, excludePatterns []string, limit int32) ([]model.Commit, error)
	RankAuthors(ctx context.Context, orgID int64, paths []string, limit int32) ([]AuthorRank, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Commit, error)
	SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Commit], error)
}

// PullRequestStore defines the contract for pull request data access
type PullRequestStore interface {
	Upsert(ctx context.Context, pr *model.PullRequest) (*model.PullRequest, error)
	Get(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error)
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.PullRequest, error)
	ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.PullRequest, error)
	ListUndocumented(ctx context.Context, orgID int64, excludePatterns []string, limit int32) ([]model.PullRequest, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.PullRequest, error)
	SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.PullRequest], error)
}

// CodeFileStore defines the contract for code file data access
type CodeFileStore interface {
	Upsert(ctx context.Context, file *model.CodeFile) (*model.CodeFile, error)
	Get(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error)
	ListByPaths(ctx context.Context, orgID int64, paths []string) ([]model.CodeFile, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.CodeFile, error)
	SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.CodeFile], error)
}

// DocumentStore defines the contract for document data access
type DocumentStore interface {
	Upsert(ctx context.Context, doc *model.Document) (*model.Document, error)
	Get(ctx context.Context, orgID int64, sourceID string) (*model.Document, error)
	ListMentioning(ctx context.Context, orgID int64, term string, limit int32) ([]model.Document, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Document, error)
	SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Document], error)
}

// DecisionStore defines the contract for decision data access
type DecisionStore interface {
	// Upsert replaces the decision for (organization, ticket key) in place.
	Upsert(ctx context.Context, decision *model.Decision) (*model.Decision, error)
	Get(ctx context.Context, orgID int64, id int64) (*model.Decision, error)
	GetByTicket(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error)
	List(ctx context.Context, orgID int64, limit, offset int32) ([]model.Decision, error)
	Search(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Decision], error)
}

// IndexStateStore tracks the last vector write outcome per entity.
type IndexStateStore interface {
	Record(ctx context.Context, state model.IndexState) error
	Counts(ctx context.Context, orgID int64) ([]model.IndexStatusCounts, error)
	ListByStatus(ctx context.Context, orgID int64, kind model.EntityKind, status model.IndexStatus, limit int32) ([]model.IndexState, error)
	OrganizationIDs(ctx context.Context) ([]int64, error)
}
