// Package decision reconstructs the design rationale behind a ticket from its
// commits, pull requests and related documents, and keeps one Decision per
// ticket.
package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/queue"
	"basegraph.app/correlate/internal/retriever"
	"basegraph.app/correlate/internal/store"
)

const (
	DefaultTimeout = 120 * time.Second

	maxListItems      = 5
	maxStakeholders   = 10
	stakeholderCommit = 20
	stakeholderPR     = 10
	summaryBudget     = 200
	defaultListLimit  = 20
	maxListLimit      = 100
	defaultSearchSize = 10

	fallbackSummary = "Decision extracted from ticket analysis"
	undocumented    = "not explicitly documented"
)

type TicketStore interface {
	GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
}

type CommitStore interface {
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.Commit, error)
}

type PullRequestStore interface {
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.PullRequest, error)
}

type DecisionStore interface {
	Upsert(ctx context.Context, decision *model.Decision) (*model.Decision, error)
	Get(ctx context.Context, orgID int64, id int64) (*model.Decision, error)
	GetByTicket(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error)
	List(ctx context.Context, orgID int64, limit, offset int32) ([]model.Decision, error)
	Search(ctx context.Context, orgID int64, query string, limit int32) ([]store.Scored[model.Decision], error)
}

// DocumentRetriever finds documents semantically related to a ticket.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, orgID int64, query string, filter retriever.Filter) (*model.RetrievalResult, error)
}

// Locker marks a ticket as being analyzed, across processes when backed by
// Redis.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (queue.Unlock, error)
	Held(ctx context.Context, key string) (bool, error)
}

type Deps struct {
	Tickets      TicketStore
	Commits      CommitStore
	PullRequests PullRequestStore
	Decisions    DecisionStore
	Documents    DocumentRetriever // optional
	Extractor    Extractor
	Locker       Locker
}

type Config struct {
	Timeout time.Duration
}

type Analyzer struct {
	deps    Deps
	timeout time.Duration
	now     func() time.Time
}

func New(deps Deps, cfg Config) (*Analyzer, error) {
	if deps.Tickets == nil || deps.Commits == nil || deps.PullRequests == nil || deps.Decisions == nil {
		return nil, errors.New("decision analyzer requires ticket, commit, pull request and decision stores")
	}
	if deps.Extractor == nil {
		return nil, errors.New("decision analyzer requires an extractor")
	}
	if deps.Locker == nil {
		deps.Locker = queue.NewLocalLocker()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Analyzer{deps: deps, timeout: timeout, now: time.Now}, nil
}

func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

func analysisLockKey(orgID int64, ticketKey string) string {
	return fmt.Sprintf("correlate:analysis:%d:%s", orgID, ticketKey)
}

// Analyze extracts and persists the decision behind ticketKey. The extraction
// runs on a context detached from the caller's cancellation and bounded by the
// configured timeout, so an abandoned request still completes or times out on
// its own. Nothing is written unless extraction succeeds.
func (a *Analyzer) Analyze(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error) {
	ticketKey = common.NormalizeTicketKey(ticketKey)
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if ticketKey == "" {
		return nil, domain.Invalid("ticket_key", "required")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		TicketKey:      &ticketKey,
		Component:      "correlate.decision",
	})

	ticket, err := a.deps.Tickets.GetByKey(ctx, orgID, ticketKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ticket %s: %w", ticketKey, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	lockKey := analysisLockKey(orgID, ticketKey)
	unlock, err := a.deps.Locker.Acquire(runCtx, lockKey, a.timeout+30*time.Second)
	if err != nil {
		if errors.Is(err, queue.ErrLockHeld) {
			return nil, fmt.Errorf("ticket %s: %w", ticketKey, domain.ErrAnalysisInProgress)
		}
		return nil, fmt.Errorf("mark analysis: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			slog.WarnContext(ctx, "failed to release analysis marker", "error", err)
		}
	}()

	span := logger.StartSpan(runCtx, "decision.analyze")
	defer span.End()
	runCtx = span.Context()

	decision, err := a.analyze(runCtx, *ticket)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return decision, nil
}

func (a *Analyzer) analyze(ctx context.Context, ticket model.Ticket) (*model.Decision, error) {
	orgID := ticket.OrganizationID

	commits, err := a.deps.Commits.ListByTicket(ctx, orgID, ticket.Key)
	if err != nil {
		return nil, a.deadline(ctx, "list commits", err)
	}
	prs, err := a.deps.PullRequests.ListByTicket(ctx, orgID, ticket.Key)
	if err != nil {
		return nil, a.deadline(ctx, "list pull requests", err)
	}
	docs := a.relatedDocuments(ctx, ticket)

	in := newContext(ticket, commits, prs, docs)

	start := a.now()
	extraction, err := a.deps.Extractor.Extract(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrDependencyTimeout) || errors.Is(err, domain.ErrAnalysisFailure) {
			return nil, err
		}
		return nil, a.deadline(ctx, "extract decision", err)
	}
	if extraction == nil || !(documented(extraction.ProblemStatement) || documented(extraction.ChosenApproach)) {
		return nil, fmt.Errorf("ticket %s: %w", ticket.Key, domain.ErrAnalysisFailure)
	}

	decision, err := a.toDecision(ticket, in, commits, prs, extraction)
	if err != nil {
		return nil, err
	}

	saved, err := a.deps.Decisions.Upsert(ctx, decision)
	if err != nil {
		return nil, a.deadline(ctx, "save decision", err)
	}

	slog.InfoContext(ctx, "decision analyzed",
		"commits", len(commits),
		"pull_requests", len(prs),
		"documents", len(docs),
		"confidence", saved.ConfidenceScore,
		"duration_ms", a.now().Sub(start).Milliseconds())

	return saved, nil
}

// deadline converts an expired run context into a retryable timeout.
func (a *Analyzer) deadline(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.Timeout("analysis", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (a *Analyzer) relatedDocuments(ctx context.Context, ticket model.Ticket) []model.SourceRef {
	if a.deps.Documents == nil {
		return nil
	}
	query := strings.TrimSpace(ticket.Summary + " " + common.Excerpt(ticket.Description, summaryBudget))
	if query == "" {
		return nil
	}
	res, err := a.deps.Documents.Retrieve(ctx, ticket.OrganizationID, query, retriever.Filter{Documents: true})
	if err != nil {
		slog.WarnContext(ctx, "related document lookup failed, analyzing without documents", "error", err)
		return nil
	}
	return res.Sources
}

func (a *Analyzer) toDecision(ticket model.Ticket, in Context, commits []model.Commit, prs []model.PullRequest, ex *Extraction) (*model.Decision, error) {
	raw, err := json.Marshal(ex)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction: %w", err)
	}

	risks := make([]model.Risk, 0, maxListItems)
	for _, r := range common.Head(ex.Risks, maxListItems) {
		if strings.TrimSpace(r.Risk) == "" {
			continue
		}
		risks = append(risks, model.Risk{Risk: r.Risk, Mitigation: r.Mitigation})
	}

	shas := make([]string, 0, len(commits))
	for _, c := range commits {
		shas = append(shas, c.SHA)
	}
	refs := make([]string, 0, len(prs))
	for _, pr := range prs {
		refs = append(refs, pr.Ref())
	}
	docs := make([]string, 0, len(in.Documents))
	for _, d := range in.Documents {
		docs = append(docs, d.Key)
	}

	summary := fallbackSummary
	if documented(ex.ChosenApproach) {
		summary = common.Excerpt(ex.ChosenApproach, summaryBudget)
	}

	return &model.Decision{
		OrganizationID:         ticket.OrganizationID,
		TicketKey:              ticket.Key,
		Summary:                summary,
		ProblemStatement:       ex.ProblemStatement,
		AlternativesConsidered: common.Head(common.Dedupe(ex.AlternativesConsidered), maxListItems),
		ChosenApproach:         ex.ChosenApproach,
		Rationale:              ex.Rationale,
		Constraints:            common.Head(common.Dedupe(ex.Constraints), maxListItems),
		Risks:                  risks,
		Tradeoffs:              common.Dedupe(ex.Tradeoffs),
		Stakeholders:           stakeholders(ticket, commits, prs),
		CommitSHAs:             shas,
		PullRequestRefs:        refs,
		RelatedDocuments:       docs,
		ConfidenceScore:        clamp(ex.ConfidenceScore),
		RawAnalysis:            string(raw),
		AnalyzedAt:             a.now().UTC(),
	}, nil
}

func stakeholders(ticket model.Ticket, commits []model.Commit, prs []model.PullRequest) []string {
	var names []string
	if ticket.Reporter != nil {
		names = append(names, *ticket.Reporter)
	}
	if ticket.Assignee != nil {
		names = append(names, *ticket.Assignee)
	}
	for _, c := range common.Head(commits, stakeholderCommit) {
		names = append(names, c.AuthorName)
	}
	for _, pr := range common.Head(prs, stakeholderPR) {
		names = append(names, pr.AuthorName)
	}
	return common.Head(common.Dedupe(names), maxStakeholders)
}

func documented(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.EqualFold(strings.TrimRight(s, "."), undocumented)
}

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(1, math.Max(0, score))
}

// Get returns a decision by id.
func (a *Analyzer) Get(ctx context.Context, orgID, decisionID int64) (*model.Decision, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if decisionID <= 0 {
		return nil, domain.Invalid("id", "must be positive")
	}
	return a.deps.Decisions.Get(ctx, orgID, decisionID)
}

func (a *Analyzer) ByTicket(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error) {
	ticketKey = common.NormalizeTicketKey(ticketKey)
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if ticketKey == "" {
		return nil, domain.Invalid("ticket_key", "required")
	}
	return a.deps.Decisions.GetByTicket(ctx, orgID, ticketKey)
}

// Search runs a full-text search over decision summaries, problems and chosen
// approaches.
func (a *Analyzer) Search(ctx context.Context, orgID int64, query string, limit int) ([]store.Scored[model.Decision], error) {
	query = strings.TrimSpace(query)
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if query == "" {
		return nil, domain.Invalid("q", "required")
	}
	if limit <= 0 {
		limit = defaultSearchSize
	}
	if limit > maxListLimit {
		return nil, domain.Invalid("limit", fmt.Sprintf("must be at most %d", maxListLimit))
	}
	return a.deps.Decisions.Search(ctx, orgID, query, int32(limit))
}

// List returns the most recently analyzed decisions first.
func (a *Analyzer) List(ctx context.Context, orgID int64, limit, offset int) ([]model.Decision, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return nil, domain.Invalid("limit", fmt.Sprintf("must be at most %d", maxListLimit))
	}
	if offset < 0 {
		return nil, domain.Invalid("offset", "must not be negative")
	}
	return a.deps.Decisions.List(ctx, orgID, int32(limit), int32(offset))
}

// Status reports whether a ticket is unanalyzed, being analyzed or analyzed.
// A running analysis wins over an existing decision it is about to replace.
func (a *Analyzer) Status(ctx context.Context, orgID int64, ticketKey string) (*model.DecisionStatus, error) {
	ticketKey = common.NormalizeTicketKey(ticketKey)
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if ticketKey == "" {
		return nil, domain.Invalid("ticket_key", "required")
	}
	if _, err := a.deps.Tickets.GetByKey(ctx, orgID, ticketKey); err != nil {
		return nil, err
	}

	status := &model.DecisionStatus{TicketKey: ticketKey, State: model.AnalysisStateUnanalyzed}

	held, err := a.deps.Locker.Held(ctx, analysisLockKey(orgID, ticketKey))
	if err != nil {
		return nil, err
	}
	if held {
		status.State = model.AnalysisStateAnalyzing
		return status, nil
	}

	d, err := a.deps.Decisions.GetByTicket(ctx, orgID, ticketKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return status, nil
		}
		return nil, err
	}
	status.State = model.AnalysisStateAnalyzed
	status.ConfidenceScore = &d.ConfidenceScore
	analyzedAt := d.AnalyzedAt
	status.AnalyzedAt = &analyzedAt
	return status, nil
}
