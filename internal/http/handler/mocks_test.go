package handler_test

import (
	"context"

	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/service"
	"basegraph.app/correlate/internal/store"
	"basegraph.app/correlate/internal/synth"
)

type mockIngestService struct {
	service.IngestService
	ticketsFn func(ctx context.Context, orgID int64, tickets []model.Ticket) (*indexer.Summary, error)
	commitsFn func(ctx context.Context, orgID int64, commits []model.Commit) (*indexer.Summary, error)
	filesFn   func(ctx context.Context, orgID int64, files []service.CodeFileInput) (*indexer.Summary, error)
}

func (m *mockIngestService) Tickets(ctx context.Context, orgID int64, tickets []model.Ticket) (*indexer.Summary, error) {
	if m.ticketsFn != nil {
		return m.ticketsFn(ctx, orgID, tickets)
	}
	return &indexer.Summary{Kind: model.KindTicket, Received: len(tickets), Stored: len(tickets)}, nil
}

func (m *mockIngestService) Commits(ctx context.Context, orgID int64, commits []model.Commit) (*indexer.Summary, error) {
	if m.commitsFn != nil {
		return m.commitsFn(ctx, orgID, commits)
	}
	return &indexer.Summary{Kind: model.KindCommit, Received: len(commits), Stored: len(commits)}, nil
}

func (m *mockIngestService) CodeFiles(ctx context.Context, orgID int64, files []service.CodeFileInput) (*indexer.Summary, error) {
	if m.filesFn != nil {
		return m.filesFn(ctx, orgID, files)
	}
	return &indexer.Summary{Kind: model.KindCodeFile, Received: len(files), Stored: len(files)}, nil
}

type mockImporter struct {
	importFn func(ctx context.Context, orgID int64, opts service.GitLabImportOptions) (*service.GitLabImportResult, error)
}

func (m *mockImporter) Import(ctx context.Context, orgID int64, opts service.GitLabImportOptions) (*service.GitLabImportResult, error) {
	if m.importFn != nil {
		return m.importFn(ctx, orgID, opts)
	}
	return &service.GitLabImportResult{Project: opts.Project}, nil
}

type mockSearcher struct {
	searchFn func(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int) ([]model.SearchHit, error)
}

func (m *mockSearcher) Search(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int) ([]model.SearchHit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, orgID, kind, query, limit)
	}
	return []model.SearchHit{}, nil
}

type mockAsker struct {
	askFn func(ctx context.Context, orgID int64, q synth.Query) (*model.Answer, error)
}

func (m *mockAsker) Ask(ctx context.Context, orgID int64, q synth.Query) (*model.Answer, error) {
	if m.askFn != nil {
		return m.askFn(ctx, orgID, q)
	}
	return &model.Answer{Question: q.Question}, nil
}

type mockGapDetector struct {
	orphanedFn func(ctx context.Context, orgID int64, days int) (*model.OrphanedTicketsReport, error)
	staleFn    func(ctx context.Context, orgID int64, days int) (*model.StaleWorkReport, error)
}

func (m *mockGapDetector) OrphanedTickets(ctx context.Context, orgID int64, days int) (*model.OrphanedTicketsReport, error) {
	if m.orphanedFn != nil {
		return m.orphanedFn(ctx, orgID, days)
	}
	return &model.OrphanedTicketsReport{Tickets: []model.Ticket{}}, nil
}

func (m *mockGapDetector) Undocumented(context.Context, int64) (*model.UndocumentedReport, error) {
	return &model.UndocumentedReport{Changes: []model.UndocumentedChange{}}, nil
}

func (m *mockGapDetector) MissingDecisions(context.Context, int64) (*model.MissingDecisionsReport, error) {
	return &model.MissingDecisionsReport{Tickets: []model.MissingDecision{}}, nil
}

func (m *mockGapDetector) StaleWork(ctx context.Context, orgID int64, days int) (*model.StaleWorkReport, error) {
	if m.staleFn != nil {
		return m.staleFn(ctx, orgID, days)
	}
	return &model.StaleWorkReport{}, nil
}

func (m *mockGapDetector) Comprehensive(context.Context, int64) (*model.ComprehensiveGapReport, error) {
	return &model.ComprehensiveGapReport{}, nil
}

type mockImpactAnalyzer struct {
	fileFn      func(ctx context.Context, orgID int64, path string) (*model.FileImpact, error)
	commitFn    func(ctx context.Context, orgID int64, sha string) (*model.CommitImpact, error)
	reviewersFn func(ctx context.Context, orgID int64, paths []string) ([]model.Reviewer, error)
}

func (m *mockImpactAnalyzer) File(ctx context.Context, orgID int64, path string) (*model.FileImpact, error) {
	if m.fileFn != nil {
		return m.fileFn(ctx, orgID, path)
	}
	return &model.FileImpact{}, nil
}

func (m *mockImpactAnalyzer) Ticket(context.Context, int64, string) (*model.TicketImpact, error) {
	return &model.TicketImpact{}, nil
}

func (m *mockImpactAnalyzer) Commit(ctx context.Context, orgID int64, sha string) (*model.CommitImpact, error) {
	if m.commitFn != nil {
		return m.commitFn(ctx, orgID, sha)
	}
	return &model.CommitImpact{}, nil
}

func (m *mockImpactAnalyzer) SuggestReviewers(ctx context.Context, orgID int64, paths []string) ([]model.Reviewer, error) {
	if m.reviewersFn != nil {
		return m.reviewersFn(ctx, orgID, paths)
	}
	return []model.Reviewer{}, nil
}

type mockDecisionAnalyzer struct {
	analyzeFn func(ctx context.Context, orgID int64, key string) (*model.Decision, error)
	getFn     func(ctx context.Context, orgID, id int64) (*model.Decision, error)
	searchFn  func(ctx context.Context, orgID int64, query string, limit int) ([]store.Scored[model.Decision], error)
	listFn    func(ctx context.Context, orgID int64, limit, offset int) ([]model.Decision, error)
}

func (m *mockDecisionAnalyzer) Analyze(ctx context.Context, orgID int64, key string) (*model.Decision, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, orgID, key)
	}
	return &model.Decision{TicketKey: key}, nil
}

func (m *mockDecisionAnalyzer) Get(ctx context.Context, orgID, id int64) (*model.Decision, error) {
	if m.getFn != nil {
		return m.getFn(ctx, orgID, id)
	}
	return &model.Decision{ID: id}, nil
}

func (m *mockDecisionAnalyzer) ByTicket(_ context.Context, _ int64, key string) (*model.Decision, error) {
	return &model.Decision{TicketKey: key}, nil
}

func (m *mockDecisionAnalyzer) Search(ctx context.Context, orgID int64, query string, limit int) ([]store.Scored[model.Decision], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, orgID, query, limit)
	}
	return nil, nil
}

func (m *mockDecisionAnalyzer) List(ctx context.Context, orgID int64, limit, offset int) ([]model.Decision, error) {
	if m.listFn != nil {
		return m.listFn(ctx, orgID, limit, offset)
	}
	return nil, nil
}

func (m *mockDecisionAnalyzer) Status(_ context.Context, _ int64, key string) (*model.DecisionStatus, error) {
	return &model.DecisionStatus{TicketKey: key, State: model.AnalysisStateUnanalyzed}, nil
}

type mockRelatedFinder struct {
	relatedFn func(ctx context.Context, orgID int64, kind model.EntityKind, key string, depth int) (*model.RelatedEntities, error)
}

func (m *mockRelatedFinder) Related(ctx context.Context, orgID int64, kind model.EntityKind, key string, depth int) (*model.RelatedEntities, error) {
	if m.relatedFn != nil {
		return m.relatedFn(ctx, orgID, kind, key, depth)
	}
	return &model.RelatedEntities{}, nil
}

type mockIndexAdmin struct {
	backfillFn func(ctx context.Context, orgID int64, opts indexer.BackfillOptions) (*model.BackfillReport, error)
	statusFn   func(ctx context.Context, orgID int64) ([]model.IndexStatusCounts, error)
}

func (m *mockIndexAdmin) Backfill(ctx context.Context, orgID int64, opts indexer.BackfillOptions) (*model.BackfillReport, error) {
	if m.backfillFn != nil {
		return m.backfillFn(ctx, orgID, opts)
	}
	return &model.BackfillReport{OrganizationID: orgID}, nil
}

func (m *mockIndexAdmin) Status(ctx context.Context, orgID int64) ([]model.IndexStatusCounts, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, orgID)
	}
	return nil, nil
}

type mockCacheAdmin struct {
	clearFn func(ctx context.Context, orgID int64) (int, error)
}

func (m *mockCacheAdmin) ClearCache(ctx context.Context, orgID int64) (int, error) {
	if m.clearFn != nil {
		return m.clearFn(ctx, orgID)
	}
	return 0, nil
}
