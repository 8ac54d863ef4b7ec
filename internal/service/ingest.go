package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/codeparse"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/mapper"
	"basegraph.app/correlate/internal/model"
)

// Indexer is the dual-write side of ingestion.
type Indexer interface {
	IngestTickets(ctx context.Context, orgID int64, tickets []model.Ticket) (*indexer.Summary, error)
	IngestCommits(ctx context.Context, orgID int64, commits []model.Commit) (*indexer.Summary, error)
	IngestPullRequests(ctx context.Context, orgID int64, prs []model.PullRequest) (*indexer.Summary, error)
	IngestCodeFiles(ctx context.Context, orgID int64, files []model.CodeFile) (*indexer.Summary, error)
	IngestDocuments(ctx context.Context, orgID int64, docs []model.Document) (*indexer.Summary, error)
}

type SymbolParser interface {
	Extract(ctx context.Context, lang codeparse.Language, source []byte) (codeparse.Symbols, error)
}

type WebhookMapper interface {
	Map(ctx context.Context, eventType gitlab.EventType, body []byte) (*mapper.Batch, error)
}

// CodeFileInput is a code file record plus optional source text. When content
// is present, size and symbols are derived from it.
type CodeFileInput struct {
	model.CodeFile
	Content string `json:"content,omitempty"`
}

type WebhookResult struct {
	EventType    string           `json:"event_type"`
	Ignored      bool             `json:"ignored"`
	Commits      *indexer.Summary `json:"commits,omitempty"`
	PullRequests *indexer.Summary `json:"pull_requests,omitempty"`
	Documents    *indexer.Summary `json:"documents,omitempty"`
}

// IngestService validates and normalizes records at the ingestion boundary
// and hands them to the indexer. A batch with any invalid record is rejected
// whole, before anything is written.
type IngestService interface {
	Tickets(ctx context.Context, orgID int64, tickets []model.Ticket) (*indexer.Summary, error)
	Commits(ctx context.Context, orgID int64, commits []model.Commit) (*indexer.Summary, error)
	PullRequests(ctx context.Context, orgID int64, prs []model.PullRequest) (*indexer.Summary, error)
	CodeFiles(ctx context.Context, orgID int64, files []CodeFileInput) (*indexer.Summary, error)
	Documents(ctx context.Context, orgID int64, docs []model.Document) (*indexer.Summary, error)
	GitLabWebhook(ctx context.Context, orgID int64, eventType gitlab.EventType, body []byte) (*WebhookResult, error)
}

type ingestService struct {
	indexer Indexer
	parser  SymbolParser
	mapper  WebhookMapper
	now     func() time.Time
}

func NewIngestService(ix Indexer, parser SymbolParser, webhooks WebhookMapper) IngestService {
	return &ingestService{
		indexer: ix,
		parser:  parser,
		mapper:  webhooks,
		now:     time.Now,
	}
}

func (s *ingestService) Tickets(ctx context.Context, orgID int64, tickets []model.Ticket) (*indexer.Summary, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	if err := checkBatch("tickets", tickets); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	batch := make([]model.Ticket, len(tickets))
	for i := range tickets {
		batch[i] = tickets[i]
		if err := normalizeTicket(&batch[i], i, now); err != nil {
			return nil, err
		}
	}
	return s.indexer.IngestTickets(ctx, orgID, batch)
}

func (s *ingestService) Commits(ctx context.Context, orgID int64, commits []model.Commit) (*indexer.Summary, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	if err := checkBatch("commits", commits); err != nil {
		return nil, err
	}
	batch, err := s.normalizeCommits(commits)
	if err != nil {
		return nil, err
	}
	return s.indexer.IngestCommits(ctx, orgID, batch)
}

func (s *ingestService) PullRequests(ctx context.Context, orgID int64, prs []model.PullRequest) (*indexer.Summary, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	if err := checkBatch("pull_requests", prs); err != nil {
		return nil, err
	}
	batch, err := s.normalizePullRequests(prs)
	if err != nil {
		return nil, err
	}
	return s.indexer.IngestPullRequests(ctx, orgID, batch)
}

func (s *ingestService) CodeFiles(ctx context.Context, orgID int64, files []CodeFileInput) (*indexer.Summary, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	if err := checkBatch("code_files", files); err != nil {
		return nil, err
	}
	batch := make([]model.CodeFile, len(files))
	for i := range files {
		f := files[i].CodeFile
		if err := normalizeCodeFile(&f, i); err != nil {
			return nil, err
		}
		s.enrichCodeFile(ctx, &f, files[i].Content)
		batch[i] = f
	}
	return s.indexer.IngestCodeFiles(ctx, orgID, batch)
}

func (s *ingestService) Documents(ctx context.Context, orgID int64, docs []model.Document) (*indexer.Summary, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	if err := checkBatch("documents", docs); err != nil {
		return nil, err
	}
	batch, err := s.normalizeDocuments(docs)
	if err != nil {
		return nil, err
	}
	return s.indexer.IngestDocuments(ctx, orgID, batch)
}

// GitLabWebhook maps a hook delivery and ingests whatever it carries. Events
// that carry no entities are acknowledged as ignored.
func (s *ingestService) GitLabWebhook(ctx context.Context, orgID int64, eventType gitlab.EventType, body []byte) (*WebhookResult, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	if s.mapper == nil {
		return nil, errors.New("gitlab webhooks are not configured")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		Operation:      logger.Ptr("gitlab_webhook"),
		Component:      "correlate.ingest",
	})

	result := &WebhookResult{EventType: string(eventType)}
	batch, err := s.mapper.Map(ctx, eventType, body)
	if errors.Is(err, mapper.ErrUnsupportedEvent) {
		slog.DebugContext(ctx, "gitlab event ignored", "event_type", eventType, "reason", err)
		result.Ignored = true
		return result, nil
	}
	if err != nil {
		return nil, domain.Invalid("body", err.Error())
	}
	if batch.Empty() {
		result.Ignored = true
		return result, nil
	}

	commits, err := s.normalizeCommits(batch.Commits)
	if err != nil {
		return nil, err
	}
	prs, err := s.normalizePullRequests(batch.PullRequests)
	if err != nil {
		return nil, err
	}
	docs, err := s.normalizeDocuments(batch.Documents)
	if err != nil {
		return nil, err
	}

	if len(commits) > 0 {
		if result.Commits, err = s.indexer.IngestCommits(ctx, orgID, commits); err != nil {
			return nil, fmt.Errorf("ingest commits: %w", err)
		}
	}
	if len(prs) > 0 {
		if result.PullRequests, err = s.indexer.IngestPullRequests(ctx, orgID, prs); err != nil {
			return nil, fmt.Errorf("ingest pull requests: %w", err)
		}
	}
	if len(docs) > 0 {
		if result.Documents, err = s.indexer.IngestDocuments(ctx, orgID, docs); err != nil {
			return nil, fmt.Errorf("ingest documents: %w", err)
		}
	}

	slog.InfoContext(ctx, "gitlab event ingested",
		"event_type", eventType,
		"commits", len(commits),
		"pull_requests", len(prs),
		"documents", len(docs))
	return result, nil
}

func (s *ingestService) normalizeCommits(in []model.Commit) ([]model.Commit, error) {
	now := s.now().UTC()
	out := make([]model.Commit, len(in))
	for i := range in {
		out[i] = in[i]
		if err := normalizeCommit(&out[i], i, now); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *ingestService) normalizePullRequests(in []model.PullRequest) ([]model.PullRequest, error) {
	now := s.now().UTC()
	out := make([]model.PullRequest, len(in))
	for i := range in {
		out[i] = in[i]
		if err := normalizePullRequest(&out[i], i, now); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *ingestService) normalizeDocuments(in []model.Document) ([]model.Document, error) {
	now := s.now().UTC()
	out := make([]model.Document, len(in))
	for i := range in {
		out[i] = in[i]
		if err := normalizeDocument(&out[i], i, now); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// enrichCodeFile resolves the language and, given content, the size and the
// declared symbols. Parse failures keep whatever symbols the caller sent.
func (s *ingestService) enrichCodeFile(ctx context.Context, f *model.CodeFile, content string) {
	lang, known := codeparse.Detect(f.FilePath, f.Language)
	if known {
		f.Language = string(lang)
	}
	if content == "" {
		return
	}
	f.SizeBytes = int64(len(content))
	if !known || s.parser == nil {
		return
	}

	symbols, err := s.parser.Extract(ctx, lang, []byte(content))
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, codeparse.ErrUnsupported) {
			level = slog.LevelDebug
		}
		slog.Log(ctx, level, "symbol extraction skipped",
			"repository", f.Repository,
			"file_path", f.FilePath,
			"error", err)
		return
	}
	f.Functions = common.Dedupe(append(f.Functions, symbols.Functions...))
	f.Classes = common.Dedupe(append(f.Classes, symbols.Classes...))
}

func checkTenant(orgID int64) error {
	if orgID <= 0 {
		return domain.Invalid("organization_id", "required")
	}
	return nil
}
