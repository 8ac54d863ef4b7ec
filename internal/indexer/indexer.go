// Package indexer implements the dual write: every entity is first written to
// the entity store, then projected into the vector index (and the correlation
// graph when one is configured). Only the first write can fail an ingest.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/queue"
	"basegraph.app/correlate/internal/store"
	"basegraph.app/correlate/internal/vector"
	"go.opentelemetry.io/otel/attribute"
)

type TicketStore interface {
	Upsert(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Ticket, error)
}

type CommitStore interface {
	Upsert(ctx context.Context, commit *model.Commit) (*model.Commit, error)
	GetBySHAPrefix(ctx context.Context, orgID int64, prefix string) ([]model.Commit, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Commit, error)
}

type PullRequestStore interface {
	Upsert(ctx context.Context, pr *model.PullRequest) (*model.PullRequest, error)
	Get(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.PullRequest, error)
}

type CodeFileStore interface {
	Upsert(ctx context.Context, file *model.CodeFile) (*model.CodeFile, error)
	Get(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.CodeFile, error)
}

type DocumentStore interface {
	Upsert(ctx context.Context, doc *model.Document) (*model.Document, error)
	Get(ctx context.Context, orgID int64, sourceID string) (*model.Document, error)
	ListForIndex(ctx context.Context, orgID int64, afterID int64, limit int32) ([]model.Document, error)
}

// Stores are the entity store handles the indexer writes through. The
// store package implementations satisfy these directly.
type Stores struct {
	Tickets      TicketStore
	Commits      CommitStore
	PullRequests PullRequestStore
	CodeFiles    CodeFileStore
	Documents    DocumentStore
	States       store.IndexStateStore
}

// GraphWriter receives every stored entry. Failures are logged, never
// propagated.
type GraphWriter interface {
	WriteEntries(ctx context.Context, entries []Entry) error
}

type TaskProducer interface {
	EnqueueIndex(ctx context.Context, task queue.IndexTask) error
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (queue.Unlock, error)
}

// CacheInvalidator retires cached searches after vectors of a kind change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, orgID int64, kinds ...model.EntityKind) error
}

type Deps struct {
	Stores   Stores
	Index    vector.Index
	Embedder llm.Embedder
	Graph    GraphWriter      // optional
	Tasks    TaskProducer     // required in queue mode
	Locker   Locker           // defaults to an in-process locker
	Cache    CacheInvalidator // optional
}

type Config struct {
	// Workers bounds concurrent embedding jobs in in-process mode. Zero makes
	// the vector write synchronous.
	Workers    int
	QueueSize  int
	EmbedBatch int
	Dispatch   config.DispatchMode
}

// Outcome of one side of the dual write.
type Outcome string

const (
	OutcomeStored  Outcome = "stored"
	OutcomeIndexed Outcome = "indexed"
	OutcomeQueued  Outcome = "queued"
	OutcomeFailed  Outcome = "failed"
)

// Result is the {Primary, Secondary} outcome for one entity.
type Result struct {
	Kind      model.EntityKind `json:"kind"`
	Key       string           `json:"key"`
	Primary   Outcome          `json:"primary"`
	Secondary Outcome          `json:"secondary"`
	Error     string           `json:"error,omitempty"`
}

type Summary struct {
	Kind     model.EntityKind `json:"kind"`
	Received int              `json:"received"`
	Stored   int              `json:"stored"`
	Indexed  int              `json:"indexed"`
	Queued   int              `json:"queued"`
	Failed   int              `json:"index_failed"`
	Results  []Result         `json:"results"`
}

func (s *Summary) add(results []Result) {
	for _, r := range results {
		switch r.Secondary {
		case OutcomeIndexed:
			s.Indexed++
		case OutcomeQueued:
			s.Queued++
		case OutcomeFailed:
			s.Failed++
		}
	}
	s.Results = append(s.Results, results...)
}

// PartialFailure reports vector-side failures without failing the ingest.
func (s *Summary) PartialFailure() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d %s entities: %w", s.Failed, s.Stored, s.Kind, domain.ErrPartialIndexFailure)
}

type job struct {
	ctx     context.Context
	entries []Entry
}

type Indexer struct {
	stores   Stores
	index    vector.Index
	embedder llm.Embedder
	graph    GraphWriter
	tasks    TaskProducer
	locker   Locker
	cache    CacheInvalidator
	cfg      Config

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

func New(deps Deps, cfg Config) (*Indexer, error) {
	if deps.Index == nil || deps.Embedder == nil || deps.Stores.States == nil {
		return nil, fmt.Errorf("indexer requires a vector index, an embedder and an index state store")
	}
	if cfg.Dispatch == "" {
		cfg.Dispatch = config.DispatchInProcess
	}
	if cfg.Dispatch == config.DispatchQueue && deps.Tasks == nil {
		return nil, fmt.Errorf("queue dispatch requires a task producer")
	}
	if cfg.EmbedBatch <= 0 {
		cfg.EmbedBatch = 32
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if deps.Locker == nil {
		deps.Locker = queue.NewLocalLocker()
	}

	ix := &Indexer{
		stores:   deps.Stores,
		index:    deps.Index,
		embedder: deps.Embedder,
		graph:    deps.Graph,
		tasks:    deps.Tasks,
		locker:   deps.Locker,
		cache:    deps.Cache,
		cfg:      cfg,
	}

	if cfg.Dispatch == config.DispatchInProcess && cfg.Workers > 0 {
		ix.jobs = make(chan job, cfg.QueueSize)
		for i := 0; i < cfg.Workers; i++ {
			ix.wg.Add(1)
			go ix.runWorker()
		}
	}
	return ix, nil
}

// Close stops accepting vector jobs and waits for queued ones to finish.
func (ix *Indexer) Close() {
	ix.mu.Lock()
	if ix.closed {
		ix.mu.Unlock()
		return
	}
	ix.closed = true
	if ix.jobs != nil {
		close(ix.jobs)
	}
	ix.mu.Unlock()
	ix.wg.Wait()
}

func (ix *Indexer) runWorker() {
	defer ix.wg.Done()
	for j := range ix.jobs {
		ix.Project(j.ctx, j.entries)
	}
}

func (ix *Indexer) IngestTickets(ctx context.Context, orgID int64, tickets []model.Ticket) (*Summary, error) {
	return ingest(ctx, ix, orgID, model.KindTicket, tickets, func(ctx context.Context, t *model.Ticket) (Entry, error) {
		t.OrganizationID = orgID
		stored, err := ix.stores.Tickets.Upsert(ctx, t)
		if err != nil {
			return Entry{}, err
		}
		return TicketEntry(*stored), nil
	})
}

func (ix *Indexer) IngestCommits(ctx context.Context, orgID int64, commits []model.Commit) (*Summary, error) {
	return ingest(ctx, ix, orgID, model.KindCommit, commits, func(ctx context.Context, c *model.Commit) (Entry, error) {
		c.OrganizationID = orgID
		stored, err := ix.stores.Commits.Upsert(ctx, c)
		if err != nil {
			return Entry{}, err
		}
		return CommitEntry(*stored), nil
	})
}

func (ix *Indexer) IngestPullRequests(ctx context.Context, orgID int64, prs []model.PullRequest) (*Summary, error) {
	return ingest(ctx, ix, orgID, model.KindPullRequest, prs, func(ctx context.Context, p *model.PullRequest) (Entry, error) {
		p.OrganizationID = orgID
		stored, err := ix.stores.PullRequests.Upsert(ctx, p)
		if err != nil {
			return Entry{}, err
		}
		return PullRequestEntry(*stored), nil
	})
}

func (ix *Indexer) IngestCodeFiles(ctx context.Context, orgID int64, files []model.CodeFile) (*Summary, error) {
	return ingest(ctx, ix, orgID, model.KindCodeFile, files, func(ctx context.Context, f *model.CodeFile) (Entry, error) {
		f.OrganizationID = orgID
		stored, err := ix.stores.CodeFiles.Upsert(ctx, f)
		if err != nil {
			return Entry{}, err
		}
		return CodeFileEntry(*stored), nil
	})
}

func (ix *Indexer) IngestDocuments(ctx context.Context, orgID int64, docs []model.Document) (*Summary, error) {
	return ingest(ctx, ix, orgID, model.KindDocument, docs, func(ctx context.Context, d *model.Document) (Entry, error) {
		d.OrganizationID = orgID
		stored, err := ix.stores.Documents.Upsert(ctx, d)
		if err != nil {
			return Entry{}, err
		}
		return DocumentEntry(*stored), nil
	})
}

// ingest writes items sequentially to the entity store and hands the stored
// entries to the vector side. A store failure stops the batch; entities
// already written stay written and are projected.
func ingest[T any](ctx context.Context, ix *Indexer, orgID int64, kind model.EntityKind, items []T, write func(context.Context, *T) (Entry, error)) (*Summary, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:      "correlate.indexer",
		OrganizationID: &orgID,
		EntityKind:     logger.Ptr(string(kind)),
		Operation:      logger.Ptr("ingest"),
	})
	sc := logger.StartSpan(ctx, "indexer.ingest",
		attribute.String("kind", string(kind)),
		attribute.Int("count", len(items)))
	defer sc.End()
	ctx = sc.Context()

	summary := &Summary{Kind: kind, Received: len(items)}
	entries := make([]Entry, 0, len(items))

	var writeErr error
	for i := range items {
		entry, err := write(ctx, &items[i])
		if err != nil {
			writeErr = fmt.Errorf("store %s %d of %d: %w", kind, i+1, len(items), err)
			break
		}
		summary.Stored++
		entries = append(entries, entry)
	}

	summary.add(ix.secondary(ctx, entries))

	if writeErr != nil {
		sc.RecordError(writeErr)
		return summary, writeErr
	}

	slog.InfoContext(ctx, "ingest completed",
		"received", summary.Received,
		"stored", summary.Stored,
		"indexed", summary.Indexed,
		"queued", summary.Queued,
		"index_failed", summary.Failed)
	return summary, nil
}

// secondary runs the best-effort half of the dual write.
func (ix *Indexer) secondary(ctx context.Context, entries []Entry) []Result {
	if len(entries) == 0 {
		return nil
	}

	if ix.graph != nil {
		if err := ix.graph.WriteEntries(ctx, entries); err != nil {
			slog.WarnContext(ctx, "graph projection failed", "error", err, "count", len(entries))
		}
	}

	for _, e := range entries {
		ix.record(ctx, e, model.IndexStatusPending, nil)
	}

	switch {
	case ix.cfg.Dispatch == config.DispatchQueue:
		return ix.enqueue(ctx, entries)
	case ix.jobs == nil:
		return ix.Project(ctx, entries)
	default:
		return ix.submit(ctx, entries)
	}
}

func (ix *Indexer) submit(ctx context.Context, entries []Entry) []Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.closed {
		return ix.failAll(ctx, entries, errors.New("indexer closed"))
	}

	// Jobs outlive the request; keep its values, drop its cancellation.
	j := job{ctx: context.WithoutCancel(ctx), entries: entries}
	select {
	case ix.jobs <- j:
		return results(entries, OutcomeQueued, nil)
	case <-ctx.Done():
		return ix.failAll(ctx, entries, fmt.Errorf("dispatch: %w", ctx.Err()))
	}
}

func (ix *Indexer) enqueue(ctx context.Context, entries []Entry) []Result {
	trace := logger.InjectTrace(ctx)
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		err := ix.tasks.EnqueueIndex(ctx, queue.IndexTask{
			OrganizationID: e.OrganizationID,
			Kind:           e.Kind,
			EntityKey:      e.Key,
			Trace:          trace,
		})
		if err != nil {
			slog.WarnContext(ctx, "enqueue index task failed", "error", err, "entity_key", e.Key)
			ix.record(ctx, e, model.IndexStatusFailed, err)
			out = append(out, result(e, OutcomeFailed, err))
			continue
		}
		out = append(out, result(e, OutcomeQueued, nil))
	}
	return out
}

// Project embeds entries and upserts them into the vector index, recording
// each outcome. A failing batch is retried entity by entity so one bad entity
// cannot fail the rest.
func (ix *Indexer) Project(ctx context.Context, entries []Entry) []Result {
	out := make([]Result, 0, len(entries))
	for _, batch := range llm.Batches(entries, ix.cfg.EmbedBatch) {
		err := ix.projectBatch(ctx, batch)
		if err == nil {
			for _, e := range batch {
				ix.record(ctx, e, model.IndexStatusIndexed, nil)
			}
			out = append(out, results(batch, OutcomeIndexed, nil)...)
			continue
		}
		if len(batch) == 1 {
			out = append(out, ix.fail(ctx, batch[0], err))
			continue
		}

		slog.WarnContext(ctx, "vector batch failed, retrying per entity", "error", err, "size", len(batch))
		for _, e := range batch {
			if err := ix.projectBatch(ctx, []Entry{e}); err != nil {
				out = append(out, ix.fail(ctx, e, err))
				continue
			}
			ix.record(ctx, e, model.IndexStatusIndexed, nil)
			out = append(out, result(e, OutcomeIndexed, nil))
		}
	}
	ix.invalidateIndexed(ctx, entries, out)
	return out
}

// invalidateIndexed bumps the search cache for every (organization, kind)
// that gained vectors. Results line up with entries one to one.
func (ix *Indexer) invalidateIndexed(ctx context.Context, entries []Entry, out []Result) {
	if ix.cache == nil {
		return
	}
	touched := map[int64][]model.EntityKind{}
	for i, r := range out {
		if r.Secondary != OutcomeIndexed {
			continue
		}
		org := entries[i].OrganizationID
		if !slices.Contains(touched[org], r.Kind) {
			touched[org] = append(touched[org], r.Kind)
		}
	}
	for org, kinds := range touched {
		ix.invalidate(ctx, org, kinds...)
	}
}

func (ix *Indexer) invalidate(ctx context.Context, orgID int64, kinds ...model.EntityKind) {
	if ix.cache == nil || len(kinds) == 0 {
		return
	}
	if err := ix.cache.Invalidate(ctx, orgID, kinds...); err != nil {
		slog.WarnContext(ctx, "search cache invalidation failed", "error", err, "organization_id", orgID)
	}
}

func (ix *Indexer) projectBatch(ctx context.Context, batch []Entry) error {
	texts := make([]string, len(batch))
	for i, e := range batch {
		texts[i] = e.Text
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed: got %d vectors for %d entities", len(vectors), len(batch))
	}

	points := make([]vector.Point, len(batch))
	for i, e := range batch {
		points[i] = vector.Point{
			ID:             id.PointID(e.OrganizationID, string(e.Kind), e.Key),
			OrganizationID: e.OrganizationID,
			Kind:           e.Kind,
			EntityKey:      e.Key,
			Text:           e.Text,
			Vector:         vectors[i],
			Payload:        e.Payload,
		}
	}
	if err := ix.index.Upsert(ctx, points...); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	return nil
}

func (ix *Indexer) fail(ctx context.Context, e Entry, err error) Result {
	slog.WarnContext(ctx, "vector write failed",
		"error", err,
		"entity_kind", e.Kind,
		"entity_key", e.Key)
	ix.record(ctx, e, model.IndexStatusFailed, err)
	return result(e, OutcomeFailed, err)
}

func (ix *Indexer) failAll(ctx context.Context, entries []Entry, err error) []Result {
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		out = append(out, ix.fail(ctx, e, err))
	}
	return out
}

func (ix *Indexer) record(ctx context.Context, e Entry, status model.IndexStatus, cause error) {
	state := model.IndexState{
		OrganizationID: e.OrganizationID,
		Kind:           e.Kind,
		EntityKey:      e.Key,
		Status:         status,
	}
	if cause != nil {
		state.LastError = logger.Ptr(cause.Error())
	}
	if err := ix.stores.States.Record(ctx, state); err != nil {
		slog.WarnContext(ctx, "recording index state failed",
			"error", err,
			"entity_key", e.Key,
			"status", status)
	}
}

// Status returns per-kind counts of pending, indexed and failed vector writes.
func (ix *Indexer) Status(ctx context.Context, orgID int64) ([]model.IndexStatusCounts, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	counts, err := ix.stores.States.Counts(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("index status: %w", err)
	}
	return counts, nil
}

func result(e Entry, secondary Outcome, err error) Result {
	r := Result{Kind: e.Kind, Key: e.Key, Primary: OutcomeStored, Secondary: secondary}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func results(entries []Entry, secondary Outcome, err error) []Result {
	out := make([]Result, len(entries))
	for i, e := range entries {
		out[i] = result(e, secondary, err)
	}
	return out
}
