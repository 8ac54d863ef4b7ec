package decision_test

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/internal/decision"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
	"basegraph.app/correlate/internal/store"
)

type fakeTickets struct {
	tickets []model.Ticket
}

func (f *fakeTickets) GetByKey(_ context.Context, org int64, key string) (*model.Ticket, error) {
	for _, t := range f.tickets {
		if t.OrganizationID == org && t.Key == key {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeCommits struct {
	commits []model.Commit
}

func (f *fakeCommits) ListByTicket(_ context.Context, org int64, key string) ([]model.Commit, error) {
	var out []model.Commit
	for _, c := range f.commits {
		if c.OrganizationID == org && slices.Contains(c.TicketReferences, key) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakePullRequests struct {
	prs []model.PullRequest
}

func (f *fakePullRequests) ListByTicket(_ context.Context, org int64, key string) ([]model.PullRequest, error) {
	var out []model.PullRequest
	for _, pr := range f.prs {
		if pr.OrganizationID == org && slices.Contains(pr.TicketReferences, key) {
			out = append(out, pr)
		}
	}
	return out, nil
}

// memDecisions keeps one decision per (organization, ticket key), like the
// unique index on the decisions table.
type memDecisions struct {
	mu      sync.Mutex
	nextID  int64
	byKey   map[string]model.Decision
	upserts int
}

func newMemDecisions() *memDecisions {
	return &memDecisions{nextID: 1, byKey: make(map[string]model.Decision)}
}

func decisionKey(org int64, ticket string) string {
	return fmt.Sprintf("%d/%s", org, ticket)
}

func (m *memDecisions) Upsert(_ context.Context, d *model.Decision) (*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++

	saved := *d
	k := decisionKey(d.OrganizationID, d.TicketKey)
	if prev, ok := m.byKey[k]; ok {
		saved.ID = prev.ID
		saved.CreatedAt = prev.CreatedAt
	} else {
		saved.ID = m.nextID
		m.nextID++
		saved.CreatedAt = d.AnalyzedAt
	}
	saved.UpdatedAt = d.AnalyzedAt
	m.byKey[k] = saved
	return &saved, nil
}

func (m *memDecisions) Get(_ context.Context, org int64, id int64) (*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.byKey {
		if d.OrganizationID == org && d.ID == id {
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memDecisions) GetByTicket(_ context.Context, org int64, key string) (*model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byKey[decisionKey(org, key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (m *memDecisions) List(_ context.Context, org int64, limit, offset int32) ([]model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Decision
	for _, d := range m.byKey {
		if d.OrganizationID == org {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b model.Decision) int { return b.AnalyzedAt.Compare(a.AnalyzedAt) })
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDecisions) Search(_ context.Context, org int64, query string, limit int32) ([]store.Scored[model.Decision], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []store.Scored[model.Decision]
	for _, d := range m.byKey {
		text := strings.ToLower(d.Summary + " " + d.ProblemStatement + " " + d.ChosenApproach)
		if d.OrganizationID == org && strings.Contains(text, q) {
			out = append(out, store.Scored[model.Decision]{Item: d, Score: 1})
		}
	}
	if len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDecisions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}

type fakeExtractor struct {
	mu        sync.Mutex
	extractFn func(ctx context.Context, in decision.Context) (*decision.Extraction, error)
	calls     int
	last      decision.Context
}

func (f *fakeExtractor) Extract(ctx context.Context, in decision.Context) (*decision.Extraction, error) {
	f.mu.Lock()
	f.calls++
	f.last = in
	fn := f.extractFn
	f.mu.Unlock()
	return fn(ctx, in)
}

func returning(ex decision.Extraction) func(context.Context, decision.Context) (*decision.Extraction, error) {
	return func(context.Context, decision.Context) (*decision.Extraction, error) {
		out := ex
		return &out, nil
	}
}

type fakeDocuments struct {
	sources    []model.SourceRef
	err        error
	lastFilter retriever.Filter
	lastQuery  string
}

func (f *fakeDocuments) Retrieve(_ context.Context, _ int64, query string, filter retriever.Filter) (*model.RetrievalResult, error) {
	f.lastQuery = query
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &model.RetrievalResult{Query: query, Sources: f.sources}, nil
}

// fakeLLM decodes a canned content string the way the real client does.
type fakeLLM struct {
	content  string
	err      error
	requests []llm.Request
}

func (f *fakeLLM) Chat(_ context.Context, req llm.Request, result any) (*llm.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if err := json.Unmarshal([]byte(f.content), result); err != nil {
		return &llm.Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return &llm.Response{PromptTokens: 100, CompletionTokens: 50}, nil
}

func (f *fakeLLM) Complete(context.Context, llm.Request) (string, *llm.Response, error) {
	return f.content, &llm.Response{}, f.err
}

func (f *fakeLLM) Model() string { return "fake" }
