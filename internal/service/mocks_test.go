package service_test

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"basegraph.app/correlate/internal/codeparse"
	"basegraph.app/correlate/internal/decision"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

// recordingIndexer captures the normalized batches the service hands over.
type recordingIndexer struct {
	tickets      []model.Ticket
	commits      []model.Commit
	pullRequests []model.PullRequest
	codeFiles    []model.CodeFile
	documents    []model.Document
	calls        int
	err          error
}

func summary(kind model.EntityKind, n int) *indexer.Summary {
	return &indexer.Summary{Kind: kind, Received: n, Stored: n, Indexed: n, Results: []indexer.Result{}}
}

func (r *recordingIndexer) IngestTickets(_ context.Context, _ int64, t []model.Ticket) (*indexer.Summary, error) {
	r.calls++
	r.tickets = append(r.tickets, t...)
	return summary(model.KindTicket, len(t)), r.err
}

func (r *recordingIndexer) IngestCommits(_ context.Context, _ int64, c []model.Commit) (*indexer.Summary, error) {
	r.calls++
	r.commits = append(r.commits, c...)
	return summary(model.KindCommit, len(c)), r.err
}

func (r *recordingIndexer) IngestPullRequests(_ context.Context, _ int64, p []model.PullRequest) (*indexer.Summary, error) {
	r.calls++
	r.pullRequests = append(r.pullRequests, p...)
	return summary(model.KindPullRequest, len(p)), r.err
}

func (r *recordingIndexer) IngestCodeFiles(_ context.Context, _ int64, f []model.CodeFile) (*indexer.Summary, error) {
	r.calls++
	r.codeFiles = append(r.codeFiles, f...)
	return summary(model.KindCodeFile, len(f)), r.err
}

func (r *recordingIndexer) IngestDocuments(_ context.Context, _ int64, d []model.Document) (*indexer.Summary, error) {
	r.calls++
	r.documents = append(r.documents, d...)
	return summary(model.KindDocument, len(d)), r.err
}

type fakeParser struct {
	symbols codeparse.Symbols
	err     error
	langs   []codeparse.Language
}

func (p *fakeParser) Extract(_ context.Context, lang codeparse.Language, _ []byte) (codeparse.Symbols, error) {
	p.langs = append(p.langs, lang)
	return p.symbols, p.err
}

type fakeExtractor struct {
	extraction *decision.Extraction
	calls      int
}

func (f *fakeExtractor) Extract(context.Context, decision.Context) (*decision.Extraction, error) {
	f.calls++
	return f.extraction, nil
}

// world is an in-memory entity store shared by the per-kind views below.
type world struct {
	mu        sync.Mutex
	nextID    int64
	tickets   map[string]model.Ticket
	commits   map[string]model.Commit
	prs       map[string]model.PullRequest
	files     map[string]model.CodeFile
	docs      map[string]model.Document
	decisions map[string]model.Decision
	states    map[string]model.IndexState
}

func newWorld() *world {
	return &world{
		tickets:   map[string]model.Ticket{},
		commits:   map[string]model.Commit{},
		prs:       map[string]model.PullRequest{},
		files:     map[string]model.CodeFile{},
		docs:      map[string]model.Document{},
		decisions: map[string]model.Decision{},
		states:    map[string]model.IndexState{},
	}
}

func scoped(org int64, key string) string {
	return fmt.Sprintf("%d/%s", org, key)
}

func (w *world) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *world) referenced(org int64) map[string]bool {
	refs := map[string]bool{}
	for _, c := range w.commits {
		if c.OrganizationID == org {
			for _, r := range c.TicketReferences {
				refs[r] = true
			}
		}
	}
	for _, p := range w.prs {
		if p.OrganizationID == org {
			for _, r := range p.TicketReferences {
				refs[r] = true
			}
		}
	}
	return refs
}

func sortedValues[T any](m map[string]T, org int64, orgOf func(T) int64, idOf func(T) int64, after int64) []T {
	var out []T
	for _, v := range m {
		if orgOf(v) == org && idOf(v) > after {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idOf(out[i]) < idOf(out[j]) })
	return out
}

func limit[T any](items []T, n int32) []T {
	if int32(len(items)) > n {
		return items[:n]
	}
	return items
}

type ticketView struct{ w *world }

func (v ticketView) Upsert(_ context.Context, t *model.Ticket) (*model.Ticket, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	k := scoped(t.OrganizationID, t.Key)
	out := *t
	if prev, ok := v.w.tickets[k]; ok {
		out.ID = prev.ID
	} else {
		out.ID = v.w.id()
	}
	v.w.tickets[k] = out
	return &out, nil
}

func (v ticketView) GetByKey(_ context.Context, org int64, key string) (*model.Ticket, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	t, ok := v.w.tickets[scoped(org, key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (v ticketView) ListForIndex(_ context.Context, org, after int64, n int32) ([]model.Ticket, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	return limit(sortedValues(v.w.tickets, org,
		func(t model.Ticket) int64 { return t.OrganizationID },
		func(t model.Ticket) int64 { return t.ID }, after), n), nil
}

func (v ticketView) ListOrphaned(_ context.Context, org int64, since time.Time, n int32) ([]model.Ticket, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	refs := v.w.referenced(org)
	var out []model.Ticket
	for _, t := range v.w.tickets {
		if t.OrganizationID == org && !t.CreatedAt.Before(since) && !refs[t.Key] {
			out = append(out, t)
		}
	}
	return limit(out, n), nil
}

func (v ticketView) ListStale(_ context.Context, org int64, cutoff time.Time, n int32) ([]model.Ticket, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.Ticket
	for _, t := range v.w.tickets {
		if t.OrganizationID == org && t.UpdatedAt.Before(cutoff) && !t.IsTerminal() {
			out = append(out, t)
		}
	}
	return limit(out, n), nil
}

func (v ticketView) ListMissingDecision(_ context.Context, org int64, issueTypes []string, n int32) ([]store.TicketCommitCount, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []store.TicketCommitCount
	for _, t := range v.w.tickets {
		if t.OrganizationID != org || !slices.Contains(issueTypes, t.IssueType) {
			continue
		}
		if _, ok := v.w.decisions[scoped(org, t.Key)]; ok {
			continue
		}
		var count int64
		for _, c := range v.w.commits {
			if c.OrganizationID == org && slices.Contains(c.TicketReferences, t.Key) {
				count++
			}
		}
		if count > 0 {
			out = append(out, store.TicketCommitCount{Ticket: t, CommitCount: count})
		}
	}
	return limit(out, n), nil
}

type commitView struct{ w *world }

func (v commitView) Upsert(_ context.Context, c *model.Commit) (*model.Commit, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	k := scoped(c.OrganizationID, c.EntityKey())
	out := *c
	if prev, ok := v.w.commits[k]; ok {
		out.ID = prev.ID
	} else {
		out.ID = v.w.id()
	}
	v.w.commits[k] = out
	return &out, nil
}

func (v commitView) GetBySHAPrefix(_ context.Context, org int64, prefix string) ([]model.Commit, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.Commit
	for _, c := range v.w.commits {
		if c.OrganizationID == org && strings.HasPrefix(c.SHA, prefix) {
			out = append(out, c)
		}
	}
	return limit(out, 2), nil
}

func (v commitView) ListForIndex(_ context.Context, org, after int64, n int32) ([]model.Commit, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	return limit(sortedValues(v.w.commits, org,
		func(c model.Commit) int64 { return c.OrganizationID },
		func(c model.Commit) int64 { return c.ID }, after), n), nil
}

func (v commitView) ListByTicket(_ context.Context, org int64, key string) ([]model.Commit, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.Commit
	for _, c := range v.w.commits {
		if c.OrganizationID == org && slices.Contains(c.TicketReferences, key) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (v commitView) ListUndocumented(_ context.Context, org int64, _ []string, n int32) ([]model.Commit, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.Commit
	for _, c := range v.w.commits {
		if c.OrganizationID == org && len(c.TicketReferences) == 0 {
			out = append(out, c)
		}
	}
	return limit(out, n), nil
}

type pullRequestView struct{ w *world }

func (v pullRequestView) Upsert(_ context.Context, p *model.PullRequest) (*model.PullRequest, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	k := scoped(p.OrganizationID, p.EntityKey())
	out := *p
	if prev, ok := v.w.prs[k]; ok {
		out.ID = prev.ID
	} else {
		out.ID = v.w.id()
	}
	v.w.prs[k] = out
	return &out, nil
}

func (v pullRequestView) Get(_ context.Context, org int64, repo string, number int64) (*model.PullRequest, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	p, ok := v.w.prs[scoped(org, model.PullRequest{Repository: repo, Number: number}.EntityKey())]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (v pullRequestView) ListForIndex(_ context.Context, org, after int64, n int32) ([]model.PullRequest, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	return limit(sortedValues(v.w.prs, org,
		func(p model.PullRequest) int64 { return p.OrganizationID },
		func(p model.PullRequest) int64 { return p.ID }, after), n), nil
}

func (v pullRequestView) ListByTicket(_ context.Context, org int64, key string) ([]model.PullRequest, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.PullRequest
	for _, p := range v.w.prs {
		if p.OrganizationID == org && slices.Contains(p.TicketReferences, key) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (v pullRequestView) ListUndocumented(_ context.Context, org int64, _ []string, n int32) ([]model.PullRequest, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.PullRequest
	for _, p := range v.w.prs {
		if p.OrganizationID == org && len(p.TicketReferences) == 0 {
			out = append(out, p)
		}
	}
	return limit(out, n), nil
}

type codeFileView struct{ w *world }

func (v codeFileView) Upsert(_ context.Context, f *model.CodeFile) (*model.CodeFile, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	k := scoped(f.OrganizationID, f.EntityKey())
	out := *f
	if prev, ok := v.w.files[k]; ok {
		out.ID = prev.ID
	} else {
		out.ID = v.w.id()
	}
	v.w.files[k] = out
	return &out, nil
}

func (v codeFileView) Get(_ context.Context, org int64, repo, path string) (*model.CodeFile, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	f, ok := v.w.files[scoped(org, model.CodeFile{Repository: repo, FilePath: path}.EntityKey())]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (v codeFileView) ListForIndex(_ context.Context, org, after int64, n int32) ([]model.CodeFile, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	return limit(sortedValues(v.w.files, org,
		func(f model.CodeFile) int64 { return f.OrganizationID },
		func(f model.CodeFile) int64 { return f.ID }, after), n), nil
}

type documentView struct{ w *world }

func (v documentView) Upsert(_ context.Context, d *model.Document) (*model.Document, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	k := scoped(d.OrganizationID, d.SourceID)
	out := *d
	if prev, ok := v.w.docs[k]; ok {
		out.ID = prev.ID
	} else {
		out.ID = v.w.id()
	}
	v.w.docs[k] = out
	return &out, nil
}

func (v documentView) Get(_ context.Context, org int64, sourceID string) (*model.Document, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	d, ok := v.w.docs[scoped(org, sourceID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (v documentView) ListForIndex(_ context.Context, org, after int64, n int32) ([]model.Document, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	return limit(sortedValues(v.w.docs, org,
		func(d model.Document) int64 { return d.OrganizationID },
		func(d model.Document) int64 { return d.ID }, after), n), nil
}

type decisionView struct{ w *world }

func (v decisionView) Upsert(_ context.Context, d *model.Decision) (*model.Decision, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	k := scoped(d.OrganizationID, d.TicketKey)
	out := *d
	if prev, ok := v.w.decisions[k]; ok {
		out.ID = prev.ID
	} else {
		out.ID = v.w.id()
	}
	v.w.decisions[k] = out
	return &out, nil
}

func (v decisionView) Get(_ context.Context, org, id int64) (*model.Decision, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	for _, d := range v.w.decisions {
		if d.OrganizationID == org && d.ID == id {
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (v decisionView) GetByTicket(_ context.Context, org int64, key string) (*model.Decision, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	d, ok := v.w.decisions[scoped(org, key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (v decisionView) List(_ context.Context, org int64, n, _ int32) ([]model.Decision, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.Decision
	for _, d := range v.w.decisions {
		if d.OrganizationID == org {
			out = append(out, d)
		}
	}
	return limit(out, n), nil
}

func (v decisionView) Search(context.Context, int64, string, int32) ([]store.Scored[model.Decision], error) {
	return nil, nil
}

type stateView struct{ w *world }

func (v stateView) Record(_ context.Context, st model.IndexState) error {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	v.w.states[scoped(st.OrganizationID, string(st.Kind)+":"+st.EntityKey)] = st
	return nil
}

func (v stateView) Counts(_ context.Context, org int64) ([]model.IndexStatusCounts, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	byKind := map[model.EntityKind]*model.IndexStatusCounts{}
	for _, st := range v.w.states {
		if st.OrganizationID != org {
			continue
		}
		c, ok := byKind[st.Kind]
		if !ok {
			c = &model.IndexStatusCounts{Kind: st.Kind}
			byKind[st.Kind] = c
		}
		switch st.Status {
		case model.IndexStatusPending:
			c.Pending++
		case model.IndexStatusIndexed:
			c.Indexed++
		case model.IndexStatusFailed:
			c.Failed++
		}
	}
	var out []model.IndexStatusCounts
	for _, c := range byKind {
		out = append(out, *c)
	}
	return out, nil
}

func (v stateView) ListByStatus(_ context.Context, org int64, kind model.EntityKind, status model.IndexStatus, n int32) ([]model.IndexState, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	var out []model.IndexState
	for _, st := range v.w.states {
		if st.OrganizationID == org && st.Kind == kind && st.Status == status {
			out = append(out, st)
		}
	}
	return limit(out, n), nil
}

func (v stateView) OrganizationIDs(context.Context) ([]int64, error) {
	return nil, nil
}
