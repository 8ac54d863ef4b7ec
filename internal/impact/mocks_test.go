package impact_test

import (
	"context"
	"slices"
	"sort"
	"strings"

	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

type fakeTickets struct {
	tickets     []model.Ticket
	similar     []store.Scored[model.Ticket]
	lastSimilar store.SimilarTicketsQuery
}

func (f *fakeTickets) GetByKey(_ context.Context, org int64, key string) (*model.Ticket, error) {
	for _, t := range f.tickets {
		if t.OrganizationID == org && t.Key == key {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTickets) ListByKeys(_ context.Context, org int64, keys []string) ([]model.Ticket, error) {
	var out []model.Ticket
	for _, t := range f.tickets {
		if t.OrganizationID == org && slices.Contains(keys, t.Key) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTickets) ListSimilar(_ context.Context, q store.SimilarTicketsQuery) ([]store.Scored[model.Ticket], error) {
	f.lastSimilar = q
	return f.similar, nil
}

type fakeCommits struct {
	commits []model.Commit
}

func (f *fakeCommits) GetBySHAPrefix(_ context.Context, org int64, prefix string) ([]model.Commit, error) {
	var out []model.Commit
	for _, c := range f.commits {
		if c.OrganizationID == org && strings.HasPrefix(c.SHA, prefix) {
			out = append(out, c)
		}
	}
	if len(out) > 2 {
		out = out[:2]
	}
	return out, nil
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

func (f *fakeCommits) ListTouchingFile(_ context.Context, org int64, path string, limit int32) ([]model.Commit, error) {
	var out []model.Commit
	for _, c := range f.commits {
		if c.OrganizationID == org && slices.Contains(c.FilesChanged, path) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CommitDate.After(out[j].CommitDate) })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RankAuthors counts commits whose file list overlaps paths, per author email.
func (f *fakeCommits) RankAuthors(_ context.Context, org int64, paths []string, limit int32) ([]store.AuthorRank, error) {
	ranks := map[string]*store.AuthorRank{}
	for _, c := range f.commits {
		if c.OrganizationID != org || !overlaps(c.FilesChanged, paths) {
			continue
		}
		r, ok := ranks[c.AuthorEmail]
		if !ok {
			r = &store.AuthorRank{Name: c.AuthorName, Email: c.AuthorEmail}
			ranks[c.AuthorEmail] = r
		}
		r.CommitCount++
		if c.CommitDate.After(r.LastCommitDate) {
			r.LastCommitDate = c.CommitDate
		}
	}
	var out []store.AuthorRank
	for _, r := range ranks {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommitCount != out[j].CommitCount {
			return out[i].CommitCount > out[j].CommitCount
		}
		return out[i].LastCommitDate.After(out[j].LastCommitDate)
	})
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePRs struct {
	prs []model.PullRequest
}

func (f *fakePRs) ListByTicket(_ context.Context, org int64, key string) ([]model.PullRequest, error) {
	var out []model.PullRequest
	for _, p := range f.prs {
		if p.OrganizationID == org && slices.Contains(p.TicketReferences, key) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePRs) ListTouchingFile(_ context.Context, org int64, path string, limit int32) ([]model.PullRequest, error) {
	var out []model.PullRequest
	for _, p := range f.prs {
		if p.OrganizationID == org && slices.Contains(p.FilesChanged, path) {
			out = append(out, p)
		}
	}
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}
