package indexer

import (
	"context"
	"fmt"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
)

// Load rebuilds the entry for a stored entity from its natural key.
func (ix *Indexer) Load(ctx context.Context, orgID int64, kind model.EntityKind, key string) (Entry, error) {
	switch kind {
	case model.KindTicket:
		t, err := ix.stores.Tickets.GetByKey(ctx, orgID, key)
		if err != nil {
			return Entry{}, err
		}
		return TicketEntry(*t), nil

	case model.KindCommit:
		repository, sha, err := model.SplitCommitKey(key)
		if err != nil {
			return Entry{}, domain.Invalid("entity_key", err.Error())
		}
		commits, err := ix.stores.Commits.GetBySHAPrefix(ctx, orgID, sha)
		if err != nil {
			return Entry{}, err
		}
		for _, c := range commits {
			if c.Repository == repository && c.SHA == sha {
				return CommitEntry(c), nil
			}
		}
		return Entry{}, fmt.Errorf("commit %s: %w", key, domain.ErrNotFound)

	case model.KindPullRequest:
		repository, number, err := model.SplitPullRequestKey(key)
		if err != nil {
			return Entry{}, domain.Invalid("entity_key", err.Error())
		}
		p, err := ix.stores.PullRequests.Get(ctx, orgID, repository, number)
		if err != nil {
			return Entry{}, err
		}
		return PullRequestEntry(*p), nil

	case model.KindCodeFile:
		repository, path, err := model.SplitCodeFileKey(key)
		if err != nil {
			return Entry{}, domain.Invalid("entity_key", err.Error())
		}
		f, err := ix.stores.CodeFiles.Get(ctx, orgID, repository, path)
		if err != nil {
			return Entry{}, err
		}
		return CodeFileEntry(*f), nil

	case model.KindDocument:
		d, err := ix.stores.Documents.Get(ctx, orgID, key)
		if err != nil {
			return Entry{}, err
		}
		return DocumentEntry(*d), nil
	}
	return Entry{}, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
}

// ProjectKey loads one entity and writes its vector. Used by the queue worker.
func (ix *Indexer) ProjectKey(ctx context.Context, orgID int64, kind model.EntityKind, key string) (Result, error) {
	entry, err := ix.Load(ctx, orgID, kind, key)
	if err != nil {
		return Result{}, fmt.Errorf("load %s %s: %w", kind, key, err)
	}
	return ix.Project(ctx, []Entry{entry})[0], nil
}

// page lists one page of entries in id order and returns the cursor for the next.
func (ix *Indexer) page(ctx context.Context, orgID int64, kind model.EntityKind, afterID int64, limit int32) ([]Entry, int64, error) {
	switch kind {
	case model.KindTicket:
		rows, err := ix.stores.Tickets.ListForIndex(ctx, orgID, afterID, limit)
		return entriesOf(rows, err, afterID, TicketEntry, func(t model.Ticket) int64 { return t.ID })
	case model.KindCommit:
		rows, err := ix.stores.Commits.ListForIndex(ctx, orgID, afterID, limit)
		return entriesOf(rows, err, afterID, CommitEntry, func(c model.Commit) int64 { return c.ID })
	case model.KindPullRequest:
		rows, err := ix.stores.PullRequests.ListForIndex(ctx, orgID, afterID, limit)
		return entriesOf(rows, err, afterID, PullRequestEntry, func(p model.PullRequest) int64 { return p.ID })
	case model.KindCodeFile:
		rows, err := ix.stores.CodeFiles.ListForIndex(ctx, orgID, afterID, limit)
		return entriesOf(rows, err, afterID, CodeFileEntry, func(f model.CodeFile) int64 { return f.ID })
	case model.KindDocument:
		rows, err := ix.stores.Documents.ListForIndex(ctx, orgID, afterID, limit)
		return entriesOf(rows, err, afterID, DocumentEntry, func(d model.Document) int64 { return d.ID })
	}
	return nil, afterID, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
}

func entriesOf[T any](rows []T, err error, cursor int64, toEntry func(T) Entry, idOf func(T) int64) ([]Entry, int64, error) {
	if err != nil {
		return nil, cursor, err
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = toEntry(r)
		cursor = idOf(r)
	}
	return entries, cursor, nil
}
