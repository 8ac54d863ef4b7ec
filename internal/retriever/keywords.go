package retriever

import (
	"context"
	"fmt"
	"strings"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

// KeywordSearcher is the relational half of hybrid search: trigram matches on
// titles and summaries.
type KeywordSearcher interface {
	SearchFuzzy(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int32) ([]model.SearchHit, error)
}

type Fuzzy[T any] interface {
	SearchFuzzy(ctx context.Context, orgID int64, query string, limit int32) ([]store.Scored[T], error)
}

// StoreKeywords adapts the per-kind store fuzzy searches.
type StoreKeywords struct {
	Tickets      Fuzzy[model.Ticket]
	Commits      Fuzzy[model.Commit]
	PullRequests Fuzzy[model.PullRequest]
	CodeFiles    Fuzzy[model.CodeFile]
	Documents    Fuzzy[model.Document]
}

func (s StoreKeywords) SearchFuzzy(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int32) ([]model.SearchHit, error) {
	switch kind {
	case model.KindTicket:
		return fuzzyHits(ctx, s.Tickets, orgID, query, limit, func(t model.Ticket) model.SearchHit {
			return keywordHit(kind, t.Key, t.Summary, t.Description, t.URL)
		})
	case model.KindCommit:
		return fuzzyHits(ctx, s.Commits, orgID, query, limit, func(c model.Commit) model.SearchHit {
			title, _, _ := strings.Cut(c.Message, "\n")
			return keywordHit(kind, c.EntityKey(), title, c.Message, c.URL)
		})
	case model.KindPullRequest:
		return fuzzyHits(ctx, s.PullRequests, orgID, query, limit, func(p model.PullRequest) model.SearchHit {
			return keywordHit(kind, p.EntityKey(), p.Title, p.Description, p.URL)
		})
	case model.KindCodeFile:
		return fuzzyHits(ctx, s.CodeFiles, orgID, query, limit, func(f model.CodeFile) model.SearchHit {
			return keywordHit(kind, f.EntityKey(), f.FilePath, strings.Join(f.Functions, ", "), f.URL)
		})
	case model.KindDocument:
		return fuzzyHits(ctx, s.Documents, orgID, query, limit, func(d model.Document) model.SearchHit {
			return keywordHit(kind, d.EntityKey(), d.Title, d.Body, d.URL)
		})
	}
	return nil, fmt.Errorf("keyword search: unknown kind %q", kind)
}

func fuzzyHits[T any](ctx context.Context, f Fuzzy[T], orgID int64, query string, limit int32, toHit func(T) model.SearchHit) ([]model.SearchHit, error) {
	if f == nil {
		return nil, nil
	}
	scored, err := f.SearchFuzzy(ctx, orgID, query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]model.SearchHit, 0, len(scored))
	for _, s := range scored {
		hit := toHit(s.Item)
		hit.KeywordScore = s.Score
		hits = append(hits, hit)
	}
	return hits, nil
}

func keywordHit(kind model.EntityKind, key, title, text string, url *string) model.SearchHit {
	return model.SearchHit{
		Kind:    kind,
		Key:     key,
		Title:   title,
		Excerpt: common.Excerpt(text, excerptBudget[kind]),
		URL:     url,
	}
}
