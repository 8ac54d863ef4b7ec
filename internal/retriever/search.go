package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/vector"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50

	semanticWeight = 0.7
	keywordWeight  = 0.3
)

// Search ranks entities of one kind. With a keyword searcher configured the
// score is 0.7 semantic + 0.3 trigram over the union of both result sets, and
// a vector failure degrades to keyword-only results.
func (r *Retriever) Search(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int) ([]model.SearchHit, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if !kind.Valid() {
		return nil, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Invalid("q", "required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return nil, domain.Invalid("limit", fmt.Sprintf("must be at most %d", maxSearchLimit))
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		EntityKind:     logger.Ptr(string(kind)),
		Component:      "correlate.retriever",
	})

	key, cacheable := r.cacheKey(ctx, orgID, kind, query, limit)
	if cacheable {
		if hits, ok := r.cached(ctx, key); ok {
			return hits, nil
		}
	}

	semantic, semErr := r.semantic(ctx, orgID, kind, query, limit*2)
	if semErr != nil && r.keywords == nil {
		return nil, semErr
	}
	if semErr != nil {
		slog.WarnContext(ctx, "semantic search failed, serving keyword matches only", "error", semErr)
	}

	var keyword []model.SearchHit
	if r.keywords != nil {
		var err error
		keyword, err = r.keywords.SearchFuzzy(ctx, orgID, kind, query, int32(limit*2))
		if err != nil {
			if semErr != nil {
				return nil, fmt.Errorf("search %s: %w", kind, errors.Join(semErr, err))
			}
			slog.WarnContext(ctx, "keyword search failed, serving semantic matches only", "error", err)
			keyword = nil
		}
	}

	hits := fuse(semantic, keyword, r.keywords != nil)
	hits = common.Head(hits, limit)

	// Degraded answers are not cached.
	if cacheable && semErr == nil {
		r.store(ctx, key, hits)
	}
	return hits, nil
}

func (r *Retriever) semantic(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int) ([]vector.Hit, error) {
	vec, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	searchCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	hits, err := r.index.Search(searchCtx, vector.Query{OrganizationID: orgID, Kind: kind, Vector: vec, Limit: limit})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Timeout("vector search", err)
		}
		return nil, fmt.Errorf("vector search %s: %w", kind, err)
	}
	return hits, nil
}

func fuse(semantic []vector.Hit, keyword []model.SearchHit, hybrid bool) []model.SearchHit {
	merged := make(map[string]*model.SearchHit, len(semantic)+len(keyword))
	var order []string
	for _, h := range semantic {
		if _, ok := merged[h.EntityKey]; ok {
			continue
		}
		hit := model.SearchHit{
			Kind:          h.Kind,
			Key:           h.EntityKey,
			Title:         payloadString(h.Payload, vector.PayloadTitle),
			Excerpt:       common.Excerpt(payloadString(h.Payload, vector.PayloadText), excerptBudget[h.Kind]),
			URL:           payloadURL(h.Payload),
			SemanticScore: h.Score,
			Payload:       h.Payload,
		}
		merged[h.EntityKey] = &hit
		order = append(order, h.EntityKey)
	}
	for _, k := range keyword {
		if existing, ok := merged[k.Key]; ok {
			existing.KeywordScore = k.KeywordScore
			if existing.URL == nil {
				existing.URL = k.URL
			}
			continue
		}
		hit := k
		merged[k.Key] = &hit
		order = append(order, k.Key)
	}

	out := make([]model.SearchHit, 0, len(order))
	for _, key := range order {
		hit := merged[key]
		if hybrid {
			hit.Score = semanticWeight*hit.SemanticScore + keywordWeight*hit.KeywordScore
		} else {
			hit.Score = hit.SemanticScore
		}
		out = append(out, *hit)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// cacheKey is false when there is no cache or its generation is unreadable;
// a stale generation could serve results from before the last write.
func (r *Retriever) cacheKey(ctx context.Context, orgID int64, kind model.EntityKind, query string, limit int) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	gen, err := r.cache.Generation(ctx, generationKey(r.cfg.CachePrefix, orgID, kind))
	if err != nil {
		slog.WarnContext(ctx, "search cache generation unreadable, bypassing cache", "error", err)
		return "", false
	}
	return searchCacheKey(r.cfg.CachePrefix, orgID, kind, gen, query, limit), true
}

// Invalidate retires cached searches over kinds of one organization. The
// indexer calls it after vectors change.
func (r *Retriever) Invalidate(ctx context.Context, orgID int64, kinds ...model.EntityKind) error {
	if r.cache == nil {
		return nil
	}
	var errs []error
	for _, kind := range kinds {
		if err := r.cache.Bump(ctx, generationKey(r.cfg.CachePrefix, orgID, kind)); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

// ClearCache drops every cached search of one organization and reports how
// many entries went.
func (r *Retriever) ClearCache(ctx context.Context, orgID int64) (int, error) {
	if orgID <= 0 {
		return 0, domain.Invalid("organization_id", "required")
	}
	if r.cache == nil {
		return 0, nil
	}
	n, err := r.cache.DeletePrefix(ctx, searchCachePrefix(r.cfg.CachePrefix, orgID))
	if err != nil {
		return n, fmt.Errorf("clear search cache: %w", err)
	}
	slog.InfoContext(ctx, "search cache cleared", "organization_id", orgID, "entries", n)
	return n, nil
}

func (r *Retriever) cached(ctx context.Context, key string) ([]model.SearchHit, bool) {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.WarnContext(ctx, "search cache read failed", "error", err)
		}
		return nil, false
	}
	var hits []model.SearchHit
	if err := json.Unmarshal(raw, &hits); err != nil {
		slog.WarnContext(ctx, "search cache entry unreadable", "error", err)
		return nil, false
	}
	return hits, true
}

func (r *Retriever) store(ctx context.Context, key string, hits []model.SearchHit) {
	if r.cfg.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(hits)
	if err != nil {
		slog.WarnContext(ctx, "search cache encode failed", "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, raw, r.cfg.CacheTTL); err != nil {
		slog.WarnContext(ctx, "search cache write failed", "error", err)
	}
}
