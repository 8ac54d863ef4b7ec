// Package retriever answers a free-text query from every vector collection at
// once and turns the hits into numbered, attributable sources.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/vector"
)

const (
	defaultTopK    = 5
	maxTopK        = 10
	defaultTimeout = 8 * time.Second
)

// excerptBudget is the character budget per kind for one context block.
var excerptBudget = map[model.EntityKind]int{
	model.KindDocument:    500,
	model.KindTicket:      400,
	model.KindPullRequest: 400,
	model.KindCommit:      300,
	model.KindCodeFile:    300,
}

// Filter enables source families. Git covers commits and pull requests.
type Filter struct {
	Documents bool `json:"include_documents"`
	Tickets   bool `json:"include_tickets"`
	Git       bool `json:"include_git"`
	Code      bool `json:"include_code"`
}

func AllSources() Filter {
	return Filter{Documents: true, Tickets: true, Git: true, Code: true}
}

// Kinds lists the enabled kinds in retrieval order.
func (f Filter) Kinds() []model.EntityKind {
	var kinds []model.EntityKind
	for _, k := range model.AllKinds {
		switch k {
		case model.KindDocument:
			if !f.Documents {
				continue
			}
		case model.KindTicket:
			if !f.Tickets {
				continue
			}
		case model.KindCommit, model.KindPullRequest:
			if !f.Git {
				continue
			}
		case model.KindCodeFile:
			if !f.Code {
				continue
			}
		}
		kinds = append(kinds, k)
	}
	return kinds
}

type Config struct {
	TopK        int
	Timeout     time.Duration
	CachePrefix string
	CacheTTL    time.Duration
}

type Deps struct {
	Index    vector.Index
	Embedder llm.Embedder
	// Keywords is optional; without it Search is purely semantic.
	Keywords KeywordSearcher
	// Cache is optional.
	Cache Cache
}

type Retriever struct {
	index    vector.Index
	embedder llm.Embedder
	keywords KeywordSearcher
	cache    Cache
	cfg      Config
}

func New(deps Deps, cfg Config) (*Retriever, error) {
	if deps.Index == nil || deps.Embedder == nil {
		return nil, fmt.Errorf("retriever requires a vector index and an embedder")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	cfg.TopK = min(cfg.TopK, maxTopK)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CachePrefix == "" {
		cfg.CachePrefix = "qcache"
	}
	return &Retriever{
		index:    deps.Index,
		embedder: deps.Embedder,
		keywords: deps.Keywords,
		cache:    deps.Cache,
		cfg:      cfg,
	}, nil
}

type kindResult struct {
	kind model.EntityKind
	hits []vector.Hit
	err  error
}

// Retrieve embeds query once and searches every enabled kind concurrently.
// Kinds that fail or miss the deadline are reported in Degraded; the rest are
// still returned.
func (r *Retriever) Retrieve(ctx context.Context, orgID int64, query string, filter Filter) (*model.RetrievalResult, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Invalid("query", "required")
	}
	kinds := filter.Kinds()
	if len(kinds) == 0 {
		return nil, domain.Invalid("sources", "at least one source must be enabled")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		Component:      "correlate.retriever",
	})
	span := logger.StartSpan(ctx, "retriever.retrieve")
	defer span.End()
	ctx = span.Context()

	vec, err := r.embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	// Buffered so late searches never block after the deadline.
	results := make(chan kindResult, len(kinds))
	for _, kind := range kinds {
		go func(kind model.EntityKind) {
			hits, err := r.index.Search(searchCtx, vector.Query{
				OrganizationID: orgID,
				Kind:           kind,
				Vector:         vec,
				Limit:          r.cfg.TopK,
			})
			results <- kindResult{kind: kind, hits: hits, err: err}
		}(kind)
	}

	byKind := make(map[model.EntityKind][]vector.Hit, len(kinds))
	answered := make(map[model.EntityKind]bool, len(kinds))
collect:
	for range kinds {
		select {
		case res := <-results:
			answered[res.kind] = true
			if res.err != nil {
				slog.WarnContext(ctx, "vector search failed, dropping kind",
					"kind", res.kind, "error", res.err)
				continue
			}
			byKind[res.kind] = res.hits
		case <-searchCtx.Done():
			break collect
		}
	}

	out := &model.RetrievalResult{
		Query:       query,
		Sources:     []model.SourceRef{},
		Attribution: model.SourceAttribution{},
	}
	var blocks []string
	for _, kind := range kinds {
		hits, ok := byKind[kind]
		if !ok {
			if !answered[kind] {
				slog.WarnContext(ctx, "vector search timed out, dropping kind", "kind", kind)
			}
			out.Degraded = append(out.Degraded, kind)
			continue
		}
		hits = common.Head(hits, r.cfg.TopK)
		out.Attribution[kind] = len(hits)
		for i, hit := range hits {
			src := sourceRef(kind, i+1, hit)
			out.Sources = append(out.Sources, src)
			blocks = append(blocks, contextBlock(src))
		}
	}
	out.Context = strings.Join(blocks, "\n\n")

	slog.InfoContext(ctx, "retrieval completed",
		"sources", len(out.Sources),
		"degraded", len(out.Degraded))
	return out, nil
}

func (r *Retriever) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Timeout("embeddings", err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed query: encoder returned no vector")
	}
	return vectors[0], nil
}

// RefID renders the reference id of the n-th source of a kind, e.g. TICKET-1.
func RefID(kind model.EntityKind, n int) string {
	return fmt.Sprintf("%s-%d", kind.RefPrefix(), n)
}

func sourceRef(kind model.EntityKind, ordinal int, hit vector.Hit) model.SourceRef {
	return model.SourceRef{
		RefID:   RefID(kind, ordinal),
		Kind:    kind,
		Key:     hit.EntityKey,
		Title:   payloadString(hit.Payload, vector.PayloadTitle),
		Excerpt: common.Excerpt(payloadString(hit.Payload, vector.PayloadText), excerptBudget[kind]),
		URL:     payloadURL(hit.Payload),
		Score:   hit.Score,
	}
}

func contextBlock(src model.SourceRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", src.RefID, src.Key)
	if src.Title != "" && src.Title != src.Key {
		b.WriteString(" - ")
		b.WriteString(src.Title)
	}
	if src.URL != nil {
		b.WriteString("\nURL: ")
		b.WriteString(*src.URL)
	}
	if src.Excerpt != "" {
		b.WriteString("\n")
		b.WriteString(src.Excerpt)
	}
	return b.String()
}

func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func payloadURL(payload map[string]any) *string {
	if u := payloadString(payload, vector.PayloadURL); u != "" {
		return &u
	}
	return nil
}
