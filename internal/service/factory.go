package service

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"basegraph.app/correlate/common/arangodb"
	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/codeparse"
	"basegraph.app/correlate/internal/decision"
	"basegraph.app/correlate/internal/gap"
	"basegraph.app/correlate/internal/graph"
	"basegraph.app/correlate/internal/impact"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/mapper"
	"basegraph.app/correlate/internal/queue"
	"basegraph.app/correlate/internal/retriever"
	"basegraph.app/correlate/internal/store"
	"basegraph.app/correlate/internal/synth"
	"basegraph.app/correlate/internal/vector"
)

// Infra holds the connections the services are built from. Redis, Graph,
// LLM and Tasks are optional.
type Infra struct {
	Stores   *store.Stores
	Index    vector.Index
	Embedder llm.Embedder
	LLM      llm.Client
	Redis    *redis.Client
	Graph    arangodb.Client
	Tasks    queue.Producer
	Config   config.Config
}

type Services struct {
	indexer   *indexer.Indexer
	retriever *retriever.Retriever
	gaps      *gap.Detector
	impact    *impact.Analyzer
	graph     *graph.Service
	decisions *decision.Analyzer
	synth     *synth.Synthesizer
	ingest    IngestService
	importer  GitLabImporter
	entities  EntityService
}

func NewServices(infra Infra) (*Services, error) {
	if infra.Stores == nil {
		return nil, errors.New("services require entity stores")
	}
	stores := infra.Stores
	cfg := infra.Config

	var locker interface {
		indexer.Locker
		decision.Locker
	} = queue.NewLocalLocker()
	var cache retriever.Cache
	var conversations synth.Conversations = synth.NewMemoryConversations()
	if infra.Redis != nil {
		locker = queue.NewRedisLocker(infra.Redis)
		cache = retriever.NewRedisCache(infra.Redis)
		conversations = synth.NewRedisConversations(infra.Redis)
	}

	ret, err := retriever.New(retriever.Deps{
		Index:    infra.Index,
		Embedder: infra.Embedder,
		Keywords: retriever.StoreKeywords{
			Tickets:      stores.Tickets(),
			Commits:      stores.Commits(),
			PullRequests: stores.PullRequests(),
			CodeFiles:    stores.CodeFiles(),
			Documents:    stores.Documents(),
		},
		Cache: cache,
	}, retriever.Config{
		TopK:        cfg.Retrieval.TopK,
		Timeout:     cfg.Retrieval.Timeout,
		CachePrefix: cfg.Redis.CachePrefix,
		CacheTTL:    cfg.Redis.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}

	ixDeps := indexer.Deps{
		Stores: indexer.Stores{
			Tickets:      stores.Tickets(),
			Commits:      stores.Commits(),
			PullRequests: stores.PullRequests(),
			CodeFiles:    stores.CodeFiles(),
			Documents:    stores.Documents(),
			States:       stores.IndexStates(),
		},
		Index:    infra.Index,
		Embedder: infra.Embedder,
		Locker:   locker,
		Cache:    ret,
	}
	if infra.Graph != nil {
		ixDeps.Graph = graph.NewProjection(infra.Graph)
	}
	if infra.Tasks != nil {
		ixDeps.Tasks = infra.Tasks
	}
	ix, err := indexer.New(ixDeps, indexer.Config{
		Workers:    cfg.Indexer.Workers,
		QueueSize:  cfg.Indexer.QueueSize,
		EmbedBatch: cfg.OpenAI.BatchSize,
		Dispatch:   cfg.Indexer.Dispatch,
	})
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}

	related := graph.NewService(graph.Stores{
		Tickets:      stores.Tickets(),
		Commits:      stores.Commits(),
		PullRequests: stores.PullRequests(),
		CodeFiles:    stores.CodeFiles(),
		Documents:    stores.Documents(),
	}, infra.Graph)

	s := &Services{
		indexer:   ix,
		retriever: ret,
		graph:     related,
		gaps: gap.New(stores.Tickets(), stores.Commits(), stores.PullRequests(), gap.Config{
			OrphanDays: cfg.Analysis.OrphanLookbackDays,
			StaleDays:  cfg.Analysis.StaleAfterDays,
		}),
		impact: impact.New(stores.Tickets(), stores.Commits(), stores.PullRequests(), impact.Config{
			SimilarityThreshold: cfg.Analysis.SimilarityThreshold,
		}),
		ingest: NewIngestService(ix, codeparse.NewParser(), mapper.NewGitLabMapper()),
		entities: NewEntityService(EntityStores{
			Tickets:      stores.Tickets(),
			Commits:      stores.Commits(),
			PullRequests: stores.PullRequests(),
			CodeFiles:    stores.CodeFiles(),
			Documents:    stores.Documents(),
		}),
	}

	s.importer = NewGitLabImporter(s.ingest)

	if infra.LLM != nil {
		s.decisions, err = decision.New(decision.Deps{
			Tickets:      stores.Tickets(),
			Commits:      stores.Commits(),
			PullRequests: stores.PullRequests(),
			Decisions:    stores.Decisions(),
			Documents:    ret,
			Extractor:    decision.NewLLMExtractor(infra.LLM),
			Locker:       locker,
		}, decision.Config{Timeout: cfg.Analysis.Timeout})
		if err != nil {
			ix.Close()
			return nil, fmt.Errorf("decision analyzer: %w", err)
		}

		s.synth, err = synth.New(synth.Deps{
			Retriever:     ret,
			LLM:           infra.LLM,
			Correlator:    related,
			Conversations: conversations,
		}, synth.Config{})
		if err != nil {
			ix.Close()
			return nil, fmt.Errorf("synthesizer: %w", err)
		}
	}

	return s, nil
}

// Close drains in-flight vector writes.
func (s *Services) Close() {
	s.indexer.Close()
}

func (s *Services) Ingest() IngestService {
	return s.ingest
}

func (s *Services) GitLabImporter() GitLabImporter {
	return s.importer
}

func (s *Services) Entities() EntityService {
	return s.entities
}

func (s *Services) Indexer() *indexer.Indexer {
	return s.indexer
}

func (s *Services) Retriever() *retriever.Retriever {
	return s.retriever
}

func (s *Services) Gaps() *gap.Detector {
	return s.gaps
}

func (s *Services) Impact() *impact.Analyzer {
	return s.impact
}

func (s *Services) Graph() *graph.Service {
	return s.graph
}

// Decisions is nil when no chat model is configured.
func (s *Services) Decisions() *decision.Analyzer {
	return s.decisions
}

// Synth is nil when no chat model is configured.
func (s *Services) Synth() *synth.Synthesizer {
	return s.synth
}
