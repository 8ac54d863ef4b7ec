// Package bootstrap opens the backing stores and builds the service graph
// shared by the server, the index worker and the admin CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"basegraph.app/correlate/common/arangodb"
	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/core/db"
	"basegraph.app/correlate/internal/graph"
	"basegraph.app/correlate/internal/queue"
	"basegraph.app/correlate/internal/service"
	"basegraph.app/correlate/internal/store"
	"basegraph.app/correlate/internal/vector"
)

type Options struct {
	// RequireRedis fails startup when Redis is unreachable. Otherwise the
	// process falls back to in-process locks and no query cache.
	RequireRedis bool
	// Produce enables the index-task producer when dispatch=queue.
	Produce bool
}

// Runtime owns every connection opened for one process.
type Runtime struct {
	Config   config.Config
	DB       *db.DB
	Redis    *redis.Client
	Services *service.Services

	closers []func()
}

func Open(ctx context.Context, cfg config.Config, opts Options) (_ *Runtime, err error) {
	rt := &Runtime{Config: cfg}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	if err := id.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("init id generator: %w", err)
	}

	rt.DB, err = db.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	rt.closers = append(rt.closers, rt.DB.Close)
	slog.InfoContext(ctx, "database connected")

	needRedis := opts.RequireRedis || (opts.Produce && cfg.Indexer.Dispatch == config.DispatchQueue)
	rt.Redis, err = connectRedis(ctx, cfg.Redis.URL)
	switch {
	case err != nil && needRedis:
		return nil, err
	case err != nil:
		slog.WarnContext(ctx, "redis unavailable, using in-process locks without query cache", "error", err)
	default:
		rt.closers = append(rt.closers, func() { _ = rt.Redis.Close() })
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)
	}

	index, err := vector.New(cfg, rt.DB.Pool())
	if err != nil {
		return nil, fmt.Errorf("vector index: %w", err)
	}
	if err := index.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure vector index: %w", err)
	}
	slog.InfoContext(ctx, "vector index ready", "backend", cfg.Vector.Backend)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	infra := service.Infra{
		Stores:   store.NewStores(rt.DB.Queries()),
		Index:    index,
		Embedder: embedder,
		Redis:    rt.Redis,
		Config:   cfg,
	}

	if cfg.LLM.Enabled() {
		infra.LLM, err = llm.New(llm.Config{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		slog.InfoContext(ctx, "llm configured", "model", infra.LLM.Model())
	} else {
		slog.InfoContext(ctx, "llm disabled, decision analysis and answers are off")
	}

	if cfg.ArangoDB.Enabled() {
		client, err := arangodb.New(ctx, arangodb.Config{
			URL:      cfg.ArangoDB.URL,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
			Database: cfg.ArangoDB.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("arangodb: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		if err := graph.NewProjection(client).Ensure(ctx); err != nil {
			return nil, fmt.Errorf("ensure graph: %w", err)
		}
		infra.Graph = client
		slog.InfoContext(ctx, "graph projection enabled", "database", cfg.ArangoDB.Database)
	}

	if opts.Produce && cfg.Indexer.Dispatch == config.DispatchQueue {
		producer := queue.NewRedisProducer(rt.Redis, cfg.Redis.Stream, slog.Default())
		rt.closers = append(rt.closers, func() { _ = producer.Close() })
		infra.Tasks = producer
	}

	rt.Services, err = service.NewServices(infra)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, rt.Services.Close)
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("REDIS_URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func newEmbedder(cfg config.Config) (llm.Embedder, error) {
	if cfg.OpenAI.Enabled() {
		return llm.NewEmbedder(llm.EmbedderConfig{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.EmbeddingModel,
			Dimension: cfg.OpenAI.Dimension,
			BatchSize: cfg.OpenAI.BatchSize,
		})
	}
	if cfg.IsProduction() {
		return nil, errors.New("OPENAI_API_KEY is required in production")
	}
	return llm.NewHashEmbedder(cfg.OpenAI.Dimension), nil
}
