package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	EnqueueIndex(ctx context.Context, task IndexTask) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) EnqueueIndex(ctx context.Context, task IndexTask) error {
	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	msg := Message{
		TaskType:       TaskTypeIndexEntity,
		OrganizationID: task.OrganizationID,
		Kind:           task.Kind,
		EntityKey:      task.EntityKey,
		TraceParent:    task.Trace["traceparent"],
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: messageValues(msg, attempt),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue index task: %w", err)
	}

	p.logger.DebugContext(ctx, "enqueued index task",
		"kind", task.Kind,
		"entity_key", task.EntityKey,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
