package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/queue"
	"github.com/redis/go-redis/v9"
)

type RedisReclaimerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
	// MaxDeliveries sends a task to the DLQ once Redis has delivered it this
	// many times without an ack. Zero disables the check.
	MaxDeliveries int64
}

// RedisReclaimer periodically reclaims stale pending messages.
// A worker that dies between XREADGROUP and XACK leaves its index task
// pending; the reclaimer claims it after MinIdle and processes it again.
type RedisReclaimer struct {
	client    *redis.Client
	cfg       RedisReclaimerConfig
	consumer  Consumer
	processor queue.MessageProcessor

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewRedisReclaimer creates a new RedisReclaimer.
func NewRedisReclaimer(client *redis.Client, cfg RedisReclaimerConfig, consumer Consumer, processor queue.MessageProcessor) *RedisReclaimer {
	return &RedisReclaimer{
		client:    client,
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the reclaimer loop. Blocks until Stop() is called.
func (r *RedisReclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "correlate.worker.reclaimer",
	})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle,
		"stream", r.cfg.Stream,
		"group", r.cfg.Group)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if err := r.reclaimOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim cycle error", "error", err)
			}
		}
	}
}

// Stop signals the reclaimer to stop gracefully.
func (r *RedisReclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

type reclaimTally struct {
	processed, deadLettered, failed int
}

// reclaimOnce claims every task idle longer than MinIdle in one XCLAIM and
// replays it. Tasks Redis has already delivered MaxDeliveries times go to the
// DLQ instead.
func (r *RedisReclaimer) reclaimOnce(ctx context.Context) error {
	pending, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.cfg.Stream,
		Group:  r.cfg.Group,
		Idle:   r.cfg.MinIdle,
		Start:  "-",
		End:    "+",
		Count:  r.cfg.BatchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("xpending: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	deliveries := make(map[string]int64, len(pending))
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		deliveries[p.ID] = p.RetryCount
		ids = append(ids, p.ID)
	}

	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.cfg.Stream,
		Group:    r.cfg.Group,
		Consumer: r.cfg.Consumer,
		MinIdle:  r.cfg.MinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("xclaim: %w", err)
	}

	var tally reclaimTally
	for _, raw := range claimed {
		r.replay(ctx, raw, deliveries[raw.ID], &tally)
	}

	slog.InfoContext(ctx, "reclaim cycle finished",
		"stale", len(pending),
		"claimed", len(claimed),
		"processed", tally.processed,
		"dead_lettered", tally.deadLettered,
		"failed", tally.failed)
	return nil
}

func (r *RedisReclaimer) replay(ctx context.Context, raw redis.XMessage, delivered int64, tally *reclaimTally) {
	msgID := raw.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: &msgID})

	task, err := queue.ParseMessage(raw)
	if err != nil {
		// Unparseable tasks would be reclaimed forever.
		slog.ErrorContext(ctx, "dropping malformed index task", "error", err)
		_ = r.consumer.Ack(ctx, queue.Message{ID: raw.ID, Raw: raw})
		tally.failed++
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &task.OrganizationID,
		EntityKind:     logger.Ptr(string(task.Kind)),
		EntityKey:      &task.EntityKey,
	})

	if r.cfg.MaxDeliveries > 0 && delivered >= r.cfg.MaxDeliveries {
		reason := fmt.Sprintf("delivered %d times without ack", delivered)
		if err := r.consumer.SendDLQ(ctx, task, reason); err != nil {
			slog.ErrorContext(ctx, "failed to dead-letter index task", "error", err)
			tally.failed++
			return
		}
		slog.WarnContext(ctx, "index task dead-lettered", "deliveries", delivered)
		tally.deadLettered++
		return
	}

	if err := r.processor(ctx, task); err != nil {
		// Left pending; the next cycle sees a higher delivery count.
		slog.WarnContext(ctx, "reclaimed index task failed", "error", err, "deliveries", delivered)
		tally.failed++
		return
	}
	tally.processed++
}
