package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/queue"
	"go.opentelemetry.io/otel/attribute"
)

const (
	backfillPageSize = 200
	backfillLockTTL  = 30 * time.Minute
)

type BackfillOptions struct {
	Kinds []model.EntityKind // empty means all kinds
	// OnlyFailed replays just the entities whose last vector write failed.
	OnlyFailed bool
}

// Backfill replays the entity store into the vector index. It is idempotent:
// point ids are deterministic, so a replay overwrites in place. One backfill
// per (organization, kind) runs at a time; a second caller gets
// ErrBackfillRunning.
func (ix *Indexer) Backfill(ctx context.Context, orgID int64, opts BackfillOptions) (*model.BackfillReport, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = model.AllKinds
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, domain.Invalid("kinds", fmt.Sprintf("unknown kind %q", k))
		}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:      "correlate.indexer",
		OrganizationID: &orgID,
		Operation:      logger.Ptr("backfill"),
	})
	sc := logger.StartSpan(ctx, "indexer.backfill",
		attribute.Int64("organization_id", orgID),
		attribute.Bool("only_failed", opts.OnlyFailed))
	defer sc.End()
	ctx = sc.Context()

	unlock, err := ix.lockKinds(ctx, orgID, kinds)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := ix.index.Ensure(ctx); err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("ensure vector index: %w", err)
	}

	report := &model.BackfillReport{
		OrganizationID: orgID,
		Kinds:          make(map[model.EntityKind]model.BackfillCounts, len(kinds)),
		StartedAt:      time.Now().UTC(),
	}

	for _, kind := range kinds {
		var counts model.BackfillCounts
		var err error
		if opts.OnlyFailed {
			counts, err = ix.backfillFailed(ctx, orgID, kind)
		} else {
			counts, err = ix.backfillAll(ctx, orgID, kind)
		}
		report.Kinds[kind] = counts
		if err != nil {
			sc.RecordError(err)
			return report, fmt.Errorf("backfill %s: %w", kind, err)
		}
		slog.InfoContext(ctx, "backfill kind completed",
			"entity_kind", kind,
			"total", counts.Total,
			"indexed", counts.Indexed,
			"failed", counts.Failed)
	}

	ix.invalidate(ctx, orgID, kinds...)
	report.FinishedAt = time.Now().UTC()
	return report, nil
}

// backfillAll pages through the store. Only a store read error stops it;
// embedding and upsert failures are counted.
func (ix *Indexer) backfillAll(ctx context.Context, orgID int64, kind model.EntityKind) (model.BackfillCounts, error) {
	var counts model.BackfillCounts
	var cursor int64
	for {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		entries, next, err := ix.page(ctx, orgID, kind, cursor, backfillPageSize)
		if err != nil {
			return counts, fmt.Errorf("list page after %d: %w", cursor, err)
		}
		if len(entries) == 0 {
			return counts, nil
		}
		tally(&counts, ix.Project(ctx, entries))
		cursor = next
		if len(entries) < backfillPageSize {
			return counts, nil
		}
	}
}

func (ix *Indexer) backfillFailed(ctx context.Context, orgID int64, kind model.EntityKind) (model.BackfillCounts, error) {
	var counts model.BackfillCounts
	states, err := ix.stores.States.ListByStatus(ctx, orgID, kind, model.IndexStatusFailed, 10000)
	if err != nil {
		return counts, fmt.Errorf("list failed: %w", err)
	}

	entries := make([]Entry, 0, len(states))
	for _, s := range states {
		entry, err := ix.Load(ctx, orgID, kind, s.EntityKey)
		if err != nil {
			counts.Total++
			counts.Failed++
			slog.WarnContext(ctx, "failed entity no longer loadable",
				"error", err,
				"entity_kind", kind,
				"entity_key", s.EntityKey)
			continue
		}
		entries = append(entries, entry)
	}
	tally(&counts, ix.Project(ctx, entries))
	return counts, nil
}

func tally(counts *model.BackfillCounts, results []Result) {
	for _, r := range results {
		counts.Total++
		if r.Secondary == OutcomeIndexed {
			counts.Indexed++
		} else {
			counts.Failed++
		}
	}
}

func (ix *Indexer) lockKinds(ctx context.Context, orgID int64, kinds []model.EntityKind) (func(), error) {
	var held []queue.Unlock
	release := func() {
		// Release on a fresh context; the request may already be cancelled.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		for _, u := range held {
			if err := u(rctx); err != nil {
				slog.WarnContext(ctx, "releasing backfill lock failed", "error", err)
			}
		}
	}

	for _, kind := range kinds {
		unlock, err := ix.locker.Acquire(ctx, backfillLockKey(orgID, kind), backfillLockTTL)
		if err != nil {
			release()
			if errors.Is(err, queue.ErrLockHeld) {
				return nil, fmt.Errorf("%s collection: %w", kind, domain.ErrBackfillRunning)
			}
			return nil, fmt.Errorf("acquire backfill lock: %w", err)
		}
		held = append(held, unlock)
	}
	return release, nil
}

func backfillLockKey(orgID int64, kind model.EntityKind) string {
	return "correlate:backfill:" + strconv.FormatInt(orgID, 10) + ":" + string(kind)
}
