// Package gap finds inconsistencies across the entity store: tickets nobody
// worked on, changes nobody filed, features without recorded rationale and
// work that stalled. Every query is read-only.
package gap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

const (
	DefaultOrphanDays = 90
	DefaultStaleDays  = 30
	maxWindowDays     = 3650

	orphanLimit       = 500
	undocumentedLimit = 100
	missingLimit      = 50
	staleLimit        = 100

	// criticalStaleDays is fixed; the window only decides what is stale.
	criticalStaleDays = 60
)

// DefaultExcludePatterns mark trivial changes (ILIKE syntax) that do not need
// a ticket: merges, reverts and dependency bumps.
var DefaultExcludePatterns = []string{
	"merge %",
	"merged %",
	"revert %",
	"revert:%",
	"bump %",
	"%(deps)%",
	"%(deps-dev)%",
	"update dependency %",
	"%dependabot%",
}

type TicketStore interface {
	ListOrphaned(ctx context.Context, orgID int64, since time.Time, limit int32) ([]model.Ticket, error)
	ListStale(ctx context.Context, orgID int64, cutoff time.Time, limit int32) ([]model.Ticket, error)
	ListMissingDecision(ctx context.Context, orgID int64, issueTypes []string, limit int32) ([]store.TicketCommitCount, error)
}

type CommitStore interface {
	ListUndocumented(ctx context.Context, orgID int64, excludePatterns []string, limit int32) ([]model.Commit, error)
}

type PullRequestStore interface {
	ListUndocumented(ctx context.Context, orgID int64, excludePatterns []string, limit int32) ([]model.PullRequest, error)
}

type Config struct {
	OrphanDays      int
	StaleDays       int
	ExcludePatterns []string
}

type Detector struct {
	tickets      TicketStore
	commits      CommitStore
	pullRequests PullRequestStore
	cfg          Config
	now          func() time.Time
}

func New(tickets TicketStore, commits CommitStore, pullRequests PullRequestStore, cfg Config) *Detector {
	if cfg.OrphanDays <= 0 {
		cfg.OrphanDays = DefaultOrphanDays
	}
	if cfg.StaleDays <= 0 {
		cfg.StaleDays = DefaultStaleDays
	}
	if len(cfg.ExcludePatterns) == 0 {
		cfg.ExcludePatterns = DefaultExcludePatterns
	}
	return &Detector{
		tickets:      tickets,
		commits:      commits,
		pullRequests: pullRequests,
		cfg:          cfg,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// OrphanedTickets lists tickets created in the last days whose key no commit
// or pull request references. Highest priority first, then newest.
func (d *Detector) OrphanedTickets(ctx context.Context, orgID int64, days int) (*model.OrphanedTicketsReport, error) {
	days, err := d.window(orgID, days, d.cfg.OrphanDays)
	if err != nil {
		return nil, err
	}
	ctx = d.logContext(ctx, orgID, "gaps.orphaned")

	now := d.now()
	tickets, err := d.tickets.ListOrphaned(ctx, orgID, now.AddDate(0, 0, -days), orphanLimit)
	if err != nil {
		return nil, fmt.Errorf("list orphaned tickets: %w", err)
	}

	stats := newStats(len(tickets))
	stats.ByStatus, stats.ByPriority, stats.ByAssignee = map[string]int{}, map[string]int{}, map[string]int{}
	for _, t := range tickets {
		stats.ByStatus[orUnknown(t.Status)]++
		stats.ByPriority[orUnknown(t.Priority)]++
		stats.ByAssignee[assignee(t.Assignee)]++
	}

	slog.DebugContext(ctx, "orphaned tickets found", "count", len(tickets), "days", days)
	return &model.OrphanedTicketsReport{
		Tickets:       nonNil(tickets),
		Stats:         stats,
		TimeframeDays: days,
		GeneratedAt:   now,
	}, nil
}

// Undocumented lists commits and pull requests that reference no ticket,
// skipping trivial changes.
func (d *Detector) Undocumented(ctx context.Context, orgID int64) (*model.UndocumentedReport, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	ctx = d.logContext(ctx, orgID, "gaps.undocumented")

	commits, err := d.commits.ListUndocumented(ctx, orgID, d.cfg.ExcludePatterns, undocumentedLimit)
	if err != nil {
		return nil, fmt.Errorf("list undocumented commits: %w", err)
	}
	prs, err := d.pullRequests.ListUndocumented(ctx, orgID, d.cfg.ExcludePatterns, undocumentedLimit)
	if err != nil {
		return nil, fmt.Errorf("list undocumented pull requests: %w", err)
	}

	changes := make([]model.UndocumentedChange, 0, len(commits)+len(prs))
	for _, c := range commits {
		changes = append(changes, model.UndocumentedChange{
			Kind:       model.KindCommit,
			Repository: c.Repository,
			Ref:        c.SHA,
			Title:      firstLine(c.Message),
			Author:     c.AuthorName,
			Date:       c.CommitDate,
			Additions:  c.Additions,
			Deletions:  c.Deletions,
			URL:        c.URL,
		})
	}
	for _, p := range prs {
		changes = append(changes, model.UndocumentedChange{
			Kind:       model.KindPullRequest,
			Repository: p.Repository,
			Ref:        fmt.Sprintf("%d", p.Number),
			Title:      p.Title,
			Author:     p.AuthorName,
			Date:       p.CreatedAt,
			URL:        p.URL,
		})
	}

	stats := newStats(len(changes))
	stats.ByAuthor, stats.ByRepository = map[string]int{}, map[string]int{}
	for _, c := range changes {
		stats.ByAuthor[orUnknown(c.Author)]++
		stats.ByRepository[orUnknown(c.Repository)]++
	}

	return &model.UndocumentedReport{Changes: changes, Stats: stats, GeneratedAt: d.now()}, nil
}

// MissingDecisions lists story, epic and feature tickets that already have
// commits but no recorded decision.
func (d *Detector) MissingDecisions(ctx context.Context, orgID int64) (*model.MissingDecisionsReport, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	ctx = d.logContext(ctx, orgID, "gaps.missing_decisions")

	rows, err := d.tickets.ListMissingDecision(ctx, orgID, model.DecisionIssueTypes, missingLimit)
	if err != nil {
		return nil, fmt.Errorf("list tickets missing decisions: %w", err)
	}

	missing := make([]model.MissingDecision, 0, len(rows))
	stats := newStats(len(rows))
	stats.ByIssueType = map[string]int{}
	for _, r := range rows {
		missing = append(missing, model.MissingDecision{Ticket: r.Ticket, CommitCount: int(r.CommitCount)})
		stats.ByIssueType[orUnknown(r.Ticket.IssueType)]++
	}

	return &model.MissingDecisionsReport{Tickets: missing, Stats: stats, GeneratedAt: d.now()}, nil
}

// StaleWork lists open tickets untouched for more than days, oldest first.
// Anything untouched for more than 60 days is critical whatever the window.
func (d *Detector) StaleWork(ctx context.Context, orgID int64, days int) (*model.StaleWorkReport, error) {
	days, err := d.window(orgID, days, d.cfg.StaleDays)
	if err != nil {
		return nil, err
	}
	ctx = d.logContext(ctx, orgID, "gaps.stale")

	now := d.now()
	tickets, err := d.tickets.ListStale(ctx, orgID, now.AddDate(0, 0, -days), staleLimit)
	if err != nil {
		return nil, fmt.Errorf("list stale tickets: %w", err)
	}

	stale := make([]model.StaleTicket, 0, len(tickets))
	stats := newStats(len(tickets))
	stats.ByStatus, stats.ByAssignee, stats.BySeverity = map[string]int{}, map[string]int{}, map[string]int{}
	for _, t := range tickets {
		age := int(now.Sub(t.UpdatedAt).Hours() / 24)
		severity := model.StaleSeverityWarning
		if age > criticalStaleDays {
			severity = model.StaleSeverityCritical
		}
		stale = append(stale, model.StaleTicket{Ticket: t, DaysSinceUpdate: age, Severity: severity})
		stats.ByStatus[orUnknown(t.Status)]++
		stats.ByAssignee[assignee(t.Assignee)]++
		stats.BySeverity[string(severity)]++
	}

	return &model.StaleWorkReport{
		Tickets:       stale,
		Stats:         stats,
		ThresholdDays: days,
		GeneratedAt:   now,
	}, nil
}

// Comprehensive runs every detector with the configured windows.
func (d *Detector) Comprehensive(ctx context.Context, orgID int64) (*model.ComprehensiveGapReport, error) {
	span := logger.StartSpan(ctx, "gaps.comprehensive")
	defer span.End()
	ctx = span.Context()

	orphaned, err := d.OrphanedTickets(ctx, orgID, d.cfg.OrphanDays)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	undocumented, err := d.Undocumented(ctx, orgID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	missing, err := d.MissingDecisions(ctx, orgID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	stale, err := d.StaleWork(ctx, orgID, d.cfg.StaleDays)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	summary := model.GapSummary{
		OrphanedTickets:     len(orphaned.Tickets),
		UndocumentedChanges: len(undocumented.Changes),
		MissingDecisions:    len(missing.Tickets),
		StaleTickets:        len(stale.Tickets),
	}
	summary.TotalGaps = summary.OrphanedTickets + summary.UndocumentedChanges + summary.MissingDecisions + summary.StaleTickets

	return &model.ComprehensiveGapReport{
		Orphaned:         *orphaned,
		Undocumented:     *undocumented,
		MissingDecisions: *missing,
		Stale:            *stale,
		Summary:          summary,
		GeneratedAt:      d.now(),
	}, nil
}

func (d *Detector) window(orgID int64, days, fallback int) (int, error) {
	if orgID <= 0 {
		return 0, domain.Invalid("organization_id", "required")
	}
	if days == 0 {
		return fallback, nil
	}
	if days < 0 || days > maxWindowDays {
		return 0, domain.Invalid("days", fmt.Sprintf("must be between 1 and %d", maxWindowDays))
	}
	return days, nil
}

func (d *Detector) logContext(ctx context.Context, orgID int64, op string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		Operation:      &op,
		Component:      "correlate.gap",
	})
}
