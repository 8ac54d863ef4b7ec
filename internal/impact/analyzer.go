// Package impact predicts what a change touches: the tickets, files and people
// connected to a file, a ticket or a commit. It reads only the entity store.
package impact

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

const (
	fileCommitLimit    = 50
	topDevelopers      = 5
	topCoChanged       = 10
	recentCommits      = 10
	reviewerCount      = 3
	similarTicketLimit = 10
	minSHAPrefix       = 7
	maxReviewerPaths   = 200
	defaultSimilarity  = 0.3
)

type TicketStore interface {
	GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
	ListByKeys(ctx context.Context, orgID int64, keys []string) ([]model.Ticket, error)
	ListSimilar(ctx context.Context, q store.SimilarTicketsQuery) ([]store.Scored[model.Ticket], error)
}

type CommitStore interface {
	GetBySHAPrefix(ctx context.Context, orgID int64, prefix string) ([]model.Commit, error)
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.Commit, error)
	ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.Commit, error)
	RankAuthors(ctx context.Context, orgID int64, paths []string, limit int32) ([]store.AuthorRank, error)
}

type PullRequestStore interface {
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.PullRequest, error)
	ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.PullRequest, error)
}

type Config struct {
	// SimilarityThreshold is the trigram similarity above which two ticket
	// summaries count as related.
	SimilarityThreshold float64
}

type Analyzer struct {
	tickets      TicketStore
	commits      CommitStore
	pullRequests PullRequestStore
	threshold    float64
}

func New(tickets TicketStore, commits CommitStore, pullRequests PullRequestStore, cfg Config) *Analyzer {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = defaultSimilarity
	}
	return &Analyzer{tickets: tickets, commits: commits, pullRequests: pullRequests, threshold: threshold}
}

// File reports the history around one file path.
func (a *Analyzer) File(ctx context.Context, orgID int64, path string) (*model.FileImpact, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	path = common.CleanPath(path)
	if path == "" {
		return nil, domain.Invalid("path", "required")
	}
	ctx = a.logContext(ctx, orgID, "impact.file")

	commits, err := a.commits.ListTouchingFile(ctx, orgID, path, fileCommitLimit)
	if err != nil {
		return nil, fmt.Errorf("list commits touching %s: %w", path, err)
	}
	prs, err := a.pullRequests.ListTouchingFile(ctx, orgID, path, fileCommitLimit)
	if err != nil {
		return nil, fmt.Errorf("list pull requests touching %s: %w", path, err)
	}

	var ticketKeys []string
	coChanged := map[string]int{}
	for _, c := range commits {
		ticketKeys = append(ticketKeys, c.TicketReferences...)
		for _, f := range c.FilesChanged {
			if f != path {
				coChanged[f]++
			}
		}
	}
	// Co-change stays commit-level: a pull request's file list is the union of
	// its commits and would count the same change twice.
	for _, p := range prs {
		ticketKeys = append(ticketKeys, p.TicketReferences...)
	}

	tickets, err := a.ticketsByKeys(ctx, orgID, ticketKeys)
	if err != nil {
		return nil, err
	}

	developers := rankDevelopers(commits)
	return &model.FileImpact{
		FilePath:           path,
		TotalCommits:       len(commits),
		RelatedTickets:     tickets,
		RecentCommits:      common.Head(nonNil(commits), recentCommits),
		Developers:         common.Head(developers, topDevelopers),
		CoChangedFiles:     topCoChanges(coChanged, topCoChanged),
		SuggestedReviewers: common.Head(developers, reviewerCount),
	}, nil
}

// Ticket aggregates every commit and pull request that references key.
func (a *Analyzer) Ticket(ctx context.Context, orgID int64, key string) (*model.TicketImpact, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	key = common.NormalizeTicketKey(key)
	if key == "" {
		return nil, domain.Invalid("key", "required")
	}
	ctx = a.logContext(ctx, orgID, "impact.ticket")

	ticket, err := a.tickets.GetByKey(ctx, orgID, key)
	if err != nil {
		return nil, err
	}
	commits, err := a.commits.ListByTicket(ctx, orgID, key)
	if err != nil {
		return nil, fmt.Errorf("list commits for %s: %w", key, err)
	}
	prs, err := a.pullRequests.ListByTicket(ctx, orgID, key)
	if err != nil {
		return nil, fmt.Errorf("list pull requests for %s: %w", key, err)
	}

	files := map[string]struct{}{}
	var additions, deletions int
	for _, c := range commits {
		additions += int(c.Additions)
		deletions += int(c.Deletions)
		for _, f := range c.FilesChanged {
			files[f] = struct{}{}
		}
	}
	for _, p := range prs {
		for _, f := range p.FilesChanged {
			files[f] = struct{}{}
		}
	}
	affected := make([]string, 0, len(files))
	for f := range files {
		affected = append(affected, f)
	}
	sort.Strings(affected)

	similar, err := a.similar(ctx, orgID, ticket)
	if err != nil {
		return nil, err
	}
	dependents, err := a.dependents(ctx, orgID, ticket)
	if err != nil {
		return nil, err
	}

	return &model.TicketImpact{
		Ticket:             *ticket,
		Commits:            nonNil(commits),
		PullRequests:       nonNil(prs),
		AffectedFiles:      affected,
		TotalAdditions:     additions,
		TotalDeletions:     deletions,
		BlastRadius:        ClassifyBlastRadius(len(affected), additions+deletions),
		SimilarTickets:     similar,
		DependentTickets:   dependents,
		AlreadyImplemented: len(commits) > 0 || anyMerged(prs),
	}, nil
}

// Commit scores the risk of one commit, addressed by a sha prefix of at least
// seven characters.
func (a *Analyzer) Commit(ctx context.Context, orgID int64, sha string) (*model.CommitImpact, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	sha = strings.ToLower(strings.TrimSpace(sha))
	if len(sha) < minSHAPrefix {
		return nil, domain.Invalid("sha", fmt.Sprintf("at least %d characters required", minSHAPrefix))
	}
	ctx = a.logContext(ctx, orgID, "impact.commit")

	matches, err := a.commits.GetBySHAPrefix(ctx, orgID, sha)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", sha, err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("commit %s: %w", sha, domain.ErrNotFound)
	case 1:
	default:
		return nil, domain.Invalid("sha", fmt.Sprintf("prefix %s is ambiguous", sha))
	}
	commit := matches[0]

	categories := CategorizeFiles(commit.FilesChanged)
	score, factors := RiskScore(len(commit.FilesChanged), commit.LinesChanged(), categories)

	tickets, err := a.ticketsByKeys(ctx, orgID, commit.TicketReferences)
	if err != nil {
		return nil, err
	}

	var reviewers []model.Reviewer
	if len(commit.FilesChanged) > 0 {
		reviewers, err = a.rankReviewers(ctx, orgID, commit.FilesChanged)
		if err != nil {
			return nil, err
		}
	}

	grouped := make(map[model.FileCategory][]string, len(categories))
	for path, cat := range categories {
		grouped[cat] = append(grouped[cat], path)
	}
	for cat := range grouped {
		sort.Strings(grouped[cat])
	}

	return &model.CommitImpact{
		Commit:         commit,
		FileCategories: grouped,
		RiskScore:      score,
		RiskLevel:      ClassifyRisk(score),
		RiskFactors:    factors,
		RelatedTickets: tickets,
		Reviewers:      nonNil(reviewers),
	}, nil
}

// SuggestReviewers ranks authors by how many of their commits overlap paths.
func (a *Analyzer) SuggestReviewers(ctx context.Context, orgID int64, paths []string) ([]model.Reviewer, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	clean := common.CleanPaths(paths)
	if len(clean) == 0 {
		return nil, domain.Invalid("paths", "at least one path required")
	}
	if len(clean) > maxReviewerPaths {
		return nil, domain.Invalid("paths", fmt.Sprintf("at most %d paths", maxReviewerPaths))
	}
	ctx = a.logContext(ctx, orgID, "impact.reviewers")

	reviewers, err := a.rankReviewers(ctx, orgID, clean)
	if err != nil {
		return nil, err
	}
	return nonNil(reviewers), nil
}

func (a *Analyzer) rankReviewers(ctx context.Context, orgID int64, paths []string) ([]model.Reviewer, error) {
	ranks, err := a.commits.RankAuthors(ctx, orgID, paths, reviewerCount)
	if err != nil {
		return nil, fmt.Errorf("rank authors: %w", err)
	}
	reviewers := make([]model.Reviewer, 0, len(ranks))
	for _, r := range ranks {
		reviewers = append(reviewers, model.Reviewer{
			Name:           r.Name,
			Email:          r.Email,
			CommitCount:    int(r.CommitCount),
			LastCommitDate: r.LastCommitDate,
		})
	}
	return reviewers, nil
}

func (a *Analyzer) similar(ctx context.Context, orgID int64, ticket *model.Ticket) ([]model.SimilarTicket, error) {
	scored, err := a.tickets.ListSimilar(ctx, store.SimilarTicketsQuery{
		OrganizationID: orgID,
		TicketKey:      ticket.Key,
		Summary:        ticket.Summary,
		Components:     ticket.Components,
		Threshold:      a.threshold,
		Limit:          similarTicketLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list similar tickets: %w", err)
	}
	similar := make([]model.SimilarTicket, 0, len(scored))
	for _, s := range scored {
		similar = append(similar, model.SimilarTicket{
			Ticket:           s.Item,
			Similarity:       s.Score,
			SharedComponents: intersect(ticket.Components, s.Item.Components),
		})
	}
	return similar, nil
}

// dependents are the existing tickets named in the ticket's description.
func (a *Analyzer) dependents(ctx context.Context, orgID int64, ticket *model.Ticket) ([]string, error) {
	var keys []string
	for _, k := range common.ExtractTicketKeys(ticket.Description) {
		if k != ticket.Key {
			keys = append(keys, k)
		}
	}
	found, err := a.ticketsByKeys(ctx, orgID, keys)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(found))
	for _, t := range found {
		out = append(out, t.Key)
	}
	sort.Strings(out)
	return out, nil
}

func (a *Analyzer) ticketsByKeys(ctx context.Context, orgID int64, keys []string) ([]model.Ticket, error) {
	keys = common.Dedupe(keys)
	if len(keys) == 0 {
		return []model.Ticket{}, nil
	}
	tickets, err := a.tickets.ListByKeys(ctx, orgID, keys)
	if err != nil {
		return nil, fmt.Errorf("list tickets by key: %w", err)
	}
	return nonNil(tickets), nil
}

func (a *Analyzer) logContext(ctx context.Context, orgID int64, op string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		Operation:      &op,
		Component:      "correlate.impact",
	})
}

// rankDevelopers groups commits by author email, most commits first and the
// most recent commit breaking ties.
func rankDevelopers(commits []model.Commit) []model.Reviewer {
	byAuthor := map[string]*model.Reviewer{}
	var order []string
	for _, c := range commits {
		id := strings.ToLower(c.AuthorEmail)
		if id == "" {
			id = c.AuthorName
		}
		if id == "" {
			continue
		}
		r, ok := byAuthor[id]
		if !ok {
			r = &model.Reviewer{Name: c.AuthorName, Email: c.AuthorEmail}
			byAuthor[id] = r
			order = append(order, id)
		}
		r.CommitCount++
		if c.CommitDate.After(r.LastCommitDate) {
			r.LastCommitDate = c.CommitDate
		}
	}
	out := make([]model.Reviewer, 0, len(order))
	for _, id := range order {
		out = append(out, *byAuthor[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CommitCount != out[j].CommitCount {
			return out[i].CommitCount > out[j].CommitCount
		}
		return out[i].LastCommitDate.After(out[j].LastCommitDate)
	})
	return out
}

func topCoChanges(counts map[string]int, n int) []model.CoChange {
	out := make([]model.CoChange, 0, len(counts))
	for path, count := range counts {
		out = append(out, model.CoChange{FilePath: path, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FilePath < out[j].FilePath
	})
	return common.Head(out, n)
}

func anyMerged(prs []model.PullRequest) bool {
	for _, p := range prs {
		if p.State == model.PullRequestStateMerged {
			return true
		}
	}
	return false
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	var out []string
	for _, x := range b {
		if _, ok := set[x]; ok {
			out = append(out, x)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
