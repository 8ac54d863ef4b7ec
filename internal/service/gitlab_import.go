package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/mapper"
	"basegraph.app/correlate/internal/model"
)

const (
	gitlabPageSize     = 100
	defaultImportLimit = 1000
	defaultInstanceURL = "https://gitlab.com"
)

type GitLabImportOptions struct {
	InstanceURL string
	Token       string
	// Project is the numeric id or the path with namespace, e.g. acme/api.
	Project      string
	Ref          string
	Since        *time.Time
	MaxCommits   int
	MaxMerges    int
	IncludeWiki  bool
	IncludeFiles bool
}

type GitLabImportResult struct {
	Project      string           `json:"project"`
	Commits      *indexer.Summary `json:"commits"`
	PullRequests *indexer.Summary `json:"pull_requests"`
	Documents    *indexer.Summary `json:"documents,omitempty"`
}

// GitLabImporter pulls a project's history through the GitLab API and
// ingests it. Webhooks keep it current afterwards.
type GitLabImporter interface {
	Import(ctx context.Context, orgID int64, opts GitLabImportOptions) (*GitLabImportResult, error)
}

type gitLabImporter struct {
	ingest IngestService
}

func NewGitLabImporter(ingest IngestService) GitLabImporter {
	return &gitLabImporter{ingest: ingest}
}

func (s *gitLabImporter) Import(ctx context.Context, orgID int64, opts GitLabImportOptions) (*GitLabImportResult, error) {
	if err := checkTenant(orgID); err != nil {
		return nil, err
	}
	opts.Project = strings.Trim(strings.TrimSpace(opts.Project), "/")
	if opts.Project == "" {
		return nil, domain.Invalid("project", "required")
	}
	if opts.Token == "" {
		return nil, domain.Invalid("token", "required")
	}
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = defaultImportLimit
	}
	if opts.MaxMerges <= 0 {
		opts.MaxMerges = defaultImportLimit
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		Operation:      logger.Ptr("gitlab_import"),
		Component:      "correlate.ingest",
	})

	client, err := newGitLabClient(opts.InstanceURL, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("gitlab client: %w", err)
	}

	project, _, err := client.Projects.GetProject(opts.Project, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", opts.Project, err)
	}
	repo := project.PathWithNamespace

	result := &GitLabImportResult{Project: repo}

	commits, err := s.fetchCommits(ctx, client, repo, opts)
	if err != nil {
		return nil, err
	}
	if result.Commits, err = ingestChunks(ctx, orgID, commits, s.ingest.Commits); err != nil {
		return nil, fmt.Errorf("ingest commits: %w", err)
	}

	prs, err := s.fetchMergeRequests(ctx, client, repo, opts)
	if err != nil {
		return nil, err
	}
	if result.PullRequests, err = ingestChunks(ctx, orgID, prs, s.ingest.PullRequests); err != nil {
		return nil, fmt.Errorf("ingest merge requests: %w", err)
	}

	if opts.IncludeWiki {
		docs, err := s.fetchWiki(ctx, client, repo, project.WebURL)
		if err != nil {
			return nil, err
		}
		if result.Documents, err = ingestChunks(ctx, orgID, docs, s.ingest.Documents); err != nil {
			return nil, fmt.Errorf("ingest wiki pages: %w", err)
		}
	}

	slog.InfoContext(ctx, "gitlab project imported",
		"project", repo,
		"commits", len(commits),
		"merge_requests", len(prs))
	return result, nil
}

func (s *gitLabImporter) fetchCommits(ctx context.Context, client *gitlab.Client, repo string, opts GitLabImportOptions) ([]model.Commit, error) {
	listOpts := &gitlab.ListCommitsOptions{
		WithStats: gitlab.Ptr(true),
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: gitlabPageSize,
		},
	}
	if opts.Ref != "" {
		listOpts.RefName = gitlab.Ptr(opts.Ref)
	}
	if opts.Since != nil {
		listOpts.Since = opts.Since
	}

	var commits []model.Commit
	for len(commits) < opts.MaxCommits {
		page, resp, err := client.Commits.ListCommits(repo, listOpts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list commits: %w", err)
		}
		for _, c := range page {
			if c == nil || len(commits) == opts.MaxCommits {
				continue
			}
			commit := model.Commit{
				Repository:  repo,
				SHA:         c.ID,
				Message:     c.Message,
				AuthorName:  c.AuthorName,
				AuthorEmail: c.AuthorEmail,
			}
			if c.CommittedDate != nil {
				commit.CommitDate = c.CommittedDate.UTC()
			}
			if c.Stats != nil {
				commit.Additions = int32(c.Stats.Additions)
				commit.Deletions = int32(c.Stats.Deletions)
			}
			if c.WebURL != "" {
				commit.URL = gitlab.Ptr(c.WebURL)
			}
			if opts.IncludeFiles {
				files, err := commitFiles(ctx, client, repo, c.ID)
				if err != nil {
					slog.WarnContext(ctx, "commit diff unavailable", "sha", c.ID, "error", err)
				}
				commit.FilesChanged = files
			}
			commits = append(commits, commit)
		}
		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}
	return commits, nil
}

func commitFiles(ctx context.Context, client *gitlab.Client, repo, sha string) ([]string, error) {
	diffs, _, err := client.Commits.GetCommitDiff(repo, sha, &gitlab.GetCommitDiffOptions{
		ListOptions: gitlab.ListOptions{Page: 1, PerPage: gitlabPageSize},
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(diffs))
	for _, d := range diffs {
		if d == nil {
			continue
		}
		files = append(files, d.NewPath)
		if d.RenamedFile || d.DeletedFile {
			files = append(files, d.OldPath)
		}
	}
	return common.Dedupe(files), nil
}

func (s *gitLabImporter) fetchMergeRequests(ctx context.Context, client *gitlab.Client, repo string, opts GitLabImportOptions) ([]model.PullRequest, error) {
	listOpts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: gitlabPageSize,
		},
	}
	if opts.Since != nil {
		listOpts.UpdatedAfter = opts.Since
	}

	var prs []model.PullRequest
	for len(prs) < opts.MaxMerges {
		page, resp, err := client.MergeRequests.ListProjectMergeRequests(repo, listOpts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list merge requests: %w", err)
		}
		for _, mr := range page {
			if mr == nil || len(prs) == opts.MaxMerges {
				continue
			}
			pr := model.PullRequest{
				Repository:  repo,
				Number:      int64(mr.IID),
				Title:       mr.Title,
				Description: mr.Description,
				State:       mapper.GitLabState(mr.State),
			}
			if mr.Author != nil {
				pr.AuthorName = mr.Author.Name
			}
			if mr.CreatedAt != nil {
				pr.CreatedAt = mr.CreatedAt.UTC()
			}
			if mr.MergedAt != nil {
				merged := mr.MergedAt.UTC()
				pr.MergedAt = &merged
			}
			if mr.WebURL != "" {
				pr.URL = gitlab.Ptr(mr.WebURL)
			}
			prs = append(prs, pr)
		}
		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}
	return prs, nil
}

func (s *gitLabImporter) fetchWiki(ctx context.Context, client *gitlab.Client, repo, webURL string) ([]model.Document, error) {
	pages, _, err := client.Wikis.ListWikis(repo, &gitlab.ListWikisOptions{
		WithContent: gitlab.Ptr(true),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list wiki pages: %w", err)
	}

	docs := make([]model.Document, 0, len(pages))
	for _, w := range pages {
		if w == nil || w.Slug == "" {
			continue
		}
		doc := model.Document{
			SourceID: fmt.Sprintf("gitlab-wiki:%s/%s", repo, w.Slug),
			Title:    w.Title,
			Body:     w.Content,
			Space:    repo,
		}
		if webURL != "" {
			doc.URL = gitlab.Ptr(strings.TrimSuffix(webURL, "/") + "/-/wikis/" + w.Slug)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func newGitLabClient(instanceURL, token string) (*gitlab.Client, error) {
	if instanceURL == "" {
		instanceURL = defaultInstanceURL
	}
	baseURL := strings.TrimSuffix(instanceURL, "/") + "/api/v4"
	return gitlab.NewClient(
		token,
		gitlab.WithBaseURL(baseURL),
	)
}

// ingestChunks feeds items through fn in batches the ingest boundary accepts
// and folds the per-batch summaries into one.
func ingestChunks[T any](ctx context.Context, orgID int64, items []T, fn func(context.Context, int64, []T) (*indexer.Summary, error)) (*indexer.Summary, error) {
	total := &indexer.Summary{Results: []indexer.Result{}}
	for start := 0; start < len(items); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(items))
		sum, err := fn(ctx, orgID, items[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch at %d: %w", start, err)
		}
		total.Kind = sum.Kind
		total.Received += sum.Received
		total.Stored += sum.Stored
		total.Indexed += sum.Indexed
		total.Queued += sum.Queued
		total.Failed += sum.Failed
		total.Results = append(total.Results, sum.Results...)
	}
	return total, nil
}
