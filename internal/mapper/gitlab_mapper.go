package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/model"
)

// GitLabMapper turns push, merge request and wiki page hooks into commits,
// pull requests and documents.
type GitLabMapper struct {
	now func() time.Time
}

func NewGitLabMapper() *GitLabMapper {
	return &GitLabMapper{now: time.Now}
}

// mergeRequestHook is the subset of the merge request hook body we read.
type mergeRequestHook struct {
	ObjectKind string `json:"object_kind"`
	User       struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
	Project struct {
		PathWithNamespace string `json:"path_with_namespace"`
	} `json:"project"`
	ObjectAttributes struct {
		IID         int64  `json:"iid"`
		Title       string `json:"title"`
		Description string `json:"description"`
		State       string `json:"state"`
		Action      string `json:"action"`
		URL         string `json:"url"`
		CreatedAt   string `json:"created_at"`
		UpdatedAt   string `json:"updated_at"`
	} `json:"object_attributes"`
}

func (m *GitLabMapper) Map(ctx context.Context, eventType gitlab.EventType, body []byte) (*Batch, error) {
	switch eventType {
	case gitlab.EventTypePush:
		return m.mapPush(ctx, body)
	case gitlab.EventTypeMergeRequest:
		return m.mapMergeRequest(body)
	case gitlab.EventTypeWikiPage:
		return m.mapWikiPage(body)
	}
	return nil, fmt.Errorf("gitlab %q: %w", eventType, ErrUnsupportedEvent)
}

func (m *GitLabMapper) mapPush(ctx context.Context, body []byte) (*Batch, error) {
	var event gitlab.PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode push event: %w", err)
	}

	repo := event.Project.PathWithNamespace
	batch := &Batch{}
	for _, c := range event.Commits {
		if c == nil || c.ID == "" {
			continue
		}
		files := make([]string, 0, len(c.Added)+len(c.Modified)+len(c.Removed))
		files = append(files, c.Added...)
		files = append(files, c.Modified...)
		files = append(files, c.Removed...)

		commit := model.Commit{
			Repository:   repo,
			SHA:          c.ID,
			Message:      strings.TrimSpace(c.Message),
			AuthorName:   c.Author.Name,
			AuthorEmail:  c.Author.Email,
			FilesChanged: common.Dedupe(files),
			CommitDate:   m.now().UTC(),
		}
		if c.Timestamp != nil {
			commit.CommitDate = c.Timestamp.UTC()
		}
		if c.URL != "" {
			commit.URL = &c.URL
		}
		batch.Commits = append(batch.Commits, commit)
	}

	slog.DebugContext(ctx, "gitlab push mapped",
		"repository", repo,
		"ref", event.Ref,
		"commits", len(batch.Commits))
	return batch, nil
}

func (m *GitLabMapper) mapMergeRequest(body []byte) (*Batch, error) {
	var event mergeRequestHook
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode merge request event: %w", err)
	}
	attrs := event.ObjectAttributes
	if attrs.IID == 0 || event.Project.PathWithNamespace == "" {
		return nil, fmt.Errorf("merge request event without iid or project: %w", ErrUnsupportedEvent)
	}

	author := event.User.Name
	if author == "" {
		author = event.User.Username
	}

	pr := model.PullRequest{
		Repository:  event.Project.PathWithNamespace,
		Number:      attrs.IID,
		Title:       attrs.Title,
		Description: attrs.Description,
		State:       GitLabState(attrs.State),
		AuthorName:  author,
		CreatedAt:   parseGitLabTime(attrs.CreatedAt, m.now()),
	}
	if attrs.URL != "" {
		pr.URL = &attrs.URL
	}
	if pr.State == model.PullRequestStateMerged {
		merged := parseGitLabTime(attrs.UpdatedAt, m.now())
		pr.MergedAt = &merged
	}
	return &Batch{PullRequests: []model.PullRequest{pr}}, nil
}

func (m *GitLabMapper) mapWikiPage(body []byte) (*Batch, error) {
	var event gitlab.WikiPageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode wiki page event: %w", err)
	}
	attrs := event.ObjectAttributes
	if attrs.Action == "delete" {
		return &Batch{}, nil
	}
	if attrs.Slug == "" {
		return nil, fmt.Errorf("wiki page event without slug: %w", ErrUnsupportedEvent)
	}

	project := event.Project.PathWithNamespace
	doc := model.Document{
		SourceID:  fmt.Sprintf("gitlab-wiki:%s/%s", project, attrs.Slug),
		Title:     attrs.Title,
		Body:      attrs.Content,
		Space:     project,
		UpdatedAt: m.now().UTC(),
	}
	if attrs.URL != "" {
		url := attrs.URL
		doc.URL = &url
	}
	return &Batch{Documents: []model.Document{doc}}, nil
}

// GitLabState maps a merge request state onto the pull request lifecycle.
func GitLabState(state string) model.PullRequestState {
	switch state {
	case "merged":
		return model.PullRequestStateMerged
	case "closed", "locked":
		return model.PullRequestStateClosed
	}
	return model.PullRequestStateOpen
}

// GitLab hook timestamps come as "2006-01-02 15:04:05 UTC" or RFC 3339
// depending on the hook version.
func parseGitLabTime(value string, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05 MST", "2006-01-02 15:04:05 -0700"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return fallback.UTC()
}
