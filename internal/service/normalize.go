package service

import (
	"fmt"
	"strings"
	"time"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
)

const (
	// MaxBatchSize bounds one ingest call.
	MaxBatchSize = 500

	minSHALength    = 7
	maxSHALength    = 64
	defaultStatus   = "Open"
	maxSummaryRunes = 1000
)

func checkBatch[T any](field string, items []T) error {
	if len(items) == 0 {
		return domain.Invalid(field, "at least one item is required")
	}
	if len(items) > MaxBatchSize {
		return domain.Invalid(field, fmt.Sprintf("at most %d items per batch", MaxBatchSize))
	}
	return nil
}

func itemField(batch string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", batch, i, field)
}

func normalizeTicket(t *model.Ticket, i int, now time.Time) error {
	t.Key = common.NormalizeTicketKey(t.Key)
	t.Summary = strings.TrimSpace(t.Summary)
	if t.Key == "" {
		return domain.Invalid(itemField("tickets", i, "key"), "required")
	}
	if !validTicketKey(t.Key) {
		return domain.Invalid(itemField("tickets", i, "key"), "must look like PROJ-123")
	}
	if t.Summary == "" {
		return domain.Invalid(itemField("tickets", i, "summary"), "required")
	}
	t.Summary = common.Excerpt(t.Summary, maxSummaryRunes)

	t.Status = strings.TrimSpace(t.Status)
	if t.Status == "" {
		t.Status = defaultStatus
	}
	t.IssueType = strings.ToLower(strings.TrimSpace(t.IssueType))
	t.Priority = strings.TrimSpace(t.Priority)
	t.Assignee = blankToNil(t.Assignee)
	t.Reporter = blankToNil(t.Reporter)
	t.URL = blankToNil(t.URL)
	t.Labels = common.Dedupe(t.Labels)
	t.Components = common.Dedupe(t.Components)

	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() || t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	return nil
}

func normalizeCommit(c *model.Commit, i int, now time.Time) error {
	c.Repository = strings.TrimSpace(c.Repository)
	c.SHA = strings.ToLower(strings.TrimSpace(c.SHA))
	if c.Repository == "" {
		return domain.Invalid(itemField("commits", i, "repository"), "required")
	}
	if c.SHA == "" {
		return domain.Invalid(itemField("commits", i, "sha"), "required")
	}
	if len(c.SHA) < minSHALength || len(c.SHA) > maxSHALength || !isHex(c.SHA) {
		return domain.Invalid(itemField("commits", i, "sha"), "must be 7 to 64 hex characters")
	}
	if c.Additions < 0 || c.Deletions < 0 {
		return domain.Invalid(itemField("commits", i, "additions"), "line counts cannot be negative")
	}

	c.Message = strings.TrimSpace(c.Message)
	c.AuthorName = strings.TrimSpace(c.AuthorName)
	c.AuthorEmail = strings.ToLower(strings.TrimSpace(c.AuthorEmail))
	c.URL = blankToNil(c.URL)
	c.FilesChanged = common.CleanPaths(c.FilesChanged)
	c.TicketReferences = ticketRefs(c.TicketReferences, c.Message)
	if c.CommitDate.IsZero() {
		c.CommitDate = now
	}
	return nil
}

func normalizePullRequest(p *model.PullRequest, i int, now time.Time) error {
	p.Repository = strings.TrimSpace(p.Repository)
	p.Title = strings.TrimSpace(p.Title)
	if p.Repository == "" {
		return domain.Invalid(itemField("pull_requests", i, "repository"), "required")
	}
	if p.Number <= 0 {
		return domain.Invalid(itemField("pull_requests", i, "number"), "must be positive")
	}
	if p.Title == "" {
		return domain.Invalid(itemField("pull_requests", i, "title"), "required")
	}

	p.State = model.PullRequestState(strings.ToLower(strings.TrimSpace(string(p.State))))
	if p.State == "" {
		p.State = model.PullRequestStateOpen
	}
	if !p.State.Valid() {
		return domain.Invalid(itemField("pull_requests", i, "state"), "must be open, merged or closed")
	}
	if p.State != model.PullRequestStateMerged {
		p.MergedAt = nil
	}

	p.Description = strings.TrimSpace(p.Description)
	p.AuthorName = strings.TrimSpace(p.AuthorName)
	p.URL = blankToNil(p.URL)
	p.FilesChanged = common.CleanPaths(p.FilesChanged)
	p.TicketReferences = ticketRefs(p.TicketReferences, p.Title, p.Description)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return nil
}

func normalizeCodeFile(f *model.CodeFile, i int) error {
	f.Repository = strings.TrimSpace(f.Repository)
	f.FilePath = common.CleanPath(f.FilePath)
	if f.Repository == "" {
		return domain.Invalid(itemField("code_files", i, "repository"), "required")
	}
	if f.FilePath == "" {
		return domain.Invalid(itemField("code_files", i, "file_path"), "required")
	}
	if f.SizeBytes < 0 {
		return domain.Invalid(itemField("code_files", i, "size_bytes"), "cannot be negative")
	}
	f.Language = strings.ToLower(strings.TrimSpace(f.Language))
	f.Functions = common.Dedupe(f.Functions)
	f.Classes = common.Dedupe(f.Classes)
	f.URL = blankToNil(f.URL)
	return nil
}

func normalizeDocument(d *model.Document, i int, now time.Time) error {
	d.SourceID = strings.TrimSpace(d.SourceID)
	d.Title = strings.TrimSpace(d.Title)
	if d.SourceID == "" {
		return domain.Invalid(itemField("documents", i, "source_id"), "required")
	}
	if d.Title == "" {
		return domain.Invalid(itemField("documents", i, "title"), "required")
	}
	d.Space = strings.TrimSpace(d.Space)
	d.URL = blankToNil(d.URL)
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
	return nil
}

func validTicketKey(key string) bool {
	keys := common.ExtractTicketKeys(key)
	return len(keys) == 1 && keys[0] == key
}

// ticketRefs merges caller-supplied references with keys mentioned in texts.
func ticketRefs(provided []string, texts ...string) []string {
	refs := make([]string, 0, len(provided))
	for _, r := range provided {
		r = common.NormalizeTicketKey(r)
		if validTicketKey(r) {
			refs = append(refs, r)
		}
	}
	refs = append(refs, common.ExtractTicketKeys(texts...)...)
	return common.Dedupe(refs)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
