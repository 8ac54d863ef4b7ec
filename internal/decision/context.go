package decision

import (
	"fmt"
	"strings"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/model"
)

const (
	maxCommits      = 10
	maxPullRequests = 5
	maxDocuments    = 3

	descriptionBudget   = 1000
	commitMessageBudget = 200
	prBudget            = 500
	documentBudget      = 500
)

// Context is the bounded evidence an extraction runs over.
type Context struct {
	Ticket       model.Ticket
	Commits      []model.Commit
	PullRequests []model.PullRequest
	Documents    []model.SourceRef
}

func newContext(ticket model.Ticket, commits []model.Commit, prs []model.PullRequest, docs []model.SourceRef) Context {
	return Context{
		Ticket:       ticket,
		Commits:      common.Head(commits, maxCommits),
		PullRequests: common.Head(prs, maxPullRequests),
		Documents:    common.Head(docs, maxDocuments),
	}
}

// Render formats the context as the user prompt for extraction.
func (c Context) Render() string {
	var sb strings.Builder

	t := c.Ticket
	sb.WriteString("## Ticket\n")
	fmt.Fprintf(&sb, "%s: %s\n", t.Key, t.Summary)
	if t.IssueType != "" {
		fmt.Fprintf(&sb, "Type: %s\n", t.IssueType)
	}
	if t.Status != "" {
		fmt.Fprintf(&sb, "Status: %s\n", t.Status)
	}
	if len(t.Components) > 0 {
		fmt.Fprintf(&sb, "Components: %s\n", strings.Join(t.Components, ", "))
	}
	if desc := common.Excerpt(t.Description, descriptionBudget); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	if len(c.Commits) > 0 {
		sb.WriteString("\n## Commits\n")
		for _, commit := range c.Commits {
			fmt.Fprintf(&sb, "- %s (%s): %s\n",
				commit.ShortSHA(), commit.AuthorName, common.Excerpt(commit.Message, commitMessageBudget))
		}
	}

	if len(c.PullRequests) > 0 {
		sb.WriteString("\n## Pull Requests\n")
		for _, pr := range c.PullRequests {
			fmt.Fprintf(&sb, "### %s %s [%s]\n", pr.Ref(), pr.Title, pr.State)
			if desc := common.Excerpt(pr.Description, prBudget); desc != "" {
				sb.WriteString(desc)
				sb.WriteString("\n")
			}
		}
	}

	if len(c.Documents) > 0 {
		sb.WriteString("\n## Related Documents\n")
		for _, doc := range c.Documents {
			fmt.Fprintf(&sb, "### %s\n", doc.Title)
			if text := common.Excerpt(doc.Excerpt, documentBudget); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
