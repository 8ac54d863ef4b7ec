package indexer

import (
	"strconv"
	"strings"
	"time"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/vector"
)

// Payload size caps. The vector payload is for display, the entity store keeps
// the full record.
const (
	maxPayloadText = 500
	maxFiles       = 20
	maxSymbols     = 50
)

// Edge labels in the correlation graph.
const (
	LinkReferences = "references" // commit/PR -> ticket
	LinkTouches    = "touches"    // commit/PR -> code file
	LinkMentions   = "mentions"   // document -> ticket
)

// Entry is the projection of one stored entity: the canonical text that gets
// embedded, the payload stored with the vector and the graph links.
type Entry struct {
	OrganizationID int64
	Kind           model.EntityKind
	Key            string
	Title          string
	Text           string
	Payload        map[string]any
	Links          []Link
}

type Link struct {
	Kind  model.EntityKind
	Key   string
	Label string
}

func TicketEntry(t model.Ticket) Entry {
	text := lines(
		"Ticket "+t.Key+": "+t.Summary,
		labelled("Type", t.IssueType),
		labelled("Labels", strings.Join(t.Labels, ", ")),
		labelled("Components", strings.Join(t.Components, ", ")),
		t.Description,
	)
	payload := basePayload(t.Key, t.Summary, t.Description, t.URL)
	payload["status"] = t.Status
	payload["issue_type"] = t.IssueType
	payload["priority"] = t.Priority
	payload["assignee"] = deref(t.Assignee)
	payload["labels"] = nonNil(t.Labels)
	payload["components"] = nonNil(t.Components)
	payload["created_at"] = formatTime(t.CreatedAt)

	return Entry{
		OrganizationID: t.OrganizationID,
		Kind:           model.KindTicket,
		Key:            t.EntityKey(),
		Title:          t.Key + ": " + t.Summary,
		Text:           text,
		Payload:        payload,
	}
}

func CommitEntry(c model.Commit) Entry {
	title := firstLine(c.Message)
	text := lines(
		c.Message,
		labelled("Author", c.AuthorName),
		labelled("Files", strings.Join(common.Head(c.FilesChanged, maxFiles), ", ")),
		labelled("Tickets", strings.Join(c.TicketReferences, ", ")),
	)
	payload := basePayload(c.EntityKey(), title, c.Message, c.URL)
	payload["sha"] = c.SHA
	payload["repository"] = c.Repository
	payload["author"] = c.AuthorName
	payload["date"] = formatTime(c.CommitDate)
	payload["files"] = common.Head(nonNil(c.FilesChanged), maxFiles)
	payload["ticket_refs"] = nonNil(c.TicketReferences)

	return Entry{
		OrganizationID: c.OrganizationID,
		Kind:           model.KindCommit,
		Key:            c.EntityKey(),
		Title:          c.ShortSHA() + " " + title,
		Text:           text,
		Payload:        payload,
		Links:          changeLinks(c.Repository, c.TicketReferences, c.FilesChanged),
	}
}

func PullRequestEntry(p model.PullRequest) Entry {
	text := lines(
		"Pull request #"+strconv.FormatInt(p.Number, 10)+": "+p.Title,
		labelled("State", string(p.State)),
		p.Description,
		labelled("Files", strings.Join(common.Head(p.FilesChanged, maxFiles), ", ")),
		labelled("Tickets", strings.Join(p.TicketReferences, ", ")),
	)
	payload := basePayload(p.EntityKey(), p.Title, p.Description, p.URL)
	payload["number"] = p.Number
	payload["repository"] = p.Repository
	payload["state"] = string(p.State)
	payload["author"] = p.AuthorName
	payload["files"] = common.Head(nonNil(p.FilesChanged), maxFiles)
	payload["ticket_refs"] = nonNil(p.TicketReferences)

	return Entry{
		OrganizationID: p.OrganizationID,
		Kind:           model.KindPullRequest,
		Key:            p.EntityKey(),
		Title:          "PR " + p.Ref() + ": " + p.Title,
		Text:           text,
		Payload:        payload,
		Links:          changeLinks(p.Repository, p.TicketReferences, p.FilesChanged),
	}
}

func CodeFileEntry(f model.CodeFile) Entry {
	functions := common.Head(nonNil(f.Functions), maxSymbols)
	classes := common.Head(nonNil(f.Classes), maxSymbols)
	text := lines(
		"File "+f.FilePath,
		labelled("Repository", f.Repository),
		labelled("Language", f.Language),
		labelled("Functions", strings.Join(functions, ", ")),
		labelled("Classes", strings.Join(classes, ", ")),
	)
	payload := basePayload(f.EntityKey(), f.FilePath, "", f.URL)
	payload[vector.PayloadText] = common.Excerpt(text, maxPayloadText)
	payload["repository"] = f.Repository
	payload["path"] = f.FilePath
	payload["language"] = f.Language
	payload["functions"] = functions
	payload["classes"] = classes

	return Entry{
		OrganizationID: f.OrganizationID,
		Kind:           model.KindCodeFile,
		Key:            f.EntityKey(),
		Title:          f.FilePath,
		Text:           text,
		Payload:        payload,
	}
}

func DocumentEntry(d model.Document) Entry {
	payload := basePayload(d.EntityKey(), d.Title, d.Body, d.URL)
	payload["space"] = d.Space
	payload["updated_at"] = formatTime(d.UpdatedAt)

	var links []Link
	for _, key := range common.ExtractTicketKeys(d.Title, d.Body) {
		links = append(links, Link{Kind: model.KindTicket, Key: key, Label: LinkMentions})
	}

	return Entry{
		OrganizationID: d.OrganizationID,
		Kind:           model.KindDocument,
		Key:            d.EntityKey(),
		Title:          d.Title,
		Text:           lines(d.Title, d.Body),
		Payload:        payload,
		Links:          links,
	}
}

func changeLinks(repository string, tickets, files []string) []Link {
	links := make([]Link, 0, len(tickets)+len(files))
	for _, key := range tickets {
		links = append(links, Link{Kind: model.KindTicket, Key: key, Label: LinkReferences})
	}
	for _, path := range files {
		links = append(links, Link{
			Kind:  model.KindCodeFile,
			Key:   model.CodeFile{Repository: repository, FilePath: path}.EntityKey(),
			Label: LinkTouches,
		})
	}
	return links
}

func basePayload(key, title, text string, url *string) map[string]any {
	return map[string]any{
		vector.PayloadKey:   key,
		vector.PayloadTitle: title,
		vector.PayloadText:  common.Excerpt(text, maxPayloadText),
		vector.PayloadURL:   deref(url),
	}
}

func lines(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
