package service_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/correlate/internal/codeparse"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/mapper"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/service"
)

func strPtr(s string) *string { return &s }

var _ = Describe("IngestService", func() {
	const org int64 = 3

	var (
		ctx    context.Context
		ix     *recordingIndexer
		parser *fakeParser
		svc    service.IngestService
	)

	BeforeEach(func() {
		ctx = context.Background()
		ix = &recordingIndexer{}
		parser = &fakeParser{}
		svc = service.NewIngestService(ix, parser, mapper.NewGitLabMapper())
	})

	Describe("Tickets", func() {
		It("normalizes keys, lists and defaults", func() {
			created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
			_, err := svc.Tickets(ctx, org, []model.Ticket{{
				Key:        " auth-101 ",
				Summary:    "  Move authentication to JWT ",
				IssueType:  "Story",
				Assignee:   strPtr("  "),
				Labels:     []string{"security", " security", ""},
				Components: []string{"auth", "auth"},
				CreatedAt:  created,
			}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ix.tickets).To(HaveLen(1))

			t := ix.tickets[0]
			Expect(t.Key).To(Equal("AUTH-101"))
			Expect(t.Summary).To(Equal("Move authentication to JWT"))
			Expect(t.IssueType).To(Equal("story"))
			Expect(t.Status).To(Equal("Open"))
			Expect(t.Assignee).To(BeNil())
			Expect(t.Labels).To(Equal([]string{"security"}))
			Expect(t.Components).To(Equal([]string{"auth"}))
			Expect(t.UpdatedAt).To(Equal(created))
		})

		It("rejects the whole batch when one ticket is invalid", func() {
			_, err := svc.Tickets(ctx, org, []model.Ticket{
				{Key: "AUTH-1", Summary: "fine"},
				{Key: "AUTH-2"},
			})
			Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("tickets[1].summary"))
			Expect(ix.calls).To(BeZero())
		})

		DescribeTable("validates the batch",
			func(orgID int64, tickets []model.Ticket) {
				_, err := svc.Tickets(ctx, orgID, tickets)
				Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
			},
			Entry("missing organization", int64(0), []model.Ticket{{Key: "AUTH-1", Summary: "s"}}),
			Entry("empty batch", org, []model.Ticket{}),
			Entry("oversized batch", org, make([]model.Ticket, service.MaxBatchSize+1)),
			Entry("malformed key", org, []model.Ticket{{Key: "not a key", Summary: "s"}}),
		)
	})

	Describe("Commits", func() {
		It("derives ticket references from the message and merges provided ones", func() {
			_, err := svc.Commits(ctx, org, []model.Commit{{
				Repository:       "acme/api",
				SHA:              "A1B2C3D4E5F6",
				Message:          "AUTH-101 add jwt signer, see AUTH-102",
				TicketReferences: []string{"ops-7", "AUTH-101", "garbage"},
				FilesChanged:     []string{"./internal/auth/jwt.go", "internal/auth/jwt.go", " "},
			}})
			Expect(err).NotTo(HaveOccurred())

			c := ix.commits[0]
			Expect(c.SHA).To(Equal("a1b2c3d4e5f6"))
			Expect(c.TicketReferences).To(Equal([]string{"OPS-7", "AUTH-101", "AUTH-102"}))
			Expect(c.FilesChanged).To(Equal([]string{"internal/auth/jwt.go"}))
			Expect(c.CommitDate.IsZero()).To(BeFalse())
		})

		DescribeTable("rejects malformed commits",
			func(c model.Commit, field string) {
				_, err := svc.Commits(ctx, org, []model.Commit{c})
				Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring(field))
			},
			Entry("missing repository", model.Commit{SHA: "abcdef1"}, "repository"),
			Entry("missing sha", model.Commit{Repository: "r"}, "sha"),
			Entry("short sha", model.Commit{Repository: "r", SHA: "abc"}, "sha"),
			Entry("non-hex sha", model.Commit{Repository: "r", SHA: "zzzzzzzz"}, "sha"),
			Entry("negative additions", model.Commit{Repository: "r", SHA: "abcdef1", Additions: -1}, "additions"),
		)
	})

	Describe("PullRequests", func() {
		It("defaults the state and scans title and description for keys", func() {
			merged := time.Now()
			_, err := svc.PullRequests(ctx, org, []model.PullRequest{{
				Repository:  "acme/api",
				Number:      42,
				Title:       "AUTH-101: JWT auth",
				Description: "Follow-up in AUTH-103",
				MergedAt:    &merged,
			}})
			Expect(err).NotTo(HaveOccurred())

			pr := ix.pullRequests[0]
			Expect(pr.State).To(Equal(model.PullRequestStateOpen))
			Expect(pr.MergedAt).To(BeNil())
			Expect(pr.TicketReferences).To(Equal([]string{"AUTH-101", "AUTH-103"}))
		})

		It("accepts states case-insensitively", func() {
			_, err := svc.PullRequests(ctx, org, []model.PullRequest{{Repository: "r", Number: 1, Title: "t", State: "MERGED"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ix.pullRequests[0].State).To(Equal(model.PullRequestStateMerged))
		})

		DescribeTable("rejects malformed pull requests",
			func(p model.PullRequest, field string) {
				_, err := svc.PullRequests(ctx, org, []model.PullRequest{p})
				Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring(field))
			},
			Entry("missing repository", model.PullRequest{Number: 1, Title: "t"}, "repository"),
			Entry("zero number", model.PullRequest{Repository: "r", Title: "t"}, "number"),
			Entry("missing title", model.PullRequest{Repository: "r", Number: 1}, "title"),
			Entry("unknown state", model.PullRequest{Repository: "r", Number: 1, Title: "t", State: "draft"}, "state"),
		)
	})

	Describe("CodeFiles", func() {
		It("detects the language and extracts symbols from content", func() {
			parser.symbols = codeparse.Symbols{Functions: []string{"Sign", "Verify"}, Classes: []string{"Signer"}}

			_, err := svc.CodeFiles(ctx, org, []service.CodeFileInput{{
				CodeFile: model.CodeFile{Repository: "acme/api", FilePath: "/internal/auth/jwt.go", Functions: []string{"Sign"}},
				Content:  "package auth\n\nfunc Sign() {}\n",
			}})
			Expect(err).NotTo(HaveOccurred())

			f := ix.codeFiles[0]
			Expect(f.FilePath).To(Equal("internal/auth/jwt.go"))
			Expect(f.Language).To(Equal("go"))
			Expect(f.SizeBytes).To(Equal(int64(len("package auth\n\nfunc Sign() {}\n"))))
			Expect(f.Functions).To(Equal([]string{"Sign", "Verify"}))
			Expect(f.Classes).To(Equal([]string{"Signer"}))
			Expect(parser.langs).To(Equal([]codeparse.Language{codeparse.LangGo}))
		})

		It("keeps the record when extraction fails", func() {
			parser.err = errors.New("grammar crashed")
			_, err := svc.CodeFiles(ctx, org, []service.CodeFileInput{{
				CodeFile: model.CodeFile{Repository: "r", FilePath: "app.py", Functions: []string{"main"}},
				Content:  "def main(): pass",
			}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ix.codeFiles[0].Functions).To(Equal([]string{"main"}))
			Expect(ix.codeFiles[0].Language).To(Equal("python"))
		})

		It("skips the parser for unknown languages and metadata-only records", func() {
			_, err := svc.CodeFiles(ctx, org, []service.CodeFileInput{
				{CodeFile: model.CodeFile{Repository: "r", FilePath: "README.md"}, Content: "# readme"},
				{CodeFile: model.CodeFile{Repository: "r", FilePath: "main.go", SizeBytes: 99}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(parser.langs).To(BeEmpty())
			Expect(ix.codeFiles[1].SizeBytes).To(Equal(int64(99)))
		})

		It("requires a path", func() {
			_, err := svc.CodeFiles(ctx, org, []service.CodeFileInput{{CodeFile: model.CodeFile{Repository: "r", FilePath: " / "}}})
			Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Documents", func() {
		It("requires a source id and a title", func() {
			_, err := svc.Documents(ctx, org, []model.Document{{SourceID: "wiki/1"}})
			Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())

			_, err = svc.Documents(ctx, org, []model.Document{{SourceID: "wiki/1", Title: "Auth design", URL: strPtr("")}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ix.documents[0].URL).To(BeNil())
			Expect(ix.documents[0].UpdatedAt.IsZero()).To(BeFalse())
		})
	})

	Describe("GitLabWebhook", func() {
		It("ingests pushed commits with references derived from their messages", func() {
			body := `{"project":{"path_with_namespace":"acme/api"},"commits":[
				{"id":"a1b2c3d4e5f60718293a4b5c6d7e8f9012345678","message":"AUTH-101 add jwt signer",
				 "timestamp":"2026-03-02T10:15:00Z","author":{"name":"Sam","email":"Sam@Example.com"},"added":["jwt.go"]}]}`

			res, err := svc.GitLabWebhook(ctx, org, gitlab.EventTypePush, []byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ignored).To(BeFalse())
			Expect(res.Commits.Stored).To(Equal(1))
			Expect(res.PullRequests).To(BeNil())

			Expect(ix.commits[0].TicketReferences).To(Equal([]string{"AUTH-101"}))
			Expect(ix.commits[0].AuthorEmail).To(Equal("sam@example.com"))
		})

		It("ingests merge requests", func() {
			body := `{"project":{"path_with_namespace":"acme/api"},"object_attributes":{"iid":42,"title":"AUTH-101 JWT","state":"merged"}}`
			res, err := svc.GitLabWebhook(ctx, org, gitlab.EventTypeMergeRequest, []byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.PullRequests.Stored).To(Equal(1))
			Expect(ix.pullRequests[0].TicketReferences).To(Equal([]string{"AUTH-101"}))
		})

		It("acknowledges events that carry nothing to ingest", func() {
			res, err := svc.GitLabWebhook(ctx, org, gitlab.EventTypeNote, []byte(`{}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ignored).To(BeTrue())

			res, err = svc.GitLabWebhook(ctx, org, gitlab.EventTypeWikiPage,
				[]byte(`{"project":{"path_with_namespace":"acme/api"},"object_attributes":{"slug":"x","action":"delete"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ignored).To(BeTrue())
			Expect(ix.calls).To(BeZero())
		})

		It("reports malformed bodies as validation errors", func() {
			_, err := svc.GitLabWebhook(ctx, org, gitlab.EventTypePush, []byte(`{`))
			Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
		})

		It("wraps store failures", func() {
			ix.err = errors.New("connection refused")
			body := `{"project":{"path_with_namespace":"acme/api"},"commits":[{"id":"abcdef1234567","message":"x"}]}`
			_, err := svc.GitLabWebhook(ctx, org, gitlab.EventTypePush, []byte(body))
			Expect(err).To(MatchError(ContainSubstring("ingest commits")))
		})
	})

	It("caps summaries at the configured length", func() {
		_, err := svc.Tickets(ctx, org, []model.Ticket{{Key: "AUTH-1", Summary: strings.Repeat("word ", 400)}})
		Expect(err).NotTo(HaveOccurred())
		Expect(len([]rune(ix.tickets[0].Summary))).To(BeNumerically("<=", 1003))
	})
})
