package impact_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/impact"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

var _ = Describe("Analyzer", func() {
	var (
		ctx     context.Context
		base    time.Time
		tickets *fakeTickets
		commits *fakeCommits
		prs     *fakePRs
		a       *impact.Analyzer
	)

	day := func(n int) time.Time { return base.AddDate(0, 0, n) }

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		tickets = &fakeTickets{tickets: []model.Ticket{
			{OrganizationID: 1, Key: "AUTH-101", Summary: "SSO login", Description: "Depends on AUTH-90 and NOPE-1.", Components: []string{"auth", "web"}},
			{OrganizationID: 1, Key: "AUTH-90", Summary: "Session store"},
			{OrganizationID: 1, Key: "AUTH-55", Summary: "Token refresh"},
		}}
		commits = &fakeCommits{commits: []model.Commit{
			{OrganizationID: 1, Repository: "api", SHA: "aaaaaaa1111", AuthorName: "Ann", AuthorEmail: "ann@x.io", CommitDate: day(1),
				Additions: 10, Deletions: 5, FilesChanged: []string{"auth/sso.go", "auth/session.go"}, TicketReferences: []string{"AUTH-101"}},
			{OrganizationID: 1, Repository: "api", SHA: "bbbbbbb2222", AuthorName: "Bob", AuthorEmail: "bob@x.io", CommitDate: day(3),
				Additions: 20, Deletions: 0, FilesChanged: []string{"auth/sso.go", "auth/sso_test.go"}, TicketReferences: []string{"AUTH-101", "AUTH-55"}},
			{OrganizationID: 1, Repository: "api", SHA: "ccccccc3333", AuthorName: "Ann", AuthorEmail: "ann@x.io", CommitDate: day(2),
				FilesChanged: []string{"auth/session.go"}},
			{OrganizationID: 1, Repository: "api", SHA: "ccccccc4444", AuthorName: "Cy", AuthorEmail: "cy@x.io", CommitDate: day(4),
				FilesChanged: []string{"README.md"}},
			{OrganizationID: 2, Repository: "api", SHA: "ddddddd5555", AuthorName: "Eve", AuthorEmail: "eve@y.io", CommitDate: day(5),
				FilesChanged: []string{"auth/sso.go"}},
		}}
		prs = &fakePRs{prs: []model.PullRequest{
			{OrganizationID: 1, Repository: "api", Number: 7, State: model.PullRequestStateOpen, FilesChanged: []string{"web/login.tsx"}, TicketReferences: []string{"AUTH-101"}},
		}}
		a = impact.New(tickets, commits, prs, impact.Config{SimilarityThreshold: 0.4})
	})

	Describe("File", func() {
		It("collects history, co-changes and reviewers for a path", func() {
			report, err := a.File(ctx, 1, "auth/sso.go")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.TotalCommits).To(Equal(2))
			Expect(report.RecentCommits[0].SHA).To(Equal("bbbbbbb2222"))
			Expect(report.CoChangedFiles).To(Equal([]model.CoChange{
				{FilePath: "auth/session.go", Count: 1},
				{FilePath: "auth/sso_test.go", Count: 1},
			}))
			var keys []string
			for _, t := range report.RelatedTickets {
				keys = append(keys, t.Key)
			}
			Expect(keys).To(ConsistOf("AUTH-101", "AUTH-55"))

			Expect(report.Developers).To(HaveLen(2))
			Expect(report.Developers[0].Name).To(Equal("Bob"), "equal counts break ties on recency")
			Expect(report.SuggestedReviewers).To(HaveLen(2))
		})

		It("returns an empty report for an unknown path", func() {
			report, err := a.File(ctx, 1, "nope.go")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCommits).To(BeZero())
			Expect(report.RelatedTickets).To(BeEmpty())
		})

		It("finds tickets linked only through a pull request", func() {
			report, err := a.File(ctx, 1, "web/login.tsx")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.TotalCommits).To(BeZero())
			Expect(report.RelatedTickets).To(HaveLen(1))
			Expect(report.RelatedTickets[0].Key).To(Equal("AUTH-101"))
			Expect(report.CoChangedFiles).To(BeEmpty())
		})

		It("cleans the path before matching", func() {
			for _, p := range []string{"./auth/sso.go", "/auth/sso.go", "auth//sso.go"} {
				report, err := a.File(ctx, 1, p)
				Expect(err).NotTo(HaveOccurred())
				Expect(report.FilePath).To(Equal("auth/sso.go"))
				Expect(report.TotalCommits).To(Equal(2), p)
			}
		})

		It("requires a path", func() {
			_, err := a.File(ctx, 1, " ")
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})

	Describe("Ticket", func() {
		BeforeEach(func() {
			tickets.similar = []store.Scored[model.Ticket]{
				{Item: model.Ticket{Key: "AUTH-55", Summary: "Token refresh", Components: []string{"auth"}}, Score: 0.42},
			}
		})

		It("aggregates commits and pull requests in one pass", func() {
			report, err := a.Ticket(ctx, 1, "AUTH-101")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Commits).To(HaveLen(2))
			Expect(report.PullRequests).To(HaveLen(1))
			Expect(report.AffectedFiles).To(Equal([]string{"auth/session.go", "auth/sso.go", "auth/sso_test.go", "web/login.tsx"}))
			Expect(report.TotalAdditions).To(Equal(30))
			Expect(report.TotalDeletions).To(Equal(5))
			Expect(report.BlastRadius).To(Equal(model.BlastRadiusMedium))
			Expect(report.AlreadyImplemented).To(BeTrue())
			Expect(report.DependentTickets).To(Equal([]string{"AUTH-90"}))
		})

		It("passes the configured threshold and reports shared components", func() {
			report, err := a.Ticket(ctx, 1, "AUTH-101")
			Expect(err).NotTo(HaveOccurred())

			Expect(tickets.lastSimilar.Threshold).To(Equal(0.4))
			Expect(tickets.lastSimilar.Components).To(Equal([]string{"auth", "web"}))
			Expect(report.SimilarTickets).To(HaveLen(1))
			Expect(report.SimilarTickets[0].SharedComponents).To(Equal([]string{"auth"}))
		})

		It("is not implemented without commits or merged pull requests", func() {
			report, err := a.Ticket(ctx, 1, "AUTH-90")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.AlreadyImplemented).To(BeFalse())
			Expect(report.BlastRadius).To(Equal(model.BlastRadiusSmall))
		})

		It("accepts keys in any case", func() {
			report, err := a.Ticket(ctx, 1, " auth-101 ")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Ticket.Key).To(Equal("AUTH-101"))
			Expect(report.Commits).To(HaveLen(2))
		})

		It("reports unknown tickets as not found", func() {
			_, err := a.Ticket(ctx, 1, "AUTH-999")
			Expect(err).To(MatchError(domain.ErrNotFound))
		})

		It("does not see other tenants", func() {
			_, err := a.Ticket(ctx, 2, "AUTH-101")
			Expect(err).To(MatchError(domain.ErrNotFound))
		})
	})

	Describe("Commit", func() {
		It("scores a commit found by prefix", func() {
			report, err := a.Commit(ctx, 1, "BBBBBBB")
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Commit.SHA).To(Equal("bbbbbbb2222"))
			Expect(report.FileCategories).To(Equal(map[model.FileCategory][]string{
				model.FileCategorySource: {"auth/sso.go"},
				model.FileCategoryTests:  {"auth/sso_test.go"},
			}))
			// 2 files*5 + 20/100 = 10, +2 source, -10 tests
			Expect(report.RiskScore).To(Equal(2))
			Expect(report.RiskLevel).To(Equal(model.RiskLevelLow))
			Expect(report.RelatedTickets).To(HaveLen(2))
			Expect(report.Reviewers).NotTo(BeEmpty())
		})

		It("rates a fifty-file change without tests as high or critical", func() {
			var files []string
			for i := 0; i < 50; i++ {
				files = append(files, fmt.Sprintf("svc/file%02d.go", i))
			}
			commits.commits = append(commits.commits, model.Commit{
				OrganizationID: 1, SHA: "eeeeeee6666", FilesChanged: files, Additions: 2000, Deletions: 300,
			})

			report, err := a.Commit(ctx, 1, "eeeeeee6666")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.RiskLevel).To(BeElementOf(model.RiskLevelHigh, model.RiskLevelCritical))
		})

		It("rejects short prefixes", func() {
			_, err := a.Commit(ctx, 1, "abc12")
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("rejects ambiguous prefixes", func() {
			_, err := a.Commit(ctx, 1, "ccccccc")
			Expect(err).To(MatchError(ContainSubstring("ambiguous")))
		})

		It("reports unknown commits as not found", func() {
			_, err := a.Commit(ctx, 1, "fffffff")
			Expect(err).To(MatchError(domain.ErrNotFound))
		})
	})

	Describe("SuggestReviewers", func() {
		It("returns at most three authors by overlap count", func() {
			commits.commits = append(commits.commits,
				model.Commit{OrganizationID: 1, SHA: "x1", AuthorName: "Dee", AuthorEmail: "dee@x.io", CommitDate: day(9), FilesChanged: []string{"auth/session.go"}},
			)
			reviewers, err := a.SuggestReviewers(ctx, 1, []string{"auth/session.go", "auth/sso.go", "auth/session.go"})
			Expect(err).NotTo(HaveOccurred())

			Expect(reviewers).To(HaveLen(3))
			Expect(reviewers[0].Email).To(Equal("ann@x.io"))
			Expect(reviewers[0].CommitCount).To(Equal(2))
		})

		It("matches paths in their stored form", func() {
			reviewers, err := a.SuggestReviewers(ctx, 1, []string{"./auth/session.go", "/auth/session.go"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reviewers).To(HaveLen(1))
			Expect(reviewers[0].Email).To(Equal("ann@x.io"))
		})

		It("requires paths", func() {
			_, err := a.SuggestReviewers(ctx, 1, []string{"", "  "})
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})
})
