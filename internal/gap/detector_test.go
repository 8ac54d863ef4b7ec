package gap_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/gap"
	"basegraph.app/correlate/internal/model"
)

var _ = Describe("Detector", func() {
	var (
		ctx context.Context
		now time.Time
		w   *world
		d   *gap.Detector
	)

	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		alice := "alice"
		w = &world{
			tickets: []model.Ticket{
				{OrganizationID: 1, Key: "AUTH-101", Summary: "SSO login", Status: "To Do", Priority: "High", IssueType: "Story", CreatedAt: daysAgo(5), UpdatedAt: daysAgo(5)},
				{OrganizationID: 1, Key: "AUTH-102", Summary: "Token refresh", Status: "In Progress", Priority: "", Assignee: &alice, IssueType: "Task", CreatedAt: daysAgo(40), UpdatedAt: daysAgo(45)},
				{OrganizationID: 1, Key: "AUTH-103", Summary: "Old", Status: "In Progress", IssueType: "Bug", CreatedAt: daysAgo(200), UpdatedAt: daysAgo(90)},
				{OrganizationID: 1, Key: "AUTH-104", Summary: "Done thing", Status: "Done", IssueType: "Feature", CreatedAt: daysAgo(100), UpdatedAt: daysAgo(100)},
				{OrganizationID: 2, Key: "AUTH-101", Summary: "other tenant", Status: "To Do", CreatedAt: daysAgo(1), UpdatedAt: daysAgo(1)},
			},
			commits: []model.Commit{
				{OrganizationID: 1, Repository: "api", SHA: "a1", Message: "AUTH-104 ship it", TicketReferences: []string{"AUTH-104"}},
				{OrganizationID: 1, Repository: "api", SHA: "a2", Message: "quick fix\n\nno ticket", AuthorName: "bob", CommitDate: daysAgo(2)},
				{OrganizationID: 1, Repository: "api", SHA: "a3", Message: "Merge branch 'main'"},
				{OrganizationID: 1, Repository: "api", SHA: "a4", Message: "chore(deps): bump pgx"},
				{OrganizationID: 2, Repository: "api", SHA: "b1", Message: "tenant two change"},
			},
			prs: []model.PullRequest{
				{OrganizationID: 1, Repository: "web", Number: 9, Title: "Refactor header", AuthorName: ""},
				{OrganizationID: 1, Repository: "web", Number: 10, Title: "AUTH-102 refresh", TicketReferences: []string{"AUTH-102"}},
			},
			decisions: map[string]bool{},
		}
		d = gap.New(ticketStore{w}, commitStore{w}, prStore{w}, gap.Config{}).WithClock(func() time.Time { return now })
	})

	Describe("OrphanedTickets", func() {
		It("lists unreferenced tickets inside the window", func() {
			report, err := d.OrphanedTickets(ctx, 1, 90)
			Expect(err).NotTo(HaveOccurred())

			keys := ticketKeys(report.Tickets)
			Expect(keys).To(Equal([]string{"AUTH-101"}))
			Expect(report.TimeframeDays).To(Equal(90))
			Expect(report.Stats.Total).To(Equal(1))
			Expect(report.Stats.ByPriority).To(Equal(map[string]int{"High": 1}))
			Expect(report.Stats.ByAssignee).To(Equal(map[string]int{"Unassigned": 1}))
		})

		It("widens with the window", func() {
			report, err := d.OrphanedTickets(ctx, 1, 365)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticketKeys(report.Tickets)).To(ConsistOf("AUTH-101", "AUTH-103"))
		})

		It("is idempotent", func() {
			first, err := d.OrphanedTickets(ctx, 1, 90)
			Expect(err).NotTo(HaveOccurred())
			second, err := d.OrphanedTickets(ctx, 1, 90)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticketKeys(second.Tickets)).To(Equal(ticketKeys(first.Tickets)))
		})

		It("drops a ticket once a commit references it", func() {
			w.commits = append(w.commits, model.Commit{OrganizationID: 1, Repository: "api", SHA: "a9", Message: "AUTH-101 sso", TicketReferences: []string{"AUTH-101"}})

			report, err := d.OrphanedTickets(ctx, 1, 90)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Tickets).To(BeEmpty())
		})

		It("uses the configured default window for zero", func() {
			report, err := d.OrphanedTickets(ctx, 1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TimeframeDays).To(Equal(gap.DefaultOrphanDays))
		})

		It("rejects a negative window", func() {
			_, err := d.OrphanedTickets(ctx, 1, -3)
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("wraps store failures", func() {
			w.err = errors.New("connection reset")
			_, err := d.OrphanedTickets(ctx, 1, 90)
			Expect(err).To(MatchError(ContainSubstring("list orphaned tickets: connection reset")))
		})
	})

	Describe("Undocumented", func() {
		It("skips trivial changes and referenced ones", func() {
			report, err := d.Undocumented(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Changes).To(HaveLen(2))
			Expect(report.Changes[0].Ref).To(Equal("a2"))
			Expect(report.Changes[0].Title).To(Equal("quick fix"))
			Expect(report.Changes[1].Kind).To(Equal(model.KindPullRequest))
			Expect(report.Changes[1].Ref).To(Equal("9"))
			Expect(report.Stats.ByAuthor).To(Equal(map[string]int{"bob": 1, "Unknown": 1}))
			Expect(report.Stats.ByRepository).To(Equal(map[string]int{"api": 1, "web": 1}))
		})
	})

	Describe("MissingDecisions", func() {
		It("lists feature-like tickets with commits and no decision", func() {
			report, err := d.MissingDecisions(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Tickets).To(HaveLen(1))
			Expect(report.Tickets[0].Ticket.Key).To(Equal("AUTH-104"))
			Expect(report.Tickets[0].CommitCount).To(Equal(1))
			Expect(report.Stats.ByIssueType).To(Equal(map[string]int{"Feature": 1}))
		})

		It("clears once a decision exists", func() {
			w.decisions["AUTH-104"] = true
			report, err := d.MissingDecisions(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Tickets).To(BeEmpty())
		})
	})

	Describe("StaleWork", func() {
		It("buckets open tickets by age", func() {
			report, err := d.StaleWork(ctx, 1, 30)
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Tickets).To(HaveLen(2))
			Expect(report.Tickets[0].Ticket.Key).To(Equal("AUTH-103"))
			Expect(report.Tickets[0].DaysSinceUpdate).To(Equal(90))
			Expect(report.Tickets[0].Severity).To(Equal(model.StaleSeverityCritical))
			Expect(report.Tickets[1].Ticket.Key).To(Equal("AUTH-102"))
			Expect(report.Tickets[1].Severity).To(Equal(model.StaleSeverityWarning))
			Expect(report.Stats.BySeverity).To(Equal(map[string]int{"critical": 1, "warning": 1}))
			Expect(report.Stats.ByAssignee).To(Equal(map[string]int{"alice": 1, "Unassigned": 1}))
		})

		It("keeps the critical bucket at sixty days for any window", func() {
			report, err := d.StaleWork(ctx, 1, 80)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Tickets).To(HaveLen(1))
			Expect(report.Tickets[0].Ticket.Key).To(Equal("AUTH-103"))
			Expect(report.Tickets[0].Severity).To(Equal(model.StaleSeverityCritical))

			report, err = d.StaleWork(ctx, 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stats.BySeverity).To(Equal(map[string]int{"critical": 1, "warning": 1}))
		})
	})

	Describe("Comprehensive", func() {
		It("totals every detector", func() {
			report, err := d.Comprehensive(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary).To(Equal(model.GapSummary{
				OrphanedTickets:     1,
				UndocumentedChanges: 2,
				MissingDecisions:    1,
				StaleTickets:        2,
				TotalGaps:           6,
			}))
		})

		It("stays inside the tenant", func() {
			report, err := d.Comprehensive(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticketKeys(report.Orphaned.Tickets)).To(Equal([]string{"AUTH-101"}))
			Expect(report.Orphaned.Tickets[0].Summary).To(Equal("other tenant"))
			Expect(report.Undocumented.Changes).To(HaveLen(1))
		})

		It("requires a tenant", func() {
			_, err := d.Comprehensive(ctx, 0)
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})
})

func ticketKeys(tickets []model.Ticket) []string {
	keys := make([]string, 0, len(tickets))
	for _, t := range tickets {
		keys = append(keys, t.Key)
	}
	return keys
}
