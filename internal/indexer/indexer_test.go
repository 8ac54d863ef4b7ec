package indexer_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/queue"
	"basegraph.app/correlate/internal/vector"
)

const org = int64(1)

func ticket(key, summary string) model.Ticket {
	return model.Ticket{
		Key:       key,
		Summary:   summary,
		Status:    "In Progress",
		IssueType: "story",
		CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
	}
}

var _ = Describe("Indexer", func() {
	var (
		ctx      context.Context
		fakes    *fakeStores
		index    *vector.MemoryIndex
		embedder *flakyEmbedder
	)

	BeforeEach(func() {
		ctx = context.Background()
		fakes = newFakeStores()
		index = vector.NewMemoryIndex()
		embedder = &flakyEmbedder{inner: llm.NewHashEmbedder(32)}
	})

	newIndexer := func(cfg indexer.Config, deps ...func(*indexer.Deps)) *indexer.Indexer {
		d := indexer.Deps{Stores: fakes.stores(), Index: index, Embedder: embedder}
		for _, fn := range deps {
			fn(&d)
		}
		ix, err := indexer.New(d, cfg)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(ix.Close)
		return ix
	}

	Context("with synchronous vector writes", func() {
		var ix *indexer.Indexer

		BeforeEach(func() {
			ix = newIndexer(indexer.Config{EmbedBatch: 8})
		})

		It("writes both sides and reports each outcome", func() {
			summary, err := ix.IngestTickets(ctx, org, []model.Ticket{
				ticket("AUTH-101", "Add OAuth login"),
				ticket("AUTH-102", "Refresh tokens"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Stored).To(Equal(2))
			Expect(summary.Indexed).To(Equal(2))
			Expect(summary.PartialFailure()).To(Succeed())
			Expect(summary.Results).To(ConsistOf(
				indexer.Result{Kind: model.KindTicket, Key: "AUTH-101", Primary: indexer.OutcomeStored, Secondary: indexer.OutcomeIndexed},
				indexer.Result{Kind: model.KindTicket, Key: "AUTH-102", Primary: indexer.OutcomeStored, Secondary: indexer.OutcomeIndexed},
			))

			Expect(index.Len(org, model.KindTicket)).To(Equal(2))
			Expect(fakes.states.status(org, model.KindTicket, "AUTH-101")).To(Equal(model.IndexStatusIndexed))
		})

		It("re-ingesting overwrites the vector instead of duplicating it", func() {
			_, err := ix.IngestTickets(ctx, org, []model.Ticket{ticket("AUTH-101", "Add OAuth login")})
			Expect(err).NotTo(HaveOccurred())
			_, err = ix.IngestTickets(ctx, org, []model.Ticket{ticket("AUTH-101", "Add OAuth and SAML login")})
			Expect(err).NotTo(HaveOccurred())

			Expect(index.Len(org, model.KindTicket)).To(Equal(1))
		})

		It("keeps the ingest successful when one embedding fails", func() {
			embedder.poison = "poisoned"

			summary, err := ix.IngestTickets(ctx, org, []model.Ticket{
				ticket("AUTH-101", "Add OAuth login"),
				ticket("AUTH-102", "poisoned summary"),
				ticket("AUTH-103", "Session timeout"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Stored).To(Equal(3))
			Expect(summary.Indexed).To(Equal(2))
			Expect(summary.Failed).To(Equal(1))
			Expect(errors.Is(summary.PartialFailure(), domain.ErrPartialIndexFailure)).To(BeTrue())

			Expect(fakes.states.status(org, model.KindTicket, "AUTH-102")).To(Equal(model.IndexStatusFailed))
			Expect(index.Len(org, model.KindTicket)).To(Equal(2))

			By("replaying only the failed entity once the encoder recovers")
			embedder.poison = ""
			report, err := ix.Backfill(ctx, org, indexer.BackfillOptions{
				Kinds:      []model.EntityKind{model.KindTicket},
				OnlyFailed: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Kinds[model.KindTicket]).To(Equal(model.BackfillCounts{Total: 1, Indexed: 1}))
			Expect(index.Len(org, model.KindTicket)).To(Equal(3))
		})

		It("fails the ingest when the entity store write fails", func() {
			fakes.tickets.failOn = "AUTH-102"

			summary, err := ix.IngestTickets(ctx, org, []model.Ticket{
				ticket("AUTH-101", "Add OAuth login"),
				ticket("AUTH-102", "Refresh tokens"),
			})
			Expect(err).To(MatchError(ContainSubstring("db down")))
			Expect(summary.Stored).To(Equal(1))
			Expect(index.Len(org, model.KindTicket)).To(Equal(1))
		})

		It("requires an organization", func() {
			_, err := ix.IngestTickets(ctx, 0, []model.Ticket{ticket("AUTH-1", "x")})
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("reports index status per kind", func() {
			embedder.poison = "broken"
			_, err := ix.IngestDocuments(ctx, org, []model.Document{
				{SourceID: "wiki-1", Title: "Auth design", Body: "AUTH-101 uses OAuth"},
				{SourceID: "wiki-2", Title: "broken page"},
			})
			Expect(err).NotTo(HaveOccurred())

			counts, err := ix.Status(ctx, org)
			Expect(err).NotTo(HaveOccurred())
			Expect(counts).To(ConsistOf(model.IndexStatusCounts{Kind: model.KindDocument, Indexed: 1, Failed: 1}))
		})

		It("loads a commit back from its entity key", func() {
			_, err := ix.IngestCommits(ctx, org, []model.Commit{{
				Repository: "api", SHA: "abc1234def", Message: "AUTH-101: add login",
				TicketReferences: []string{"AUTH-101"},
			}})
			Expect(err).NotTo(HaveOccurred())

			res, err := ix.ProjectKey(ctx, org, model.KindCommit, "api:abc1234def")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Secondary).To(Equal(indexer.OutcomeIndexed))

			_, err = ix.ProjectKey(ctx, org, model.KindCommit, "web:abc1234def")
			Expect(err).To(MatchError(domain.ErrNotFound))
		})
	})

	Context("with an in-process worker pool", func() {
		It("queues vector writes and drains them on close", func() {
			ix := newIndexer(indexer.Config{Workers: 2, QueueSize: 4, EmbedBatch: 2})

			var docs []model.Document
			for i := 0; i < 10; i++ {
				docs = append(docs, model.Document{SourceID: fmt.Sprintf("page-%d", i), Title: fmt.Sprintf("Page %d", i)})
			}
			summary, err := ix.IngestDocuments(ctx, org, docs)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Stored).To(Equal(10))
			Expect(summary.Queued).To(Equal(10))

			ix.Close()
			Expect(index.Len(org, model.KindDocument)).To(Equal(10))
		})

		It("fails vector writes submitted after close without failing the ingest", func() {
			ix := newIndexer(indexer.Config{Workers: 1})
			ix.Close()

			summary, err := ix.IngestDocuments(ctx, org, []model.Document{{SourceID: "late", Title: "Late"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Failed).To(Equal(1))
			Expect(fakes.states.status(org, model.KindDocument, "late")).To(Equal(model.IndexStatusFailed))
		})
	})

	Context("with queue dispatch", func() {
		It("enqueues one task per stored entity", func() {
			producer := &recordingProducer{}
			ix := newIndexer(indexer.Config{Dispatch: config.DispatchQueue}, func(d *indexer.Deps) { d.Tasks = producer })

			summary, err := ix.IngestPullRequests(ctx, org, []model.PullRequest{
				{Repository: "api", Number: 7, Title: "AUTH-101 login", State: model.PullRequestStateOpen},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Queued).To(Equal(1))
			Expect(producer.tasks).To(HaveLen(1))
			Expect(producer.tasks[0].EntityKey).To(Equal("api#7"))
			Expect(producer.tasks[0].Kind).To(Equal(model.KindPullRequest))
			Expect(index.Len(org, model.KindPullRequest)).To(BeZero())
		})

		It("marks the entity failed when the queue is unavailable", func() {
			producer := &recordingProducer{err: errors.New("redis down")}
			ix := newIndexer(indexer.Config{Dispatch: config.DispatchQueue}, func(d *indexer.Deps) { d.Tasks = producer })

			summary, err := ix.IngestPullRequests(ctx, org, []model.PullRequest{{Repository: "api", Number: 8, Title: "x"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Failed).To(Equal(1))
			Expect(fakes.states.status(org, model.KindPullRequest, "api#8")).To(Equal(model.IndexStatusFailed))
		})

		It("refuses queue mode without a producer", func() {
			_, err := indexer.New(indexer.Deps{Stores: fakes.stores(), Index: index, Embedder: embedder},
				indexer.Config{Dispatch: config.DispatchQueue})
			Expect(err).To(HaveOccurred())
		})
	})

	It("hands stored entries to the graph and ignores its failures", func() {
		graph := &recordingGraph{}
		ix := newIndexer(indexer.Config{}, func(d *indexer.Deps) { d.Graph = graph })

		summary, err := ix.IngestCommits(ctx, org, []model.Commit{{
			Repository: "api", SHA: "abc1234", Message: "AUTH-101 add login",
			FilesChanged: []string{"auth/login.go"}, TicketReferences: []string{"AUTH-101"},
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Indexed).To(Equal(1))
		Expect(graph.entries).To(HaveLen(1))
		Expect(graph.entries[0].Links).To(ConsistOf(
			indexer.Link{Kind: model.KindTicket, Key: "AUTH-101", Label: indexer.LinkReferences},
			indexer.Link{Kind: model.KindCodeFile, Key: "api:auth/login.go", Label: indexer.LinkTouches},
		))
	})

	It("invalidates cached searches for kinds that gained vectors", func() {
		cache := &recordingCache{}
		ix := newIndexer(indexer.Config{}, func(d *indexer.Deps) { d.Cache = cache })

		embedder.poison = "poisoned"
		_, err := ix.IngestTickets(ctx, org, []model.Ticket{ticket("AUTH-1", "poisoned summary")})
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.kinds(org)).To(BeEmpty())

		_, err = ix.IngestTickets(ctx, org, []model.Ticket{ticket("AUTH-2", "Add OAuth login")})
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.kinds(org)).To(Equal([]model.EntityKind{model.KindTicket}))
	})

	Describe("Backfill", func() {
		seed := func() {
			for i := 1; i <= 3; i++ {
				t := ticket(fmt.Sprintf("AUTH-%d", i), "summary")
				t.OrganizationID = org
				_, _ = ticketStore{fakes.tickets}.Upsert(ctx, &t)
			}
			c := model.Commit{OrganizationID: org, Repository: "api", SHA: "abc", Message: "AUTH-1 fix"}
			_, _ = commitStore{fakes.commits}.Upsert(ctx, &c)
			other := ticket("OPS-1", "other tenant")
			other.OrganizationID = 2
			_, _ = ticketStore{fakes.tickets}.Upsert(ctx, &other)
		}

		It("replays every stored entity and reports per-kind counts", func() {
			seed()
			ix := newIndexer(indexer.Config{EmbedBatch: 2})

			report, err := ix.Backfill(ctx, org, indexer.BackfillOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Kinds[model.KindTicket]).To(Equal(model.BackfillCounts{Total: 3, Indexed: 3}))
			Expect(report.Kinds[model.KindCommit]).To(Equal(model.BackfillCounts{Total: 1, Indexed: 1}))
			Expect(report.Kinds[model.KindDocument]).To(Equal(model.BackfillCounts{}))
			Expect(index.Len(org, model.KindTicket)).To(Equal(3))
			Expect(index.Len(2, model.KindTicket)).To(BeZero())

			By("running again without duplicating points")
			_, err = ix.Backfill(ctx, org, indexer.BackfillOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(index.Len(org, model.KindTicket)).To(Equal(3))
		})

		It("invalidates every backfilled kind when it finishes", func() {
			seed()
			cache := &recordingCache{}
			ix := newIndexer(indexer.Config{}, func(d *indexer.Deps) { d.Cache = cache })

			_, err := ix.Backfill(ctx, org, indexer.BackfillOptions{
				Kinds: []model.EntityKind{model.KindTicket, model.KindDocument},
			})
			Expect(err).NotTo(HaveOccurred())
			kinds := cache.kinds(org)
			Expect(kinds).To(ContainElements(model.KindTicket, model.KindDocument))
			Expect(kinds[len(kinds)-2:]).To(Equal([]model.EntityKind{model.KindTicket, model.KindDocument}))
			Expect(cache.kinds(2)).To(BeEmpty())
		})

		It("counts embedding failures instead of aborting", func() {
			seed()
			embedder.poison = "AUTH-2"
			ix := newIndexer(indexer.Config{EmbedBatch: 10})

			report, err := ix.Backfill(ctx, org, indexer.BackfillOptions{Kinds: []model.EntityKind{model.KindTicket}})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Kinds[model.KindTicket]).To(Equal(model.BackfillCounts{Total: 3, Indexed: 2, Failed: 1}))
		})

		It("serializes backfills of the same collection", func() {
			locker := queue.NewLocalLocker()
			ix := newIndexer(indexer.Config{}, func(d *indexer.Deps) { d.Locker = locker })

			unlock, err := locker.Acquire(ctx, "correlate:backfill:1:ticket", time.Minute)
			Expect(err).NotTo(HaveOccurred())

			_, err = ix.Backfill(ctx, org, indexer.BackfillOptions{})
			Expect(err).To(MatchError(domain.ErrBackfillRunning))

			By("leaving other collections unlocked after the refusal")
			_, err = ix.Backfill(ctx, org, indexer.BackfillOptions{Kinds: []model.EntityKind{model.KindCommit}})
			Expect(err).NotTo(HaveOccurred())

			Expect(unlock(ctx)).To(Succeed())
			_, err = ix.Backfill(ctx, org, indexer.BackfillOptions{Kinds: []model.EntityKind{model.KindTicket}})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown kinds", func() {
			ix := newIndexer(indexer.Config{})
			_, err := ix.Backfill(ctx, org, indexer.BackfillOptions{Kinds: []model.EntityKind{"wiki"}})
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})
})
