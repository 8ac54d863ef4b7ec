package vector

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
)

func point(org int64, kind model.EntityKind, key string, v ...float32) Point {
	return Point{
		ID:             id.PointID(org, string(kind), key),
		OrganizationID: org,
		Kind:           kind,
		EntityKey:      key,
		Vector:         v,
		Payload:        map[string]any{"key": key},
	}
}

var _ = Describe("MemoryIndex", func() {
	var (
		ctx   context.Context
		index *MemoryIndex
	)

	BeforeEach(func() {
		ctx = context.Background()
		index = NewMemoryIndex()
	})

	It("orders hits by descending cosine similarity", func() {
		Expect(index.Upsert(ctx,
			point(1, model.KindTicket, "AUTH-1", 1, 0),
			point(1, model.KindTicket, "AUTH-2", 0.7, 0.7),
			point(1, model.KindTicket, "AUTH-3", 0, 1),
		)).To(Succeed())

		hits, err := index.Search(ctx, Query{OrganizationID: 1, Kind: model.KindTicket, Vector: []float32{1, 0.1}, Limit: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(hits).To(HaveLen(3))
		Expect(hits[0].EntityKey).To(Equal("AUTH-1"))
		Expect(hits[1].EntityKey).To(Equal("AUTH-2"))
		Expect(hits[2].EntityKey).To(Equal("AUTH-3"))
		Expect(hits[0].Score).To(BeNumerically(">", hits[1].Score))
	})

	It("never returns points from another organization", func() {
		Expect(index.Upsert(ctx,
			point(1, model.KindCommit, "repo:abc", 1, 0),
			point(2, model.KindCommit, "repo:def", 1, 0),
		)).To(Succeed())

		hits, err := index.Search(ctx, Query{OrganizationID: 2, Kind: model.KindCommit, Vector: []float32{1, 0}})
		Expect(err).NotTo(HaveOccurred())
		Expect(hits).To(HaveLen(1))
		Expect(hits[0].EntityKey).To(Equal("repo:def"))
	})

	It("overwrites a point re-indexed under the same id", func() {
		Expect(index.Upsert(ctx, point(1, model.KindDocument, "page-1", 1, 0))).To(Succeed())
		Expect(index.Upsert(ctx, point(1, model.KindDocument, "page-1", 0, 1))).To(Succeed())

		Expect(index.Len(1, model.KindDocument)).To(Equal(1))
	})

	It("applies the default limit", func() {
		for _, key := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			Expect(index.Upsert(ctx, point(1, model.KindCodeFile, "repo:"+key, 1, 1))).To(Succeed())
		}
		hits, err := index.Search(ctx, Query{OrganizationID: 1, Kind: model.KindCodeFile, Vector: []float32{1, 1}})
		Expect(err).NotTo(HaveOccurred())
		Expect(hits).To(HaveLen(defaultLimit))
	})

	DescribeTable("rejects queries without mandatory scoping",
		func(q Query) {
			_, err := index.Search(ctx, q)
			Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
		},
		Entry("missing organization", Query{Kind: model.KindTicket, Vector: []float32{1}}),
		Entry("unknown kind", Query{OrganizationID: 1, Kind: "wiki", Vector: []float32{1}}),
		Entry("empty vector", Query{OrganizationID: 1, Kind: model.KindTicket}),
	)

	It("rejects points without an organization", func() {
		p := point(0, model.KindTicket, "AUTH-1", 1)
		Expect(errors.Is(index.Upsert(ctx, p), domain.ErrValidation)).To(BeTrue())
	})
})
