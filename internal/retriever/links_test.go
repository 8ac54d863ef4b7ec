package retriever_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
)

var _ = Describe("InjectLinks", func() {
	links := map[string]string{
		"TICKET-1": "https://jira.example/PAY-1",
		"DOC-2":    "https://wiki.example/9",
	}

	DescribeTable("rewrites reference tokens",
		func(in, want string) {
			Expect(retriever.InjectLinks(in, links)).To(Equal(want))
		},
		Entry("known token", "See [TICKET-1].", "See [TICKET-1](https://jira.example/PAY-1)."),
		Entry("unknown token stays", "See [COMMIT-3].", "See [COMMIT-3]."),
		Entry("mixed", "[DOC-2] and [PR-1]", "[DOC-2](https://wiki.example/9) and [PR-1]"),
		Entry("repeated token", "[TICKET-1][TICKET-1]", "[TICKET-1](https://jira.example/PAY-1)[TICKET-1](https://jira.example/PAY-1)"),
		Entry("already linked", "[TICKET-1](https://x)", "[TICKET-1](https://x)"),
		Entry("no tokens", "plain text", "plain text"),
	)

	It("leaves text alone without links", func() {
		Expect(retriever.InjectLinks("[TICKET-1]", nil)).To(Equal("[TICKET-1]"))
	})
})

var _ = Describe("References", func() {
	It("lists distinct cited ids in order", func() {
		Expect(retriever.References("[PR-1] then [TICKET-2] and [PR-1]")).To(Equal([]string{"PR-1", "TICKET-2"}))
	})
})

var _ = Describe("RefID", func() {
	It("uses the kind prefix", func() {
		Expect(retriever.RefID(model.KindPullRequest, 3)).To(Equal("PR-3"))
		Expect(retriever.RefID(model.KindDocument, 1)).To(Equal("DOC-1"))
	})
})

var _ = Describe("Filter", func() {
	It("maps git to commits and pull requests", func() {
		Expect(retriever.Filter{Git: true}.Kinds()).To(Equal([]model.EntityKind{model.KindCommit, model.KindPullRequest}))
	})

	It("keeps retrieval order for all sources", func() {
		Expect(retriever.AllSources().Kinds()).To(Equal(model.AllKinds))
	})
})
