package synth_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/synth"
)

var _ = Describe("MemoryConversations", func() {
	It("returns the newest turns oldest first and caps each session", func() {
		ctx := context.Background()
		c := synth.NewMemoryConversations()
		for i := 1; i <= 25; i++ {
			Expect(c.Append(ctx, 1, "s", synth.Turn{Question: fmt.Sprintf("q%d", i)})).To(Succeed())
		}

		turns, err := c.History(ctx, 1, "s", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(Equal([]synth.Turn{{Question: "q24"}, {Question: "q25"}}))

		all, err := c.History(ctx, 1, "s", 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(20))
		Expect(all[0].Question).To(Equal("q6"))

		other, err := c.History(ctx, 2, "s", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(other).To(BeEmpty())
	})
})
