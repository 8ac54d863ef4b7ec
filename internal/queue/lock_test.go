package queue

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalLocker", func() {
	var (
		locker *LocalLocker
		now    time.Time
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		locker = NewLocalLocker()
		locker.now = func() time.Time { return now }
	})

	It("refuses a second holder", func() {
		_, err := locker.Acquire(ctx, "backfill:1:ticket", time.Minute)
		Expect(err).NotTo(HaveOccurred())

		_, err = locker.Acquire(ctx, "backfill:1:ticket", time.Minute)
		Expect(err).To(MatchError(ErrLockHeld))
	})

	It("frees the key on unlock", func() {
		unlock, err := locker.Acquire(ctx, "k", time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(unlock(ctx)).To(Succeed())

		_, err = locker.Acquire(ctx, "k", time.Minute)
		Expect(err).NotTo(HaveOccurred())
	})

	It("lets an expired lock be taken over and ignores the stale unlock", func() {
		stale, err := locker.Acquire(ctx, "k", time.Minute)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(2 * time.Minute)
		_, err = locker.Acquire(ctx, "k", time.Minute)
		Expect(err).NotTo(HaveOccurred())

		Expect(stale(ctx)).To(Succeed())
		_, err = locker.Acquire(ctx, "k", time.Minute)
		Expect(err).To(MatchError(ErrLockHeld))
	})

	It("keeps keys independent", func() {
		_, err := locker.Acquire(ctx, "a", time.Minute)
		Expect(err).NotTo(HaveOccurred())
		_, err = locker.Acquire(ctx, "b", time.Minute)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports live holders only", func() {
		held, err := locker.Held(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(held).To(BeFalse())

		_, err = locker.Acquire(ctx, "k", time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(locker.Held(ctx, "k")).To(BeTrue())

		now = now.Add(2 * time.Minute)
		Expect(locker.Held(ctx, "k")).To(BeFalse())
	})
})
