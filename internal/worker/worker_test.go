package worker_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/queue"
	"basegraph.app/correlate/internal/worker"
)

type fakeConsumer struct {
	acked    []string
	requeued []string
	dlq      []string
}

func (c *fakeConsumer) Read(context.Context) ([]queue.Message, error) { return nil, nil }

func (c *fakeConsumer) Ack(_ context.Context, msg queue.Message) error {
	c.acked = append(c.acked, msg.ID)
	return nil
}

func (c *fakeConsumer) Requeue(_ context.Context, msg queue.Message, _ string) error {
	c.requeued = append(c.requeued, msg.ID)
	return nil
}

func (c *fakeConsumer) SendDLQ(_ context.Context, msg queue.Message, _ string) error {
	c.dlq = append(c.dlq, msg.ID)
	return nil
}

type fakeProjector struct {
	projectFn func(kind model.EntityKind, key string) (indexer.Result, error)
	calls     []string
}

func (p *fakeProjector) ProjectKey(_ context.Context, _ int64, kind model.EntityKind, key string) (indexer.Result, error) {
	p.calls = append(p.calls, key)
	return p.projectFn(kind, key)
}

var _ = Describe("Worker.ProcessMessage", func() {
	var (
		consumer  *fakeConsumer
		projector *fakeProjector
		w         *worker.Worker
		msg       queue.Message
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &fakeConsumer{}
		projector = &fakeProjector{projectFn: func(kind model.EntityKind, key string) (indexer.Result, error) {
			return indexer.Result{Kind: kind, Key: key, Primary: indexer.OutcomeStored, Secondary: indexer.OutcomeIndexed}, nil
		}}
		w = worker.New(consumer, projector, worker.Config{MaxAttempts: 3})
		msg = queue.Message{ID: "1-0", TaskType: queue.TaskTypeIndexEntity, OrganizationID: 1, Kind: model.KindTicket, EntityKey: "AUTH-101", Attempt: 1}
	})

	It("acks after a successful projection", func() {
		Expect(w.ProcessMessage(ctx, msg)).To(Succeed())
		Expect(projector.calls).To(Equal([]string{"AUTH-101"}))
		Expect(consumer.acked).To(Equal([]string{"1-0"}))
	})

	It("drops tasks for entities that no longer load", func() {
		projector.projectFn = func(model.EntityKind, string) (indexer.Result, error) {
			return indexer.Result{}, fmt.Errorf("load: %w", domain.ErrNotFound)
		}
		Expect(w.ProcessMessage(ctx, msg)).To(Succeed())
		Expect(consumer.acked).To(Equal([]string{"1-0"}))
	})

	It("leaves failed vector writes unacked for retry", func() {
		projector.projectFn = func(kind model.EntityKind, key string) (indexer.Result, error) {
			return indexer.Result{Kind: kind, Key: key, Primary: indexer.OutcomeStored, Secondary: indexer.OutcomeFailed, Error: "embed: 503"}, nil
		}
		err := w.ProcessMessage(ctx, msg)
		Expect(err).To(MatchError(ContainSubstring("embed: 503")))
		Expect(consumer.acked).To(BeEmpty())
	})

	It("returns store errors so the task is retried", func() {
		projector.projectFn = func(model.EntityKind, string) (indexer.Result, error) {
			return indexer.Result{}, errors.New("connection refused")
		}
		Expect(w.ProcessMessage(ctx, msg)).To(MatchError("connection refused"))
		Expect(consumer.acked).To(BeEmpty())
	})
})

var _ = Describe("Worker retry policy", func() {
	var (
		consumer *fakeConsumer
		w        *worker.Worker
	)

	BeforeEach(func() {
		consumer = &fakeConsumer{}
		w = worker.New(consumer, &fakeProjector{}, worker.Config{MaxAttempts: 3})
	})

	It("requeues below the attempt limit", func() {
		w.HandleFailedMessage(context.Background(), queue.Message{ID: "1-0", Attempt: 2}, errors.New("boom"))
		Expect(consumer.requeued).To(Equal([]string{"1-0"}))
		Expect(consumer.dlq).To(BeEmpty())
	})

	It("dead-letters at the attempt limit", func() {
		w.HandleFailedMessage(context.Background(), queue.Message{ID: "1-0", Attempt: 3}, errors.New("boom"))
		Expect(consumer.dlq).To(Equal([]string{"1-0"}))
		Expect(consumer.requeued).To(BeEmpty())
	})
})
