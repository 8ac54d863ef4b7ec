package queue

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"basegraph.app/correlate/internal/model"
)

var _ = Describe("ParseMessage", func() {
	It("reads back what messageValues writes", func() {
		original := Message{
			TaskType:       TaskTypeIndexEntity,
			OrganizationID: 42,
			Kind:           model.KindCommit,
			EntityKey:      "api:abc1234",
			TraceParent:    "00-abc-def-01",
		}
		raw := redis.XMessage{ID: "1-0", Values: stringify(messageValues(original, 3))}

		msg, err := ParseMessage(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1-0"))
		Expect(msg.OrganizationID).To(Equal(int64(42)))
		Expect(msg.Kind).To(Equal(model.KindCommit))
		Expect(msg.EntityKey).To(Equal("api:abc1234"))
		Expect(msg.Attempt).To(Equal(3))
		Expect(msg.Trace()).To(HaveKeyWithValue("traceparent", "00-abc-def-01"))
	})

	It("defaults the attempt to one", func() {
		msg, err := ParseMessage(redis.XMessage{ID: "1-0", Values: map[string]any{
			"task_type": "index_entity", "organization_id": "1", "kind": "ticket", "entity_key": "AUTH-1",
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
		Expect(msg.Trace()).To(BeNil())
	})

	DescribeTable("rejects malformed messages",
		func(values map[string]any, want string) {
			_, err := ParseMessage(redis.XMessage{ID: "1-0", Values: values})
			Expect(err).To(MatchError(ContainSubstring(want)))
		},
		Entry("unknown task", map[string]any{"task_type": "issue_event"}, "unknown task_type"),
		Entry("missing org", map[string]any{"task_type": "index_entity"}, "missing organization_id"),
		Entry("zero org", map[string]any{"task_type": "index_entity", "organization_id": "0"}, "invalid organization_id"),
		Entry("bad kind", map[string]any{"task_type": "index_entity", "organization_id": "1", "kind": "wiki"}, "unknown kind"),
		Entry("empty key", map[string]any{"task_type": "index_entity", "organization_id": "1", "kind": "ticket", "entity_key": ""}, "empty entity_key"),
	)
})

// Redis returns every stream field as a string.
func stringify(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = fmt.Sprint(v)
	}
	return out
}
