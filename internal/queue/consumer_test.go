package queue_test

import (
	"github.com/redis/go-redis/v9"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"reportdesk.app/reportdesk/internal/queue"
)

var _ = Describe("ParseMessage", func() {
	validValues := func() map[string]any {
		return map[string]any{
			"kind":      "dm_ack",
			"report_id": "100",
			"user_id":   "42",
			"attempt":   "2",
		}
	}

	It("parses a complete notify task", func() {
		msg, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: validValues()})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1-0"))
		Expect(msg.Kind).To(Equal(queue.TaskKindAck))
		Expect(msg.ReportID).To(Equal(int64(100)))
		Expect(msg.UserID).To(Equal(int64(42)))
		Expect(msg.Attempt).To(Equal(2))
	})

	It("defaults a missing attempt to 1", func() {
		values := validValues()
		delete(values, "attempt")

		msg, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
	})

	It("carries the trace id when present", func() {
		values := validValues()
		values["trace_id"] = "abc123"

		msg, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TraceID).To(Equal("abc123"))
	})

	It("accepts the reply kind", func() {
		values := validValues()
		values["kind"] = "dm_reply"

		msg, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Kind).To(Equal(queue.TaskKindReply))
	})

	It("rejects an unknown kind", func() {
		values := validValues()
		values["kind"] = "dm_spam"

		_, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a missing report id", func() {
		values := validValues()
		delete(values, "report_id")

		_, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-numeric user id", func() {
		values := validValues()
		values["user_id"] = "not-a-number"

		_, err := queue.ParseMessage(redis.XMessage{ID: "1-0", Values: values})
		Expect(err).To(HaveOccurred())
	})
})
