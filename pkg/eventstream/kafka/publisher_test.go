package kafka_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/dossier/pkg/eventstream"
	"github.com/papercomputeco/dossier/pkg/eventstream/kafka"
	"github.com/papercomputeco/dossier/pkg/registry"
)

type recordingWriter struct {
	messages []kafkago.Message
	fail     error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.fail != nil {
		return w.fail
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		writer    *recordingWriter
		publisher *kafka.Publisher
		event     *eventstream.ReportCreatedEvent
	)

	BeforeEach(func() {
		writer = &recordingWriter{}
		publisher = kafka.NewPublisherWithWriter(writer, "reports")
		event = eventstream.NewReportCreatedEvent(
			eventstream.SourceBot,
			registry.Person{ID: "p1", Name: "Mario Rossi"},
			false,
			registry.Report{ID: "r1", PersonID: "p1", Fact: "fact", ReportedBy: "anna"},
			"existing_same_key",
		)
	})

	It("requires brokers", func() {
		_, err := kafka.NewPublisher(kafka.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("writes a JSON message keyed by person id", func() {
		Expect(publisher.PublishReport(context.Background(), event)).To(Succeed())
		Expect(writer.messages).To(HaveLen(1))

		msg := writer.messages[0]
		Expect(string(msg.Key)).To(Equal("p1"))

		var decoded eventstream.ReportCreatedEvent
		Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
		Expect(decoded.EventID).To(Equal(event.EventID))
		Expect(decoded.Report.Fact).To(Equal("fact"))

		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte(eventstream.EventTypeReportCreated)}))
	})

	It("rejects nil events", func() {
		Expect(publisher.PublishReport(context.Background(), nil)).To(MatchError(eventstream.ErrNilReportEvent))
	})

	It("wraps writer failures", func() {
		boom := errors.New("broker down")
		writer.fail = boom
		Expect(publisher.PublishReport(context.Background(), event)).To(MatchError(boom))
	})

	It("closes the writer", func() {
		Expect(publisher.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
