// Package kafka publishes report events to a Kafka topic. Events are keyed by
// person id so every report about one person lands on the same partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/dossier/pkg/eventstream"
)

// DefaultTopic is used when Config.Topic is empty.
const DefaultTopic = "dossier.reports"

// MessageWriter is the subset of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures a Kafka publisher.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher writes ReportCreatedEvents as JSON messages.
type Publisher struct {
	writer MessageWriter
	topic  string
}

// NewPublisher creates a publisher backed by a kafka-go writer.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		WriteTimeout:           c.WriteTimeout,
		AllowAutoTopicCreation: true,
	}

	return NewPublisherWithWriter(w, c.Topic), nil
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

// PublishReport serialises event and writes it to the topic.
func (p *Publisher) PublishReport(ctx context.Context, event *eventstream.ReportCreatedEvent) error {
	if event == nil {
		return eventstream.ErrNilReportEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling report event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Person.ID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(fmt.Sprint(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing report event to %s: %w", p.topic, err)
	}

	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
