package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventProducer publishes job lifecycle events keyed by job id, so all
// events of one job land on the same partition.
type EventProducer struct {
	writer messageWriter
	topic  string
}

func NewEventProducer(p *producer.Producer, topic string) *EventProducer {
	return &EventProducer{
		writer: p.Writer,
		topic:  topic,
	}
}

func (ep *EventProducer) SendEvents(ctx context.Context, events []*entity.JobEvent) error {
	msgsToSend := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("EventProducer - SendEvents - json.Marshal: %w", err)
		}

		msgsToSend = append(msgsToSend, kafka.Message{
			Topic: ep.topic,
			Key:   []byte(event.JobID),
			Value: value,
			Time:  event.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(event.ID.String())},
				{Key: "event_type", Value: []byte(event.Type)},
			},
		})
	}

	if len(msgsToSend) == 0 {
		return nil
	}

	err := ep.writer.WriteMessages(ctx, msgsToSend...)
	if err != nil {
		return fmt.Errorf("EventProducer - SendEvents - ep.writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.writer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}
