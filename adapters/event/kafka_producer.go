package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/config"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/logger"
)

const (
	TopicVideoEvents = "video.events"
)

type KafkaProducerClient struct {
	VideoEventsWriter *kafka.Writer
	logger            logger.Logger
}

// DeliveryHook is told the broker outcome of every written event.
type DeliveryHook func(eventType string, err error)

// NewKafkaProducerClient builds an async writer. WriteMessages returns as soon as
// the message is buffered; delivery outcomes are reported to onDelivery.
func NewKafkaProducerClient(cfg config.Config, log logger.Logger, onDelivery DeliveryHook) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	c := &KafkaProducerClient{logger: log}
	c.VideoEventsWriter = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicVideoEvents,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			reportDelivery(messages, err, onDelivery, log)
		},
	}

	log.Info("Initialize Kafka Producer successfully.", zap.Strings("brokers", brokers))
	return c, nil
}

func reportDelivery(messages []kafka.Message, err error, onDelivery DeliveryHook, log logger.Logger) {
	for _, m := range messages {
		if onDelivery != nil {
			onDelivery(eventTypeHeader(m), err)
		}
		if err != nil {
			log.Error("Failed to deliver video event", err,
				zap.String("topic", m.Topic),
				zap.String("key", string(m.Key)))
		}
	}
}

func eventTypeHeader(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return "unknown"
}

func (c *KafkaProducerClient) PublishVideoEvent(ctx context.Context, evt video.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal video event failed: %w", err)
	}

	err = c.VideoEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.VideoID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("write video event to kafka failed: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.VideoEventsWriter != nil {
		if err := c.VideoEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producer")
}

// DecodeVideoEvent parses a message value produced by PublishVideoEvent.
func DecodeVideoEvent(msg kafka.Message) (video.Event, error) {
	var evt video.Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return evt, fmt.Errorf("unmarshal video event failed: %w", err)
	}
	if evt.EventType == "" || evt.VideoID == "" {
		return evt, fmt.Errorf("video event is missing type or id")
	}
	return evt, nil
}
