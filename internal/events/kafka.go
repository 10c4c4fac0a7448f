package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/kindled/match-engine/internal/config"
)

// kafkaPublisher delivers events to a single Kafka topic, keyed by event ID so
// retries land in the same partition.
type kafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Publisher backed by confluent-kafka-go.
func NewKafkaPublisher(cfg config.KafkaConfig) (Publisher, error) {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(cfg.Brokers, ","),
		"security.protocol": cfg.Protocol,
	}
	if cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", cfg.ClientID)
	}

	p, err := kafka.NewProducer(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaPublisher{producer: p, topic: cfg.EventsTopic}, nil
}

// Publish sends one event and waits for its delivery report.
func (p *kafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(ev.ID),
		Value:          payload,
		Timestamp:      time.Now(),
	}

	if err := p.producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("failed to enqueue event for topic %s: %w", p.topic, err)
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type on delivery channel: %T", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed for topic %s: %w", p.topic, m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for delivery report: %w", ctx.Err())
	}
}

// Close flushes outstanding messages before releasing the producer.
func (p *kafkaPublisher) Close() {
	if p.producer == nil {
		return
	}
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
