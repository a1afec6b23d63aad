package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"ordersync/internal/config"
	"ordersync/internal/entities"

	"github.com/segmentio/kafka-go"
)

// DeadLetterWriter публикует отложенные записи, исчерпавшие бюджет
// ретраев. Топик тот же, что у DLQ фида изменений.
type DeadLetterWriter struct {
	writer *kafka.Writer
	topic  string
}

func NewDeadLetterWriter(cfg config.Kafka) *DeadLetterWriter {
	return &DeadLetterWriter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		topic: fmt.Sprintf("%s-dlq", cfg.Topic),
	}
}

func (d *DeadLetterWriter) Publish(ctx context.Context, w entities.PendingWrite) error {
	value, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal dead write: %w", err)
	}
	return d.writer.WriteMessages(ctx, kafka.Message{
		Topic: d.topic,
		Key:   []byte(w.ID),
		Value: value,
	})
}

func (d *DeadLetterWriter) Close() error {
	return d.writer.Close()
}
