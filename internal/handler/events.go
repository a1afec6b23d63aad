package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ordersync/internal/config"
	"ordersync/internal/entities"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

// ChangeEvent — событие фида изменений удалённого хранилища.
// Слой применяет его к локальному кешу, чтобы другие устройства
// видели чужие мутации без полного Reconcile.
type ChangeEvent struct {
	Collection string          `json:"collection" validate:"required"`
	Op         string          `json:"op" validate:"required,oneof=insert update delete"`
	ID         string          `json:"id" validate:"required"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type CachePatcher interface {
	Patch(collection, id string, payload json.RawMessage) error
	Remove(collection, id string) error
}

type eventsHandler struct {
	dlq      *kafka.Writer
	reader   *kafka.Reader
	logger   *slog.Logger
	validate *validator.Validate
	cache    CachePatcher
}

func NewEventsHandler(logger *slog.Logger, cfg config.Kafka, cache CachePatcher) *eventsHandler {
	return &eventsHandler{
		logger: logger.With(slog.String("handler", "events")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		validate: validator.New(),
		cache:    cache,
	}
}

func (h *eventsHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			} else {
				h.logger.Error("failed to fetch message", slog.Any("error", err))
				continue
			}
		}

		if err := h.handleChange(m); err != nil {
			h.logger.Error("failed to handle change event", slog.Any("error", err))

			// В библиотеке уже есть retry
			if err := h.WriteToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *eventsHandler) handleChange(m kafka.Message) error {
	var event ChangeEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal change event: %w", err)
	}

	if err := h.validate.Struct(event); err != nil {
		return fmt.Errorf("invalid change event: %w", err)
	}

	if event.Op == string(entities.WriteDelete) {
		return h.cache.Remove(event.Collection, event.ID)
	}
	if len(event.Payload) == 0 {
		return fmt.Errorf("change event %s/%s has no payload", event.Collection, event.ID)
	}
	return h.cache.Patch(event.Collection, event.ID, event.Payload)
}

func (h *eventsHandler) WriteToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *eventsHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
