package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"ordersync/internal/entities"
	"ordersync/internal/identity"
)

type ActivityRepo interface {
	InsertActivity(ctx context.Context, a entities.ActivityRecord) error
}

// ActivityLogger пишет глобальный журнал действий. Fire-and-forget:
// отказ записи журнала логируется, но не блокирует и не откатывает
// основную мутацию. Офлайн-путь тот же, что у заказов: запись встаёт
// в очередь и учитывается в счётчике неподтверждённых мутаций.
type ActivityLogger struct {
	logger  *slog.Logger
	repo    ActivityRepo
	queue   Queue
	network Network
	clock   Clock
}

func NewActivityLogger(logger *slog.Logger, repo ActivityRepo, queue Queue, network Network, clock Clock) *ActivityLogger {
	return &ActivityLogger{
		logger:  logger.With(slog.String("service", "activity")),
		repo:    repo,
		queue:   queue,
		network: network,
		clock:   clock,
	}
}

// Log добавляет запись журнала. Имя пользователя фиксируется сейчас,
// а не разрешается при чтении: история не меняется вместе с профилем.
func (l *ActivityLogger) Log(ctx context.Context, action, entityType, entityID, details string) {
	user, _ := identity.UserFromContext(ctx)

	rec := entities.ActivityRecord{
		At:         l.clock.Now(),
		User:       user.DisplayName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}

	// В офлайне удалённую вставку даже не пробуем: каждая мутация
	// упиралась бы в таймаут соединения.
	if l.network != nil && !l.network.Online() {
		l.enqueue(rec, action, entityID)
		return
	}

	err := l.repo.InsertActivity(ctx, rec)
	if err == nil {
		return
	}

	if entities.IsConnectivity(err) && l.queue != nil {
		if l.network != nil {
			l.network.SetOnline(false)
		}
		l.enqueue(rec, action, entityID)
		return
	}

	l.logger.Error("failed to write activity record",
		slog.String("action", action),
		slog.String("entity_id", entityID),
		slog.Any("error", err),
	)
}

func (l *ActivityLogger) enqueue(rec entities.ActivityRecord, action, entityID string) {
	if l.queue == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		l.logger.Error("failed to marshal activity record",
			slog.String("action", action),
			slog.String("entity_id", entityID),
			slog.Any("error", err),
		)
		return
	}
	l.queue.Enqueue(entities.PendingWrite{
		Collection: CollectionActivity,
		Op:         entities.WriteInsert,
		Payload:    payload,
	})
}
