package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ordersync/internal/entities"
	"ordersync/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PendingCollection — ключ кеша, под которым очередь переживает рестарт.
const PendingCollection = "PendingWrites"

// Applier доставляет отложенную запись в удалённое хранилище.
type Applier interface {
	Apply(ctx context.Context, w entities.PendingWrite) error
}

// DeadLetter публикует запись, исчерпавшую бюджет ретраев.
type DeadLetter interface {
	Publish(ctx context.Context, w entities.PendingWrite) error
}

type QueueCache interface {
	Load(collection string) (json.RawMessage, bool)
	Save(collection string, data json.RawMessage) error
}

// Queue — упорядоченная очередь неподтверждённых мутаций.
// FIFO строго внутри коллекции, коллекции разбираются параллельно.
type Queue struct {
	logger     *slog.Logger
	cache      QueueCache
	applier    Applier
	dlq        DeadLetter
	maxRetries int
	backoff    utils.RetryConfig

	mu       sync.Mutex
	items    []entities.PendingWrite
	dead     []entities.PendingWrite
	draining bool
}

func NewQueue(logger *slog.Logger, cache QueueCache, maxRetries int, backoff utils.RetryConfig) *Queue {
	q := &Queue{
		logger:     logger.With(slog.String("service", "pending_queue")),
		cache:      cache,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
	// Восстанавливаем очередь, пережившую рестарт процесса.
	if raw, ok := cache.Load(PendingCollection); ok {
		if err := json.Unmarshal(raw, &q.items); err != nil {
			q.logger.Error("failed to restore pending writes", slog.Any("error", err))
			q.items = nil
		}
	}
	for i := range q.items {
		q.items[i].State = entities.WritePending
	}
	pendingWrites.Set(float64(len(q.items)))
	return q
}

// SetApplier подключает получателя записей. Отдельный сеттер
// разрывает цикл очередь↔сервис при сборке приложения.
func (q *Queue) SetApplier(a Applier) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.applier = a
}

func (q *Queue) SetDeadLetter(d DeadLetter) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dlq = d
}

// Enqueue принимает мутацию, отклонённую сетью. Валидационные и
// авторизационные ошибки сюда не попадают — они отдаются вызывающему.
func (q *Queue) Enqueue(w entities.PendingWrite) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	w.State = entities.WritePending

	q.mu.Lock()
	q.items = append(q.items, w)
	q.persistLocked()
	q.mu.Unlock()

	writesEnqueued.Inc()
	pendingWrites.Set(float64(q.PendingCount()))
	q.logger.Debug("write enqueued",
		slog.String("collection", w.Collection),
		slog.String("op", string(w.Op)),
		slog.String("target_id", w.TargetID),
	)
}

// PendingCount — единственный видимый пользователю индикатор синхронизации.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dead возвращает записи, исчерпавшие ретраи. Они никогда не
// отбрасываются молча.
func (q *Queue) Dead() []entities.PendingWrite {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]entities.PendingWrite, len(q.dead))
	copy(out, q.dead)
	return out
}

// Drain разбирает очередь: каждая коллекция строго по порядку,
// коллекции между собой — параллельно.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	if q.draining || q.applier == nil {
		q.mu.Unlock()
		return nil
	}
	q.draining = true

	byCollection := make(map[string][]entities.PendingWrite)
	for _, w := range q.items {
		byCollection[w.Collection] = append(byCollection[w.Collection], w)
	}
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
		pendingWrites.Set(float64(q.PendingCount()))
	}()

	g, ctx := errgroup.WithContext(ctx)
	for collection, writes := range byCollection {
		collection, writes := collection, writes
		g.Go(func() error {
			return q.drainCollection(ctx, collection, writes)
		})
	}
	return g.Wait()
}

func (q *Queue) drainCollection(ctx context.Context, collection string, writes []entities.PendingWrite) error {
	for _, w := range writes {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			q.setState(w.ID, entities.WriteInFlight)
			err := q.applier.Apply(ctx, w)
			if err == nil {
				q.ack(w.ID)
				writesDrained.Inc()
				break
			}

			if !entities.IsConnectivity(err) {
				// Невалидная запись ретраями не лечится.
				q.logger.Error("queued write rejected",
					slog.String("collection", collection),
					slog.String("write_id", w.ID),
					slog.Any("error", err),
				)
				q.moveDead(ctx, w.ID)
				break
			}

			w.Retries++
			q.incRetries(w.ID)
			if w.Retries >= q.maxRetries {
				q.logger.Error("write exceeded retry budget",
					slog.String("collection", collection),
					slog.String("write_id", w.ID),
					slog.Int("retries", w.Retries),
				)
				q.moveDead(ctx, w.ID)
				break
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(utils.Backoff(q.backoff, w.Retries)):
			}
		}
	}
	return nil
}

func (q *Queue) setState(id string, state entities.WriteState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].State = state
			return
		}
	}
}

func (q *Queue) incRetries(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Retries++
			q.items[i].State = entities.WritePending
			return
		}
	}
}

// ack удаляет подтверждённую запись: после подтверждения она
// очереди больше не принадлежит.
func (q *Queue) ack(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(id)
	q.persistLocked()
}

func (q *Queue) moveDead(ctx context.Context, id string) {
	q.mu.Lock()
	var dead *entities.PendingWrite
	for i := range q.items {
		if q.items[i].ID == id {
			w := q.items[i]
			w.State = entities.WriteDead
			dead = &w
			break
		}
	}
	q.removeLocked(id)
	if dead != nil {
		q.dead = append(q.dead, *dead)
	}
	q.persistLocked()
	dlq := q.dlq
	q.mu.Unlock()

	deadWrites.Set(float64(len(q.Dead())))
	if dead != nil && dlq != nil {
		if err := dlq.Publish(ctx, *dead); err != nil {
			q.logger.Error("failed to publish dead write", slog.Any("error", err))
		}
	}
}

func (q *Queue) removeLocked(id string) {
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func (q *Queue) persistLocked() {
	raw, err := json.Marshal(q.items)
	if err != nil {
		q.logger.Error("failed to marshal pending writes", slog.Any("error", err))
		return
	}
	if err := q.cache.Save(PendingCollection, raw); err != nil {
		q.logger.Error("failed to persist pending writes", slog.Any("error", err))
	}
}
