package sync

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Monitor следит за доступностью удалённого хранилища.
// Переход offline→online запускает разбор очереди.
type Monitor struct {
	logger   *slog.Logger
	client   *resty.Client
	probeURL string
	interval time.Duration

	mu       sync.Mutex
	online   bool
	onOnline []func()
}

func NewMonitor(logger *slog.Logger, probeURL string, interval, timeout time.Duration) *Monitor {
	return &Monitor{
		logger:   logger.With(slog.String("service", "network_monitor")),
		client:   resty.New().SetTimeout(timeout),
		probeURL: probeURL,
		interval: interval,
	}
}

// OnOnline регистрирует обработчик перехода offline→online.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline фиксирует состояние сети. Обработчики вызываются
// только на переходе offline→online.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	was := m.online
	m.online = online
	var handlers []func()
	if online && !was {
		handlers = make([]func(), len(m.onOnline))
		copy(handlers, m.onOnline)
	}
	m.mu.Unlock()

	if online {
		networkOnline.Set(1)
	} else {
		networkOnline.Set(0)
	}
	if online != was {
		m.logger.Info("connectivity changed", slog.Bool("online", online))
	}
	for _, fn := range handlers {
		fn()
	}
}

// Start запускает периодический probe. Реализует интерфейс Starter приложения.
func (m *Monitor) Start(ctx context.Context) error {
	m.SetOnline(m.probe(ctx))

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.SetOnline(m.probe(ctx))
			}
		}
	}()
	return nil
}

func (m *Monitor) probe(ctx context.Context) bool {
	resp, err := m.client.R().SetContext(ctx).Get(m.probeURL)
	if err != nil {
		return false
	}
	return resp.StatusCode() < http.StatusInternalServerError
}
