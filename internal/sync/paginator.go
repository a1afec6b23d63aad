package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"ordersync/internal/entities"
)

// Fetcher — серверная сторона постраничной выборки и поиска.
type Fetcher interface {
	PageOrders(ctx context.Context, offset, limit uint64) ([]entities.Order, error)
	SearchOrders(ctx context.Context, term string) ([]entities.Order, error)
}

// Paginator совмещает два режима выборки одной коллекции:
// постраничную подгрузку и серверный поиск. Пока строка поиска
// непуста, результат поиска замещает (не сливается с) накопленные
// страницы; очистка строки возвращает прежнее состояние списка.
//
// Paginator несёт состояние одного списка и создаётся на каждую
// клиентскую сессию (или каждое окно списка), не на процесс:
// встраивающий код держит его рядом с состоянием сессии и зовёт
// LoadMore/Search из её обработчиков. Fetcher реализует
// OrderService: PageOrders и SearchOrders подходят по сигнатуре.
type Paginator struct {
	logger   *slog.Logger
	fetcher  Fetcher
	pageSize uint64
	debounce time.Duration

	mu      stdsync.Mutex
	items   []entities.Order
	seen    map[string]struct{}
	hasMore bool

	term          string
	searchResults []entities.Order
	timer         *time.Timer
	searchSeq     uint64
}

func NewPaginator(logger *slog.Logger, fetcher Fetcher, pageSize uint64, debounce time.Duration) *Paginator {
	return &Paginator{
		logger:   logger.With(slog.String("service", "paginator")),
		fetcher:  fetcher,
		pageSize: pageSize,
		debounce: debounce,
		seen:     make(map[string]struct{}),
		hasMore:  true,
	}
}

// LoadMore подгружает следующую страницу. Уже известные id не
// добавляются повторно.
func (p *Paginator) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	offset := uint64(len(p.items))
	p.mu.Unlock()

	page, err := p.fetcher.PageOrders(ctx, offset, p.pageSize)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range page {
		if _, ok := p.seen[o.ID]; ok {
			continue
		}
		p.seen[o.ID] = struct{}{}
		p.items = append(p.items, o)
	}
	// Короткая страница означает конец коллекции.
	p.hasMore = uint64(len(page)) == p.pageSize
	return nil
}

func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Visible возвращает текущий видимый список: результаты поиска,
// пока он активен, иначе накопленные страницы.
func (p *Paginator) Visible() []entities.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.term != "" {
		out := make([]entities.Order, len(p.searchResults))
		copy(out, p.searchResults)
		return out
	}
	out := make([]entities.Order, len(p.items))
	copy(out, p.items)
	return out
}

// Search перезапускает окно тишины на каждом нажатии: запрос
// уходит один, для последнего введённого терма. Пустой терм
// отменяет поиск и возвращает постраничный режим как был.
func (p *Paginator) Search(ctx context.Context, term string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.term = term
	if term == "" {
		p.searchResults = nil
		return
	}

	p.searchSeq++
	seq := p.searchSeq
	p.timer = time.AfterFunc(p.debounce, func() {
		p.runSearch(ctx, term, seq)
	})
}

// runSearch выполняет отложенный запрос. Применяется только ответ
// самого последнего запроса: порядок определяется моментом выдачи,
// не моментом завершения.
func (p *Paginator) runSearch(ctx context.Context, term string, seq uint64) {
	p.mu.Lock()
	if seq != p.searchSeq {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	searchQueries.Inc()
	results, err := p.fetcher.SearchOrders(ctx, term)
	if err != nil {
		p.logger.Error("search failed", slog.String("term", term), slog.Any("error", err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq < p.searchSeq || p.term == "" {
		// Устаревший ответ отбрасывается, не сливается.
		return
	}
	p.searchResults = results
}

// Reset сбрасывает накопленные страницы, например после полного
// обновления коллекции из удалённого хранилища.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
	p.seen = make(map[string]struct{})
	p.hasMore = true
}
