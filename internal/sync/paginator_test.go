package sync_test

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"ordersync/internal/entities"
	syncpkg "ordersync/internal/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu       stdsync.Mutex
	orders   []entities.Order
	searched []string
	delay    map[string]time.Duration
}

func newFakeFetcher(total int) *fakeFetcher {
	f := &fakeFetcher{delay: make(map[string]time.Duration)}
	for i := 0; i < total; i++ {
		f.orders = append(f.orders, entities.Order{
			ID:      fmt.Sprintf("order-%03d", i),
			LocalID: fmt.Sprintf("%d", 1000+i),
		})
	}
	return f
}

func (f *fakeFetcher) PageOrders(_ context.Context, offset, limit uint64) ([]entities.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= uint64(len(f.orders)) {
		return nil, nil
	}
	end := offset + limit
	if end > uint64(len(f.orders)) {
		end = uint64(len(f.orders))
	}
	page := make([]entities.Order, end-offset)
	copy(page, f.orders[offset:end])
	return page, nil
}

func (f *fakeFetcher) SearchOrders(_ context.Context, term string) ([]entities.Order, error) {
	f.mu.Lock()
	delay := f.delay[term]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, term)
	return []entities.Order{{ID: "found-" + term}}, nil
}

func (f *fakeFetcher) searchedTerms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.searched))
	copy(out, f.searched)
	return out
}

func TestPaginator_LoadMore(t *testing.T) {
	fetcher := newFakeFetcher(25)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, time.Millisecond)

	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Visible(), 10)
	assert.True(t, p.HasMore())

	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Visible(), 20)

	// Последняя страница короткая, дальше грузить нечего.
	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Visible(), 25)
	assert.False(t, p.HasMore())
}

func TestPaginator_NoDuplicates(t *testing.T) {
	fetcher := newFakeFetcher(12)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, time.Millisecond)

	require.NoError(t, p.LoadMore(context.Background()))

	// Запись, добавленная в начало коллекции, сдвигает offset-окна:
	// вторая страница перекрывается с первой.
	fetcher.mu.Lock()
	fetcher.orders = append([]entities.Order{{ID: "order-new"}}, fetcher.orders...)
	fetcher.mu.Unlock()

	require.NoError(t, p.LoadMore(context.Background()))

	seen := make(map[string]int)
	for _, o := range p.Visible() {
		seen[o.ID]++
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "order %s returned more than once", id)
	}
}

func TestPaginator_DebounceCollapsesKeystrokes(t *testing.T) {
	fetcher := newFakeFetcher(5)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, 30*time.Millisecond)

	ctx := context.Background()
	p.Search(ctx, "a")
	time.Sleep(5 * time.Millisecond)
	p.Search(ctx, "ab")
	time.Sleep(5 * time.Millisecond)
	p.Search(ctx, "abc")

	time.Sleep(100 * time.Millisecond)

	// Три нажатия внутри окна тишины дают ровно один запрос,
	// для последнего введённого терма.
	assert.Equal(t, []string{"abc"}, fetcher.searchedTerms())

	visible := p.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "found-abc", visible[0].ID)
}

func TestPaginator_StaleResponseDiscarded(t *testing.T) {
	fetcher := newFakeFetcher(5)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, time.Millisecond)

	// Ответ на первый запрос приходит позже второго: применяется
	// порядок выдачи запросов, а не порядок завершения.
	fetcher.mu.Lock()
	fetcher.delay["slow"] = 60 * time.Millisecond
	fetcher.mu.Unlock()

	ctx := context.Background()
	p.Search(ctx, "slow")
	time.Sleep(10 * time.Millisecond)
	p.Search(ctx, "fast")

	time.Sleep(120 * time.Millisecond)

	visible := p.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "found-fast", visible[0].ID)
}

func TestPaginator_ClearingTermRestoresPages(t *testing.T) {
	fetcher := newFakeFetcher(8)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, time.Millisecond)

	ctx := context.Background()
	require.NoError(t, p.LoadMore(ctx))
	require.Len(t, p.Visible(), 8)

	p.Search(ctx, "abc")
	time.Sleep(30 * time.Millisecond)
	require.Len(t, p.Visible(), 1)

	// Очистка строки поиска возвращает накопленные страницы как были.
	p.Search(ctx, "")
	assert.Len(t, p.Visible(), 8)
}

func TestPaginator_EmptyTermNeverQueries(t *testing.T) {
	fetcher := newFakeFetcher(3)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, time.Millisecond)

	p.Search(context.Background(), "")
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, fetcher.searchedTerms())
}

func TestPaginator_Reset(t *testing.T) {
	fetcher := newFakeFetcher(5)
	p := syncpkg.NewPaginator(testLogger(), fetcher, 10, time.Millisecond)

	require.NoError(t, p.LoadMore(context.Background()))
	require.Len(t, p.Visible(), 5)

	p.Reset()
	assert.Empty(t, p.Visible())
	assert.True(t, p.HasMore())

	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Visible(), 5)
}
