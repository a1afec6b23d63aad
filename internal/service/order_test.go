package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	stdsync "sync"
	"testing"
	"time"

	"ordersync/internal/entities"
	"ordersync/internal/identity"
	"ordersync/internal/service"
	syncpkg "ordersync/internal/sync"
	"ordersync/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// Сервис заказов напрямую служит источником данных для пагинатора.
var _ syncpkg.Fetcher = (*service.OrderService)(nil)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// fakeRepo — удалённое хранилище в памяти. Поле fail имитирует
// недоступность сети: все вызовы отвечают этой ошибкой.
type fakeRepo struct {
	mu            stdsync.Mutex
	fail          error
	orders        map[string]entities.Order
	history       []entities.HistoryEntry
	payments      []entities.Payment
	activity      []entities.ActivityRecord
	activityCalls int
	nextID        int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]entities.Order), nextID: 1}
}

func (r *fakeRepo) failWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *fakeRepo) GetOrderByID(_ context.Context, orderID string) (entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return entities.Order{}, r.fail
	}
	o, ok := r.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeRepo) PageOrders(_ context.Context, offset, limit uint64) ([]entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	all := make([]entities.Order, 0, len(r.orders))
	for _, o := range r.orders {
		all = append(all, o)
	}
	if offset >= uint64(len(all)) {
		return nil, nil
	}
	end := offset + limit
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[offset:end], nil
}

func (r *fakeRepo) SearchOrders(_ context.Context, term string) ([]entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return nil, nil
}

func (r *fakeRepo) InsertOrder(_ context.Context, o entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeRepo) UpdateOrder(_ context.Context, o entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.orders[o.ID]; !ok {
		return entities.ErrOrderNotFound
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeRepo) DeleteOrder(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.orders[orderID]; !ok {
		return entities.ErrOrderNotFound
	}
	delete(r.orders, orderID)
	return nil
}

func (r *fakeRepo) NextLocalID(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return "", r.fail
	}
	id := r.nextID
	r.nextID++
	return strconv.FormatInt(id, 10), nil
}

func (r *fakeRepo) InsertHistory(_ context.Context, h entities.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.history = append(r.history, h)
	return nil
}

func (r *fakeRepo) HistoryByOrder(_ context.Context, orderID string) ([]entities.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var out []entities.HistoryEntry
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeRepo) InsertPayment(_ context.Context, p entities.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakeRepo) PaymentsByOrder(_ context.Context, orderID string) ([]entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var out []entities.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) InsertActivity(_ context.Context, a entities.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activityCalls++
	if r.fail != nil {
		return r.fail
	}
	r.activity = append(r.activity, a)
	return nil
}

func (r *fakeRepo) historyCount(orderID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.history {
		if h.OrderID == orderID {
			n++
		}
	}
	return n
}

type fakeCache struct {
	mu   stdsync.Mutex
	data map[string]json.RawMessage
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]json.RawMessage)}
}

func (c *fakeCache) Load(collection string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[collection]
	return raw, ok
}

func (c *fakeCache) Save(collection string, data json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[collection] = data
	return nil
}

func (c *fakeCache) Patch(collection, id string, payload json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var rows []json.RawMessage
	if raw, ok := c.data[collection]; ok {
		_ = json.Unmarshal(raw, &rows)
	}
	replaced := false
	for i, row := range rows {
		var probe struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(row, &probe) == nil && probe.ID == id {
			rows[i] = payload
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, payload)
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	c.data[collection] = raw
	return nil
}

func (c *fakeCache) Remove(collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var rows []json.RawMessage
	if raw, ok := c.data[collection]; ok {
		_ = json.Unmarshal(raw, &rows)
	}
	kept := rows[:0]
	for _, row := range rows {
		var probe struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(row, &probe) == nil && probe.ID == id {
			continue
		}
		kept = append(kept, row)
	}
	raw, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	c.data[collection] = raw
	return nil
}

type fakeQueue struct {
	mu    stdsync.Mutex
	items []entities.PendingWrite
}

func (q *fakeQueue) Enqueue(w entities.PendingWrite) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, w)
}

func (q *fakeQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *fakeQueue) collections() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.items))
	for _, w := range q.items {
		out = append(out, w.Collection)
	}
	return out
}

type fakeNetwork struct {
	mu     stdsync.Mutex
	online bool
}

func (n *fakeNetwork) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

func (n *fakeNetwork) SetOnline(online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.online = online
}

type fakeIdentity struct{ credential string }

func (i *fakeIdentity) VerifyCredential(_ context.Context, _, credential string) error {
	if credential == "" {
		return entities.ErrReauthRequired
	}
	if credential != i.credential {
		return entities.WithKind(entities.KindAuthorization, entities.ErrInvalidCredential)
	}
	return nil
}

// passTxManager выполняет callback без транзакции: атомарность
// проверяется не здесь.
type passTxManager struct{}

func (passTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}

type fixture struct {
	svc     *service.OrderService
	repo    *fakeRepo
	cache   *fakeCache
	queue   *fakeQueue
	network *fakeNetwork
	clock   *fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepo()
	cache := newFakeCache()
	queue := &fakeQueue{}
	network := &fakeNetwork{online: true}
	clock := &fixedClock{now: testNow}

	svc := service.NewOrderService(logger, service.Deps{
		TxManager: passTxManager{},
		Repo:      repo,
		Cache:     cache,
		Queue:     queue,
		Network:   network,
		Identity:  &fakeIdentity{credential: "correct horse"},
		Splitter:  service.NewProportionalSplitter(),
		Activity:  service.NewActivityLogger(logger, repo, queue, network, clock),
		Clock:     clock,
	})
	return &fixture{svc: svc, repo: repo, cache: cache, queue: queue, network: network, clock: clock}
}

func userCtx() context.Context {
	return identity.WithUser(context.Background(), identity.User{ID: "u1", DisplayName: "Anna"})
}

func connectivity() error {
	return entities.WithKind(entities.KindConnectivity, errors.New("dial tcp: connection refused"))
}

func (f *fixture) mustCreate(t *testing.T, order entities.Order) entities.Order {
	t.Helper()
	created, err := f.svc.Create(userCtx(), order)
	require.NoError(t, err)
	return created
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	created := f.mustCreate(t, entities.Order{
		ClientID: "client-1",
		Price:    1000,
		Quantity: 2,
	})

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, entities.StatusNew, created.Status)
	assert.Equal(t, testNow, created.CreatedAt)
	// Каждая мутация добавляет ровно одну запись истории.
	assert.Equal(t, 1, f.repo.historyCount(created.ID))
	assert.Equal(t, "Order created", f.repo.history[0].Activity)
	assert.Equal(t, "Anna", f.repo.history[0].User)
}

func TestAdvance(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	order, err := f.svc.Advance(userCtx(), created.ID, entities.StatusOrdered, service.StatusFields{
		TrackingNumber: "TRK-100",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOrdered, order.Status)
	assert.Equal(t, "TRK-100", order.TrackingNumber)

	order, err = f.svc.Advance(userCtx(), created.ID, entities.StatusArrivedAtOffice, service.StatusFields{
		Weight:       1.25,
		ShippingCost: 50,
	})
	require.NoError(t, err)
	require.NotNil(t, order.ArrivedAt)
	assert.Equal(t, testNow, *order.ArrivedAt)
	assert.Equal(t, 1.25, order.Weight)

	// create + два перехода = три записи истории.
	assert.Equal(t, 3, f.repo.historyCount(created.ID))
	assert.Equal(t, "Status changed to ARRIVED_AT_OFFICE", f.repo.history[2].Activity)
}

func TestAdvance_UnknownStatusRejected(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	_, err := f.svc.Advance(userCtx(), created.ID, "TELEPORTED", service.StatusFields{})
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)
	assert.Equal(t, 1, f.repo.historyCount(created.ID))
}

func TestRevert(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	_, err := f.svc.Advance(userCtx(), created.ID, entities.StatusStored, service.StatusFields{})
	require.NoError(t, err)

	order, err := f.svc.Revert(userCtx(), created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusArrivedAtOffice, order.Status)
	assert.Equal(t, "Status reverted to ARRIVED_AT_OFFICE", f.repo.history[len(f.repo.history)-1].Activity)
}

func TestRevert_NoPriorState(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	_, err := f.svc.Revert(userCtx(), created.ID, "")
	assert.ErrorIs(t, err, entities.ErrNoPriorState)
}

func TestRevert_FromCompletedRequiresCredential(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})
	_, err := f.svc.Advance(userCtx(), created.ID, entities.StatusCompleted, service.StatusFields{})
	require.NoError(t, err)

	_, err = f.svc.Revert(userCtx(), created.ID, "")
	assert.ErrorIs(t, err, entities.ErrReauthRequired)

	_, err = f.svc.Revert(userCtx(), created.ID, "wrong")
	assert.ErrorIs(t, err, entities.ErrInvalidCredential)

	// Неудачные попытки не меняют состояние.
	order, err := f.svc.GetOrderByID(userCtx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, order.Status)

	order, err = f.svc.Revert(userCtx(), created.ID, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOutForDelivery, order.Status)
}

func TestRegisterPayment(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 1000, Quantity: 1, ShippingCost: 50})

	order, err := f.svc.RegisterPayment(userCtx(), created.ID, 300, "cash", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 300.0, order.AmountPaid)

	// price 1000 + shipping 50 - paid 300 = 750.
	assert.Equal(t, 750.0, order.Balance())
	assert.Equal(t, int64(750), order.Summary().Balance)

	order, err = f.svc.RegisterPayment(userCtx(), created.ID, 200, "transfer", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, order.AmountPaid)
	assert.Equal(t, 5.0, order.TransactionFee)

	// Сумма леджера равна amount_paid заказа.
	payments, err := f.svc.Payments(userCtx(), created.ID)
	require.NoError(t, err)
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	assert.Equal(t, order.AmountPaid, total)
}

func TestRegisterPayment_RejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 1000, Quantity: 1})

	for _, amount := range []float64{0, -10} {
		_, err := f.svc.RegisterPayment(userCtx(), created.ID, amount, "cash", 0, 0)
		require.Error(t, err)
		assert.Equal(t, entities.KindValidation, entities.KindOf(err))
	}
	assert.Equal(t, 1, f.repo.historyCount(created.ID))
}

func TestSplit(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 900, Quantity: 3})

	parts, err := f.svc.Split(userCtx(), created.ID, []entities.SplitAllocation{
		{Quantity: 1, Price: 300},
		{Quantity: 2, Price: 600},
	})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	// Первая доля остаётся под исходным id.
	assert.Equal(t, created.ID, parts[0].ID)
	assert.NotEqual(t, created.ID, parts[1].ID)

	var qty int
	var price float64
	for _, p := range parts {
		qty += p.Quantity
		price += p.Price
	}
	assert.Equal(t, created.Quantity, qty)
	assert.Equal(t, created.Price, price)
}

func TestSplit_ImbalanceRejected(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 900, Quantity: 3})

	_, err := f.svc.Split(userCtx(), created.ID, []entities.SplitAllocation{
		{Quantity: 1, Price: 300},
		{Quantity: 1, Price: 300},
	})
	assert.ErrorIs(t, err, entities.ErrSplitImbalance)

	_, err = f.svc.Split(userCtx(), created.ID, []entities.SplitAllocation{
		{Quantity: 3, Price: 900},
	})
	require.Error(t, err)
	assert.Equal(t, entities.KindValidation, entities.KindOf(err))
}

func TestAttachImage(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 100, Quantity: 1})

	order, err := f.svc.AttachImage(userCtx(), created.ID, entities.ImagesProduct, "img-1.jpg")
	require.NoError(t, err)
	order, err = f.svc.AttachImage(userCtx(), order.ID, entities.ImagesProduct, "img-2.jpg")
	require.NoError(t, err)

	// Только добавление в конец, порядок сохраняется.
	assert.Equal(t, []string{"img-1.jpg", "img-2.jpg"}, order.Images[entities.ImagesProduct])

	_, err = f.svc.AttachImage(userCtx(), order.ID, "selfie", "img-3.jpg")
	require.Error(t, err)
	assert.Equal(t, entities.KindValidation, entities.KindOf(err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 100, Quantity: 1})

	err := f.svc.Delete(userCtx(), created.ID, "")
	assert.ErrorIs(t, err, entities.ErrReauthRequired)

	err = f.svc.Delete(userCtx(), created.ID, "correct horse")
	require.NoError(t, err)

	_, err = f.svc.GetOrderByID(userCtx(), created.ID)
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)
}

func TestOfflineCommitQueuesAndPatchesCache(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	f.network.SetOnline(false)

	order, err := f.svc.Advance(userCtx(), created.ID, entities.StatusOrdered, service.StatusFields{})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOrdered, order.Status)

	// Запись заказа, запись истории и запись журнала действий
	// встали в очередь.
	assert.Equal(t, 3, f.queue.PendingCount())

	// Оптимистичное обновление видно при чтении из кеша.
	cached, err := f.svc.GetOrderByID(userCtx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOrdered, cached.Status)

	// Удалённое хранилище мутацию не видело.
	remote, err := f.repo.GetOrderByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusNew, remote.Status)
}

func TestConnectivityFailureFlipsOffline(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	f.repo.failWith(connectivity())

	order, err := f.svc.Advance(userCtx(), created.ID, entities.StatusOrdered, service.StatusFields{})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOrdered, order.Status)

	// Ошибка сети посреди мутации переводит слой в офлайн,
	// мутация уходит в очередь, не к вызывающему. В очереди три
	// записи: заказ, история и журнал действий.
	assert.False(t, f.network.Online())
	assert.ElementsMatch(t, []string{
		service.CollectionOrders,
		service.CollectionHistory,
		service.CollectionActivity,
	}, f.queue.collections())
}

// Журнал действий не должен дёргать удалённое хранилище, пока слой
// в офлайне: запись сразу встаёт в очередь.
func TestActivityLogger_OfflineSkipsRemote(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepo()
	queue := &fakeQueue{}
	network := &fakeNetwork{online: false}
	clock := &fixedClock{now: testNow}

	activity := service.NewActivityLogger(logger, repo, queue, network, clock)
	activity.Log(userCtx(), "create", "order", "o-1", "")

	assert.Equal(t, 0, repo.activityCalls)
	assert.Equal(t, []string{service.CollectionActivity}, queue.collections())
}

func TestOfflineMutationsDrainToRemote(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepo()
	cache := newFakeCache()
	network := &fakeNetwork{online: true}
	clock := &fixedClock{now: testNow}

	queue := syncpkg.NewQueue(logger, cache, 3, utils.RetryConfig{
		InitialDelay: time.Millisecond,
		Multiplier:   2,
	})

	svc := service.NewOrderService(logger, service.Deps{
		TxManager: passTxManager{},
		Repo:      repo,
		Cache:     cache,
		Queue:     queue,
		Network:   network,
		Identity:  &fakeIdentity{credential: "correct horse"},
		Splitter:  service.NewProportionalSplitter(),
		Activity:  service.NewActivityLogger(logger, repo, queue, network, clock),
		Clock:     clock,
	})
	queue.SetApplier(svc)

	created, err := svc.Create(userCtx(), entities.Order{Price: 500, Quantity: 1})
	require.NoError(t, err)

	network.SetOnline(false)
	_, err = svc.Advance(userCtx(), created.ID, entities.StatusOrdered, service.StatusFields{})
	require.NoError(t, err)
	require.Equal(t, 3, queue.PendingCount())

	// Сеть вернулась: очередь разобрана, мутация дошла до хранилища.
	network.SetOnline(true)
	require.NoError(t, queue.Drain(context.Background()))
	assert.Equal(t, 0, queue.PendingCount())

	remote, err := repo.GetOrderByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOrdered, remote.Status)
	assert.Equal(t, 2, repo.historyCount(created.ID))
	// Запись журнала действий за офлайн-мутацию тоже дошла.
	assert.Len(t, repo.activity, 2)
}

func TestValidationFailureIsNotQueued(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	_, err := f.svc.Advance(userCtx(), created.ID, "BROKEN", service.StatusFields{})
	require.Error(t, err)
	assert.Equal(t, 0, f.queue.PendingCount())
	assert.True(t, f.network.Online())
}

func TestPageOrders_OfflineServesCachedSnapshot(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, entities.Order{Price: 500, Quantity: 1})

	// Успешная первая страница кешируется как снапшот.
	_, err := f.svc.PageOrders(userCtx(), 0, 10)
	require.NoError(t, err)

	f.network.SetOnline(false)
	page, err := f.svc.PageOrders(userCtx(), 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, created.ID, page[0].ID)
}

func TestFilter(t *testing.T) {
	f := newFixture(t)

	paid := f.mustCreate(t, entities.Order{Price: 100, Quantity: 1})
	_, err := f.svc.RegisterPayment(userCtx(), paid.ID, 100, "cash", 0, 0)
	require.NoError(t, err)

	unpaid := f.mustCreate(t, entities.Order{Price: 200, Quantity: 1})

	stale := f.mustCreate(t, entities.Order{Price: 300, Quantity: 1})
	_, err = f.svc.RegisterPayment(userCtx(), stale.ID, 300, "cash", 0, 0)
	require.NoError(t, err)

	// Снапшот в кеш, по нему считаются предикаты.
	_, err = f.svc.PageOrders(userCtx(), 0, 100)
	require.NoError(t, err)

	result, err := f.svc.Filter(userCtx(), "unpaid")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, unpaid.ID, result[0].ID)

	// Просроченность считается от текущих значений полей.
	f.clock.now = testNow.Add(15 * 24 * time.Hour)
	result, err = f.svc.Filter(userCtx(), "late")
	require.NoError(t, err)
	assert.Len(t, result, 3)

	_, err = f.svc.Filter(userCtx(), "bogus")
	require.Error(t, err)
	assert.Equal(t, entities.KindValidation, entities.KindOf(err))
}

func TestApply_DispatchesByCollection(t *testing.T) {
	f := newFixture(t)

	order := entities.Order{ID: "o-1", Price: 10, Quantity: 1, Status: entities.StatusNew}
	payload, err := json.Marshal(order)
	require.NoError(t, err)

	err = f.svc.Apply(context.Background(), entities.PendingWrite{
		Collection: service.CollectionOrders,
		TargetID:   order.ID,
		Op:         entities.WriteInsert,
		Payload:    payload,
	})
	require.NoError(t, err)

	stored, err := f.repo.GetOrderByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, order.Price, stored.Price)

	err = f.svc.Apply(context.Background(), entities.PendingWrite{
		Collection: "Unknown",
		Payload:    json.RawMessage(`{}`),
	})
	require.Error(t, err)
	assert.Equal(t, entities.KindValidation, entities.KindOf(err))
}
