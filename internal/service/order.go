package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"ordersync/internal/entities"
	"ordersync/internal/identity"
	"ordersync/pkg/trm"
	"ordersync/pkg/utils"

	"github.com/google/uuid"
)

// Имена коллекций удалённого хранилища. Под теми же ключами
// снапшоты лежат в локальном кеше.
const (
	CollectionOrders   = "Orders"
	CollectionPayments = "OrderPayments"
	CollectionHistory  = "OrderHistory"
	CollectionActivity = "GlobalActivityLog"
)

type OrderRepo interface {
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	PageOrders(ctx context.Context, offset, limit uint64) ([]entities.Order, error)
	SearchOrders(ctx context.Context, term string) ([]entities.Order, error)
	InsertOrder(ctx context.Context, o entities.Order) error
	UpdateOrder(ctx context.Context, o entities.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
	NextLocalID(ctx context.Context) (string, error)
	InsertHistory(ctx context.Context, h entities.HistoryEntry) error
	HistoryByOrder(ctx context.Context, orderID string) ([]entities.HistoryEntry, error)
	InsertPayment(ctx context.Context, p entities.Payment) error
	PaymentsByOrder(ctx context.Context, orderID string) ([]entities.Payment, error)
	InsertActivity(ctx context.Context, a entities.ActivityRecord) error
}

type Cache interface {
	Load(collection string) (json.RawMessage, bool)
	Save(collection string, data json.RawMessage) error
	Patch(collection, id string, payload json.RawMessage) error
	Remove(collection, id string) error
}

type Queue interface {
	Enqueue(w entities.PendingWrite)
	PendingCount() int
}

type Network interface {
	Online() bool
	SetOnline(online bool)
}

type Identity interface {
	VerifyCredential(ctx context.Context, userID, credential string) error
}

// Splitter — внешний коллаборатор, распределяющий заказ по долям.
// Сервис гарантирует только сохранение суммарных количества и цены.
type Splitter interface {
	Split(order entities.Order, allocations []entities.SplitAllocation) []entities.Order
}

// StatusFields — поля, сопровождающие конкретный целевой статус.
type StatusFields struct {
	TrackingNumber  string
	Weight          float64
	ShippingCost    float64
	StorageLocation string
}

type Deps struct {
	TxManager trm.Manager
	Repo      OrderRepo
	Cache     Cache
	Queue     Queue
	Network   Network
	Identity  Identity
	Splitter  Splitter
	Activity  *ActivityLogger
	Clock     Clock
}

type OrderService struct {
	logger   *slog.Logger
	txm      trm.Manager
	repo     OrderRepo
	cache    Cache
	queue    Queue
	network  Network
	identity Identity
	splitter Splitter
	activity *ActivityLogger
	clock    Clock
}

func NewOrderService(logger *slog.Logger, deps Deps) *OrderService {
	return &OrderService{
		logger:   logger.With(slog.String("service", "order")),
		txm:      deps.TxManager,
		repo:     deps.Repo,
		cache:    deps.Cache,
		queue:    deps.Queue,
		network:  deps.Network,
		identity: deps.Identity,
		splitter: deps.Splitter,
		activity: deps.Activity,
		clock:    deps.Clock,
	}
}

var retryCfg = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  3,
	Multiplier:   2,
}

// Create регистрирует новый заказ. Статус по умолчанию NEW.
func (s *OrderService) Create(ctx context.Context, order entities.Order) (entities.Order, error) {
	if order.Status == "" {
		order.Status = entities.StatusNew
	}
	if order.Status != entities.StatusNew && order.Status != entities.StatusOrdered {
		return entities.Order{}, entities.ErrInvalidTransition
	}

	order.ID = uuid.NewString()
	order.CreatedAt = s.clock.Now()

	localID, err := s.nextLocalID(ctx)
	if err != nil {
		return entities.Order{}, err
	}
	order.LocalID = localID

	history := s.historyEntry(ctx, order.ID, "Order created")

	err = s.commit(ctx,
		func(ctx context.Context) error {
			if err := s.repo.InsertOrder(ctx, order); err != nil {
				return err
			}
			return s.repo.InsertHistory(ctx, history)
		},
		[]entities.PendingWrite{
			pendingWrite(CollectionOrders, order.ID, entities.WriteInsert, order),
			pendingWrite(CollectionHistory, order.ID, entities.WriteInsert, history),
		},
		order,
	)
	if err != nil {
		return entities.Order{}, err
	}

	s.activity.Log(ctx, "create", "order", order.ID, "local id "+order.LocalID)
	return order, nil
}

// Advance переводит заказ в целевой статус. Достижимость целевого
// статуса из текущего проверяет вызывающая сторона; машина отвергает
// только значения вне перечисления.
func (s *OrderService) Advance(ctx context.Context, orderID string, target entities.OrderStatus, fields StatusFields) (entities.Order, error) {
	if !target.Valid() {
		return entities.Order{}, entities.ErrInvalidTransition
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	order.Status = target
	if fields.TrackingNumber != "" {
		order.TrackingNumber = fields.TrackingNumber
	}
	if fields.Weight > 0 {
		order.Weight = fields.Weight
	}
	if fields.ShippingCost > 0 {
		order.ShippingCost = fields.ShippingCost
	}
	if fields.StorageLocation != "" {
		order.StorageLocation = fields.StorageLocation
	}

	now := s.clock.Now()
	switch target {
	case entities.StatusArrivedAtOffice:
		order.ArrivedAt = &now
	case entities.StatusStored:
		order.StoredAt = &now
	case entities.StatusCompleted:
		order.WithdrawnAt = &now
	}

	history := s.historyEntry(ctx, order.ID, fmt.Sprintf("Status changed to %s", target))

	err = s.commit(ctx,
		func(ctx context.Context) error {
			if err := s.repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			return s.repo.InsertHistory(ctx, history)
		},
		[]entities.PendingWrite{
			pendingWrite(CollectionOrders, order.ID, entities.WriteUpdate, order),
			pendingWrite(CollectionHistory, order.ID, entities.WriteInsert, history),
		},
		order,
	)
	if err != nil {
		return entities.Order{}, err
	}

	s.activity.Log(ctx, "advance", "order", order.ID, string(target))
	return order, nil
}

// Revert возвращает заказ в предшествующий статус по фиксированной
// цепочке. Откат из COMPLETED требует повторной аутентификации:
// заказ может быть финансово закрыт.
func (s *OrderService) Revert(ctx context.Context, orderID, credential string) (entities.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	prev, ok := order.Status.Predecessor()
	if !ok {
		return entities.Order{}, entities.ErrNoPriorState
	}

	if order.Status == entities.StatusCompleted {
		user, _ := identity.UserFromContext(ctx)
		if err := s.identity.VerifyCredential(ctx, user.ID, credential); err != nil {
			return entities.Order{}, err
		}
	}

	order.Status = prev
	history := s.historyEntry(ctx, order.ID, fmt.Sprintf("Status reverted to %s", prev))

	err = s.commit(ctx,
		func(ctx context.Context) error {
			if err := s.repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			return s.repo.InsertHistory(ctx, history)
		},
		[]entities.PendingWrite{
			pendingWrite(CollectionOrders, order.ID, entities.WriteUpdate, order),
			pendingWrite(CollectionHistory, order.ID, entities.WriteInsert, history),
		},
		order,
	)
	if err != nil {
		return entities.Order{}, err
	}

	s.activity.Log(ctx, "revert", "order", order.ID, string(prev))
	return order, nil
}

// RegisterPayment вставляет неизменяемую запись леджера и увеличивает
// amount_paid и transaction_fee заказа. Поле amount_paid напрямую
// не редактируется и не убывает; при расхождении авторитетен леджер.
func (s *OrderService) RegisterPayment(ctx context.Context, orderID string, amount float64, method string, fee, deliveryCost float64) (entities.Order, error) {
	if amount <= 0 {
		return entities.Order{}, entities.WithKind(entities.KindValidation, fmt.Errorf("payment amount must be positive"))
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	user, _ := identity.UserFromContext(ctx)
	payment := entities.Payment{
		ID:           uuid.NewString(),
		OrderID:      order.ID,
		Amount:       amount,
		Method:       method,
		Fee:          fee,
		DeliveryCost: deliveryCost,
		CreatedBy:    user.DisplayName,
		CreatedAt:    s.clock.Now(),
	}

	order.AmountPaid += amount
	order.TransactionFee += fee
	if deliveryCost > 0 {
		order.LocalDeliveryCost = deliveryCost
	}

	history := s.historyEntry(ctx, order.ID,
		fmt.Sprintf("Payment registered: %s %s", formatAmount(amount), method))

	err = s.commit(ctx,
		func(ctx context.Context) error {
			if err := s.repo.InsertPayment(ctx, payment); err != nil {
				return err
			}
			if err := s.repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			return s.repo.InsertHistory(ctx, history)
		},
		[]entities.PendingWrite{
			pendingWrite(CollectionPayments, payment.ID, entities.WriteInsert, payment),
			pendingWrite(CollectionOrders, order.ID, entities.WriteUpdate, order),
			pendingWrite(CollectionHistory, order.ID, entities.WriteInsert, history),
		},
		order,
	)
	if err != nil {
		return entities.Order{}, err
	}

	s.activity.Log(ctx, "payment", "order", order.ID, formatAmount(amount)+" "+method)
	return order, nil
}

// Split распределяет заказ по долям. Само распределение делает внешний
// коллаборатор; здесь проверяется только сохранение суммарных
// количества и цены.
func (s *OrderService) Split(ctx context.Context, orderID string, allocations []entities.SplitAllocation) ([]entities.Order, error) {
	if len(allocations) < 2 {
		return nil, entities.WithKind(entities.KindValidation, fmt.Errorf("split requires at least two allocations"))
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var qty int
	var price float64
	for _, a := range allocations {
		qty += a.Quantity
		price += a.Price
	}
	if qty != order.Quantity || math.Abs(price-order.Price) > 1e-9 {
		return nil, entities.ErrSplitImbalance
	}

	parts := s.splitter.Split(order, allocations)

	var partQty int
	var partPrice float64
	for _, p := range parts {
		partQty += p.Quantity
		partPrice += p.Price
	}
	if partQty != order.Quantity || math.Abs(partPrice-order.Price) > 1e-9 {
		return nil, entities.ErrSplitImbalance
	}

	// Первая доля остаётся под исходным id, остальные — новые заказы.
	parts[0].ID = order.ID
	parts[0].LocalID = order.LocalID
	for i := 1; i < len(parts); i++ {
		parts[i].ID = uuid.NewString()
		localID, err := s.nextLocalID(ctx)
		if err != nil {
			return nil, err
		}
		parts[i].LocalID = localID
		parts[i].CreatedAt = s.clock.Now()
	}

	history := s.historyEntry(ctx, order.ID, fmt.Sprintf("Order split into %d parts", len(parts)))

	writes := []entities.PendingWrite{
		pendingWrite(CollectionOrders, parts[0].ID, entities.WriteUpdate, parts[0]),
	}
	for i := 1; i < len(parts); i++ {
		writes = append(writes, pendingWrite(CollectionOrders, parts[i].ID, entities.WriteInsert, parts[i]))
	}
	writes = append(writes, pendingWrite(CollectionHistory, order.ID, entities.WriteInsert, history))

	err = s.commit(ctx,
		func(ctx context.Context) error {
			if err := s.repo.UpdateOrder(ctx, parts[0]); err != nil {
				return err
			}
			for i := 1; i < len(parts); i++ {
				if err := s.repo.InsertOrder(ctx, parts[i]); err != nil {
					return err
				}
			}
			return s.repo.InsertHistory(ctx, history)
		},
		writes,
		parts...,
	)
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, "split", "order", order.ID, fmt.Sprintf("%d parts", len(parts)))
	return parts, nil
}

// AttachImage добавляет ссылку на изображение в конец группы.
// Последовательности только растут и не переупорядочиваются.
func (s *OrderService) AttachImage(ctx context.Context, orderID string, group entities.ImageGroup, ref string) (entities.Order, error) {
	if !group.Valid() || ref == "" {
		return entities.Order{}, entities.WithKind(entities.KindValidation, fmt.Errorf("invalid image attachment"))
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if order.Images == nil {
		order.Images = make(map[entities.ImageGroup][]string)
	}
	order.Images[group] = append(order.Images[group], ref)

	history := s.historyEntry(ctx, order.ID, fmt.Sprintf("Image attached (%s)", group))

	err = s.commit(ctx,
		func(ctx context.Context) error {
			if err := s.repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			return s.repo.InsertHistory(ctx, history)
		},
		[]entities.PendingWrite{
			pendingWrite(CollectionOrders, order.ID, entities.WriteUpdate, order),
			pendingWrite(CollectionHistory, order.ID, entities.WriteInsert, history),
		},
		order,
	)
	if err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

// Delete удаляет заказ безвозвратно и всегда требует повторной
// аутентификации. В офлайне операция недоступна: проверить пароль
// без удалённого хранилища нельзя.
func (s *OrderService) Delete(ctx context.Context, orderID, credential string) error {
	user, _ := identity.UserFromContext(ctx)
	if err := s.identity.VerifyCredential(ctx, user.ID, credential); err != nil {
		return err
	}

	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.cache.Remove(CollectionOrders, orderID); err != nil {
		s.logger.Error("failed to remove order from cache", slog.Any("error", err))
	}

	s.activity.Log(ctx, "delete", "order", orderID, "")
	return nil
}

// GetOrderByID читает заказ из локального кеша, при промахе — из
// удалённого хранилища с ретраями.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	if cached, ok := s.cachedOrders(); ok {
		for _, o := range cached {
			if o.ID == orderID {
				return o, nil
			}
		}
	}

	if !s.network.Online() {
		return entities.Order{}, entities.ErrOrderNotFound
	}

	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.repo.GetOrderByID(ctx, orderID)
		return err
	}
	if err := utils.Retry(retryCfg, fn, entities.ErrOrderNotFound); err != nil {
		return entities.Order{}, err
	}

	s.patchCache(order)
	return order, nil
}

// PageOrders — серверная страница для постраничной подгрузки.
// В офлайне страница нарезается из кешированного снапшота.
func (s *OrderService) PageOrders(ctx context.Context, offset, limit uint64) ([]entities.Order, error) {
	if !s.network.Online() {
		return s.cachedPage(offset, limit), nil
	}

	page, err := s.repo.PageOrders(ctx, offset, limit)
	if entities.IsConnectivity(err) {
		s.network.SetOnline(false)
		return s.cachedPage(offset, limit), nil
	}
	if err != nil {
		return nil, err
	}

	if offset == 0 {
		s.saveSnapshot(page)
	}
	return page, nil
}

// SearchOrders — серверный поиск; в офлайне деградирует до подстрочного
// поиска по кешированному снапшоту.
func (s *OrderService) SearchOrders(ctx context.Context, term string) ([]entities.Order, error) {
	if !s.network.Online() {
		return s.cachedSearch(term), nil
	}

	results, err := s.repo.SearchOrders(ctx, term)
	if entities.IsConnectivity(err) {
		s.network.SetOnline(false)
		return s.cachedSearch(term), nil
	}
	return results, err
}

func (s *OrderService) History(ctx context.Context, orderID string) ([]entities.HistoryEntry, error) {
	return s.repo.HistoryByOrder(ctx, orderID)
}

func (s *OrderService) Payments(ctx context.Context, orderID string) ([]entities.Payment, error) {
	return s.repo.PaymentsByOrder(ctx, orderID)
}

// Summary отдаёт числовые поля для внешнего сборщика сообщений.
// Текст сообщения собирается не здесь.
func (s *OrderService) Summary(ctx context.Context, orderID string) (entities.BalanceSummary, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.BalanceSummary{}, err
	}
	return order.Summary(), nil
}

const lateAfter = 14 * 24 * time.Hour

// Filter вычисляет именованный предикат над текущими значениями
// полей. Предикаты нигде не хранятся.
func (s *OrderService) Filter(ctx context.Context, name string) ([]entities.Order, error) {
	var pred func(entities.Order) bool
	now := s.clock.Now()

	switch name {
	case "late":
		pred = func(o entities.Order) bool {
			return o.Status != entities.StatusCompleted && now.Sub(o.CreatedAt) > lateAfter
		}
	case "needs_tracking":
		pred = func(o entities.Order) bool {
			return o.Status == entities.StatusOrdered && o.TrackingNumber == ""
		}
	case "in_storage":
		pred = func(o entities.Order) bool {
			return o.Status == entities.StatusStored
		}
	case "unpaid":
		pred = func(o entities.Order) bool {
			return o.Balance() > 0
		}
	default:
		return nil, entities.WithKind(entities.KindValidation, fmt.Errorf("unknown filter %q", name))
	}

	orders, ok := s.cachedOrders()
	if !ok {
		var err error
		orders, err = s.PageOrders(ctx, 0, 1000)
		if err != nil {
			return nil, err
		}
	}

	result := make([]entities.Order, 0)
	for _, o := range orders {
		if pred(o) {
			result = append(result, o)
		}
	}
	return result, nil
}

// Reconcile замещает локальный снапшот авторитетными данными сервера.
// Вызывается на старте и после разбора очереди.
func (s *OrderService) Reconcile(ctx context.Context) error {
	const pageSize = 200
	var all []entities.Order
	for offset := uint64(0); ; offset += pageSize {
		page, err := s.repo.PageOrders(ctx, offset, pageSize)
		if err != nil {
			return fmt.Errorf("failed to reconcile orders: %w", err)
		}
		all = append(all, page...)
		if uint64(len(page)) < pageSize {
			break
		}
	}
	s.saveSnapshot(all)
	s.logger.Debug("cache reconciled", slog.Int("orders", len(all)))
	return nil
}

// Start прогревает кеш при запуске. Реализует интерфейс Starter приложения.
func (s *OrderService) Start(ctx context.Context) error {
	if !s.network.Online() {
		return nil
	}
	if err := s.Reconcile(ctx); err != nil {
		// Недоступный на старте бекенд переводит слой в режим
		// чтения из кеша, а не валит приложение.
		s.logger.Warn("starting in cached read-only mode", slog.Any("error", err))
		s.network.SetOnline(false)
	}
	return nil
}

// Apply доставляет отложенную запись в удалённое хранилище.
// Вызывается очередью при разборе.
func (s *OrderService) Apply(ctx context.Context, w entities.PendingWrite) error {
	switch w.Collection {
	case CollectionOrders:
		var order entities.Order
		if err := json.Unmarshal(w.Payload, &order); err != nil {
			return entities.WithKind(entities.KindValidation, err)
		}
		switch w.Op {
		case entities.WriteInsert:
			return s.repo.InsertOrder(ctx, order)
		case entities.WriteUpdate:
			return s.repo.UpdateOrder(ctx, order)
		case entities.WriteDelete:
			return s.repo.DeleteOrder(ctx, w.TargetID)
		}
	case CollectionPayments:
		var payment entities.Payment
		if err := json.Unmarshal(w.Payload, &payment); err != nil {
			return entities.WithKind(entities.KindValidation, err)
		}
		return s.repo.InsertPayment(ctx, payment)
	case CollectionHistory:
		var history entities.HistoryEntry
		if err := json.Unmarshal(w.Payload, &history); err != nil {
			return entities.WithKind(entities.KindValidation, err)
		}
		return s.repo.InsertHistory(ctx, history)
	case CollectionActivity:
		var rec entities.ActivityRecord
		if err := json.Unmarshal(w.Payload, &rec); err != nil {
			return entities.WithKind(entities.KindValidation, err)
		}
		return s.repo.InsertActivity(ctx, rec)
	}
	return entities.WithKind(entities.KindValidation, fmt.Errorf("unknown collection %q", w.Collection))
}

// commit выполняет мутацию в транзакции, а при недоступности сети
// ставит записи в очередь и применяет оптимистичное локальное
// обновление: до индикатора сбоя оно неотличимо от подтверждённого.
func (s *OrderService) commit(ctx context.Context, op func(ctx context.Context) error, writes []entities.PendingWrite, optimistic ...entities.Order) error {
	if s.network.Online() {
		err := s.txm.Do(ctx, op)
		if err == nil {
			for _, o := range optimistic {
				s.patchCache(o)
			}
			return nil
		}
		if !entities.IsConnectivity(err) {
			return err
		}
		s.network.SetOnline(false)
	}

	for _, w := range writes {
		s.queue.Enqueue(w)
	}
	for _, o := range optimistic {
		s.patchCache(o)
	}
	return nil
}

func (s *OrderService) historyEntry(ctx context.Context, orderID, activity string) entities.HistoryEntry {
	user, _ := identity.UserFromContext(ctx)
	return entities.HistoryEntry{
		OrderID:  orderID,
		At:       s.clock.Now(),
		Activity: activity,
		User:     user.DisplayName,
	}
}

// nextLocalID выдаёт следующий локальный номер; в офлайне — по кешу.
func (s *OrderService) nextLocalID(ctx context.Context) (string, error) {
	if s.network.Online() {
		localID, err := s.repo.NextLocalID(ctx)
		if err == nil {
			return localID, nil
		}
		if !entities.IsConnectivity(err) {
			return "", err
		}
		s.network.SetOnline(false)
	}

	var max int64
	if cached, ok := s.cachedOrders(); ok {
		for _, o := range cached {
			if n, err := strconv.ParseInt(o.LocalID, 10, 64); err == nil && n > max {
				max = n
			}
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

func (s *OrderService) cachedOrders() ([]entities.Order, bool) {
	raw, ok := s.cache.Load(CollectionOrders)
	if !ok {
		return nil, false
	}
	var orders []entities.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		s.logger.Error("failed to unmarshal cached orders", slog.Any("error", err))
		return nil, false
	}
	return orders, true
}

func (s *OrderService) cachedPage(offset, limit uint64) []entities.Order {
	orders, ok := s.cachedOrders()
	if !ok {
		return []entities.Order{}
	}
	if offset >= uint64(len(orders)) {
		return []entities.Order{}
	}
	end := offset + limit
	if end > uint64(len(orders)) {
		end = uint64(len(orders))
	}
	return orders[offset:end]
}

func (s *OrderService) cachedSearch(term string) []entities.Order {
	orders, _ := s.cachedOrders()
	term = strings.ToLower(term)
	result := make([]entities.Order, 0)
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.LocalID), term) ||
			strings.Contains(strings.ToLower(o.TrackingNumber), term) ||
			strings.Contains(strings.ToLower(o.ClientID), term) {
			result = append(result, o)
		}
	}
	return result
}

func (s *OrderService) saveSnapshot(orders []entities.Order) {
	raw, err := json.Marshal(orders)
	if err != nil {
		s.logger.Error("failed to marshal orders snapshot", slog.Any("error", err))
		return
	}
	if err := s.cache.Save(CollectionOrders, raw); err != nil {
		s.logger.Error("failed to save orders snapshot", slog.Any("error", err))
	}
}

func (s *OrderService) patchCache(order entities.Order) {
	raw, err := json.Marshal(order)
	if err != nil {
		s.logger.Error("failed to marshal order", slog.Any("error", err))
		return
	}
	if err := s.cache.Patch(CollectionOrders, order.ID, raw); err != nil {
		s.logger.Error("failed to patch cached order", slog.Any("error", err))
	}
}

func pendingWrite(collection, targetID string, op entities.WriteOp, payload any) entities.PendingWrite {
	raw, _ := json.Marshal(payload)
	return entities.PendingWrite{
		Collection: collection,
		TargetID:   targetID,
		Op:         op,
		Payload:    raw,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
