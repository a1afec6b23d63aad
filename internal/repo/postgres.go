package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"ordersync/internal/entities"
	"ordersync/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var orderColumns = []string{
	"id", "local_order_id", "client_id", "store_id", "currency",
	"price", "price_base", "commission", "commission_kind", "quantity",
	"amount_paid", "shipping_cost", "local_delivery_cost", "transaction_fee",
	"status", "tracking_number", "weight", "storage_location",
	"arrived_at", "stored_at", "withdrawn_at",
	"invoice_printed", "notification_sent", "delivery_fee_prepaid",
	"images", "created_at",
}

// Правило сортировки списка: завершённые заказы после активных,
// внутри группы — по убыванию числового локального номера.
var orderRanking = []string{"(status = 'COMPLETED') ASC", "local_order_id::bigint DESC"}

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, Classify(fmt.Errorf("failed to get order: %w", err))
	}
	return OrderToEntity(order), nil
}

// PageOrders возвращает страницу заказов начиная с offset.
func (r *postgresRepo) PageOrders(ctx context.Context, offset, limit uint64) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		OrderBy(orderRanking...).
		Offset(offset).
		Limit(limit).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, Classify(fmt.Errorf("failed to select orders: %w", err))
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o))
	}
	return result, nil
}

// SearchOrders выполняет серверный поиск по номеру, трекингу и клиенту.
func (r *postgresRepo) SearchOrders(ctx context.Context, term string) ([]entities.Order, error) {
	pattern := "%" + term + "%"
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Or{
			sq.ILike{"local_order_id": pattern},
			sq.ILike{"tracking_number": pattern},
			sq.ILike{"client_id": pattern},
		}).
		OrderBy(orderRanking...).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, Classify(fmt.Errorf("failed to search orders: %w", err))
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o))
	}
	return result, nil
}

func (r *postgresRepo) InsertOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID, o.LocalID, o.ClientID, o.StoreID, o.Currency,
			o.Price, o.PriceBase, o.Commission, string(o.CommissionKind), o.Quantity,
			o.AmountPaid, o.ShippingCost, o.LocalDeliveryCost, o.TransactionFee,
			string(o.Status), nullString(o.TrackingNumber), nullFloat(o.Weight), nullString(o.StorageLocation),
			nullTime(o.ArrivedAt), nullTime(o.StoredAt), nullTime(o.WithdrawnAt),
			o.InvoicePrinted, o.NotificationSent, o.DeliveryFeePrepaid,
			imagesJSON(o.Images), o.CreatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return Classify(fmt.Errorf("failed to insert order: %w", err))
	}
	return nil
}

// UpdateOrder перезаписывает строку целиком: на уровне записи
// действует last-writer-wins, источник истины — сервер.
func (r *postgresRepo) UpdateOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Update("orders").
		SetMap(map[string]any{
			"client_id":            o.ClientID,
			"store_id":             o.StoreID,
			"currency":             o.Currency,
			"price":                o.Price,
			"price_base":           o.PriceBase,
			"commission":           o.Commission,
			"commission_kind":      string(o.CommissionKind),
			"quantity":             o.Quantity,
			"amount_paid":          o.AmountPaid,
			"shipping_cost":        o.ShippingCost,
			"local_delivery_cost":  o.LocalDeliveryCost,
			"transaction_fee":      o.TransactionFee,
			"status":               string(o.Status),
			"tracking_number":      nullString(o.TrackingNumber),
			"weight":               nullFloat(o.Weight),
			"storage_location":     nullString(o.StorageLocation),
			"arrived_at":           nullTime(o.ArrivedAt),
			"stored_at":            nullTime(o.StoredAt),
			"withdrawn_at":         nullTime(o.WithdrawnAt),
			"invoice_printed":      o.InvoicePrinted,
			"notification_sent":    o.NotificationSent,
			"delivery_fee_prepaid": o.DeliveryFeePrepaid,
			"images":               imagesJSON(o.Images),
		}).
		Where(sq.Eq{"id": o.ID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return Classify(fmt.Errorf("failed to update order: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder удаляет заказ безвозвратно, без tombstone.
func (r *postgresRepo) DeleteOrder(ctx context.Context, orderID string) error {
	query, args := r.qb.Delete("orders").Where(sq.Eq{"id": orderID}).MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return Classify(fmt.Errorf("failed to delete order: %w", err))
	}
	return nil
}

// NextLocalID выдаёт следующий человекочитаемый номер заказа.
func (r *postgresRepo) NextLocalID(ctx context.Context) (string, error) {
	var next int64
	err := r.getContext(ctx, &next, "SELECT COALESCE(MAX(local_order_id::bigint), 0) + 1 FROM orders")
	if err != nil {
		return "", Classify(fmt.Errorf("failed to get next local id: %w", err))
	}
	return strconv.FormatInt(next, 10), nil
}

func (r *postgresRepo) InsertHistory(ctx context.Context, h entities.HistoryEntry) error {
	query, args := r.qb.Insert("order_history").
		Columns("order_id", "at", "activity", "acting_user").
		Values(h.OrderID, h.At, h.Activity, h.User).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return Classify(fmt.Errorf("failed to insert history entry: %w", err))
	}
	return nil
}

func (r *postgresRepo) HistoryByOrder(ctx context.Context, orderID string) ([]entities.HistoryEntry, error) {
	query, args := r.qb.Select("id", "order_id", "at", "activity", "acting_user").
		From("order_history").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id ASC").
		MustSql()

	var rows []HistoryEntry
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, Classify(fmt.Errorf("failed to select history: %w", err))
	}

	result := make([]entities.HistoryEntry, 0, len(rows))
	for _, h := range rows {
		result = append(result, HistoryToEntity(h))
	}
	return result, nil
}

func (r *postgresRepo) InsertPayment(ctx context.Context, p entities.Payment) error {
	query, args := r.qb.Insert("order_payments").
		Columns("id", "order_id", "amount", "payment_method", "fee", "delivery_cost", "created_by", "created_at").
		Values(p.ID, p.OrderID, p.Amount, p.Method, p.Fee, p.DeliveryCost, p.CreatedBy, p.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return Classify(fmt.Errorf("failed to insert payment: %w", err))
	}
	return nil
}

func (r *postgresRepo) PaymentsByOrder(ctx context.Context, orderID string) ([]entities.Payment, error) {
	query, args := r.qb.Select("id", "order_id", "amount", "payment_method", "fee", "delivery_cost", "created_by", "created_at").
		From("order_payments").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("created_at ASC").
		MustSql()

	var rows []Payment
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, Classify(fmt.Errorf("failed to select payments: %w", err))
	}

	result := make([]entities.Payment, 0, len(rows))
	for _, p := range rows {
		result = append(result, PaymentToEntity(p))
	}
	return result, nil
}

func (r *postgresRepo) InsertActivity(ctx context.Context, a entities.ActivityRecord) error {
	query, args := r.qb.Insert("activity_log").
		Columns("at", "acting_user", "action", "entity_type", "entity_id", "details").
		Values(a.At, a.User, a.Action, a.EntityType, a.EntityID, a.Details).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return Classify(fmt.Errorf("failed to insert activity record: %w", err))
	}
	return nil
}

// UserCredential возвращает bcrypt-хеш и отображаемое имя пользователя.
func (r *postgresRepo) UserCredential(ctx context.Context, userID string) (hash, displayName string, err error) {
	query, args := r.qb.Select("id", "display_name", "password_hash").
		From("users").
		Where(sq.Eq{"id": userID}).
		MustSql()

	var u User
	err = r.getContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", entities.WithKind(entities.KindAuthorization, entities.ErrInvalidCredential)
	}
	if err != nil {
		return "", "", Classify(fmt.Errorf("failed to get user: %w", err))
	}
	return u.PasswordHash, u.DisplayName, nil
}

// Classify помечает сетевые ошибки драйвера как connectivity:
// только такие записи уходят в очередь отложенных мутаций.
// Используется и менеджером транзакций: обрыв соединения на
// begin/commit должен классифицироваться так же, как в запросах.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return entities.WithKind(entities.KindConnectivity, err)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return entities.WithKind(entities.KindConnectivity, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Класс 08 — connection exception.
		if len(pqErr.Code) >= 2 && pqErr.Code[:2] == "08" {
			return entities.WithKind(entities.KindConnectivity, err)
		}
		return err
	}
	return err
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
