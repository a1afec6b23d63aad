package handler

import (
	"time"

	"ordersync/internal/entities"
)

// Order представляет заказ в ответах API
type Order struct {
	ID           string `json:"id"`
	LocalOrderID string `json:"local_order_id"`

	ClientID  string  `json:"client_id,omitempty"`
	StoreID   string  `json:"store_id,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	Price     float64 `json:"price"`
	PriceBase float64 `json:"price_base,omitempty"`

	Commission     float64 `json:"commission,omitempty"`
	CommissionKind string  `json:"commission_kind,omitempty"`
	Quantity       int     `json:"quantity"`

	AmountPaid        float64 `json:"amount_paid"`
	ShippingCost      float64 `json:"shipping_cost,omitempty"`
	LocalDeliveryCost float64 `json:"local_delivery_cost,omitempty"`
	TransactionFee    float64 `json:"transaction_fee,omitempty"`
	Balance           float64 `json:"balance"`

	Status          string  `json:"status"`
	TrackingNumber  string  `json:"tracking_number,omitempty"`
	Weight          float64 `json:"weight,omitempty"`
	StorageLocation string  `json:"storage_location,omitempty"`

	ArrivedAt   *time.Time `json:"arrived_at,omitempty"`
	StoredAt    *time.Time `json:"stored_at,omitempty"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`

	InvoicePrinted     bool `json:"invoice_printed,omitempty"`
	NotificationSent   bool `json:"notification_sent,omitempty"`
	DeliveryFeePrepaid bool `json:"delivery_fee_prepaid,omitempty"`

	Images map[string][]string `json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry запись журнала заказа
type HistoryEntry struct {
	At       time.Time `json:"at"`
	Activity string    `json:"activity"`
	User     string    `json:"user"`
}

// Payment запись леджера оплат
type Payment struct {
	ID           string    `json:"id"`
	Amount       float64   `json:"amount"`
	Method       string    `json:"payment_method"`
	Fee          float64   `json:"fee,omitempty"`
	DeliveryCost float64   `json:"delivery_cost,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SyncStatus состояние слоя синхронизации
type SyncStatus struct {
	Online        bool `json:"online"`
	PendingWrites int  `json:"pending_writes"`
	DeadWrites    int  `json:"dead_writes"`
}

// CreateOrder запрос на регистрацию заказа
type CreateOrder struct {
	ClientID  string  `json:"client_id" validate:"required"`
	StoreID   string  `json:"store_id,omitempty"`
	Currency  string  `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Price     float64 `json:"price" validate:"gt=0"`
	PriceBase float64 `json:"price_base,omitempty" validate:"gte=0"`

	Commission     float64 `json:"commission,omitempty" validate:"gte=0"`
	CommissionKind string  `json:"commission_kind,omitempty" validate:"omitempty,oneof=percent fixed"`
	Quantity       int     `json:"quantity" validate:"gte=1"`

	DeliveryFeePrepaid bool `json:"delivery_fee_prepaid,omitempty"`
}

// AdvanceOrder запрос на перевод заказа в целевой статус
type AdvanceOrder struct {
	Status string `json:"status" validate:"required"`

	TrackingNumber  string  `json:"tracking_number,omitempty"`
	Weight          float64 `json:"weight,omitempty" validate:"gte=0"`
	ShippingCost    float64 `json:"shipping_cost,omitempty" validate:"gte=0"`
	StorageLocation string  `json:"storage_location,omitempty"`
}

// RevertOrder запрос на откат статуса
type RevertOrder struct {
	Credential string `json:"credential,omitempty"`
}

// RegisterPayment запрос на регистрацию оплаты
type RegisterPayment struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Method       string  `json:"payment_method" validate:"required"`
	Fee          float64 `json:"fee,omitempty" validate:"gte=0"`
	DeliveryCost float64 `json:"delivery_cost,omitempty" validate:"gte=0"`
}

// SplitOrder запрос на разделение заказа по долям
type SplitOrder struct {
	Allocations []SplitAllocation `json:"allocations" validate:"required,min=2,dive"`
}

type SplitAllocation struct {
	Quantity int     `json:"quantity" validate:"required,gte=1"`
	Price    float64 `json:"price" validate:"required,gt=0"`
}

// AttachImage запрос на добавление изображения
type AttachImage struct {
	Group string `json:"group" validate:"required,oneof=product tracking weighing hub_arrival receipt"`
	Ref   string `json:"ref" validate:"required"`
}

// DeleteOrder запрос на удаление заказа
type DeleteOrder struct {
	Credential string `json:"credential" validate:"required"`
}

func OrderEntityToJSON(o entities.Order) Order {
	images := make(map[string][]string, len(o.Images))
	for group, refs := range o.Images {
		images[string(group)] = refs
	}
	if len(images) == 0 {
		images = nil
	}

	return Order{
		ID:           o.ID,
		LocalOrderID: o.LocalID,

		ClientID:  o.ClientID,
		StoreID:   o.StoreID,
		Currency:  o.Currency,
		Price:     o.Price,
		PriceBase: o.PriceBase,

		Commission:     o.Commission,
		CommissionKind: string(o.CommissionKind),
		Quantity:       o.Quantity,

		AmountPaid:        o.AmountPaid,
		ShippingCost:      o.ShippingCost,
		LocalDeliveryCost: o.LocalDeliveryCost,
		TransactionFee:    o.TransactionFee,
		Balance:           o.Balance(),

		Status:          string(o.Status),
		TrackingNumber:  o.TrackingNumber,
		Weight:          o.Weight,
		StorageLocation: o.StorageLocation,

		ArrivedAt:   o.ArrivedAt,
		StoredAt:    o.StoredAt,
		WithdrawnAt: o.WithdrawnAt,

		InvoicePrinted:     o.InvoicePrinted,
		NotificationSent:   o.NotificationSent,
		DeliveryFeePrepaid: o.DeliveryFeePrepaid,

		Images: images,

		CreatedAt: o.CreatedAt,
	}
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderEntityToJSON(o))
	}
	return out
}

func CreateOrderToEntity(req CreateOrder) entities.Order {
	return entities.Order{
		ClientID:  req.ClientID,
		StoreID:   req.StoreID,
		Currency:  req.Currency,
		Price:     req.Price,
		PriceBase: req.PriceBase,

		Commission:     req.Commission,
		CommissionKind: entities.CommissionKind(req.CommissionKind),
		Quantity:       req.Quantity,

		DeliveryFeePrepaid: req.DeliveryFeePrepaid,
	}
}

func HistoryEntityToJSON(h entities.HistoryEntry) HistoryEntry {
	return HistoryEntry{
		At:       h.At,
		Activity: h.Activity,
		User:     h.User,
	}
}

func PaymentEntityToJSON(p entities.Payment) Payment {
	return Payment{
		ID:           p.ID,
		Amount:       p.Amount,
		Method:       p.Method,
		Fee:          p.Fee,
		DeliveryCost: p.DeliveryCost,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
	}
}

func AllocationsToEntity(allocations []SplitAllocation) []entities.SplitAllocation {
	out := make([]entities.SplitAllocation, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, entities.SplitAllocation{Quantity: a.Quantity, Price: a.Price})
	}
	return out
}
