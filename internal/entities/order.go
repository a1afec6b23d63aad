package entities

import (
	"math"
	"time"
)

type OrderStatus string

const (
	StatusNew              OrderStatus = "NEW"
	StatusOrdered          OrderStatus = "ORDERED"
	StatusShippedFromStore OrderStatus = "SHIPPED_FROM_STORE"
	StatusArrivedAtOffice  OrderStatus = "ARRIVED_AT_OFFICE"
	StatusStored           OrderStatus = "STORED"
	StatusOutForDelivery   OrderStatus = "OUT_FOR_DELIVERY"
	StatusCompleted        OrderStatus = "COMPLETED"
)

// statusOrder задаёт полный порядок прямого движения заказа.
var statusOrder = []OrderStatus{
	StatusNew,
	StatusOrdered,
	StatusShippedFromStore,
	StatusArrivedAtOffice,
	StatusStored,
	StatusOutForDelivery,
	StatusCompleted,
}

func (s OrderStatus) Valid() bool {
	for _, known := range statusOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Predecessor возвращает предыдущий статус по фиксированной цепочке.
// Для NEW предыдущего статуса нет.
func (s OrderStatus) Predecessor() (OrderStatus, bool) {
	for i, known := range statusOrder {
		if s == known {
			if i == 0 {
				return "", false
			}
			return statusOrder[i-1], true
		}
	}
	return "", false
}

func (s OrderStatus) Rank() int {
	for i, known := range statusOrder {
		if s == known {
			return i
		}
	}
	return -1
}

type CommissionKind string

const (
	CommissionPercent CommissionKind = "percent"
	CommissionFixed   CommissionKind = "fixed"
)

// ImageGroup — назначение последовательности изображений заказа.
// Последовательности append-only, порядок не меняется.
type ImageGroup string

const (
	ImagesProduct    ImageGroup = "product"
	ImagesTracking   ImageGroup = "tracking"
	ImagesWeighing   ImageGroup = "weighing"
	ImagesHubArrival ImageGroup = "hub_arrival"
	ImagesReceipt    ImageGroup = "receipt"
)

func (g ImageGroup) Valid() bool {
	switch g {
	case ImagesProduct, ImagesTracking, ImagesWeighing, ImagesHubArrival, ImagesReceipt:
		return true
	}
	return false
}

// Order сериализуется в JSON и как строка кеша, и как payload
// отложенной записи, поэтому теги здесь, а не в отдельной модели.
type Order struct {
	ID      string `json:"id"`
	LocalID string `json:"local_order_id"`

	ClientID  string  `json:"client_id"`
	StoreID   string  `json:"store_id"`
	Currency  string  `json:"currency"`
	Price     float64 `json:"price"`
	PriceBase float64 `json:"price_base"`

	Commission     float64        `json:"commission"`
	CommissionKind CommissionKind `json:"commission_kind"`
	Quantity       int            `json:"quantity"`

	// Денежные поля хранятся в полной точности,
	// округление только на выходной границе.
	AmountPaid        float64 `json:"amount_paid"`
	ShippingCost      float64 `json:"shipping_cost"`
	LocalDeliveryCost float64 `json:"local_delivery_cost"`
	TransactionFee    float64 `json:"transaction_fee"`

	Status          OrderStatus `json:"status"`
	TrackingNumber  string      `json:"tracking_number,omitempty"`
	Weight          float64     `json:"weight,omitempty"`
	StorageLocation string      `json:"storage_location,omitempty"`

	ArrivedAt   *time.Time `json:"arrived_at,omitempty"`
	StoredAt    *time.Time `json:"stored_at,omitempty"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`

	InvoicePrinted     bool `json:"invoice_printed"`
	NotificationSent   bool `json:"notification_sent"`
	DeliveryFeePrepaid bool `json:"delivery_fee_prepaid"`

	Images map[ImageGroup][]string `json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Total — цена заказа вместе с комиссией.
func (o Order) Total() float64 {
	if o.CommissionKind == CommissionPercent {
		return o.Price + o.Price*o.Commission/100
	}
	return o.Price + o.Commission
}

// Balance — остаток к оплате с учётом доставки.
func (o Order) Balance() float64 {
	return o.Total() + o.ShippingCost + o.LocalDeliveryCost - o.AmountPaid
}

// BalanceSummary — числовые поля для внешнего сборщика сообщений.
// Единственное место, где деньги округляются до целых единиц.
type BalanceSummary struct {
	OrderID      string
	LocalID      string
	Balance      int64
	Weight       float64
	ShippingCost int64
}

func (o Order) Summary() BalanceSummary {
	return BalanceSummary{
		OrderID:      o.ID,
		LocalID:      o.LocalID,
		Balance:      int64(math.Round(o.Balance())),
		Weight:       o.Weight,
		ShippingCost: int64(math.Round(o.ShippingCost)),
	}
}

// HistoryEntry — запись append-only журнала заказа.
// Журнал никогда не сокращается, каждая мутация добавляет ровно одну запись.
type HistoryEntry struct {
	ID       int64     `json:"id"`
	OrderID  string    `json:"order_id"`
	At       time.Time `json:"at"`
	Activity string    `json:"activity"`
	User     string    `json:"user"`
}

// SplitAllocation — доля исходного заказа при разделении.
type SplitAllocation struct {
	Quantity int
	Price    float64
}
