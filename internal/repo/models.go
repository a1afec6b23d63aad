package repo

import (
	"database/sql"
	"encoding/json"
	"time"

	"ordersync/internal/entities"
)

type Order struct {
	ID                 string          `db:"id"`
	LocalOrderID       string          `db:"local_order_id"`
	ClientID           string          `db:"client_id"`
	StoreID            string          `db:"store_id"`
	Currency           string          `db:"currency"`
	Price              float64         `db:"price"`
	PriceBase          float64         `db:"price_base"`
	Commission         float64         `db:"commission"`
	CommissionKind     string          `db:"commission_kind"`
	Quantity           int             `db:"quantity"`
	AmountPaid         float64         `db:"amount_paid"`
	ShippingCost       float64         `db:"shipping_cost"`
	LocalDeliveryCost  float64         `db:"local_delivery_cost"`
	TransactionFee     float64         `db:"transaction_fee"`
	Status             string          `db:"status"`
	TrackingNumber     sql.NullString  `db:"tracking_number"`
	Weight             sql.NullFloat64 `db:"weight"`
	StorageLocation    sql.NullString  `db:"storage_location"`
	ArrivedAt          sql.NullTime    `db:"arrived_at"`
	StoredAt           sql.NullTime    `db:"stored_at"`
	WithdrawnAt        sql.NullTime    `db:"withdrawn_at"`
	InvoicePrinted     bool            `db:"invoice_printed"`
	NotificationSent   bool            `db:"notification_sent"`
	DeliveryFeePrepaid bool            `db:"delivery_fee_prepaid"`
	Images             []byte          `db:"images"`
	CreatedAt          time.Time       `db:"created_at"`
}

type HistoryEntry struct {
	ID         int64     `db:"id"`
	OrderID    string    `db:"order_id"`
	At         time.Time `db:"at"`
	Activity   string    `db:"activity"`
	ActingUser string    `db:"acting_user"`
}

type Payment struct {
	ID            string    `db:"id"`
	OrderID       string    `db:"order_id"`
	Amount        float64   `db:"amount"`
	PaymentMethod string    `db:"payment_method"`
	Fee           float64   `db:"fee"`
	DeliveryCost  float64   `db:"delivery_cost"`
	CreatedBy     string    `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
}

type ActivityRecord struct {
	ID         int64     `db:"id"`
	At         time.Time `db:"at"`
	ActingUser string    `db:"acting_user"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Details    string    `db:"details"`
}

type User struct {
	ID           string `db:"id"`
	DisplayName  string `db:"display_name"`
	PasswordHash string `db:"password_hash"`
}

func OrderToEntity(o Order) entities.Order {
	var images map[entities.ImageGroup][]string
	if len(o.Images) > 0 {
		_ = json.Unmarshal(o.Images, &images)
	}

	return entities.Order{
		ID:                 o.ID,
		LocalID:            o.LocalOrderID,
		ClientID:           o.ClientID,
		StoreID:            o.StoreID,
		Currency:           o.Currency,
		Price:              o.Price,
		PriceBase:          o.PriceBase,
		Commission:         o.Commission,
		CommissionKind:     entities.CommissionKind(o.CommissionKind),
		Quantity:           o.Quantity,
		AmountPaid:         o.AmountPaid,
		ShippingCost:       o.ShippingCost,
		LocalDeliveryCost:  o.LocalDeliveryCost,
		TransactionFee:     o.TransactionFee,
		Status:             entities.OrderStatus(o.Status),
		TrackingNumber:     nullStringToString(o.TrackingNumber),
		Weight:             nullFloatToFloat(o.Weight),
		StorageLocation:    nullStringToString(o.StorageLocation),
		ArrivedAt:          nullTimeToPtr(o.ArrivedAt),
		StoredAt:           nullTimeToPtr(o.StoredAt),
		WithdrawnAt:        nullTimeToPtr(o.WithdrawnAt),
		InvoicePrinted:     o.InvoicePrinted,
		NotificationSent:   o.NotificationSent,
		DeliveryFeePrepaid: o.DeliveryFeePrepaid,
		Images:             images,
		CreatedAt:          o.CreatedAt,
	}
}

func HistoryToEntity(h HistoryEntry) entities.HistoryEntry {
	return entities.HistoryEntry{
		ID:       h.ID,
		OrderID:  h.OrderID,
		At:       h.At,
		Activity: h.Activity,
		User:     h.ActingUser,
	}
}

func PaymentToEntity(p Payment) entities.Payment {
	return entities.Payment{
		ID:           p.ID,
		OrderID:      p.OrderID,
		Amount:       p.Amount,
		Method:       p.PaymentMethod,
		Fee:          p.Fee,
		DeliveryCost: p.DeliveryCost,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
	}
}

func ActivityToEntity(a ActivityRecord) entities.ActivityRecord {
	return entities.ActivityRecord{
		ID:         a.ID,
		At:         a.At,
		User:       a.ActingUser,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Details:    a.Details,
	}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullFloatToFloat(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func imagesJSON(images map[entities.ImageGroup][]string) []byte {
	if len(images) == 0 {
		return []byte("{}")
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
