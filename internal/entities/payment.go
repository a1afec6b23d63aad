package entities

import "time"

// Payment — неизменяемая запись платёжного леджера.
// Сумма всех записей по заказу равна его amount_paid.
type Payment struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	Amount       float64   `json:"amount"`
	Method       string    `json:"payment_method"`
	Fee          float64   `json:"fee"`
	DeliveryCost float64   `json:"delivery_cost"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityRecord — запись глобального журнала действий.
// Имя пользователя фиксируется в момент вызова.
type ActivityRecord struct {
	ID         int64     `json:"id"`
	At         time.Time `json:"at"`
	User       string    `json:"user"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details"`
}
