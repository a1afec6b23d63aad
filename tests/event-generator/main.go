package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

type Order struct {
	ID             string  `json:"id"`
	LocalOrderID   string  `json:"local_order_id"`
	ClientID       string  `json:"client_id"`
	StoreID        string  `json:"store_id"`
	Currency       string  `json:"currency"`
	Price          float64 `json:"price"`
	Commission     float64 `json:"commission"`
	CommissionKind string  `json:"commission_kind"`
	Quantity       int     `json:"quantity"`
	AmountPaid     float64 `json:"amount_paid"`
	ShippingCost   float64 `json:"shipping_cost"`
	Status         string  `json:"status"`
	TrackingNumber string  `json:"tracking_number"`
	CreatedAt      string  `json:"created_at"`
}

type ChangeEvent struct {
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

var statuses = []string{
	"NEW", "ORDERED", "SHIPPED_FROM_STORE", "ARRIVED_AT_OFFICE",
	"STORED", "OUT_FOR_DELIVERY", "COMPLETED",
}

func randomString(n int) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func generateRandomOrder() Order {
	return Order{
		ID:             randomString(16),
		LocalOrderID:   fmt.Sprintf("%d", rand.Intn(99999)+1000),
		ClientID:       "client_" + randomString(5),
		StoreID:        "store_" + randomString(4),
		Currency:       "USD",
		Price:          float64(rand.Intn(5000) + 500),
		Commission:     float64(rand.Intn(15)),
		CommissionKind: "percent",
		Quantity:       rand.Intn(5) + 1,
		AmountPaid:     0,
		ShippingCost:   float64(rand.Intn(100)),
		Status:         statuses[rand.Intn(len(statuses))],
		TrackingNumber: "TRACK" + randomString(6),
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
}

func generateChangeEvent() ChangeEvent {
	order := generateRandomOrder()
	payload, _ := json.Marshal(order)

	op := "update"
	if rand.Intn(3) == 0 {
		op = "insert"
	}
	return ChangeEvent{
		Collection: "Orders",
		Op:         op,
		ID:         order.ID,
		Payload:    payload,
	}
}

func main() {
	addr := kafka.TCP("localhost:9092")

	writer := &kafka.Writer{
		Addr:  addr,
		Topic: "order-changes",
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	for {
		select {
		case <-ticker.C:
			event := generateChangeEvent()
			data, _ := json.Marshal(event)
			writer.WriteMessages(context.Background(), kafka.Message{Value: data})
			log.Println("change event generated", event.Collection, event.Op, event.ID)
		case <-ctx.Done():
			return
		}
	}
}
