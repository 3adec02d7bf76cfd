package domain

import "time"

// OrderCreatedEvent is published to the order exchange after checkout.
type OrderCreatedEvent struct {
	OrderID       string    `json:"orderId"`
	CustomerPhone string    `json:"customerPhone"`
	CustomerCity  string    `json:"customerCity"`
	Total         string    `json:"total"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OrderStatusChangedEvent is published when an operator or customer moves
// an order through the status machine.
type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changedAt"`
}
