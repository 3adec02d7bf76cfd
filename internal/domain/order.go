package domain

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further customer-facing transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order is an immutable snapshot created at checkout. Item contents and
// pricing fields are frozen; only Status changes post-creation.
type Order struct {
	ID            string          `json:"id"`
	CustomerPhone string          `json:"customerPhone"`
	CustomerCity  string          `json:"customerCity"`
	Items         []CartLine      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// CustomerCancel moves the order to cancelled. Customers may only cancel
// while the order is still pending; everything later belongs to the shop.
func (o *Order) CustomerCancel() error {
	if o.Status != StatusPending {
		return ErrOrderNotCancellable
	}
	o.Status = StatusCancelled
	return nil
}

// AdminSetStatus is the operator override: any status to any other. The
// admin dashboard exposes an unrestricted selector on purpose.
func (o *Order) AdminSetStatus(status OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

const orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderID returns a short random alphanumeric id. Collisions are
// practically negligible at storefront scale.
func NewOrderID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
	}
	return string(b)
}
