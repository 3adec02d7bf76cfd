// Package services holds the application use-cases between the HTTP and
// voice controllers and the repositories.
package services

import (
	"context"
	"log"
	"time"

	"khodarji-server/internal/cart"
	"khodarji-server/internal/domain"
	rabbit "khodarji-server/internal/infra/rabbitmq"
	"khodarji-server/internal/pricing"
	"khodarji-server/internal/repository"
)

type OrderService struct {
	repo      repository.OrderRepository
	carts     *cart.Store
	publisher rabbit.PublisherInterface
}

func NewOrderService(r repository.OrderRepository, carts *cart.Store, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		repo:      r,
		carts:     carts,
		publisher: pub,
	}
}

// Checkout freezes the owner's cart into an order. The cart is cleared
// only after the order is durably saved; a failed save leaves the cart
// untouched so the customer can retry.
func (u *OrderService) Checkout(ctx context.Context, ownerID, phone, city string) (*domain.Order, error) {
	c := u.carts.Get(ctx, ownerID)
	if c.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	if !domain.ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}

	quote := pricing.Quote(c)
	order := &domain.Order{
		ID:            domain.NewOrderID(),
		CustomerPhone: phone,
		CustomerCity:  city,
		Items:         c.Clone(),
		Subtotal:      quote.Subtotal,
		DeliveryFee:   quote.DeliveryFee,
		Total:         quote.Total,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}

	if err := u.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	u.carts.Clear(ctx, ownerID)

	go u.publishOrderCreated(context.Background(), order)

	return order, nil
}

func (u *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:       order.ID,
		CustomerPhone: order.CustomerPhone,
		CustomerCity:  order.CustomerCity,
		Total:         order.Total.StringFixed(2),
		CreatedAt:     order.CreatedAt,
	}
	if err := u.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("Failed to publish order.created for %s: %v", order.ID, err)
	}
}

func (u *OrderService) publishStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus) {
	evt := domain.OrderStatusChangedEvent{
		OrderID:   orderID,
		From:      from,
		To:        to,
		ChangedAt: time.Now(),
	}
	if err := u.publisher.Publish(ctx, "order.status_changed", evt); err != nil {
		log.Printf("Failed to publish order.status_changed for %s: %v", orderID, err)
	}
}

func (u *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// ListForPhone returns the customer's own orders, newest first.
func (u *OrderService) ListForPhone(ctx context.Context, phone string) ([]domain.Order, error) {
	return u.repo.FindByPhone(ctx, phone)
}

// ListAll returns every order for the admin dashboard.
func (u *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return u.repo.FindAll(ctx)
}

// CustomerCancel cancels the customer's own pending order. The phone must
// match the order; anything past pending is refused.
func (u *OrderService) CustomerCancel(ctx context.Context, phone, id string) (*domain.Order, error) {
	o, err := u.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerPhone != phone {
		return nil, domain.ErrOrderNotFound
	}

	from := o.Status
	if err := o.CustomerCancel(); err != nil {
		return nil, err
	}

	updated, err := u.repo.UpdateStatus(ctx, id, o.Status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrOrderNotFound
	}

	go u.publishStatusChanged(context.Background(), id, from, o.Status)

	return updated, nil
}

// AdminSetStatus is the operator override: any valid status, from any
// current status.
func (u *OrderService) AdminSetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	o, err := u.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.AdminSetStatus(status); err != nil {
		return nil, err
	}

	updated, err := u.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrOrderNotFound
	}

	if from != status {
		go u.publishStatusChanged(context.Background(), id, from, status)
	}

	return updated, nil
}

// Delete removes an order record entirely, admin only.
func (u *OrderService) Delete(ctx context.Context, id string) error {
	if _, err := u.GetOrderByID(ctx, id); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}
