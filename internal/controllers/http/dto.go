package http

import (
	"khodarji-server/internal/domain"
	"khodarji-server/internal/pricing"
)

type SignInRequest struct {
	Phone string `json:"phone" binding:"required"`
	City  string `json:"city"`
	Pin   string `json:"pin"`
}

type ProductRequest struct {
	ID            string                  `json:"id"`
	Name          domain.LocalizedString  `json:"name" binding:"required"`
	Category      domain.Category         `json:"category"`
	Price         string                  `json:"price" binding:"required"`
	DiscountPrice *string                 `json:"discountPrice"`
	Image         string                  `json:"image"`
	Unit          string                  `json:"unit" binding:"required"`
	Organic       bool                    `json:"organic"`
	Description   *domain.LocalizedString `json:"description"`
}

type CartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	// Zero and negative quantities clamp to the cart floor, so no
	// binding constraint here.
	Quantity float64 `json:"quantity"`
}

type QuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

type CheckoutRequest struct {
	Phone string `json:"phone" binding:"required"`
	City  string `json:"city"`
}

type CancelOrderRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type StatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type EnrollRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" binding:"required"`
}

type CartLineResponse struct {
	Product   domain.Product `json:"product"`
	Quantity  string         `json:"quantity"`
	UnitPrice string         `json:"unitPrice"`
	LineTotal string         `json:"lineTotal"`
}

type CartResponse struct {
	Lines       []CartLineResponse `json:"lines"`
	Subtotal    string             `json:"subtotal"`
	DeliveryFee string             `json:"deliveryFee"`
	Total       string             `json:"total"`
}

func toCartResponse(cart domain.Cart) CartResponse {
	quote := pricing.Quote(cart)
	lines := make([]CartLineResponse, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, CartLineResponse{
			Product:   line.Product,
			Quantity:  line.Quantity.String(),
			UnitPrice: pricing.ActiveUnitPrice(line.Product).StringFixed(2),
			LineTotal: pricing.LineTotal(line).StringFixed(2),
		})
	}
	return CartResponse{
		Lines:       lines,
		Subtotal:    quote.Subtotal.StringFixed(2),
		DeliveryFee: quote.DeliveryFee.StringFixed(2),
		Total:       quote.Total.StringFixed(2),
	}
}

type CheckoutResponse struct {
	Order        *domain.Order `json:"order"`
	WhatsAppLink string        `json:"whatsappLink"`
}
