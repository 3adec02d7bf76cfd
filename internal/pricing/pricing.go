// Package pricing computes monetary totals from cart state. Every function
// is deterministic and side-effect free; totals are recomputed fresh from
// the cart on every read.
package pricing

import (
	"khodarji-server/internal/domain"

	"github.com/shopspring/decimal"
)

// Delivery configuration. A single pair of constants so the threshold and
// fee are never duplicated across display, checkout and message formatting.
var (
	FreeDeliveryThreshold = decimal.NewFromInt(20)
	StandardDeliveryFee   = decimal.NewFromInt(2)
)

// Result is derived, never stored.
type Result struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// ActiveUnitPrice is the price actually charged per unit: the discount
// price when a valid lower discount exists, otherwise the list price.
// Every line-total computation must go through here; the cart drawer and
// the checkout summary are not allowed to disagree.
func ActiveUnitPrice(p domain.Product) decimal.Decimal {
	if p.HasDeal() {
		return *p.DiscountPrice
	}
	return p.Price
}

// LineTotal is the active unit price times the line quantity.
func LineTotal(line domain.CartLine) decimal.Decimal {
	return ActiveUnitPrice(line.Product).Mul(line.Quantity)
}

// Subtotal sums the line totals of the cart.
func Subtotal(cart domain.Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range cart.Lines {
		sum = sum.Add(LineTotal(line))
	}
	return sum
}

// DeliveryFee is zero at or above the free-delivery threshold, otherwise
// the standard flat fee.
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return StandardDeliveryFee
}

// Quote computes the full pricing result for a cart.
// Invariant: Total = Subtotal + DeliveryFee, exactly.
func Quote(cart domain.Cart) Result {
	subtotal := Subtotal(cart)
	fee := DeliveryFee(subtotal)
	return Result{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}
