package pricing

import (
	"testing"

	"khodarji-server/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func product(id, price string, discount *string) domain.Product {
	p := domain.Product{
		ID:    id,
		Name:  domain.LocalizedString{En: id, Ar: id},
		Price: dec(price),
		Unit:  "kg",
	}
	if discount != nil {
		d := dec(*discount)
		p.DiscountPrice = &d
	}
	return p
}

func strptr(s string) *string { return &s }

func TestActiveUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount *string
		expected string
	}{
		{
			name:     "no discount uses list price",
			price:    "1.50",
			expected: "1.50",
		},
		{
			name:     "lower discount wins",
			price:    "1.50",
			discount: strptr("0.99"),
			expected: "0.99",
		},
		{
			name:     "discount equal to price is ignored",
			price:    "1.50",
			discount: strptr("1.50"),
			expected: "1.50",
		},
		{
			name:     "discount above price is ignored",
			price:    "1.50",
			discount: strptr("2.00"),
			expected: "1.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product("p1", tt.price, tt.discount)
			assert.True(t, dec(tt.expected).Equal(ActiveUnitPrice(p)))
		})
	}
}

func TestLineTotal_FractionalQuantity(t *testing.T) {
	line := domain.CartLine{
		Product:  product("tomato", "0.80", nil),
		Quantity: dec("1.5"),
	}
	assert.True(t, dec("1.20").Equal(LineTotal(line)))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name        string
		lines       []domain.CartLine
		subtotal    string
		deliveryFee string
		total       string
	}{
		{
			name:        "empty cart",
			subtotal:    "0",
			deliveryFee: "2",
			total:       "2",
		},
		{
			name: "small basket pays delivery",
			lines: []domain.CartLine{
				{Product: product("cucumber", "0.85", strptr("0.65")), Quantity: dec("2")},
				{Product: product("mint", "1.10", nil), Quantity: dec("1")},
			},
			subtotal:    "2.40",
			deliveryFee: "2",
			total:       "4.40",
		},
		{
			name: "subtotal exactly at threshold ships free",
			lines: []domain.CartLine{
				{Product: product("box", "10.00", nil), Quantity: dec("2")},
			},
			subtotal:    "20.00",
			deliveryFee: "0",
			total:       "20.00",
		},
		{
			name: "discount pulls subtotal below threshold",
			lines: []domain.CartLine{
				{Product: product("dates", "21.00", strptr("19.00")), Quantity: dec("1")},
			},
			subtotal:    "19.00",
			deliveryFee: "2",
			total:       "21.00",
		},
		{
			name: "large basket ships free",
			lines: []domain.CartLine{
				{Product: product("olive-oil", "14.50", nil), Quantity: dec("2")},
			},
			subtotal:    "29.00",
			deliveryFee: "0",
			total:       "29.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := domain.Cart{Lines: tt.lines}
			got := Quote(cart)

			assert.True(t, dec(tt.subtotal).Equal(got.Subtotal), "subtotal: got %s", got.Subtotal)
			assert.True(t, dec(tt.deliveryFee).Equal(got.DeliveryFee), "fee: got %s", got.DeliveryFee)
			assert.True(t, dec(tt.total).Equal(got.Total), "total: got %s", got.Total)
			assert.True(t, got.Subtotal.Add(got.DeliveryFee).Equal(got.Total))
		})
	}
}
