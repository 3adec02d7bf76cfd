package domain

import (
	"github.com/shopspring/decimal"
)

// MinQuantity is the smallest quantity a cart line may hold. Updates below
// the floor are clamped, never stored.
var MinQuantity = decimal.NewFromFloat(0.5)

// CartLine is one product entry in a cart. Identity is the product id;
// a cart holds at most one line per product.
type CartLine struct {
	Product  Product         `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Cart is an ordered collection of lines. Order is insertion order and is
// not significant to pricing.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add merges the product into the cart: an already-present product id has
// its quantity incremented, otherwise a new line is appended. Quantities
// below the floor are clamped.
func (c *Cart) Add(p Product, quantity decimal.Decimal) {
	if quantity.LessThan(MinQuantity) {
		quantity = MinQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].Quantity = c.Lines[i].Quantity.Add(quantity)
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Quantity: quantity})
}

// Remove drops the line for the product id. Removal is the only way a line
// leaves the cart; quantity updates never remove.
func (c *Cart) Remove(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the line quantity, clamped to MinQuantity. A zero or
// negative request leaves the line at the floor rather than deleting it.
func (c *Cart) UpdateQuantity(productID string, quantity decimal.Decimal) bool {
	if quantity.LessThan(MinQuantity) {
		quantity = MinQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the cart lines, so an order snapshot cannot
// be mutated through the live cart.
func (c Cart) Clone() []CartLine {
	out := make([]CartLine, len(c.Lines))
	copy(out, c.Lines)
	return out
}

// Copy returns an independent copy of the whole cart.
func (c Cart) Copy() Cart {
	return Cart{Lines: c.Clone()}
}

// Clear empties the cart in place.
func (c *Cart) Clear() {
	c.Lines = nil
}
