package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"khodarji-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *domain.Order {
	apple := catalogProduct("apple", "2.00")
	return &domain.Order{
		ID:            "ABC123",
		CustomerPhone: "712345678",
		CustomerCity:  "Amman",
		Items: []domain.CartLine{
			{Product: apple, Quantity: dec("1.5")},
		},
		Subtotal:    dec("3.00"),
		DeliveryFee: dec("2.00"),
		Total:       dec("5.00"),
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestFormatOrderMessage(t *testing.T) {
	msg := FormatOrderMessage(sampleOrder())

	assert.Contains(t, msg, "ABC123")
	assert.Contains(t, msg, "apple x1.5")
	assert.Contains(t, msg, "712345678")
	assert.Contains(t, msg, "Amman")
	assert.NotContains(t, msg, "Delivery: free")
}

func TestFormatOrderMessage_FreeDelivery(t *testing.T) {
	o := sampleOrder()
	o.Subtotal = dec("25.00")
	o.DeliveryFee = dec("0")
	o.Total = dec("25.00")

	msg := FormatOrderMessage(o)
	assert.Contains(t, msg, "Delivery: free")
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink(sampleOrder())

	assert.True(t, strings.HasPrefix(link, "https://wa.me/962790801695?text="), link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "ABC123")
}
