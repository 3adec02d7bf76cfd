package services

import (
	"fmt"
	"net/url"
	"strings"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/pricing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// shopWhatsApp is the store's order-taking WhatsApp number, in
// international format without the plus.
const shopWhatsApp = "962790801695"

var (
	jod     = currency.MustParseISO("JOD")
	printer = message.NewPrinter(language.English)
)

func formatJOD(amount decimal.Decimal) string {
	return printer.Sprintf("%v", currency.Symbol(jod.Amount(amount.InexactFloat64())))
}

// FormatOrderMessage renders the order as the WhatsApp text the customer
// sends to the shop: one line per item at the charged unit price, then
// the totals and delivery address.
func FormatOrderMessage(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Khodarji order %s\n\n", order.ID)
	for _, line := range order.Items {
		fmt.Fprintf(&b, "- %s x%s = %s\n",
			line.Product.Name.En,
			line.Quantity.String(),
			formatJOD(pricing.LineTotal(line)))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", formatJOD(order.Subtotal))
	if order.DeliveryFee.IsZero() {
		b.WriteString("Delivery: free\n")
	} else {
		fmt.Fprintf(&b, "Delivery: %s\n", formatJOD(order.DeliveryFee))
	}
	fmt.Fprintf(&b, "Total: %s\n", formatJOD(order.Total))
	fmt.Fprintf(&b, "\nPhone: %s\n", order.CustomerPhone)
	if order.CustomerCity != "" {
		fmt.Fprintf(&b, "City: %s\n", order.CustomerCity)
	}
	return b.String()
}

// WhatsAppLink builds the wa.me deep link that opens the chat with the
// order message prefilled.
func WhatsAppLink(order *domain.Order) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		shopWhatsApp, url.QueryEscape(FormatOrderMessage(order)))
}
