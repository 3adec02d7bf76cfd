package voice

import (
	"context"
	"encoding/json"
	"log"

	"khodarji-server/internal/domain"

	"github.com/shopspring/decimal"
)

// ToolAddToBasket is the single capability exposed to the model.
const ToolAddToBasket = "add_to_basket"

type basketArgs struct {
	Items []basketItem `json:"items"`
}

type basketItem struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

func addToBasketTool() tool {
	return tool{
		FunctionDeclarations: []functionDeclaration{{
			Name:        ToolAddToBasket,
			Description: "Add one or more products from the store catalog to the customer's shopping basket.",
			Parameters: &schema{
				Type:     "object",
				Required: []string{"items"},
				Properties: map[string]*schema{
					"items": {
						Type: "array",
						Items: &schema{
							Type:     "object",
							Required: []string{"product_id", "quantity"},
							Properties: map[string]*schema{
								"product_id": {Type: "string", Description: "Catalog id of the product."},
								"quantity":   {Type: "number", Description: "Quantity in the product's unit, minimum 0.5."},
							},
						},
					},
				},
			},
		}},
	}
}

// handleToolCall applies a tool request against the basket and always
// replies exactly once per function call, even when nothing resolved; the
// model's next utterance depends on the acknowledgement.
func (s *Session) handleToolCall(ctx context.Context, call *toolCall) {
	for _, fc := range call.FunctionCalls {
		if fc.Name != ToolAddToBasket {
			s.sendToolResponse(fc, map[string]any{"success": false, "error": "unknown tool"})
			continue
		}

		var args basketArgs
		if err := json.Unmarshal(fc.Args, &args); err != nil {
			log.Printf("voice: bad %s args: %v", fc.Name, err)
			s.sendToolResponse(fc, map[string]any{"success": false, "error": "malformed arguments"})
			continue
		}

		added := make([]AddedItem, 0, len(args.Items))
		for _, item := range args.Items {
			p, ok := s.catalog.Resolve(item.ProductID)
			if !ok {
				// One bad id never fails the batch.
				log.Printf("voice: skipping unknown product %q", item.ProductID)
				continue
			}
			qty := decimal.NewFromFloat(item.Quantity)
			s.carts.Add(ctx, s.owner, p, qty)
			added = append(added, AddedItem{
				ProductID: p.ID,
				NameEn:    p.Name.En,
				NameAr:    p.Name.Ar,
				Quantity:  item.Quantity,
			})
		}

		s.sendToolResponse(fc, map[string]any{
			"success":     true,
			"items_added": len(added),
		})

		if len(added) > 0 {
			s.sendClientEvent(ClientEvent{
				Type: "basket",
				Basket: &BasketNotice{
					Items:         added,
					OpenCart:      true,
					AutoDismissMs: 4000,
				},
			})
		}
	}
}

func (s *Session) sendToolResponse(fc functionCall, response map[string]any) {
	msg := clientMessage{ToolResponse: &toolResponse{
		FunctionResponses: []functionResponse{{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: response,
		}},
	}}
	if err := s.writeUpstream(msg); err != nil {
		log.Printf("voice: tool response for %s: %v", fc.ID, err)
	}
}

// Catalog resolves product ids for tool calls against the snapshot the
// session was started with.
type Catalog interface {
	Resolve(productID string) (domain.Product, bool)
}

// StaticCatalog is a Catalog over a fixed product list.
type StaticCatalog map[string]domain.Product

func NewStaticCatalog(products []domain.Product) StaticCatalog {
	m := make(StaticCatalog, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func (c StaticCatalog) Resolve(productID string) (domain.Product, bool) {
	p, ok := c[productID]
	return p, ok
}
