package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"khodarji-server/internal/cart"
	"khodarji-server/internal/domain"

	"github.com/google/uuid"
)

// Manager tracks live sessions and enforces at most one per owner. A
// second start while a session is open is refused, not queued.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	dial  Dialer
	carts *cart.Store
	model string
}

func NewManager(dial Dialer, carts *cart.Store, model string) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		dial:     dial,
		carts:    carts,
		model:    model,
	}
}

// Open creates and starts a session for the owner. The catalog snapshot
// is fixed at open time; products added later are not voice-orderable
// until the next session.
func (m *Manager) Open(ctx context.Context, owner string, lang domain.Language, client ClientConn, products []domain.Product) (*Session, error) {
	m.mu.Lock()
	if _, exists := m.sessions[owner]; exists {
		m.mu.Unlock()
		return nil, ErrSessionActive
	}

	s := NewSession(SessionConfig{
		ID:      uuid.NewString(),
		Owner:   owner,
		Lang:    lang,
		Model:   m.model,
		Client:  client,
		Dial:    m.dial,
		Catalog: NewStaticCatalog(products),
		Carts:   m.carts,
		Prompt:  BuildPrompt(lang, products),
	})
	s.onClose = func() { m.remove(owner, s) }
	m.sessions[owner] = s
	m.mu.Unlock()

	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) remove(owner string, s *Session) {
	m.mu.Lock()
	if m.sessions[owner] == s {
		delete(m.sessions, owner)
	}
	m.mu.Unlock()
}

// Active reports whether the owner currently has an open session.
func (m *Manager) Active(owner string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[owner]
	return ok
}

// CloseAll shuts every live session down, used on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
}

// BuildPrompt renders the system instruction: the assistant's role, the
// reply language and the catalog the model may order from.
func BuildPrompt(lang domain.Language, products []domain.Product) string {
	var b strings.Builder
	b.WriteString("You are the voice shopping assistant for Khodarji, a fresh grocery delivery store in Jordan. ")
	if lang == domain.LangArabic {
		b.WriteString("Speak Jordanian Arabic. ")
	} else {
		b.WriteString("Speak English. ")
	}
	b.WriteString("Help the customer order groceries. When they ask for products, call add_to_basket with the matching catalog ids and quantities. ")
	b.WriteString("Quantities are in each product's own unit and the minimum is 0.5. ")
	b.WriteString("Only offer products from this catalog:\n")
	for _, p := range products {
		price := p.Price
		if p.HasDeal() {
			price = *p.DiscountPrice
		}
		fmt.Fprintf(&b, "- id=%s %s / %s, %s JD per %s\n",
			p.ID, p.Name.En, p.Name.Ar, price.StringFixed(2), p.Unit)
	}
	return b.String()
}
