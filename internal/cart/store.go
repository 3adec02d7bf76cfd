// Package cart holds the live shopping carts. UI handlers and voice
// tool-calls mutate carts through the same store, which is the only
// safety net when both race on the same owner.
package cart

import (
	"context"
	"log"
	"sync"

	"khodarji-server/internal/domain"

	"github.com/shopspring/decimal"
)

// SnapshotStore persists cart snapshots best-effort after every mutation.
// Losing a snapshot is non-fatal; the in-memory cart stays authoritative.
type SnapshotStore interface {
	SaveCart(ctx context.Context, ownerID string, cart domain.Cart) error
	LoadCart(ctx context.Context, ownerID string) (domain.Cart, bool, error)
	DeleteCart(ctx context.Context, ownerID string) error
}

// Store keeps one cart per owner. Each mutation is atomic from the
// caller's perspective: the lock covers the read-modify-write and the
// snapshot copy handed back.
type Store struct {
	mu        sync.Mutex
	carts     map[string]*domain.Cart
	snapshots SnapshotStore
}

func NewStore(snapshots SnapshotStore) *Store {
	return &Store{
		carts:     make(map[string]*domain.Cart),
		snapshots: snapshots,
	}
}

// Get returns a copy of the owner's cart, restoring a persisted snapshot
// on first access.
func (s *Store) Get(ctx context.Context, ownerID string) domain.Cart {
	s.ensure(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[ownerID].Copy()
}

// Add merges the product into the owner's cart and returns the new state.
func (s *Store) Add(ctx context.Context, ownerID string, p domain.Product, quantity decimal.Decimal) domain.Cart {
	s.ensure(ctx, ownerID)

	s.mu.Lock()
	c := s.carts[ownerID]
	c.Add(p, quantity)
	out := c.Copy()
	s.mu.Unlock()

	s.persist(ownerID, out)
	return out
}

// Remove drops the product line. Reports whether a line was present.
func (s *Store) Remove(ctx context.Context, ownerID, productID string) (domain.Cart, bool) {
	s.ensure(ctx, ownerID)

	s.mu.Lock()
	c := s.carts[ownerID]
	ok := c.Remove(productID)
	out := c.Copy()
	s.mu.Unlock()

	if ok {
		s.persist(ownerID, out)
	}
	return out, ok
}

// UpdateQuantity sets the line quantity, clamped to the minimum granularity.
func (s *Store) UpdateQuantity(ctx context.Context, ownerID, productID string, quantity decimal.Decimal) (domain.Cart, bool) {
	s.ensure(ctx, ownerID)

	s.mu.Lock()
	c := s.carts[ownerID]
	ok := c.UpdateQuantity(productID, quantity)
	out := c.Copy()
	s.mu.Unlock()

	if ok {
		s.persist(ownerID, out)
	}
	return out, ok
}

// Clear empties the owner's cart, used after a successful checkout.
func (s *Store) Clear(ctx context.Context, ownerID string) {
	s.ensure(ctx, ownerID)

	s.mu.Lock()
	s.carts[ownerID].Clear()
	s.mu.Unlock()

	if s.snapshots != nil {
		go func() {
			if err := s.snapshots.DeleteCart(context.Background(), ownerID); err != nil {
				log.Printf("cart: delete snapshot for %s: %v", ownerID, err)
			}
		}()
	}
}

// ensure makes the owner's cart present, restoring a persisted snapshot
// on first access. The snapshot round-trip runs outside the store lock
// so one slow owner cannot stall everyone else's mutations; a cart
// created concurrently while loading wins over the restored one.
func (s *Store) ensure(ctx context.Context, ownerID string) {
	s.mu.Lock()
	_, ok := s.carts[ownerID]
	s.mu.Unlock()
	if ok {
		return
	}

	restored := &domain.Cart{}
	if s.snapshots != nil {
		if c, ok, err := s.snapshots.LoadCart(ctx, ownerID); err == nil && ok {
			*restored = c
		}
	}

	s.mu.Lock()
	if _, ok := s.carts[ownerID]; !ok {
		s.carts[ownerID] = restored
	}
	s.mu.Unlock()
}

func (s *Store) persist(ownerID string, cart domain.Cart) {
	if s.snapshots == nil {
		return
	}
	go func() {
		if err := s.snapshots.SaveCart(context.Background(), ownerID, cart); err != nil {
			log.Printf("cart: save snapshot for %s: %v", ownerID, err)
		}
	}()
}
