// Package rediscache backs the best-effort persistence layers with redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"khodarji-server/internal/domain"

	"github.com/go-redis/redis/v8"
)

const cartTTL = 30 * 24 * time.Hour

// CartStore persists cart snapshots keyed by owner. Losing a key only
// costs the customer a restored cart, so writes are fire-and-forget.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

func cartKey(ownerID string) string {
	return "cart:" + ownerID
}

func (s *CartStore) SaveCart(ctx context.Context, ownerID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(ownerID), data, cartTTL).Err()
}

func (s *CartStore) LoadCart(ctx context.Context, ownerID string) (domain.Cart, bool, error) {
	data, err := s.rdb.Get(ctx, cartKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Cart{}, false, nil
		}
		return domain.Cart{}, false, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return domain.Cart{}, false, err
	}
	return cart, true, nil
}

func (s *CartStore) DeleteCart(ctx context.Context, ownerID string) error {
	return s.rdb.Del(ctx, cartKey(ownerID)).Err()
}
