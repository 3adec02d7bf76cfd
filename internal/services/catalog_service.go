package services

import (
	"context"
	"encoding/json"
	"time"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	catalogCacheKey = "products:all"
	catalogCacheTTL = 5 * time.Minute
)

type CatalogService struct {
	repo        repository.ProductRepository
	redisClient *redis.Client
}

func NewCatalogService(r repository.ProductRepository) *CatalogService {
	return &CatalogService{repo: r}
}

func (u *CatalogService) SetRedisClient(client *redis.Client) {
	u.redisClient = client
}

// List returns the full catalog, served from the redis cache when warm.
// Cache failures fall through to the repository.
func (u *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	if u.redisClient != nil {
		cached, err := u.redisClient.Get(ctx, catalogCacheKey).Result()
		if err == nil {
			var products []domain.Product
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if u.redisClient != nil {
		if data, err := json.Marshal(products); err == nil {
			u.redisClient.Set(ctx, catalogCacheKey, data, catalogCacheTTL)
		}
	}

	return products, nil
}

func (u *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// Save upserts a product and invalidates the list cache. A missing id
// means a new product.
func (u *CatalogService) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if !p.Category.Valid() {
		p.Category = domain.CategoryOther
	}
	if err := u.repo.Save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	u.invalidate(ctx)
	return p, nil
}

func (u *CatalogService) Delete(ctx context.Context, id string) error {
	if _, err := u.Get(ctx, id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.invalidate(ctx)
	return nil
}

func (u *CatalogService) invalidate(ctx context.Context) {
	if u.redisClient != nil {
		u.redisClient.Del(ctx, catalogCacheKey)
	}
}
