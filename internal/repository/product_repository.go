package repository

import (
	"context"

	"khodarji-server/internal/domain"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Save(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id string) error
}
