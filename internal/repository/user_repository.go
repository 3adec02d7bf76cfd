package repository

import (
	"context"

	"khodarji-server/internal/domain"
)

type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, user *domain.User) error
	UpdateCity(ctx context.Context, phone, city string) error
}
