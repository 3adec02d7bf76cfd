package mysql

import (
	"context"
	"errors"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{
		ID:    row.ID,
		Phone: row.Phone,
		City:  row.City,
		Role:  domain.Role(row.Role),
		Pin:   row.Pin,
	}, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *userRepo) Save(ctx context.Context, user *domain.User) error {
	row := userRow{
		ID:    user.ID,
		Phone: user.Phone,
		City:  user.City,
		Role:  string(user.Role),
		Pin:   user.Pin,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *userRepo) UpdateCity(ctx context.Context, phone, city string) error {
	return r.db.WithContext(ctx).Model(&userRow{}).Where("phone = ?", phone).Update("city", city).Error
}
