package mysql

import (
	"context"
	"errors"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	row, err := toOrderRow(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	o, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapRows(rows)
}

func (r *orderRepo) FindByPhone(ctx context.Context, phone string) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.WithContext(ctx).Where("customer_phone = ?", phone).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapRows(rows)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	tx := r.db.WithContext(ctx).Model(&orderRow{}).Where("id = ?", id).Update("status", string(status))
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&orderRow{}, "id = ?", id).Error
}

func (r *orderRepo) mapRows(rows []orderRow) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
