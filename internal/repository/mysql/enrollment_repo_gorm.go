package mysql

import (
	"context"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/repository"

	"gorm.io/gorm"
)

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) repository.EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Save(ctx context.Context, enrollment *domain.Enrollment) error {
	row := enrollmentRow{
		ID:    enrollment.ID,
		Name:  enrollment.Name,
		Phone: enrollment.Phone,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	enrollment.CreatedAt = row.CreatedAt
	return nil
}

func (r *enrollmentRepo) FindAll(ctx context.Context) ([]domain.Enrollment, error) {
	var rows []enrollmentRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Enrollment, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Enrollment{
			ID:        row.ID,
			Name:      row.Name,
			Phone:     row.Phone,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
