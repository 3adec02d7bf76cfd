package repository

import (
	"context"

	"khodarji-server/internal/domain"
)

type EnrollmentRepository interface {
	Save(ctx context.Context, enrollment *domain.Enrollment) error
	FindAll(ctx context.Context) ([]domain.Enrollment, error)
}
