package services

import (
	"context"
	"time"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/repository"

	"github.com/google/uuid"
)

type EnrollmentService struct {
	repo repository.EnrollmentRepository
}

func NewEnrollmentService(r repository.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{repo: r}
}

// Enroll subscribes a phone to the WhatsApp broadcast list.
func (u *EnrollmentService) Enroll(ctx context.Context, name, phone string) (*domain.Enrollment, error) {
	if !domain.ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}
	e := &domain.Enrollment{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	if err := u.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (u *EnrollmentService) List(ctx context.Context) ([]domain.Enrollment, error) {
	return u.repo.FindAll(ctx)
}
