package services

import (
	"context"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/repository"

	"github.com/google/uuid"
)

// Bootstrap defaults for the shop operator account. The first user to
// ever sign in, or whoever signs in with the bootstrap phone, becomes
// the admin.
const (
	bootstrapAdminPhone = "790000000"
	defaultAdminPin     = "123456"
)

type AuthService struct {
	repo repository.UserRepository
}

func NewAuthService(r repository.UserRepository) *AuthService {
	return &AuthService{repo: r}
}

// SignIn is phone-first: an unknown phone creates an account on the
// spot. Admin accounts additionally require their PIN, checked before
// anything is persisted.
func (u *AuthService) SignIn(ctx context.Context, phone, city, pin string) (*domain.User, error) {
	if !domain.ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}

	existing, err := u.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Role == domain.RoleAdmin {
			if pin == "" {
				return nil, domain.ErrPinRequired
			}
			if pin != existing.Pin {
				return nil, domain.ErrIncorrectAdminPin
			}
		}
		if city != "" && city != existing.City {
			if err := u.repo.UpdateCity(ctx, phone, city); err != nil {
				return nil, err
			}
			existing.City = city
		}
		return existing, nil
	}

	user := &domain.User{
		ID:    uuid.NewString(),
		Phone: phone,
		City:  city,
		Role:  domain.RoleCustomer,
	}

	count, err := u.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 || phone == bootstrapAdminPhone {
		user.Role = domain.RoleAdmin
		user.Pin = defaultAdminPin
	}

	if err := u.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyAdmin checks the phone/PIN pair against a stored admin account.
// Used by the back-office endpoints on every request.
func (u *AuthService) VerifyAdmin(ctx context.Context, phone, pin string) error {
	if pin == "" {
		return domain.ErrPinRequired
	}
	user, err := u.repo.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if user == nil || user.Role != domain.RoleAdmin || user.Pin != pin {
		return domain.ErrIncorrectAdminPin
	}
	return nil
}
