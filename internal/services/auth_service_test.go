package services

import (
	"context"
	"testing"

	"khodarji-server/internal/domain"
	"khodarji-server/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthService_SignIn(t *testing.T) {
	tests := []struct {
		name          string
		phone         string
		city          string
		pin           string
		setupMocks    func(*mocks.MockUserRepository)
		expectedError error
		expectedRole  domain.Role
	}{
		{
			name:          "invalid phone",
			phone:         "812345678",
			setupMocks:    func(mockRepo *mocks.MockUserRepository) {},
			expectedError: domain.ErrInvalidPhone,
		},
		{
			name:  "first user ever becomes admin",
			phone: "712345678",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "712345678").Return(nil, nil)
				mockRepo.On("Count", mock.Anything).Return(int64(0), nil)
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
			expectedRole: domain.RoleAdmin,
		},
		{
			name:  "bootstrap phone becomes admin even later",
			phone: "790000000",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "790000000").Return(nil, nil)
				mockRepo.On("Count", mock.Anything).Return(int64(5), nil)
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
			expectedRole: domain.RoleAdmin,
		},
		{
			name:  "later users are customers",
			phone: "712345678",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "712345678").Return(nil, nil)
				mockRepo.On("Count", mock.Anything).Return(int64(3), nil)
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
			expectedRole: domain.RoleCustomer,
		},
		{
			name:  "existing admin without pin",
			phone: "790000000",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "790000000").Return(&domain.User{
					ID: "u1", Phone: "790000000", Role: domain.RoleAdmin, Pin: "123456",
				}, nil)
			},
			expectedError: domain.ErrPinRequired,
		},
		{
			name:  "existing admin with wrong pin",
			phone: "790000000",
			pin:   "000000",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "790000000").Return(&domain.User{
					ID: "u1", Phone: "790000000", Role: domain.RoleAdmin, Pin: "123456",
				}, nil)
			},
			expectedError: domain.ErrIncorrectAdminPin,
		},
		{
			name:  "existing admin with correct pin",
			phone: "790000000",
			pin:   "123456",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "790000000").Return(&domain.User{
					ID: "u1", Phone: "790000000", Role: domain.RoleAdmin, Pin: "123456",
				}, nil)
			},
			expectedRole: domain.RoleAdmin,
		},
		{
			name:  "returning customer updates city",
			phone: "712345678",
			city:  "Irbid",
			setupMocks: func(mockRepo *mocks.MockUserRepository) {
				mockRepo.On("FindByPhone", mock.Anything, "712345678").Return(&domain.User{
					ID: "u2", Phone: "712345678", City: "Amman", Role: domain.RoleCustomer,
				}, nil)
				mockRepo.On("UpdateCity", mock.Anything, "712345678", "Irbid").Return(nil)
			},
			expectedRole: domain.RoleCustomer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockUserRepository)
			tt.setupMocks(mockRepo)

			service := NewAuthService(mockRepo)

			user, err := service.SignIn(context.Background(), tt.phone, tt.city, tt.pin)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedRole, user.Role)
				assert.Equal(t, tt.phone, user.Phone)
				if tt.city != "" {
					assert.Equal(t, tt.city, user.City)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyAdmin(t *testing.T) {
	admin := &domain.User{ID: "u1", Phone: "790000000", Role: domain.RoleAdmin, Pin: "123456"}

	t.Run("correct pair passes", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("FindByPhone", mock.Anything, "790000000").Return(admin, nil)

		service := NewAuthService(mockRepo)
		assert.NoError(t, service.VerifyAdmin(context.Background(), "790000000", "123456"))
	})

	t.Run("missing pin", func(t *testing.T) {
		service := NewAuthService(new(mocks.MockUserRepository))
		assert.ErrorIs(t, service.VerifyAdmin(context.Background(), "790000000", ""), domain.ErrPinRequired)
	})

	t.Run("customer account is rejected", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("FindByPhone", mock.Anything, "712345678").Return(&domain.User{
			ID: "u2", Phone: "712345678", Role: domain.RoleCustomer,
		}, nil)

		service := NewAuthService(mockRepo)
		assert.ErrorIs(t, service.VerifyAdmin(context.Background(), "712345678", "123456"), domain.ErrIncorrectAdminPin)
	})
}
