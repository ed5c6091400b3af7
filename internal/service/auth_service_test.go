// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-auth-secret"

// TestRegister tests the Register method of AuthService.
func TestRegister(t *testing.T) {
	t.Run("SuccessfulRegistration", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockDBExecutor := new(MockDBExecutor)

		service := NewAuthService(mockDBExecutor, mockUserRepo, mockWalletRepo, testJWTSecret, time.Hour)

		mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.User).ID = 1
			}).Return(nil).Once()
		mockWalletRepo.On("EnsureWallet", ctx, mock.Anything, int64(1)).
			Return(&domain.Wallet{ID: 10, UserID: 1, Balance: decimal.Zero}, nil).Once()

		result, err := service.Register(ctx, "Test User", "Test@Example.com ", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "test@example.com", result.User.Email) // normalized
		assert.Equal(t, domain.RoleUser, result.User.Role)
		assert.NotEqual(t, "secret123", result.User.PasswordHash)

		// The token carries the expected identity claims.
		claims := jwt.MapClaims{}
		_, err = jwt.ParseWithClaims(result.Token, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		assert.NoError(t, err)
		assert.Equal(t, float64(1), claims["user_id"])
		assert.Equal(t, "user", claims["role"])

		mock.AssertExpectationsForObjects(t, mockUserRepo, mockWalletRepo)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockDBExecutor := new(MockDBExecutor)

		service := NewAuthService(mockDBExecutor, mockUserRepo, mockWalletRepo, testJWTSecret, time.Hour)

		result, err := service.Register(ctx, "Test User", "test@example.com", "abc")

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.Nil(t, result)

		mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockDBExecutor := new(MockDBExecutor)

		service := NewAuthService(mockDBExecutor, mockUserRepo, mockWalletRepo, testJWTSecret, time.Hour)

		mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*domain.User")).
			Return(util.ErrDuplicateEntry).Once()

		result, err := service.Register(ctx, "Test User", "taken@example.com", "secret123")

		assert.ErrorIs(t, err, util.ErrDuplicateEntry)
		assert.Nil(t, result)

		mockWalletRepo.AssertNotCalled(t, "EnsureWallet", mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestLogin tests the Login method of AuthService.
func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	storedUser := &domain.User{
		ID:           1,
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	t.Run("SuccessfulLogin", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockDBExecutor := new(MockDBExecutor)

		service := NewAuthService(mockDBExecutor, mockUserRepo, mockWalletRepo, testJWTSecret, time.Hour)

		mockUserRepo.On("GetUserByEmail", ctx, mock.Anything, "test@example.com").Return(storedUser, nil).Once()

		result, err := service.Login(ctx, "Test@Example.com", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, storedUser.ID, result.User.ID)

		mock.AssertExpectationsForObjects(t, mockUserRepo)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockDBExecutor := new(MockDBExecutor)

		service := NewAuthService(mockDBExecutor, mockUserRepo, mockWalletRepo, testJWTSecret, time.Hour)

		mockUserRepo.On("GetUserByEmail", ctx, mock.Anything, "test@example.com").Return(storedUser, nil).Once()

		result, err := service.Login(ctx, "test@example.com", "wrong")

		assert.ErrorIs(t, err, util.ErrUnauthorized)
		assert.Nil(t, result)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockDBExecutor := new(MockDBExecutor)

		service := NewAuthService(mockDBExecutor, mockUserRepo, mockWalletRepo, testJWTSecret, time.Hour)

		mockUserRepo.On("GetUserByEmail", ctx, mock.Anything, "nobody@example.com").Return(nil, util.ErrUserNotFound).Once()

		result, err := service.Login(ctx, "nobody@example.com", "secret123")

		// Indistinguishable from a wrong password.
		assert.ErrorIs(t, err, util.ErrUnauthorized)
		assert.Nil(t, result)
	})
}
