// internal/service/auth_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult carries the signed token and the user it was issued to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService handles registration, login and token issuance.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// authService implements the AuthService interface.
type authService struct {
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	jwtSecret string,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}
}

// Register creates a user account with a bcrypt-hashed password and a zeroed
// wallet, then signs them in. A taken email surfaces as ErrDuplicateEntry.
func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 6 {
		return nil, util.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: failed to hash password: %w", err)
	}

	user := domain.NewUser(name, email, string(hash), domain.RoleUser)
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		if util.IsError(err, util.ErrDuplicateEntry) {
			return nil, util.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	if _, err := s.walletRepo.EnsureWallet(ctx, s.dbExecutor, user.ID); err != nil {
		return nil, fmt.Errorf("register: failed to create wallet: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if util.IsError(err, util.ErrUserNotFound) {
			return nil, util.ErrUnauthorized
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GetUser retrieves the authenticated user's profile.
func (s *authService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}
