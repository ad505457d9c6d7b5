package services

import (
	"context"
	"errors"
	"strings"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/jwt"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   *jwt.Service
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, tokens *jwt.Service) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"max=100"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// Register creates a user-role account and issues a token
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Password:    hashed,
		Role:        domain.RoleUser.String(),
		DisplayName: strings.TrimSpace(input.DisplayName),
		PhotoURL:    strings.TrimSpace(input.PhotoURL),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	token, err := s.tokens.GenerateAccessToken(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", zap.String("email", user.Email))

	return &AuthResponse{User: user, AccessToken: token}, nil
}

// Login authenticates a user. Suspended accounts still receive a token;
// the role gate keeps them out of gated operations.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user logged in", zap.String("email", user.Email))

	return &AuthResponse{User: user, AccessToken: token}, nil
}

// Me returns the caller's record
func (s *AuthService) Me(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
