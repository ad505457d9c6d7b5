package services

import (
	"context"
	"errors"
	"strings"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateRoleInput represents a role change by an admin
type UpdateRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// SuspendInput represents a suspension by an admin
type SuspendInput struct {
	Reason   string `json:"reason" validate:"required,max=500"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	PhotoURL    *string `json:"photoURL" validate:"omitempty,max=500"`
}

// ListUsers lists users newest first with optional search on email and display name
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params, search string) (*pagination.Page[*models.User], error) {
	users, total, err := s.userRepo.List(ctx, strings.TrimSpace(search), params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(users, params, total), nil
}

// GetRole returns the role stored for email. Unknown emails read as the
// default user role so the lookup never confirms account existence.
func (s *UserService) GetRole(ctx context.Context, email string) (domain.Role, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoleUser, nil
		}
		return "", err
	}
	return user.RoleValue(), nil
}

// UpdateRole sets the role of user id. actorEmail is the admin performing the change.
func (s *UserService) UpdateRole(ctx context.Context, id uint, actorEmail string, input *UpdateRoleInput) (*models.User, error) {
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Email == actorEmail {
		return nil, domain.ErrCannotChangeOwnRole
	}

	user.Role = role.String()
	if role != domain.RoleSuspended {
		user.SuspendReason = ""
		user.SuspendFeedback = ""
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user role changed",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("by", actorEmail),
	)
	return user, nil
}

// Suspend moves user id to the suspended role and records why
func (s *UserService) Suspend(ctx context.Context, id uint, actorEmail string, input *SuspendInput) (*models.User, error) {
	user, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Email == actorEmail {
		return nil, domain.ErrCannotChangeOwnRole
	}

	user.Role = domain.RoleSuspended.String()
	user.SuspendReason = strings.TrimSpace(input.Reason)
	user.SuspendFeedback = strings.TrimSpace(input.Feedback)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user suspended", zap.String("email", user.Email), zap.String("by", actorEmail))
	return user, nil
}

// DeleteUser removes user id
func (s *UserService) DeleteUser(ctx context.Context, id uint, actorEmail string) error {
	user, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Email == actorEmail {
		return domain.ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info(ctx, "user deleted", zap.String("email", user.Email), zap.String("by", actorEmail))
	return nil
}

// GetProfile returns the caller's record
func (s *UserService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates the caller's display fields
func (s *UserService) UpdateProfile(ctx context.Context, email string, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, email)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*input.PhotoURL)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) getByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
