package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aldermoor/storefront/internal/auth"
	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	apperrors "github.com/aldermoor/storefront/pkg/errors"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// UserService implements profile and account administration.
type UserService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	hasher auth.PasswordHasher
	events EventPublisher
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	hasher auth.PasswordHasher,
	events EventPublisher,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		events: events,
		logger: logger,
	}
}

// UpdateProfileInput holds the parameters for updating a user's own profile.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// AdminUpdateUserInput holds the parameters an administrator may change on
// any account.
type AdminUpdateUserInput struct {
	Role     *string
	IsActive *bool
}

// GetProfile returns the user's account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies partial changes to the user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, apperrors.InvalidInput("first name cannot be empty")
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, apperrors.InvalidInput("last name cannot be empty")
		}
		user.LastName = *input.LastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.events.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// ChangePassword verifies the current password, stores a new hash, and ends
// every existing session so stolen refresh tokens die with the old password.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if currentPassword == newPassword {
		return apperrors.InvalidInput("new password must be different from current password")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	n, err := s.tokens.DeleteByUserID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions after password change",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else if err := s.events.PublishUserSessionsRevoked(ctx, userID, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.sessions_revoked event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", userID),
	)

	return nil
}

// ListUsers returns a page of accounts. Admin only; enforced by the router.
func (s *UserService) ListUsers(ctx context.Context, params pagination.Params) ([]*domain.User, int, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns any account by ID. Admin only.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// AdminUpdateUser changes an account's role or active flag. Deactivation
// also ends the account's sessions so its refresh tokens stop working
// immediately.
func (s *UserService) AdminUpdateUser(ctx context.Context, id string, input AdminUpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Role != nil {
		if !domain.IsValidRole(*input.Role) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role: %s", *input.Role))
		}
		user.Role = *input.Role
	}

	deactivated := false
	if input.IsActive != nil {
		deactivated = user.IsActive && !*input.IsActive
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if deactivated {
		if _, err := s.tokens.DeleteByUserID(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke sessions for deactivated user",
				slog.String("user_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.events.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// DeleteUser removes an account and its sessions. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.tokens.DeleteByUserID(ctx, id); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}
