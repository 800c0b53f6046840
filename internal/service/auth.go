package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldermoor/storefront/internal/auth"
	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	apperrors "github.com/aldermoor/storefront/pkg/errors"
)

// invalidCredentials is the single message returned for every login failure
// so responses cannot be used to probe which accounts exist.
const invalidCredentials = "invalid credentials"

// EventPublisher publishes user lifecycle events. Failures are logged, never
// surfaced to callers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
	PublishUserSessionsRevoked(ctx context.Context, userID string, sessions int64) error
}

// AuthService implements registration, login, and the refresh token lifecycle.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	jwt    *auth.JWTManager
	hasher auth.PasswordHasher
	events EventPublisher
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	jwt *auth.JWTManager,
	hasher auth.PasswordHasher,
	events EventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		jwt:    jwt,
		hasher: hasher,
		events: events,
		logger: logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// NormalizeEmail lowercases and trims an email so lookups are canonical.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account, hashes the password, and returns the
// user with a fresh token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.FirstName == "" {
		return nil, nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, nil, apperrors.InvalidInput("last name is required")
	}
	if err := auth.ValidatePasswordStrength(input.Password); err != nil {
		return nil, nil, apperrors.InvalidInput(err.Error())
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user by email and password. Every failure mode
// returns the same 401 regardless of whether the account exists, is
// deactivated, or the password is wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized(invalidCredentials)
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized(invalidCredentials)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, nil, apperrors.Unauthorized(invalidCredentials)
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to record last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		user.LastLogin = &now
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented token is verified, consumed,
// and replaced by a brand new pair. A token can be consumed exactly once;
// replays and races lose at the DELETE gate.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	tokenHash := hashToken(refreshToken)
	stored, err := s.tokens.Find(ctx, claims.UserID, tokenHash)
	if err != nil {
		return nil, apperrors.Unauthorized("refresh token not recognized")
	}

	if time.Now().UTC().After(stored.ExpiresAt) {
		// Stale row; clean it up and reject.
		if _, err := s.tokens.Delete(ctx, claims.UserID, tokenHash); err != nil {
			s.logger.ErrorContext(ctx, "failed to remove expired refresh token",
				slog.String("user_id", claims.UserID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NotFound("user", claims.UserID)
	}
	if !user.IsActive {
		return nil, apperrors.NotFound("user", claims.UserID)
	}

	// Consume the token. Zero rows deleted means a concurrent refresh or a
	// replay got here first; only the request that deletes the row wins.
	deleted, err := s.tokens.Delete(ctx, claims.UserID, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !deleted {
		return nil, apperrors.Unauthorized("refresh token already used")
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return tokens, nil
}

// Logout ends the session identified by the presented refresh token. The
// operation is idempotent: an unknown or already-consumed token is a no-op.
// The delete is keyed by the authenticated user, so a token belonging to
// someone else can never be removed.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.InvalidInput("refresh token is required")
	}

	tokenHash := hashToken(refreshToken)
	deleted, err := s.tokens.Delete(ctx, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
		slog.Bool("session_removed", deleted),
	)

	return nil
}

// LogoutAll ends every session for the user and reports how many were ended.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.tokens.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens: %w", err)
	}

	if err := s.events.PublishUserSessionsRevoked(ctx, userID, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.sessions_revoked event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "all sessions revoked",
		slog.String("user_id", userID),
		slog.Int64("sessions", n),
	)

	return n, nil
}

// ValidateAccessToken verifies an access token for the HTTP middleware.
func (s *AuthService) ValidateAccessToken(token string) (*auth.Claims, error) {
	return s.jwt.ValidateAccessToken(token)
}

// issueTokenPair generates an access and refresh token and persists the
// refresh token digest. The pair is only returned once the digest is stored;
// a failed insert means no token escapes.
func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.jwt.RefreshExpiry())
	if err := s.tokens.Create(ctx, user.ID, hashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken returns the hex-encoded SHA-256 digest of a token. Digests are
// what gets persisted; the raw token exists only in transit.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
