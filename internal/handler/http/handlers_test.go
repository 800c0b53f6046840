package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldermoor/storefront/internal/auth"
	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/pkg/health"
	"github.com/aldermoor/storefront/pkg/middleware"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, params pagination.Params) ([]*domain.User, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockTokenRepo) Find(ctx context.Context, userID, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, userID, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Delete(ctx context.Context, userID, tokenHash string) (bool, error) {
	args := m.Called(ctx, userID, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter, params pagination.Params) ([]*domain.Product, int, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) Update(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPostRepo) List(ctx context.Context, filter repository.PostFilter, params pagination.Params) ([]*domain.Post, int, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Int(1), args.Error(2)
}

type mockWishlistRepo struct {
	mock.Mock
}

func (m *mockWishlistRepo) Add(ctx context.Context, userID, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *mockWishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *mockWishlistRepo) List(ctx context.Context, userID string, params pagination.Params) ([]*domain.WishlistItem, int, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.WishlistItem), args.Int(1), args.Error(2)
}

func (m *mockWishlistRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

// nopEvents drops all lifecycle events.
type nopEvents struct{}

func (nopEvents) PublishUserRegistered(context.Context, *domain.User) error       { return nil }
func (nopEvents) PublishUserUpdated(context.Context, *domain.User) error          { return nil }
func (nopEvents) PublishUserSessionsRevoked(context.Context, string, int64) error { return nil }

// ============================================================================
// Test server fixture
// ============================================================================

type testServer struct {
	router    http.Handler
	jwt       *auth.JWTManager
	users     *mockUserRepo
	tokens    *mockTokenRepo
	products  *mockProductRepo
	posts     *mockPostRepo
	wishlists *mockWishlistRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtManager, err := auth.NewJWTManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	s := &testServer{
		jwt:       jwtManager,
		users:     new(mockUserRepo),
		tokens:    new(mockTokenRepo),
		products:  new(mockProductRepo),
		posts:     new(mockPostRepo),
		wishlists: new(mockWishlistRepo),
	}

	authService := service.NewAuthService(s.users, s.tokens, jwtManager, hasher, nopEvents{}, logger)
	userService := service.NewUserService(s.users, s.tokens, hasher, nopEvents{}, logger)
	productService := service.NewProductService(s.products, logger)
	postService := service.NewPostService(s.posts, logger)
	wishlistService := service.NewWishlistService(s.wishlists, s.products, logger)

	s.router = NewRouter(
		authService,
		userService,
		productService,
		postService,
		wishlistService,
		health.NewHandler(),
		logger,
		RouterConfig{
			CORS:             middleware.DefaultCORSConfig(),
			AuthRateRPS:      100,
			AuthRateBurst:    100,
			ProductCacheSecs: 60,
		},
	)
	return s
}

func (s *testServer) accessTokenFor(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return token
}

func testUser(t *testing.T, role string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("SecurePass123"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	return &domain.User{
		ID:           "user-1",
		Email:        "jane@example.com",
		PasswordHash: string(hash),
		FirstName:    "Jane",
		LastName:     "Doe",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
