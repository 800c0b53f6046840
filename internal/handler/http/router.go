package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/pkg/health"
	"github.com/aldermoor/storefront/pkg/middleware"
)

// RouterConfig carries the knobs the router needs beyond its handlers.
type RouterConfig struct {
	CORS             middleware.CORSConfig
	AuthRateRPS      int
	AuthRateBurst    int
	ProductCacheSecs int
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	productService *service.ProductService,
	postService *service.PostService,
	wishlistService *service.WishlistService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler := NewAuthHandler(authService, logger)
	userHandler := NewUserHandler(userService)
	adminHandler := NewAdminHandler(userService)
	productHandler := NewProductHandler(productService)
	postHandler := NewPostHandler(postService)
	wishlistHandler := NewWishlistHandler(wishlistService)

	// Token validator bridging to the auth service.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
	requireAuth := middleware.Auth(tokenValidator)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	// Auth endpoints. Credential endpoints are rate limited per IP.
	// Logout-all takes no body, so it skips the content type check.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.RateLimit(cfg.AuthRateRPS, cfg.AuthRateBurst, logger))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.With(ContentTypeJSON).Post("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.With(ContentTypeJSON).Post("/logout", authHandler.Logout)
			r.Post("/logout-all", authHandler.LogoutAll)
		})
	})

	// Account and wishlist endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/me", userHandler.GetProfile)
		r.With(ContentTypeJSON).Put("/me", userHandler.UpdateProfile)
		r.With(ContentTypeJSON).Post("/me/change-password", userHandler.ChangePassword)

		r.Get("/wishlist", wishlistHandler.List)
		r.Get("/wishlist/{productId}", wishlistHandler.Exists)
		r.Post("/wishlist/{productId}", wishlistHandler.Add)
		r.Delete("/wishlist/{productId}", wishlistHandler.Remove)
	})

	// Catalog endpoints: public cacheable reads, admin writes.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.With(middleware.CacheControl(cfg.ProductCacheSecs)).Get("/", productHandler.List)
		r.With(middleware.CacheControl(cfg.ProductCacheSecs)).Get("/{id}", productHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.With(ContentTypeJSON).Post("/", productHandler.Create)
			r.With(ContentTypeJSON).Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	// Blog endpoints. Reads are public but pick up viewer identity when a
	// bearer token is present, so authors and admins can see drafts.
	optionalAuth := middleware.OptionalAuth(tokenValidator)
	r.Route("/api/v1/posts", func(r chi.Router) {
		r.With(optionalAuth).Get("/", postHandler.List)
		r.With(optionalAuth).Get("/tag/{tag}", postHandler.List)
		r.With(optionalAuth).Get("/{id}", postHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, ContentTypeJSON)

			r.Post("/", postHandler.Create)
			r.Put("/{id}", postHandler.Update)
			r.Delete("/{id}", postHandler.Delete)
		})
	})

	// Admin user management
	r.Route("/api/v1/admin/users", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)

		r.Get("/", adminHandler.ListUsers)
		r.Get("/{id}", adminHandler.GetUser)
		r.With(ContentTypeJSON).Put("/{id}", adminHandler.UpdateUser)
		r.Delete("/{id}", adminHandler.DeleteUser)
	})

	return r
}
