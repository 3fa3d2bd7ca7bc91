package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironabhi05/scatch-backend/internal/auth"
	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/service"
	"github.com/ironabhi05/scatch-backend/pkg/health"
	"github.com/ironabhi05/scatch-backend/pkg/middleware"
)

// RouterConfig carries the dependencies and settings for the HTTP router.
type RouterConfig struct {
	UserService    *service.UserService
	ProductService *service.ProductService
	CartService    *service.CartService
	OrderService   *service.OrderService
	ChatService    *service.ChatService
	JWTManager     *auth.JWTManager
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	CORS           middleware.CORSConfig
	CookieTTL      time.Duration
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("scatch"))
	r.Use(middleware.Tracing("scatch-backend"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health and observability endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	// Token validator bridging the JWT manager into the auth middleware.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.JWTManager.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
	authed := middleware.Auth(tokenValidator)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	userHandler := NewUserHandler(cfg.UserService, cfg.CookieTTL, cfg.Logger)
	productHandler := NewProductHandler(cfg.ProductService, cfg.Logger)
	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.OrderService, cfg.Logger)
	chatHandler := NewChatHandler(cfg.ChatService, cfg.Logger)

	r.Route("/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/forgot-password", userHandler.ForgotPassword)
		r.Post("/verify-otp", userHandler.VerifyOTP)
		r.Post("/reset-password", userHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", userHandler.Me)
		})
	})

	r.Route("/owners", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/login", userHandler.OwnerLogin)

		// Creating an owner requires an existing admin session.
		r.Group(func(r chi.Router) {
			r.Use(authed, adminOnly)
			r.Post("/create", userHandler.OwnerCreate)
		})
	})

	r.Route("/products", func(r chi.Router) {
		// Public catalog reads are safe to cache briefly.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON, authed, adminOnly)
			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(authed)

		r.Get("/", cartHandler.Get)
		r.Post("/clear", cartHandler.Clear)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/add", cartHandler.AddItem)
			r.Post("/delete", cartHandler.RemoveItem)
		})
	})

	r.Route("/chat", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", chatHandler.Message)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authed)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/place-order", orderHandler.PlaceOrder)
		})
		r.Get("/my-orders", orderHandler.MyOrders)
		r.Post("/cancel/{orderID}", orderHandler.CancelOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/all", orderHandler.AllOrders)
			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Post("/{orderID}/status", orderHandler.UpdateItemStatus)
			})
		})
	})

	return r
}
