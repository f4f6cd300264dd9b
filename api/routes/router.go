package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowmazonhq/flowmazon-backend/api/controllers"
	webhookcontrollers "github.com/flowmazonhq/flowmazon-backend/api/controllers/webhooks"
	"github.com/flowmazonhq/flowmazon-backend/api/middleware"
	"github.com/flowmazonhq/flowmazon-backend/internal/auth"
	cartsvc "github.com/flowmazonhq/flowmazon-backend/internal/cart"
	checkoutsvc "github.com/flowmazonhq/flowmazon-backend/internal/checkout"
	ordersvc "github.com/flowmazonhq/flowmazon-backend/internal/orders"
	productsvc "github.com/flowmazonhq/flowmazon-backend/internal/products"
	stripewebhook "github.com/flowmazonhq/flowmazon-backend/internal/webhooks/stripe"
	"github.com/flowmazonhq/flowmazon-backend/pkg/auth/session"
	"github.com/flowmazonhq/flowmazon-backend/pkg/config"
	"github.com/flowmazonhq/flowmazon-backend/pkg/logger"
	"github.com/flowmazonhq/flowmazon-backend/pkg/metrics"
	"github.com/flowmazonhq/flowmazon-backend/pkg/redis"
	pkgstripe "github.com/flowmazonhq/flowmazon-backend/pkg/stripe"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	SessionChecker session.Checker
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	AuthService     auth.Service
	ProductService  productsvc.Service
	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	OrderService    ordersvc.Service

	StripeClient  *pkgstripe.Client
	StripeWebhook *stripewebhook.Service
	StripeGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var rateStore middleware.RateLimitStore
	var cachePinger controllers.Pinger
	if deps.Redis != nil {
		rateStore = deps.Redis
		cachePinger = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger, logg))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhook, deps.StripeClient, deps.StripeGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.CartToken(cfg.Cart))
		r.With(middleware.RateLimit("login", 10, time.Minute, rateStore, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, cfg.Cart, logg))
		r.With(middleware.RateLimit("register", 5, time.Minute, rateStore, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, cfg.Cart, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/search", controllers.SearchProducts(deps.ProductService, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.ProductService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.CartToken(cfg.Cart))
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg))
		r.Get("/", controllers.GetCart(deps.CartService, logg))
		r.Put("/items", controllers.SetCartItem(deps.CartService, logg))
		r.Post("/items/increment", controllers.IncrementCartItem(deps.CartService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Post("/session", controllers.StartCheckoutSession(deps.CheckoutService, logg))
			r.Post("/intent", controllers.CreatePaymentIntent(deps.CheckoutService, logg))
			r.Post("/charge", controllers.DirectCharge(deps.CheckoutService, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.OrderService, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.OrderService, logg))
		})

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/products", controllers.AdminCreateProduct(deps.ProductService, logg))
			r.Patch("/products/{productID}", controllers.AdminUpdateProduct(deps.ProductService, logg))
			r.Delete("/products/{productID}", controllers.AdminDeleteProduct(deps.ProductService, logg))
			r.Patch("/orders/{orderID}/status", controllers.AdminUpdateOrderStatus(deps.OrderService, logg))
		})
	})

	return r
}
