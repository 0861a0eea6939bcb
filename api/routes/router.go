package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tiimbooktu/artmarket-backend/api/controllers"
	webhookcontrollers "github.com/tiimbooktu/artmarket-backend/api/controllers/webhooks"
	"github.com/tiimbooktu/artmarket-backend/api/middleware"
	"github.com/tiimbooktu/artmarket-backend/internal/cart"
	"github.com/tiimbooktu/artmarket-backend/internal/catalog"
	"github.com/tiimbooktu/artmarket-backend/internal/orders"
	"github.com/tiimbooktu/artmarket-backend/internal/payments"
	paystackwebhook "github.com/tiimbooktu/artmarket-backend/internal/webhooks/paystack"
	"github.com/tiimbooktu/artmarket-backend/internal/wishlist"
	"github.com/tiimbooktu/artmarket-backend/pkg/config"
	"github.com/tiimbooktu/artmarket-backend/pkg/db"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/metrics"
	"github.com/tiimbooktu/artmarket-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Catalog        catalog.Reader
	Cart           cart.Service
	Orders         orders.Service
	Payments       payments.Service
	Wishlist       wishlist.Service
	Finalizer      *paystackwebhook.Finalizer
	WebhookMetrics *metrics.WebhookMetrics
	Gatherer       prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paystack", webhookcontrollers.PaystackWebhook(deps.Finalizer, cfg.Paystack.SecretKey, deps.WebhookMetrics, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/artworks", controllers.ArtworkList(deps.Catalog, logg))
		r.Get("/artworks/{artworkId}", controllers.ArtworkDetail(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(deps.Orders, deps.Payments, logg))
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
				r.Post("/{orderId}/checkout", controllers.Checkout(deps.Payments, logg))
				r.Get("/{orderId}/payment", controllers.PaymentVerify(deps.Payments, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
				r.Post("/items", controllers.WishlistAddItem(deps.Wishlist, logg))
				r.Delete("/items/{artworkId}", controllers.WishlistRemoveItem(deps.Wishlist, logg))
			})

			r.Delete("/payments/recurring", controllers.RecurringDisable(deps.Payments, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
				r.Patch("/orders/{orderId}/status", controllers.AdminOrderStatus(deps.Orders, logg))
			})
		})
	})

	return r
}
