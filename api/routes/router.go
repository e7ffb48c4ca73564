package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adeyemiadedayo/kasuwa-backend/api/controllers"
	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Health        *controllers.HealthController
	Cart          *controllers.CartController
	Products      *controllers.ProductController
	Orders        *controllers.OrderController
	Deliveries    *controllers.DeliveryController
	Notifications *controllers.NotificationController
	Commissions   *controllers.CommissionController
	Sellers       *controllers.SellerController
	Webhooks      *controllers.WebhookController
}

// New assembles the HTTP surface: public health, webhook and referral
// endpoints, then role-scoped groups behind JWT auth.
func New(cfg config.JWTConfig, logg *logger.Logger, c Controllers, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Recover(logg))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", c.Health.Live)
	r.Get("/readyz", c.Health.Ready)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated: gateway callbacks and referral clicks.
		r.Post("/webhooks/paystack", c.Webhooks.Paystack)
		r.Get("/payments/callback", c.Orders.PaymentCallback)
		r.Get("/referrals/{code}/click", c.Commissions.TrackClick)
		r.Get("/products/{productID}", c.Products.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg, logg))

			// Any signed-in user.
			r.Get("/notifications", c.Notifications.List)
			r.Post("/notifications/{notificationID}/read", c.Notifications.MarkRead)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleBuyer, enums.UserRoleAdmin))

				r.Get("/cart", c.Cart.Get)
				r.Post("/cart/items", c.Cart.AddItem)
				r.Put("/cart/items/{productID}", c.Cart.UpdateItem)
				r.Delete("/cart/items/{productID}", c.Cart.RemoveItem)

				r.Post("/orders/buy-now", c.Orders.BuyNow)
				r.Post("/orders/checkout", c.Orders.Checkout)
				r.Get("/orders", c.Orders.List)
				r.Get("/orders/verify/{reference}", c.Orders.Verify)
				r.Get("/orders/{orderID}", c.Orders.Get)
				r.Post("/orders/{orderID}/cancel", c.Orders.Cancel)
				r.Delete("/orders/{orderID}", c.Orders.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleSeller, enums.UserRoleAdmin))

				r.Post("/products", c.Products.Create)
				r.Get("/seller/products", c.Products.ListMine)
				r.Get("/seller/profile", c.Sellers.Profile)
				r.Get("/seller/analytics", c.Sellers.Analytics)
				r.Get("/seller/events", c.Sellers.ListEvents)
				r.Get("/seller/invoices", c.Sellers.ListInvoices)
				r.Get("/seller/invoices/{invoiceID}", c.Sellers.GetInvoice)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleCourier, enums.UserRoleAdmin))

				r.Post("/courier/location", c.Deliveries.PingLocation)
				r.Get("/courier/deliveries/available", c.Deliveries.ListAvailable)
				r.Get("/courier/deliveries", c.Deliveries.ListMine)
				r.Get("/courier/deliveries/{deliveryID}", c.Deliveries.Get)
				r.Post("/courier/deliveries/{deliveryID}/accept", c.Deliveries.Accept)
				r.Post("/courier/deliveries/{deliveryID}/status", c.Deliveries.UpdateStatus)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAgent, enums.UserRoleAdmin))

				r.Get("/agent/balance", c.Commissions.Balance)
				r.Get("/agent/transactions", c.Commissions.ListTransactions)
				r.Post("/agent/withdrawals", c.Commissions.Withdraw)
				r.Post("/agent/referral-links", c.Commissions.CreateReferralLink)
			})
		})
	})

	return r
}
