package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adeyemiadedayo/kasuwa-backend/api/controllers"
	"github.com/adeyemiadedayo/kasuwa-backend/api/routes"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/cart"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/commissions"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/deliveries"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/fees"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/invoices"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/orders"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/sellers"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/settlement"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/courierloc"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/metrics"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/outbox"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/outbox/idempotency"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/paystack"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "kasuwa-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(cfg.DB)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	gateway, err := paystack.New(cfg.Paystack)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	webhookDedupe, err := idempotency.NewManager(redisClient, cfg.Paystack.WebhookTTL)
	if err != nil {
		return err
	}
	locations, err := courierloc.NewStore(redisClient, cfg.Delivery.LocationTTL)
	if err != nil {
		return err
	}

	gdb := dbClient.Gorm()
	cartRepo := cart.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	settlementRepo := settlement.NewRepository(gdb)
	deliveryRepo := deliveries.NewRepository(gdb)
	commissionRepo := commissions.NewRepository(gdb)
	sellerRepo := sellers.NewRepository(gdb)
	invoiceRepo := invoices.NewRepository(gdb)
	notificationRepo := notifications.NewRepository(gdb)

	calc, err := fees.NewCalculator(fees.Config{
		RatePerKm:         cfg.Delivery.RatePerKm,
		DefaultDistanceKm: cfg.Delivery.DefaultDistanceKm,
	})
	if err != nil {
		return err
	}

	productSvc, err := products.NewService(productRepo)
	if err != nil {
		return err
	}
	cartSvc, err := cart.NewService(cartRepo, productSvc)
	if err != nil {
		return err
	}
	sellerSvc, err := sellers.NewService(sellerRepo)
	if err != nil {
		return err
	}
	invoiceSvc, err := invoices.NewService(invoiceRepo)
	if err != nil {
		return err
	}
	notificationSvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		return err
	}
	commissionSvc, err := commissions.NewService(commissionRepo, cfg.Commission)
	if err != nil {
		return err
	}
	deliverySvc, err := deliveries.NewService(deliveryRepo, locations, calc, dbClient, notificationSvc, logg, cfg.Delivery)
	if err != nil {
		return err
	}
	orderSvc, err := orders.NewService(orderRepo, cartRepo, productSvc, calc, gateway, dbClient,
		notificationSvc, logg, cfg.Paystack)
	if err != nil {
		return err
	}
	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), logg)
	settlementSvc, err := settlement.NewService(settlement.Deps{
		Repo:        settlementRepo,
		Products:    productRepo,
		Sellers:     sellerSvc,
		Invoices:    invoiceSvc,
		Commissions: commissionSvc,
		Deliveries:  deliverySvc,
		Notifier:    notificationSvc,
		Outbox:      outboxSvc,
		Dedupe:      webhookDedupe,
		Gateway:     gateway,
		Runner:      dbClient,
		Metrics:     settlementMetrics,
		Logger:      logg,
	})
	if err != nil {
		return err
	}

	handler := routes.New(cfg.JWT, logg, routes.Controllers{
		Health:        controllers.NewHealthController(dbClient, redisClient, logg),
		Cart:          controllers.NewCartController(cartSvc, logg),
		Products:      controllers.NewProductController(productSvc, sellerSvc, logg),
		Orders:        controllers.NewOrderController(orderSvc, settlementSvc, logg),
		Deliveries:    controllers.NewDeliveryController(deliverySvc, logg),
		Notifications: controllers.NewNotificationController(notificationSvc, logg),
		Commissions:   controllers.NewCommissionController(commissionSvc, logg),
		Sellers:       controllers.NewSellerController(sellerSvc, invoiceSvc, logg),
		Webhooks:      controllers.NewWebhookController(settlementSvc, logg),
	}, registry)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "api listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
