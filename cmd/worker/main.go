package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/commissions"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/deliveries"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/fees"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/invoices"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/sellers"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/settlement"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/courierloc"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/outbox"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/outbox/idempotency"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/paystack"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pubsub"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/redis"
)

const settlementConsumer = "settlement-worker"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "kasuwa-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logg); err != nil && ctx.Err() == nil {
		logg.Error(ctx, "worker exited", err)
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

	broker, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return err
	}
	defer broker.Close()

	dedupe, err := idempotency.NewManager(redisClient, cfg.Outbox.IdempotencyTTL)
	if err != nil {
		return err
	}
	locations, err := courierloc.NewStore(redisClient, cfg.Delivery.LocationTTL)
	if err != nil {
		return err
	}

	settlementSvc, err := buildSettlement(cfg, dbClient, gateway, locations, logg)
	if err != nil {
		return err
	}

	gdb := dbClient.Gorm()
	publisher, err := outbox.NewPublisher(
		outbox.NewRepository(gdb),
		&topicAdapter{publisher: broker.SettlementPublisher()},
		cfg.Outbox,
		logg,
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() { errCh <- publisher.Run(ctx) }()
	go func() {
		errCh <- consumeSettlements(ctx, broker, settlementSvc, dedupe, logg)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func buildSettlement(
	cfg *config.Config,
	dbClient *db.Client,
	gateway *paystack.Client,
	locations *courierloc.Store,
	logg *logger.Logger,
) (settlement.Service, error) {
	gdb := dbClient.Gorm()

	calc, err := fees.NewCalculator(fees.Config{
		RatePerKm:         cfg.Delivery.RatePerKm,
		DefaultDistanceKm: cfg.Delivery.DefaultDistanceKm,
	})
	if err != nil {
		return nil, err
	}
	sellerSvc, err := sellers.NewService(sellers.NewRepository(gdb))
	if err != nil {
		return nil, err
	}
	invoiceSvc, err := invoices.NewService(invoices.NewRepository(gdb))
	if err != nil {
		return nil, err
	}
	notificationSvc, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		return nil, err
	}
	commissionSvc, err := commissions.NewService(commissions.NewRepository(gdb), cfg.Commission)
	if err != nil {
		return nil, err
	}
	deliverySvc, err := deliveries.NewService(deliveries.NewRepository(gdb), locations, calc,
		dbClient, notificationSvc, logg, cfg.Delivery)
	if err != nil {
		return nil, err
	}

	return settlement.NewService(settlement.Deps{
		Repo:        settlement.NewRepository(gdb),
		Products:    products.NewRepository(gdb),
		Sellers:     sellerSvc,
		Invoices:    invoiceSvc,
		Commissions: commissionSvc,
		Deliveries:  deliverySvc,
		Notifier:    notificationSvc,
		Outbox:      outbox.NewService(outbox.NewRepository(gdb), logg),
		Gateway:     gateway,
		Runner:      dbClient,
		Logger:      logg,
	})
}

// topicAdapter bridges the outbox publisher onto a Pub/Sub topic.
type topicAdapter struct {
	publisher *gcppubsub.Publisher
}

func (t *topicAdapter) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	result := t.publisher.Publish(ctx, &gcppubsub.Message{Data: data, Attributes: attributes})
	_, err := result.Get(ctx)
	return err
}

// settlementEvent is the payload shape of a queued settlement request.
type settlementEvent struct {
	Reference string `json:"reference"`
}

// consumeSettlements settles every payment.succeeded event the webhook
// queued. Delivery is at-least-once; the Redis guard plus the
// conditional payment flip make replays harmless.
func consumeSettlements(
	ctx context.Context,
	broker *pubsub.Client,
	svc settlement.Service,
	dedupe *idempotency.Manager,
	logg *logger.Logger,
) error {
	sub := broker.SettlementSubscription()
	return sub.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		msgCtx = logg.WithField(msgCtx, "event_id", msg.Attributes["event_id"])

		// The topic carries every domain event; only queued payments
		// call for work here.
		if msg.Attributes["event_type"] != enums.EventPaymentSucceeded.String() {
			msg.Ack()
			return
		}

		eventID, err := uuid.Parse(msg.Attributes["event_id"])
		if err == nil {
			processed, dedupeErr := dedupe.CheckAndMarkProcessed(msgCtx, settlementConsumer, eventID)
			if dedupeErr != nil {
				logg.Error(msgCtx, "settlement dedupe check failed", dedupeErr)
			} else if processed {
				msg.Ack()
				return
			}
		}

		var envelope outbox.PayloadEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			logg.Error(msgCtx, "dropping malformed settlement event", err)
			msg.Ack()
			return
		}
		var event settlementEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil || event.Reference == "" {
			logg.Error(msgCtx, "dropping settlement event without reference", err)
			msg.Ack()
			return
		}

		if _, err := svc.SettleByReference(msgCtx, event.Reference, settlement.SourceConsumer); err != nil {
			logg.Error(logg.WithReference(msgCtx, event.Reference), "settlement failed, redelivering", err)
			msg.Nack()
			return
		}
		msg.Ack()
	})
}
