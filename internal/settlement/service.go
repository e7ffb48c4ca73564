package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/commissions"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/invoices"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/sellers"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/metrics"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/outbox"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/paystack"
)

// Sources label where a settlement attempt came from, for metrics.
const (
	SourceWebhook  = "webhook"
	SourceCallback = "callback"
	SourceConsumer = "consumer"
	SourceVerify   = "verify"
)

const webhookConsumer = "paystack-webhook"

// Gateway is the slice of the payment client settlement needs.
type Gateway interface {
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
	ValidSignature(body []byte, signature string) bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type saleRecorder interface {
	RecordSale(ctx context.Context, tx *gorm.DB, sale sellers.SaleRecord) error
}

type invoiceGenerator interface {
	GenerateForOrder(ctx context.Context, tx *gorm.DB, input invoices.GenerateInput) ([]models.Invoice, error)
}

type commissionRecorder interface {
	RecordOrderCommission(ctx context.Context, tx *gorm.DB, input commissions.OrderCommissionInput) (*models.CommissionTransaction, error)
}

type deliverySpawner interface {
	SpawnForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Delivery, error)
}

type notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) (*models.Notification, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type dupeChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
}

// Service turns verified gateway payments into settled orders: stock,
// purchase records, seller analytics, invoices, commission, delivery
// and the outbox event, all in one transaction.
type Service interface {
	// SettleByReference verifies the reference with the gateway and
	// settles the order. Replays on an already settled order are
	// no-ops that return the order unchanged.
	SettleByReference(ctx context.Context, reference, source string) (*models.Order, error)
	// VerifyForBuyer settles on behalf of the order's buyer, refusing
	// anyone else's reference.
	VerifyForBuyer(ctx context.Context, buyerID uuid.UUID, reference string) (*models.Order, error)
	// HandleWebhook authenticates a raw gateway webhook and queues the
	// settlement for the worker, so the gateway is acked immediately.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// Deps bundles the collaborators the settlement service drives.
type Deps struct {
	Repo        Repository
	Products    products.Repository
	Sellers     saleRecorder
	Invoices    invoiceGenerator
	Commissions commissionRecorder
	Deliveries  deliverySpawner
	Notifier    notifier
	Outbox      eventEmitter
	Dedupe      dupeChecker
	Gateway     Gateway
	Runner      txRunner
	Metrics     *metrics.SettlementMetrics
	Logger      *logger.Logger
}

type service struct {
	deps Deps
}

// NewService wires the settlement service. Dedupe, Metrics and Logger
// may be nil.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("settlement repository required")
	case deps.Products == nil:
		return nil, fmt.Errorf("product repository required")
	case deps.Sellers == nil:
		return nil, fmt.Errorf("seller service required")
	case deps.Invoices == nil:
		return nil, fmt.Errorf("invoice service required")
	case deps.Commissions == nil:
		return nil, fmt.Errorf("commission service required")
	case deps.Deliveries == nil:
		return nil, fmt.Errorf("delivery service required")
	case deps.Notifier == nil:
		return nil, fmt.Errorf("notification service required")
	case deps.Outbox == nil:
		return nil, fmt.Errorf("outbox service required")
	case deps.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case deps.Runner == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{deps: deps}, nil
}

func (s *service) SettleByReference(ctx context.Context, reference, source string) (*models.Order, error) {
	start := time.Now()
	order, err := s.settle(ctx, reference, source)
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveDuration(source, time.Since(start))
		if err != nil {
			s.deps.Metrics.IncFailure(source)
		}
	}
	return order, err
}

func (s *service) VerifyForBuyer(ctx context.Context, buyerID uuid.UUID, reference string) (*models.Order, error) {
	order, err := s.deps.Repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown order reference")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
	}
	return s.SettleByReference(ctx, reference, SourceVerify)
}

func (s *service) settle(ctx context.Context, reference, source string) (*models.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}

	order, err := s.deps.Repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown order reference")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading order")
	}

	if order.PaymentStatus == enums.PaymentStatusCompleted {
		if s.deps.Metrics != nil {
			s.deps.Metrics.IncSkipped(source)
		}
		return order, nil
	}
	if order.PaymentStatus == enums.PaymentStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order was cancelled")
	}

	txn, err := s.deps.Gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !txn.Succeeded() {
		if err := s.deps.Repo.MarkPaymentFailed(ctx, order.ID); err != nil && s.deps.Logger != nil {
			s.deps.Logger.Error(ctx, "marking payment failed", err)
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not successful").
			WithDetails(map[string]any{"gateway_status": txn.Status})
	}
	if txn.AmountMinor != order.AmountMinor || !strings.EqualFold(txn.Currency, string(order.Currency)) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "gateway amount does not match order").
			WithDetails(map[string]any{
				"order_amount":   order.AmountMinor,
				"gateway_amount": txn.AmountMinor,
				"order_currency": string(order.Currency),
			})
	}

	paidAt := time.Now().UTC()
	if txn.PaidAt != nil {
		paidAt = txn.PaidAt.UTC()
	}

	err = s.deps.Runner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.settleInTx(ctx, tx, order, paidAt)
	})
	if err != nil {
		return nil, err
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.IncSuccess(source)
	}
	return order, nil
}

func (s *service) settleInTx(ctx context.Context, tx *gorm.DB, order *models.Order, paidAt time.Time) error {
	repo := s.deps.Repo.WithTx(tx)

	rows, err := repo.MarkPaid(ctx, order.ID, paidAt)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "marking order paid")
	}
	if rows == 0 {
		// A concurrent run settled the order between our read and this
		// claim. Nothing left to do.
		return nil
	}
	order.Status = enums.OrderStatusConfirmed
	order.PaymentStatus = enums.PaymentStatusCompleted
	order.PaidAt = &paidAt

	if order.CartID != nil {
		if err := repo.MarkCartCheckedOut(ctx, *order.CartID); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "closing cart")
		}
	}

	productsRepo := s.deps.Products.WithTx(tx)
	for _, item := range order.Items {
		if err := productsRepo.DecrementStockFloored(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "decrementing stock")
		}
		if err := repo.CreatePurchase(ctx, &models.ProductPurchase{
			ProductID: item.ProductID,
			OrderID:   order.ID,
			BuyerID:   order.BuyerID,
			SellerID:  item.SellerID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording purchase")
		}
	}

	slices := sellerSlices(order)
	for _, slice := range slices {
		if err := s.deps.Sellers.RecordSale(ctx, tx, sellers.SaleRecord{
			SellerID: slice.sellerID,
			OrderID:  order.ID,
			Units:    slice.units,
			Revenue:  slice.revenue,
			PaidAt:   paidAt,
		}); err != nil {
			return err
		}
	}

	invoiceSlices := make([]invoices.SellerSlice, 0, len(slices))
	for _, slice := range slices {
		invoiceSlices = append(invoiceSlices, invoices.SellerSlice{
			SellerID: slice.sellerID,
			Amount:   slice.revenue,
		})
	}
	if _, err := s.deps.Invoices.GenerateForOrder(ctx, tx, invoices.GenerateInput{
		OrderID:   order.ID,
		Reference: order.Reference,
		Currency:  order.Currency,
		Slices:    invoiceSlices,
		PaidAt:    paidAt,
	}); err != nil {
		return err
	}

	if _, err := s.deps.Commissions.RecordOrderCommission(ctx, tx, commissions.OrderCommissionInput{
		BuyerID:    order.BuyerID,
		OrderID:    order.ID,
		TotalMinor: order.AmountMinor,
		Currency:   order.Currency,
		Reference:  order.Reference,
		PaidAt:     paidAt,
	}); err != nil {
		return err
	}

	// Delivery spawn and the inbox messages are best effort: the money
	// has moved, so their failures are logged instead of unwinding the
	// settlement.
	var softErr error
	if order.ShippingAddress != nil && order.ShippingAddress.CourierRequested() {
		if _, err := s.deps.Deliveries.SpawnForOrder(ctx, tx, order); err != nil {
			softErr = multierr.Append(softErr, fmt.Errorf("spawning delivery: %w", err))
		}
	}

	if _, err := s.deps.Notifier.Notify(ctx, tx, notifications.NotifyInput{
		UserID: order.BuyerID,
		Type:   enums.NotificationTypeOrderPaid,
		Title:  "Payment received",
		Body:   fmt.Sprintf("Your order %s is confirmed.", order.Reference),
		Data:   map[string]any{"order_id": order.ID.String(), "reference": order.Reference},
	}); err != nil {
		softErr = multierr.Append(softErr, fmt.Errorf("notifying buyer: %w", err))
	}

	if err := s.notifySellers(ctx, tx, repo, order, slices); err != nil {
		softErr = multierr.Append(softErr, err)
	}

	if softErr != nil && s.deps.Logger != nil {
		s.deps.Logger.Error(s.deps.Logger.WithOrderID(ctx, order.ID.String()),
			"settlement side effects failed", softErr)
	}

	return s.deps.Outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderSettled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: order.BuyerID, Role: string(enums.UserRoleBuyer)},
		Data: map[string]any{
			"reference":    order.Reference,
			"amount_minor": order.AmountMinor,
			"currency":     string(order.Currency),
			"paid_at":      paidAt,
		},
		Version:    1,
		OccurredAt: paidAt,
	})
}

// notifySellers tells each seller about their share of the sale.
func (s *service) notifySellers(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, slices []sellerSlice) error {
	sellerIDs := make([]uuid.UUID, 0, len(slices))
	for _, slice := range slices {
		sellerIDs = append(sellerIDs, slice.sellerID)
	}
	userIDs, err := repo.SellerUserIDs(ctx, sellerIDs)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolving seller users")
	}
	for _, slice := range slices {
		userID, ok := userIDs[slice.sellerID]
		if !ok {
			continue
		}
		if _, err := s.deps.Notifier.Notify(ctx, tx, notifications.NotifyInput{
			UserID: userID,
			Type:   enums.NotificationTypePaymentReceived,
			Title:  "You made a sale",
			Body:   fmt.Sprintf("Order %s: %d unit(s) sold for %s %s.", order.Reference, slice.units, slice.revenue.StringFixed(2), order.Currency),
			Data: map[string]any{
				"order_id":  order.ID.String(),
				"reference": order.Reference,
				"units":     slice.units,
				"revenue":   slice.revenue.StringFixed(2),
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

type sellerSlice struct {
	sellerID uuid.UUID
	units    int64
	revenue  decimal.Decimal
}

// sellerSlices groups the order's items per seller, preserving the
// order in which sellers first appear.
func sellerSlices(order *models.Order) []sellerSlice {
	index := make(map[uuid.UUID]int, len(order.Items))
	var slices []sellerSlice
	for _, item := range order.Items {
		i, ok := index[item.SellerID]
		if !ok {
			i = len(slices)
			index[item.SellerID] = i
			slices = append(slices, sellerSlice{sellerID: item.SellerID})
		}
		slices[i].units += int64(item.Quantity)
		slices[i].revenue = slices[i].revenue.Add(item.LineTotal)
	}
	return slices
}

// webhookEvent is the subset of the gateway's webhook payload the
// handler reads.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
	} `json:"data"`
}

func (s *service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.deps.Gateway.ValidSignature(body, signature) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeValidation, "malformed webhook payload")
	}
	if event.Event != "charge.success" {
		if s.deps.Metrics != nil {
			s.deps.Metrics.IncSkipped(SourceWebhook)
		}
		return nil
	}
	if event.Data.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook payload has no reference")
	}

	if s.deps.Dedupe != nil {
		eventID := webhookEventID(event)
		processed, err := s.deps.Dedupe.CheckAndMarkProcessed(ctx, webhookConsumer, eventID)
		if err != nil {
			// Redis being down must not drop a payment; settlement is
			// idempotent on its own.
			if s.deps.Logger != nil {
				s.deps.Logger.Error(ctx, "webhook dedupe check failed", err)
			}
		} else if processed {
			if s.deps.Metrics != nil {
				s.deps.Metrics.IncSkipped(SourceWebhook)
			}
			return nil
		}
	}

	order, err := s.deps.Repo.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "unknown order reference")
		}
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading order")
	}
	if order.PaymentStatus == enums.PaymentStatusCompleted {
		if s.deps.Metrics != nil {
			s.deps.Metrics.IncSkipped(SourceWebhook)
		}
		return nil
	}

	// The webhook only records that the charge succeeded, so the
	// gateway gets its ack right away. The worker picks the event up
	// off the outbox and runs the settlement.
	return s.deps.Runner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.deps.Outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentSucceeded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data:          map[string]any{"reference": order.Reference},
			Version:       1,
			OccurredAt:    time.Now().UTC(),
		})
	})
}

// webhookEventID derives a stable id for dedupe from the gateway's
// numeric event id and reference.
func webhookEventID(event webhookEvent) uuid.UUID {
	seed := fmt.Sprintf("%s:%d:%s", event.Event, event.Data.ID, event.Data.Reference)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}
