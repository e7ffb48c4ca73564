package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/cart"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/fees"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/paystack"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/workflow"
)

// Gateway is the slice of the payment client checkout needs.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) (*models.Notification, error)
}

// Service defines order operations for buyers.
type Service interface {
	// BuyNow creates a single-product order and opens a gateway
	// checkout for it, skipping the cart entirely.
	BuyNow(ctx context.Context, input BuyNowInput) (*CheckoutResult, error)
	// CheckoutCart converts the buyer's active cart into a pending
	// order and opens a gateway checkout.
	CheckoutCart(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	Get(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, buyerID uuid.UUID, page pagination.Params) ([]models.Order, int64, error)
	// Cancel stops fulfillment. Paid orders get their stock returned
	// and everyone involved is notified.
	Cancel(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	// Delete removes an order that never got paid.
	Delete(ctx context.Context, buyerID, orderID uuid.UUID) error
}

// BuyNowInput is a direct purchase of one product.
type BuyNowInput struct {
	BuyerID         uuid.UUID
	ProductID       uuid.UUID
	Quantity        int
	DiscountCode    string
	ShippingAddress *types.Address
}

// CheckoutInput converts the buyer's active cart into an order.
type CheckoutInput struct {
	BuyerID         uuid.UUID
	DiscountCode    string
	ShippingAddress *types.Address
}

// CheckoutResult pairs the created order with the hosted payment URL
// the buyer must be redirected to.
type CheckoutResult struct {
	Order            *models.Order
	AuthorizationURL string
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	products products.Service
	calc     *fees.Calculator
	gateway  Gateway
	runner   txRunner
	notify   notifier
	logg     *logger.Logger
	cfg      config.PaystackConfig
}

// NewService wires an order service with its dependencies.
func NewService(
	repo Repository,
	cartRepo cart.Repository,
	productSvc products.Service,
	calc *fees.Calculator,
	gateway Gateway,
	runner txRunner,
	notify notifier,
	logg *logger.Logger,
	cfg config.PaystackConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productSvc == nil {
		return nil, fmt.Errorf("product service required")
	}
	if calc == nil {
		return nil, fmt.Errorf("fee calculator required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		products: productSvc,
		calc:     calc,
		gateway:  gateway,
		runner:   runner,
		notify:   notify,
		logg:     logg,
		cfg:      cfg,
	}, nil
}

func (s *service) BuyNow(ctx context.Context, input BuyNowInput) (*CheckoutResult, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	priced, err := s.products.PriceItems(ctx, []products.ItemRequest{
		{ProductID: input.ProductID, Quantity: input.Quantity},
	})
	if err != nil {
		return nil, err
	}

	return s.placeOrder(ctx, placement{
		buyerID:      input.BuyerID,
		items:        priced,
		discountCode: input.DiscountCode,
		address:      input.ShippingAddress,
	})
}

func (s *service) CheckoutCart(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	activeCart, err := s.cartRepo.GetActiveByBuyer(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading cart")
	}
	if len(activeCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	requests := make([]products.ItemRequest, 0, len(activeCart.Items))
	for _, item := range activeCart.Items {
		requests = append(requests, products.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	priced, err := s.products.PriceItems(ctx, requests)
	if err != nil {
		return nil, err
	}

	return s.placeOrder(ctx, placement{
		buyerID:      input.BuyerID,
		cartID:       &activeCart.ID,
		items:        priced,
		discountCode: input.DiscountCode,
		address:      input.ShippingAddress,
	})
}

type placement struct {
	buyerID      uuid.UUID
	cartID       *uuid.UUID
	items        []products.PricedItem
	discountCode string
	address      *types.Address
}

func (s *service) placeOrder(ctx context.Context, p placement) (*CheckoutResult, error) {
	buyer, err := s.repo.GetBuyer(ctx, p.buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "buyer not found")
	}

	splitTarget, err := s.validateSellers(ctx, p.buyerID, p.items)
	if err != nil {
		return nil, err
	}

	discount, percent, err := s.resolveDiscount(ctx, p.discountCode)
	if err != nil {
		return nil, err
	}

	deliveryFee, err := s.deliveryFee(p.address)
	if err != nil {
		return nil, err
	}

	var discountProducts map[uuid.UUID]bool
	if discount != nil {
		discountProducts = make(map[uuid.UUID]bool, len(discount.Products))
		for _, product := range discount.Products {
			discountProducts[product.ID] = true
		}
	}

	lines := make([]fees.Line, 0, len(p.items))
	qualifies := false
	for _, item := range p.items {
		line := fees.Line{UnitPrice: item.Product.Price, Quantity: item.Quantity}
		if discountProducts[item.Product.ID] {
			line.Discountable = true
			qualifies = true
		}
		lines = append(lines, line)
	}
	if discount != nil && !qualifies {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code does not apply to any item in this order")
	}

	totals, err := fees.OrderTotals(lines, percent, deliveryFee)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Reference:       newReference(),
		BuyerID:         p.buyerID,
		CartID:          p.cartID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		Currency:        enums.CurrencyGHS,
		Subtotal:        totals.Subtotal,
		DeliveryFee:     totals.DeliveryFee,
		DiscountAmount:  totals.DiscountAmount,
		Total:           totals.Total,
		AmountMinor:     totals.AmountMinor,
		ShippingAddress: p.address,
	}
	if discount != nil {
		order.DiscountCode = &discount.Code
	}
	for _, item := range p.items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.Product.ID,
			SellerID:    item.Product.SellerID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price,
			LineTotal:   item.LineTotal(),
		})
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "creating order")
		}
		if discount != nil {
			if err := repo.RedeemDiscount(ctx, discount.ID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "discount code exhausted")
				}
				return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "redeeming discount")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The cart stays active until payment settles; settlement closes
	// it through the cart id frozen on the order.
	//
	// The gateway call happens outside the transaction. If it fails the
	// order row and the discount redemption are already committed, so
	// roll both back explicitly.
	comp := workflow.NewCompensator()
	if discount != nil {
		comp.Add("release discount", func(ctx context.Context) error {
			return s.repo.ReleaseDiscount(ctx, discount.ID)
		})
	}
	comp.Add("delete order", func(ctx context.Context) error {
		return s.repo.Delete(ctx, order.ID)
	})

	init, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       buyer.Email,
		AmountMinor: order.AmountMinor,
		Currency:    string(order.Currency),
		Reference:   order.Reference,
		CallbackURL: s.callbackURL(order.Reference),
		Subaccount:  splitTarget,
	})
	if err != nil {
		if compErr := comp.Run(ctx, s.logg); compErr != nil && s.logg != nil {
			s.logg.Error(ctx, "rolling back unpaid order", compErr)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "initializing payment")
	}
	comp.Clear()

	if err := s.repo.SetAuthorizationURL(ctx, order.ID, init.AuthorizationURL); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "saving authorization url")
	}
	order.AuthorizationURL = &init.AuthorizationURL

	return &CheckoutResult{Order: order, AuthorizationURL: init.AuthorizationURL}, nil
}

// validateSellers checks every seller on the order can be paid and
// that the buyer is not buying from themselves. It returns the first
// seller's subaccount as the gateway split target: multi-seller orders
// settle through that single subaccount, the remaining sellers are
// paid out through their invoices.
func (s *service) validateSellers(ctx context.Context, buyerID uuid.UUID, items []products.PricedItem) (string, error) {
	seen := make(map[uuid.UUID]bool, len(items))
	sellerIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !seen[item.Product.SellerID] {
			seen[item.Product.SellerID] = true
			sellerIDs = append(sellerIDs, item.Product.SellerID)
		}
	}

	profiles, err := s.repo.SellerProfilesByIDs(ctx, sellerIDs)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading seller profiles")
	}
	byID := make(map[uuid.UUID]models.SellerProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	var splitTarget string
	for _, id := range sellerIDs {
		profile, ok := byID[id]
		if !ok {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "seller not found").
				WithDetails(map[string]any{"seller_id": id.String()})
		}
		if profile.SubaccountCode == nil || *profile.SubaccountCode == "" {
			return "", pkgerrors.New(pkgerrors.CodeStateConflict, "seller is not set up to receive payments").
				WithDetails(map[string]any{"seller_id": id.String()})
		}
		if profile.UserID == buyerID {
			return "", pkgerrors.New(pkgerrors.CodeForbidden, "you cannot buy your own product")
		}
		if splitTarget == "" {
			splitTarget = *profile.SubaccountCode
		}
	}
	return splitTarget, nil
}

func (s *service) resolveDiscount(ctx context.Context, code string) (*models.Discount, decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, decimal.Zero, nil
	}
	discount, err := s.repo.GetDiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "unknown discount code")
		}
		return nil, decimal.Zero, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading discount")
	}
	if !discount.Usable(time.Now().UTC()) {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "discount code no longer usable")
	}
	return discount, discount.Percent, nil
}

// deliveryFee prices courier delivery at checkout. Without a pickup
// point the default distance applies; the settlement step reuses the
// fee frozen here when it spawns the delivery.
func (s *service) deliveryFee(address *types.Address) (decimal.Decimal, error) {
	if address == nil || !address.CourierRequested() {
		return decimal.Zero, nil
	}
	priority := enums.DeliveryPriorityStandard
	if raw := address.DeliveryRequest.Priority; raw != "" {
		parsed, err := enums.ParseDeliveryPriority(raw)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid delivery priority")
		}
		priority = parsed
	}
	return s.calc.DeliveryFee(decimal.Zero, priority), nil
}

func (s *service) Get(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "order not found")
	}
	if buyerID != uuid.Nil && order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, buyerID uuid.UUID, page pagination.Params) ([]models.Order, int64, error) {
	if buyerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	return s.repo.ListByBuyer(ctx, buyerID, page)
}

func (s *service) Cancel(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case enums.OrderStatusShipped, enums.OrderStatusDelivered:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already in transit or delivered")
	case enums.OrderStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already cancelled")
	}

	wasPaid := order.PaymentStatus == enums.PaymentStatusCompleted

	now := time.Now().UTC()
	order.Status = enums.OrderStatusCancelled
	if wasPaid {
		order.PaymentStatus = enums.PaymentStatusRefunded
	} else {
		order.PaymentStatus = enums.PaymentStatusCancelled
	}
	order.CancelledAt = &now

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).MarkCancelled(ctx, order); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "cancelling order")
		}
		if wasPaid {
			for _, item := range order.Items {
				if err := s.products.Restock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return s.notifyCancellation(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// notifyCancellation tells the buyer and every seller on the order.
func (s *service) notifyCancellation(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	data := map[string]any{
		"order_id":  order.ID.String(),
		"reference": order.Reference,
	}
	_, err := s.notify.Notify(ctx, tx, notifications.NotifyInput{
		UserID: order.BuyerID,
		Type:   enums.NotificationTypeOrderCancelled,
		Title:  "Order cancelled",
		Body:   "Your order " + order.Reference + " has been cancelled.",
		Data:   data,
	})
	if err != nil {
		return err
	}

	sellerSet := make(map[uuid.UUID]struct{}, len(order.Items))
	sellerIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		if _, seen := sellerSet[item.SellerID]; seen {
			continue
		}
		sellerSet[item.SellerID] = struct{}{}
		sellerIDs = append(sellerIDs, item.SellerID)
	}
	userIDs, err := s.repo.WithTx(tx).SellerUserIDs(ctx, sellerIDs)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolving seller accounts")
	}
	for _, userID := range userIDs {
		_, err := s.notify.Notify(ctx, tx, notifications.NotifyInput{
			UserID: userID,
			Type:   enums.NotificationTypeOrderCancelled,
			Title:  "Order cancelled",
			Body:   "Order " + order.Reference + " was cancelled by the buyer.",
			Data:   data,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Delete(ctx context.Context, buyerID, orderID uuid.UUID) error {
	order, err := s.Get(ctx, buyerID, orderID)
	if err != nil {
		return err
	}
	switch order.PaymentStatus {
	case enums.PaymentStatusPending, enums.PaymentStatusFailed:
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only unpaid orders can be deleted")
	}
	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "deleting order")
	}
	return nil
}

func (s *service) callbackURL(reference string) string {
	base := strings.TrimRight(s.cfg.CallbackBaseURL, "/")
	if base == "" {
		return ""
	}
	return base + "/payments/callback?reference=" + reference
}

func newReference() string {
	return "ord_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
