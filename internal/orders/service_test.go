package orders

import (
	"context"
	"errors"
	"strings"
	"testing"

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
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/paystack"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
)

type fakeRepository struct {
	orders      map[uuid.UUID]*models.Order
	buyers      map[uuid.UUID]*models.User
	discounts   map[string]*models.Discount
	sellerUsers map[uuid.UUID]uuid.UUID
	profiles    map[uuid.UUID]*models.SellerProfile
	deleted     []uuid.UUID
	released    []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		orders:      map[uuid.UUID]*models.Order{},
		buyers:      map[uuid.UUID]*models.User{},
		discounts:   map[string]*models.Discount{},
		sellerUsers: map[uuid.UUID]uuid.UUID{},
		profiles:    map[uuid.UUID]*models.SellerProfile{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, order *models.Order) error {
	order.ID = uuid.New()
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeRepository) GetByReference(_ context.Context, reference string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.Reference == reference {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListByBuyer(_ context.Context, buyerID uuid.UUID, _ pagination.Params) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.BuyerID == buyerID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) SetAuthorizationURL(_ context.Context, id uuid.UUID, url string) error {
	f.orders[id].AuthorizationURL = &url
	return nil
}

func (f *fakeRepository) MarkCancelled(_ context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.orders, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepository) GetBuyer(_ context.Context, buyerID uuid.UUID) (*models.User, error) {
	buyer, ok := f.buyers[buyerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return buyer, nil
}

func (f *fakeRepository) SellerUserIDs(_ context.Context, sellerIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, sellerID := range sellerIDs {
		if userID, ok := f.sellerUsers[sellerID]; ok {
			out = append(out, userID)
		}
	}
	return out, nil
}

func (f *fakeRepository) SellerProfilesByIDs(_ context.Context, sellerIDs []uuid.UUID) ([]models.SellerProfile, error) {
	var out []models.SellerProfile
	for _, sellerID := range sellerIDs {
		if profile, ok := f.profiles[sellerID]; ok {
			out = append(out, *profile)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetDiscountByCode(_ context.Context, code string) (*models.Discount, error) {
	discount, ok := f.discounts[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return discount, nil
}

func (f *fakeRepository) RedeemDiscount(_ context.Context, id uuid.UUID) error {
	for _, d := range f.discounts {
		if d.ID == id {
			if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
				return gorm.ErrRecordNotFound
			}
			d.UsedCount++
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) ReleaseDiscount(_ context.Context, id uuid.UUID) error {
	for _, d := range f.discounts {
		if d.ID == id && d.UsedCount > 0 {
			d.UsedCount--
			f.released = append(f.released, id)
			return nil
		}
	}
	return nil
}

type fakeCartRepo struct {
	carts map[uuid.UUID]*models.Cart
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) cart.Repository { return f }

func (f *fakeCartRepo) GetActiveByBuyer(_ context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	c, ok := f.carts[buyerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCartRepo) Create(_ context.Context, c *models.Cart) error { return nil }

func (f *fakeCartRepo) UpsertItem(_ context.Context, _ *models.CartItem) error { return nil }

func (f *fakeCartRepo) UpdateItemQuantity(_ context.Context, _, _ uuid.UUID, _ int) error {
	return nil
}

func (f *fakeCartRepo) RemoveItem(_ context.Context, _, _ uuid.UUID) error { return nil }

type fakeProducts struct {
	catalog   map[uuid.UUID]models.Product
	restocked map[uuid.UUID]int
}

func (f *fakeProducts) Restock(_ context.Context, _ *gorm.DB, id uuid.UUID, quantity int) error {
	if f.restocked == nil {
		f.restocked = make(map[uuid.UUID]int)
	}
	f.restocked[id] += quantity
	return nil
}

func (f *fakeProducts) Create(_ context.Context, _ products.CreateProductInput) (*models.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProducts) Get(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProducts) ListBySeller(_ context.Context, _ uuid.UUID, _ pagination.Params) ([]models.Product, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeProducts) PriceItems(_ context.Context, requests []products.ItemRequest) ([]products.PricedItem, error) {
	var priced []products.PricedItem
	for _, req := range requests {
		product, ok := f.catalog[req.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product unavailable")
		}
		priced = append(priced, products.PricedItem{Product: product, Quantity: req.Quantity})
	}
	return priced, nil
}

type fakeGateway struct {
	fail     bool
	requests []paystack.InitializeRequest
}

func (f *fakeGateway) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	f.requests = append(f.requests, req)
	if f.fail {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable")
	}
	return &paystack.InitializeResponse{
		AuthorizationURL: "https://checkout.example/" + req.Reference,
		AccessCode:       "access",
		Reference:        req.Reference,
	}, nil
}

type fakeRunner struct{}

func (fakeRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeNotifier struct {
	sent []notifications.NotifyInput
}

func (f *fakeNotifier) Notify(_ context.Context, _ *gorm.DB, input notifications.NotifyInput) (*models.Notification, error) {
	f.sent = append(f.sent, input)
	return &models.Notification{ID: uuid.New(), UserID: input.UserID, Type: input.Type}, nil
}

type fixture struct {
	svc      Service
	repo     *fakeRepository
	cartRepo *fakeCartRepo
	catalog  *fakeProducts
	gateway  *fakeGateway
	notify   *fakeNotifier
	buyerID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepository()
	buyerID := uuid.New()
	repo.buyers[buyerID] = &models.User{ID: buyerID, Email: "buyer@example.com", Role: enums.UserRoleBuyer}

	cartRepo := &fakeCartRepo{carts: map[uuid.UUID]*models.Cart{}}
	catalog := &fakeProducts{catalog: map[uuid.UUID]models.Product{}}
	gateway := &fakeGateway{}
	notify := &fakeNotifier{}

	calc, err := fees.NewCalculator(fees.Config{RatePerKm: "15.00", DefaultDistanceKm: "5"})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	svc, err := NewService(repo, cartRepo, catalog, calc, gateway, fakeRunner{}, notify, nil,
		config.PaystackConfig{CallbackBaseURL: "https://kasuwa.example"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &fixture{svc: svc, repo: repo, cartRepo: cartRepo, catalog: catalog, gateway: gateway, notify: notify, buyerID: buyerID}
}

// addProduct lists a product under a fresh, payable seller.
func (fx *fixture) addProduct(price string, stock int) models.Product {
	product := models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "thing",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	fx.catalog.catalog[product.ID] = product

	sellerUserID := uuid.New()
	subaccount := "ACCT_" + product.SellerID.String()[:8]
	fx.repo.profiles[product.SellerID] = &models.SellerProfile{
		ID:             product.SellerID,
		UserID:         sellerUserID,
		StoreName:      "shop",
		SubaccountCode: &subaccount,
		IsActive:       true,
	}
	fx.repo.sellerUsers[product.SellerID] = sellerUserID
	return product
}

func TestBuyNowCreatesPendingOrder(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("25.00", 10)

	result, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("BuyNow: %v", err)
	}

	order := result.Order
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Errorf("got %s/%s, want pending/pending", order.Status, order.PaymentStatus)
	}
	if !order.Subtotal.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("subtotal = %s, want 75.00", order.Subtotal)
	}
	if order.AmountMinor != 7500 {
		t.Errorf("amount minor = %d, want 7500", order.AmountMinor)
	}
	if !strings.HasPrefix(order.Reference, "ord_") {
		t.Errorf("reference = %q, want ord_ prefix", order.Reference)
	}
	if result.AuthorizationURL == "" {
		t.Error("expected an authorization url")
	}

	if len(fx.gateway.requests) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(fx.gateway.requests))
	}
	req := fx.gateway.requests[0]
	if req.Email != "buyer@example.com" || req.AmountMinor != 7500 || req.Currency != "GHS" {
		t.Errorf("unexpected gateway request %+v", req)
	}
	if req.Subaccount != *fx.repo.profiles[product.SellerID].SubaccountCode {
		t.Errorf("subaccount = %q, want the seller's payout target", req.Subaccount)
	}
}

func TestBuyNowSellerWithoutSubaccountRejected(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("25.00", 10)
	fx.repo.profiles[product.SellerID].SubaccountCode = nil

	_, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict for an unpayable seller, got %v", err)
	}
	if len(fx.repo.orders) != 0 {
		t.Errorf("orders created = %d, want 0", len(fx.repo.orders))
	}
	if len(fx.gateway.requests) != 0 {
		t.Errorf("gateway calls = %d, want 0", len(fx.gateway.requests))
	}
}

func TestBuyNowOwnProductRejected(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("25.00", 10)
	fx.repo.profiles[product.SellerID].UserID = fx.buyerID

	_, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden buying from yourself, got %v", err)
	}
	if len(fx.repo.orders) != 0 {
		t.Errorf("orders created = %d, want 0", len(fx.repo.orders))
	}
}

func TestBuyNowGatewayFailureRollsBackOrder(t *testing.T) {
	fx := newFixture(t)
	fx.gateway.fail = true
	product := fx.addProduct("10.00", 5)

	_, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(fx.repo.orders) != 0 {
		t.Errorf("orders left behind = %d, want 0", len(fx.repo.orders))
	}
	if len(fx.repo.deleted) != 1 {
		t.Errorf("deletes = %d, want 1", len(fx.repo.deleted))
	}
}

func TestBuyNowGatewayFailureReleasesDiscount(t *testing.T) {
	fx := newFixture(t)
	fx.gateway.fail = true
	product := fx.addProduct("10.00", 5)
	fx.repo.discounts["SAVE25"] = &models.Discount{
		ID:       uuid.New(),
		Code:     "SAVE25",
		Percent:  decimal.NewFromInt(25),
		Status:   enums.DiscountStatusEnabled,
		Products: []models.Product{{ID: product.ID}},
	}

	_, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:      fx.buyerID,
		ProductID:    product.ID,
		Quantity:     1,
		DiscountCode: "SAVE25",
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if fx.repo.discounts["SAVE25"].UsedCount != 0 {
		t.Errorf("used count = %d, want the redemption handed back", fx.repo.discounts["SAVE25"].UsedCount)
	}
	if len(fx.repo.released) != 1 {
		t.Errorf("releases = %d, want 1", len(fx.repo.released))
	}
	if len(fx.repo.orders) != 0 {
		t.Errorf("orders left behind = %d, want 0", len(fx.repo.orders))
	}
}

func TestCheckoutCartAppliesDiscountAndDeliveryFee(t *testing.T) {
	fx := newFixture(t)
	a := fx.addProduct("30.00", 10)
	b := fx.addProduct("20.00", 10)

	cartID := uuid.New()
	fx.cartRepo.carts[fx.buyerID] = &models.Cart{
		ID:      cartID,
		BuyerID: fx.buyerID,
		Status:  models.CartStatusActive,
		Items: []models.CartItem{
			{CartID: cartID, ProductID: a.ID, Quantity: 2, UnitPrice: a.Price},
			{CartID: cartID, ProductID: b.ID, Quantity: 1, UnitPrice: b.Price},
		},
	}
	limit := 5
	fx.repo.discounts["WELCOME10"] = &models.Discount{
		ID:         uuid.New(),
		Code:       "WELCOME10",
		Percent:    decimal.NewFromInt(10),
		Status:     enums.DiscountStatusEnabled,
		UsageLimit: &limit,
		Products:   []models.Product{{ID: a.ID}, {ID: b.ID}},
	}

	result, err := fx.svc.CheckoutCart(context.Background(), CheckoutInput{
		BuyerID:      fx.buyerID,
		DiscountCode: "WELCOME10",
		ShippingAddress: &types.Address{
			Line1:   "12 Ring Road",
			City:    "Accra",
			Region:  "Greater Accra",
			Country: "GH",
			DeliveryRequest: &types.DeliveryRequest{
				Requested: true,
				Priority:  "express",
			},
		},
	})
	if err != nil {
		t.Fatalf("CheckoutCart: %v", err)
	}

	order := result.Order
	// Subtotal 80.00, discount 8.00, delivery 5km * 15.00 * 1.5 = 112.50.
	if !order.Subtotal.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("subtotal = %s, want 80.00", order.Subtotal)
	}
	if !order.DiscountAmount.Equal(decimal.RequireFromString("8.00")) {
		t.Errorf("discount = %s, want 8.00", order.DiscountAmount)
	}
	if !order.DeliveryFee.Equal(decimal.RequireFromString("112.50")) {
		t.Errorf("delivery fee = %s, want 112.50", order.DeliveryFee)
	}
	if !order.Total.Equal(decimal.RequireFromString("184.50")) {
		t.Errorf("total = %s, want 184.50", order.Total)
	}
	if order.AmountMinor != 18450 {
		t.Errorf("amount minor = %d, want 18450", order.AmountMinor)
	}
	if len(order.Items) != 2 {
		t.Errorf("items = %d, want 2", len(order.Items))
	}

	if fx.repo.discounts["WELCOME10"].UsedCount != 1 {
		t.Errorf("discount used count = %d, want 1", fx.repo.discounts["WELCOME10"].UsedCount)
	}
	// The cart is not closed here; settlement does that through the
	// cart id frozen on the order.
	if order.CartID == nil || *order.CartID != cartID {
		t.Errorf("order cart id = %v, want %s", order.CartID, cartID)
	}
	if fx.cartRepo.carts[fx.buyerID].Status != models.CartStatusActive {
		t.Errorf("cart status = %s, must stay active until payment lands", fx.cartRepo.carts[fx.buyerID].Status)
	}
}

func TestCheckoutCartDiscountLimitedToItsProducts(t *testing.T) {
	fx := newFixture(t)
	a := fx.addProduct("30.00", 10)
	b := fx.addProduct("20.00", 10)

	cartID := uuid.New()
	fx.cartRepo.carts[fx.buyerID] = &models.Cart{
		ID:      cartID,
		BuyerID: fx.buyerID,
		Status:  models.CartStatusActive,
		Items: []models.CartItem{
			{CartID: cartID, ProductID: a.ID, Quantity: 2, UnitPrice: a.Price},
			{CartID: cartID, ProductID: b.ID, Quantity: 1, UnitPrice: b.Price},
		},
	}
	fx.repo.discounts["ONLYA"] = &models.Discount{
		ID:       uuid.New(),
		Code:     "ONLYA",
		Percent:  decimal.NewFromInt(10),
		Status:   enums.DiscountStatusEnabled,
		Products: []models.Product{{ID: a.ID}},
	}

	result, err := fx.svc.CheckoutCart(context.Background(), CheckoutInput{
		BuyerID:      fx.buyerID,
		DiscountCode: "ONLYA",
	})
	if err != nil {
		t.Fatalf("CheckoutCart: %v", err)
	}

	// 10% off the 60.00 of product a only; b's 20.00 is untouched.
	order := result.Order
	if !order.DiscountAmount.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("discount = %s, want 6.00", order.DiscountAmount)
	}
	if !order.Total.Equal(decimal.RequireFromString("74.00")) {
		t.Errorf("total = %s, want 74.00", order.Total)
	}
}

func TestCheckoutDiscountWithoutQualifyingItemRejected(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)
	fx.repo.discounts["ELSEWHERE"] = &models.Discount{
		ID:       uuid.New(),
		Code:     "ELSEWHERE",
		Percent:  decimal.NewFromInt(25),
		Status:   enums.DiscountStatusEnabled,
		Products: []models.Product{{ID: uuid.New()}},
	}

	_, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:      fx.buyerID,
		ProductID:    product.ID,
		Quantity:     1,
		DiscountCode: "ELSEWHERE",
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fx.repo.orders) != 0 {
		t.Errorf("orders created = %d, want 0", len(fx.repo.orders))
	}
	if fx.repo.discounts["ELSEWHERE"].UsedCount != 0 {
		t.Errorf("used count = %d, a rejected code must not be redeemed", fx.repo.discounts["ELSEWHERE"].UsedCount)
	}
}

func TestCheckoutCartEmptyCartRejected(t *testing.T) {
	fx := newFixture(t)
	fx.cartRepo.carts[fx.buyerID] = &models.Cart{ID: uuid.New(), BuyerID: fx.buyerID, Status: models.CartStatusActive}

	_, err := fx.svc.CheckoutCart(context.Background(), CheckoutInput{BuyerID: fx.buyerID})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutExpiredDiscountRejected(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)
	fx.repo.discounts["DEAD"] = &models.Discount{
		ID:      uuid.New(),
		Code:    "DEAD",
		Percent: decimal.NewFromInt(50),
		Status:  enums.DiscountStatusDisabled,
	}

	_, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:      fx.buyerID,
		ProductID:    product.ID,
		Quantity:     1,
		DiscountCode: "DEAD",
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict, got %v", err)
	}
}

func TestGetScopedToBuyer(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)

	result, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("BuyNow: %v", err)
	}

	if _, err := fx.svc.Get(context.Background(), fx.buyerID, result.Order.ID); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}

	_, err = fx.svc.Get(context.Background(), uuid.New(), result.Order.ID)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found for another buyer, got %v", err)
	}
}

func TestCancelPendingOrder(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)

	result, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("BuyNow: %v", err)
	}

	cancelled, err := fx.svc.Cancel(context.Background(), fx.buyerID, result.Order.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Errorf("got %s, want cancelled with timestamp", cancelled.Status)
	}
	if cancelled.PaymentStatus != enums.PaymentStatusCancelled {
		t.Errorf("payment status = %s, want cancelled", cancelled.PaymentStatus)
	}
	// Nothing was paid, so nothing goes back on the shelf.
	if len(fx.catalog.restocked) != 0 {
		t.Errorf("restocked = %v, want none", fx.catalog.restocked)
	}
}

func TestCancelPaidOrderRestocksAndNotifies(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)
	sellerUserID := fx.repo.sellerUsers[product.SellerID]

	result, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("BuyNow: %v", err)
	}
	fx.repo.orders[result.Order.ID].PaymentStatus = enums.PaymentStatusCompleted

	cancelled, err := fx.svc.Cancel(context.Background(), fx.buyerID, result.Order.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.PaymentStatus != enums.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", cancelled.PaymentStatus)
	}
	if fx.catalog.restocked[product.ID] != 3 {
		t.Errorf("restocked = %d, want 3", fx.catalog.restocked[product.ID])
	}

	if len(fx.notify.sent) != 2 {
		t.Fatalf("notifications = %d, want buyer and seller", len(fx.notify.sent))
	}
	if fx.notify.sent[0].UserID != fx.buyerID {
		t.Errorf("first notification went to %s, want buyer", fx.notify.sent[0].UserID)
	}
	if fx.notify.sent[1].UserID != sellerUserID {
		t.Errorf("second notification went to %s, want seller", fx.notify.sent[1].UserID)
	}
}

func TestCancelShippedOrderRejected(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)

	result, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("BuyNow: %v", err)
	}
	fx.repo.orders[result.Order.ID].Status = enums.OrderStatusShipped

	_, err = fx.svc.Cancel(context.Background(), fx.buyerID, result.Order.ID)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict, got %v", err)
	}
}

func TestDeleteOnlyUnpaidOrders(t *testing.T) {
	fx := newFixture(t)
	product := fx.addProduct("10.00", 5)

	result, err := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("BuyNow: %v", err)
	}

	if err := fx.svc.Delete(context.Background(), fx.buyerID, result.Order.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := fx.repo.orders[result.Order.ID]; ok {
		t.Error("order still present after delete")
	}

	paid, _ := fx.svc.BuyNow(context.Background(), BuyNowInput{
		BuyerID:   fx.buyerID,
		ProductID: product.ID,
		Quantity:  1,
	})
	fx.repo.orders[paid.Order.ID].PaymentStatus = enums.PaymentStatusCompleted

	err = fx.svc.Delete(context.Background(), fx.buyerID, paid.Order.ID)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict, got %v", err)
	}
}
