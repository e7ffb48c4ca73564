package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

type fakeRepository struct {
	products map[uuid.UUID]models.Product
	created  []*models.Product
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{products: map[uuid.UUID]models.Product{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, product *models.Product) error {
	product.ID = uuid.New()
	f.products[product.ID] = *product
	f.created = append(f.created, product)
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeRepository) GetActiveByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListBySeller(_ context.Context, sellerID uuid.UUID, _ pagination.Params) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) Update(_ context.Context, product *models.Product) error {
	f.products[product.ID] = *product
	return nil
}

func (f *fakeRepository) Restock(_ context.Context, id uuid.UUID, quantity int) error {
	if p, ok := f.products[id]; ok {
		p.Stock += quantity
	}
	return nil
}

func (f *fakeRepository) DecrementStockFloored(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := f.products[id]
	if !ok {
		return nil
	}
	if p.Stock > quantity {
		p.Stock -= quantity
	} else {
		p.Stock = 0
	}
	f.products[id] = p
	return nil
}

func (f *fakeRepository) add(price string, active bool) uuid.UUID {
	id := uuid.New()
	p, _ := decimal.NewFromString(price)
	f.products[id] = models.Product{
		ID:       id,
		SellerID: uuid.New(),
		Name:     "item",
		Price:    p,
		Stock:    10,
		IsActive: active,
	}
	return id
}

func TestPriceItemsResolvesAndMerges(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	productID := repo.add("12.50", true)
	priced, err := svc.PriceItems(context.Background(), []ItemRequest{
		{ProductID: productID, Quantity: 2},
		{ProductID: productID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if len(priced) != 1 {
		t.Fatalf("got %d lines, want duplicate requests merged into 1", len(priced))
	}
	if priced[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", priced[0].Quantity)
	}
	want, _ := decimal.NewFromString("37.50")
	if !priced[0].LineTotal().Equal(want) {
		t.Errorf("line total = %s, want 37.50", priced[0].LineTotal())
	}
}

func TestPriceItemsFailsOnInactiveProduct(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	inactive := repo.add("5.00", false)
	_, err := svc.PriceItems(context.Background(), []ItemRequest{{ProductID: inactive, Quantity: 1}})

	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPriceItemsFailsOnInsufficientStock(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	productID := repo.add("5.00", true)
	_, err := svc.PriceItems(context.Background(), []ItemRequest{{ProductID: productID, Quantity: 11}})

	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversold quantity, got %v", err)
	}
	if appErr.Details["available"] != 10 {
		t.Errorf("available = %v, want 10", appErr.Details["available"])
	}
}

func TestPriceItemsValidation(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	if _, err := svc.PriceItems(context.Background(), nil); err == nil {
		t.Error("empty request should fail")
	}
	if _, err := svc.PriceItems(context.Background(), []ItemRequest{{ProductID: repo.add("1.00", true), Quantity: 0}}); err == nil {
		t.Error("zero quantity should fail")
	}
}

func TestCreateValidatesInput(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateProductInput{
		SellerID: uuid.New(),
		Name:     "",
		Price:    decimal.NewFromInt(10),
	})
	if err == nil {
		t.Fatal("missing name should fail")
	}

	product, err := svc.Create(context.Background(), CreateProductInput{
		SellerID: uuid.New(),
		Name:     "Shea Butter 500g",
		Price:    decimal.NewFromFloat(24.999),
		Stock:    5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want, _ := decimal.NewFromString("25.00")
	if !product.Price.Equal(want) {
		t.Errorf("price = %s, want rounded to 25.00", product.Price)
	}
	if !product.IsActive {
		t.Error("new products start active")
	}
}
