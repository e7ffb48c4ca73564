package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

type fakeRepository struct {
	carts map[uuid.UUID]*models.Cart
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{carts: map[uuid.UUID]*models.Cart{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) GetActiveByBuyer(_ context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	for _, c := range f.carts {
		if c.BuyerID == buyerID && c.Status == models.CartStatusActive {
			copy := *c
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Create(_ context.Context, cart *models.Cart) error {
	cart.ID = uuid.New()
	f.carts[cart.ID] = cart
	return nil
}

func (f *fakeRepository) UpsertItem(_ context.Context, item *models.CartItem) error {
	cart := f.carts[item.CartID]
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			cart.Items[i].UnitPrice = item.UnitPrice
			return nil
		}
	}
	cart.Items = append(cart.Items, *item)
	return nil
}

func (f *fakeRepository) UpdateItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	cart := f.carts[cartID]
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
		}
	}
	return nil
}

func (f *fakeRepository) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	cart := f.carts[cartID]
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

type fakeProducts struct {
	known map[uuid.UUID]decimal.Decimal
}

func (f *fakeProducts) Create(context.Context, products.CreateProductInput) (*models.Product, error) {
	return nil, nil
}

func (f *fakeProducts) Get(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, nil
}

func (f *fakeProducts) ListBySeller(context.Context, uuid.UUID, pagination.Params) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeProducts) Restock(context.Context, *gorm.DB, uuid.UUID, int) error {
	return nil
}

func (f *fakeProducts) PriceItems(_ context.Context, reqs []products.ItemRequest) ([]products.PricedItem, error) {
	var out []products.PricedItem
	for _, req := range reqs {
		price, ok := f.known[req.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product unavailable")
		}
		out = append(out, products.PricedItem{
			Product:  models.Product{ID: req.ProductID, Price: price},
			Quantity: req.Quantity,
		})
	}
	return out, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository, *fakeProducts) {
	t.Helper()
	repo := newFakeRepository()
	prods := &fakeProducts{known: map[uuid.UUID]decimal.Decimal{}}
	svc, err := NewService(repo, prods)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, prods
}

func TestGetOrCreateReusesActiveCart(t *testing.T) {
	svc, _, _ := newTestService(t)
	buyerID := uuid.New()

	first, err := svc.GetOrCreate(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := svc.GetOrCreate(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same cart, got %s then %s", first.ID, second.ID)
	}
}

func TestAddItemSnapshotsPriceAndMerges(t *testing.T) {
	svc, _, prods := newTestService(t)
	buyerID := uuid.New()
	productID := uuid.New()
	prods.known[productID] = decimal.NewFromFloat(9.99)

	if _, err := svc.AddItem(context.Background(), buyerID, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), buyerID, productID, 1)
	if err != nil {
		t.Fatalf("AddItem again: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("items = %d, want merged into 1", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", cart.Items[0].Quantity)
	}
	if !cart.Items[0].UnitPrice.Equal(decimal.NewFromFloat(9.99)) {
		t.Errorf("unit price = %s, want snapshot 9.99", cart.Items[0].UnitPrice)
	}
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)

	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateItemToZeroRemoves(t *testing.T) {
	svc, _, prods := newTestService(t)
	buyerID := uuid.New()
	productID := uuid.New()
	prods.known[productID] = decimal.NewFromInt(4)

	if _, err := svc.AddItem(context.Background(), buyerID, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.UpdateItem(context.Background(), buyerID, productID, 0)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("items = %d, want 0 after zero-quantity update", len(cart.Items))
	}
}
