package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Service defines catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Product, int64, error)
	// PriceItems resolves requested products to priced lines, failing
	// when any product is missing or inactive.
	PriceItems(ctx context.Context, requests []ItemRequest) ([]PricedItem, error)
	// Restock returns units to stock inside the caller's transaction.
	Restock(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error
}

// ItemRequest names a product and how many of it the buyer wants.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// PricedItem is a resolved line with the catalog price frozen in.
type PricedItem struct {
	Product  models.Product
	Quantity int
}

// LineTotal is the priced quantity of this line.
func (p PricedItem) LineTotal() decimal.Decimal {
	return p.Product.Price.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2)
}

// CreateProductInput captures the data a new listing requires.
type CreateProductInput struct {
	SellerID    uuid.UUID
	Name        string
	Description *string
	Category    *string
	Price       decimal.Decimal
	Stock       int
}

type service struct {
	repo Repository
}

// NewService wires a product service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	product := &models.Product{
		SellerID:    input.SellerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "creating product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Product, int64, error) {
	if sellerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	return s.repo.ListBySeller(ctx, sellerID, page)
}

func (s *service) PriceItems(ctx context.Context, requests []ItemRequest) ([]PricedItem, error) {
	if len(requests) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	quantities := make(map[uuid.UUID]int, len(requests))
	ids := make([]uuid.UUID, 0, len(requests))
	for _, req := range requests {
		if req.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if req.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if _, seen := quantities[req.ProductID]; !seen {
			ids = append(ids, req.ProductID)
		}
		quantities[req.ProductID] += req.Quantity
	}

	found, err := s.repo.GetActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading products")
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	priced := make([]PricedItem, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product unavailable").
				WithDetails(map[string]any{"product_id": id.String()})
		}
		if quantities[id] > product.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": id.String(),
					"requested":  quantities[id],
					"available":  product.Stock,
				})
		}
		priced = append(priced, PricedItem{Product: product, Quantity: quantities[id]})
	}
	return priced, nil
}

func (s *service) Restock(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := s.repo.WithTx(tx).Restock(ctx, id, quantity); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "restocking product")
	}
	return nil
}
