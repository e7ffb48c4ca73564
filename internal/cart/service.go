package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
)

// Service defines cart operations for buyers.
type Service interface {
	GetOrCreate(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo     Repository
	products products.Service
}

// NewService wires a cart service with its dependencies.
func NewService(repo Repository, productSvc products.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productSvc == nil {
		return nil, fmt.Errorf("product service required")
	}
	return &service{repo: repo, products: productSvc}, nil
}

func (s *service) GetOrCreate(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	cart, err := s.repo.GetActiveByBuyer(ctx, buyerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading cart")
	}

	fresh := &models.Cart{BuyerID: buyerID, Status: models.CartStatusActive}
	if err := s.repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "creating cart")
	}
	return fresh, nil
}

func (s *service) AddItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	priced, err := s.products.PriceItems(ctx, []products.ItemRequest{{ProductID: productID, Quantity: quantity}})
	if err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: priced[0].Product.Price,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "adding cart item")
	}
	return s.repo.GetActiveByBuyer(ctx, buyerID)
}

func (s *service) UpdateItem(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	cart, err := s.repo.GetActiveByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "no active cart")
	}

	if quantity == 0 {
		if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "removing cart item")
		}
	} else {
		if err := s.repo.UpdateItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "updating cart item")
		}
	}
	return s.repo.GetActiveByBuyer(ctx, buyerID)
}

func (s *service) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetActiveByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "no active cart")
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "removing cart item")
	}
	return s.repo.GetActiveByBuyer(ctx, buyerID)
}
