package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Repository manages persistence for products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	DecrementStockFloored(ctx context.Context, id uuid.UUID, quantity int) error
	Restock(ctx context.Context, id uuid.UUID, quantity int) error
}
