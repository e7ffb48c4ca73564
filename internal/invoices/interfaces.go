package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Repository manages persistence for invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Invoice, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Invoice, int64, error)
	Update(ctx context.Context, invoice *models.Invoice) error
}
