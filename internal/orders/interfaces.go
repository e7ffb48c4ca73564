package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and the
// lookups checkout depends on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, page pagination.Params) ([]models.Order, int64, error)
	SetAuthorizationURL(ctx context.Context, id uuid.UUID, url string) error
	MarkCancelled(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetBuyer(ctx context.Context, buyerID uuid.UUID) (*models.User, error)
	// SellerUserIDs maps seller profile ids to their account user ids.
	SellerUserIDs(ctx context.Context, sellerIDs []uuid.UUID) ([]uuid.UUID, error)
	SellerProfilesByIDs(ctx context.Context, sellerIDs []uuid.UUID) ([]models.SellerProfile, error)
	GetDiscountByCode(ctx context.Context, code string) (*models.Discount, error)
	// RedeemDiscount bumps the usage counter, refusing codes whose
	// limit is already spent.
	RedeemDiscount(ctx context.Context, id uuid.UUID) error
	// ReleaseDiscount hands a redemption back when the checkout that
	// claimed it never reached the gateway.
	ReleaseDiscount(ctx context.Context, id uuid.UUID) error
}
