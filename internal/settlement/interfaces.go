package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
)

// Repository defines the order-side writes the settlement flow owns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	// MarkPaid flips a pending payment to completed; zero rows means
	// another settlement run got there first.
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (int64, error)
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
	CreatePurchase(ctx context.Context, purchase *models.ProductPurchase) error
	// MarkCartCheckedOut closes the cart the order was checked out
	// from, once its payment has actually landed.
	MarkCartCheckedOut(ctx context.Context, cartID uuid.UUID) error
	// SellerUserIDs maps seller profile ids to their account user ids.
	SellerUserIDs(ctx context.Context, sellerIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}
