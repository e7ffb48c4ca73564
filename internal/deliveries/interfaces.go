package deliveries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Repository defines persistence operations for deliveries, courier
// earnings and courier profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error)
	ListPendingUnassigned(ctx context.Context) ([]models.Delivery, error)
	ListByCourier(ctx context.Context, courierID uuid.UUID, page pagination.Params) ([]models.Delivery, int64, error)
	// ClaimPending assigns the courier atomically; it reports zero
	// rows when another courier got there first.
	ClaimPending(ctx context.Context, deliveryID, courierID uuid.UUID, at time.Time) (int64, error)
	CountActiveForCourier(ctx context.Context, courierID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, delivery *models.Delivery) error
	AppendHistory(ctx context.Context, entry *models.DeliveryStatusHistory) error
	CreateEarning(ctx context.Context, earning *models.CourierEarning) error
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.CourierProfile, error)
	IncrementAccepted(ctx context.Context, userID uuid.UUID, at time.Time) error
	IncrementCompleted(ctx context.Context, userID uuid.UUID, at time.Time) error
	// OrderSellerUserIDs maps the order's distinct sellers to their
	// account user ids.
	OrderSellerUserIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	// OrderFirstSellerProfile loads the profile of the seller on the
	// order's first line; their address is the pickup point.
	OrderFirstSellerProfile(ctx context.Context, orderID uuid.UUID) (*models.SellerProfile, error)
}
