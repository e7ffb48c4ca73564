package sellers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Repository manages persistence for seller profiles, analytics and events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.SellerProfile, error)
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	GetAnalytics(ctx context.Context, sellerID uuid.UUID) (*models.SellerAnalytics, error)
	IncrementAnalytics(ctx context.Context, sellerID uuid.UUID, orders, units int64, revenue decimal.Decimal, at time.Time) error
	InsertEvent(ctx context.Context, event *models.SellerEvent) error
	ListEvents(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.SellerEvent, int64, error)
}
