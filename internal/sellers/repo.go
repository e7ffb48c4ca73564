package sellers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns a seller repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetAnalytics(ctx context.Context, sellerID uuid.UUID) (*models.SellerAnalytics, error) {
	var row models.SellerAnalytics
	if err := r.db.WithContext(ctx).First(&row, "seller_id = ?", sellerID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// IncrementAnalytics folds one settled order into the seller's running
// totals, creating the row on first sale.
func (r *repository) IncrementAnalytics(ctx context.Context, sellerID uuid.UUID, orders, units int64, revenue decimal.Decimal, at time.Time) error {
	var row models.SellerAnalytics
	err := r.db.WithContext(ctx).First(&row, "seller_id = ?", sellerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.SellerAnalytics{
			SellerID:          sellerID,
			TotalOrders:       orders,
			TotalUnitsSold:    units,
			TotalCustomers:    1,
			GrossRevenue:      revenue,
			AverageOrderValue: revenue.Div(decimal.NewFromInt(orders)).Round(2),
			LastOrderAt:       &at,
		}
		return r.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return err
	}

	// The purchases for this order are already written inside the same
	// transaction, so the distinct-buyer count includes it.
	return r.db.WithContext(ctx).
		Model(&models.SellerAnalytics{}).
		Where("seller_id = ?", sellerID).
		Updates(map[string]any{
			"total_orders":     gorm.Expr("total_orders + ?", orders),
			"total_units_sold": gorm.Expr("total_units_sold + ?", units),
			"total_customers": gorm.Expr(
				"(SELECT COUNT(DISTINCT buyer_id) FROM product_purchases WHERE seller_id = ?)", sellerID),
			"gross_revenue": gorm.Expr("gross_revenue + ?", revenue),
			"average_order_value": gorm.Expr(
				"round((gross_revenue + ?) / (total_orders + ?), 2)", revenue, orders),
			"last_order_at": at,
		}).Error
}

func (r *repository) InsertEvent(ctx context.Context, event *models.SellerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListEvents(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.SellerEvent, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.SellerEvent{}).Where("seller_id = ?", sellerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SellerEvent
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
