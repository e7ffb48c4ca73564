package deliveries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns a delivery repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&delivery, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).First(&delivery, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) ListPendingUnassigned(ctx context.Context) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("status = ? AND courier_id IS NULL", enums.DeliveryStatusPending).
		Order("created_at ASC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (r *repository) ListByCourier(ctx context.Context, courierID uuid.UUID, page pagination.Params) ([]models.Delivery, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.Delivery{}).Where("courier_id = ?", courierID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("courier_id = ?", courierID).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&deliveries).Error
	if err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

func (r *repository) ClaimPending(ctx context.Context, deliveryID, courierID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", deliveryID, enums.DeliveryStatusPending).
		Updates(map[string]any{
			"courier_id":  courierID,
			"status":      enums.DeliveryStatusAccepted,
			"accepted_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CountActiveForCourier(ctx context.Context, courierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("courier_id = ?", courierID).
		Where("status IN ?", []enums.DeliveryStatus{
			enums.DeliveryStatusAccepted,
			enums.DeliveryStatusPickedUp,
			enums.DeliveryStatusInTransit,
		}).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateStatus(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).
		Model(delivery).
		Updates(map[string]any{
			"status":       delivery.Status,
			"picked_up_at": delivery.PickedUpAt,
			"delivered_at": delivery.DeliveredAt,
		}).Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.DeliveryStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) CreateEarning(ctx context.Context, earning *models.CourierEarning) error {
	return r.db.WithContext(ctx).Create(earning).Error
}

func (r *repository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.CourierProfile, error) {
	var profile models.CourierProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) IncrementAccepted(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CourierProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_deliveries": gorm.Expr("total_deliveries + 1"),
			"last_seen_at":     at,
		}).Error
}

func (r *repository) IncrementCompleted(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CourierProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"completed_deliveries": gorm.Expr("completed_deliveries + 1"),
			"last_seen_at":         at,
		}).Error
}

func (r *repository) OrderFirstSellerProfile(ctx context.Context, orderID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).
		Where("id = (?)", r.db.Model(&models.OrderItem{}).
			Select("seller_id").
			Where("order_id = ?", orderID).
			Order("created_at ASC").
			Limit(1)).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) OrderSellerUserIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.SellerProfile{}).
		Where("id IN (?)", r.db.Model(&models.OrderItem{}).
			Distinct("seller_id").
			Where("order_id = ?", orderID)).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
