package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "reference = ?", reference).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusCompleted,
			"status":         enums.OrderStatusConfirmed,
			"paid_at":        paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPending).
		Update("payment_status", enums.PaymentStatusFailed).Error
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.ProductPurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repository) MarkCartCheckedOut(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("status", models.CartStatusCheckedOut).Error
}

func (r *repository) SellerUserIDs(ctx context.Context, sellerIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if len(sellerIDs) == 0 {
		return nil, nil
	}
	var profiles []models.SellerProfile
	err := r.db.WithContext(ctx).
		Select("id", "user_id").
		Where("id IN ?", sellerIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]uuid.UUID, len(profiles))
	for _, p := range profiles {
		out[p.ID] = p.UserID
	}
	return out, nil
}
