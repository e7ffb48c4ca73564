package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
)

// Discount is a code-redeemed percentage reduction scoped to a set of
// products. Only qualifying order lines are reduced, and a code is
// usable only when the order carries at least one of its products.
type Discount struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string               `gorm:"column:code;type:text;not null;uniqueIndex"`
	SellerID   *uuid.UUID           `gorm:"column:seller_id;type:uuid"`
	Percent    decimal.Decimal      `gorm:"column:percent;type:numeric(5,2);not null"`
	Products   []Product            `gorm:"many2many:discount_products"`
	Status     enums.DiscountStatus `gorm:"column:status;type:text;not null;default:'enabled'"`
	UsageLimit *int                 `gorm:"column:usage_limit"`
	UsedCount  int                  `gorm:"column:used_count;not null;default:0"`
	ExpiresAt  *time.Time           `gorm:"column:expires_at"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// Usable reports whether the code can still be redeemed at now.
func (d Discount) Usable(now time.Time) bool {
	if d.Status != enums.DiscountStatusEnabled {
		return false
	}
	if d.ExpiresAt != nil && !now.Before(*d.ExpiresAt) {
		return false
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return false
	}
	return true
}
