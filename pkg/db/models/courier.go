package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CourierProfile tracks a courier's availability and lifetime stats.
type CourierProfile struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	VehicleType         *string    `gorm:"column:vehicle_type;type:text"`
	IsActive            bool       `gorm:"column:is_active;not null;default:true"`
	TotalDeliveries     int        `gorm:"column:total_deliveries;not null;default:0"`
	CompletedDeliveries int        `gorm:"column:completed_deliveries;not null;default:0"`
	LastSeenAt          *time.Time `gorm:"column:last_seen_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CourierEarning is one courier payout row per completed delivery.
// The unique index on delivery_id keeps replayed completions from
// paying twice.
type CourierEarning struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourierID  uuid.UUID       `gorm:"column:courier_id;type:uuid;not null;index"`
	DeliveryID uuid.UUID       `gorm:"column:delivery_id;type:uuid;not null;uniqueIndex"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
