package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
)

// SellerProfile is the store-facing identity of a seller user.
type SellerProfile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StoreName string    `gorm:"column:store_name;type:text;not null"`
	// SubaccountCode is the gateway payout destination. A seller
	// without one cannot be bought from.
	SubaccountCode *string        `gorm:"column:subaccount_code;type:text"`
	Address        *types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// SellerAnalytics is the running sales aggregate updated at
// settlement, one row per seller. AverageOrderValue is recomputed on
// every sale as gross_revenue / total_orders.
type SellerAnalytics struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID          uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;uniqueIndex"`
	TotalOrders       int64           `gorm:"column:total_orders;not null;default:0"`
	TotalUnitsSold    int64           `gorm:"column:total_units_sold;not null;default:0"`
	TotalCustomers    int64           `gorm:"column:total_customers;not null;default:0"`
	GrossRevenue      decimal.Decimal `gorm:"column:gross_revenue;type:numeric(14,2);not null;default:0"`
	AverageOrderValue decimal.Decimal `gorm:"column:average_order_value;type:numeric(14,2);not null;default:0"`
	LastOrderAt       *time.Time      `gorm:"column:last_order_at"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
