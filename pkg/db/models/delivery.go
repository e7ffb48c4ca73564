package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
)

// Delivery is the courier job spawned when a paid order requests a
// courier. Pickup and dropoff coordinates are denormalized out of the
// addresses so radius matching can run as a plain query.
type Delivery struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID               `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	BuyerID        uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null;index"`
	CourierID      *uuid.UUID              `gorm:"column:courier_id;type:uuid;index"`
	Status         enums.DeliveryStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	Priority       enums.DeliveryPriority  `gorm:"column:priority;type:text;not null;default:'standard'"`
	PickupAddress  *types.Address          `gorm:"column:pickup_address;type:jsonb;serializer:json"`
	PickupLat      *float64                `gorm:"column:pickup_lat"`
	PickupLng      *float64                `gorm:"column:pickup_lng"`
	DropoffAddress *types.Address          `gorm:"column:dropoff_address;type:jsonb;serializer:json"`
	DropoffLat     *float64                `gorm:"column:dropoff_lat"`
	DropoffLng     *float64                `gorm:"column:dropoff_lng"`
	DistanceKm     decimal.Decimal         `gorm:"column:distance_km;type:numeric(8,2);not null"`
	Fee            decimal.Decimal         `gorm:"column:fee;type:numeric(12,2);not null"`
	CourierShare   decimal.Decimal         `gorm:"column:courier_share;type:numeric(12,2);not null"`
	PlatformShare  decimal.Decimal         `gorm:"column:platform_share;type:numeric(12,2);not null"`
	Notes          *string                 `gorm:"column:notes;type:text"`
	AcceptedAt     *time.Time              `gorm:"column:accepted_at"`
	PickedUpAt     *time.Time              `gorm:"column:picked_up_at"`
	DeliveredAt    *time.Time              `gorm:"column:delivered_at"`
	StatusHistory  []DeliveryStatusHistory `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
