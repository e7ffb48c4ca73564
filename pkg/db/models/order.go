package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
)

// Order is the buyer-facing order produced from a checkout or a
// buy-now purchase. Reference doubles as the payment gateway
// transaction reference.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference        string              `gorm:"column:reference;type:text;not null;uniqueIndex"`
	BuyerID          uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	// CartID links a cart checkout to its order; the cart is closed
	// only when payment settles.
	CartID           *uuid.UUID          `gorm:"column:cart_id;type:uuid"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Currency         enums.Currency      `gorm:"column:currency;type:text;not null;default:'GHS'"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee      decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	DiscountAmount   decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	DiscountCode     *string             `gorm:"column:discount_code;type:text"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	AmountMinor      int64               `gorm:"column:amount_minor;not null"`
	ShippingAddress  *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	AuthorizationURL *string             `gorm:"column:authorization_url;type:text"`
	PaidAt           *time.Time          `gorm:"column:paid_at"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
