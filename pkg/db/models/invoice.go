package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
)

// Invoice is the per-seller billing document generated for a settled
// order.
type Invoice struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number    string              `gorm:"column:number;type:text;not null;uniqueIndex"`
	OrderID   uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	SellerID  uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	Status    enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency  enums.Currency      `gorm:"column:currency;type:text;not null;default:'GHS'"`
	IssuedAt  *time.Time          `gorm:"column:issued_at"`
	PaidAt    *time.Time          `gorm:"column:paid_at"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
