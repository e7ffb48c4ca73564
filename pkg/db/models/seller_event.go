package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
)

// SellerEvent is an append-only activity record surfaced on the
// seller dashboard.
type SellerEvent struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID                 `gorm:"column:seller_id;type:uuid;not null;index"`
	Type      enums.SellerEventType     `gorm:"column:type;type:text;not null"`
	Priority  enums.SellerEventPriority `gorm:"column:priority;type:text;not null;default:'medium'"`
	Payload   json.RawMessage           `gorm:"column:payload;type:jsonb"`
	DueAt     *time.Time                `gorm:"column:due_at"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
