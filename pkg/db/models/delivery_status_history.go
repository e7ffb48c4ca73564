package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
)

// DeliveryStatusHistory is the append-only audit trail of delivery
// state transitions.
type DeliveryStatusHistory struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID uuid.UUID            `gorm:"column:delivery_id;type:uuid;not null;index"`
	FromStatus enums.DeliveryStatus `gorm:"column:from_status;type:text;not null"`
	ToStatus   enums.DeliveryStatus `gorm:"column:to_status;type:text;not null"`
	ActorID    *uuid.UUID           `gorm:"column:actor_id;type:uuid"`
	Note       *string              `gorm:"column:note;type:text"`
	ProofURLs  []string             `gorm:"column:proof_urls;type:jsonb;serializer:json"`
	Signature  *string              `gorm:"column:signature;type:text"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}
