package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralLink is a shareable signup link owned by an agent.
type ReferralLink struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID    uuid.UUID `gorm:"column:agent_id;type:uuid;not null;index"`
	Code       string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	ClickCount int       `gorm:"column:click_count;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ReferralConversion records a referred user completing a paid order.
type ReferralConversion struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LinkID         uuid.UUID  `gorm:"column:link_id;type:uuid;not null;index"`
	ReferredUserID uuid.UUID  `gorm:"column:referred_user_id;type:uuid;not null"`
	OrderID        *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CommissionID   *uuid.UUID `gorm:"column:commission_id;type:uuid"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
