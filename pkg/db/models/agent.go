package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Agent is a referral partner who earns commission on orders placed
// by users they brought in.
type Agent struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Code        string          `gorm:"column:code;type:text;not null;uniqueIndex"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	TotalEarned decimal.Decimal `gorm:"column:total_earned;type:numeric(14,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AgentActivity is an append-only log of what an agent's account did.
type AgentActivity struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID   uuid.UUID       `gorm:"column:agent_id;type:uuid;not null;index"`
	Kind      string          `gorm:"column:kind;type:text;not null"`
	Detail    json.RawMessage `gorm:"column:detail;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
