package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
)

// CommissionTransaction is one ledger row in an agent's commission
// account. The composite unique index makes earning writes idempotent
// per referenced entity.
type CommissionTransaction struct {
	ID            uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID       uuid.UUID                     `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_commissions_agent_reference"`
	ReferenceID   uuid.UUID                     `gorm:"column:reference_id;type:uuid;not null;uniqueIndex:idx_commissions_agent_reference"`
	ReferenceType enums.CommissionReferenceType `gorm:"column:reference_type;type:text;not null;uniqueIndex:idx_commissions_agent_reference"`
	Type          enums.CommissionType          `gorm:"column:type;type:text;not null"`
	Status        enums.CommissionStatus        `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount        decimal.Decimal               `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency      enums.Currency                `gorm:"column:currency;type:text;not null;default:'GHS'"`
	Description   *string                       `gorm:"column:description;type:text"`
	CreatedAt     time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
