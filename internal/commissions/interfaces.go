package commissions

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Repository manages persistence for agents and their commission ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	GetAgentByUserID(ctx context.Context, userID uuid.UUID) (*models.Agent, error)
	// GetAgentForBuyer resolves the agent the buyer was referred by,
	// or gorm.ErrRecordNotFound when the buyer has no referrer.
	GetAgentForBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Agent, error)
	CreateTransaction(ctx context.Context, txn *models.CommissionTransaction) error
	GetTransactionByReference(ctx context.Context, agentID, referenceID uuid.UUID, refType enums.CommissionReferenceType) (*models.CommissionTransaction, error)
	ListTransactions(ctx context.Context, agentID uuid.UUID, page pagination.Params) ([]models.CommissionTransaction, int64, error)
	SumTransactions(ctx context.Context, agentID uuid.UUID, txnType enums.CommissionType, statuses []enums.CommissionStatus) (decimal.Decimal, error)
	AddToAgentTotal(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error
	CreateActivity(ctx context.Context, activity *models.AgentActivity) error
	GetLinkByCode(ctx context.Context, code string) (*models.ReferralLink, error)
	FirstLinkForAgent(ctx context.Context, agentID uuid.UUID) (*models.ReferralLink, error)
	CreateLink(ctx context.Context, link *models.ReferralLink) error
	IncrementLinkClicks(ctx context.Context, id uuid.UUID) error
	CreateConversion(ctx context.Context, conversion *models.ReferralConversion) error
	HasConversionForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
}
