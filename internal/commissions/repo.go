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

type repository struct {
	db *gorm.DB
}

// NewRepository returns a commission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) GetAgentByUserID(ctx context.Context, userID uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) GetAgentForBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.referred_by = agents.id").
		Where("users.id = ? AND agents.is_active = ?", buyerID, true).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.CommissionTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) GetTransactionByReference(ctx context.Context, agentID, referenceID uuid.UUID, refType enums.CommissionReferenceType) (*models.CommissionTransaction, error) {
	var txn models.CommissionTransaction
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND reference_id = ? AND reference_type = ?", agentID, referenceID, refType).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListTransactions(ctx context.Context, agentID uuid.UUID, page pagination.Params) ([]models.CommissionTransaction, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.CommissionTransaction{}).Where("agent_id = ?", agentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CommissionTransaction
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) SumTransactions(ctx context.Context, agentID uuid.UUID, txnType enums.CommissionType, statuses []enums.CommissionStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.CommissionTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("agent_id = ? AND type = ? AND status IN ?", agentID, txnType, statuses).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repository) AddToAgentTotal(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", agentID).
		Update("total_earned", gorm.Expr("total_earned + ?", amount)).Error
}

func (r *repository) CreateActivity(ctx context.Context, activity *models.AgentActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repository) GetLinkByCode(ctx context.Context, code string) (*models.ReferralLink, error) {
	var link models.ReferralLink
	if err := r.db.WithContext(ctx).First(&link, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) FirstLinkForAgent(ctx context.Context, agentID uuid.UUID) (*models.ReferralLink, error) {
	var link models.ReferralLink
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) CreateLink(ctx context.Context, link *models.ReferralLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) IncrementLinkClicks(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ReferralLink{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1")).Error
}

func (r *repository) CreateConversion(ctx context.Context, conversion *models.ReferralConversion) error {
	return r.db.WithContext(ctx).Create(conversion).Error
}

func (r *repository) HasConversionForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReferralConversion{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}
