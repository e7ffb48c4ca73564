package commissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/fees"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	dbpkg "github.com/adeyemiadedayo/kasuwa-backend/pkg/db"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Service defines the agent commission ledger operations.
type Service interface {
	// RecordOrderCommission credits the buyer's referring agent for a
	// paid order. No-op when the buyer has no referrer. Replays return
	// the original transaction. Runs inside the caller's transaction.
	RecordOrderCommission(ctx context.Context, tx *gorm.DB, input OrderCommissionInput) (*models.CommissionTransaction, error)
	AgentForUser(ctx context.Context, userID uuid.UUID) (*models.Agent, error)
	Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, agentID uuid.UUID, page pagination.Params) ([]models.CommissionTransaction, int64, error)
	Withdraw(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (*models.CommissionTransaction, error)
	CreateReferralLink(ctx context.Context, agentID uuid.UUID) (*models.ReferralLink, error)
	TrackClick(ctx context.Context, code string) (*models.ReferralLink, error)
}

// OrderCommissionInput captures what a paid order contributes to the ledger.
type OrderCommissionInput struct {
	BuyerID    uuid.UUID
	OrderID    uuid.UUID
	TotalMinor int64
	Currency   enums.Currency
	Reference  string
	PaidAt     time.Time
}

type service struct {
	repo Repository
	cfg  config.CommissionConfig
}

// NewService wires a commission service with its dependencies.
func NewService(repo Repository, cfg config.CommissionConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if cfg.RatePercent <= 0 || cfg.RatePercent >= 100 {
		return nil, fmt.Errorf("commission rate must be between 1 and 99 percent")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) RecordOrderCommission(ctx context.Context, tx *gorm.DB, input OrderCommissionInput) (*models.CommissionTransaction, error) {
	if input.BuyerID == uuid.Nil || input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id are required")
	}
	if input.TotalMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	repo := s.repo.WithTx(tx)

	agent, err := repo.GetAgentForBuyer(ctx, input.BuyerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolving referring agent")
	}

	amountMinor := fees.CommissionMinor(input.TotalMinor, s.cfg.RatePercent, s.cfg.MinAmountMinor)
	if amountMinor == 0 {
		// Below the payout minimum; the order earns the agent nothing.
		return nil, nil
	}
	amount := decimal.New(amountMinor, -2)
	description := fmt.Sprintf("commission on order %s", input.Reference)

	txn := &models.CommissionTransaction{
		AgentID:       agent.ID,
		ReferenceID:   input.OrderID,
		ReferenceType: enums.CommissionReferenceOrder,
		Type:          enums.CommissionTypeEarning,
		Status:        enums.CommissionStatusCompleted,
		Amount:        amount,
		Currency:      input.Currency,
		Description:   &description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		if dbpkg.IsUniqueViolation(err) {
			existing, readErr := repo.GetTransactionByReference(ctx, agent.ID, input.OrderID, enums.CommissionReferenceOrder)
			if readErr != nil {
				return nil, pkgerrors.Wrap(readErr, pkgerrors.CodeInternal, "re-reading commission")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording commission")
	}

	if err := repo.AddToAgentTotal(ctx, agent.ID, amount); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "updating agent total")
	}

	detail, err := json.Marshal(map[string]any{
		"order_id":  input.OrderID.String(),
		"reference": input.Reference,
		"amount":    amount.StringFixed(2),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "encoding agent activity")
	}
	activity := &models.AgentActivity{
		AgentID: agent.ID,
		Kind:    "commission_earned",
		Detail:  detail,
	}
	if err := repo.CreateActivity(ctx, activity); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording agent activity")
	}

	if s.cfg.ReferralEnabled {
		if err := s.recordConversion(ctx, repo, agent.ID, input.BuyerID, input.OrderID, txn.ID); err != nil {
			return nil, err
		}
	}

	return txn, nil
}

// recordConversion ties the order back to the agent's referral link,
// once per order. Agents without links simply skip this.
func (s *service) recordConversion(ctx context.Context, repo Repository, agentID, buyerID, orderID, commissionID uuid.UUID) error {
	exists, err := repo.HasConversionForOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "checking referral conversion")
	}
	if exists {
		return nil
	}

	link, err := repo.FirstLinkForAgent(ctx, agentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading referral link")
	}

	conversion := &models.ReferralConversion{
		LinkID:         link.ID,
		ReferredUserID: buyerID,
		OrderID:        &orderID,
		CommissionID:   &commissionID,
	}
	if err := repo.CreateConversion(ctx, conversion); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording referral conversion")
	}
	return nil
}

func (s *service) AgentForUser(ctx context.Context, userID uuid.UUID) (*models.Agent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	agent, err := s.repo.GetAgentByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent profile not found")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading agent")
	}
	return agent, nil
}

func (s *service) Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error) {
	if agentID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}

	earned, err := s.repo.SumTransactions(ctx, agentID, enums.CommissionTypeEarning,
		[]enums.CommissionStatus{enums.CommissionStatusCompleted})
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "summing earnings")
	}
	withdrawn, err := s.repo.SumTransactions(ctx, agentID, enums.CommissionTypeWithdrawal,
		[]enums.CommissionStatus{enums.CommissionStatusPending, enums.CommissionStatusCompleted})
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "summing withdrawals")
	}
	return earned.Sub(withdrawn), nil
}

func (s *service) ListTransactions(ctx context.Context, agentID uuid.UUID, page pagination.Params) ([]models.CommissionTransaction, int64, error) {
	if agentID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}
	return s.repo.ListTransactions(ctx, agentID, page)
}

func (s *service) Withdraw(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (*models.CommissionTransaction, error) {
	if amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
	}

	balance, err := s.Balance(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawal exceeds available balance").
			WithDetails(map[string]any{"balance": balance.StringFixed(2)})
	}

	description := "withdrawal request"
	txn := &models.CommissionTransaction{
		AgentID:       agentID,
		ReferenceID:   uuid.New(),
		ReferenceType: enums.CommissionReferenceReferral,
		Type:          enums.CommissionTypeWithdrawal,
		Status:        enums.CommissionStatusPending,
		Amount:        amount.Round(2),
		Currency:      enums.CurrencyGHS,
		Description:   &description,
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording withdrawal")
	}
	return txn, nil
}

func (s *service) CreateReferralLink(ctx context.Context, agentID uuid.UUID) (*models.ReferralLink, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}
	if _, err := s.repo.GetAgentByID(ctx, agentID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "agent not found")
	}

	link := &models.ReferralLink{
		AgentID: agentID,
		Code:    referralCode(),
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "creating referral link")
	}
	return link, nil
}

func (s *service) TrackClick(ctx context.Context, code string) (*models.ReferralLink, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referral code is required")
	}
	link, err := s.repo.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "referral link not found")
	}
	if err := s.repo.IncrementLinkClicks(ctx, link.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "counting click")
	}
	link, err = s.repo.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "re-reading referral link")
	}
	return link, nil
}

func referralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
