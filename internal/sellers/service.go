package sellers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Service defines seller dashboard operations.
type Service interface {
	GetProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error)
	ProfileForUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	GetAnalytics(ctx context.Context, sellerID uuid.UUID) (*models.SellerAnalytics, error)
	ListEvents(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.SellerEvent, int64, error)
	// RecordSale folds a settled order into the seller's analytics and
	// emits a dashboard event. Runs inside the caller's transaction.
	RecordSale(ctx context.Context, tx *gorm.DB, sale SaleRecord) error
}

// SaleRecord is one seller's slice of a settled order.
type SaleRecord struct {
	SellerID uuid.UUID
	OrderID  uuid.UUID
	Units    int64
	Revenue  decimal.Decimal
	PaidAt   time.Time
}

type service struct {
	repo Repository
}

// NewService wires a seller service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	profile, err := s.repo.GetProfileByID(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "seller not found")
	}
	return profile, nil
}

func (s *service) ProfileForUser(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "seller profile not found")
	}
	return profile, nil
}

func (s *service) GetAnalytics(ctx context.Context, sellerID uuid.UUID) (*models.SellerAnalytics, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	row, err := s.repo.GetAnalytics(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "no analytics recorded for seller")
	}
	return row, nil
}

func (s *service) ListEvents(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.SellerEvent, int64, error) {
	if sellerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	return s.repo.ListEvents(ctx, sellerID, page)
}

func (s *service) RecordSale(ctx context.Context, tx *gorm.DB, sale SaleRecord) error {
	if sale.SellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if sale.Units <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "units must be positive")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.IncrementAnalytics(ctx, sale.SellerID, 1, sale.Units, sale.Revenue, sale.PaidAt); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "updating seller analytics")
	}

	payload, err := json.Marshal(map[string]any{
		"order_id": sale.OrderID.String(),
		"units":    sale.Units,
		"revenue":  sale.Revenue.StringFixed(2),
	})
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "encoding seller event")
	}

	// Payment events surface at the top of the dashboard and fall due
	// two days after the sale.
	dueAt := sale.PaidAt.Add(48 * time.Hour)
	event := &models.SellerEvent{
		SellerID: sale.SellerID,
		Type:     enums.SellerEventPaymentReceived,
		Priority: enums.SellerEventPriorityHigh,
		Payload:  payload,
		DueAt:    &dueAt,
	}
	if err := repo.InsertEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording seller event")
	}
	return nil
}
