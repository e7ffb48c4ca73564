package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// Service defines invoice operations.
type Service interface {
	// GenerateForOrder creates one paid invoice per seller slice of a
	// settled order. Runs inside the caller's transaction.
	GenerateForOrder(ctx context.Context, tx *gorm.DB, input GenerateInput) ([]models.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Invoice, int64, error)
}

// SellerSlice is one seller's share of an order.
type SellerSlice struct {
	SellerID uuid.UUID
	Amount   decimal.Decimal
}

// GenerateInput captures what invoice generation needs from a settled order.
type GenerateInput struct {
	OrderID   uuid.UUID
	Reference string
	Currency  enums.Currency
	Slices    []SellerSlice
	PaidAt    time.Time
}

type service struct {
	repo Repository
}

// NewService wires an invoice service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GenerateForOrder(ctx context.Context, tx *gorm.DB, input GenerateInput) ([]models.Invoice, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if len(input.Slices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one seller slice is required")
	}

	repo := s.repo.WithTx(tx)

	// Re-generation on a replayed settlement returns the existing set.
	existing, err := repo.ListByOrder(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading invoices")
	}
	if len(existing) > 0 {
		return existing, nil
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	created := make([]models.Invoice, 0, len(input.Slices))
	for i, slice := range input.Slices {
		if slice.SellerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
		}
		invoice := models.Invoice{
			Number:   invoiceNumber(input.Reference, i+1),
			OrderID:  input.OrderID,
			SellerID: slice.SellerID,
			Status:   enums.InvoiceStatusPaid,
			Amount:   slice.Amount.Round(2),
			Currency: input.Currency,
			IssuedAt: &paidAt,
			PaidAt:   &paidAt,
		}
		if err := repo.Create(ctx, &invoice); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "creating invoice")
		}
		created = append(created, invoice)
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id is required")
	}
	invoice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Invoice, int64, error) {
	if sellerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	return s.repo.ListBySeller(ctx, sellerID, page)
}

func invoiceNumber(reference string, seq int) string {
	ref := strings.ToUpper(strings.TrimSpace(reference))
	return fmt.Sprintf("INV-%s-%02d", ref, seq)
}
