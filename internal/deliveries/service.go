package deliveries

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/fees"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/geo"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/courierloc"
	dbpkg "github.com/adeyemiadedayo/kasuwa-backend/pkg/db"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

type locationSource interface {
	Record(ctx context.Context, loc courierloc.Location) error
	Lookup(ctx context.Context, courierID uuid.UUID) (*courierloc.Location, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) (*models.Notification, error)
}

// Service defines delivery operations for couriers and the
// settlement-side spawn.
type Service interface {
	// SpawnForOrder creates the courier job for a freshly paid order.
	// It runs inside the settlement transaction and is idempotent on
	// the order.
	SpawnForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Delivery, error)
	// ListAvailable returns unassigned pending deliveries within the
	// courier's match radius, most urgent first.
	ListAvailable(ctx context.Context, courierID uuid.UUID) ([]models.Delivery, error)
	ListMine(ctx context.Context, courierID uuid.UUID, page pagination.Params) ([]models.Delivery, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	Accept(ctx context.Context, courierID, deliveryID uuid.UUID) (*models.Delivery, error)
	UpdateStatus(ctx context.Context, courierID, deliveryID uuid.UUID, upd StatusUpdate) (*models.Delivery, error)
	PingLocation(ctx context.Context, courierID uuid.UUID, lat, lng float64) error
}

// StatusUpdate carries a courier's transition report. Proof urls and
// the recipient signature usually arrive with the delivered step.
type StatusUpdate struct {
	Status    enums.DeliveryStatus
	Note      *string
	ProofURLs []string
	Signature *string
}

type service struct {
	repo      Repository
	locations locationSource
	calc      *fees.Calculator
	runner    txRunner
	notify    notifier
	logg      *logger.Logger
	cfg       config.DeliveryConfig
}

// NewService wires a delivery service with its dependencies. The
// notifier and logger may be nil; delivery state still moves without
// an inbox.
func NewService(repo Repository, locations locationSource, calc *fees.Calculator, runner txRunner, notify notifier, logg *logger.Logger, cfg config.DeliveryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if locations == nil {
		return nil, fmt.Errorf("courier location store required")
	}
	if calc == nil {
		return nil, fmt.Errorf("fee calculator required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.MatchRadiusKm <= 0 {
		return nil, fmt.Errorf("match radius must be positive")
	}
	if cfg.CourierCapacity <= 0 {
		return nil, fmt.Errorf("courier capacity must be positive")
	}
	return &service{repo: repo, locations: locations, calc: calc, runner: runner, notify: notify, logg: logg, cfg: cfg}, nil
}

func (s *service) SpawnForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Delivery, error) {
	if order == nil || order.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if order.ShippingAddress == nil || !order.ShippingAddress.CourierRequested() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order did not request a courier")
	}

	repo := s.repo.WithTx(tx)

	priority := enums.DeliveryPriorityStandard
	if raw := order.ShippingAddress.DeliveryRequest.Priority; raw != "" {
		parsed, err := enums.ParseDeliveryPriority(raw)
		if err == nil {
			priority = parsed
		}
	}

	delivery := &models.Delivery{
		OrderID:        order.ID,
		BuyerID:        order.BuyerID,
		Status:         enums.DeliveryStatusPending,
		Priority:       priority,
		DropoffAddress: order.ShippingAddress,
	}
	if lat, lng, ok := order.ShippingAddress.Coordinates(); ok {
		delivery.DropoffLat = &lat
		delivery.DropoffLng = &lng
	}

	// Pickup is the first seller's address.
	seller, err := repo.OrderFirstSellerProfile(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolving pickup seller")
	}
	if seller.Address != nil {
		delivery.PickupAddress = seller.Address
		if lat, lng, ok := seller.Address.Coordinates(); ok {
			delivery.PickupLat = &lat
			delivery.PickupLng = &lng
		}
	}

	distance := s.calc.DefaultDistanceKm()
	if delivery.PickupLat != nil && delivery.DropoffLat != nil {
		km := geo.DistanceKm(
			geo.Point{Lat: *delivery.PickupLat, Lng: *delivery.PickupLng},
			geo.Point{Lat: *delivery.DropoffLat, Lng: *delivery.DropoffLng},
		)
		distance = decimal.NewFromFloat(km).Round(2)
	}
	delivery.DistanceKm = distance

	// The buyer already paid the fee frozen on the order; reprice only
	// when checkout somehow left it empty.
	fee := order.DeliveryFee
	if fee.Sign() <= 0 {
		fee = s.calc.DeliveryFee(distance, priority)
	}
	delivery.Fee = fee
	delivery.CourierShare, delivery.PlatformShare = fees.Split(fee)

	if notes := order.ShippingAddress.DeliveryRequest.Notes; notes != "" {
		delivery.Notes = &notes
	}

	if err := repo.Create(ctx, delivery); err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return repo.GetByOrderID(ctx, order.ID)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "creating delivery")
	}
	return delivery, nil
}

func (s *service) ListAvailable(ctx context.Context, courierID uuid.UUID) ([]models.Delivery, error) {
	if courierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}

	// A courier who never pinged has nothing in range yet.
	loc, err := s.locations.Lookup(ctx, courierID)
	if err != nil {
		var appErr *pkgerrors.Error
		if pkgerrors.As(err, &appErr) && appErr.Code == pkgerrors.CodeNotFound {
			return []models.Delivery{}, nil
		}
		return nil, err
	}
	here := geo.Point{Lat: loc.Latitude, Lng: loc.Longitude}

	pending, err := s.repo.ListPendingUnassigned(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "listing pending deliveries")
	}

	type candidate struct {
		delivery models.Delivery
		km       float64
	}
	matched := make([]candidate, 0, len(pending))
	for _, d := range pending {
		if d.PickupLat == nil || d.PickupLng == nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithDeliveryID(ctx, d.ID.String()),
					"skipping delivery without pickup coordinates")
			}
			continue
		}
		pickup := geo.Point{Lat: *d.PickupLat, Lng: *d.PickupLng}
		km := geo.DistanceKm(here, pickup)
		if km > s.cfg.MatchRadiusKm {
			continue
		}
		matched = append(matched, candidate{delivery: d, km: km})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := matched[i].delivery.Priority.Rank(), matched[j].delivery.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return matched[i].km < matched[j].km
	})

	out := make([]models.Delivery, len(matched))
	for i, c := range matched {
		out[i] = c.delivery
	}
	return out, nil
}

func (s *service) ListMine(ctx context.Context, courierID uuid.UUID, page pagination.Params) ([]models.Delivery, int64, error) {
	if courierID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}
	return s.repo.ListByCourier(ctx, courierID, page)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id is required")
	}
	delivery, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "delivery not found")
	}
	return delivery, nil
}

func (s *service) Accept(ctx context.Context, courierID, deliveryID uuid.UUID) (*models.Delivery, error) {
	if courierID == uuid.Nil || deliveryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier id and delivery id are required")
	}

	profile, err := s.repo.GetProfileByUserID(ctx, courierID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "courier profile not found")
	}
	if !profile.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "courier profile is inactive")
	}

	active, err := s.repo.CountActiveForCourier(ctx, courierID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "counting active deliveries")
	}
	if active >= int64(s.cfg.CourierCapacity) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "courier is at capacity")
	}

	// The listing is advisory; the courier's position is checked again
	// here so a stale client cannot claim a job out of range.
	target, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "delivery not found")
	}
	if target.PickupLat != nil && target.PickupLng != nil {
		loc, err := s.locations.Lookup(ctx, courierID)
		if err != nil {
			var appErr *pkgerrors.Error
			if pkgerrors.As(err, &appErr) && appErr.Code == pkgerrors.CodeNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "courier location unknown, ping location first")
			}
			return nil, err
		}
		here := geo.Point{Lat: loc.Latitude, Lng: loc.Longitude}
		pickup := geo.Point{Lat: *target.PickupLat, Lng: *target.PickupLng}
		if !geo.WithinRadius(here, pickup, s.cfg.MatchRadiusKm) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is out of range")
		}
	}

	now := time.Now().UTC()
	var claimed *models.Delivery
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.ClaimPending(ctx, deliveryID, courierID, now)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "claiming delivery")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery already taken")
		}

		if err := repo.AppendHistory(ctx, &models.DeliveryStatusHistory{
			DeliveryID: deliveryID,
			FromStatus: enums.DeliveryStatusPending,
			ToStatus:   enums.DeliveryStatusAccepted,
			ActorID:    &courierID,
		}); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording status history")
		}

		if err := repo.IncrementAccepted(ctx, courierID, now); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "updating courier stats")
		}

		claimed, err = repo.GetByID(ctx, deliveryID)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "reloading delivery")
		}
		return s.notifyBuyer(ctx, tx, claimed, enums.NotificationTypeDeliveryAccepted,
			"Courier assigned", "A courier accepted your delivery.")
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// notifyBuyer drops a message in the buyer's inbox. A nil notifier
// keeps deliveries moving without one.
func (s *service) notifyBuyer(ctx context.Context, tx *gorm.DB, delivery *models.Delivery, kind enums.NotificationType, title, body string) error {
	if s.notify == nil || delivery.BuyerID == uuid.Nil {
		return nil
	}
	_, err := s.notify.Notify(ctx, tx, notifications.NotifyInput{
		UserID: delivery.BuyerID,
		Type:   kind,
		Title:  title,
		Body:   body,
		Data: map[string]any{
			"delivery_id": delivery.ID.String(),
			"order_id":    delivery.OrderID.String(),
			"status":      delivery.Status.String(),
		},
	})
	return err
}

// notifySellers tells every seller on the order about the transition.
func (s *service) notifySellers(ctx context.Context, tx *gorm.DB, repo Repository, delivery *models.Delivery, next enums.DeliveryStatus) error {
	if s.notify == nil {
		return nil
	}
	sellerUserIDs, err := repo.OrderSellerUserIDs(ctx, delivery.OrderID)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolving order sellers")
	}
	for _, userID := range sellerUserIDs {
		_, err := s.notify.Notify(ctx, tx, notifications.NotifyInput{
			UserID: userID,
			Type:   enums.NotificationTypeDeliveryUpdate,
			Title:  "Delivery update",
			Body:   "Delivery for one of your orders is now " + next.String() + ".",
			Data: map[string]any{
				"delivery_id": delivery.ID.String(),
				"order_id":    delivery.OrderID.String(),
				"status":      next.String(),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, courierID, deliveryID uuid.UUID, upd StatusUpdate) (*models.Delivery, error) {
	next := upd.Status
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery status")
	}
	if next == enums.DeliveryStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use accept to claim a delivery")
	}

	delivery, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "delivery not found")
	}
	if delivery.CourierID == nil || *delivery.CourierID != courierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another courier")
	}
	if !delivery.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move delivery from %s to %s", delivery.Status, next))
	}

	from := delivery.Status
	now := time.Now().UTC()
	delivery.Status = next
	switch next {
	case enums.DeliveryStatusPickedUp:
		delivery.PickedUpAt = &now
	case enums.DeliveryStatusDelivered:
		delivery.DeliveredAt = &now
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.UpdateStatus(ctx, delivery); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "updating delivery")
		}
		if err := repo.AppendHistory(ctx, &models.DeliveryStatusHistory{
			DeliveryID: delivery.ID,
			FromStatus: from,
			ToStatus:   next,
			ActorID:    &courierID,
			Note:       upd.Note,
			ProofURLs:  upd.ProofURLs,
			Signature:  upd.Signature,
		}); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording status history")
		}

		if err := s.notifyBuyer(ctx, tx, delivery, enums.NotificationTypeDeliveryUpdate,
			"Delivery update", "Your delivery is now "+next.String()+"."); err != nil {
			return err
		}
		if err := s.notifySellers(ctx, tx, repo, delivery, next); err != nil {
			return err
		}

		if next != enums.DeliveryStatusDelivered {
			return nil
		}

		// Completion pays the courier once; the unique index on
		// delivery_id absorbs replays.
		err := repo.CreateEarning(ctx, &models.CourierEarning{
			CourierID:  courierID,
			DeliveryID: delivery.ID,
			Amount:     delivery.CourierShare,
		})
		if err != nil && !dbpkg.IsUniqueViolation(err) {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "recording courier earning")
		}
		if err == nil {
			if err := repo.IncrementCompleted(ctx, courierID, now); err != nil {
				return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "updating courier stats")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *service) PingLocation(ctx context.Context, courierID uuid.UUID, lat, lng float64) error {
	if courierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}
	if _, err := s.repo.GetProfileByUserID(ctx, courierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "courier profile not found")
		}
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "loading courier profile")
	}
	return s.locations.Record(ctx, courierloc.Location{
		CourierID:  courierID,
		Latitude:   lat,
		Longitude:  lng,
		ReportedAt: time.Now().UTC(),
	})
}
