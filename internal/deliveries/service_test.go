package deliveries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adeyemiadedayo/kasuwa-backend/internal/fees"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/courierloc"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db/models"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
)

type fakeRepository struct {
	deliveries   map[uuid.UUID]*models.Delivery
	profiles     map[uuid.UUID]*models.CourierProfile
	earnings     map[uuid.UUID]*models.CourierEarning // keyed by delivery id
	sellerUsers  map[uuid.UUID][]uuid.UUID            // order id -> seller user ids
	orderSellers map[uuid.UUID]*models.SellerProfile  // order id -> first seller
	pickupSeller *models.SellerProfile                // fallback when no per-order seller is set
	history      []models.DeliveryStatusHistory
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		deliveries:   map[uuid.UUID]*models.Delivery{},
		profiles:     map[uuid.UUID]*models.CourierProfile{},
		earnings:     map[uuid.UUID]*models.CourierEarning{},
		sellerUsers:  map[uuid.UUID][]uuid.UUID{},
		orderSellers: map[uuid.UUID]*models.SellerProfile{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, d *models.Delivery) error {
	for _, existing := range f.deliveries {
		if existing.OrderID == d.OrderID {
			return &uniqueErr{}
		}
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	f.deliveries[d.ID] = d
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (f *fakeRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	for _, d := range f.deliveries {
		if d.OrderID == orderID {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListPendingUnassigned(_ context.Context) ([]models.Delivery, error) {
	var out []models.Delivery
	for _, d := range f.deliveries {
		if d.Status == enums.DeliveryStatusPending && d.CourierID == nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListByCourier(_ context.Context, courierID uuid.UUID, _ pagination.Params) ([]models.Delivery, int64, error) {
	var out []models.Delivery
	for _, d := range f.deliveries {
		if d.CourierID != nil && *d.CourierID == courierID {
			out = append(out, *d)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) ClaimPending(_ context.Context, deliveryID, courierID uuid.UUID, at time.Time) (int64, error) {
	d, ok := f.deliveries[deliveryID]
	if !ok || d.Status != enums.DeliveryStatusPending || d.CourierID != nil {
		return 0, nil
	}
	d.CourierID = &courierID
	d.Status = enums.DeliveryStatusAccepted
	d.AcceptedAt = &at
	return 1, nil
}

func (f *fakeRepository) CountActiveForCourier(_ context.Context, courierID uuid.UUID) (int64, error) {
	var count int64
	for _, d := range f.deliveries {
		if d.CourierID != nil && *d.CourierID == courierID && d.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) UpdateStatus(_ context.Context, d *models.Delivery) error {
	f.deliveries[d.ID] = d
	return nil
}

func (f *fakeRepository) AppendHistory(_ context.Context, entry *models.DeliveryStatusHistory) error {
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeRepository) CreateEarning(_ context.Context, earning *models.CourierEarning) error {
	if _, exists := f.earnings[earning.DeliveryID]; exists {
		return &uniqueErr{}
	}
	f.earnings[earning.DeliveryID] = earning
	return nil
}

func (f *fakeRepository) GetProfileByUserID(_ context.Context, userID uuid.UUID) (*models.CourierProfile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeRepository) IncrementAccepted(_ context.Context, userID uuid.UUID, _ time.Time) error {
	f.profiles[userID].TotalDeliveries++
	return nil
}

func (f *fakeRepository) IncrementCompleted(_ context.Context, userID uuid.UUID, _ time.Time) error {
	f.profiles[userID].CompletedDeliveries++
	return nil
}

func (f *fakeRepository) OrderSellerUserIDs(_ context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	return f.sellerUsers[orderID], nil
}

func (f *fakeRepository) OrderFirstSellerProfile(_ context.Context, orderID uuid.UUID) (*models.SellerProfile, error) {
	if profile, ok := f.orderSellers[orderID]; ok {
		return profile, nil
	}
	if f.pickupSeller != nil {
		return f.pickupSeller, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type uniqueErr struct{}

func (*uniqueErr) Error() string { return "UNIQUE constraint failed: deliveries.order_id" }

type fakeLocations struct {
	positions map[uuid.UUID]courierloc.Location
}

func (f *fakeLocations) Record(_ context.Context, loc courierloc.Location) error {
	f.positions[loc.CourierID] = loc
	return nil
}

func (f *fakeLocations) Lookup(_ context.Context, courierID uuid.UUID) (*courierloc.Location, error) {
	loc, ok := f.positions[courierID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no recent location")
	}
	return &loc, nil
}

type fakeRunner struct{}

func (fakeRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeNotifier struct {
	sent []notifications.NotifyInput
}

func (f *fakeNotifier) Notify(_ context.Context, _ *gorm.DB, input notifications.NotifyInput) (*models.Notification, error) {
	f.sent = append(f.sent, input)
	return &models.Notification{ID: uuid.New(), UserID: input.UserID, Type: input.Type}, nil
}

type fixture struct {
	svc       Service
	repo      *fakeRepository
	locations *fakeLocations
	notify    *fakeNotifier
	courierID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepository()
	locations := &fakeLocations{positions: map[uuid.UUID]courierloc.Location{}}
	calc, err := fees.NewCalculator(fees.Config{RatePerKm: "15.00", DefaultDistanceKm: "5"})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	notify := &fakeNotifier{}
	cfg := config.DeliveryConfig{MatchRadiusKm: 8.05, CourierCapacity: 2}
	svc, err := NewService(repo, locations, calc, fakeRunner{}, notify, nil, cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	courierID := uuid.New()
	repo.profiles[courierID] = &models.CourierProfile{ID: uuid.New(), UserID: courierID, IsActive: true}
	repo.pickupSeller = sellerAt("5.5600", "-0.2057")

	return &fixture{svc: svc, repo: repo, locations: locations, notify: notify, courierID: courierID}
}

func (fx *fixture) placeCourier(id uuid.UUID, lat, lng float64) {
	fx.locations.positions[id] = courierloc.Location{CourierID: id, Latitude: lat, Longitude: lng}
}

// sellerAt builds a seller profile whose shop sits at the given
// coordinates; deliveries pick up there.
func sellerAt(lat, lng string) *models.SellerProfile {
	return &models.SellerProfile{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Address: &types.Address{
			Line1:     "12 Market Rd",
			City:      "Accra",
			Region:    "Greater Accra",
			Country:   "GH",
			Latitude:  lat,
			Longitude: lng,
		},
	}
}

func paidCourierOrder(priority string) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		Reference:   "ord_test",
		BuyerID:     uuid.New(),
		DeliveryFee: decimal.RequireFromString("112.50"),
		ShippingAddress: &types.Address{
			Line1:     "1 Oxford St",
			City:      "Accra",
			Region:    "Greater Accra",
			Country:   "GH",
			Latitude:  "5.5600",
			Longitude: "-0.2057",
			DeliveryRequest: &types.DeliveryRequest{
				Requested: true,
				Priority:  priority,
			},
		},
	}
}

func TestSpawnForOrderSplitsFee(t *testing.T) {
	fx := newFixture(t)
	order := paidCourierOrder("express")

	delivery, err := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if err != nil {
		t.Fatalf("SpawnForOrder: %v", err)
	}

	if delivery.Status != enums.DeliveryStatusPending {
		t.Errorf("status = %s, want pending", delivery.Status)
	}
	if delivery.Priority != enums.DeliveryPriorityExpress {
		t.Errorf("priority = %s, want express", delivery.Priority)
	}
	if !delivery.Fee.Equal(decimal.RequireFromString("112.50")) {
		t.Errorf("fee = %s, want the order's frozen 112.50", delivery.Fee)
	}
	if !delivery.CourierShare.Equal(decimal.RequireFromString("78.75")) {
		t.Errorf("courier share = %s, want 78.75", delivery.CourierShare)
	}
	if !delivery.PlatformShare.Equal(decimal.RequireFromString("33.75")) {
		t.Errorf("platform share = %s, want 33.75", delivery.PlatformShare)
	}
	if !delivery.CourierShare.Add(delivery.PlatformShare).Equal(delivery.Fee) {
		t.Error("shares must sum back to the fee")
	}
	if delivery.DropoffLat == nil || delivery.DropoffLng == nil {
		t.Error("expected denormalized dropoff coordinates")
	}
	if delivery.PickupAddress == nil || delivery.PickupLat == nil || delivery.PickupLng == nil {
		t.Error("expected the seller's address as the pickup point")
	}
}

func TestSpawnForOrderMeasuresPickupToDropoff(t *testing.T) {
	fx := newFixture(t)
	order := paidCourierOrder("standard")
	// Seller in Accra central, buyer at the stock dropoff ~5.3km away.
	fx.repo.orderSellers[order.ID] = sellerAt("5.6037", "-0.1870")

	delivery, err := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if err != nil {
		t.Fatalf("SpawnForOrder: %v", err)
	}
	if !delivery.DistanceKm.Equal(decimal.RequireFromString("5.28")) {
		t.Errorf("distance = %s, want 5.28", delivery.DistanceKm)
	}
	if delivery.PickupLat == nil || *delivery.PickupLat != 5.6037 {
		t.Errorf("pickup lat = %v, want the seller's 5.6037", delivery.PickupLat)
	}
}

func TestSpawnForOrderWithoutSellerCoordinates(t *testing.T) {
	fx := newFixture(t)
	order := paidCourierOrder("standard")
	fx.repo.orderSellers[order.ID] = &models.SellerProfile{ID: uuid.New(), UserID: uuid.New()}

	delivery, err := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if err != nil {
		t.Fatalf("SpawnForOrder: %v", err)
	}
	if delivery.PickupAddress != nil {
		t.Error("a seller without an address leaves the pickup unset")
	}
	if !delivery.DistanceKm.Equal(decimal.RequireFromString("5")) {
		t.Errorf("distance = %s, want the configured default 5", delivery.DistanceKm)
	}
}

func TestSpawnForOrderReplayReturnsExisting(t *testing.T) {
	fx := newFixture(t)
	order := paidCourierOrder("standard")

	first, err := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if err != nil {
		t.Fatalf("first spawn: %v", err)
	}
	second, err := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.ID != second.ID {
		t.Error("replayed spawn should return the existing delivery")
	}
	if len(fx.repo.deliveries) != 1 {
		t.Errorf("deliveries = %d, want 1", len(fx.repo.deliveries))
	}
}

func TestListAvailableFiltersByRadiusAndSortsByPriority(t *testing.T) {
	fx := newFixture(t)
	fx.locations.positions[fx.courierID] = courierloc.Location{
		CourierID: fx.courierID,
		Latitude:  5.5600,
		Longitude: -0.2057,
	}

	near := paidCourierOrder("standard") // picks up at the courier's own position
	farOrder := paidCourierOrder("standard")
	farOrder.ID = uuid.New()
	fx.repo.orderSellers[farOrder.ID] = sellerAt("6.6885", "-1.6244") // Kumasi, ~200km away
	urgent := paidCourierOrder("urgent")
	urgent.ID = uuid.New()
	fx.repo.orderSellers[urgent.ID] = sellerAt("5.5650", "-0.2100")

	for _, order := range []*models.Order{near, farOrder, urgent} {
		if _, err := fx.svc.SpawnForOrder(context.Background(), nil, order); err != nil {
			t.Fatalf("spawn: %v", err)
		}
	}

	available, err := fx.svc.ListAvailable(context.Background(), fx.courierID)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("matched = %d, want 2 (far delivery excluded)", len(available))
	}
	if available[0].Priority != enums.DeliveryPriorityUrgent {
		t.Errorf("first = %s, want urgent first", available[0].Priority)
	}
}

func TestListAvailableSortsByPickupDistanceWithinPriority(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 5.5600, -0.2057)

	farther := paidCourierOrder("standard")
	fx.repo.orderSellers[farther.ID] = sellerAt("5.6100", "-0.2057") // ~5.6km out
	nearer := paidCourierOrder("standard")
	nearer.ID = uuid.New()
	fx.repo.orderSellers[nearer.ID] = sellerAt("5.5650", "-0.2057") // ~0.6km out

	spawnedFarther, err := fx.svc.SpawnForOrder(context.Background(), nil, farther)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	spawnedNearer, err := fx.svc.SpawnForOrder(context.Background(), nil, nearer)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	available, err := fx.svc.ListAvailable(context.Background(), fx.courierID)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("matched = %d, want 2", len(available))
	}
	if available[0].ID != spawnedNearer.ID || available[1].ID != spawnedFarther.ID {
		t.Error("equal priorities must order by pickup distance, closest first")
	}
}

func TestListAvailableSkipsDeliveriesWithoutPickupCoordinates(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 5.5600, -0.2057)

	order := paidCourierOrder("standard")
	fx.repo.orderSellers[order.ID] = &models.SellerProfile{ID: uuid.New(), UserID: uuid.New()}
	if _, err := fx.svc.SpawnForOrder(context.Background(), nil, order); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	available, err := fx.svc.ListAvailable(context.Background(), fx.courierID)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("matched = %d, a delivery with no pickup point cannot be offered", len(available))
	}
}

func TestListAvailableWithoutLocation(t *testing.T) {
	fx := newFixture(t)

	available, err := fx.svc.ListAvailable(context.Background(), fx.courierID)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("matched = %d, a courier who never pinged sees an empty list", len(available))
	}
}

func TestAcceptClaimsAtomically(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 5.5600, -0.2057)
	order := paidCourierOrder("standard")
	spawned, _ := fx.svc.SpawnForOrder(context.Background(), nil, order)

	claimed, err := fx.svc.Accept(context.Background(), fx.courierID, spawned.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if claimed.Status != enums.DeliveryStatusAccepted || claimed.CourierID == nil {
		t.Errorf("got %s/%v, want accepted with courier", claimed.Status, claimed.CourierID)
	}
	if len(fx.notify.sent) != 1 || fx.notify.sent[0].UserID != order.BuyerID {
		t.Errorf("expected one buyer notification, got %v", fx.notify.sent)
	}
	if fx.repo.profiles[fx.courierID].TotalDeliveries != 1 {
		t.Errorf("total = %d, want 1", fx.repo.profiles[fx.courierID].TotalDeliveries)
	}

	rival := uuid.New()
	fx.repo.profiles[rival] = &models.CourierProfile{ID: uuid.New(), UserID: rival, IsActive: true}
	fx.placeCourier(rival, 5.5600, -0.2057)
	_, err = fx.svc.Accept(context.Background(), rival, spawned.ID)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict on second claim, got %v", err)
	}
}

func TestAcceptOutOfRange(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 6.6885, -1.6244) // Kumasi, ~200km from the pickup
	order := paidCourierOrder("standard")
	spawned, _ := fx.svc.SpawnForOrder(context.Background(), nil, order)

	_, err := fx.svc.Accept(context.Background(), fx.courierID, spawned.ID)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict out of range, got %v", err)
	}
	if fx.repo.deliveries[spawned.ID].CourierID != nil {
		t.Error("out-of-range claim must not assign the courier")
	}
}

func TestAcceptRespectsCapacity(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 5.5600, -0.2057)

	var last uuid.UUID
	for i := 0; i < 3; i++ {
		order := paidCourierOrder("standard")
		order.ID = uuid.New()
		spawned, err := fx.svc.SpawnForOrder(context.Background(), nil, order)
		if err != nil {
			t.Fatalf("spawn: %v", err)
		}
		last = spawned.ID
		if i < 2 {
			if _, err := fx.svc.Accept(context.Background(), fx.courierID, spawned.ID); err != nil {
				t.Fatalf("accept %d: %v", i, err)
			}
		}
	}

	_, err := fx.svc.Accept(context.Background(), fx.courierID, last)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected capacity state-conflict, got %v", err)
	}
}

func TestUpdateStatusWalksLifecycle(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 5.5600, -0.2057)
	order := paidCourierOrder("standard")
	sellerUser := uuid.New()
	fx.repo.sellerUsers[order.ID] = []uuid.UUID{sellerUser}
	spawned, _ := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if _, err := fx.svc.Accept(context.Background(), fx.courierID, spawned.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	// Skipping straight to delivered is illegal.
	_, err := fx.svc.UpdateStatus(context.Background(), fx.courierID, spawned.ID, StatusUpdate{Status: enums.DeliveryStatusDelivered})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state-conflict on skipped step, got %v", err)
	}

	for _, next := range []enums.DeliveryStatus{
		enums.DeliveryStatusPickedUp,
		enums.DeliveryStatusInTransit,
		enums.DeliveryStatusDelivered,
	} {
		if _, err := fx.svc.UpdateStatus(context.Background(), fx.courierID, spawned.ID, StatusUpdate{Status: next}); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	final := fx.repo.deliveries[spawned.ID]
	if final.Status != enums.DeliveryStatusDelivered || final.DeliveredAt == nil {
		t.Errorf("got %s, want delivered with timestamp", final.Status)
	}

	earning := fx.repo.earnings[spawned.ID]
	if earning == nil {
		t.Fatal("expected a courier earning on completion")
	}
	if !earning.Amount.Equal(final.CourierShare) {
		t.Errorf("earning = %s, want courier share %s", earning.Amount, final.CourierShare)
	}
	if fx.repo.profiles[fx.courierID].CompletedDeliveries != 1 {
		t.Errorf("completed = %d, want 1", fx.repo.profiles[fx.courierID].CompletedDeliveries)
	}

	// pending->accepted, accepted->picked_up, picked_up->in_transit, in_transit->delivered
	if len(fx.repo.history) != 4 {
		t.Errorf("history rows = %d, want 4", len(fx.repo.history))
	}

	// Buyer hears about the claim and every later transition; the
	// seller hears about the transitions only.
	if len(fx.notify.sent) != 7 {
		t.Errorf("notifications = %d, want 7", len(fx.notify.sent))
	}
	var sellerHeard int
	for _, n := range fx.notify.sent {
		if n.UserID == sellerUser {
			sellerHeard++
		}
	}
	if sellerHeard != 3 {
		t.Errorf("seller notifications = %d, want 3", sellerHeard)
	}
}

func TestUpdateStatusForeignCourierRejected(t *testing.T) {
	fx := newFixture(t)
	fx.placeCourier(fx.courierID, 5.5600, -0.2057)
	order := paidCourierOrder("standard")
	spawned, _ := fx.svc.SpawnForOrder(context.Background(), nil, order)
	if _, err := fx.svc.Accept(context.Background(), fx.courierID, spawned.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	_, err := fx.svc.UpdateStatus(context.Background(), uuid.New(), spawned.ID, StatusUpdate{Status: enums.DeliveryStatusPickedUp})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for another courier, got %v", err)
	}
	if fx.repo.deliveries[spawned.ID].Status != enums.DeliveryStatusAccepted {
		t.Error("a foreign courier must not move the delivery")
	}
}

func TestPingLocation(t *testing.T) {
	fx := newFixture(t)

	if err := fx.svc.PingLocation(context.Background(), fx.courierID, 5.56, -0.2); err != nil {
		t.Fatalf("PingLocation: %v", err)
	}
	if _, ok := fx.locations.positions[fx.courierID]; !ok {
		t.Error("expected the location to be recorded")
	}

	err := fx.svc.PingLocation(context.Background(), uuid.New(), 5.56, -0.2)
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found for unknown courier, got %v", err)
	}
}
