package courierloc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/redis"
)

// Location is a courier's last reported position. Last write wins;
// out-of-order pings simply overwrite each other.
type Location struct {
	CourierID  uuid.UUID `json:"courier_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ReportedAt time.Time `json:"reported_at"`
}

type locationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CourierLocationKey(courierID string) string
}

// Store keeps live courier positions in Redis.
type Store struct {
	redis locationStore
	ttl   time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Store{redis: client, ttl: ttl}, nil
}

func newStoreWith(store locationStore, ttl time.Duration) *Store {
	return &Store{redis: store, ttl: ttl}
}

// Record overwrites the courier's position.
func (s *Store) Record(ctx context.Context, loc Location) error {
	if loc.CourierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}
	if loc.ReportedAt.IsZero() {
		loc.ReportedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(loc)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "encoding courier location")
	}
	key := s.redis.CourierLocationKey(loc.CourierID.String())
	if err := s.redis.Set(ctx, key, string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "storing courier location")
	}
	return nil
}

// Lookup returns the courier's last known position, or a not-found
// error when no ping has been recorded.
func (s *Store) Lookup(ctx context.Context, courierID uuid.UUID) (*Location, error) {
	key := s.redis.CourierLocationKey(courierID.String())
	raw, err := s.redis.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no location recorded for courier")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDependency, "reading courier location")
	}

	var loc Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "decoding courier location")
	}
	return &loc, nil
}
