// README: Cached provider for the delivery settings row.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

const cacheTTL = 60 * time.Second

var (
	// ErrUnavailable is fatal to fee computation: no default policy is
	// ever invented.
	ErrUnavailable = errors.New("delivery settings unavailable")
	ErrBadPatch    = errors.New("invalid settings update")
)

// Store persists the single policy row.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Service serves the policy from a 60-second cache. Concurrent refreshes
// racing past the TTL may each read the row once; write volume is low
// enough that stampede protection is not worth carrying.
type Service struct {
	store Store
	now   func() time.Time

	mu        sync.Mutex
	cached    Settings
	fetchedAt time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Get(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	if !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < cacheTTL {
		cached := s.cached
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	fresh, err := s.store.Get(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	s.mu.Lock()
	s.cached = fresh
	s.fetchedAt = s.now()
	s.mu.Unlock()
	return fresh, nil
}

// Update merges an administrative patch, persists it, and invalidates
// the cache so the next read is fresh.
func (s *Service) Update(ctx context.Context, p Patch, actorID types.ID) (Settings, error) {
	cur, err := s.store.Get(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	merged := merge(cur, p)
	if err := validate(merged); err != nil {
		return Settings{}, err
	}
	merged.UpdatedAt = s.now()
	merged.UpdatedBy = actorID

	if err := s.store.Save(ctx, merged); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
	return merged, nil
}

func merge(cur Settings, p Patch) Settings {
	if p.BaseFee != nil {
		cur.BaseFee = *p.BaseFee
	}
	if p.KmRate != nil {
		cur.KmRate = *p.KmRate
	}
	if p.PickupStopFee != nil {
		cur.PickupStopFee = *p.PickupStopFee
	}
	if p.MinFee != nil {
		cur.MinFee = *p.MinFee
	}
	if p.MaxFee != nil {
		cur.MaxFee = *p.MaxFee
	}
	if p.Rounding != nil {
		cur.Rounding = *p.Rounding
	}
	if p.FixedFallbackFee != nil {
		cur.FixedFallbackFee = *p.FixedFallbackFee
	}
	if p.FallbackMode != nil {
		cur.FallbackMode = *p.FallbackMode
	}
	if p.MaxShopsPerOrder != nil {
		cur.MaxShopsPerOrder = *p.MaxShopsPerOrder
	}
	if p.PlatformFeeFixed != nil {
		cur.PlatformFeeFixed = *p.PlatformFeeFixed
	}
	if p.PlatformFeePercent != nil {
		cur.PlatformFeePercent = *p.PlatformFeePercent
	}
	return cur
}

func validate(s Settings) error {
	if !s.Rounding.Valid() {
		return fmt.Errorf("%w: unknown rounding rule %q", ErrBadPatch, s.Rounding)
	}
	if !s.FallbackMode.Valid() {
		return fmt.Errorf("%w: unknown fallback mode %q", ErrBadPatch, s.FallbackMode)
	}
	if s.MaxShopsPerOrder < 1 {
		return fmt.Errorf("%w: max shops per order must be positive", ErrBadPatch)
	}
	// The matrix request covers the customer plus every shop; a policy
	// allowing more shops than one request can carry would turn valid
	// carts into provider errors.
	if s.MaxShopsPerOrder > routing.MaxPoints-1 {
		return fmt.Errorf("%w: max shops per order cannot exceed %d", ErrBadPatch, routing.MaxPoints-1)
	}
	if s.MinFee > s.MaxFee {
		return fmt.Errorf("%w: min fee exceeds max fee", ErrBadPatch)
	}
	if s.BaseFee < 0 || s.KmRate < 0 || s.PickupStopFee < 0 || s.FixedFallbackFee < 0 {
		return fmt.Errorf("%w: fee components must be non-negative", ErrBadPatch)
	}
	return nil
}
