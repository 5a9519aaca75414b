// README: Settings store backed by PostgreSQL (single policy row).
package settings

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context) (Settings, error) {
	row := s.db.QueryRow(ctx, `
        SELECT base_fee, km_rate, pickup_stop_fee, min_fee, max_fee,
               rounding_rule, fixed_fallback_fee, fallback_mode,
               max_shops_per_order, platform_fee_fixed, platform_fee_percent,
               updated_at, updated_by
        FROM delivery_settings
        WHERE id = 1`,
	)

	var out Settings
	err := row.Scan(
		&out.BaseFee, &out.KmRate, &out.PickupStopFee, &out.MinFee, &out.MaxFee,
		&out.Rounding, &out.FixedFallbackFee, &out.FallbackMode,
		&out.MaxShopsPerOrder, &out.PlatformFeeFixed, &out.PlatformFeePercent,
		&out.UpdatedAt, &out.UpdatedBy,
	)
	if err != nil {
		return Settings{}, err
	}
	return out, nil
}

func (s *PGStore) Save(ctx context.Context, v Settings) error {
	_, err := s.db.Exec(ctx, `
        UPDATE delivery_settings
        SET base_fee = $1, km_rate = $2, pickup_stop_fee = $3,
            min_fee = $4, max_fee = $5, rounding_rule = $6,
            fixed_fallback_fee = $7, fallback_mode = $8,
            max_shops_per_order = $9, platform_fee_fixed = $10,
            platform_fee_percent = $11, updated_at = $12, updated_by = $13
        WHERE id = 1`,
		v.BaseFee, v.KmRate, v.PickupStopFee,
		v.MinFee, v.MaxFee, string(v.Rounding),
		v.FixedFallbackFee, string(v.FallbackMode),
		v.MaxShopsPerOrder, v.PlatformFeeFixed,
		v.PlatformFeePercent, v.UpdatedAt, string(v.UpdatedBy),
	)
	return err
}
