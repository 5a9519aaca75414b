// README: Delivery pricing policy snapshot and its enums.
package settings

import (
	"time"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type RoundingRule string

const (
	RoundNearestInt  RoundingRule = "nearest_int"
	RoundNearestHalf RoundingRule = "nearest_0_5"
	RoundCeilInt     RoundingRule = "ceil_int"
)

func (r RoundingRule) Valid() bool {
	switch r {
	case RoundNearestInt, RoundNearestHalf, RoundCeilInt:
		return true
	}
	return false
}

type FallbackMode string

const (
	// FallbackBlock refuses checkout while the routing provider is down.
	FallbackBlock FallbackMode = "block_checkout"
	// FallbackFlatFee lets checkout proceed with the fixed fallback fee.
	FallbackFlatFee FallbackMode = "use_fallback_fee"
)

func (f FallbackMode) Valid() bool {
	return f == FallbackBlock || f == FallbackFlatFee
}

// Settings is the versioned delivery pricing policy. Every computed fee
// embeds the exact snapshot used, so historical orders stay explainable
// after policy edits.
type Settings struct {
	BaseFee            float64      `json:"base_fee"`
	KmRate             float64      `json:"km_rate"`
	PickupStopFee      float64      `json:"pickup_stop_fee"`
	MinFee             float64      `json:"min_fee"`
	MaxFee             float64      `json:"max_fee"`
	Rounding           RoundingRule `json:"rounding"`
	FixedFallbackFee   float64      `json:"fixed_fallback_fee"`
	FallbackMode       FallbackMode `json:"fallback_mode"`
	MaxShopsPerOrder   int          `json:"max_shops_per_order"`
	PlatformFeeFixed   float64      `json:"platform_fee_fixed"`
	PlatformFeePercent float64      `json:"platform_fee_percent"`
	UpdatedAt          time.Time    `json:"updated_at"`
	UpdatedBy          types.ID     `json:"updated_by"`
}

// Patch carries an administrative partial update; nil fields are left
// unchanged.
type Patch struct {
	BaseFee            *float64
	KmRate             *float64
	PickupStopFee      *float64
	MinFee             *float64
	MaxFee             *float64
	Rounding           *RoundingRule
	FixedFallbackFee   *float64
	FallbackMode       *FallbackMode
	MaxShopsPerOrder   *int
	PlatformFeeFixed   *float64
	PlatformFeePercent *float64
}
