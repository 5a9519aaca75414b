// README: Delivery fee calculator; pure policy application over a route plan.
package pricing

import (
	"math"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
)

// Calculate prices a planned route under the given policy snapshot.
// The first pickup is covered by the base fee; each additional shop adds
// the per-stop surcharge. The subtotal is clamped to [MinFee, MaxFee]
// and then rounded per the policy's rounding rule.
func Calculate(route *routing.RoutePlan, shopsCount int, st settings.Settings) FeeBreakdown {
	km := round2(route.TotalKm * st.KmRate)
	extraStops := shopsCount - 1
	if extraStops < 0 {
		extraStops = 0
	}
	stops := round2(float64(extraStops) * st.PickupStopFee)
	subtotal := round2(st.BaseFee + km + stops)

	return FeeBreakdown{
		BaseFee:        st.BaseFee,
		KmComponent:    km,
		StopsComponent: stops,
		SubtotalFee:    subtotal,
		FinalFee:       applyRounding(clamp(subtotal, st.MinFee, st.MaxFee), st.Rounding),
		TotalKm:        route.TotalKm,
		TotalMinutes:   route.TotalMinutes,
		ShopsCount:     shopsCount,
		SettingsUsed:   st,
	}
}

// Fallback prices a checkout when the routing provider is unreachable
// and policy allows proceeding: a flat fee, no travel metrics.
func Fallback(shopsCount int, st settings.Settings) (FeeBreakdown, string) {
	fee := FeeBreakdown{
		SubtotalFee:  st.FixedFallbackFee,
		FinalFee:     st.FixedFallbackFee,
		ShopsCount:   shopsCount,
		IsFallback:   true,
		SettingsUsed: st,
	}
	return fee, FallbackWarning
}

func applyRounding(v float64, rule settings.RoundingRule) float64 {
	switch rule {
	case settings.RoundNearestHalf:
		return math.Round(v*2) / 2
	case settings.RoundCeilInt:
		return math.Ceil(v)
	default:
		return math.Round(v)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
