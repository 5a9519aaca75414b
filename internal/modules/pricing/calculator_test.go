package pricing

import (
	"testing"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
)

func policy() settings.Settings {
	return settings.Settings{
		BaseFee:          10,
		KmRate:           2,
		PickupStopFee:    5,
		MinFee:           15,
		MaxFee:           100,
		Rounding:         settings.RoundNearestInt,
		FixedFallbackFee: 20,
		FallbackMode:     settings.FallbackFlatFee,
		MaxShopsPerOrder: 5,
	}
}

func routeOf(km, minutes float64) *routing.RoutePlan {
	return &routing.RoutePlan{TotalKm: km, TotalMinutes: minutes}
}

func TestCalculateTwoShops(t *testing.T) {
	fee := Calculate(routeOf(3.2, 14), 2, policy())

	if fee.KmComponent != 6.4 {
		t.Errorf("KmComponent = %v, want 6.4", fee.KmComponent)
	}
	if fee.StopsComponent != 5 {
		t.Errorf("StopsComponent = %v, want 5", fee.StopsComponent)
	}
	if fee.SubtotalFee != 21.4 {
		t.Errorf("SubtotalFee = %v, want 21.4", fee.SubtotalFee)
	}
	if fee.FinalFee != 21 {
		t.Errorf("FinalFee = %v, want 21", fee.FinalFee)
	}
	if fee.IsFallback {
		t.Error("IsFallback must be false for routed fees")
	}
	if fee.SettingsUsed != policy() {
		t.Error("breakdown must embed the settings snapshot used")
	}
}

func TestCalculateIdempotent(t *testing.T) {
	route := routeOf(7.77, 23)
	a := Calculate(route, 3, policy())
	b := Calculate(route, 3, policy())
	if a != b {
		t.Fatalf("identical inputs produced %+v and %+v", a, b)
	}
}

func TestCalculateSingleShopHasNoStopSurcharge(t *testing.T) {
	fee := Calculate(routeOf(2, 8), 1, policy())
	if fee.StopsComponent != 0 {
		t.Fatalf("StopsComponent = %v, want 0 for a single shop", fee.StopsComponent)
	}
}

func TestRoundingRules(t *testing.T) {
	cases := []struct {
		rule settings.RoundingRule
		in   float64
		want float64
	}{
		{settings.RoundNearestHalf, 10.2, 10.0},
		{settings.RoundNearestHalf, 10.3, 10.5},
		{settings.RoundNearestHalf, 10.75, 11.0},
		{settings.RoundCeilInt, 10.01, 11},
		{settings.RoundCeilInt, 10.0, 10},
		{settings.RoundNearestInt, 10.49, 10},
		{settings.RoundNearestInt, 10.5, 11},
	}
	for _, tc := range cases {
		if got := applyRounding(tc.in, tc.rule); got != tc.want {
			t.Errorf("applyRounding(%v, %s) = %v, want %v", tc.in, tc.rule, got, tc.want)
		}
	}
}

func TestClampToPolicyBounds(t *testing.T) {
	st := policy()

	// Short route lands below the minimum fee.
	low := Calculate(routeOf(0.5, 2), 1, st)
	if low.FinalFee != 15 {
		t.Errorf("below min: FinalFee = %v, want 15", low.FinalFee)
	}

	// Long route with many stops exceeds the maximum fee.
	high := Calculate(routeOf(80, 200), 5, st)
	if high.FinalFee != 100 {
		t.Errorf("above max: FinalFee = %v, want 100", high.FinalFee)
	}
}

func TestFallbackFlatFee(t *testing.T) {
	fee, warning := Fallback(3, policy())
	if !fee.IsFallback {
		t.Error("IsFallback must be set")
	}
	if fee.SubtotalFee != 20 || fee.FinalFee != 20 {
		t.Errorf("flat fee = %v/%v, want 20/20", fee.SubtotalFee, fee.FinalFee)
	}
	if fee.TotalKm != 0 || fee.TotalMinutes != 0 {
		t.Errorf("fallback must report zero travel metrics, got %v km %v min", fee.TotalKm, fee.TotalMinutes)
	}
	if warning == "" {
		t.Error("fallback warning must be non-empty")
	}
}
