package routing

import (
	"math"
	"testing"
)

// matrixFrom builds a symmetric matrix from meter distances; durations
// are derived at 30 km/h so minute assertions stay easy to read.
func matrixFrom(distances [][]float64) *Matrix {
	n := len(distances)
	durations := make([][]float64, n)
	for i := range distances {
		durations[i] = make([]float64, n)
		for j := range distances[i] {
			durations[i][j] = distances[i][j] * 0.12 // seconds
		}
	}
	return &Matrix{Distances: distances, Durations: durations}
}

func TestPlanRouteThreeShops(t *testing.T) {
	// customer=0, A=1, B=2, C=3
	m := matrixFrom([][]float64{
		{0, 2000, 5000, 3000},
		{2000, 0, 1000, 4000},
		{5000, 1000, 0, 2000},
		{3000, 4000, 2000, 0},
	})

	plan, err := PlanRoute(m)
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}

	// Greedy: customer->A (2000), A->B (1000), B->C (2000), C->customer (3000).
	wantSeq := []int{1, 2, 3}
	if len(plan.PickupSequence) != len(wantSeq) {
		t.Fatalf("pickup sequence = %v, want %v", plan.PickupSequence, wantSeq)
	}
	for i, v := range wantSeq {
		if plan.PickupSequence[i] != v {
			t.Fatalf("pickup sequence = %v, want %v", plan.PickupSequence, wantSeq)
		}
	}

	if got, want := plan.TotalKm, 8.0; got != want {
		t.Errorf("TotalKm = %v, want %v", got, want)
	}

	wantPoints := []int{0, 1, 2, 3, 0}
	if len(plan.RoutePoints) != len(wantPoints) {
		t.Fatalf("route points = %v, want %v", plan.RoutePoints, wantPoints)
	}
	for i, v := range wantPoints {
		if plan.RoutePoints[i] != v {
			t.Fatalf("route points = %v, want %v", plan.RoutePoints, wantPoints)
		}
	}
	if len(plan.Legs) != len(plan.RoutePoints)-1 {
		t.Fatalf("legs = %d, want %d", len(plan.Legs), len(plan.RoutePoints)-1)
	}
}

func TestPlanRouteStartsAndEndsAtCustomer(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8} {
		distances := make([][]float64, n)
		for i := range distances {
			distances[i] = make([]float64, n)
			for j := range distances[i] {
				if i != j {
					distances[i][j] = float64(1000*(i+j)) + 500
				}
			}
		}
		plan, err := PlanRoute(matrixFrom(distances))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if plan.RoutePoints[0] != 0 || plan.RoutePoints[len(plan.RoutePoints)-1] != 0 {
			t.Errorf("n=%d: route points %v must start and end at 0", n, plan.RoutePoints)
		}
		if len(plan.Legs) != len(plan.RoutePoints)-1 {
			t.Errorf("n=%d: %d legs for %d route points", n, len(plan.Legs), len(plan.RoutePoints))
		}
		var km, minutes float64
		for _, leg := range plan.Legs {
			km += leg.DistanceKm
			minutes += leg.DurationMinutes
		}
		if math.Abs(km-plan.TotalKm) > 0.01 {
			t.Errorf("n=%d: TotalKm %v != leg sum %v", n, plan.TotalKm, km)
		}
		if minutes != plan.TotalMinutes {
			t.Errorf("n=%d: TotalMinutes %v != leg sum %v", n, plan.TotalMinutes, minutes)
		}
	}
}

func TestPlanRouteTieBreaksOnSmallestIndex(t *testing.T) {
	// Shops 1 and 2 are equidistant from the customer; shop 1 must win.
	m := matrixFrom([][]float64{
		{0, 3000, 3000},
		{3000, 0, 1000},
		{3000, 1000, 0},
	})
	plan, err := PlanRoute(m)
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if plan.PickupSequence[0] != 1 {
		t.Fatalf("pickup sequence = %v, want shop 1 first on tie", plan.PickupSequence)
	}
}

func TestPlanRouteDeterministic(t *testing.T) {
	m := matrixFrom([][]float64{
		{0, 2000, 5000, 3000},
		{2000, 0, 1000, 4000},
		{5000, 1000, 0, 2000},
		{3000, 4000, 2000, 0},
	})
	a, err := PlanRoute(m)
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	b, err := PlanRoute(m)
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if a.TotalKm != b.TotalKm || a.TotalMinutes != b.TotalMinutes {
		t.Fatalf("totals differ between identical runs")
	}
	for i := range a.PickupSequence {
		if a.PickupSequence[i] != b.PickupSequence[i] {
			t.Fatalf("sequence differs between identical runs")
		}
	}
}

func TestPlanRouteInsufficientPoints(t *testing.T) {
	if _, err := PlanRoute(&Matrix{Distances: [][]float64{{0}}, Durations: [][]float64{{0}}}); err == nil {
		t.Fatal("expected error for single-point matrix")
	}
}

func TestFallbackPlanKeepsCartOrder(t *testing.T) {
	plan := FallbackPlan(3)
	wantSeq := []int{1, 2, 3}
	for i, v := range wantSeq {
		if plan.PickupSequence[i] != v {
			t.Fatalf("pickup sequence = %v, want %v", plan.PickupSequence, wantSeq)
		}
	}
	if plan.TotalKm != 0 || plan.TotalMinutes != 0 {
		t.Fatalf("fallback plan must carry zero travel metrics, got %v km %v min", plan.TotalKm, plan.TotalMinutes)
	}
	if plan.RoutePoints[0] != 0 || plan.RoutePoints[len(plan.RoutePoints)-1] != 0 {
		t.Fatalf("route points %v must start and end at 0", plan.RoutePoints)
	}
	if len(plan.Legs) != len(plan.RoutePoints)-1 {
		t.Fatalf("legs = %d, want %d", len(plan.Legs), len(plan.RoutePoints)-1)
	}
}
