// README: Greedy nearest-neighbor route planner over a distance matrix.
package routing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientPoints means the matrix has no shops to sequence.
var ErrInsufficientPoints = errors.New("route planning needs the customer and at least one shop")

type PointType string

const (
	PointCustomer PointType = "customer"
	PointShop     PointType = "shop"
)

// Leg is one edge of the itinerary.
type Leg struct {
	FromIndex       int
	ToIndex         int
	FromType        PointType
	ToType          PointType
	DistanceKm      float64
	DurationMinutes float64
}

// RoutePlan sequences shop pickups before the final delivery.
// RoutePoints always starts and ends at the customer (index 0) and
// totals equal the sum over Legs.
type RoutePlan struct {
	PickupSequence []int
	RoutePoints    []int
	Legs           []Leg
	TotalKm        float64
	TotalMinutes   float64
}

// PlanRoute picks the next shop greedily by road distance from the
// current position, starting at the customer, then appends the delivery
// leg back to the customer. Not optimal TSP; shop counts per order are
// small enough that the O(n²) greedy pass captures most of the saving.
// Ties break on the smallest shop index, so output is deterministic.
func PlanRoute(m *Matrix) (*RoutePlan, error) {
	n := m.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: matrix covers %d points", ErrInsufficientPoints, n)
	}

	visited := make([]bool, n)
	visited[0] = true
	current := 0

	plan := &RoutePlan{
		PickupSequence: make([]int, 0, n-1),
		RoutePoints:    []int{0},
	}

	for len(plan.PickupSequence) < n-1 {
		next := -1
		best := math.MaxFloat64
		for candidate := 1; candidate < n; candidate++ {
			if visited[candidate] {
				continue
			}
			if d := m.Distances[current][candidate]; d < best {
				best = d
				next = candidate
			}
		}
		plan.appendLeg(m, current, next)
		plan.PickupSequence = append(plan.PickupSequence, next)
		visited[next] = true
		current = next
	}

	// Delivery leg back to the customer.
	plan.appendLeg(m, current, 0)
	return plan, nil
}

// FallbackPlan synthesizes the degenerate plan used when no matrix
// exists: shops in original cart-group order, zero travel metrics.
func FallbackPlan(shops int) *RoutePlan {
	plan := &RoutePlan{
		PickupSequence: make([]int, 0, shops),
		RoutePoints:    []int{0},
	}
	for i := 1; i <= shops; i++ {
		plan.PickupSequence = append(plan.PickupSequence, i)
		plan.RoutePoints = append(plan.RoutePoints, i)
		plan.Legs = append(plan.Legs, Leg{FromIndex: plan.RoutePoints[i-1], ToIndex: i, FromType: pointType(plan.RoutePoints[i-1]), ToType: PointShop})
	}
	last := 0
	if shops > 0 {
		last = shops
	}
	plan.Legs = append(plan.Legs, Leg{FromIndex: last, ToIndex: 0, FromType: pointType(last), ToType: PointCustomer})
	plan.RoutePoints = append(plan.RoutePoints, 0)
	return plan
}

func (p *RoutePlan) appendLeg(m *Matrix, from, to int) {
	leg := Leg{
		FromIndex:       from,
		ToIndex:         to,
		FromType:        pointType(from),
		ToType:          pointType(to),
		DistanceKm:      roundKm(m.Distances[from][to]),
		DurationMinutes: math.Ceil(m.Durations[from][to] / 60),
	}
	p.Legs = append(p.Legs, leg)
	p.RoutePoints = append(p.RoutePoints, to)
	p.TotalKm = roundKm2(p.TotalKm + leg.DistanceKm)
	p.TotalMinutes += leg.DurationMinutes
}

func pointType(idx int) PointType {
	if idx == 0 {
		return PointCustomer
	}
	return PointShop
}

// roundKm converts meters to km at two-decimal precision.
func roundKm(meters float64) float64 {
	return math.Round(meters/1000*100) / 100
}

// roundKm2 re-rounds a running km sum to keep float noise out of totals.
func roundKm2(km float64) float64 {
	return math.Round(km*100) / 100
}
