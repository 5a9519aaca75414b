// README: Checkout inputs and the commit-ready draft graph.
package checkout

import (
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/geo"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/pricing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

// CartLine comes from the cart service with catalog-validated prices.
// Subtotals are always recomputed here; a client-sent total is never
// trusted.
type CartLine struct {
	ProductID types.ID
	ShopID    types.ID
	Quantity  int
	UnitPrice float64
}

// Problem is a user-facing validation failure. Problems are collected so
// the caller can show every issue at once instead of one per attempt.
type Problem struct {
	Field   string
	Message string
}

type ItemDraft struct {
	ProductID types.ID
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

// SuborderDraft is one shop's slice of the order. Delivery economics
// live only on the parent; a suborder never carries a delivery fee.
type SuborderDraft struct {
	ShopID              types.ID
	Items               []ItemDraft
	Subtotal            float64
	PickupSequenceIndex int
}

type ParentDraft struct {
	CustomerID   types.ID
	Destination  geo.Coordinate
	Subtotal     float64
	DeliveryFee  float64
	PlatformFee  float64
	Total        float64
	RouteKm      float64
	RouteMinutes float64
	// PickupSequence lists shop IDs in visiting order.
	PickupSequence []types.ID
}

// Result is the full calculation outcome. Parent is nil whenever
// Problems is non-empty; a partial draft is never returned alongside
// validation errors.
type Result struct {
	Parent          *ParentDraft
	Suborders       []SuborderDraft
	Fee             *pricing.FeeBreakdown
	Route           *routing.RoutePlan
	Problems        []Problem
	IsFallback      bool
	FallbackWarning string
}
