// README: Order aggregate (parent + suborders) and status definitions.
package order

import (
	"time"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/pricing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type Status string

const (
	StatusPlaced         Status = "placed"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// AllowedTransitions represents the order state flow as code. Cancel is
// reachable from every non-terminal state; delivered and cancelled have
// no outgoing transitions.
var AllowedTransitions = map[Status][]Status{
	StatusPlaced:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusOutForDelivery, StatusCancelled},
	StatusReadyForPickup: {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cascades reports whether a parent transition to s forces every
// non-terminal child to the same status.
func (s Status) Cascades() bool {
	return s == StatusOutForDelivery || s == StatusDelivered || s == StatusCancelled
}

// ParentOrder is the aggregate root for one multi-shop checkout. It is
// never deleted, only status-terminated.
type ParentOrder struct {
	ID             types.ID
	CustomerID     types.ID
	CustomerName   string
	CustomerPhone  string
	Address        string
	DestLat        float64
	DestLng        float64
	Subtotal       float64
	DeliveryFee    float64
	PlatformFee    float64
	Total          float64
	RouteKm        float64
	RouteMinutes   float64
	PickupSequence []types.ID
	FeeBreakdown   pricing.FeeBreakdown
	IsFallback     bool
	Status         Status
	StatusVersion  int
	DeliveryUserID *types.ID
	CreatedAt      time.Time
}

// Suborder is one shop's slice of a parent order. It never carries a
// delivery fee; delivery economics live on the parent.
type Suborder struct {
	ID                  types.ID
	ParentID            types.ID
	ShopID              types.ID
	Items               []Item
	Subtotal            float64
	PickupSequenceIndex int
	Status              Status
	StatusVersion       int
	CreatedAt           time.Time
}

type Item struct {
	ProductID types.ID
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

type OrderKind string

const (
	KindParent   OrderKind = "parent"
	KindSuborder OrderKind = "suborder"
)

// StatusEvent is an immutable history record; every status write appends
// exactly one in the same transaction.
type StatusEvent struct {
	ID        int64
	OrderID   types.ID
	OrderKind OrderKind
	Status    Status
	ActorID   *types.ID
	Notes     string
	CreatedAt time.Time
}
