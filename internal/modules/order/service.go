// README: Order service; authoritative commit plus status transitions and cascades.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/checkout"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/observability"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("order not found")
	ErrConflict          = errors.New("order state conflict")
	ErrValidation        = errors.New("checkout validation failed")
)

// ValidationError carries the collected checkout problems so the API can
// show every issue at once. errors.Is(err, ErrValidation) matches it.
type ValidationError struct {
	Problems []checkout.Problem
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed with %d problem(s)", len(e.Problems))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Calculator recomputes the draft graph from the freshest settings. The
// commit path never trusts totals computed earlier in the flow.
type Calculator interface {
	Calculate(ctx context.Context, cmd checkout.Command) (*checkout.Result, error)
}

// Store persists the order graph. Implementations must make each method
// a single atomic unit; multiple service instances may run concurrently
// and in-process locking is no substitute.
type Store interface {
	CreateOrderGraph(ctx context.Context, p *ParentOrder, subs []*Suborder, events []StatusEvent) error
	GetParent(ctx context.Context, id types.ID) (*ParentOrder, error)
	GetSuborder(ctx context.Context, id types.ID) (*Suborder, error)
	ListSuborders(ctx context.Context, parentID types.ID) ([]*Suborder, error)
	// UpdateSuborderStatus and UpdateParentStatus write the status row and
	// its history record together, guarded by the optimistic version.
	UpdateSuborderStatus(ctx context.Context, id types.ID, from, to Status, version int, ev StatusEvent) (bool, error)
	UpdateParentStatus(ctx context.Context, id types.ID, from, to Status, version int, ev StatusEvent) (bool, error)
	// CascadeParentStatus force-transitions every non-terminal child to
	// the parent's new status, appending one history record per affected
	// order, all in one transaction.
	CascadeParentStatus(ctx context.Context, parentID types.ID, from, to Status, version int, actorID *types.ID, notes string) (bool, error)
	AssignDriver(ctx context.Context, parentID types.ID, driverID types.ID) error
}

type Service struct {
	store Store
	calc  Calculator
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, calc Calculator, log *slog.Logger) *Service {
	return &Service{store: store, calc: calc, log: log, now: time.Now}
}

// CommitCommand is a checkout commit request straight from the API.
type CommitCommand struct {
	CustomerID    types.ID
	CustomerName  string
	CustomerPhone string
	Address       string
	Lines         []checkout.CartLine
	DestLat       float64
	DestLng       float64
}

// CommitResult is the persisted order graph plus the fallback notice, if
// any, for the confirmation screen.
type CommitResult struct {
	Parent          *ParentOrder
	Suborders       []*Suborder
	FallbackWarning string
}

// Commit recalculates the order authoritatively and persists the parent,
// suborders, items, and initial history rows as one atomic write.
func (s *Service) Commit(ctx context.Context, cmd CommitCommand) (*CommitResult, error) {
	res, err := s.calc.Calculate(ctx, checkout.Command{
		CustomerID: cmd.CustomerID,
		Lines:      cmd.Lines,
		DestLat:    cmd.DestLat,
		DestLng:    cmd.DestLng,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Problems) > 0 {
		return nil, &ValidationError{Problems: res.Problems}
	}

	now := s.now()
	parent := &ParentOrder{
		ID:             newID(),
		CustomerID:     cmd.CustomerID,
		CustomerName:   cmd.CustomerName,
		CustomerPhone:  cmd.CustomerPhone,
		Address:        cmd.Address,
		DestLat:        res.Parent.Destination.Lat,
		DestLng:        res.Parent.Destination.Lng,
		Subtotal:       res.Parent.Subtotal,
		DeliveryFee:    res.Parent.DeliveryFee,
		PlatformFee:    res.Parent.PlatformFee,
		Total:          res.Parent.Total,
		RouteKm:        res.Parent.RouteKm,
		RouteMinutes:   res.Parent.RouteMinutes,
		PickupSequence: res.Parent.PickupSequence,
		FeeBreakdown:   *res.Fee,
		IsFallback:     res.IsFallback,
		Status:         StatusPlaced,
		CreatedAt:      now,
	}

	actor := cmd.CustomerID
	events := []StatusEvent{{
		OrderID:   parent.ID,
		OrderKind: KindParent,
		Status:    StatusPlaced,
		ActorID:   &actor,
		CreatedAt: now,
	}}

	subs := make([]*Suborder, 0, len(res.Suborders))
	for _, d := range res.Suborders {
		sub := &Suborder{
			ID:                  newID(),
			ParentID:            parent.ID,
			ShopID:              d.ShopID,
			Subtotal:            d.Subtotal,
			PickupSequenceIndex: d.PickupSequenceIndex,
			Status:              StatusPlaced,
			CreatedAt:           now,
		}
		for _, it := range d.Items {
			sub.Items = append(sub.Items, Item{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				LineTotal: it.LineTotal,
			})
		}
		subs = append(subs, sub)
		events = append(events, StatusEvent{
			OrderID:   sub.ID,
			OrderKind: KindSuborder,
			Status:    StatusPlaced,
			ActorID:   &actor,
			CreatedAt: now,
		})
	}

	if err := s.store.CreateOrderGraph(ctx, parent, subs, events); err != nil {
		return nil, fmt.Errorf("commit order graph: %w", err)
	}

	s.log.Info("order committed",
		"order_id", parent.ID,
		"shops", len(subs),
		"total", parent.Total,
		"fallback", parent.IsFallback,
	)
	return &CommitResult{Parent: parent, Suborders: subs, FallbackWarning: res.FallbackWarning}, nil
}

// UpdateStatusCommand is a status change request for a parent or suborder.
type UpdateStatusCommand struct {
	OrderID types.ID
	To      Status
	ActorID types.ID
	Notes   string
}

// UpdateSuborderStatus applies one transition from the per-order table.
func (s *Service) UpdateSuborderStatus(ctx context.Context, cmd UpdateStatusCommand) (*Suborder, error) {
	sub, err := s.store.GetSuborder(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sub.Status, cmd.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sub.Status, cmd.To)
	}

	ev := s.event(cmd.OrderID, KindSuborder, cmd.To, cmd.ActorID, cmd.Notes)
	ok, err := s.store.UpdateSuborderStatus(ctx, sub.ID, sub.Status, cmd.To, sub.StatusVersion, ev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	observability.StatusTransitionsTotal.WithLabelValues(string(cmd.To)).Inc()

	sub.Status = cmd.To
	sub.StatusVersion++
	return sub, nil
}

// UpdateParentStatus applies one transition on the aggregate root. For
// out_for_delivery, delivered, and cancelled the transition cascades:
// every non-terminal child is forced to the same status in the same
// atomic operation, bypassing the per-suborder table. This is the only
// sanctioned path that force-transitions children.
func (s *Service) UpdateParentStatus(ctx context.Context, cmd UpdateStatusCommand) (*ParentOrder, error) {
	p, err := s.store.GetParent(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(p.Status, cmd.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, cmd.To)
	}

	var ok bool
	if cmd.To.Cascades() {
		actor := cmd.ActorID
		ok, err = s.store.CascadeParentStatus(ctx, p.ID, p.Status, cmd.To, p.StatusVersion, &actor, cmd.Notes)
	} else {
		ev := s.event(p.ID, KindParent, cmd.To, cmd.ActorID, cmd.Notes)
		ok, err = s.store.UpdateParentStatus(ctx, p.ID, p.Status, cmd.To, p.StatusVersion, ev)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	observability.StatusTransitionsTotal.WithLabelValues(string(cmd.To)).Inc()

	p.Status = cmd.To
	p.StatusVersion++
	return p, nil
}

// AssignDriver sets the delivery user on a parent order. Assignment is a
// side field; it never changes status by itself.
func (s *Service) AssignDriver(ctx context.Context, parentID, driverID types.ID) error {
	if driverID == "" {
		return fmt.Errorf("%w: empty driver id", ErrInvalidTransition)
	}
	return s.store.AssignDriver(ctx, parentID, driverID)
}

func (s *Service) GetParent(ctx context.Context, id types.ID) (*ParentOrder, error) {
	return s.store.GetParent(ctx, id)
}

func (s *Service) ListSuborders(ctx context.Context, parentID types.ID) ([]*Suborder, error) {
	return s.store.ListSuborders(ctx, parentID)
}

func (s *Service) event(id types.ID, kind OrderKind, to Status, actorID types.ID, notes string) StatusEvent {
	ev := StatusEvent{
		OrderID:   id,
		OrderKind: kind,
		Status:    to,
		Notes:     notes,
		CreatedAt: s.now(),
	}
	if actorID != "" {
		ev.ActorID = &actorID
	}
	return ev
}

func newID() types.ID {
	return types.ID(uuid.NewString())
}
