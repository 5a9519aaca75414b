// README: Checkout orchestrator; turns a multi-shop cart into a priced draft order graph.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/geo"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/pricing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/observability"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

// SettingsSource provides the current pricing policy.
type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// ShopLocator resolves stored shop coordinates; unknown shops are absent
// from the result.
type ShopLocator interface {
	Locations(ctx context.Context, ids []types.ID) (map[types.ID]geo.Coordinate, error)
}

// MatrixSource fetches the all-pairs travel matrix.
type MatrixSource interface {
	GetMatrix(ctx context.Context, points []geo.Coordinate) (*routing.Matrix, error)
}

type Service struct {
	settings SettingsSource
	shops    ShopLocator
	matrix   MatrixSource
	log      *slog.Logger
}

func NewService(st SettingsSource, shops ShopLocator, matrix MatrixSource, log *slog.Logger) *Service {
	return &Service{settings: st, shops: shops, matrix: matrix, log: log}
}

// Command is one checkout calculation request.
type Command struct {
	CustomerID types.ID
	Lines      []CartLine
	DestLat    float64
	DestLng    float64
}

type shopGroup struct {
	shopID   types.ID
	items    []ItemDraft
	subtotal float64
}

// Calculate runs the settlement pipeline: group by shop, validate,
// route, price, and assemble the draft graph. Validation failures come
// back in Result.Problems with a nil Parent; only infrastructure
// failures (settings store, shop store) surface as errors.
func (s *Service) Calculate(ctx context.Context, cmd Command) (*Result, error) {
	groups, shopIDs := groupByShop(cmd.Lines)

	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(shopIDs) == 0 {
		res.addProblem("cart", "cart is empty")
	}
	if len(shopIDs) > st.MaxShopsPerOrder {
		res.addProblem("cart", fmt.Sprintf("order spans %d shops; at most %d allowed", len(shopIDs), st.MaxShopsPerOrder))
	}

	dest, ok := geo.New(cmd.DestLat, cmd.DestLng)
	if !ok {
		res.addProblem("destination", "delivery location is missing or invalid")
	}

	located := map[types.ID]geo.Coordinate{}
	if len(shopIDs) > 0 {
		located, err = s.shops.Locations(ctx, shopIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve shop locations: %w", err)
		}
	}
	for _, id := range shopIDs {
		loc, found := located[id]
		if !found {
			res.addProblem("shops", fmt.Sprintf("shop %s has no stored location", id))
			continue
		}
		if !loc.Valid() {
			res.addProblem("shops", fmt.Sprintf("shop %s has an invalid location", id))
		}
	}

	// No partial draft alongside validation problems.
	if len(res.Problems) > 0 {
		observability.CheckoutTotal.WithLabelValues("validation_error").Inc()
		return res, nil
	}

	points := make([]geo.Coordinate, 0, len(shopIDs)+1)
	points = append(points, dest)
	for _, id := range shopIDs {
		points = append(points, located[id])
	}

	plan, fee, err := s.price(ctx, points, len(shopIDs), st, res)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		// Routing is down and policy blocks checkout.
		observability.CheckoutTotal.WithLabelValues("routing_blocked").Inc()
		return res, nil
	}
	res.Route = plan
	res.Fee = fee

	res.Suborders = make([]SuborderDraft, 0, len(shopIDs))
	sequence := make([]types.ID, 0, len(shopIDs))
	var subtotal float64
	for seq, shopIdx := range plan.PickupSequence {
		g := groups[shopIDs[shopIdx-1]]
		res.Suborders = append(res.Suborders, SuborderDraft{
			ShopID:              g.shopID,
			Items:               g.items,
			Subtotal:            g.subtotal,
			PickupSequenceIndex: seq + 1,
		})
		sequence = append(sequence, g.shopID)
		subtotal = round2(subtotal + g.subtotal)
	}

	platformFee := round2(st.PlatformFeeFixed + subtotal*st.PlatformFeePercent/100)
	res.Parent = &ParentDraft{
		CustomerID:     cmd.CustomerID,
		Destination:    dest,
		Subtotal:       subtotal,
		DeliveryFee:    fee.FinalFee,
		PlatformFee:    platformFee,
		Total:          round2(subtotal + fee.FinalFee + platformFee),
		RouteKm:        plan.TotalKm,
		RouteMinutes:   plan.TotalMinutes,
		PickupSequence: sequence,
	}

	if res.IsFallback {
		observability.CheckoutTotal.WithLabelValues("fallback").Inc()
	} else {
		observability.CheckoutTotal.WithLabelValues("ok").Inc()
	}
	return res, nil
}

// price fetches the matrix and prices the route, or falls back per
// policy. A nil plan with a nil error means checkout is blocked.
func (s *Service) price(ctx context.Context, points []geo.Coordinate, shops int, st settings.Settings, res *Result) (*routing.RoutePlan, *pricing.FeeBreakdown, error) {
	m, err := s.matrix.GetMatrix(ctx, points)
	if err == nil {
		plan, planErr := routing.PlanRoute(m)
		if planErr != nil {
			return nil, nil, fmt.Errorf("plan route: %w", planErr)
		}
		fee := pricing.Calculate(plan, shops, st)
		return plan, &fee, nil
	}

	if !errors.Is(err, routing.ErrUnavailable) && !errors.Is(err, routing.ErrRateLimited) {
		return nil, nil, err
	}

	s.log.Warn("routing provider failed during checkout", "err", err, "fallback_mode", st.FallbackMode)
	if st.FallbackMode == settings.FallbackBlock {
		res.addProblem("routing", "delivery routing is temporarily unavailable; please try again later")
		return nil, nil, nil
	}

	observability.RoutingFallbackTotal.Inc()
	fee, warning := pricing.Fallback(shops, st)
	res.IsFallback = true
	res.FallbackWarning = warning
	return routing.FallbackPlan(shops), &fee, nil
}

// groupByShop buckets cart lines per shop, preserving first-seen order
// so the matrix point list stays stable for identical carts.
func groupByShop(lines []CartLine) (map[types.ID]*shopGroup, []types.ID) {
	groups := make(map[types.ID]*shopGroup)
	order := make([]types.ID, 0)
	for _, l := range lines {
		g, ok := groups[l.ShopID]
		if !ok {
			g = &shopGroup{shopID: l.ShopID}
			groups[l.ShopID] = g
			order = append(order, l.ShopID)
		}
		lineTotal := round2(float64(l.Quantity) * l.UnitPrice)
		g.items = append(g.items, ItemDraft{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: lineTotal,
		})
		g.subtotal = round2(g.subtotal + lineTotal)
	}
	return groups, order
}

func (r *Result) addProblem(field, message string) {
	r.Problems = append(r.Problems, Problem{Field: field, Message: message})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
