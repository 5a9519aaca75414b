// README: Checkout handlers for quoting and committing multi-shop carts.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/checkout"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/order"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	orders   *order.Service
}

func NewCheckoutHandler(checkoutSvc *checkout.Service, orderSvc *order.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkoutSvc, orders: orderSvc}
}

type cartLineReq struct {
	ProductID string  `json:"product_id"`
	ShopID    string  `json:"shop_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type checkoutReq struct {
	CustomerID    string        `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	Address       string        `json:"address"`
	DestLat       float64       `json:"dest_lat"`
	DestLng       float64       `json:"dest_lng"`
	Items         []cartLineReq `json:"items"`
}

func (r checkoutReq) lines() []checkout.CartLine {
	lines := make([]checkout.CartLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, checkout.CartLine{
			ProductID: types.ID(it.ProductID),
			ShopID:    types.ID(it.ShopID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return lines
}

type feeBreakdownDTO struct {
	BaseFee        float64 `json:"base_fee"`
	KmComponent    float64 `json:"km_component"`
	StopsComponent float64 `json:"stops_component"`
	SubtotalFee    float64 `json:"subtotal_fee"`
	FinalFee       float64 `json:"final_fee"`
	IsFallback     bool    `json:"is_fallback"`
}

type quoteResp struct {
	Subtotal        float64          `json:"subtotal"`
	DeliveryFee     float64          `json:"delivery_fee"`
	PlatformFee     float64          `json:"platform_fee"`
	Total           float64          `json:"total"`
	RouteKm         float64          `json:"route_km"`
	RouteMinutes    float64          `json:"route_minutes"`
	PickupSequence  []string         `json:"pickup_sequence"`
	FeeBreakdown    feeBreakdownDTO  `json:"fee_breakdown"`
	IsFallback      bool             `json:"is_fallback"`
	FallbackWarning string           `json:"fallback_warning,omitempty"`
}

// Quote prices a cart without committing anything.
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == "" {
		writeError(c, http.StatusBadRequest, "missing customer_id")
		return
	}

	res, err := h.checkout.Calculate(c.Request.Context(), checkout.Command{
		CustomerID: types.ID(req.CustomerID),
		Lines:      req.lines(),
		DestLat:    req.DestLat,
		DestLng:    req.DestLng,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if len(res.Problems) > 0 {
		writeProblems(c, res.Problems)
		return
	}

	sequence := make([]string, 0, len(res.Parent.PickupSequence))
	for _, id := range res.Parent.PickupSequence {
		sequence = append(sequence, string(id))
	}
	c.JSON(http.StatusOK, quoteResp{
		Subtotal:       res.Parent.Subtotal,
		DeliveryFee:    res.Parent.DeliveryFee,
		PlatformFee:    res.Parent.PlatformFee,
		Total:          res.Parent.Total,
		RouteKm:        res.Parent.RouteKm,
		RouteMinutes:   res.Parent.RouteMinutes,
		PickupSequence: sequence,
		FeeBreakdown: feeBreakdownDTO{
			BaseFee:        res.Fee.BaseFee,
			KmComponent:    res.Fee.KmComponent,
			StopsComponent: res.Fee.StopsComponent,
			SubtotalFee:    res.Fee.SubtotalFee,
			FinalFee:       res.Fee.FinalFee,
			IsFallback:     res.Fee.IsFallback,
		},
		IsFallback:      res.IsFallback,
		FallbackWarning: res.FallbackWarning,
	})
}

type suborderResp struct {
	SuborderID          string  `json:"suborder_id"`
	ShopID              string  `json:"shop_id"`
	Subtotal            float64 `json:"subtotal"`
	PickupSequenceIndex int     `json:"pickup_sequence_index"`
	Status              string  `json:"status"`
}

type commitResp struct {
	OrderID         string         `json:"order_id"`
	Status          string         `json:"status"`
	Subtotal        float64        `json:"subtotal"`
	DeliveryFee     float64        `json:"delivery_fee"`
	PlatformFee     float64        `json:"platform_fee"`
	Total           float64        `json:"total"`
	Suborders       []suborderResp `json:"suborders"`
	FallbackWarning string         `json:"fallback_warning,omitempty"`
}

// Commit recalculates the cart authoritatively and persists the order
// graph.
func (h *CheckoutHandler) Commit(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == "" || req.Address == "" {
		writeError(c, http.StatusBadRequest, "missing customer_id or address")
		return
	}

	res, err := h.orders.Commit(c.Request.Context(), order.CommitCommand{
		CustomerID:    types.ID(req.CustomerID),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Lines:         req.lines(),
		DestLat:       req.DestLat,
		DestLng:       req.DestLng,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	subs := make([]suborderResp, 0, len(res.Suborders))
	for _, sub := range res.Suborders {
		subs = append(subs, suborderResp{
			SuborderID:          string(sub.ID),
			ShopID:              string(sub.ShopID),
			Subtotal:            sub.Subtotal,
			PickupSequenceIndex: sub.PickupSequenceIndex,
			Status:              string(sub.Status),
		})
	}
	c.JSON(http.StatusCreated, commitResp{
		OrderID:         string(res.Parent.ID),
		Status:          string(res.Parent.Status),
		Subtotal:        res.Parent.Subtotal,
		DeliveryFee:     res.Parent.DeliveryFee,
		PlatformFee:     res.Parent.PlatformFee,
		Total:           res.Parent.Total,
		Suborders:       subs,
		FallbackWarning: res.FallbackWarning,
	})
}
