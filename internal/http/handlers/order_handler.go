// README: Order handlers for lookup, status transitions, and driver assignment.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/order"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type parentResp struct {
	OrderID        string         `json:"order_id"`
	CustomerID     string         `json:"customer_id"`
	Status         string         `json:"status"`
	Subtotal       float64        `json:"subtotal"`
	DeliveryFee    float64        `json:"delivery_fee"`
	PlatformFee    float64        `json:"platform_fee"`
	Total          float64        `json:"total"`
	RouteKm        float64        `json:"route_km"`
	RouteMinutes   float64        `json:"route_minutes"`
	PickupSequence []string       `json:"pickup_sequence"`
	IsFallback     bool           `json:"is_fallback"`
	DeliveryUserID string         `json:"delivery_user_id,omitempty"`
	Suborders      []suborderResp `json:"suborders"`
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}

	p, err := h.orders.GetParent(c.Request.Context(), types.ID(id))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	subs, err := h.orders.ListSuborders(c.Request.Context(), p.ID)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	resp := parentResp{
		OrderID:      string(p.ID),
		CustomerID:   string(p.CustomerID),
		Status:       string(p.Status),
		Subtotal:     p.Subtotal,
		DeliveryFee:  p.DeliveryFee,
		PlatformFee:  p.PlatformFee,
		Total:        p.Total,
		RouteKm:      p.RouteKm,
		RouteMinutes: p.RouteMinutes,
		IsFallback:   p.IsFallback,
	}
	for _, shopID := range p.PickupSequence {
		resp.PickupSequence = append(resp.PickupSequence, string(shopID))
	}
	if p.DeliveryUserID != nil {
		resp.DeliveryUserID = string(*p.DeliveryUserID)
	}
	for _, sub := range subs {
		resp.Suborders = append(resp.Suborders, suborderResp{
			SuborderID:          string(sub.ID),
			ShopID:              string(sub.ShopID),
			Subtotal:            sub.Subtotal,
			PickupSequenceIndex: sub.PickupSequenceIndex,
			Status:              string(sub.Status),
		})
	}
	c.JSON(http.StatusOK, resp)
}

type updateStatusReq struct {
	Status  string `json:"status"`
	ActorID string `json:"actor_id"`
	Notes   string `json:"notes"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if id == "" || req.Status == "" {
		writeError(c, http.StatusBadRequest, "missing order id or status")
		return
	}

	p, err := h.orders.UpdateParentStatus(c.Request.Context(), order.UpdateStatusCommand{
		OrderID: types.ID(id),
		To:      order.Status(req.Status),
		ActorID: types.ID(req.ActorID),
		Notes:   req.Notes,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": p.ID, "status": p.Status})
}

func (h *OrderHandler) UpdateSuborderStatus(c *gin.Context) {
	id := c.Param("id")
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if id == "" || req.Status == "" {
		writeError(c, http.StatusBadRequest, "missing suborder id or status")
		return
	}

	sub, err := h.orders.UpdateSuborderStatus(c.Request.Context(), order.UpdateStatusCommand{
		OrderID: types.ID(id),
		To:      order.Status(req.Status),
		ActorID: types.ID(req.ActorID),
		Notes:   req.Notes,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suborder_id": sub.ID, "status": sub.Status})
}

type assignDriverReq struct {
	DriverID string `json:"driver_id"`
}

func (h *OrderHandler) AssignDriver(c *gin.Context) {
	id := c.Param("id")
	var req assignDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if id == "" || req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing order id or driver_id")
		return
	}

	if err := h.orders.AssignDriver(c.Request.Context(), types.ID(id), types.ID(req.DriverID)); err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "driver_id": req.DriverID})
}
