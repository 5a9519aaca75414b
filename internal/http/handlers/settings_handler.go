// README: Admin handlers for the delivery pricing policy.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type SettingsHandler struct {
	settings *settings.Service
}

func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

type settingsResp struct {
	BaseFee            float64   `json:"base_fee"`
	KmRate             float64   `json:"km_rate"`
	PickupStopFee      float64   `json:"pickup_stop_fee"`
	MinFee             float64   `json:"min_fee"`
	MaxFee             float64   `json:"max_fee"`
	Rounding           string    `json:"rounding"`
	FixedFallbackFee   float64   `json:"fixed_fallback_fee"`
	FallbackMode       string    `json:"fallback_mode"`
	MaxShopsPerOrder   int       `json:"max_shops_per_order"`
	PlatformFeeFixed   float64   `json:"platform_fee_fixed"`
	PlatformFeePercent float64   `json:"platform_fee_percent"`
	UpdatedAt          time.Time `json:"updated_at"`
	UpdatedBy          string    `json:"updated_by"`
}

func toSettingsResp(s settings.Settings) settingsResp {
	return settingsResp{
		BaseFee:            s.BaseFee,
		KmRate:             s.KmRate,
		PickupStopFee:      s.PickupStopFee,
		MinFee:             s.MinFee,
		MaxFee:             s.MaxFee,
		Rounding:           string(s.Rounding),
		FixedFallbackFee:   s.FixedFallbackFee,
		FallbackMode:       string(s.FallbackMode),
		MaxShopsPerOrder:   s.MaxShopsPerOrder,
		PlatformFeeFixed:   s.PlatformFeeFixed,
		PlatformFeePercent: s.PlatformFeePercent,
		UpdatedAt:          s.UpdatedAt,
		UpdatedBy:          string(s.UpdatedBy),
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "pricing policy is temporarily unavailable")
		return
	}
	c.JSON(http.StatusOK, toSettingsResp(s))
}

type settingsPatchReq struct {
	BaseFee            *float64 `json:"base_fee"`
	KmRate             *float64 `json:"km_rate"`
	PickupStopFee      *float64 `json:"pickup_stop_fee"`
	MinFee             *float64 `json:"min_fee"`
	MaxFee             *float64 `json:"max_fee"`
	Rounding           *string  `json:"rounding"`
	FixedFallbackFee   *float64 `json:"fixed_fallback_fee"`
	FallbackMode       *string  `json:"fallback_mode"`
	MaxShopsPerOrder   *int     `json:"max_shops_per_order"`
	PlatformFeeFixed   *float64 `json:"platform_fee_fixed"`
	PlatformFeePercent *float64 `json:"platform_fee_percent"`
	ActorID            string   `json:"actor_id"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ActorID == "" {
		writeError(c, http.StatusBadRequest, "missing actor_id")
		return
	}

	patch := settings.Patch{
		BaseFee:            req.BaseFee,
		KmRate:             req.KmRate,
		PickupStopFee:      req.PickupStopFee,
		MinFee:             req.MinFee,
		MaxFee:             req.MaxFee,
		FixedFallbackFee:   req.FixedFallbackFee,
		MaxShopsPerOrder:   req.MaxShopsPerOrder,
		PlatformFeeFixed:   req.PlatformFeeFixed,
		PlatformFeePercent: req.PlatformFeePercent,
	}
	if req.Rounding != nil {
		r := settings.RoundingRule(*req.Rounding)
		patch.Rounding = &r
	}
	if req.FallbackMode != nil {
		m := settings.FallbackMode(*req.FallbackMode)
		patch.FallbackMode = &m
	}

	s, err := h.settings.Update(c.Request.Context(), patch, types.ID(req.ActorID))
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrBadPatch):
			writeError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, settings.ErrUnavailable):
			writeError(c, http.StatusServiceUnavailable, "pricing policy is temporarily unavailable")
		default:
			writeError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	c.JSON(http.StatusOK, toSettingsResp(s))
}
