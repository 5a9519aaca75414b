// README: Auditable delivery fee breakdown.
package pricing

import (
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
)

// FallbackWarning is surfaced to the customer whenever a checkout was
// priced without live routing.
const FallbackWarning = "Live routing is currently unavailable; a flat delivery fee was applied instead of distance-based pricing."

// FeeBreakdown itemizes a delivery fee. SettingsUsed freezes the policy
// snapshot the fee was computed under, independent of later edits.
type FeeBreakdown struct {
	BaseFee        float64           `json:"base_fee"`
	KmComponent    float64           `json:"km_component"`
	StopsComponent float64           `json:"stops_component"`
	SubtotalFee    float64           `json:"subtotal_fee"`
	FinalFee       float64           `json:"final_fee"`
	TotalKm        float64           `json:"total_km"`
	TotalMinutes   float64           `json:"total_minutes"`
	ShopsCount     int               `json:"shops_count"`
	IsFallback     bool              `json:"is_fallback"`
	SettingsUsed   settings.Settings `json:"settings_used"`
}
