// README: Shop record; only the stored location matters to settlement.
package shop

import (
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

// Shop is owned by the catalog service; this module only reads it.
type Shop struct {
	ID   types.ID
	Name string
	Lat  float64
	Lng  float64
}
