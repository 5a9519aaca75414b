// README: HTTP-level tests for checkout and order endpoints.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/geo"
	transport "github.com/Ahmedtarekmekled/AboHommos-sub000/internal/http"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/checkout"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/order"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type stubSettingsStore struct {
	val settings.Settings
}

func (s *stubSettingsStore) Get(_ context.Context) (settings.Settings, error) { return s.val, nil }
func (s *stubSettingsStore) Save(_ context.Context, v settings.Settings) error {
	s.val = v
	return nil
}

type stubLocator struct {
	locations map[types.ID]geo.Coordinate
}

func (s *stubLocator) Locations(_ context.Context, ids []types.ID) (map[types.ID]geo.Coordinate, error) {
	out := make(map[types.ID]geo.Coordinate)
	for _, id := range ids {
		if loc, ok := s.locations[id]; ok {
			out[id] = loc
		}
	}
	return out, nil
}

type stubMatrix struct {
	m *routing.Matrix
}

func (s *stubMatrix) GetMatrix(_ context.Context, _ []geo.Coordinate) (*routing.Matrix, error) {
	return s.m, nil
}

type memoryOrderStore struct {
	parents map[types.ID]*order.ParentOrder
	subs    map[types.ID]*order.Suborder
	events  []order.StatusEvent
}

func newMemoryOrderStore() *memoryOrderStore {
	return &memoryOrderStore{
		parents: make(map[types.ID]*order.ParentOrder),
		subs:    make(map[types.ID]*order.Suborder),
	}
}

func (m *memoryOrderStore) CreateOrderGraph(_ context.Context, p *order.ParentOrder, subs []*order.Suborder, events []order.StatusEvent) error {
	m.parents[p.ID] = p
	for _, sub := range subs {
		m.subs[sub.ID] = sub
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *memoryOrderStore) GetParent(_ context.Context, id types.ID) (*order.ParentOrder, error) {
	p, ok := m.parents[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return p, nil
}

func (m *memoryOrderStore) GetSuborder(_ context.Context, id types.ID) (*order.Suborder, error) {
	sub, ok := m.subs[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return sub, nil
}

func (m *memoryOrderStore) ListSuborders(_ context.Context, parentID types.ID) ([]*order.Suborder, error) {
	var out []*order.Suborder
	for _, sub := range m.subs {
		if sub.ParentID == parentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *memoryOrderStore) UpdateSuborderStatus(_ context.Context, id types.ID, from, to order.Status, version int, ev order.StatusEvent) (bool, error) {
	sub := m.subs[id]
	if sub.Status != from || sub.StatusVersion != version {
		return false, nil
	}
	sub.Status = to
	sub.StatusVersion++
	m.events = append(m.events, ev)
	return true, nil
}

func (m *memoryOrderStore) UpdateParentStatus(_ context.Context, id types.ID, from, to order.Status, version int, ev order.StatusEvent) (bool, error) {
	p := m.parents[id]
	if p.Status != from || p.StatusVersion != version {
		return false, nil
	}
	p.Status = to
	p.StatusVersion++
	m.events = append(m.events, ev)
	return true, nil
}

func (m *memoryOrderStore) CascadeParentStatus(_ context.Context, parentID types.ID, from, to order.Status, version int, actorID *types.ID, notes string) (bool, error) {
	p := m.parents[parentID]
	if p.Status != from || p.StatusVersion != version {
		return false, nil
	}
	p.Status = to
	p.StatusVersion++
	for _, sub := range m.subs {
		if sub.ParentID == parentID && !sub.Status.Terminal() {
			sub.Status = to
			sub.StatusVersion++
		}
	}
	return true, nil
}

func (m *memoryOrderStore) AssignDriver(_ context.Context, parentID types.ID, driverID types.ID) error {
	p, ok := m.parents[parentID]
	if !ok {
		return order.ErrNotFound
	}
	p.DeliveryUserID = &driverID
	return nil
}

func testRouter(store *memoryOrderStore) http.Handler {
	gin.SetMode(gin.TestMode)
	log := slog.Default()

	settingsSvc := settings.NewService(&stubSettingsStore{val: settings.Settings{
		BaseFee:            10,
		KmRate:             2,
		PickupStopFee:      5,
		MinFee:             15,
		MaxFee:             100,
		Rounding:           settings.RoundNearestInt,
		FixedFallbackFee:   20,
		FallbackMode:       settings.FallbackFlatFee,
		MaxShopsPerOrder:   5,
		PlatformFeeFixed:   2,
		PlatformFeePercent: 10,
	}})

	locator := &stubLocator{locations: map[types.ID]geo.Coordinate{
		"shop-a": {Lat: 30.05, Lng: 31.22},
		"shop-b": {Lat: 30.06, Lng: 31.25},
	}}
	matrix := &stubMatrix{m: &routing.Matrix{
		Distances: [][]float64{{0, 5000, 2000}, {5000, 0, 1000}, {2000, 1000, 0}},
		Durations: [][]float64{{0, 600, 240}, {600, 0, 120}, {240, 120, 0}},
	}}

	checkoutSvc := checkout.NewService(settingsSvc, locator, matrix, log)
	orderSvc := order.NewService(store, checkoutSvc, log)
	return transport.NewRouter(transport.RouterDeps{
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Settings: settingsSvc,
		Log:      log,
	})
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cartBody() map[string]any {
	return map[string]any{
		"customer_id":    "cust-1",
		"customer_name":  "Ali",
		"customer_phone": "0100",
		"address":        "12 Tahrir St",
		"dest_lat":       30.04,
		"dest_lng":       31.23,
		"items": []map[string]any{
			{"product_id": "p1", "shop_id": "shop-a", "quantity": 2, "unit_price": 50},
			{"product_id": "p2", "shop_id": "shop-b", "quantity": 1, "unit_price": 80},
			{"product_id": "p3", "shop_id": "shop-a", "quantity": 1, "unit_price": 20},
		},
	}
}

func TestQuoteEndpoint(t *testing.T) {
	r := testRouter(newMemoryOrderStore())
	w := doJSON(r, http.MethodPost, "/api/checkout/quote", cartBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Total          float64  `json:"total"`
		PickupSequence []string `json:"pickup_sequence"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 253 {
		t.Errorf("total = %v, want 253", resp.Total)
	}
	if len(resp.PickupSequence) != 2 || resp.PickupSequence[0] != "shop-b" {
		t.Errorf("pickup_sequence = %v, want shop-b first", resp.PickupSequence)
	}
}

func TestQuoteEndpointCollectsProblems(t *testing.T) {
	r := testRouter(newMemoryOrderStore())
	body := cartBody()
	body["dest_lat"] = 0.0
	body["dest_lng"] = 0.0

	w := doJSON(r, http.MethodPost, "/api/checkout/quote", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Problems []struct {
			Field string `json:"field"`
		} `json:"problems"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Problems) != 1 || resp.Problems[0].Field != "destination" {
		t.Fatalf("problems = %+v, want one destination problem", resp.Problems)
	}
}

func TestCommitThenTransition(t *testing.T) {
	store := newMemoryOrderStore()
	r := testRouter(store)

	w := doJSON(r, http.MethodPost, "/api/checkout", cartBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("commit status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		OrderID   string `json:"order_id"`
		Status    string `json:"status"`
		Suborders []struct {
			SuborderID string `json:"suborder_id"`
		} `json:"suborders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != "placed" || len(created.Suborders) != 2 {
		t.Fatalf("created = %+v", created)
	}

	// Illegal jump straight to delivered.
	w = doJSON(r, http.MethodPost, "/api/suborders/"+created.Suborders[0].SuborderID+"/status",
		map[string]any{"status": "delivered", "actor_id": "shop-b"})
	if w.Code != http.StatusConflict {
		t.Fatalf("illegal transition status = %d, want 409", w.Code)
	}

	// The legal first step.
	w = doJSON(r, http.MethodPost, "/api/suborders/"+created.Suborders[0].SuborderID+"/status",
		map[string]any{"status": "confirmed", "actor_id": "shop-b"})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", w.Code, w.Body.String())
	}

	// Parent lookup includes suborders.
	w = doJSON(r, http.MethodGet, "/api/orders/"+created.OrderID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got struct {
		Total     float64 `json:"total"`
		Suborders []struct {
			Status string `json:"status"`
		} `json:"suborders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Total != 253 || len(got.Suborders) != 2 {
		t.Fatalf("got = %+v", got)
	}
}

func TestUnknownOrderIs404(t *testing.T) {
	r := testRouter(newMemoryOrderStore())
	w := doJSON(r, http.MethodGet, "/api/orders/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSettingsPatchValidation(t *testing.T) {
	r := testRouter(newMemoryOrderStore())
	w := doJSON(r, http.MethodPatch, "/api/admin/settings",
		map[string]any{"rounding": "banker", "actor_id": "admin-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPatch, "/api/admin/settings",
		map[string]any{"base_fee": 12.5, "actor_id": "admin-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		BaseFee   float64 `json:"base_fee"`
		UpdatedBy string  `json:"updated_by"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.BaseFee != 12.5 || resp.UpdatedBy != "admin-1" {
		t.Fatalf("resp = %+v", resp)
	}
}
