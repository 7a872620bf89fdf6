package cart

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// memStore is an in-memory Store fake that round-trips through JSON the way
// the real store does.
type memStore struct {
	blobs   map[string][]byte
	corrupt map[string]bool
	saves   int
}

func newMemStore() *memStore {
	return &memStore{
		blobs:   make(map[string][]byte),
		corrupt: make(map[string]bool),
	}
}

func (m *memStore) Load(ctx context.Context, sessionID string) (*models.CartState, error) {
	if m.corrupt[sessionID] {
		return nil, &apperrors.CorruptRecordError{Key: sessionID, Err: errors.New("invalid character")}
	}
	blob, ok := m.blobs[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	var state models.CartState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *memStore) Save(ctx context.Context, sessionID string, state *models.CartState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.blobs[sessionID] = blob
	m.saves++
	return nil
}

func (m *memStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.blobs, sessionID)
	return nil
}

// memPrefill is a one-shot PrefillSource fake.
type memPrefill struct {
	records map[string]*models.PrefillRecord
}

func (m *memPrefill) Consume(ctx context.Context, sessionID string) (*models.PrefillRecord, error) {
	record, ok := m.records[sessionID]
	if !ok {
		return nil, nil
	}
	delete(m.records, sessionID)
	return record, nil
}

func price(v float64) *float64 { return &v }

func testCatalog() *catalog.Snapshot {
	s := catalog.NewSnapshot()
	s.Rebuild([]models.ProviderOffering{
		{ProviderID: "p1", ServiceType: "AC Service", Price: price(2499)},
		{ProviderID: "p1", ServiceType: "Car Wash", Price: price(499)},
	}, nil)
	return s
}

func newTestEngine(t *testing.T, store Store, prefill PrefillSource) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), "sess_1", store, prefill, testCatalog(), 0.05, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestAddItem_Idempotent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMemStore(), nil)

	if err := engine.AddItem(ctx, "ac-service"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := engine.AddItem(ctx, "ac-service"); err != nil {
		t.Fatalf("AddItem second time: %v", err)
	}

	state := engine.State()
	if len(state.Items) != 1 {
		t.Fatalf("Expected one cart line, got %d", len(state.Items))
	}
	if state.Items[0].Quantity != 1 {
		t.Errorf("Re-adding must not bump quantity, got %d", state.Items[0].Quantity)
	}
}

func TestAddItem_UnknownService(t *testing.T) {
	engine := newTestEngine(t, newMemStore(), nil)

	if err := engine.AddItem(context.Background(), "ghost"); err != apperrors.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemoveItem_ExactLine(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMemStore(), nil)

	engine.AddItem(ctx, "ac-service")
	engine.AddItem(ctx, "car-wash")
	engine.AdjustQuantity(ctx, "ac-service", 4)

	if err := engine.RemoveItem(ctx, "ac-service"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	state := engine.State()
	if len(state.Items) != 1 || state.Items[0].ServiceID != "car-wash" {
		t.Errorf("Expected only car-wash to remain, got %+v", state.Items)
	}
}

func TestAdjustQuantity_ClampedAtOne(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMemStore(), nil)
	engine.AddItem(ctx, "ac-service")

	tests := []struct {
		name     string
		delta    int
		expected int
	}{
		{"increment", 2, 3},
		{"decrement", -1, 2},
		{"decrement below one clamps", -10, 1},
		{"decrement at one clamps", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := engine.AdjustQuantity(ctx, "ac-service", tt.delta); err != nil {
				t.Fatalf("AdjustQuantity: %v", err)
			}
			item, _ := engine.State().Item("ac-service")
			if item.Quantity != tt.expected {
				t.Errorf("Expected quantity %d, got %d", tt.expected, item.Quantity)
			}
		})
	}
}

func TestEveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(t, store, nil)

	engine.AddItem(ctx, "ac-service")
	engine.SelectAddress(ctx, "addr_1")
	engine.SelectSlot(ctx, "slot_1")
	engine.SetNote(ctx, "please call first")

	if store.saves != 4 {
		t.Errorf("Expected 4 unconditional writes, got %d", store.saves)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(t, store, nil)

	engine.AddItem(ctx, "ac-service")
	engine.AdjustQuantity(ctx, "ac-service", 1)
	engine.SelectAddress(ctx, "addr_1")
	engine.SelectSlot(ctx, "slot_2")
	engine.SelectCoupon(ctx, "SAVE200")
	engine.SelectProviders(ctx, []string{"p1", "p2"})
	engine.SetNote(ctx, "gate code 4411")
	engine.SetCarDetails(ctx, models.CarDetails{Make: "Maruti", Model: "Swift", Year: 2019, Fuel: "petrol"})
	engine.SetAddresses(ctx, []models.Address{{ID: "addr_1", Label: "Home", Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"}})

	reloaded := newTestEngine(t, store, nil)

	if !reflect.DeepEqual(engine.State(), reloaded.State()) {
		t.Errorf("Round-trip mismatch:\n got %+v\nwant %+v", reloaded.State(), engine.State())
	}
}

func TestCorruptRecordStartsFresh(t *testing.T) {
	store := newMemStore()
	store.corrupt["sess_1"] = true

	engine := newTestEngine(t, store, nil)

	if len(engine.State().Items) != 0 {
		t.Errorf("Corrupt record must yield a fresh cart, got %+v", engine.State())
	}
}

func TestPrefillConsumedOnce(t *testing.T) {
	store := newMemStore()
	prefill := &memPrefill{records: map[string]*models.PrefillRecord{
		"sess_1": {
			Items:      []models.CartItem{{ServiceID: "ac-service", Quantity: 2}},
			CarDetails: &models.CarDetails{Make: "Tata", Model: "Nexon", Year: 2021, Fuel: "diesel"},
		},
	}}

	engine := newTestEngine(t, store, prefill)

	state := engine.State()
	if len(state.Items) != 1 || state.Items[0].Quantity != 2 {
		t.Fatalf("Expected prefilled cart, got %+v", state.Items)
	}
	if state.CarDetails == nil || state.CarDetails.Make != "Tata" {
		t.Errorf("Expected prefilled car details, got %+v", state.CarDetails)
	}

	// A second session start must fall back to the stored blob, not the
	// prefill record.
	again := newTestEngine(t, store, prefill)
	if !reflect.DeepEqual(engine.State(), again.State()) {
		t.Error("Second construction must rehydrate the persisted prefill result")
	}
}

func TestPrefillSkipsUnknownServices(t *testing.T) {
	prefill := &memPrefill{records: map[string]*models.PrefillRecord{
		"sess_1": {Items: []models.CartItem{
			{ServiceID: "ghost", Quantity: 1},
			{ServiceID: "car-wash", Quantity: 1},
		}},
	}}

	engine := newTestEngine(t, newMemStore(), prefill)

	state := engine.State()
	if len(state.Items) != 1 || state.Items[0].ServiceID != "car-wash" {
		t.Errorf("Unknown prefill services must be dropped, got %+v", state.Items)
	}
}

func TestApplyCatalog_DropsAndSeeds(t *testing.T) {
	ctx := context.Background()

	packages := []models.ServicePackage{
		{ID: "ac-service", Name: "AC Service", Price: 2499},
		{ID: "car-wash", Name: "Car Wash", Price: 499},
	}

	t.Run("survivors kept, missing dropped", func(t *testing.T) {
		engine := newTestEngine(t, newMemStore(), nil)
		engine.AddItem(ctx, "ac-service")
		engine.AddItem(ctx, "car-wash")

		if err := engine.ApplyCatalog(ctx, packages[:1]); err != nil {
			t.Fatalf("ApplyCatalog: %v", err)
		}

		state := engine.State()
		if len(state.Items) != 1 || state.Items[0].ServiceID != "ac-service" {
			t.Errorf("Expected only ac-service to survive, got %+v", state.Items)
		}
	})

	t.Run("already-empty cart is seeded", func(t *testing.T) {
		engine := newTestEngine(t, newMemStore(), nil)

		if err := engine.ApplyCatalog(ctx, packages); err != nil {
			t.Fatalf("ApplyCatalog: %v", err)
		}

		state := engine.State()
		if len(state.Items) != 1 || state.Items[0].ServiceID != "ac-service" || state.Items[0].Quantity != 1 {
			t.Errorf("Expected single seeded unit of first package, got %+v", state.Items)
		}
	})

	t.Run("cart emptied by reconciliation stays empty", func(t *testing.T) {
		engine := newTestEngine(t, newMemStore(), nil)
		engine.AddItem(ctx, "ac-service")

		newCatalog := []models.ServicePackage{{ID: "wheel-alignment", Name: "Wheel Alignment"}}
		if err := engine.ApplyCatalog(ctx, newCatalog); err != nil {
			t.Fatalf("ApplyCatalog: %v", err)
		}

		if len(engine.State().Items) != 0 {
			t.Errorf("Reconciliation-emptied cart must not be re-seeded, got %+v", engine.State().Items)
		}
	})
}

func TestSubmissionGuardBlocksMutations(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newMemStore(), nil)
	engine.AddItem(ctx, "ac-service")

	if err := engine.BeginSubmission(); err != nil {
		t.Fatalf("BeginSubmission: %v", err)
	}

	if err := engine.AddItem(ctx, "car-wash"); err != apperrors.ErrSubmissionInFlight {
		t.Errorf("Expected ErrSubmissionInFlight, got %v", err)
	}
	if err := engine.BeginSubmission(); err != apperrors.ErrSubmissionInFlight {
		t.Errorf("Second BeginSubmission must fail, got %v", err)
	}

	engine.EndSubmission()

	if err := engine.AddItem(ctx, "car-wash"); err != nil {
		t.Errorf("Mutation after EndSubmission: %v", err)
	}
}

func TestSelectCoupon_UnknownRejected(t *testing.T) {
	engine := newTestEngine(t, newMemStore(), nil)

	err := engine.SelectCoupon(context.Background(), "NOPE")
	if !apperrors.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(t, store, nil)
	engine.AddItem(ctx, "ac-service")

	if err := engine.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(engine.State().Items) != 0 {
		t.Error("Reset must empty the cart")
	}
	if _, ok := store.blobs["sess_1"]; ok {
		t.Error("Reset must drop the stored record")
	}
}
