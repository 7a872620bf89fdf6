package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/cart"
	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/models"
	"github.com/motohub/motohub-cart-service/internal/request"
)

type memStore struct {
	states map[string]*models.CartState
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*models.CartState)}
}

func (m *memStore) Load(ctx context.Context, sessionID string) (*models.CartState, error) {
	state, ok := m.states[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return state.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, sessionID string, state *models.CartState) error {
	m.states[sessionID] = state.Clone()
	return nil
}

func (m *memStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.states, sessionID)
	return nil
}

type fakeAuth struct {
	authenticated bool
	loginCalls    int
}

func (f *fakeAuth) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	return f.authenticated, nil
}

func (f *fakeAuth) RequestLogin(ctx context.Context, sessionID string) error {
	f.loginCalls++
	return nil
}

type fakeSubmitter struct {
	err      error
	received []*models.ServiceRequest
}

func (f *fakeSubmitter) SubmitServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	f.received = append(f.received, req)
	return f.err
}

func price(v float64) *float64 { return &v }

type testEnv struct {
	router    *gin.Engine
	submitter *fakeSubmitter
	auth      *fakeAuth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snapshot := catalog.NewSnapshot()
	snapshot.Rebuild([]models.ProviderOffering{
		{ProviderID: "p1", ServiceType: "AC Service", Price: price(2499)},
		{ProviderID: "p1", ServiceType: "Car Wash", Price: price(499)},
	}, []models.ServiceProvider{
		{
			ID:                "p1",
			Name:              "QuickFix Garage",
			ServiceCategories: []string{"AC Service", "Car Wash"},
			Offerings: []models.ProviderOffering{
				{ProviderID: "p1", ServiceType: "AC Service", Price: price(2499)},
				{ProviderID: "p1", ServiceType: "Car Wash", Price: price(499)},
			},
		},
	})

	logger := zap.NewNop()
	manager := cart.NewManager(newMemStore(), nil, snapshot, 0.05, logger)
	auth := &fakeAuth{authenticated: true}
	submitter := &fakeSubmitter{}
	builder := request.NewBuilder(auth, submitter, nil, logger)

	h := NewHandlers(manager, builder, snapshot, &config.Config{}, logger)

	router := gin.New()
	router.GET("/health", h.Health)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", h.GetCatalog)
		v1.GET("/coupons", h.GetCoupons)
		v1.GET("/providers", h.GetProviders)
		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items", h.AddCartItem)
		v1.DELETE("/cart/items/:id", h.RemoveCartItem)
		v1.PATCH("/cart/items/:id", h.AdjustCartItem)
		v1.PUT("/cart/address", h.SelectAddress)
		v1.PUT("/cart/addresses", h.SetAddresses)
		v1.PUT("/cart/slot", h.SelectSlot)
		v1.PUT("/cart/coupon", h.SelectCoupon)
		v1.PUT("/cart/car", h.SetCarDetails)
		v1.POST("/cart/reset", h.ResetCart)
		v1.POST("/cart/submit", h.SubmitCart)
	}

	return &testEnv{router: router, submitter: submitter, auth: auth}
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, "sess_1")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	resp := parseBody(t, w)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
	if resp["service"] != "cart-service" {
		t.Errorf("Expected service 'cart-service', got %v", resp["service"])
	}
}

func TestGetCart_MissingSessionHeader(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetCatalog(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/catalog", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	resp := parseBody(t, w)
	packages, ok := resp["packages"].([]interface{})
	if !ok || len(packages) != 2 {
		t.Errorf("Expected 2 catalog packages, got %v", resp["packages"])
	}
}

func TestAddCartItem(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ac-service"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	resp := parseBody(t, w)

	cartBody, _ := resp["cart"].(map[string]interface{})
	items, _ := cartBody["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("Expected one cart item, got %v", cartBody["items"])
	}
	if resp["submission_state"] != "building" {
		t.Errorf("Expected submission_state 'building', got %v", resp["submission_state"])
	}
}

func TestAddCartItem_UnknownService(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ac-service"})

	w := env.do(t, http.MethodDelete, "/api/v1/cart/items/ac-service", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	resp := parseBody(t, w)
	cartBody, _ := resp["cart"].(map[string]interface{})
	if items, _ := cartBody["items"].([]interface{}); len(items) != 0 {
		t.Errorf("Expected empty cart, got %v", cartBody["items"])
	}
}

func TestSelectCoupon_Unknown(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/cart/coupon", gin.H{"coupon_code": "NOPE"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	resp := parseBody(t, w)
	if resp["field"] != "coupon_code" {
		t.Errorf("Expected field 'coupon_code', got %v", resp["field"])
	}
}

func TestGetProviders(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ac-service"})

	w := env.do(t, http.MethodGet, "/api/v1/providers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	resp := parseBody(t, w)
	providers, ok := resp["providers"].([]interface{})
	if !ok || len(providers) != 1 {
		t.Errorf("Expected one ranked provider, got %v", resp["providers"])
	}
}

func fillCart(t *testing.T, env *testEnv) {
	t.Helper()
	env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ac-service"})
	env.do(t, http.MethodPut, "/api/v1/cart/addresses", gin.H{"addresses": []gin.H{
		{"id": "addr_1", "label": "Home", "line1": "12 MG Road", "city": "Pune", "state": "MH", "pincode": "411001"},
	}})
	env.do(t, http.MethodPut, "/api/v1/cart/address", gin.H{"address_id": "addr_1"})
	env.do(t, http.MethodPut, "/api/v1/cart/slot", gin.H{"slot_id": "slot_1"})
	env.do(t, http.MethodPut, "/api/v1/cart/car", gin.H{"make": "Honda", "model": "City", "year": 2020, "fuel": "petrol"})
}

func TestSubmitCart_Success(t *testing.T) {
	env := newTestEnv(t)
	fillCart(t, env)

	w := env.do(t, http.MethodPost, "/api/v1/cart/submit", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseBody(t, w)
	if resp["state"] != "submitted" {
		t.Errorf("Expected state 'submitted', got %v", resp["state"])
	}
	if len(env.submitter.received) != 1 {
		t.Errorf("Expected one submission, got %d", len(env.submitter.received))
	}

	// Cart was cleared by the successful submission.
	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	cartBody, _ := parseBody(t, w)["cart"].(map[string]interface{})
	if items, _ := cartBody["items"].([]interface{}); len(items) != 0 {
		t.Errorf("Expected cart cleared after submission, got %v", cartBody["items"])
	}
}

func TestSubmitCart_AwaitingCarDetails(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ac-service"})
	env.do(t, http.MethodPut, "/api/v1/cart/address", gin.H{"address_id": "addr_1"})
	env.do(t, http.MethodPut, "/api/v1/cart/slot", gin.H{"slot_id": "slot_1"})

	w := env.do(t, http.MethodPost, "/api/v1/cart/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseBody(t, w)
	if resp["state"] != "awaiting_car_details" {
		t.Errorf("Expected state 'awaiting_car_details', got %v", resp["state"])
	}
	if len(env.submitter.received) != 0 {
		t.Error("Submitter must not be called before car details are captured")
	}
}

func TestSubmitCart_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	env.auth.authenticated = false
	fillCart(t, env)

	w := env.do(t, http.MethodPost, "/api/v1/cart/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	resp := parseBody(t, w)
	if resp["state"] != "awaiting_auth" {
		t.Errorf("Expected state 'awaiting_auth', got %v", resp["state"])
	}
	if env.auth.loginCalls != 1 {
		t.Errorf("Expected a login request, got %d", env.auth.loginCalls)
	}
}

func TestSubmitCart_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "ac-service"})
	// no address, no slot

	w := env.do(t, http.MethodPost, "/api/v1/cart/submit", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	resp := parseBody(t, w)
	if resp["field"] != "address_id" {
		t.Errorf("Expected field 'address_id', got %v", resp["field"])
	}
}

func TestSubmitCart_BookingFailure(t *testing.T) {
	env := newTestEnv(t)
	env.submitter.err = errors.New("booking service unavailable")
	fillCart(t, env)

	w := env.do(t, http.MethodPost, "/api/v1/cart/submit", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", w.Code)
	}

	// Cart survives the failed attempt.
	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	cartBody, _ := parseBody(t, w)["cart"].(map[string]interface{})
	if items, _ := cartBody["items"].([]interface{}); len(items) != 1 {
		t.Errorf("Expected cart intact after failed submission, got %v", cartBody["items"])
	}
}

func TestResetCart(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"service_id": "car-wash"})

	w := env.do(t, http.MethodPost, "/api/v1/cart/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	resp := parseBody(t, w)
	cartBody, _ := resp["cart"].(map[string]interface{})
	if items, _ := cartBody["items"].([]interface{}); len(items) != 0 {
		t.Errorf("Expected empty cart after reset, got %v", cartBody["items"])
	}
}
