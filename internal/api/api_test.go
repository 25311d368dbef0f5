package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/auth"
	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/pipeline"
	"github.com/andresuchdata/restock-forecast/internal/repository/memory"
	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := memory.NewCatalogRepository()
	catalog.AddItem(domain.Item{ItemID: "I1", SKU: "LATTE", ItemName: "Latte"})
	catalog.AddRecipeEntry(domain.RecipeEntry{SKU: "LATTE", IngID: "ING-MILK", Quantity: decimal.RequireFromString("0.25")})

	inventory := memory.NewInventoryRepository()
	inventory.Put(domain.InventoryRecord{IngID: "ING-MILK", Name: "Milk", Quantity: decimal.NewFromInt(1)})

	orders := memory.NewOrderRepository()
	predictions := memory.NewPredictionRepository()

	// No model: forecast runs are rejected.
	orch := pipeline.NewOrchestrator(orders, catalog, predictions, nil, nil, nil, pipeline.DefaultPipelineConfig())

	tokens, err := auth.NewTokenService("test-secret", "test", time.Hour)
	require.NoError(t, err)
	token, err := tokens.Issue("cafe-1")
	require.NoError(t, err)

	router := NewRouter(&Services{
		ForecastService:  service.NewForecastService(orch, predictions),
		SalesService:     service.NewSalesService(orders, memory.NewSaleRepository(orders, inventory), catalog, catalog),
		InventoryService: service.NewInventoryService(inventory, catalog),
		Tokens:           tokens,
	}, []string{"*"})

	return &testServer{router: router, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	s.token = ""
	w := s.do(t, http.MethodGet, "/api/v1/inventory", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not logged in", decode(t, w)["error"])

	s.token = "garbage"
	w = s.do(t, http.MethodGet, "/api/v1/inventory", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordSaleFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/sales", domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Latte", Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "ORD001", body["order_id"])
	assert.Equal(t, "Sale recorded successfully", body["message"])

	w = s.do(t, http.MethodPost, "/api/v1/sales", domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Latte", Quantity: 10}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sales", domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Scone", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sales/distribution", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"takeout": float64(1)}, decode(t, w)["sales_types"])
}

func TestRecordSaleRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON format", decode(t, w)["error"])
}

func TestInventoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/inventory", map[string]any{"item": "Sugar", "item_type": "dry", "quantity": 25})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/inventory", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/inventory/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.Equal(t, float64(2), stats["total_items"])
	assert.Equal(t, float64(1), stats["low_stock"])
	assert.Equal(t, float64(0), stats["out_of_stock"])

	w = s.do(t, http.MethodGet, "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)
}

func TestForecastRunWithoutModel(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/forecast/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/forecast/predictions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["predictions"])
}

func TestNewRouterWithoutTokensServesHealthOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(&Services{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name            string
		allowed         []string
		wantCredentials string
	}{
		{"wildcard never sends credentials", []string{"*"}, ""},
		{"listed origin keeps credentials", []string{"https://app.example.com"}, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(nil, tt.allowed)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", "https://app.example.com")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}
