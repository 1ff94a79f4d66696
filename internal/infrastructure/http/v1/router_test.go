package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "pharmadesk/internal/core/context"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/documents"
	"pharmadesk/internal/domain/documents/invoice"
	"pharmadesk/internal/domain/documents/purchase"
	"pharmadesk/internal/domain/registers/stock"
	"pharmadesk/internal/infrastructure/auth"
	"pharmadesk/internal/infrastructure/storage/memory"
	"pharmadesk/pkg/logger"
	"pharmadesk/pkg/numerator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	medicines *memory.MedicineStore
}

func newTestServer(t *testing.T, mutate func(*RouterConfig)) *testServer {
	t.Helper()
	store := memory.New()
	meds := memory.NewMedicineStore(store)
	txm := memory.NewTxManager(store)
	num := numerator.New(memory.NewCounter(store), nil)
	engine := stock.NewEngine(meds)
	resolver := documents.NewMedicineResolver(meds)

	ctx := context.Background()
	meds.Put(ctx, stock.Medicine{ID: "napa", Name: "Napa 500", Stock: 10, UnitsPerBox: 10})

	cfg := RouterConfig{
		Invoices: invoice.NewService(invoice.ServiceConfig{
			Repo:      memory.NewDocumentRepo[*invoice.Invoice](store, "invoice"),
			TxManager: txm,
			Numerator: num,
			Stock:     engine,
			Resolver:  resolver,
			ApplyMode: domain.ApplyTransactional,
		}),
		Purchases: purchase.NewService(purchase.ServiceConfig{
			Repo:      memory.NewDocumentRepo[*purchase.Purchase](store, "purchase"),
			TxManager: txm,
			Numerator: num,
			Stock:     engine,
			Resolver:  resolver,
			ApplyMode: domain.ApplyTransactional,
		}),
		Store:         store,
		StorageDriver: "memory",
		Version:       "test",
		Logger:        logger.Nop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return &testServer{router: NewRouter(cfg), medicines: meds}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) stockOf(t *testing.T, medID string) int64 {
	t.Helper()
	med, err := s.medicines.FindByID(context.Background(), medID)
	require.NoError(t, err)
	return med.Stock
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Code   string          `json:"code"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type docBody struct {
	ID         string  `json:"id"`
	Number     string  `json:"number"`
	Version    int     `json:"version"`
	SubTotal   float64 `json:"subTotal"`
	GrandTotal float64 `json:"grandTotal"`
	NetTotal   float64 `json:"netTotal"`
	DueAmount  float64 `json:"dueAmount"`
	Items      []struct {
		EffectiveUnits float64 `json:"effectiveUnits"`
		LineBase       float64 `json:"lineBase"`
		LineTotal      float64 `json:"lineTotal"`
	} `json:"items"`
}

func decodeDoc(t *testing.T, rec *httptest.ResponseRecorder) docBody {
	t.Helper()
	var doc docBody
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &doc))
	return doc
}

func invoiceBody(qty any) map[string]any {
	return map[string]any{
		"customerName":    "Walk-in",
		"date":            "2026-05-04",
		"paymentType":     "cash",
		"discount":        "0",
		"previousBalance": 0,
		"paidAmount":      45,
		"items": []map[string]any{
			{"medicineId": "napa", "quantity": qty, "boxQuantity": 2, "price": "10", "discount": 10, "vat": 5},
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", nil).Code)

	rec := s.do(t, http.MethodGet, "/health/info", nil)
	assert.Contains(t, rec.Body.String(), `"storage":"memory"`)
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_NotReady(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) { cfg.Store = downStore{} })

	rec := s.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInvoiceLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/invoices/add", invoiceBody(3))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeDoc(t, rec)
	assert.Equal(t, "INV-00001", created.Number)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 5.0, created.Items[0].EffectiveUnits)
	assert.Equal(t, 50.0, created.Items[0].LineBase)
	assert.Equal(t, 45.0, created.Items[0].LineTotal)
	assert.Equal(t, int64(5), s.stockOf(t, "napa"))

	rec = s.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeDoc(t, rec))

	rec = s.do(t, http.MethodGet, "/api/invoices?search=inv-0000&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 10, list.Limit)
	var listed []docBody
	require.NoError(t, json.Unmarshal(list.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])

	rec = s.do(t, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"id":"`+created.ID+`","deleted":true}}`, rec.Body.String())
	assert.Equal(t, int64(10), s.stockOf(t, "napa"))

	rec = s.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Code)
}

func TestInvoiceCreate_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "insufficient stock",
			body:       invoiceBody(9),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_STOCK",
		},
		{
			name:       "missing customer",
			body:       map[string]any{"date": "2026-05-04", "items": []map[string]any{{"name": "x", "quantity": 1}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "bad date",
			body:       map[string]any{"customerName": "A", "date": "04/05/2026", "items": []map[string]any{{"name": "x"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "no items",
			body:       map[string]any{"customerName": "A", "date": "2026-05-04", "items": []any{}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed body",
			body:       "customer=A",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/invoices", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode(t, rec).Code)
		})
	}

	assert.Equal(t, int64(10), s.stockOf(t, "napa"))
	list := decode(t, s.do(t, http.MethodGet, "/api/invoices", nil))
	assert.Equal(t, int64(0), list.Total)
	assert.JSONEq(t, `[]`, string(list.Data))
}

func TestInvalidID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/purchases/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	body := map[string]any{
		"supplierName": "Beximco",
		"date":         "2026-05-04T09:30:00Z",
		"paidAmount":   20,
		"items": []map[string]any{
			{"medicineId": "napa", "quantity": "", "boxQuantity": 2, "price": 10, "discount": 10, "vat": 5},
		},
	}
	rec := s.do(t, http.MethodPost, "/api/purchases/add", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeDoc(t, rec)
	assert.Equal(t, "PUR-00001", created.Number)
	assert.Equal(t, 20.0, created.Items[0].EffectiveUnits)
	assert.Equal(t, int64(30), s.stockOf(t, "napa"))

	// 2 boxes -> 3 boxes of 10 adds 10 units
	body["items"] = []map[string]any{
		{"medicineId": "napa", "boxQuantity": 3, "price": 10},
	}
	body["version"] = created.Version
	rec = s.do(t, http.MethodPut, "/api/purchases/update/"+created.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeDoc(t, rec)
	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, 30.0, updated.Items[0].EffectiveUnits)
	assert.Equal(t, int64(40), s.stockOf(t, "napa"))

	// stale version is refused
	rec = s.do(t, http.MethodPut, "/api/purchases/"+created.ID, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/purchases/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), s.stockOf(t, "napa"))
}

func TestAuthScopesDocumentsToPharmacy(t *testing.T) {
	validator := auth.NewJWTValidator(auth.DefaultConfig("test-secret-key-at-least-32-chars"))
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.JWTValidator = validator
		cfg.WriteRoles = []string{"pharmacist"}
	})

	token := func(pharmacyID string, roles ...string) string {
		tok, _, err := validator.IssueToken(appctx.UserContext{UserID: "u-" + pharmacyID, PharmacyID: pharmacyID, Roles: roles})
		require.NoError(t, err)
		return "Bearer " + tok
	}

	rec := s.do(t, http.MethodGet, "/api/invoices", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/invoices", invoiceBody(1), "Authorization", token("ph-1", "viewer"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/invoices", invoiceBody(1), "Authorization", token("ph-1", "pharmacist"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeDoc(t, rec)

	rec = s.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil, "Authorization", token("ph-1", "viewer"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil, "Authorization", token("ph-2", "viewer"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	list := decode(t, s.do(t, http.MethodGet, "/api/invoices", nil, "Authorization", token("ph-2", "pharmacist")))
	assert.Equal(t, int64(0), list.Total)
}
