package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/config"
	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/cache"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/handler"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/ledgerpos-api/pkg/email"
	"github.com/sangkips/ledgerpos-api/pkg/printer"
	"github.com/sangkips/ledgerpos-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	verifier *utils.TokenVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "ledgerpos-api"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 60},
	}

	store := memory.NewStore()
	sourceRepo := memory.NewSourceRepository(store)
	ledgerCategoryRepo := memory.NewLedgerCategoryRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	productRepo := memory.NewProductRepository(store)
	billRepo := memory.NewBillRepository(store)
	payerRepo := memory.NewPayerRepository(store)
	transactionRepo := memory.NewTransactionRepository(store)
	tx := store.Transactor()

	billGST := checkout.NewPolicy(enum.GstModeAdditive, checkout.NewPercent(8))
	calc := checkout.NewCalculator(true)

	thermal, err := printer.New(printer.Config{Type: "none"})
	require.NoError(t, err)

	sourceService := service.NewSourceService(sourceRepo, ledgerCategoryRepo, tx)
	invitationService := service.NewInvitationService(
		memory.NewInvitationRepository(store), sourceRepo, email.NewSender(email.Config{}), tx, time.Hour,
	)
	productService := service.NewProductService(productRepo, categoryRepo, tx,
		checkout.NewPolicy(enum.GstModeAdditive, checkout.NewPercent(10)))
	ledgerService := service.NewLedgerService(ledgerCategoryRepo, transactionRepo,
		checkout.NewPolicy(enum.GstModeInclusive, checkout.NewPercent(8)))
	payerService := service.NewPayerService(payerRepo, memory.NewCreditSettingRepository(store), billRepo, tx, 1)
	billService := service.NewBillService(service.BillServiceDeps{
		BillRepo:    billRepo,
		ProductRepo: productRepo,
		PayerRepo:   payerRepo,
		Tx:          tx,
		Cache:       cache.NoopBillCache{},
		Calculator:  calc,
		GST:         billGST,
		Products:    productService,
		Ledger:      ledgerService,
		Payers:      payerService,
	})

	handlers := &Handlers{
		Source:    handler.NewSourceHandler(sourceService, invitationService),
		Catalog:   handler.NewCatalogHandler(service.NewCategoryService(categoryRepo, productRepo), productService),
		Bill:      handler.NewBillHandler(billService, service.NewCheckoutService(calc, billGST)),
		Payer:     handler.NewPayerHandler(payerService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Printer:   handler.NewPrinterHandler(service.NewPrinterService(thermal, billRepo, sourceRepo, "none", 0)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(billRepo, productRepo, transactionRepo, payerService)),
	}

	limiter := middleware.NewSourceRateLimiter(middleware.RateLimiterConfigFrom(1000, 60))
	t.Cleanup(limiter.Stop)

	verifier := utils.NewTokenVerifier("test-secret", "ledgerpos")
	router := Setup(handlers, &Deps{
		Verifier:        verifier,
		Cfg:             cfg,
		IdempotencyRepo: memory.NewIdempotencyRepository(store),
		Members:         sourceService,
		RateLimiter:     limiter,
	})

	return &testServer{t: t, router: router, verifier: verifier}
}

type caller struct {
	token    string
	sourceID string
}

func (s *testServer) user(email string) *caller {
	s.t.Helper()
	token, err := s.verifier.Issue(uuid.New(), email, time.Hour)
	require.NoError(s.t, err)
	return &caller{token: token}
}

func (s *testServer) do(c *caller, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c != nil {
		req.Header.Set("Authorization", "Bearer "+c.token)
		if c.sourceID != "" {
			req.Header.Set(middleware.SourceHeader, c.sourceID)
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
}

// createSource makes owner the controller of a new source and scopes it to that source
func (s *testServer) createSource(owner *caller, name string) {
	s.t.Helper()
	w := s.do(owner, http.MethodPost, "/api/v1/sources", map[string]any{"name": name}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var source struct {
		ID string `json:"id"`
	}
	decode(s.t, w, &source)
	owner.sourceID = source.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := s.do(nil, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ledgerpos-api")
	}
}

func TestScopedRoutesNeedSourceHeader(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner@example.com")

	w := s.do(owner, http.MethodGet, "/api/v1/bills", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(nil, http.MethodGet, "/api/v1/bills", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	stranger := s.user("stranger@example.com")
	stranger.sourceID = uuid.NewString()
	w = s.do(stranger, http.MethodGet, "/api/v1/bills", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBillCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner@example.com")
	s.createSource(owner, "Corner Cafe")

	w := s.do(owner, http.MethodPost, "/api/v1/bills", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bill struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, w, &bill)
	assert.Equal(t, "active", bill.Status)

	w = s.do(owner, http.MethodPost, "/api/v1/bills/"+bill.ID+"/items", map[string]any{
		"name":     "Catering",
		"price":    "100.00",
		"quantity": 2,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var priced struct {
		SubTotal json.Number `json:"sub_total"`
		GST      json.Number `json:"gst"`
		Total    json.Number `json:"total"`
	}
	decode(t, w, &priced)
	assert.Equal(t, "200.00", priced.SubTotal.String())
	assert.Equal(t, "16.00", priced.GST.String())
	assert.Equal(t, "216.00", priced.Total.String())

	checkoutPath := "/api/v1/bills/" + bill.ID + "/checkout"
	payment := map[string]any{"amount": 250, "payment_method": "cash"}

	w = s.do(owner, http.MethodPost, checkoutPath, payment, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "checkout without a key")

	key := map[string]string{middleware.IdempotencyKeyHeader: uuid.NewString()}
	w = s.do(owner, http.MethodPost, checkoutPath, payment, key)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done struct {
		Status string      `json:"status"`
		Paid   json.Number `json:"paid"`
		Due    json.Number `json:"due"`
		Change json.Number `json:"change"`
	}
	decode(t, w, &done)
	assert.Equal(t, "completed", done.Status)
	assert.Equal(t, "216.00", done.Paid.String())
	assert.Equal(t, "0.00", done.Due.String())
	assert.Equal(t, "34.00", done.Change.String())
	first := w.Body.String()

	// A retry replays the stored response instead of settling twice
	w = s.do(owner, http.MethodPost, checkoutPath, payment, key)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first, w.Body.String())

	// A fresh key hits the real handler, which refuses a completed bill
	w = s.do(owner, http.MethodPost, checkoutPath, payment,
		map[string]string{middleware.IdempotencyKeyHeader: uuid.NewString()})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = s.do(owner, http.MethodGet, "/api/v1/reports/summary", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		Income  json.Number `json:"income"`
		Entries int64       `json:"entries"`
	}
	decode(t, w, &summary)
	assert.Equal(t, "216.00", summary.Income.String())
	assert.Equal(t, int64(1), summary.Entries)
}

func TestQuote(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner@example.com")
	s.createSource(owner, "Corner Cafe")

	w := s.do(owner, http.MethodPost, "/api/v1/checkout/quote", map[string]any{
		"items": []map[string]any{
			{"price": 50, "quantity": 2},
			{"price": "25.50", "quantity": 1, "type": "service"},
		},
		"discount": 5,
		"gst_mode": "inclusive",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote struct {
		SubTotal json.Number `json:"sub_total"`
		Total    json.Number `json:"total"`
		GstMode  string      `json:"gst_mode"`
	}
	decode(t, w, &quote)
	assert.Equal(t, "125.50", quote.SubTotal.String())
	assert.Equal(t, "120.50", quote.Total.String())
	assert.Equal(t, "inclusive", quote.GstMode)

	w = s.do(owner, http.MethodPost, "/api/v1/checkout/quote", map[string]any{
		"items": []map[string]any{{"price": 10, "quantity": 0}},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestInvitedViewerIsReadOnly(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner@example.com")
	s.createSource(owner, "Corner Cafe")

	w := s.do(owner, http.MethodPost, "/api/v1/invitations", map[string]any{
		"email": "Viewer@Example.com",
		"role":  "viewer",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invite struct {
		Code    string `json:"code"`
		Emailed bool   `json:"emailed"`
	}
	decode(t, w, &invite)
	require.NotEmpty(t, invite.Code)
	assert.False(t, invite.Emailed)

	viewer := s.user("viewer@example.com")
	w = s.do(viewer, http.MethodPost, "/api/v1/invitations/accept", map[string]any{"code": "wrong-code"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(viewer, http.MethodPost, "/api/v1/invitations/accept", map[string]any{"code": invite.Code}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	viewer.sourceID = owner.sourceID
	w = s.do(viewer, http.MethodGet, "/api/v1/sources/current", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(viewer, http.MethodPost, "/api/v1/bills", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(viewer, http.MethodPost, "/api/v1/invitations", map[string]any{
		"email": "friend@example.com",
		"role":  "viewer",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reads follow the role table even without area flags
	for _, path := range []string{
		"/api/v1/bills",
		"/api/v1/payers",
		"/api/v1/receivables",
		"/api/v1/transactions",
		"/api/v1/ledger/categories",
		"/api/v1/products",
		"/api/v1/reports/summary",
	} {
		w = s.do(viewer, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	for _, path := range []string{"/api/v1/printer/status"} {
		w = s.do(viewer, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w = s.do(viewer, http.MethodPost, "/api/v1/transactions", map[string]any{"kind": "expense"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestErrorsAndStatusCodes(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner@example.com")
	s.createSource(owner, "Corner Cafe")

	t.Run("binding rules answer 422 per field", func(t *testing.T) {
		w := s.do(owner, http.MethodPost, "/api/v1/payers", map[string]any{"email": "not-an-email"}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var body struct {
			Success bool `json:"success"`
			Errors  []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		fields := map[string]string{}
		for _, e := range body.Errors {
			fields[e.Field] = e.Message
		}
		assert.Equal(t, "is required", fields["name"])
		assert.Equal(t, "must be a valid email address", fields["email"])
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		w := s.do(owner, http.MethodPost, "/api/v1/payers", "not an object", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("delete answers 204", func(t *testing.T) {
		w := s.do(owner, http.MethodPost, "/api/v1/payers", map[string]any{"name": "Ravi"}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var payer struct {
			ID string `json:"id"`
		}
		decode(t, w, &payer)

		w = s.do(owner, http.MethodDelete, "/api/v1/payers/"+payer.ID, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		assert.Empty(t, w.Body.String())

		w = s.do(owner, http.MethodGet, "/api/v1/payers/"+payer.ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		w := s.do(owner, http.MethodDelete, "/api/v1/payers/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown route is a JSON 404", func(t *testing.T) {
		w := s.do(owner, http.MethodGet, "/api/v1/nothing-here", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		var body envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
	})
}
