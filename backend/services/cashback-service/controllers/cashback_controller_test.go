package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/routes"
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.SetSecret("test-secret")
}

type mockCashbackService struct {
	addFn       func(ctx context.Context, req models.AddCashbackRequest) (*models.Cashback, error)
	listFn      func(ctx context.Context, email string) ([]models.CashbackView, error)
	totalFn     func(ctx context.Context, email string) (float64, error)
	summaryFn   func(ctx context.Context, email string) (*models.CashbackSummary, error)
	reconcileFn func(ctx context.Context, email string) (*models.CashbackSummary, error)
}

func (m *mockCashbackService) HandleMessage(context.Context, string) error { return nil }
func (m *mockCashbackService) HandleCashbackEvent(context.Context, events.CashbackMessage) error {
	return nil
}
func (m *mockCashbackService) AddCashback(ctx context.Context, req models.AddCashbackRequest) (*models.Cashback, error) {
	return m.addFn(ctx, req)
}
func (m *mockCashbackService) ListCashbacks(ctx context.Context, email string) ([]models.CashbackView, error) {
	return m.listFn(ctx, email)
}
func (m *mockCashbackService) TotalCashback(ctx context.Context, email string) (float64, error) {
	return m.totalFn(ctx, email)
}
func (m *mockCashbackService) Summary(ctx context.Context, email string) (*models.CashbackSummary, error) {
	return m.summaryFn(ctx, email)
}
func (m *mockCashbackService) Reconcile(ctx context.Context, email string) (*models.CashbackSummary, error) {
	return m.reconcileFn(ctx, email)
}

func setupRouter(svc *mockCashbackService) *gin.Engine {
	r := gin.New()
	routes.RegisterCashbackRoutes(r, controllers.NewCashbackController(svc))
	return r
}

func token(t *testing.T, email, role string) string {
	tok, err := auth.IssueToken("id-1", email, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func doRequest(r *gin.Engine, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddCashback(t *testing.T) {
	svc := &mockCashbackService{addFn: func(_ context.Context, req models.AddCashbackRequest) (*models.Cashback, error) {
		return &models.Cashback{ID: 1, UserEmail: req.UserEmail, DealID: req.DealID, CashbackAmount: req.CashbackAmount, Timestamp: time.Now()}, nil
	}}

	w := doRequest(setupRouter(svc), http.MethodPost, "/cashback/add", token(t, "admin@x.com", auth.RoleAdmin),
		gin.H{"userEmail": "user@example.com", "dealId": 1, "cashbackAmount": 50.0})

	require.Equal(t, http.StatusOK, w.Code)
	var rec models.Cashback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "user@example.com", rec.UserEmail)
	assert.Equal(t, int64(1), rec.DealID)
	assert.Equal(t, 50.0, rec.CashbackAmount)
}

func TestAddCashback_AdminOnly(t *testing.T) {
	w := doRequest(setupRouter(&mockCashbackService{}), http.MethodPost, "/cashback/add", token(t, "u@x.com", auth.RoleUser),
		gin.H{"userEmail": "u@x.com", "dealId": 1, "cashbackAmount": 5.0})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddCashback_ValidationAndStoreErrors(t *testing.T) {
	svc := &mockCashbackService{addFn: func(context.Context, models.AddCashbackRequest) (*models.Cashback, error) {
		return nil, errors.New("db down")
	}}
	r := setupRouter(svc)
	tok := token(t, "admin@x.com", auth.RoleAdmin)

	w := doRequest(r, http.MethodPost, "/cashback/add", tok, gin.H{"dealId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/cashback/add", tok, gin.H{"userEmail": "u@x.com", "dealId": 1, "cashbackAmount": 5.0})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListCashbacks(t *testing.T) {
	svc := &mockCashbackService{listFn: func(_ context.Context, email string) ([]models.CashbackView, error) {
		return []models.CashbackView{{DealID: 101, CashbackAmount: 25}, {DealID: 102, CashbackAmount: 35}}, nil
	}}

	w := doRequest(setupRouter(svc), http.MethodGet, "/cashback/user/u@x.com", token(t, "u@x.com", auth.RoleUser), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, 101.0, views[0]["dealId"])
	assert.Equal(t, 35.0, views[1]["cashbackAmount"])
	assert.Contains(t, views[0], "timestamp")
}

func TestListCashbacks_OtherUserForbidden(t *testing.T) {
	w := doRequest(setupRouter(&mockCashbackService{}), http.MethodGet, "/cashback/user/other@x.com", token(t, "u@x.com", auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTotalAndSummary(t *testing.T) {
	svc := &mockCashbackService{
		totalFn: func(context.Context, string) (float64, error) { return 25, nil },
		summaryFn: func(_ context.Context, email string) (*models.CashbackSummary, error) {
			return &models.CashbackSummary{UserEmail: email, TotalCashback: 120}, nil
		},
	}
	r := setupRouter(svc)
	admin := token(t, "admin@x.com", auth.RoleAdmin)

	w := doRequest(r, http.MethodGet, "/cashback/user/u@x.com/total", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userEmail":"u@x.com","totalCashback":25}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/cashback/summary/u@x.com", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userEmail":"u@x.com","totalCashback":120}`, w.Body.String())
}

func TestReconcile(t *testing.T) {
	svc := &mockCashbackService{reconcileFn: func(_ context.Context, email string) (*models.CashbackSummary, error) {
		return &models.CashbackSummary{UserEmail: email, TotalCashback: 60}, nil
	}}
	w := doRequest(setupRouter(svc), http.MethodPost, "/cashback/admin/reconcile/u@x.com", token(t, "admin@x.com", auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userEmail":"u@x.com","totalCashback":60}`, w.Body.String())
}
