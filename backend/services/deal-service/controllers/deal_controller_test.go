package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/Arpita030/deals-App/backend/services/deal-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"github.com/Arpita030/deals-App/backend/services/deal-service/routes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.SetSecret("test-secret")
}

// --- Mock DealService ---

type mockDealService struct {
	listFn     func(ctx context.Context) ([]models.Deal, error)
	activeFn   func(ctx context.Context) ([]models.Deal, error)
	categoryFn func(ctx context.Context, category string) ([]models.Deal, error)
	getFn      func(ctx context.Context, id int64) (*models.Deal, error)
	createFn   func(ctx context.Context, req *models.DealRequest) (*models.Deal, error)
	updateFn   func(ctx context.Context, id int64, req *models.DealRequest) (*models.Deal, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockDealService) ListDeals(ctx context.Context) ([]models.Deal, error) { return m.listFn(ctx) }
func (m *mockDealService) ListActiveDeals(ctx context.Context) ([]models.Deal, error) {
	return m.activeFn(ctx)
}
func (m *mockDealService) ListDealsByCategory(ctx context.Context, c string) ([]models.Deal, error) {
	return m.categoryFn(ctx, c)
}
func (m *mockDealService) GetDeal(ctx context.Context, id int64) (*models.Deal, error) {
	return m.getFn(ctx, id)
}
func (m *mockDealService) CreateDeal(ctx context.Context, req *models.DealRequest) (*models.Deal, error) {
	return m.createFn(ctx, req)
}
func (m *mockDealService) UpdateDeal(ctx context.Context, id int64, req *models.DealRequest) (*models.Deal, error) {
	return m.updateFn(ctx, id, req)
}
func (m *mockDealService) DeleteDeal(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *mockDealService) ExpireDeals(context.Context, time.Time) (int, error) {
	return 0, nil
}

// --- Helpers ---

func sampleDeal(id int64) models.Deal {
	return models.Deal{
		ID:          id,
		Title:       "Deal",
		Description: "Description",
		Discount:    10,
		Category:    "Electronics",
		ExpiryDate:  time.Now().Add(240 * time.Hour),
		Active:      true,
		Price:       1000,
	}
}

func setupRouter(svc *mockDealService) *gin.Engine {
	r := gin.New()
	routes.RegisterDealRoutes(r, controllers.NewDealController(svc))
	return r
}

func token(t *testing.T, role string) string {
	tok, err := auth.IssueToken("id", "someone@gmail.com", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(r *gin.Engine, method, path, authz string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestGetAllDeals(t *testing.T) {
	svc := &mockDealService{listFn: func(context.Context) ([]models.Deal, error) {
		return []models.Deal{sampleDeal(1)}, nil
	}}

	w := do(setupRouter(svc), http.MethodGet, "/deals/all", token(t, auth.RoleUser), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var deals []models.Deal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deals))
	assert.Equal(t, int64(1), deals[0].ID)
}

func TestGetAllDeals_RequiresToken(t *testing.T) {
	w := do(setupRouter(&mockDealService{}), http.MethodGet, "/deals/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAllDeals_Forbidden(t *testing.T) {
	w := do(setupRouter(&mockDealService{}), http.MethodGet, "/deals/admin/all", token(t, auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminAllDeals(t *testing.T) {
	svc := &mockDealService{listFn: func(context.Context) ([]models.Deal, error) {
		return []models.Deal{sampleDeal(1), sampleDeal(2)}, nil
	}}

	w := do(setupRouter(svc), http.MethodGet, "/deals/admin/all", token(t, auth.RoleAdmin), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var deals []models.Deal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deals))
	assert.Len(t, deals, 2)
}

func TestGetDealsByCategory(t *testing.T) {
	var got string
	svc := &mockDealService{categoryFn: func(_ context.Context, c string) ([]models.Deal, error) {
		got = c
		return []models.Deal{sampleDeal(1)}, nil
	}}

	w := do(setupRouter(svc), http.MethodGet, "/deals/category/Electronics", token(t, auth.RoleUser), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Electronics", got)
	assert.Contains(t, w.Body.String(), `"category":"Electronics"`)
}

func TestGetActiveDeals(t *testing.T) {
	svc := &mockDealService{activeFn: func(context.Context) ([]models.Deal, error) {
		return []models.Deal{sampleDeal(1)}, nil
	}}

	w := do(setupRouter(svc), http.MethodGet, "/deals/active", token(t, auth.RoleUser), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)
}

func TestGetDealByID(t *testing.T) {
	svc := &mockDealService{getFn: func(_ context.Context, id int64) (*models.Deal, error) {
		d := sampleDeal(id)
		return &d, nil
	}}

	w := do(setupRouter(svc), http.MethodGet, "/deals/1", token(t, auth.RoleUser), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":1`)
}

func TestGetDealByID_NotFound(t *testing.T) {
	svc := &mockDealService{getFn: func(context.Context, int64) (*models.Deal, error) {
		return nil, apperrors.NotFound("Deal not found with id: 1")
	}}

	w := do(setupRouter(svc), http.MethodGet, "/deals/1", token(t, auth.RoleUser), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"NOT_FOUND","message":"Deal not found with id: 1"}`, w.Body.String())
}

func TestGetDealByID_InvalidID(t *testing.T) {
	w := do(setupRouter(&mockDealService{}), http.MethodGet, "/deals/abc", token(t, auth.RoleUser), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDeal(t *testing.T) {
	svc := &mockDealService{createFn: func(_ context.Context, req *models.DealRequest) (*models.Deal, error) {
		d := sampleDeal(1)
		req.Apply(&d)
		return &d, nil
	}}
	body := []byte(`{"title":"Deal 1","description":"Description 1","discount":10.0,"category":"Electronics","expiryDate":"2030-01-01T00:00:00Z","active":true,"price":1000.0}`)

	w := do(setupRouter(svc), http.MethodPost, "/deals", token(t, auth.RoleAdmin), body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Deal 1"`)
}

func TestCreateDeal_Validation(t *testing.T) {
	w := do(setupRouter(&mockDealService{}), http.MethodPost, "/deals", token(t, auth.RoleAdmin), []byte(`{"discount":150}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDeal(t *testing.T) {
	svc := &mockDealService{updateFn: func(_ context.Context, id int64, req *models.DealRequest) (*models.Deal, error) {
		d := sampleDeal(id)
		req.Apply(&d)
		return &d, nil
	}}
	body := []byte(`{"title":"Updated Deal","category":"Electronics","expiryDate":"2030-01-01T00:00:00Z","price":1000.0}`)

	w := do(setupRouter(svc), http.MethodPut, "/deals/1", token(t, auth.RoleAdmin), body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Updated Deal"`)
}

func TestDeleteDeal(t *testing.T) {
	var deleted int64
	svc := &mockDealService{deleteFn: func(_ context.Context, id int64) error {
		deleted = id
		return nil
	}}

	w := do(setupRouter(svc), http.MethodDelete, "/deals/1", token(t, auth.RoleAdmin), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), deleted)
}
