package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
	"github.com/avishkin/pharmacy/internal/service"
)

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
	A  *AuthHandler
	M  *MedicationHandler
	O  *OrderHandler

	Catalog   *service.Catalog
	Inventory *service.Inventory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Medication{}, &models.Order{}, &models.User{}))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := service.NewCatalog(db, log)
	ledger := service.NewLedger(db, log)
	inventory := service.NewInventory(db, catalog, ledger, log)

	secret := []byte("test-secret")
	return &testEnv{
		E:         echo.New(),
		DB:        db,
		A:         &AuthHandler{DB: db, JWTSecret: secret},
		M:         &MedicationHandler{Catalog: catalog, Inventory: inventory},
		O:         &OrderHandler{Inventory: inventory},
		Catalog:   catalog,
		Inventory: inventory,
	}
}

func (env *testEnv) doJSONRequest(method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", map[string]any{
		"username": "alice",
		"password": "secret",
		"role":     "buyer",
	})
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]any{
		"username": "alice",
		"password": "secret",
	})
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.Equal(t, "buyer", resp["role"])
}

func TestRegister_BadRole(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", map[string]any{
		"username": "bob",
		"password": "secret",
		"role":     "admin",
	})
	err := env.A.Register(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", map[string]any{
		"username": "alice", "password": "secret", "role": "buyer",
	})
	require.NoError(t, env.A.Register(c))

	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]any{
		"username": "alice", "password": "wrong",
	})
	err := env.A.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestCreateMedication(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/medications", map[string]any{
		"name": "Paracetamol", "code": "M101", "price": 25.0, "stock": 100,
	})
	require.NoError(t, env.M.CreateMedication(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var med models.Medication
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &med))
	require.Equal(t, "M101", med.Code)
	require.Nil(t, med.Rating)

	// duplicate code is a conflict
	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/medications", map[string]any{
		"name": "Other", "code": "M101", "price": 1.0, "stock": 1,
	})
	require.NoError(t, env.M.CreateMedication(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlaceAndCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"code": "M101", "quantity": 10, "address": "123 St",
	})
	require.NoError(t, env.O.PlaceOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 250.0, resp.Order.TotalCost)

	var med models.Medication
	require.NoError(t, env.DB.Where("code = ?", "M101").First(&med).Error)
	require.EqualValues(t, 90, med.Stock)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/orders/1/cancel", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.O.CancelOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.DB.Where("code = ?", "M101").First(&med).Error)
	require.EqualValues(t, 100, med.Stock)

	// second cancel is rejected
	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/orders/1/cancel", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.O.CancelOrder(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"code": "M101", "quantity": 500, "address": "123 St",
	})
	require.NoError(t, env.O.PlaceOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStockHandler(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/medications/M101/stock", map[string]any{
		"delta": -20,
	})
	c.SetParamNames("code")
	c.SetParamValues("M101")
	require.NoError(t, env.M.UpdateStock(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var med models.Medication
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &med))
	require.EqualValues(t, 80, med.Stock)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/medications/M999/stock", map[string]any{
		"delta": 1,
	})
	c.SetParamNames("code")
	c.SetParamValues("M999")
	require.NoError(t, env.M.UpdateStock(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateMedicationHandler(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/medications/M101/rating", map[string]any{
		"rating": 6,
	})
	c.SetParamNames("code")
	c.SetParamValues("M101")
	require.NoError(t, env.M.RateMedication(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/medications/M101/rating", map[string]any{
		"rating": 4,
	})
	c.SetParamNames("code")
	c.SetParamValues("M101")
	require.NoError(t, env.M.RateMedication(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func seed(t *testing.T, env *testEnv) {
	t.Helper()
	require.NoError(t, env.DB.Create(&models.Medication{
		Code: "M101", Name: "Paracetamol", Price: 25.0, Stock: 100,
	}).Error)
}
