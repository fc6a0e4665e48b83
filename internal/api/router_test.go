package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/memstore"
	"meal-planner/internal/infrastructure/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-test-secret-with-enough-bytes"

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Version: "test"},
		Server:  config.ServerConfig{MaxBodySize: 1 << 20, RequestTimeout: 5 * time.Second, AllowOrigins: []string{"*"}},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		Auth:    config.AuthConfig{JWTSecret: secret, Issuer: "meal-planner"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		RateLimit: config.RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
		},
		DedupWindow: time.Minute,
	}
}

func TestSetupRouter(t *testing.T) {
	store := memstore.New()
	store.AddHousehold("h1", "Home")
	require.NoError(t, store.AddMember("h1", "alice"))
	require.NoError(t, store.AddMeal(shopping.Meal{
		HouseholdID: "h1",
		Date:        time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		Notes:       "2 eggs\n1 l milk",
	}))

	m := metrics.New()
	svc := shopping.NewService(store, store, store, store, store, nil, shopping.Options{Recorder: m})
	router, err := SetupRouter(testConfig(), Dependencies{
		Service: svc,
		Checks:  map[string]health.Pinger{"storage": store},
		Metrics: m,
	})
	require.NoError(t, err)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodGet, "/ready", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodGet, "/live", nil)).Code)

	// API 需要權杖
	rec := serve(httptest.NewRequest(http.MethodGet, "/api/v1/households/h1/grocery-lists", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "meal-planner",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	post := func(path, body, idempotencyKey string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		if idempotencyKey != "" {
			req.Header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
		}
		return serve(req)
	}
	listsPath := "/api/v1/households/h1/grocery-lists"
	rangeBody := `{"start_date":"2026-05-01","end_date":"2026-05-07"}`

	rec = post(listsPath, rangeBody, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	var first shopping.GroceryList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	// 每次產生都是新清單
	rec = post(listsPath, rangeBody, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var second shopping.GroceryList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEqual(t, first.ID, second.ID)

	// 相同 Idempotency-Key 重送會被擋下
	assert.Equal(t, http.StatusCreated, post(listsPath, rangeBody, "gen-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(listsPath, rangeBody, "gen-1").Code)

	// 連續切換兩次回到未購買
	togglePath := listsPath + "/" + first.ID + "/items/toggle"
	toggleBody := `{"item_id":"` + grocery.CanonicalKey("eggs", "") + `"}`
	rec = post(togglePath, toggleBody, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = post(togglePath, toggleBody, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item grocery.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.False(t, item.Purchased)
	assert.Nil(t, item.PurchasedBy)

	// 解析可重複呼叫
	assert.Equal(t, http.StatusOK, post("/api/v1/grocery/parse", `{"text":"2 eggs"}`, "").Code)
	assert.Equal(t, http.StatusOK, post("/api/v1/grocery/parse", `{"text":"2 eggs"}`, "").Code)

	rec = serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "meal_planner_grocery_lists_generated_total 3"))
	assert.True(t, strings.Contains(body, `route="/api/v1/households/:householdID/grocery-lists"`))
}

func TestSetupRouter_RequiresService(t *testing.T) {
	_, err := SetupRouter(testConfig(), Dependencies{})
	assert.Error(t, err)
}
