package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flavor-twin/internal/api/handlers/health"
	twinHandler "flavor-twin/internal/api/handlers/twin"
	"flavor-twin/internal/core/cache"
	"flavor-twin/internal/core/catalog"
	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/core/provider"
	twinService "flavor-twin/internal/core/twin"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	stubs  []provider.CandidateStub
	detail provider.RawRecipe
	err    error
}

func (p *stubProvider) SearchByTitle(ctx context.Context, query string) ([]provider.CandidateStub, error) {
	return p.stubs, p.err
}

func (p *stubProvider) GetDetail(ctx context.Context, id string) (provider.RawRecipe, error) {
	return p.detail, p.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	cfg.RateLimit.Enabled = false
	return cfg
}

func testService(t *testing.T, p provider.RecipeProvider) *twinService.Service {
	t.Helper()
	cat, err := catalog.New("test", []flavor.Dish{
		{Name: "Butter Chicken", Ingredients: []string{"chicken", "butter", "tomato", "cream", "garam masala"}, Cuisine: "Indian"},
		{Name: "Thai Red Curry", Ingredients: []string{"coconut milk", "chili", "lemongrass", "chicken"}, Cuisine: "Thai"},
		{Name: "Palak Paneer", Ingredients: []string{"spinach", "paneer", "cream"}, Cuisine: "Indian"},
		{Name: "Ceviche", Ingredients: []string{"white fish", "lime juice", "chili", "cilantro"}, Cuisine: "Peruvian"},
		{Name: "Gravlax", Ingredients: []string{"salmon", "dill", "salt", "sugar"}, Cuisine: "Swedish"},
	})
	require.NoError(t, err)
	return twinService.NewService(flavor.NewEngine(), cat, p, cache.Noop{}, config.MatchConfig{DefaultK: 3, MaxK: 10})
}

func newTestRouter(t *testing.T, cfg *config.Config, deps Dependencies) *gin.Engine {
	t.Helper()
	router, err := SetupRouter(cfg, deps)
	require.NoError(t, err)
	return router
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSetupRouter_RequiresService(t *testing.T) {
	_, err := SetupRouter(testConfig(t), Dependencies{})
	assert.Error(t, err)
}

func TestFindTwins_Catalog(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	w := doJSON(router, http.MethodPost, "/api/v1/twins", gin.H{"dish": "butter chicken"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp twinHandler.TwinsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "Butter Chicken", resp.Source.Dish.Name)
	assert.Equal(t, twinService.OriginCatalog, resp.Source.Origin)
	require.Len(t, resp.Twins, 3)
	assert.Equal(t, "Thai Red Curry", resp.Twins[0].Name)
	for _, tw := range resp.Twins {
		assert.NotEqual(t, "Indian", tw.Cuisine)
		assert.LessOrEqual(t, len(tw.SharedTraits), 3)
		assert.NotEmpty(t, tw.SharedTraits)
	}
	assert.GreaterOrEqual(t, resp.Twins[0].Similarity, resp.Twins[1].Similarity)
}

func TestFindTwins_K(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	w := doJSON(router, http.MethodPost, "/api/v1/twins", gin.H{"dish": "gravlax", "k": 1})
	require.Equal(t, http.StatusOK, w.Code)

	var resp twinHandler.TwinsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Twins, 1)
}

func TestFindTwins_Provider(t *testing.T) {
	p := &stubProvider{
		stubs: []provider.CandidateStub{{ID: "42", Title: "Pad Kra Pao"}},
		detail: provider.RawRecipe{
			"recipe_title": "Pad Kra Pao",
			"region":       "Thai",
			"ingredients":  []interface{}{"chili", "basil", "garlic", "chicken", "fish sauce"},
		},
	}
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, p)})

	w := doJSON(router, http.MethodPost, "/api/v1/twins", gin.H{"dish": "pad kra pao"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp twinHandler.TwinsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Pad Kra Pao", resp.Source.Dish.Name)
	assert.Equal(t, twinService.OriginProvider, resp.Source.Origin)
	for _, tw := range resp.Twins {
		assert.NotEqual(t, "Thai", tw.Cuisine)
	}
}

func TestFindTwins_Errors(t *testing.T) {
	tests := []struct {
		name     string
		provider provider.RecipeProvider
		body     interface{}
		status   int
		code     string
	}{
		{
			name:   "unresolved without provider",
			body:   gin.H{"dish": "Moussaka"},
			status: http.StatusNotFound,
			code:   common.ErrCodeUnresolvedSource,
		},
		{
			name:     "no search results",
			provider: &stubProvider{},
			body:     gin.H{"dish": "Moussaka"},
			status:   http.StatusNotFound,
			code:     common.ErrCodeUnresolvedSource,
		},
		{
			name:     "provider failure",
			provider: &stubProvider{err: errors.New("connection refused")},
			body:     gin.H{"dish": "Moussaka"},
			status:   http.StatusBadGateway,
			code:     common.ErrCodeProviderError,
		},
		{
			name:   "missing dish",
			body:   gin.H{"k": 2},
			status: http.StatusBadRequest,
			code:   common.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, tt.provider)})

			w := doJSON(router, http.MethodPost, "/api/v1/twins", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestMatch(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	w := doJSON(router, http.MethodPost, "/api/v1/twins/match", gin.H{
		"source": gin.H{
			"name":        "Som Tam",
			"ingredients": []string{"green papaya", "lime", "chili", "fish sauce"},
			"cuisine":     "Thai",
		},
		"k": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp twinHandler.TwinsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, twinService.OriginRequest, resp.Source.Origin)
	require.Len(t, resp.Twins, 2)
	assert.Equal(t, "Ceviche", resp.Twins[0].Name)
}

func TestMatch_InvalidSource(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	w := doJSON(router, http.MethodPost, "/api/v1/twins/match", gin.H{
		"source": gin.H{"name": "Mystery", "cuisine": "Nowhere"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, common.ErrCodeInvalidDish, decodeError(t, w).Code)

	w = doJSON(router, http.MethodPost, "/api/v1/twins/match", gin.H{
		"source": gin.H{"ingredients": []string{"salt"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVector(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	w := doJSON(router, http.MethodPost, "/api/v1/flavor/vector", gin.H{"ingredients": []string{"Chili"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp twinHandler.VectorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 1.0, resp.Raw.Get(flavor.Spicy), 1e-9)
	assert.InDelta(t, 0.8, resp.Raw.Get(flavor.Heat), 1e-9)
	assert.InDelta(t, 100, resp.Display.Get(flavor.Spicy), 1e-9)
	assert.Equal(t, "Spicy", resp.Profile.Dominant)
	assert.Equal(t, flavor.RulesetVersion, resp.Ruleset)

	w = doJSON(router, http.MethodPost, "/api/v1/flavor/vector", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDimensions(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	w := doJSON(router, http.MethodGet, "/api/v1/flavor/dimensions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Dimensions []string `json:"dimensions"`
		Version    string   `json:"ruleset_version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, flavor.DimensionNames(), resp.Dimensions)
	assert.Equal(t, flavor.RulesetVersion, resp.Version)
}

func TestCatalogRoutes(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: testService(t, nil)})

	var list struct {
		Source string        `json:"source"`
		Count  int           `json:"count"`
		Dishes []flavor.Dish `json:"dishes"`
	}

	w := doJSON(router, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, "test", list.Source)
	assert.Equal(t, 5, list.Count)

	w = doJSON(router, http.MethodGet, "/api/v1/catalog?cuisine=indian", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)

	w = doJSON(router, http.MethodGet, "/api/v1/catalog?q=curry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Dishes, 1)
	assert.Equal(t, "Thai Red Curry", list.Dishes[0].Name)

	w = doJSON(router, http.MethodGet, "/api/v1/catalog/ceviche", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail twinHandler.DishDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Ceviche", detail.Dish.Name)
	assert.InDelta(t, 1.0, detail.Raw.Get(flavor.Sour), 1e-9)

	w = doJSON(router, http.MethodGet, "/api/v1/catalog/moussaka", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.ErrCodeNotFound, decodeError(t, w).Code)
}

func TestHealthRoutes(t *testing.T) {
	svc := testService(t, nil)
	router := newTestRouter(t, testConfig(t), Dependencies{Twin: svc, Cache: cache.Noop{}})

	w := doJSON(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var h health.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	require.NotNil(t, h.Catalog)
	assert.Equal(t, 5, h.Catalog.Dishes)
	assert.Equal(t, flavor.RulesetVersion, h.Catalog.RulesetVersion)
	assert.Equal(t, false, h.Cache["enabled"])

	w = doJSON(router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadiness_FailingChecker(t *testing.T) {
	router := newTestRouter(t, testConfig(t), Dependencies{
		Twin: testService(t, nil),
		Checkers: map[string]health.Checker{
			"database": func(ctx context.Context) error { return errors.New("connection refused") },
		},
	})

	w := doJSON(router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestDuplicatePostRejected(t *testing.T) {
	cfg := testConfig(t)
	cfg.DedupWindow = time.Minute
	router := newTestRouter(t, cfg, Dependencies{Twin: testService(t, nil)})

	body := gin.H{"dish": "ceviche"}
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/v1/twins", body).Code)

	w := doJSON(router, http.MethodPost, "/api/v1/twins", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 不同內容不受影響
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/v1/twins", gin.H{"dish": "gravlax"}).Code)
}

func TestRateLimitEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 2
	cfg.RateLimit.Window = time.Hour
	router := newTestRouter(t, cfg, Dependencies{Twin: testService(t, nil)})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/v1/flavor/dimensions", nil).Code)
	}
	w := doJSON(router, http.MethodGet, "/api/v1/flavor/dimensions", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	// 健康檢查不受限流影響
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/live", nil).Code)
}

func TestBodySizeLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.MaxBodyBytes = 64
	router := newTestRouter(t, cfg, Dependencies{Twin: testService(t, nil)})

	big := make([]string, 50)
	for i := range big {
		big[i] = "chili"
	}
	w := doJSON(router, http.MethodPost, "/api/v1/flavor/vector", gin.H{"ingredients": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, common.ErrCodeRequestTooLarge, decodeError(t, w).Code)
}
