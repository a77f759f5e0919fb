package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/contentfactory/internal/api"
	"github.com/timmy/contentfactory/internal/api/middleware"
	"github.com/timmy/contentfactory/internal/app"
	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/testutil"
)

type server struct {
	router *gin.Engine
	app    *app.App
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.StoreDriverGorm},
		Production: config.ProductionConfig{
			ChunkSize:           50,
			MaxChunkSize:        100,
			DefaultBackdateDays: 365,
			TestBatchSize:       5,
			MaxTestBatchSize:    50,
			MaxArticles:         10000,
		},
		Velocity: config.VelocityConfig{Mode: "STEADY", JitterMinutes: 15, BusinessHoursOnly: true},
		Sitemap:  config.SitemapConfig{DripRate: 5, HubDripLimit: 10},
		Quality:  config.QualityConfig{NgramSize: 7, Threshold: 3, MaxScanArticles: 500},
	}
	a, err := app.NewWithStore(ctx, cfg, testutil.NewStore(t))
	require.NoError(t, err)

	require.NoError(t, a.Repos.Sites.Create(ctx, &domain.Site{ID: "site-1", Name: "Roof Pros", URL: "https://roof.example.com"}))
	require.NoError(t, a.Repos.Campaigns.Create(ctx, &domain.Campaign{
		ID:     "camp-1",
		SiteID: "site-1",
		Name:   "Roofing",
		Recipe: domain.StringArray{"intro", "conclusion"},
	}))
	for _, m := range []domain.ContentModule{
		{ID: "mod-intro", ModuleType: "intro", Content: "<p>{Fast|Reliable} roof repair in {City}, {State}.</p>"},
		{ID: "mod-conclusion", ModuleType: "conclusion", Content: "<p>Call today, {Current_Year}.</p>"},
	} {
		m.SiteID = "site-1"
		m.IsActive = true
		require.NoError(t, a.Repos.Modules.Create(ctx, &m))
	}
	for i := 0; i < 60; i++ {
		require.NoError(t, a.Repos.Locations.Create(ctx, &domain.Location{
			ID:    fmt.Sprintf("loc-%03d", i),
			City:  fmt.Sprintf("City%d", i),
			State: "Texas",
		}))
	}

	router := api.SetupRouter(a.Services(), "test", middleware.CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}})
	return &server{router: router, app: a}
}

func (s *server) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w, body := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDPropagates(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/process-queue", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProductionFlow(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/schedule-production", map[string]any{
		"campaign_id":    "camp-1",
		"total_articles": 40,
		"date_range":     map[string]string{"start": "2024-01-01", "end": "2024-01-11"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	queueID, _ := body["queue_id"].(string)
	require.NotEmpty(t, queueID)
	total := int(body["total_scheduled"].(float64))
	assert.InDelta(t, 40, total, 10)
	assert.Len(t, body["sample_distribution"], 10)

	w, body = s.do(t, http.MethodPost, "/api/v1/process-queue", map[string]any{"queue_id": queueID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])

	w, body = s.do(t, http.MethodPost, "/api/v1/generate-test-batch", map[string]any{"campaign_id": "camp-1", "batch_size": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "test_batch", body["status"])
	assert.Len(t, body["articles"], 2)

	w, body = s.do(t, http.MethodPost, "/api/v1/approve-queue", map[string]any{"queue_id": queueID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", body["status"])

	w, body = s.do(t, http.MethodPost, "/api/v1/process-queue", map[string]any{"queue_id": queueID, "batch_limit": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "done", body["status"])
	assert.Equal(t, float64(total), body["completed"])
	assert.Equal(t, float64(total), body["generated"])
	assert.Equal(t, 100.0, body["percent"])

	w, body = s.do(t, http.MethodGet, "/api/v1/queues/"+queueID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", body["status"])

	w, body = s.do(t, http.MethodPost, "/api/v1/scan-duplicates", map[string]any{"queue_id": queueID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(total), body["scanned"])

	w, body = s.do(t, http.MethodGet, "/api/v1/sitemap-drip?site_id=site-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5.0, body["indexed"])

	w, body = s.do(t, http.MethodGet, "/api/v1/nearby-articles?site_id=site-1&state=Texas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, body["count"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/sites/site-1/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<loc>https://roof.example.com/")
}

func TestAssembleArticle(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/assemble-article", map[string]any{
		"campaign_id":  "camp-1",
		"location":     map[string]string{"city": "Austin", "state": "Texas"},
		"publish_date": "2023-03-04T10:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	article := body["article"].(map[string]any)
	assert.Equal(t, "ghost", article["sitemap_status"])
	assert.Equal(t, "Austin Roofing", article["headline"])
	assert.Contains(t, article["full_html_body"], "Call today, 2023.")

	w, _ = s.do(t, http.MethodPost, "/api/v1/assemble-article", map[string]any{
		"campaign_id":  "camp-1",
		"location":     map[string]string{"city": "Austin"},
		"publish_date": "yesterday",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing campaign id", http.MethodPost, "/api/v1/schedule-production", map[string]any{"total_articles": 5}, http.StatusBadRequest},
		{"unknown campaign", http.MethodPost, "/api/v1/schedule-production", map[string]any{"campaign_id": "nope", "total_articles": 5}, http.StatusNotFound},
		{"bad date range", http.MethodPost, "/api/v1/schedule-production", map[string]any{"campaign_id": "camp-1", "total_articles": 5, "date_range": map[string]string{"start": "2024-02-01", "end": "2024-01-01"}}, http.StatusBadRequest},
		{"unknown queue", http.MethodGet, "/api/v1/queues/nope", nil, http.StatusNotFound},
		{"approve unknown queue", http.MethodPost, "/api/v1/approve-queue", map[string]any{"queue_id": "nope"}, http.StatusNotFound},
		{"test batch without selector", http.MethodPost, "/api/v1/generate-test-batch", map[string]any{}, http.StatusBadRequest},
		{"scan without selector", http.MethodPost, "/api/v1/scan-duplicates", map[string]any{}, http.StatusBadRequest},
		{"drip without site", http.MethodGet, "/api/v1/sitemap-drip", nil, http.StatusBadRequest},
		{"drip unknown site", http.MethodGet, "/api/v1/sitemap-drip?site_id=nope", nil, http.StatusNotFound},
		{"nearby bad limit", http.MethodGet, "/api/v1/nearby-articles?site_id=site-1&limit=x", nil, http.StatusBadRequest},
		{"sitemap unknown site", http.MethodGet, "/api/v1/sites/nope/sitemap.xml", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
