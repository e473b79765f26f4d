package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/DropDNA/pkg/dropdna"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
	"github.com/himanishpuri/DropDNA/pkg/logger"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

type stubProvider struct {
	calls atomic.Int32
}

func (p *stubProvider) GetAnalysis(_ context.Context, trackID string) (*analysis.FeatureSet, error) {
	p.calls.Add(1)
	if trackID != "goodtrack" {
		return nil, errors.New("401 unauthorized")
	}
	return &analysis.FeatureSet{
		Sections: []analysis.Section{
			{StartSec: 0, LoudnessDb: -20, TempoConfidence: 0.5, Valid: true},
			{StartSec: 60, LoudnessDb: -8, TempoConfidence: 0.8, Valid: true},
		},
		Segments: []analysis.Segment{
			{StartSec: 10, LoudnessMaxDb: -15, Valid: true},
		},
		Bars: []analysis.Bar{{StartSec: 60, Confidence: 0.9, Valid: true}},
	}, nil
}

func setupTestServer(t *testing.T, origins ...string) (http.Handler, *stubProvider) {
	t.Helper()

	store, err := dropdna.NewJSONStorage("")
	require.NoError(t, err)
	p := &stubProvider{}
	svc, err := dropdna.NewService(
		dropdna.WithProvider(p),
		dropdna.WithStorage(store),
		dropdna.WithLogger(logger.NewNop()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	s := NewServer(svc, &ServerConfig{
		Addr:           "127.0.0.1:0",
		CacheBackend:   "memory",
		DefaultParams:  models.DefaultParams(),
		AllowedOrigins: origins,
	}, logger.NewNop())
	return s.setupRoutes(), p
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDetectEndpoint(t *testing.T) {
	h, p := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/drops/goodtrack?duration_ms=200000&preview_length_ms=15000")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DropResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "goodtrack", resp.TrackID)
	assert.Equal(t, models.MethodSections, resp.Method)
	assert.Equal(t, 60000, resp.DropStartMs)
	assert.Equal(t, 15000, resp.PreviewLengthMs)
	assert.Equal(t, PlaybackDTO{StartMs: 60000, StopMs: 75000}, resp.Playback)

	// Second call is served from the cache.
	rec = do(t, h, http.MethodGet, "/api/drops/goodtrack?duration_ms=200000&preview_length_ms=15000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestDetectEndpointAcceptsURI(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/drops/spotify:track:goodtrack?duration_ms=200000")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"track_id":"goodtrack"`)
}

func TestDetectEndpointProviderFailure(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/drops/badtrack?duration_ms=100000")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DropResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.MethodErrorFallback, resp.Method)
	assert.Equal(t, 20000, resp.DropStartMs)
	assert.Equal(t, 0.3, resp.Confidence)
}

func TestDetectEndpointValidation(t *testing.T) {
	h, _ := setupTestServer(t)

	for _, target := range []string{
		"/api/drops/goodtrack",
		"/api/drops/goodtrack?duration_ms=abc",
		"/api/drops/goodtrack?duration_ms=-1",
		"/api/drops/goodtrack?duration_ms=999999999999",
		"/api/drops/goodtrack?duration_ms=1000&loudness_offset_db=loud",
		"/api/drops/goodtrack?duration_ms=1000&loudness_offset_db=NaN",
		"/api/drops/goodtrack?duration_ms=1000&preview_length_ms=0",
		"/api/drops/bad!id?duration_ms=1000",
	} {
		rec := do(t, h, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Message, target)
		assert.NotEmpty(t, resp.RequestID, target)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	h, p := setupTestServer(t)

	do(t, h, http.MethodGet, "/api/drops/goodtrack?duration_ms=200000")
	rec := do(t, h, http.MethodPost, "/api/drops/goodtrack/refresh?duration_ms=200000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), p.calls.Load())

	rec = do(t, h, http.MethodGet, "/api/drops/goodtrack/refresh?duration_ms=200000")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestCacheEndpoints(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[],"count":0}`, rec.Body.String())

	do(t, h, http.MethodGet, "/api/drops/goodtrack?duration_ms=200000")
	do(t, h, http.MethodGet, "/api/drops/goodtrack?duration_ms=200000&loudness_offset_db=5")
	do(t, h, http.MethodGet, "/api/drops/badtrack?duration_ms=200000")

	rec = do(t, h, http.MethodGet, "/api/cache")
	var list ListCacheResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)

	rec = do(t, h, http.MethodGet, "/api/health/metrics")
	var metrics MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 3, metrics.CachedResults)
	assert.Equal(t, "memory", metrics.CacheBackend)
	assert.Equal(t, 1, metrics.Methods[string(models.MethodErrorFallback)])

	rec = do(t, h, http.MethodDelete, "/api/cache/goodtrack")
	require.Equal(t, http.StatusOK, rec.Code)
	var del DeleteCacheResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &del))
	assert.Equal(t, 2, del.Removed)

	rec = do(t, h, http.MethodDelete, "/api/cache/goodtrack")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &del))
	assert.Equal(t, 1, del.Removed)
}

func TestRootAndUnknownPaths(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DropDNA API")

	rec = do(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h, _ := setupTestServer(t, "http://allowed.example")

	req := httptest.NewRequest(http.MethodOptions, "/api/cache", nil)
	req.Header.Set("Origin", "http://allowed.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	open, _ := setupTestServer(t)
	rec = do(t, open, http.MethodGet, "/health")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagation(t *testing.T) {
	h, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseOrigins(" * "))
	assert.Equal(t, []string{"http://a", "http://b"}, parseOrigins("http://a, ,http://b"))
}
