package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/himanishpuri/DropDNA/pkg/dropdna"
	"github.com/himanishpuri/DropDNA/pkg/models"
	"github.com/himanishpuri/DropDNA/pkg/utils"
)

// detectTimeout bounds one detection including the analysis fetch.
const detectTimeout = 30 * time.Second

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service dropdna.Service
	config  *ServerConfig
	log     dropdna.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr           string
	CacheBackend   string
	CachePath      string
	DefaultParams  models.DetectionParams
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service dropdna.Service, config *ServerConfig, log dropdna.Logger) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     log,
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Code:      statusCode,
		RequestID: requestIDFrom(r.Context()),
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, r, http.StatusNotFound, "no such endpoint")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "DropDNA API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":      "GET /health",
			"metrics":     "GET /api/health/metrics",
			"detect":      "GET /api/drops/{trackId}?duration_ms=&loudness_offset_db=&preview_length_ms=",
			"refresh":     "POST /api/drops/{trackId}/refresh?duration_ms=",
			"listCache":   "GET /api/cache",
			"forgetTrack": "DELETE /api/cache/{trackId}",
			"clearCache":  "DELETE /api/cache",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.CachedResults()
	if err != nil {
		s.log.Errorf("Failed to read cache for metrics: %v", err)
		s.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	expired := lo.CountBy(entries, func(e dropdna.CachedResult) bool {
		return e.Expired
	})
	methods := lo.CountValuesBy(entries, func(e dropdna.CachedResult) string {
		return string(e.Result.Method)
	})

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:        "healthy",
		CacheBackend:  s.config.CacheBackend,
		CachePath:     s.config.CachePath,
		CachedResults: len(entries),
		ExpiredCount:  expired,
		Methods:       methods,
	})
}

// handleDetect handles GET /api/drops/{trackId}
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	s.serveDrop(w, r, s.service.DetectDrop)
}

// handleRefresh handles POST /api/drops/{trackId}/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.serveDrop(w, r, s.service.Refresh)
}

type detectFunc func(context.Context, models.TrackRef, models.DetectionParams) models.DropResult

func (s *Server) serveDrop(w http.ResponseWriter, r *http.Request, detect detectFunc) {
	trackID, err := utils.ExtractTrackID(r.PathValue("trackId"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q, err := parseDropQuery(r.URL.Query(), s.config.DefaultParams)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), detectTimeout)
	defer cancel()

	result := detect(ctx, models.TrackRef{ID: trackID, DurationMs: q.DurationMs}, q.Params)
	s.respondJSON(w, http.StatusOK, newDropResponse(result))
}

// handleListCache handles GET /api/cache
func (s *Server) handleListCache(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.CachedResults()
	if err != nil {
		s.log.Errorf("Failed to list cache: %v", err)
		s.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve cached results")
		return
	}
	if entries == nil {
		entries = []dropdna.CachedResult{}
	}

	s.respondJSON(w, http.StatusOK, ListCacheResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// handleForgetTrack handles DELETE /api/cache/{trackId}
func (s *Server) handleForgetTrack(w http.ResponseWriter, r *http.Request) {
	trackID, err := utils.ExtractTrackID(r.PathValue("trackId"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.service.Forget(trackID)
	if err != nil {
		s.log.Errorf("Failed to forget %s: %v", trackID, err)
		s.respondError(w, r, http.StatusInternalServerError, "Failed to remove cached results")
		return
	}
	if n == 0 {
		s.respondError(w, r, http.StatusNotFound, "no cached results for "+trackID)
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteCacheResponse{
		Message: "Cached results removed",
		TrackID: trackID,
		Removed: n,
	})
}

// handleClearCache handles DELETE /api/cache
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.ClearCache()
	if err != nil {
		s.log.Errorf("Failed to clear cache: %v", err)
		s.respondError(w, r, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteCacheResponse{
		Message: "Cache cleared",
		Removed: n,
	})
}
