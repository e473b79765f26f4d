package dropdna

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/detect"
	"github.com/himanishpuri/DropDNA/pkg/logger"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

var errNoProvider = errors.New("no analysis provider configured")

// dropService is the default implementation of the Service interface.
type dropService struct {
	provider AnalysisProvider
	storage  CacheStorage
	cache    *ResultCache
	log      Logger
	config   *Config
	flights  singleflight.Group
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Component("dropdna")
	}

	var stor CacheStorage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = defaultStorage(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &dropService{
		provider: cfg.Provider,
		storage:  stor,
		cache:    NewResultCache(stor, cfg.Retention, cfg.Clock, cfg.Logger),
		log:      cfg.Logger,
		config:   cfg,
	}, nil
}

// DetectDrop returns the cached result for the track and parameters when a
// fresh one exists, and computes it otherwise.
func (s *dropService) DetectDrop(ctx context.Context, track models.TrackRef, params models.DetectionParams) models.DropResult {
	track, params = s.normalize(track, params)
	if track.ID == "" {
		s.log.Warnf("detect called without a track id")
		return s.result(track, params, detect.ErrorFallback(track.DurationMs))
	}

	key := CacheKey(track.ID, params)
	if r, ok := s.cache.Get(key); ok {
		// The same track may be reported with a shorter duration than the
		// one the entry was computed for.
		if r.DropStartMs <= track.DurationMs {
			s.log.Debugf("Using cached drop for %s: %dms (%s)", track.ID, r.DropStartMs, r.Method)
			return r
		}
		s.log.Debugf("Cached drop for %s at %dms is past the %dms duration, recomputing",
			track.ID, r.DropStartMs, track.DurationMs)
	}
	return s.compute(ctx, key, track, params)
}

// Refresh skips the cache lookup and overwrites the stored entry.
func (s *dropService) Refresh(ctx context.Context, track models.TrackRef, params models.DetectionParams) models.DropResult {
	track, params = s.normalize(track, params)
	if track.ID == "" {
		s.log.Warnf("refresh called without a track id")
		return s.result(track, params, detect.ErrorFallback(track.DurationMs))
	}
	return s.compute(ctx, CacheKey(track.ID, params), track, params)
}

// compute runs one detection per key at a time; concurrent callers for the
// same key share the result. The detection ignores the callers'
// cancellation and deadlines and is bounded by FetchTimeout instead.
func (s *dropService) compute(ctx context.Context, key string, track models.TrackRef, params models.DetectionParams) models.DropResult {
	v, _, _ := s.flights.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.FetchTimeout)
		defer cancel()
		return s.detect(fctx, key, track, params), nil
	})
	return v.(models.DropResult)
}

func (s *dropService) detect(ctx context.Context, key string, track models.TrackRef, params models.DetectionParams) models.DropResult {
	fs, err := s.fetch(ctx, track.ID)

	var out detect.Outcome
	if err != nil {
		s.log.Warnf("Analysis fetch failed for %s, using error fallback: %v", track.ID, err)
		out = detect.ErrorFallback(track.DurationMs)
	} else {
		s.log.Debugf("Analysis for %s: %d sections, %d segments, %d bars",
			track.ID, len(fs.Sections), len(fs.Segments), len(fs.Bars))
		out = detect.Run(fs, track.DurationMs, params.LoudnessOffsetDb)
		s.log.Debugf("Threshold %.2f dB, raw score %.3f", out.Threshold, out.RawScore)
	}

	result := s.result(track, params, out)
	s.cache.Put(models.CacheEntry{
		Key:              key,
		LoudnessOffsetDb: params.LoudnessOffsetDb,
		Result:           result,
	})

	s.log.Infof("Drop for %s at %dms via %s (confidence %.2f)",
		track.ID, result.DropStartMs, result.Method, result.Confidence)
	return result
}

// fetch never returns a nil feature set without an error. A panicking
// provider is reported as a failed fetch.
func (s *dropService) fetch(ctx context.Context, trackID string) (fs *analysis.FeatureSet, err error) {
	if s.provider == nil {
		return nil, errNoProvider
	}

	defer func() {
		if r := recover(); r != nil {
			fs, err = nil, fmt.Errorf("analysis provider panicked: %v", r)
		}
	}()

	fs, err = s.provider.GetAnalysis(ctx, trackID)
	if err == nil && fs == nil {
		fs = &analysis.FeatureSet{}
	}
	return fs, err
}

func (s *dropService) result(track models.TrackRef, params models.DetectionParams, out detect.Outcome) models.DropResult {
	return models.DropResult{
		TrackID:           track.ID,
		DropStartMs:       out.StartMs,
		Confidence:        out.Confidence,
		Method:            out.Method,
		PreviewLengthMs:   params.PreviewLengthMs,
		ComputedAtEpochMs: s.config.Clock().UnixMilli(),
	}
}

// normalize replaces unusable inputs with defaults.
func (s *dropService) normalize(track models.TrackRef, params models.DetectionParams) (models.TrackRef, models.DetectionParams) {
	track.ID = strings.TrimSpace(track.ID)
	if track.DurationMs < 0 {
		track.DurationMs = 0
	}

	return track, params.Sanitize(s.config.DefaultParams)
}

func (s *dropService) CachedResults() ([]CachedResult, error) {
	entries, err := s.cache.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	return entries, nil
}

func (s *dropService) Forget(trackID string) (int, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return 0, errors.New("track id must not be empty")
	}
	n, err := s.cache.Forget(trackID)
	if err != nil {
		return 0, fmt.Errorf("failed to forget %s: %w", trackID, err)
	}
	s.log.Infof("Removed %d cached results for %s", n, trackID)
	return n, nil
}

func (s *dropService) ClearCache() (int, error) {
	n, err := s.cache.Clear()
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	s.log.Infof("Cleared %d cached results", n)
	return n, nil
}

func (s *dropService) Close() error {
	return s.storage.Close()
}
