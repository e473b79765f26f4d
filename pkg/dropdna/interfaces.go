package dropdna

import (
	"context"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

// Service detects drops and manages the results it has cached.
type Service interface {
	// DetectDrop always returns a usable result. Failures degrade to the
	// error fallback and are logged, never returned.
	DetectDrop(ctx context.Context, track models.TrackRef, params models.DetectionParams) models.DropResult
	// Refresh recomputes the result, overwriting any cached entry.
	Refresh(ctx context.Context, track models.TrackRef, params models.DetectionParams) models.DropResult
	CachedResults() ([]CachedResult, error)
	Forget(trackID string) (int, error)
	ClearCache() (int, error)
	Close() error
}

// AnalysisProvider fetches the feature set of a track.
type AnalysisProvider interface {
	GetAnalysis(ctx context.Context, trackID string) (*analysis.FeatureSet, error)
}

// CacheStorage is the durable store behind the result cache.
type CacheStorage interface {
	Get(key string) (models.CacheEntry, bool, error)
	Put(entry models.CacheEntry) error
	List() ([]models.CacheEntry, error)
	DeleteTrack(trackID string) (int, error)
	Clear() (int, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
