package dropdna

import (
	"time"

	"github.com/himanishpuri/DropDNA/pkg/models"
)

// DefaultRetention is how long a cached result stays usable.
const DefaultRetention = 7 * 24 * time.Hour

// DefaultFetchTimeout bounds one analysis fetch.
const DefaultFetchTimeout = 30 * time.Second

type Config struct {
	CachePath     string
	Retention     time.Duration
	FetchTimeout  time.Duration
	DefaultParams models.DetectionParams
	Provider      AnalysisProvider
	Storage       CacheStorage
	Logger        Logger
	Clock         func() time.Time
}

type Option func(*Config)

func WithCachePath(path string) Option {
	return func(c *Config) {
		c.CachePath = path
	}
}

func WithRetention(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Retention = d
		}
	}
}

// WithFetchTimeout bounds the analysis fetch of one detection. Detections
// run detached from the caller's context, so this is the only deadline the
// provider sees.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.FetchTimeout = d
		}
	}
}

// WithDefaultParams sets the parameters substituted for invalid ones.
func WithDefaultParams(p models.DetectionParams) Option {
	return func(c *Config) {
		c.DefaultParams = p
	}
}

func WithProvider(p AnalysisProvider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

func WithStorage(s CacheStorage) Option {
	return func(c *Config) {
		c.Storage = s
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.Clock = now
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		CachePath:     "dropdna.sqlite3",
		Retention:     DefaultRetention,
		FetchTimeout:  DefaultFetchTimeout,
		DefaultParams: models.DefaultParams(),
		Clock:         time.Now,
	}
}
