package service

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/DropDNA/internal/config"
	"github.com/himanishpuri/DropDNA/pkg/dropdna"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/provider"
	"github.com/himanishpuri/DropDNA/pkg/logger"
)

// Overrides are per-invocation settings that take precedence over the file.
type Overrides struct {
	CachePath   string // Replaces cache.path when set
	AnalysisDir string // Serve analysis from disk instead of the HTTP API
}

// NewLogger builds the process logger described by cfg.Logging.
func NewLogger(cfg *config.Config) *logger.Logger {
	lc := logger.DefaultConfig()
	if level, ok := logger.ParseLevel(cfg.Logging.Level); ok {
		lc.Level = level
	}
	lc.Format = cfg.Logging.Format
	return logger.New(lc)
}

// New wires a drop detection service from configuration.
func New(cfg *config.Config, ov Overrides, log *logger.Logger) (dropdna.Service, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	prov, err := newProvider(cfg, ov)
	if err != nil {
		return nil, err
	}
	store, err := newStorage(cfg, ov)
	if err != nil {
		return nil, err
	}

	log.Debugf("Cache backend %s at %q, retention %v", cfg.Cache.Backend, cachePath(cfg, ov), cfg.Retention())

	return dropdna.NewService(
		dropdna.WithProvider(prov),
		dropdna.WithStorage(store),
		dropdna.WithRetention(cfg.Retention()),
		dropdna.WithFetchTimeout(cfg.ProviderTimeout()),
		dropdna.WithDefaultParams(cfg.Params()),
		dropdna.WithLogger(log.Component("dropdna")),
	)
}

func newProvider(cfg *config.Config, ov Overrides) (dropdna.AnalysisProvider, error) {
	dir := strings.TrimSpace(ov.AnalysisDir)
	if dir == "" {
		dir = cfg.Provider.AnalysisDir
	}
	if dir != "" {
		return provider.NewDir(dir)
	}

	client, err := provider.NewHTTPClient(cfg.Provider.BaseURL, cfg.Provider.Token,
		provider.WithTimeout(cfg.ProviderTimeout()))
	if err != nil {
		return nil, fmt.Errorf("create analysis client: %w", err)
	}
	return client, nil
}

func newStorage(cfg *config.Config, ov Overrides) (dropdna.CacheStorage, error) {
	path := cachePath(cfg, ov)
	switch cfg.Cache.Backend {
	case config.BackendJSON:
		return dropdna.NewJSONStorage(path)
	case config.BackendMemory:
		return dropdna.NewJSONStorage("")
	default:
		return dropdna.NewSQLiteStorage(path)
	}
}

func cachePath(cfg *config.Config, ov Overrides) string {
	if p := strings.TrimSpace(ov.CachePath); p != "" {
		return p
	}
	return cfg.Cache.Path
}
