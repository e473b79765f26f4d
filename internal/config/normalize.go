package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/himanishpuri/DropDNA/pkg/utils"
)

func (c *Config) normalize() error {
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeProvider(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendSQLite
	}
	if value, ok := os.LookupEnv("DROPDNA_CACHE_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Cache.Path = value
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		switch c.Cache.Backend {
		case BackendSQLite:
			c.Cache.Path = defaultCachePath
		case BackendJSON:
			c.Cache.Path = defaultJSONCachePath
		}
	}
	if c.Cache.Backend == BackendMemory {
		c.Cache.Path = ""
	}

	var err error
	if c.Cache.Path, err = utils.ExpandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeProvider() error {
	if value, ok := os.LookupEnv("DROPDNA_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Provider.Token = value
	}
	c.Provider.Token = strings.TrimSpace(c.Provider.Token)
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = defaultBaseURL
	}

	var err error
	if c.Provider.AnalysisDir, err = utils.ExpandPath(strings.TrimSpace(c.Provider.AnalysisDir)); err != nil {
		return fmt.Errorf("provider.analysis_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	origins := c.Server.AllowedOrigins[:0]
	for _, o := range c.Server.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.AllowedOrigins = origins
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
