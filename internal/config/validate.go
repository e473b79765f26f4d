package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/DropDNA/pkg/logger"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetection() error {
	offset := c.Detection.LoudnessOffsetDb
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return errors.New("detection.loudness_offset_db must be a finite number")
	}
	if c.Detection.PreviewLengthMs <= 0 {
		return errors.New("detection.preview_length_ms must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case BackendSQLite, BackendJSON:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the %s backend", c.Cache.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("cache.backend %q is not one of sqlite, json, memory", c.Cache.Backend)
	}
	if c.Cache.RetentionHours <= 0 {
		return errors.New("cache.retention_hours must be positive")
	}
	return nil
}

func (c *Config) validateProvider() error {
	if c.Provider.TimeoutSeconds <= 0 {
		return errors.New("provider.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := logger.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}
	return nil
}
