package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/himanishpuri/DropDNA/pkg/models"
	"github.com/himanishpuri/DropDNA/pkg/utils"
)

//go:embed sample_config.toml
var sampleConfig string

// Detection holds the default detection parameters.
type Detection struct {
	LoudnessOffsetDb float64 `toml:"loudness_offset_db"`
	PreviewLengthMs  int     `toml:"preview_length_ms"`
}

// Cache selects and locates the result store.
type Cache struct {
	Backend        string `toml:"backend"`
	Path           string `toml:"path"`
	RetentionHours int    `toml:"retention_hours"`
}

// Provider configures where analysis documents come from.
type Provider struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	AnalysisDir    string `toml:"analysis_dir"`
}

// Server configures the HTTP API.
type Server struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full DropDNA configuration.
type Config struct {
	Detection Detection `toml:"detection"`
	Cache     Cache     `toml:"cache"`
	Provider  Provider  `toml:"provider"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return utils.ExpandPath("~/.config/dropdna/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error; defaults and environment fallbacks apply. It returns the
// resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env := os.Getenv("DROPDNA_CONFIG"); env != "" {
			path = env
		}
	}
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}

	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// Params returns the configured default detection parameters.
func (c *Config) Params() models.DetectionParams {
	return models.DetectionParams{
		LoudnessOffsetDb: c.Detection.LoudnessOffsetDb,
		PreviewLengthMs:  c.Detection.PreviewLengthMs,
	}
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Cache.RetentionHours) * time.Hour
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// Sample returns the annotated sample configuration.
func Sample() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
