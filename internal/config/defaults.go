package config

import "github.com/himanishpuri/DropDNA/pkg/models"

const (
	defaultCachePath      = "~/.local/share/dropdna/drops.sqlite3"
	defaultJSONCachePath  = "~/.local/share/dropdna/drops.json"
	defaultBaseURL        = "https://api.spotify.com/v1"
	defaultTimeoutSeconds = 10
	defaultRetentionHours = 7 * 24
	defaultBind           = "127.0.0.1:8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Detection: Detection{
			LoudnessOffsetDb: models.DefaultLoudnessOffsetDb,
			PreviewLengthMs:  models.DefaultPreviewLengthMs,
		},
		Cache: Cache{
			Backend:        BackendSQLite,
			Path:           defaultCachePath,
			RetentionHours: defaultRetentionHours,
		},
		Provider: Provider{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Server: Server{
			Bind:           defaultBind,
			AllowedOrigins: []string{"*"},
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
