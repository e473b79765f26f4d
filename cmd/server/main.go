//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/himanishpuri/DropDNA/internal/config"
	"github.com/himanishpuri/DropDNA/internal/service"
	"github.com/himanishpuri/DropDNA/pkg/logger"
)

var (
	configPath     string
	bindAddr       string
	cachePath      string
	analysisDir    string
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file path (env: DROPDNA_CONFIG)")
	flag.StringVar(&bindAddr, "addr", "", "Listen address, overrides server.bind")
	flag.StringVar(&cachePath, "cache", "", "Cache file path, overrides cache.path")
	flag.StringVar(&analysisDir, "analysis-dir", "", "Serve analysis from <dir>/<track-id>.json instead of the API")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

func main() {
	flag.Parse()

	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	log := service.NewLogger(cfg)
	if exists {
		log.Infof("Loaded config from %s", path)
	}

	origins := cfg.Server.AllowedOrigins
	if allowedOrigins != "" {
		origins = parseOrigins(allowedOrigins)
	}
	addr := cfg.Server.Bind
	if bindAddr != "" {
		addr = bindAddr
	}

	svc, err := service.New(cfg, service.Overrides{CachePath: cachePath, AnalysisDir: analysisDir}, log)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	server := NewServer(svc, &ServerConfig{
		Addr:           addr,
		CacheBackend:   cfg.Cache.Backend,
		CachePath:      cfg.Cache.Path,
		DefaultParams:  cfg.Params(),
		AllowedOrigins: origins,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		log.Errorf("Server failed: %v", err)
		svc.Close()
		os.Exit(1)
	}
}

func parseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
