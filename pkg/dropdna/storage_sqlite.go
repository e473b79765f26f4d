//go:build !js && !wasm
// +build !js,!wasm

package dropdna

import (
	"github.com/himanishpuri/DropDNA/pkg/dropdna/storage"
)

var _ CacheStorage = (*storage.DBClient)(nil)

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (CacheStorage, error) {
	return storage.NewDBClientWithPath(dbPath)
}

func defaultStorage(cfg *Config) (CacheStorage, error) {
	return NewSQLiteStorage(cfg.CachePath)
}
