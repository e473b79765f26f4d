package dropdna

import (
	"github.com/himanishpuri/DropDNA/pkg/dropdna/storage"
)

var _ CacheStorage = (*storage.JSONStore)(nil)

// NewJSONStorage creates a JSON file backed store. An empty path keeps
// results in memory for the lifetime of the process.
func NewJSONStorage(path string) (CacheStorage, error) {
	return storage.NewJSONStore(path)
}
