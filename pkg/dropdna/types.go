package dropdna

import "github.com/himanishpuri/DropDNA/pkg/models"

// CachedResult is a stored entry annotated with its freshness.
type CachedResult struct {
	models.CacheEntry
	Expired bool `json:"expired"` // Older than the retention window; ignored by DetectDrop
}
