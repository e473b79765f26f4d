package models

// CacheEntry is a stored DropResult together with the parameters it was
// computed for.
type CacheEntry struct {
	Key              string     `json:"key"`                // Derived from track ID and parameters
	LoudnessOffsetDb float64    `json:"loudness_offset_db"` // Parameter profile of the entry
	Result           DropResult `json:"result"`             // Stored result, preview length included
}
