// Package provider fetches audio-analysis documents for tracks and decodes
// them into the feature model.
//
// HTTPClient talks to a vendor audio-analysis endpoint with a bearer token.
// Dir serves pre-downloaded documents from a directory, one <trackID>.json
// per track, which is handy for offline runs and fixtures.
package provider
