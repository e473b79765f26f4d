// Package storage persists detection results for the result cache.
//
// Two backends are provided. DBClient stores entries in SQLite through gorm
// and is the default. JSONStore keeps entries in a single human-readable
// JSON file guarded by a lock file so several processes can share it; with
// an empty path it is a process-local in-memory store.
//
// Backends only store and return entries. Key derivation and expiry belong
// to the cache in package dropdna.
package storage
