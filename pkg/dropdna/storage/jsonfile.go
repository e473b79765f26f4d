package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/himanishpuri/DropDNA/pkg/models"
	"github.com/himanishpuri/DropDNA/pkg/utils"
)

// JSONStore keeps cache entries in memory and mirrors them to a JSON file.
type JSONStore struct {
	path    string
	lock    *flock.Flock
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

// NewJSONStore opens the store at path, loading existing entries. An empty
// path gives a memory-only store. A corrupt file is an error; the caller
// decides whether to start over.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path:    strings.TrimSpace(path),
		entries: make(map[string]models.CacheEntry),
	}
	if s.path == "" {
		return s, nil
	}

	if err := utils.EnsureParentDir(s.path); err != nil {
		return nil, err
	}
	s.lock = flock.New(s.path + ".lock")

	if err := s.withFileLock(s.load); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file, empty for a memory-only store.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) Get(key string) (models.CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok, nil
}

// Put stores entry under its key. With a backing file, the file is re-read
// under the lock first so entries written by other processes survive.
func (s *JSONStore) Put(entry models.CacheEntry) error {
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	return s.mutate(func(entries map[string]models.CacheEntry) int {
		entries[entry.Key] = entry
		return 1
	})
}

func (s *JSONStore) List() ([]models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedEntries(s.entries), nil
}

func (s *JSONStore) DeleteTrack(trackID string) (int, error) {
	var removed int
	err := s.mutate(func(entries map[string]models.CacheEntry) int {
		for key, e := range entries {
			if e.Result.TrackID == trackID {
				delete(entries, key)
				removed++
			}
		}
		return removed
	})
	return removed, err
}

func (s *JSONStore) Clear() (int, error) {
	var removed int
	err := s.mutate(func(entries map[string]models.CacheEntry) int {
		removed = len(entries)
		for key := range entries {
			delete(entries, key)
		}
		return removed
	})
	return removed, err
}

func (s *JSONStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *JSONStore) Close() error {
	return nil
}

// mutate applies fn to the entries and persists them when fn reports a change.
func (s *JSONStore) mutate(fn func(map[string]models.CacheEntry) int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		fn(s.entries)
		return nil
	}

	return s.withFileLock(func() error {
		if err := s.load(); err != nil {
			return err
		}
		if fn(s.entries) == 0 {
			return nil
		}
		if err := s.save(); err != nil {
			return fmt.Errorf("persist cache: %w", err)
		}
		return nil
	})
}

func (s *JSONStore) withFileLock(fn func() error) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer s.lock.Unlock()
	return fn()
}

// load replaces the in-memory entries with the file contents.
func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var list []models.CacheEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	entries := make(map[string]models.CacheEntry, len(list))
	for _, e := range list {
		if e.Key != "" {
			entries[e.Key] = e
		}
	}
	s.entries = entries
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(sortedEntries(s.entries), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	return utils.WriteFileAtomic(s.path, data)
}

// sortedEntries orders newest first, then by key for stable output.
func sortedEntries(m map[string]models.CacheEntry) []models.CacheEntry {
	out := make([]models.CacheEntry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Result.ComputedAtEpochMs != out[j].Result.ComputedAtEpochMs {
			return out[i].Result.ComputedAtEpochMs > out[j].Result.ComputedAtEpochMs
		}
		return out[i].Key < out[j].Key
	})
	return out
}
