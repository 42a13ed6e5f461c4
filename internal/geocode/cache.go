package geocode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry is one cached geocoding outcome, keyed by canonical location.
// Nil Lat/Lon is the failure sentinel: the location was looked up and
// yielded nothing, and must not be retried until the entry is removed.
type Entry struct {
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	DisplayName string   `json:"display_name,omitempty"`
	Timestamp   string   `json:"ts,omitempty"`
}

// Found reports whether the entry holds real coordinates rather than the
// failure sentinel.
func (e Entry) Found() bool {
	return e.Lat != nil && e.Lon != nil
}

// FoundEntry builds a successful cache entry with a UTC timestamp.
func FoundEntry(lat, lon float64, displayName string) Entry {
	return Entry{
		Lat:         &lat,
		Lon:         &lon,
		DisplayName: displayName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// SentinelEntry builds a failure sentinel entry with a UTC timestamp.
func SentinelEntry() Entry {
	return Entry{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// Cache is the on-disk geocode cache: a JSON object mapping canonical
// location keys to entries. It is loaded once at build start, mutated in
// memory, and written back in full at build end.
type Cache struct {
	path    string
	entries map[string]Entry
}

// LoadCache reads the cache file. A missing or unparseable file yields an
// empty cache rather than an error; a bad cache only costs re-lookups.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	return c
}

// Lookup returns the entry for a canonical location key.
func (c *Cache) Lookup(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Put stores or replaces the entry for a canonical location key.
func (c *Cache) Put(key string, e Entry) {
	c.entries[key] = e
}

// Remove deletes a cached entry, allowing the next build to retry it.
func (c *Cache) Remove(key string) {
	delete(c.entries, key)
}

// Len returns the number of cached locations.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns the cached location keys in sorted order.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save writes the full cache back to disk. The write goes to a temporary
// file in the same directory followed by a rename, so an interrupted
// build never leaves a truncated cache behind.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode geocode cache: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file %s: %w", c.path, err)
	}
	return nil
}
