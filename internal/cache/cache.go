package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

const (
	dayCacheFile    = "day_%s.json" // keyed by hash
	citiesCacheFile = "cities.json"
	citiesTTL       = 24 * time.Hour
)

// Cache provides file-based caching for records fetched from a companion
// server.
type Cache struct {
	dir string
}

// DayCacheEntry stores one day record with the parameters it was fetched for.
type DayCacheEntry struct {
	City string        `json:"city"`
	Date string        `json:"date"` // YYYY-MM-DD
	Day  timetable.Day `json:"day"`
}

// CitiesCacheEntry stores the city list with a timestamp.
type CitiesCacheEntry struct {
	Cities   []string  `json:"cities"`
	CachedAt time.Time `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to $XDG_CACHE_HOME/namaz or ~/.cache/namaz.
func New(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("cannot determine home directory: %w", err)
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "namaz")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// cacheKey builds a deterministic hash of city and date so city names
// never reach the file system.
func cacheKey(city, date string) string {
	h := sha256.Sum256([]byte(city + "|" + date))
	return fmt.Sprintf("%x", h[:8])
}

func (c *Cache) dayPath(city, date string) string {
	return filepath.Join(c.dir, fmt.Sprintf(dayCacheFile, cacheKey(city, date)))
}

// LoadDay reads a cached day record. Day records never change, so cached
// entries do not expire.
func (c *Cache) LoadDay(city, date string) (timetable.Day, bool) {
	data, err := os.ReadFile(c.dayPath(city, date))
	if err != nil {
		return timetable.Day{}, false
	}

	var entry DayCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return timetable.Day{}, false
	}

	// Guard against hash collisions and hand-edited files.
	if entry.City != city || entry.Date != date {
		return timetable.Day{}, false
	}

	return entry.Day, true
}

// SaveDay writes a day record to the cache.
func (c *Cache) SaveDay(city, date string, day timetable.Day) error {
	entry := DayCacheEntry{City: city, Date: date, Day: day}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(c.dayPath(city, date), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// LoadCities reads the cached city list.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadCities() []string {
	path := filepath.Join(c.dir, citiesCacheFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entry CitiesCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	if time.Since(entry.CachedAt) > citiesTTL {
		return nil
	}

	return entry.Cities
}

// SaveCities writes the city list to the cache.
func (c *Cache) SaveCities(cities []string) error {
	path := filepath.Join(c.dir, citiesCacheFile)

	entry := CitiesCacheEntry{
		Cities:   cities,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cities cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cities cache: %w", err)
	}

	return nil
}
