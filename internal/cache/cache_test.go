package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

func sampleDay() timetable.Day {
	return timetable.Day{"05:14", "06:50", "12:20", "15:30", "18:00", "19:30"}
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_ExplicitDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Error("New should create the directory")
	}
}

func TestNew_XDGCacheHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	c, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != filepath.Join(base, "namaz") {
		t.Errorf("Dir() = %q", c.Dir())
	}
}

// ---------------------------------------------------------------------------
// Day records
// ---------------------------------------------------------------------------

func TestDay_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())

	if _, ok := c.LoadDay("София", "2025-03-06"); ok {
		t.Fatal("empty cache should miss")
	}
	if err := c.SaveDay("София", "2025-03-06", sampleDay()); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	day, ok := c.LoadDay("София", "2025-03-06")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got, _ := day.Time(prayer.Midday); got != "12:20" {
		t.Errorf("Midday = %q, want 12:20", got)
	}
}

func TestDay_KeyedByCityAndDate(t *testing.T) {
	c, _ := New(t.TempDir())
	c.SaveDay("София", "2025-03-06", sampleDay())

	if _, ok := c.LoadDay("Варна", "2025-03-06"); ok {
		t.Error("other city should miss")
	}
	if _, ok := c.LoadDay("София", "2025-03-07"); ok {
		t.Error("other date should miss")
	}
}

func TestDay_Corrupt(t *testing.T) {
	c, _ := New(t.TempDir())
	os.WriteFile(c.dayPath("София", "2025-03-06"), []byte("{bad"), 0o644)

	if _, ok := c.LoadDay("София", "2025-03-06"); ok {
		t.Error("corrupt entry should miss")
	}
}

func TestDay_MismatchedEntry(t *testing.T) {
	c, _ := New(t.TempDir())
	data, _ := json.Marshal(DayCacheEntry{City: "Варна", Date: "2025-03-06", Day: sampleDay()})
	os.WriteFile(c.dayPath("София", "2025-03-06"), data, 0o644)

	if _, ok := c.LoadDay("София", "2025-03-06"); ok {
		t.Error("entry for another city should miss")
	}
}

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

func TestCities_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())

	if c.LoadCities() != nil {
		t.Fatal("empty cache should return nil")
	}
	if err := c.SaveCities([]string{"Варна", "София"}); err != nil {
		t.Fatal(err)
	}
	got := c.LoadCities()
	if len(got) != 2 || got[0] != "Варна" {
		t.Errorf("LoadCities() = %v", got)
	}
}

func TestCities_Expired(t *testing.T) {
	c, _ := New(t.TempDir())
	entry := CitiesCacheEntry{
		Cities:   []string{"София"},
		CachedAt: time.Now().Add(-25 * time.Hour),
	}
	data, _ := json.Marshal(entry)
	os.WriteFile(filepath.Join(c.dir, citiesCacheFile), data, 0o644)

	if got := c.LoadCities(); got != nil {
		t.Errorf("expired cache returned %v", got)
	}
}
