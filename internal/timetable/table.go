// Package timetable holds the pre-computed prayer times per city and day.
//
// The data file is a JSON document of the form
//
//	{"София": {"2025-01-01": {"Зора": "05:52", "Изгрев": "07:55", ...}}}
//
// It is loaded once and never mutated afterwards, so a *Table is safe for
// concurrent readers.
package timetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

var (
	// ErrCityNotFound is returned when a city is missing from the table.
	ErrCityNotFound = errors.New("city not found")
	// ErrDateNotFound is returned when a city has no record for a date.
	ErrDateNotFound = errors.New("date not found")
)

// Day holds the six "HH:MM" strings of one city on one date.
// An empty string marks a prayer as absent.
type Day [prayer.NumKeys]string

// Time implements prayer.Record.
func (d Day) Time(k prayer.Key) (string, bool) {
	if !k.Valid() {
		return "", false
	}
	s := d[k]
	return s, s != ""
}

// UnmarshalJSON reads a day object keyed by prayer source names.
// Columns that are not prayers (the scraped source carries e.g. the day
// number) are ignored.
func (d *Day) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Day
	for name, value := range raw {
		k, err := prayer.ParseKey(name)
		if err != nil {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	*d = out
	return nil
}

// MarshalJSON writes only the prayers that are present.
func (d Day) MarshalJSON() ([]byte, error) {
	out := make(map[prayer.Key]string, prayer.NumKeys)
	for _, k := range prayer.Keys {
		if s, ok := d.Time(k); ok {
			out[k] = s
		}
	}
	return json.Marshal(out)
}

// Table maps city -> date (YYYY-MM-DD) -> Day.
type Table struct {
	cities map[string]map[string]Day
}

// New builds a table from an in-memory mapping. The mapping is copied.
func New(data map[string]map[string]Day) *Table {
	t := &Table{cities: make(map[string]map[string]Day, len(data))}
	for city, days := range data {
		cp := make(map[string]Day, len(days))
		for date, day := range days {
			cp[date] = day
		}
		t.cities[city] = cp
	}
	return t
}

// Load reads a table from a JSON file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prayer time table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("invalid prayer time table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a table from r.
func Parse(r io.Reader) (*Table, error) {
	var data map[string]map[string]Day
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]map[string]Day{}
	}
	return &Table{cities: data}, nil
}

// Day returns the record for city on date, or ErrCityNotFound / ErrDateNotFound.
func (t *Table) Day(city, date string) (Day, error) {
	days, ok := t.cities[city]
	if !ok {
		return Day{}, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	}
	day, ok := days[date]
	if !ok {
		return Day{}, fmt.Errorf("%w: %s for %q", ErrDateNotFound, date, city)
	}
	return day, nil
}

// Lookup implements prayer.Lookup.
func (t *Table) Lookup(city, date string) (prayer.Record, bool) {
	day, err := t.Day(city, date)
	if err != nil {
		return nil, false
	}
	return day, true
}

// HasCity reports whether city is present.
func (t *Table) HasCity(city string) bool {
	_, ok := t.cities[city]
	return ok
}

// Cities returns all city names, sorted.
func (t *Table) Cities() []string {
	out := make([]string, 0, len(t.cities))
	for city := range t.cities {
		out = append(out, city)
	}
	sort.Strings(out)
	return out
}

// Dates returns the dates recorded for city, sorted.
func (t *Table) Dates(city string) []string {
	days := t.cities[city]
	out := make([]string, 0, len(days))
	for date := range days {
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}

// Merge returns a new table holding the cities of t and other. A city with
// records in other replaces the same city in t; a city other only names is
// added without overwriting records t already has.
func (t *Table) Merge(other *Table) *Table {
	out := New(t.cities)
	for city, days := range other.cities {
		if _, ok := out.cities[city]; ok && len(days) == 0 {
			continue
		}
		cp := make(map[string]Day, len(days))
		for date, day := range days {
			cp[date] = day
		}
		out.cities[city] = cp
	}
	return out
}
