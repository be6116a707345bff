package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Key identifies one of the six daily prayers tracked by the timetable.
type Key int

const (
	Dawn Key = iota
	Sunrise
	Midday
	Afternoon
	Sunset
	Night
)

// NumKeys is the number of prayers in a day record.
const NumKeys = 6

// Keys lists every prayer in table order. The order drives next/previous
// resolution and notification iteration.
var Keys = []Key{Dawn, Sunrise, Midday, Afternoon, Sunset, Night}

// sourceNames are the column names used by the prayer time data file and
// by persisted notification settings.
var sourceNames = [NumKeys]string{"Зора", "Изгрев", "Обяд", "Следобяд", "Залез", "Нощ"}

// identifiers are the ASCII names accepted on the command line.
var identifiers = [NumKeys]string{"dawn", "sunrise", "midday", "afternoon", "sunset", "night"}

// displayNames are the labels shown to the user.
var displayNames = [NumKeys]string{"Зора", "Изгрев", "Обедна", "Следобедна", "Вечерна", "Нощна"}

// FridayMiddayName replaces the Midday label on Fridays.
const FridayMiddayName = "Джума"

// Valid reports whether k is one of the six known prayers.
func (k Key) Valid() bool {
	return k >= Dawn && k <= Night
}

// String returns the source (data file) name of the prayer.
func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return sourceNames[k]
}

// Identifier returns the ASCII command-line name, e.g. "midday".
func (k Key) Identifier() string {
	if !k.Valid() {
		return ""
	}
	return identifiers[k]
}

// MarshalText encodes the key as its source name so JSON maps keyed by Key
// match the data file and the persisted settings format.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid prayer key %d", int(k))
	}
	return []byte(sourceNames[k]), nil
}

// UnmarshalText accepts either the source name or the ASCII identifier.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey resolves a prayer from its source name ("Обяд") or ASCII
// identifier ("midday", case-insensitive).
func ParseKey(name string) (Key, error) {
	s := strings.TrimSpace(name)
	for _, k := range Keys {
		if s == sourceNames[k] || strings.EqualFold(s, identifiers[k]) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown prayer name: %q", name)
}

// DisplayName returns the label for k on the given date. Midday is shown as
// the Friday congregational prayer when date falls on a Friday in its own
// location.
func DisplayName(k Key, date time.Time) string {
	if !k.Valid() {
		return k.String()
	}
	if k == Midday && date.Weekday() == time.Friday {
		return FridayMiddayName
	}
	return displayNames[k]
}

// Identifiers returns the ASCII names of all prayers in table order.
func Identifiers() []string {
	out := make([]string, len(Keys))
	for i, k := range Keys {
		out[i] = identifiers[k]
	}
	return out
}
