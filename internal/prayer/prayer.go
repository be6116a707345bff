package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Prayer is a single prayer resolved to a concrete instant.
type Prayer struct {
	Key  Key       `json:"key"`
	Time time.Time `json:"time"`
}

// Name returns the Friday-aware display name for the prayer's own date.
func (p Prayer) Name() string {
	return DisplayName(p.Key, p.Time)
}

// Record is the read side of a single city/day entry: the raw "HH:MM"
// string of each prayer, or false when the prayer is absent.
type Record interface {
	Time(k Key) (string, bool)
}

// At resolves prayer k of the record onto the calendar day of date.
// Absent or unparseable entries report false.
func At(rec Record, k Key, date time.Time) (time.Time, bool) {
	raw, ok := rec.Time(k)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseClock(raw, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DayPrayers returns the prayers present in rec, in table order, anchored
// to the calendar day of date.
func DayPrayers(rec Record, date time.Time) []Prayer {
	var prayers []Prayer
	for _, k := range Keys {
		if t, ok := At(rec, k, date); ok {
			prayers = append(prayers, Prayer{Key: k, Time: t})
		}
	}
	return prayers
}

// NextPrayer finds the first prayer strictly after now.
// If all prayers have passed, it returns nil (caller should look at tomorrow's Dawn).
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the latest prayer whose time has been reached.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var current *Prayer
	for i := range prayers {
		if !now.Before(prayers[i].Time) {
			current = &prayers[i]
		}
	}
	return current
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatCountdown renders whole seconds as "HH:MM:SS".
func FormatCountdown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseClock parses a zero-padded 24h "HH:MM" string into a time.Time on
// the calendar day of date, in date's location.
func ParseClock(raw string, date time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	var hour, min int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return time.Time{}, fmt.Errorf("time out of range: %q", raw)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location()), nil
}
