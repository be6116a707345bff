package prayer

import (
	"testing"
	"time"
)

// fakeRecord is a day record keyed by prayer.
type fakeRecord map[Key]string

func (r fakeRecord) Time(k Key) (string, bool) {
	s, ok := r[k]
	return s, ok && s != ""
}

// fakeTable maps city -> date -> record.
type fakeTable map[string]map[string]fakeRecord

func (t fakeTable) Lookup(city, date string) (Record, bool) {
	days, ok := t[city]
	if !ok {
		return nil, false
	}
	rec, ok := days[date]
	if !ok {
		return nil, false
	}
	return rec, true
}

// helper to build a time.Time on a given date in UTC.
func makeTime(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, 2, 28, hour, min, 0, 0, time.UTC)
}

func sampleRecord() fakeRecord {
	return fakeRecord{
		Dawn:      "05:17",
		Sunrise:   "06:48",
		Midday:    "12:13",
		Afternoon: "15:02",
		Sunset:    "17:39",
		Night:     "19:10",
	}
}

// ---------------------------------------------------------------------------
// ParseClock
// ---------------------------------------------------------------------------

func TestParseClock(t *testing.T) {
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		wantH   int
		wantM   int
		wantErr bool
	}{
		{"simple HH:MM", "15:02", 15, 2, false},
		{"midnight", "00:00", 0, 0, false},
		{"surrounding spaces", "  05:17 ", 5, 17, false},
		{"invalid format", "bad", 0, 0, true},
		{"empty string", "", 0, 0, true},
		{"missing minute", "15:", 0, 0, true},
		{"non-numeric", "ab:cd", 0, 0, true},
		{"hour out of range", "24:00", 0, 0, true},
		{"minute out of range", "12:60", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.raw, date)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) expected error, got nil", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.raw, err)
			}
			if got.Hour() != tt.wantH || got.Minute() != tt.wantM {
				t.Errorf("ParseClock(%q) = %02d:%02d, want %02d:%02d",
					tt.raw, got.Hour(), got.Minute(), tt.wantH, tt.wantM)
			}
			if got.Year() != 2026 || got.Month() != 2 || got.Day() != 28 {
				t.Errorf("ParseClock(%q) wrong date: got %v", tt.raw, got.Format("2006-01-02"))
			}
		})
	}
}

func TestParseClock_Location(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Sofia")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	date := time.Date(2026, 6, 15, 0, 0, 0, 0, loc)

	got, err := ParseClock("12:30", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != loc {
		t.Errorf("expected location %v, got %v", loc, got.Location())
	}
}

// ---------------------------------------------------------------------------
// DayPrayers
// ---------------------------------------------------------------------------

func TestDayPrayers_AllPresent(t *testing.T) {
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	prayers := DayPrayers(sampleRecord(), date)

	if len(prayers) != NumKeys {
		t.Fatalf("expected %d prayers, got %d", NumKeys, len(prayers))
	}
	for i, k := range Keys {
		if prayers[i].Key != k {
			t.Errorf("prayer[%d].Key = %v, want %v", i, prayers[i].Key, k)
		}
	}
}

func TestDayPrayers_SkipsMissingAndMalformed(t *testing.T) {
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	rec := fakeRecord{Dawn: "05:00", Midday: "not-a-time", Night: "19:00"}

	prayers := DayPrayers(rec, date)
	if len(prayers) != 2 {
		t.Fatalf("expected 2 prayers, got %d", len(prayers))
	}
	if prayers[0].Key != Dawn || prayers[1].Key != Night {
		t.Errorf("unexpected prayers: %v", prayers)
	}
}

// ---------------------------------------------------------------------------
// NextPrayer / CurrentPrayer
// ---------------------------------------------------------------------------

func TestNextPrayer_MiddleOfDay(t *testing.T) {
	prayers := DayPrayers(sampleRecord(), makeTime(t, 0, 0))

	next := NextPrayer(prayers, makeTime(t, 13, 0))
	if next == nil {
		t.Fatal("expected a next prayer, got nil")
	}
	if next.Key != Afternoon {
		t.Errorf("expected Afternoon, got %v", next.Key)
	}
}

func TestNextPrayer_ExactTime(t *testing.T) {
	prayers := DayPrayers(sampleRecord(), makeTime(t, 0, 0))

	// Exactly at Midday (12:13): Midday is not After now, so the next is Afternoon.
	next := NextPrayer(prayers, makeTime(t, 12, 13))
	if next == nil {
		t.Fatal("expected a next prayer, got nil")
	}
	if next.Key != Afternoon {
		t.Errorf("expected Afternoon, got %v", next.Key)
	}
}

func TestNextPrayer_AfterAllPrayers(t *testing.T) {
	prayers := DayPrayers(sampleRecord(), makeTime(t, 0, 0))

	if next := NextPrayer(prayers, makeTime(t, 22, 0)); next != nil {
		t.Errorf("expected nil after all prayers, got %v", next.Key)
	}
}

func TestNextPrayer_EmptyList(t *testing.T) {
	if next := NextPrayer([]Prayer{}, makeTime(t, 12, 0)); next != nil {
		t.Errorf("expected nil for empty prayer list, got %v", next)
	}
}

func TestCurrentPrayer(t *testing.T) {
	prayers := DayPrayers(sampleRecord(), makeTime(t, 0, 0))

	if cur := CurrentPrayer(prayers, makeTime(t, 4, 0)); cur != nil {
		t.Errorf("expected nil before Dawn, got %v", cur.Key)
	}
	cur := CurrentPrayer(prayers, makeTime(t, 12, 13))
	if cur == nil || cur.Key != Midday {
		t.Errorf("expected Midday at 12:13, got %v", cur)
	}
}

// ---------------------------------------------------------------------------
// FormatRemaining / FormatCountdown
// ---------------------------------------------------------------------------

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"hours and minutes", 2*time.Hour + 15*time.Minute, "2h 15m"},
		{"only minutes", 45 * time.Minute, "45m"},
		{"exactly one hour", 1 * time.Hour, "1h 0m"},
		{"zero", 0, "0m"},
		{"negative", -30 * time.Minute, "0m"},
		{"large", 10*time.Hour + 59*time.Minute, "10h 59m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRemaining(tt.duration)
			if got != tt.want {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
		{86399, "23:59:59"},
	}

	for _, tt := range tests {
		if got := FormatCountdown(tt.seconds); got != tt.want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
