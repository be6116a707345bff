package prayer

import (
	"math"
	"time"
)

// DateLayout is the layout of date keys in the timetable.
const DateLayout = "2006-01-02"

// MinDisplayProgress is the smallest fraction a progress bar is drawn with.
const MinDisplayProgress = 0.02

// Lookup resolves a city/date pair to its day record.
type Lookup interface {
	Lookup(city, date string) (Record, bool)
}

// DateKey formats t as a timetable date key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Snapshot is the state of the countdown at one instant.
// Nil fields mean "none": no previous prayer yet today, no next prayer found,
// or no progress because one of the two is missing.
type Snapshot struct {
	City             string    `json:"city"`
	At               time.Time `json:"at"`
	Previous         *Prayer   `json:"previous,omitempty"`
	Next             *Prayer   `json:"next,omitempty"`
	RemainingSeconds *int64    `json:"remaining_seconds,omitempty"`
	ElapsedSeconds   *int64    `json:"elapsed_seconds,omitempty"`
	Progress         *float64  `json:"progress,omitempty"`
}

// Empty reports whether the snapshot carries no prayer at all, which is the
// case when the city or today's date is missing from the table.
func (s Snapshot) Empty() bool {
	return s.Previous == nil && s.Next == nil
}

// DisplayProgress returns the fraction a progress bar should be drawn with:
// the raw progress floored at MinDisplayProgress, or one half when there is
// no progress to show.
func (s Snapshot) DisplayProgress() float64 {
	if s.Progress == nil {
		return 0.5
	}
	return math.Max(*s.Progress, MinDisplayProgress)
}

// ComputeSnapshot locates the previous and next prayer around now for city.
// The calendar date is taken in now's location. Missing table entries
// produce an empty snapshot rather than an error.
func ComputeSnapshot(city string, now time.Time, table Lookup) Snapshot {
	snap := Snapshot{City: city, At: now}

	today, ok := table.Lookup(city, DateKey(now))
	if !ok {
		return snap
	}

	var prev, next *Prayer
	for _, k := range Keys {
		t, ok := At(today, k, now)
		if !ok {
			continue
		}
		if !now.Before(t) {
			prev = &Prayer{Key: k, Time: t}
		} else if next == nil {
			next = &Prayer{Key: k, Time: t}
		}
	}

	if next == nil {
		tomorrow := now.AddDate(0, 0, 1)
		if rec, ok := table.Lookup(city, DateKey(tomorrow)); ok {
			if t, ok := At(rec, Dawn, tomorrow); ok {
				next = &Prayer{Key: Dawn, Time: t}
			}
		}
	}

	snap.Previous = prev
	snap.Next = next

	if next != nil {
		remaining := wholeSeconds(next.Time.Sub(now))
		snap.RemainingSeconds = &remaining
	}
	if prev != nil {
		elapsed := wholeSeconds(now.Sub(prev.Time))
		snap.ElapsedSeconds = &elapsed
	}
	if prev != nil && next != nil {
		p := Progress(prev.Time, next.Time, now)
		snap.Progress = &p
	}

	return snap
}

// Progress returns how far now is between from and to, clamped to [0,1].
func Progress(from, to, now time.Time) float64 {
	total := to.Sub(from)
	if total <= 0 {
		return 1
	}
	f := float64(now.Sub(from)) / float64(total)
	return math.Min(math.Max(f, 0), 1)
}

func wholeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
