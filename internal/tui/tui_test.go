package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

var sofia = time.FixedZone("EET", 2*60*60)

func testTable() *timetable.Table {
	day := timetable.Day{"05:14", "06:50", "12:20", "15:30", "18:00", "19:30"}
	return timetable.New(map[string]map[string]timetable.Day{
		"София": {"2025-03-06": day, "2025-03-07": day},
	})
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ============================================================
// Watch model
// ============================================================

func TestWatch_InitialSnapshot(t *testing.T) {
	now := time.Date(2025, 3, 6, 13, 0, 0, 0, sofia)
	w := NewWatch("София", testTable(), clockAt(now), "15:04")

	snap := w.Snapshot()
	if snap.Next == nil || snap.Next.Key != prayer.Afternoon {
		t.Fatalf("next = %+v, want afternoon", snap.Next)
	}
	view := w.View()
	for _, want := range []string{"София", "Следобедна в 15:30", "02:30:00", "Обедна беше преди 40m"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestWatch_TickRecomputes(t *testing.T) {
	now := time.Date(2025, 3, 6, 15, 29, 0, 0, sofia)
	clock := now
	w := NewWatch("София", testTable(), func() time.Time { return clock }, "15:04")

	clock = now.Add(2 * time.Minute)
	m, cmd := w.Update(tickMsg(clock))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	snap := m.(Watch).Snapshot()
	if snap.Next == nil || snap.Next.Key != prayer.Sunset {
		t.Errorf("next after tick = %+v, want sunset", snap.Next)
	}
}

func TestWatch_RollsOverToTomorrowDawn(t *testing.T) {
	now := time.Date(2025, 3, 6, 21, 0, 0, 0, sofia)
	w := NewWatch("София", testTable(), clockAt(now), "15:04")

	if !strings.Contains(w.View(), "Зора в 05:14") {
		t.Errorf("view should point at tomorrow's dawn:\n%s", w.View())
	}
}

func TestWatch_NoData(t *testing.T) {
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, sofia)
	w := NewWatch("София", testTable(), clockAt(now), "15:04")

	if !strings.Contains(w.View(), "Няма данни за София на 2025-03-09") {
		t.Errorf("view:\n%s", w.View())
	}
}

func TestWatch_ListToggle(t *testing.T) {
	now := time.Date(2025, 3, 6, 13, 0, 0, 0, sofia)
	w := NewWatch("София", testTable(), clockAt(now), "15:04")

	m, _ := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	view := m.View()
	for _, want := range []string{"Зора", "05:14", "▸ Следобедна", "Нощна"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}
}

func TestWatch_Quit(t *testing.T) {
	w := NewWatch("София", testTable(), clockAt(time.Date(2025, 3, 6, 13, 0, 0, 0, sofia)), "15:04")

	_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWatch_WindowSize(t *testing.T) {
	w := NewWatch("София", testTable(), clockAt(time.Date(2025, 3, 6, 13, 0, 0, 0, sofia)), "15:04")

	m, _ := w.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	if got := m.(Watch).bar.Width; got != 60 {
		t.Errorf("bar width = %d, want 60", got)
	}
	m, _ = w.Update(tea.WindowSizeMsg{Width: 15, Height: 40})
	if got := m.(Watch).bar.Width; got != 10 {
		t.Errorf("bar width = %d, want 10", got)
	}
}

// ============================================================
// Forms
// ============================================================

func TestMinuteOptions(t *testing.T) {
	opts := minuteOptions(5)
	if len(opts) != len(minutePresets) {
		t.Errorf("preset value should not add an option, got %d", len(opts))
	}

	opts = minuteOptions(7)
	if len(opts) != len(minutePresets)+1 {
		t.Fatalf("custom value should add an option, got %d", len(opts))
	}
	if opts[2].Value != 7 {
		t.Errorf("custom value should sort into place, got %d", opts[2].Value)
	}
	if opts[0].Key != "без напомняне" {
		t.Errorf("zero label = %q", opts[0].Key)
	}
}

func TestMinuteOptions_Clamps(t *testing.T) {
	opts := minuteOptions(500)
	if opts[len(opts)-1].Value != prefs.MaxMinutesBefore {
		t.Errorf("last option = %d, want %d", opts[len(opts)-1].Value, prefs.MaxMinutesBefore)
	}
	if len(opts) != len(minutePresets) {
		t.Errorf("clamped value duplicates the 60 preset, got %d options", len(opts))
	}
}

func TestCollectSettings(t *testing.T) {
	got := collectSettings([]*settingsFields{
		{key: prayer.Midday, enabled: true, minutes: 90},
		{key: prayer.Night, enabled: true, minutes: 0},
	})

	if len(got) != prayer.NumKeys {
		t.Fatalf("len = %d, want %d", len(got), prayer.NumKeys)
	}
	if s := got[prayer.Midday]; !s.Enabled || s.MinutesBefore != prefs.MaxMinutesBefore {
		t.Errorf("midday = %+v", s)
	}
	if s := got[prayer.Night]; !s.Enabled || s.MinutesBefore != 0 {
		t.Errorf("night = %+v", s)
	}
	if got[prayer.Dawn].Enabled {
		t.Error("untouched prayers should keep the defaults")
	}
}

func TestPickCity_Empty(t *testing.T) {
	if _, err := PickCity(nil, ""); err == nil {
		t.Error("expected error for empty city list")
	}
}
