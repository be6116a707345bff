package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/display"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

var weekdays = [...]string{"нд", "пн", "вт", "ср", "чт", "пт", "сб"}

// dayLabel renders a date as "чт 06.03".
func dayLabel(t time.Time) string {
	return weekdays[t.Weekday()] + " " + t.Format("02.01")
}

func runToday(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	city, err := s.city(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	goTimeFmt := goTimeFormat(s.cfg)
	snap := prayer.ComputeSnapshot(city, now, s.table)

	rec, ok := s.table.Lookup(city, prayer.DateKey(now))
	if !ok {
		return fmt.Errorf("%s has no prayer times for %s", city, prayer.DateKey(now))
	}
	prayers := prayer.DayPrayers(rec, now)

	if FlagJSON {
		return printTodayJSON(s, prayers, snap, goTimeFmt)
	}
	printTodayRich(s, prayers, snap, goTimeFmt)
	return nil
}

// printTodayRich renders the colored terminal output for today's schedule.
func printTodayRich(s *session, prayers []prayer.Prayer, snap prayer.Snapshot, goTimeFmt string) {
	w := s.out
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Времена за молитва"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Info(snap.City))
	fmt.Fprintf(w, "  %s, %s\n", dayLabel(snap.At), snap.At.Format("2006"))
	fmt.Fprintln(w)

	width := 0
	for _, p := range prayers {
		width = max(width, lipgloss.Width(p.Name()))
	}

	for _, p := range prayers {
		name := p.Name()
		line := fmt.Sprintf("  %s%s  %s", name, strings.Repeat(" ", width-lipgloss.Width(name)), p.Time.Format(goTimeFmt))

		switch {
		case snap.Next != nil && p.Key == snap.Next.Key && p.Time.Equal(snap.Next.Time):
			suffix := "  <- след " + prayer.FormatRemaining(time.Duration(*snap.RemainingSeconds)*time.Second)
			fmt.Fprintln(w, display.Accent(line+suffix))
		case snap.Previous != nil && p.Key == snap.Previous.Key:
			fmt.Fprintln(w, display.Dim(line))
		case p.Time.Before(snap.At):
			fmt.Fprintln(w, display.Muted(line))
		default:
			fmt.Fprintln(w, line)
		}
	}

	if snap.Next != nil && prayer.DateKey(snap.Next.Time) != prayer.DateKey(snap.At) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Accent(fmt.Sprintf("Утре: %s %s (след %s)",
			snap.Next.Name(), snap.Next.Time.Format(goTimeFmt),
			prayer.FormatRemaining(time.Duration(*snap.RemainingSeconds)*time.Second))))
	}
	fmt.Fprintln(w)
}

type todayJSON struct {
	City     string            `json:"city"`
	Date     string            `json:"date"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current,omitempty"`
	Next     *nextJSON         `json:"next"`
	Progress *float64          `json:"progress,omitempty"`
}

type nextJSON struct {
	Prayer    string `json:"prayer"`
	Name      string `json:"name"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Seconds   int64  `json:"remaining_seconds"`
}

func printTodayJSON(s *session, prayers []prayer.Prayer, snap prayer.Snapshot, goTimeFmt string) error {
	timings := make(map[string]string, len(prayers))
	for _, p := range prayers {
		timings[p.Key.Identifier()] = p.Time.Format(goTimeFmt)
	}

	out := todayJSON{
		City:     snap.City,
		Date:     prayer.DateKey(snap.At),
		Timings:  timings,
		Next:     newNextJSON(snap, goTimeFmt),
		Progress: snap.Progress,
	}
	if snap.Previous != nil {
		out.Current = snap.Previous.Key.Identifier()
	}
	return printJSON(s.out, out)
}

func newNextJSON(snap prayer.Snapshot, goTimeFmt string) *nextJSON {
	if snap.Next == nil || snap.RemainingSeconds == nil {
		return nil
	}
	return &nextJSON{
		Prayer:    snap.Next.Key.Identifier(),
		Name:      snap.Next.Name(),
		Time:      snap.Next.Time.Format(goTimeFmt),
		Remaining: prayer.FormatRemaining(time.Duration(*snap.RemainingSeconds) * time.Second),
		Seconds:   *snap.RemainingSeconds,
	}
}
