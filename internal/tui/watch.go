// Package tui holds the interactive terminal views: the live countdown and
// the city and notification pickers.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Watch is the live countdown to the next prayer. It recomputes its
// snapshot once per second.
type Watch struct {
	city       string
	table      prayer.Lookup
	now        func() time.Time
	timeFormat string

	snap     prayer.Snapshot
	bar      progress.Model
	help     help.Model
	showList bool
	width    int
}

// NewWatch builds the countdown view. now supplies the current instant in
// the table's time zone.
func NewWatch(city string, table prayer.Lookup, now func() time.Time, timeFormat string) Watch {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	w := Watch{
		city:       city,
		table:      table,
		now:        now,
		timeFormat: timeFormat,
		bar:        bar,
		help:       help.New(),
	}
	w.refresh()
	return w
}

func (w *Watch) refresh() {
	w.snap = prayer.ComputeSnapshot(w.city, w.now(), w.table)
}

// Snapshot returns the state last rendered.
func (w Watch) Snapshot() prayer.Snapshot {
	return w.snap
}

func (w Watch) Init() tea.Cmd {
	return tickCmd()
}

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.help.Width = msg.Width
		w.bar.Width = min(max(msg.Width-12, 10), 60)
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return w, tea.Quit
		case key.Matches(msg, keys.Help):
			w.help.ShowAll = !w.help.ShowAll
		case key.Matches(msg, keys.List):
			w.showList = !w.showList
		}
		return w, nil

	case tickMsg:
		w.refresh()
		return w, tickCmd()
	}
	return w, nil
}

func (w Watch) View() string {
	var rows []string
	rows = append(rows, cityStyle.Render(w.city), "")

	if w.snap.Empty() {
		rows = append(rows, mutedStyle.Render(
			fmt.Sprintf("Няма данни за %s на %s.", w.city, prayer.DateKey(w.snap.At))))
	} else {
		rows = append(rows, w.countdownView()...)
	}

	if w.showList {
		rows = append(rows, "", w.listView())
	}

	rows = append(rows, "", w.help.View(keys))
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (w Watch) countdownView() []string {
	var rows []string
	if next := w.snap.Next; next != nil {
		rows = append(rows, nextStyle.Render(fmt.Sprintf("%s в %s", next.Name(), next.Time.Format(w.timeFormat))))
	} else {
		rows = append(rows, mutedStyle.Render("Няма следваща молитва в таблицата."))
	}
	if w.snap.RemainingSeconds != nil {
		rows = append(rows, countdownStyle.Render(prayer.FormatCountdown(*w.snap.RemainingSeconds)))
	}

	rows = append(rows, "", w.bar.ViewAs(w.snap.DisplayProgress()))

	if prev := w.snap.Previous; prev != nil && w.snap.ElapsedSeconds != nil {
		elapsed := time.Duration(*w.snap.ElapsedSeconds) * time.Second
		rows = append(rows, mutedStyle.Render(
			fmt.Sprintf("%s беше преди %s", prev.Name(), prayer.FormatRemaining(elapsed))))
	}
	return rows
}

func (w Watch) listView() string {
	rec, ok := w.table.Lookup(w.city, prayer.DateKey(w.snap.At))
	if !ok {
		return ""
	}
	var lines []string
	for _, p := range prayer.DayPrayers(rec, w.snap.At) {
		name := p.Name()
		line := name + strings.Repeat(" ", max(1, 12-lipgloss.Width(name))) + p.Time.Format(w.timeFormat)
		switch {
		case w.snap.Next != nil && p.Key == w.snap.Next.Key && p.Time.Equal(w.snap.Next.Time):
			line = nextStyle.Render("▸ " + line)
		case !p.Time.After(w.snap.At):
			line = mutedStyle.Render("  " + line)
		default:
			line = rowStyle.Render("  " + line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RunWatch runs the countdown full-screen until the user quits or ctx ends.
func RunWatch(ctx context.Context, w Watch) error {
	_, err := tea.NewProgram(w, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
