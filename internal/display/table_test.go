package display

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTable_EmptyHeaders(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("Render() with no headers = %q, want empty", got)
	}
}

func TestTable_Render(t *testing.T) {
	SetEnabled(false)

	tbl := NewTable("Дата", "Зора", "Нощ")
	tbl.AddRow("чт 06.03", "05:14", "19:30")
	tbl.AddRow("пт 07.03", "05:12", "19:31")

	got := tbl.Render()
	for _, want := range []string{"Дата", "Зора", "Нощ", "─", "чт 06.03", "19:31"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTable_CyrillicAlignment(t *testing.T) {
	SetEnabled(false)

	tbl := NewTable("Молитва", "Час")
	tbl.AddRow("Зора", "05:14")
	tbl.AddRow("Следобяд", "15:30")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	w := lipgloss.Width(lines[0])
	for i, l := range lines[1:] {
		if lipgloss.Width(l) != w {
			t.Errorf("line %d width = %d, want %d:\n%s", i+1, lipgloss.Width(l), w, l)
		}
	}
}

func TestTable_HighlightAndMute(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	tbl := NewTable("Молитва", "Час")
	tbl.AddRow("Зора", "05:14")
	tbl.AddRow("Изгрев", "06:50")
	tbl.Mute(0)
	tbl.Highlight(1)

	lines := strings.Split(tbl.Render(), "\n")
	if !strings.Contains(lines[2], gray) {
		t.Errorf("muted row = %q, want gray", lines[2])
	}
	if !strings.Contains(lines[3], bold+cyan) {
		t.Errorf("highlighted row = %q, want accent", lines[3])
	}
}

func TestFormatRow(t *testing.T) {
	if got := formatRow([]string{"Обяд", "де"}, []int{6, 3}); got != "Обяд    де " {
		t.Errorf("formatRow = %q", got)
	}
}

func TestFormatRow_MissingCells(t *testing.T) {
	if got := formatRow([]string{"a"}, []int{3, 5}); got != "a         " {
		t.Errorf("formatRow = %q", got)
	}
}
