package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders an aligned text table. Column widths are measured in
// terminal cells, so Cyrillic headers and emoji line up.
type Table struct {
	headers   []string
	rows      [][]string
	highlight int
	muted     map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		highlight: -1,
		muted:     map[int]bool{},
	}
}

// AddRow appends a row. Missing trailing cells render empty.
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Highlight marks the 0-based row rendered with Accent. -1 clears it.
func (t *Table) Highlight(idx int) {
	t.highlight = idx
}

// Mute marks a 0-based row rendered with Muted.
func (t *Table) Mute(idx int) {
	t.muted[idx] = true
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render produces the table with a two-space indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		switch {
		case i == t.highlight:
			line = Accent(line)
		case t.muted[i]:
			line = Muted(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
	}
	return strings.Join(parts, "  ")
}
