package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/gridchart/pkg/model"
)

const (
	minColWidth = 4
	maxColWidth = 18
)

// columnWidths sizes each displayed column to its widest value (header
// included), bounded to [minColWidth, maxColWidth].
func columnWidths(cols []model.Column, rows []model.Row) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		w := runewidth.StringWidth(headerLabel(c))
		for _, r := range rows {
			w = max(w, runewidth.StringWidth(r[c.ID]))
		}
		widths[i] = clamp(w, minColWidth, maxColWidth)
	}
	return widths
}

// headerLabel decorates a header with its layout state: a pin marker and a
// group marker.
func headerLabel(c model.Column) string {
	label := c.DisplayName()
	switch c.Pinned {
	case model.PinnedLeft:
		label = "⇤" + label
	case model.PinnedRight:
		label += "⇥"
	}
	if c.RowGroup {
		label = "▸" + label
	}
	return label
}

// renderGrid draws the displayed columns and as many rows as fit, scrolling
// so the cursor stays visible. Cells inside any owner's range are tinted.
func (m Model) renderGrid(width, height int) string {
	g := m.session.Grid
	cols := g.DisplayedColumns()
	if len(cols) == 0 {
		return m.theme.MutedText.Render("all columns hidden (H shows them)")
	}
	rows := g.Rows()
	widths := columnWidths(cols, rows)
	ranges := g.AllCellRanges()

	// Horizontal scroll: start at the first column that keeps the cursor on
	// screen.
	first := 0
	for first < m.cursorCol && spanWidth(widths[first:m.cursorCol+1]) > width {
		first++
	}

	var b strings.Builder
	var header []string
	used := 0
	last := first
	for i := first; i < len(cols); i++ {
		if used+widths[i]+1 > width && i > first {
			break
		}
		style := m.theme.Header
		if cols[i].Pinned != model.PinnedNone {
			style = m.theme.HeaderPinned
		}
		header = append(header, style.Render(fitCell(headerLabel(cols[i]), widths[i], false)))
		used += widths[i] + 1
		last = i
	}
	b.WriteString(strings.Join(header, " "))

	visible := max(height-1, 1)
	top := 0
	if m.cursorRow >= visible {
		top = m.cursorRow - visible + 1
	}
	for r := top; r < len(rows) && r < top+visible; r++ {
		b.WriteByte('\n')
		cells := make([]string, 0, last-first+1)
		for i := first; i <= last; i++ {
			c := cols[i]
			text := fitCell(rows[r][c.ID], widths[i], c.Numeric)
			style := m.theme.Cell
			if c.Numeric {
				style = m.theme.CellNumeric
			}
			if inAnyRange(ranges, r, c.ID) {
				style = style.Inherit(m.theme.CellInRange)
			}
			if r == m.cursorRow && i == m.cursorCol && m.focus == focusGrid {
				style = m.theme.CursorCell
			}
			cells = append(cells, style.Render(text))
		}
		b.WriteString(strings.Join(cells, " "))
	}
	if len(rows) == 0 {
		b.WriteString("\n" + m.theme.MutedText.Render("no rows"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

func spanWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w + 1
	}
	return total
}

func inAnyRange(ranges []model.CellRange, row int, colID string) bool {
	for _, r := range ranges {
		if r.Contains(row, colID) {
			return true
		}
	}
	return false
}
