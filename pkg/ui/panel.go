package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// panelEntry is one row of the column panel.
type panelEntry struct {
	state     model.ColState
	dimension bool
}

// panelEntries lists the dimension columns followed by the value columns.
func panelEntries(ctrl *chart.Controller) []panelEntry {
	dims, values := ctrl.ColStateForMenu()
	entries := make([]panelEntry, 0, len(dims)+len(values))
	for _, d := range dims {
		entries = append(entries, panelEntry{state: d, dimension: true})
	}
	for _, v := range values {
		entries = append(entries, panelEntry{state: v})
	}
	return entries
}

// renderPanel draws the column panel: a radio list of categories, a
// checkbox list of series, and the theme palettes.
func (m Model) renderPanel(comp *chart.Comp, width int) string {
	ctrl := comp.Controller()
	entries := panelEntries(ctrl)

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Categories"))
	seenValues := false
	for i, e := range entries {
		if !e.dimension && !seenValues {
			seenValues = true
			b.WriteString("\n" + m.theme.Title.Render("Series"))
		}
		mark := "[ ]"
		switch {
		case e.dimension && e.state.Selected:
			mark = "(•)"
		case e.dimension:
			mark = "( )"
		case e.state.Selected:
			mark = "[x]"
		}
		line := truncate(mark+" "+e.state.DisplayName, width)
		style := m.theme.Base
		if e.state.Selected {
			style = m.theme.PanelSelected
		}
		if m.focus == focusPanel && i == m.panelCursor {
			style = m.theme.PanelCursor
		}
		b.WriteString("\n" + style.Render(line))
	}

	b.WriteString("\n" + m.theme.Title.Render("Themes"))
	names := ctrl.Themes()
	for i, pal := range ctrl.Palettes() {
		if i >= len(names) {
			break
		}
		var swatches strings.Builder
		for j, fill := range pal.Fills {
			if j >= 6 {
				break
			}
			swatches.WriteString(lipgloss.NewStyle().Foreground(SeriesColor(fill, j)).Render("■"))
		}
		label := names[i]
		if label == ctrl.ThemeName() {
			label = m.theme.PanelSelected.Render(label + " ✓")
		}
		b.WriteString("\n" + swatches.String() + " " + label)
	}
	return b.String()
}
