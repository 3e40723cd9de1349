package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# gc

Charts follow the grid. Reorder, pin, hide or group a column and every
linked chart recomputes its category, its series and the ranges it
highlights. Edit a value and charts refresh their data only.

## Grid

| Key | Action |
|-----|--------|
| ↑ ↓ ← → | move the cursor |
| < > | move the column |
| p | pin the column (left, right, off) |
| h / H | hide the column / show all |
| g | toggle row grouping |
| + / - | change a numeric cell |
| space | add the column to the selection |

## Charts

| Key | Action |
|-----|--------|
| c | chart the selection (or every column) |
| n | next chart |
| d | detach from the grid, or reattach |
| t | next chart type |
| T | next theme |
| [ / ] | chart one row less / more |
| tab | column panel |
| e | export image |
| y | copy image as data URL |

A detached chart keeps its data while the grid changes. Reattaching picks
up everything that changed meanwhile.

Press **?** or **esc** to close.
`

// renderHelp renders the help screen as markdown, falling back to the raw
// text when no renderer can be built.
func renderHelp(width int) string {
	wrap := 80
	if width > 0 && width < wrap {
		wrap = width
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
