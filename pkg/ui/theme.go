package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// SeriesColor returns a chart palette fill for terminal rendering. Palette
// colors are only meaningful with at least 256 colors; below that series
// fall back to the basic ANSI set so they stay distinguishable.
func SeriesColor(hex string, index int) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(1 + index%6)
	}
	return lipgloss.Color(hex)
}

// Theme holds the pre-computed styles of the TUI.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Range     lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Base          lipgloss.Style
	Header        lipgloss.Style
	HeaderPinned  lipgloss.Style
	Cell          lipgloss.Style
	CellNumeric   lipgloss.Style
	CellInRange   lipgloss.Style
	CursorCell    lipgloss.Style
	Panel         lipgloss.Style
	FocusedPanel  lipgloss.Style
	Title         lipgloss.Style
	MutedText     lipgloss.Style
	StatusText    lipgloss.Style
	StatusError   lipgloss.Style
	PanelSelected lipgloss.Style
	PanelCursor   lipgloss.Style
}

// DefaultTheme returns the adaptive Dracula-inspired theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Range:     lipgloss.AdaptiveColor{Light: "#D1ECF1", Dark: "#1A3344"},
		Warning:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true)
	t.HeaderPinned = t.Header.Underline(true)
	t.Cell = r.NewStyle()
	t.CellNumeric = r.NewStyle().Foreground(t.Subtext)
	t.CellInRange = r.NewStyle().Background(t.Range)
	t.CursorCell = r.NewStyle().Background(t.Highlight).Bold(true)

	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	t.FocusedPanel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)

	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.StatusText = r.NewStyle().Foreground(t.Subtext)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.PanelSelected = r.NewStyle().Foreground(t.Primary)
	t.PanelCursor = r.NewStyle().Background(t.Highlight).Bold(true)
	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
