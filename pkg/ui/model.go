// Package ui implements gc's terminal interface: a grid table, a chart pane
// for the active chart and a column side panel, driven by Bubble Tea.
package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/gridchart/internal/datasource"
	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/debug"
	"github.com/vanderheijden86/gridchart/pkg/grid"
	"github.com/vanderheijden86/gridchart/pkg/metrics"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/watcher"
)

// focus represents which UI element has keyboard focus
type focus int

const (
	focusGrid focus = iota
	focusPanel
	focusHelp
)

// FileChangedMsg is sent when the data file changes on disk.
type FileChangedMsg struct {
	Change watcher.Change
}

// WatchErrorMsg carries a watcher failure into the update loop.
type WatchErrorMsg struct{ Err error }

// dataReloadedMsg carries the result of reloading the data source.
type dataReloadedMsg struct {
	table *datasource.Table
	err   error
}

// statusMsg reports the outcome of a background command.
type statusMsg struct {
	text string
	err  error
}

// Options configures the TUI beyond the session.
type Options struct {
	// Watcher, when set, triggers reloads through Reload.
	Watcher *watcher.Watcher
	// Reload loads the data source again.
	Reload func() (*datasource.Table, error)
	// ExportDir is where 'e' writes images (defaults to the working dir).
	ExportDir string
	// HooksDir holds .gc/hooks.yaml for exports. Empty disables hooks.
	HooksDir string
}

// Model is the Bubble Tea model of gc.
type Model struct {
	session *Session
	opts    Options
	keys    keyMap
	help    help.Model
	theme   Theme

	width  int
	height int
	focus  focus

	cursorRow   int
	cursorCol   int
	active      int
	panelCursor int

	helpText  string
	status    string
	statusErr bool
}

// NewModel creates the TUI over a session.
func NewModel(s *Session, opts Options) Model {
	return Model{
		session: s,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		theme:   DefaultTheme(lipgloss.DefaultRenderer()),
		width:   120,
		height:  30,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return WatchFileCmd(m.opts.Watcher)
	}
	return nil
}

// WatchFileCmd waits for the next change reported by w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Change: <-w.Changed()}
	}
}

func reloadCmd(load func() (*datasource.Table, error)) tea.Cmd {
	return func() tea.Msg {
		table, err := load()
		return dataReloadedMsg{table: table, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case FileChangedMsg:
		debug.Log("reloading data", "path", msg.Change.Path, "size", msg.Change.Size, "mode", msg.Change.Mode)
		var cmds []tea.Cmd
		if m.opts.Reload != nil {
			cmds = append(cmds, reloadCmd(m.opts.Reload))
		}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case dataReloadedMsg:
		if msg.err != nil {
			return m.setError(fmt.Errorf("reload: %w", msg.err)), nil
		}
		diff, err := m.session.Reload(msg.table)
		if err != nil {
			return m.setError(err), nil
		}
		m.clampCursor()
		return m.setStatus("reloaded: " + diff.Summary()), nil

	case WatchErrorMsg:
		return m.setError(msg.Err), nil

	case statusMsg:
		if msg.err != nil {
			return m.setError(msg.err), nil
		}
		return m.setStatus(msg.text), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && !(m.focus == focusHelp && msg.String() == "q") {
		return m, tea.Quit
	}

	switch m.focus {
	case focusHelp:
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" || msg.String() == "q" {
			m.focus = focusGrid
		}
		return m, nil
	case focusPanel:
		return m.handlePanelKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.session.Grid
	cols := g.DisplayedColumns()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursorRow--
	case key.Matches(msg, m.keys.Down):
		m.cursorRow++
	case key.Matches(msg, m.keys.Left):
		m.cursorCol--
	case key.Matches(msg, m.keys.Right):
		m.cursorCol++

	case key.Matches(msg, m.keys.MoveLeft), key.Matches(msg, m.keys.MoveRight):
		col, ok := m.cursorColumn()
		if !ok {
			break
		}
		delta := 1
		if key.Matches(msg, m.keys.MoveLeft) {
			delta = -1
		}
		if err := g.MoveColumnBy(col.ID, delta); err != nil {
			return m.setError(err), nil
		}
		m.cursorCol = g.DisplayIndex(col.ID)

	case key.Matches(msg, m.keys.Pin):
		col, ok := m.cursorColumn()
		if !ok {
			break
		}
		next := nextPinned(col.Pinned)
		if err := g.SetPinned(col.ID, next); err != nil {
			return m.setError(err), nil
		}
		m.cursorCol = g.DisplayIndex(col.ID)
		m = m.setStatus(fmt.Sprintf("%s pinned %s", col.DisplayName(), pinnedLabel(next)))

	case key.Matches(msg, m.keys.Hide):
		col, ok := m.cursorColumn()
		if !ok || len(cols) <= 1 {
			break
		}
		if err := g.SetVisible(col.ID, false); err != nil {
			return m.setError(err), nil
		}
		m = m.setStatus("hid " + col.DisplayName())

	case key.Matches(msg, m.keys.ShowAll):
		shown := 0
		for _, c := range g.Columns() {
			if c.Hidden {
				if err := g.SetVisible(c.ID, true); err != nil {
					return m.setError(err), nil
				}
				shown++
			}
		}
		m = m.setStatus(fmt.Sprintf("showing %d hidden columns", shown))

	case key.Matches(msg, m.keys.RowGroup):
		col, ok := m.cursorColumn()
		if !ok {
			break
		}
		if err := g.SetRowGroup(col.ID, !col.RowGroup); err != nil {
			return m.setError(err), nil
		}

	case key.Matches(msg, m.keys.Inc), key.Matches(msg, m.keys.Dec):
		step := 1.0
		if key.Matches(msg, m.keys.Dec) {
			step = -1
		}
		return m.bumpCell(step), nil

	case key.Matches(msg, m.keys.Toggle):
		m.toggleUserColumn()

	case key.Matches(msg, m.keys.Create):
		return m.createChart(), nil

	case key.Matches(msg, m.keys.Detach):
		if comp, ok := m.activeChart(); ok {
			ctrl := comp.Controller()
			ctrl.DetachChartRange()
			state := "linked"
			if !ctrl.IsChartLinked() {
				state = "detached"
			}
			m = m.setStatus("chart " + state)
		}

	case key.Matches(msg, m.keys.Type):
		if comp, ok := m.activeChart(); ok {
			ctrl := comp.Controller()
			ctrl.SetChartType(ctrl.ChartType().Next())
			m = m.setStatus("type " + string(ctrl.ChartType()))
		}

	case key.Matches(msg, m.keys.Theme):
		if comp, ok := m.activeChart(); ok {
			ctrl := comp.Controller()
			name := nextTheme(ctrl.Themes(), ctrl.ThemeName())
			ctrl.SetChartThemeName(name)
			m = m.setStatus("theme " + name)
		}

	case key.Matches(msg, m.keys.Grow), key.Matches(msg, m.keys.Shrink):
		if comp, ok := m.activeChart(); ok {
			delta := 1
			if key.Matches(msg, m.keys.Shrink) {
				delta = -1
			}
			return m.resizeChartRows(comp, delta), nil
		}

	case key.Matches(msg, m.keys.Next):
		if n := len(m.session.Charts.Charts()); n > 0 {
			m.active = (m.active + 1) % n
			m.panelCursor = 0
		}

	case key.Matches(msg, m.keys.Panel):
		if _, ok := m.activeChart(); ok {
			m.focus = focusPanel
		}

	case key.Matches(msg, m.keys.Export):
		if comp, ok := m.activeChart(); ok {
			return m, m.exportCmd(comp)
		}

	case key.Matches(msg, m.keys.Copy):
		if comp, ok := m.activeChart(); ok {
			return m, copyCmd(comp)
		}

	case key.Matches(msg, m.keys.Help):
		m.focus = focusHelp
		m.helpText = renderHelp(m.width)
	}

	m.clampCursor()
	return m, nil
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	comp, ok := m.activeChart()
	if !ok {
		m.focus = focusGrid
		return m, nil
	}
	entries := panelEntries(comp.Controller())

	switch {
	case key.Matches(msg, m.keys.Panel), msg.String() == "esc":
		m.focus = focusGrid
	case key.Matches(msg, m.keys.Up):
		m.panelCursor--
	case key.Matches(msg, m.keys.Down):
		m.panelCursor++
	case key.Matches(msg, m.keys.Toggle):
		if m.panelCursor < len(entries) {
			e := entries[m.panelCursor]
			updated := e.state
			if e.dimension {
				updated.Selected = true
			} else {
				updated.Selected = !updated.Selected
			}
			comp.Controller().UpdateForPanelChange(updated)
		}
	case key.Matches(msg, m.keys.Detach), key.Matches(msg, m.keys.Type), key.Matches(msg, m.keys.Theme):
		// Chart-wide actions work from the panel too
		m.focus = focusGrid
		next, cmd := m.handleGridKey(msg)
		nm := next.(Model)
		nm.focus = focusPanel
		return nm, cmd
	}
	m.panelCursor = clamp(m.panelCursor, 0, len(entries)-1)
	return m, nil
}

// bumpCell adds step to the numeric cell under the cursor.
func (m Model) bumpCell(step float64) Model {
	col, ok := m.cursorColumn()
	if !ok || !col.Numeric {
		return m
	}
	g := m.session.Grid
	if g.RowCount() == 0 {
		return m
	}
	v, _ := model.NumberValue(g.Value(m.cursorRow, col.ID))
	next := strconv.FormatFloat(v+step, 'f', -1, 64)
	if err := g.SetValue(m.cursorRow, col.ID, next); err != nil {
		return m.setError(err)
	}
	return m
}

// toggleUserColumn adds or removes the cursor column from the interactive
// selection used to create charts.
func (m Model) toggleUserColumn() {
	col, ok := m.cursorColumn()
	if !ok {
		return
	}
	g := m.session.Grid
	sel, _ := g.UserRange()
	cols := sel.Columns
	if i := indexOf(cols, col.ID); i >= 0 {
		cols = append(cols[:i:i], cols[i+1:]...)
	} else {
		cols = append(cols, col.ID)
	}
	if len(cols) == 0 {
		g.SetCellRanges(grid.UserOwner, nil)
		return
	}
	g.SelectUserRange(model.CellRange{
		StartRow:    0,
		EndRow:      max(g.RowCount()-1, 0),
		Columns:     cols,
		StartColumn: cols[0],
	})
}

// createChart builds a chart from the interactive selection, or from every
// displayed column when nothing is selected.
func (m Model) createChart() Model {
	g := m.session.Grid
	var cols []string
	if sel, ok := g.UserRange(); ok {
		cols = sel.Columns
	}
	comp, err := m.session.CreateChart(ChartRequest{Columns: cols})
	if err != nil {
		return m.setError(err)
	}
	g.SetCellRanges(grid.UserOwner, nil)
	m.active = len(m.session.Charts.Charts()) - 1
	m.panelCursor = 0
	debug.Log("chart created", "chart", comp.Controller().ChartID())
	return m.setStatus("created " + string(comp.Controller().ChartType()) + " chart")
}

func (m Model) exportCmd(comp *chart.Comp) tea.Cmd {
	cfg := m.session.Config.Export
	format := cfg.Format
	if format == "" {
		format = "png"
	}
	dir := m.opts.ExportDir
	if dir == "" {
		dir = cfg.Dir
	}
	path := filepath.Join(dir, comp.Controller().ChartID()+"."+format)
	session, hooksDir := m.session, m.opts.HooksDir
	return func() tea.Msg {
		summary, err := session.ExportChart(comp, path, format, hooksDir)
		if err != nil {
			return statusMsg{err: err}
		}
		text := "exported " + path
		if summary != "" {
			text += " · " + firstLine(summary)
		}
		return statusMsg{text: text}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func copyCmd(comp *chart.Comp) tea.Cmd {
	proxy := comp.Proxy()
	return func() tea.Msg {
		url, err := proxy.ChartImageDataURL("png")
		if err != nil {
			return statusMsg{err: err}
		}
		if err := clipboard.WriteAll(url); err != nil {
			return statusMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return statusMsg{text: fmt.Sprintf("copied image data URL (%d bytes)", len(url))}
	}
}

// resizeChartRows moves the end row of the chart's grid ranges by delta, the
// way dragging a range handle would. The controller picks the new bounds up
// from the range event.
func (m Model) resizeChartRows(comp *chart.Comp, delta int) Model {
	g := m.session.Grid
	id := comp.Controller().ChartID()
	ranges := g.CellRanges(id)
	if len(ranges) == 0 {
		return m.setStatus("chart has no grid ranges (detached?)")
	}
	start, end := ranges[0].StartRow, ranges[0].EndRow
	next := clamp(end+delta, start, g.RowCount()-1)
	if next == end {
		return m
	}
	if err := g.ResizeChartRange(id, next); err != nil {
		return m.setError(err)
	}
	return m.setStatus(fmt.Sprintf("chart rows %d-%d", start+1, next+1))
}

func (m Model) activeChart() (*chart.Comp, bool) {
	charts := m.session.Charts.Charts()
	if len(charts) == 0 {
		return nil, false
	}
	return charts[clamp(m.active, 0, len(charts)-1)], true
}

func (m Model) cursorColumn() (model.Column, bool) {
	cols := m.session.Grid.DisplayedColumns()
	if len(cols) == 0 {
		return model.Column{}, false
	}
	return cols[clamp(m.cursorCol, 0, len(cols)-1)], true
}

func (m *Model) clampCursor() {
	g := m.session.Grid
	m.cursorRow = clamp(m.cursorRow, 0, g.RowCount()-1)
	m.cursorCol = clamp(m.cursorCol, 0, len(g.DisplayedColumns())-1)
	if n := len(m.session.Charts.Charts()); n > 0 {
		m.active = clamp(m.active, 0, n-1)
	}
}

func (m Model) setStatus(s string) Model {
	m.status, m.statusErr = s, false
	return m
}

func (m Model) setError(err error) Model {
	debug.Log("ui error", "err", err)
	m.status, m.statusErr = err.Error(), true
	return m
}

func nextPinned(p model.Pinned) model.Pinned {
	switch p {
	case model.PinnedNone:
		return model.PinnedLeft
	case model.PinnedLeft:
		return model.PinnedRight
	default:
		return model.PinnedNone
	}
}

func pinnedLabel(p model.Pinned) string {
	if p == model.PinnedNone {
		return "off"
	}
	return string(p)
}

func nextTheme(names []string, current string) string {
	if len(names) == 0 {
		return current
	}
	i := indexOf(names, current)
	return names[(i+1)%len(names)]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.focus == focusHelp {
		return m.helpText
	}

	bodyHeight := max(m.height-3, 5)
	ratio := m.session.Config.UI.SplitRatio
	if ratio <= 0 {
		ratio = 0.5
	}
	gridWidth := max(int(float64(m.width)*ratio), 20)
	chartWidth := max(m.width-gridWidth, 20)

	gridPane := m.theme.FocusedPanel
	if m.focus != focusGrid {
		gridPane = m.theme.Panel
	}
	left := gridPane.Width(gridWidth - 2).Height(bodyHeight - 2).
		Render(m.renderGrid(gridWidth-2, bodyHeight-2))

	right := m.renderRight(chartWidth, bodyHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		body,
		m.renderStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) renderTitle() string {
	src := m.session.Table.Source.Location()
	if src == "" {
		src = "(memory)"
	}
	title := fmt.Sprintf("gc · %s · %d rows · %d charts",
		filepath.Base(src), m.session.Grid.RowCount(), len(m.session.Charts.Charts()))
	return m.theme.Title.Render(truncate(title, m.width))
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return m.theme.MutedText.Render(" ")
	}
	if m.statusErr {
		return m.theme.StatusError.Render(truncate(m.status, m.width))
	}
	return m.theme.StatusText.Render(truncate(m.status, m.width))
}

func (m Model) renderRight(width, height int) string {
	comp, ok := m.activeChart()
	if !ok {
		msg := "No chart. Select columns with space, then press c."
		return m.theme.Panel.Width(width - 2).Height(height - 2).Render(m.theme.MutedText.Render(msg))
	}

	showPanel := m.session.Config.UI.ShowPanel || m.focus == focusPanel
	chartHeight := height
	var panel string
	if showPanel {
		panel = m.renderPanel(comp, width-2)
		chartHeight = max(height-lipgloss.Height(panel)-2, 6)
	}

	chartView := m.theme.Panel.Width(width - 2).Height(chartHeight - 2).
		Render(renderChart(m.theme, m.session, comp, width-2, chartHeight-2))
	if !showPanel {
		return chartView
	}
	style := m.theme.Panel
	if m.focus == focusPanel {
		style = m.theme.FocusedPanel
	}
	return lipgloss.JoinVertical(lipgloss.Left, chartView, style.Width(width-2).Render(panel))
}

// Session returns the session behind the model.
func (m Model) Session() *Session {
	return m.session
}

// Status returns the current status line text.
func (m Model) Status() string {
	return m.status
}
