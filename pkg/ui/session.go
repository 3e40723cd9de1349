package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/vanderheijden86/gridchart/internal/datasource"
	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/config"
	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/export"
	"github.com/vanderheijden86/gridchart/pkg/grid"
	"github.com/vanderheijden86/gridchart/pkg/hooks"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// Session wires a loaded table to a grid, the event bus and a chart manager
// whose proxies render through pkg/export. The CLI uses it headless; the TUI
// drives it interactively.
type Session struct {
	Config config.Config
	Bus    *events.Bus
	Grid   *grid.Grid
	Charts *chart.Manager
	Themes *theme.Service
	Table  *datasource.Table
}

// NewSession builds a session over table.
func NewSession(cfg config.Config, table *datasource.Table) (*Session, error) {
	if table == nil {
		return nil, fmt.Errorf("session needs a table")
	}
	themes, err := cfg.ThemeService()
	if err != nil {
		return nil, fmt.Errorf("building theme service: %w", err)
	}

	bus := events.NewBus()
	g, err := grid.New(bus, table.Columns, table.Rows)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	themeNames := cfg.ChartThemes
	if len(themeNames) == 0 {
		themeNames = config.DefaultConfig().ChartThemes
	}
	svc := chart.Services{
		Ranges:     g,
		Bus:        bus,
		Grid:       g,
		Columns:    g,
		Themes:     themes,
		ThemeNames: themeNames,
	}
	factory := export.Factory(export.ProxyOptions{
		Bus:    bus,
		Themes: themes,
		Options: chart.Options{
			Width:  cfg.Export.Width,
			Height: cfg.Export.Height,
			Marker: cfg.Export.Marker,
			Legend: true,
		},
	})

	return &Session{
		Config: cfg,
		Bus:    bus,
		Grid:   g,
		Charts: chart.NewManager(g, svc, factory),
		Themes: themes,
		Table:  table,
	}, nil
}

// ChartRequest describes a chart to create.
type ChartRequest struct {
	// Columns selects the dimension (first non-numeric) and value columns.
	// Empty selects every displayed column.
	Columns   []string
	ChartType model.ChartType
	ThemeName string
	Pivot     bool
	Unlinked  bool
}

// CreateChart creates a chart spanning all rows of the requested columns.
func (s *Session) CreateChart(req ChartRequest) (*chart.Comp, error) {
	cols := req.Columns
	if len(cols) == 0 {
		for _, c := range s.Grid.DisplayedColumns() {
			cols = append(cols, c.ID)
		}
	}
	for _, id := range cols {
		if _, ok := s.Grid.Column(id); !ok {
			return nil, fmt.Errorf("%w: %s", grid.ErrUnknownColumn, id)
		}
	}

	chartType := req.ChartType
	if chartType == "" {
		chartType = s.Config.DefaultChartType
	}
	themeName := req.ThemeName
	if themeName == "" {
		themeName = s.Config.DefaultTheme
	}
	return s.Charts.CreateRangeChart(chart.DataModelParams{
		ChartType: chartType,
		ThemeName: themeName,
		Range: model.CellRange{
			StartRow:    0,
			EndRow:      -1,
			Columns:     cols,
			StartColumn: cols[0],
		},
		Pivot:               req.Pivot,
		SuppressChartRanges: s.Config.SuppressChartRanges,
		Unlinked:            req.Unlinked,
	})
}

// Reload swaps in a freshly loaded table. Layout state survives for columns
// that still exist; linked charts resynchronize through the grid events.
func (s *Session) Reload(table *datasource.Table) (datasource.TableDiff, error) {
	diff := datasource.DiffTables(s.Table, table)
	if err := s.Grid.SetColumns(table.Columns); err != nil {
		return diff, fmt.Errorf("reloading columns: %w", err)
	}
	s.Grid.SetRows(table.Rows)
	s.Table = table
	return diff, nil
}

// Palette returns the palette a chart is drawn with: the proxy's custom
// palette if set, else the palette of the chart's theme.
func (s *Session) Palette(comp *chart.Comp) model.Palette {
	if custom := comp.Proxy().CustomPalette(); custom != nil {
		return *custom
	}
	ctrl := comp.Controller()
	return s.Themes.Lookup(s.Themes.Ref(ctrl.ThemeName())).Palette
}

// Proxy returns the export proxy of a chart.
func Proxy(comp *chart.Comp) (*export.Proxy, bool) {
	p, ok := comp.Proxy().(*export.Proxy)
	return p, ok
}

// ExportChart writes a chart image to path. Hooks configured under hooksDir
// run around the write; an empty hooksDir runs none. The returned summary
// describes the hook runs, if there were any.
func (s *Session) ExportChart(comp *chart.Comp, path, format, hooksDir string) (string, error) {
	proxy, ok := Proxy(comp)
	if !ok {
		return "", errors.New("chart has no image renderer")
	}
	format, err := export.NormalizeFormat(format, path)
	if err != nil {
		return "", err
	}

	var exec *hooks.Executor
	if hooksDir != "" {
		ctrl := comp.Controller()
		exec, err = hooks.RunHooks(hooksDir, hooks.ExportContext{
			ExportPath:   path,
			ExportFormat: format,
			ChartID:      ctrl.ChartID(),
			ChartType:    string(ctrl.ChartType()),
			RowCount:     s.Grid.RowCount(),
			Timestamp:    time.Now(),
		}, false)
		if err != nil {
			return "", fmt.Errorf("loading hooks: %w", err)
		}
	}
	if exec == nil {
		return "", proxy.SaveChartImage(path, format)
	}

	if err := exec.RunPreExport(); err != nil {
		return exec.Summary(), err
	}
	if err := proxy.SaveChartImage(path, format); err != nil {
		return exec.Summary(), err
	}
	err = exec.RunPostExport()
	return exec.Summary(), err
}

// Close destroys every chart.
func (s *Session) Close() {
	s.Charts.DestroyAll()
}
