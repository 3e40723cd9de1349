// Package chart keeps a chart's configuration synchronized with the grid's
// selection state.
//
// A DataModel owns the chart's derived state (dimension, value columns, cell
// ranges, series data). A Controller wraps one DataModel and mediates between
// it, the grid's range service and the event bus: grid events flow in and are
// forwarded to the model unless the chart is detached, the recomputed ranges
// are written back to the range service, and exactly one outward event is
// raised per logical change.
package chart

import (
	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// RangeService owns the grid's cell range selection. Writes are keyed by
// owner so charts never clobber each other's ranges; an empty slice releases
// the owner's claim.
type RangeService interface {
	SetCellRanges(owner string, ranges []model.CellRange)
}

// RangeReader is implemented by range services that can report an owner's
// current ranges. Controllers use it to pick up ranges the user edited.
type RangeReader interface {
	CellRanges(owner string) []model.CellRange
}

// EventBus is the synchronous broadcast bus.
type EventBus interface {
	Subscribe(eventType string, handler events.Handler) events.Subscription
	Dispatch(ev events.Event)
}

// ThemeLookup resolves theme references to themes.
type ThemeLookup interface {
	Lookup(ref theme.ThemeRef) theme.Theme
}

// GridSource is the live grid state a DataModel derives from.
type GridSource interface {
	DisplayedColumns() []model.Column
	RowCount() int
	Value(row int, colID string) string
	RowGroupColumns() []string
}

// Services is the capability set a Controller is built with. Bus is
// required; Themes is required for Palettes. The rest are optional.
type Services struct {
	Ranges     RangeService
	Bus        EventBus
	Grid       events.GridAPI
	Columns    events.ColumnAPI
	Themes     ThemeLookup
	ThemeNames []string
}

// Options are the rendering options a proxy exposes.
type Options struct {
	Title      string  `json:"title,omitempty"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Marker     string  `json:"marker,omitempty"`
	MarkerSize float64 `json:"marker_size,omitempty"`
	Legend     bool    `json:"legend"`
}

// ChartProxy is the handle on a rendered chart. It is created by a factory
// after the controller exists and attached with SetChartProxy.
type ChartProxy interface {
	ChartOptions() Options
	Chart() any
	ChartImageDataURL(format string) (string, error)
	CustomPalette() *model.Palette
	IsStockTheme(name string) bool
	LookupCustomChartTheme(name string) theme.ThemeRef
	RaiseChartOptionsChangedEvent()
	Update(data ChartData)
}

// ChartModel is a read view of a chart assembled on demand.
type ChartModel struct {
	ChartID      string                              `json:"chart_id"`
	ChartType    model.ChartType                     `json:"chart_type"`
	ThemeName    string                              `json:"theme_name"`
	Options      Options                             `json:"options"`
	CellRange    model.RangeParams                   `json:"cell_range"`
	Chart        any                                 `json:"-"`
	ImageDataURL func(format string) (string, error) `json:"-"`
}

// Category is one point on the category axis.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Series is one value column's data.
type Series struct {
	ColID  string    `json:"col_id"`
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartData is what a proxy needs to draw a chart.
type ChartData struct {
	ChartID    string          `json:"chart_id"`
	ChartType  model.ChartType `json:"chart_type"`
	ThemeName  string          `json:"theme_name"`
	Dimension  string          `json:"dimension"`
	Categories []Category      `json:"categories"`
	Series     []Series        `json:"series"`
	Grouped    bool            `json:"grouped,omitempty"`
}
