package chart

import (
	"github.com/vanderheijden86/gridchart/pkg/debug"
	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/metrics"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// Controller mediates between one DataModel, the grid's range service and the
// event bus.
//
// All methods must be called from the goroutine that dispatches bus events;
// the controller holds no locks of its own.
type Controller struct {
	model *DataModel
	svc   Services
	proxy ChartProxy

	subs        events.Subscriptions
	initialized bool
	destroyed   bool
}

// NewController binds a controller to a pre-built model. Call Init to start
// listening for grid events.
func NewController(m *DataModel, svc Services) *Controller {
	if m == nil {
		panic("chart: NewController called with nil data model")
	}
	if svc.Bus == nil {
		panic("chart: NewController called without an event bus")
	}
	return &Controller{model: m, svc: svc}
}

// Init pushes the initial range without raising an update and registers the
// grid listeners. It is a no-op after the first call.
func (c *Controller) Init() {
	if c.initialized {
		return
	}
	c.initialized = true

	c.SetChartRange(true)

	c.subs.Add(c.svc.Bus.Subscribe(events.RangeSelectionChanged, func(ev events.Event) {
		e, ok := ev.(events.RangeSelectionChangedEvent)
		if ok && e.ID != "" && e.ID == c.model.ChartID() {
			c.UpdateForRangeChange()
		}
	}))

	if c.model.IsDetached() && c.svc.Ranges != nil {
		c.svc.Ranges.SetCellRanges(c.model.ChartID(), nil)
	}

	gridChange := func(events.Event) { c.UpdateForGridChange() }
	for _, t := range []string{
		events.ColumnMoved,
		events.ColumnPinned,
		events.ColumnVisible,
		events.ColumnRowGroupChanged,
		events.ModelUpdated,
	} {
		c.subs.Add(c.svc.Bus.Subscribe(t, gridChange))
	}
	c.subs.Add(c.svc.Bus.Subscribe(events.CellValueChanged, func(events.Event) {
		c.UpdateForDataChange()
	}))
}

// UpdateForGridChange runs the grid-change cycle: recompute ranges, write
// them to the range service and raise one chartUpdated. Skipped while
// detached.
func (c *Controller) UpdateForGridChange() {
	if c.model.IsDetached() {
		debug.Log("grid change ignored, chart detached", "chart", c.model.ChartID())
		return
	}
	defer metrics.Timer(metrics.GridSync)()

	c.model.UpdateCellRanges(nil)
	c.SetChartRange(false)
}

// UpdateForDataChange refreshes series data after cell edits and raises one
// chartUpdated. Skipped while detached.
func (c *Controller) UpdateForDataChange() {
	if c.model.IsDetached() {
		return
	}
	defer metrics.Timer(metrics.DataRefresh)()

	c.model.UpdateData()
	c.raiseChartUpdatedEvent()
}

// UpdateForRangeChange handles the user editing this chart's range in the
// grid: the edited range is adopted, the grid-change cycle runs, and a
// chartRangeSelectionChanged follows.
func (c *Controller) UpdateForRangeChange() {
	if c.model.IsDetached() {
		return
	}
	reader, ok := c.svc.Ranges.(RangeReader)
	debug.LogIf(!ok, "range edit not adopted, range service is write-only", "chart", c.model.ChartID())
	if ok {
		c.model.AdoptCellRanges(reader.CellRanges(c.model.ChartID()))
	}
	c.UpdateForGridChange()
	c.raiseChartRangeSelectionChangedEvent()
}

// UpdateForPanelChange applies a column selection edit made in the chart's
// side panel. Panel edits always affect the user-visible range, so both
// chartUpdated and chartRangeSelectionChanged are raised, in that order.
func (c *Controller) UpdateForPanelChange(updated model.ColState) {
	c.model.UpdateCellRanges(&updated)
	c.SetChartRange(false)
	c.raiseChartRangeSelectionChangedEvent()
}

// ChartModel assembles a read view of the chart. ImageDataURL is bound to
// the proxy attached at the time of the call.
func (c *Controller) ChartModel() ChartModel {
	proxy := c.requireProxy("ChartModel")
	return ChartModel{
		ChartID:   c.model.ChartID(),
		ChartType: c.model.ChartType(),
		ThemeName: c.ThemeName(),
		Options:   proxy.ChartOptions(),
		CellRange: c.model.CellRangeParams(),
		Chart:     proxy.Chart(),
		ImageDataURL: func(format string) (string, error) {
			return proxy.ChartImageDataURL(format)
		},
	}
}

// ChartData returns the model's current series data.
func (c *Controller) ChartData() ChartData {
	return c.model.ChartData()
}

// ChartID returns the chart's id.
func (c *Controller) ChartID() string {
	return c.model.ChartID()
}

// ChartType returns the current chart type.
func (c *Controller) ChartType() model.ChartType {
	return c.model.ChartType()
}

// IsPivotChart reports whether the chart plots every numeric column.
func (c *Controller) IsPivotChart() bool {
	return c.model.IsPivotChart()
}

// IsGrouping reports whether values are aggregated per category.
func (c *Controller) IsGrouping() bool {
	return c.model.IsGrouping()
}

// ThemeName returns the current theme name.
func (c *Controller) ThemeName() string {
	return c.model.ChartThemeName()
}

// Themes returns the configured theme names in order.
func (c *Controller) Themes() []string {
	return append([]string(nil), c.svc.ThemeNames...)
}

// Palettes returns the palettes offered for this chart. A proxy with a custom
// palette yields exactly that palette; otherwise there is one palette per
// configured theme name, in configuration order.
func (c *Controller) Palettes() []model.Palette {
	proxy := c.requireProxy("Palettes")
	if custom := proxy.CustomPalette(); custom != nil {
		return []model.Palette{*custom}
	}
	if c.svc.Themes == nil {
		panic("chart: Palettes called without a theme lookup service")
	}

	palettes := make([]model.Palette, 0, len(c.svc.ThemeNames))
	for _, name := range c.svc.ThemeNames {
		var ref theme.ThemeRef
		if proxy.IsStockTheme(name) {
			ref = theme.ThemeRef{Name: name}
		} else {
			ref = proxy.LookupCustomChartTheme(name)
		}
		palettes = append(palettes, c.svc.Themes.Lookup(ref).Palette)
	}
	return palettes
}

// SetChartType changes the chart type and raises chartUpdated followed by an
// options-changed notification from the proxy. The proxy gets the new data
// first so the notification carries the new type.
func (c *Controller) SetChartType(t model.ChartType) {
	proxy := c.requireProxy("SetChartType")
	c.model.SetChartType(t)
	c.raiseChartUpdatedEvent()
	proxy.Update(c.ChartData())
	proxy.RaiseChartOptionsChangedEvent()
}

// SetChartThemeName changes the theme and raises chartUpdated followed by an
// options-changed notification from the proxy.
func (c *Controller) SetChartThemeName(name string) {
	proxy := c.requireProxy("SetChartThemeName")
	c.model.SetChartThemeName(name)
	c.raiseChartUpdatedEvent()
	proxy.Update(c.ChartData())
	proxy.RaiseChartOptionsChangedEvent()
}

// ColStateForMenu returns the dimension and value column states for menus.
func (c *Controller) ColStateForMenu() (dimensionCols, valueCols []model.ColState) {
	return c.model.DimensionColState(), c.model.ValueColState()
}

// IsDefaultCategorySelected reports whether the chart plots against row
// position rather than a category column.
func (c *Controller) IsDefaultCategorySelected() bool {
	return c.model.SelectedDimension().ColID == model.DefaultCategoryID
}

// SetChartRange writes the model's ranges to the range service, unless there
// is none, ranges are suppressed, or the chart is detached. It then raises
// chartUpdated unless silent.
func (c *Controller) SetChartRange(silent bool) {
	if c.svc.Ranges != nil && !c.model.IsSuppressChartRanges() && !c.model.IsDetached() {
		c.svc.Ranges.SetCellRanges(c.model.ChartID(), c.model.CellRanges())
	}
	if !silent {
		c.raiseChartUpdatedEvent()
	}
}

// DetachChartRange toggles between linked and detached. Detaching releases
// the chart's ranges without an update event; reattaching runs a full
// grid-change cycle because the grid may have drifted meanwhile.
func (c *Controller) DetachChartRange() {
	c.model.ToggleDetached()

	if c.model.IsDetached() {
		debug.Log("chart detached", "chart", c.model.ChartID())
		if c.svc.Ranges != nil {
			c.svc.Ranges.SetCellRanges(c.model.ChartID(), nil)
		}
		return
	}
	debug.Log("chart reattached", "chart", c.model.ChartID())
	c.UpdateForGridChange()
}

// SetChartProxy attaches the rendering handle.
func (c *Controller) SetChartProxy(p ChartProxy) {
	c.proxy = p
}

// ChartProxy returns the attached rendering handle, or nil.
func (c *Controller) ChartProxy() ChartProxy {
	return c.proxy
}

// IsActiveXYChart reports whether the chart plots axis pairs (scatter or
// bubble).
func (c *Controller) IsActiveXYChart() bool {
	return c.model.ChartType().IsXY()
}

// IsChartLinked reports whether the chart tracks the grid.
func (c *Controller) IsChartLinked() bool {
	return !c.model.IsDetached()
}

// Destroy stops listening and releases the chart's claimed ranges. Safe to
// call more than once.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.subs.UnsubscribeAll()

	if c.svc.Ranges != nil {
		c.svc.Ranges.SetCellRanges(c.model.ChartID(), nil)
	}
}

func (c *Controller) requireProxy(op string) ChartProxy {
	if c.proxy == nil {
		panic("chart: " + op + " called before SetChartProxy")
	}
	return c.proxy
}

func (c *Controller) raiseChartUpdatedEvent() {
	c.svc.Bus.Dispatch(events.ChartUpdatedEvent{ChartID: c.model.ChartID()})
}

func (c *Controller) raiseChartRangeSelectionChangedEvent() {
	c.svc.Bus.Dispatch(events.ChartRangeSelectionChangedEvent{
		ID:        c.model.ChartID(),
		ChartID:   c.model.ChartID(),
		CellRange: c.model.CellRangeParams(),
		Grid:      c.svc.Grid,
		Columns:   c.svc.Columns,
	})
}
