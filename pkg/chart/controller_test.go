package chart_test

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/grid"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/testutil"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// fakeProxy is a ChartProxy that records calls instead of drawing.
type fakeProxy struct {
	bus     *events.Bus
	themes  *theme.Service
	custom  *model.Palette
	chartID string

	updates       []chart.ChartData
	optionsRaised int
}

func (p *fakeProxy) ChartOptions() chart.Options {
	return chart.Options{Title: "fake", Width: 400, Height: 300}
}

func (p *fakeProxy) Chart() any { return p }

func (p *fakeProxy) ChartImageDataURL(format string) (string, error) {
	return "data:image/" + format + ";base64,", nil
}

func (p *fakeProxy) CustomPalette() *model.Palette { return p.custom }

func (p *fakeProxy) IsStockTheme(name string) bool { return theme.IsStock(name) }

func (p *fakeProxy) LookupCustomChartTheme(name string) theme.ThemeRef {
	return p.themes.Ref(name)
}

func (p *fakeProxy) RaiseChartOptionsChangedEvent() {
	p.optionsRaised++
	p.bus.Dispatch(events.ChartOptionsChangedEvent{ChartID: p.chartID})
}

func (p *fakeProxy) Update(data chart.ChartData) {
	p.updates = append(p.updates, data)
}

type fixture struct {
	bus    *events.Bus
	grid   *grid.Grid
	ranges *testutil.RangeRecorder
	events *testutil.EventRecorder
	themes *theme.Service
	ctrl   *chart.Controller
	proxy  *fakeProxy
}

func newFixture(t *testing.T, params chart.DataModelParams) *fixture {
	t.Helper()
	bus := events.NewBus()
	g, err := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	themes, err := theme.NewService([]theme.CustomTheme{
		{Name: "corporate", BaseTheme: "ag-default", Fills: []string{"#003366", "#6699cc"}},
	})
	if err != nil {
		t.Fatalf("theme.NewService: %v", err)
	}
	if params.ChartID == "" {
		params.ChartID = "chart-1"
	}
	dm, err := chart.NewDataModel(params, g)
	if err != nil {
		t.Fatalf("NewDataModel: %v", err)
	}

	f := &fixture{
		bus:    bus,
		grid:   g,
		ranges: testutil.NewRangeRecorder(),
		themes: themes,
	}
	f.ctrl = chart.NewController(dm, chart.Services{
		Ranges:     f.ranges,
		Bus:        bus,
		Grid:       g,
		Columns:    g,
		Themes:     themes,
		ThemeNames: []string{"ag-vivid", "ag-pastel"},
	})
	f.ctrl.Init()
	f.proxy = &fakeProxy{bus: bus, themes: themes, chartID: params.ChartID}
	f.ctrl.SetChartProxy(f.proxy)

	f.ranges.Reset()
	f.events = testutil.RecordEvents(bus)
	return f
}

// countrySales is a linked chart with dimension country and values sales.
func countrySales(t *testing.T) *fixture {
	return newFixture(t, chart.DataModelParams{
		Range: model.CellRange{StartRow: 0, EndRow: -1, Columns: []string{"country", "sales"}},
	})
}

func chartEvents(rec *testutil.EventRecorder) []string {
	return rec.Types(events.ChartUpdated, events.ChartRangeSelectionChanged, events.ChartOptionsChanged)
}

func TestInit_WritesInitialRangesSilently(t *testing.T) {
	bus := events.NewBus()
	g, _ := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
	rec := testutil.RecordEvents(bus)
	ranges := testutil.NewRangeRecorder()
	dm, err := chart.NewDataModel(chart.DataModelParams{
		ChartID: "c1",
		Range:   model.CellRange{EndRow: -1, Columns: []string{"country", "sales", "profit"}},
	}, g)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := chart.NewController(dm, chart.Services{Ranges: ranges, Bus: bus})
	ctrl.Init()
	ctrl.Init()

	if ranges.WriteCount() != 1 {
		t.Fatalf("expected one initial write, got %d", ranges.WriteCount())
	}
	w, _ := ranges.LastWrite()
	if w.Owner != "c1" {
		t.Errorf("expected write keyed by chart id, got %q", w.Owner)
	}
	testutil.AssertRangeColumns(t, w.Ranges, []string{"country"}, []string{"sales", "profit"})
	for _, r := range w.Ranges {
		if r.ID != "c1" || r.StartRow != 0 || r.EndRow != 3 {
			t.Errorf("unexpected range %+v", r)
		}
	}
	if rec.Count(events.ChartUpdated) != 0 {
		t.Error("Init must not raise chartUpdated")
	}
}

func TestInit_UnlinkedChartClearsRanges(t *testing.T) {
	f := newFixture(t, chart.DataModelParams{
		Unlinked: true,
		Range:    model.CellRange{EndRow: -1, Columns: []string{"country", "sales"}},
	})
	if f.ctrl.IsChartLinked() {
		t.Fatal("expected unlinked chart")
	}
	if got := f.ranges.CellRanges("chart-1"); len(got) != 0 {
		t.Errorf("detached chart should hold no ranges, got %v", got)
	}
}

func TestScenario_PinColumnResyncs(t *testing.T) {
	f := countrySales(t)

	if err := f.grid.SetPinned("sales", model.PinnedLeft); err != nil {
		t.Fatal(err)
	}

	if f.ranges.WriteCount() != 1 {
		t.Fatalf("expected one range write, got %d", f.ranges.WriteCount())
	}
	w, _ := f.ranges.LastWrite()
	testutil.AssertRangeColumns(t, w.Ranges, []string{"country"}, []string{"sales"})
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated)
}

func TestScenario_DetachReleasesRanges(t *testing.T) {
	f := countrySales(t)

	f.ctrl.DetachChartRange()

	if f.ranges.WriteCount() != 1 {
		t.Fatalf("expected one range write, got %d", f.ranges.WriteCount())
	}
	w, _ := f.ranges.LastWrite()
	if len(w.Ranges) != 0 {
		t.Errorf("expected empty range set, got %v", w.Ranges)
	}
	if f.events.Count(events.ChartUpdated) != 0 {
		t.Error("detach must not raise chartUpdated")
	}
	if f.ctrl.IsChartLinked() {
		t.Error("expected chart to be detached")
	}
}

func TestUpdateForGridChange_Idempotent(t *testing.T) {
	f := countrySales(t)

	f.ctrl.UpdateForGridChange()
	f.ctrl.UpdateForGridChange()

	if f.ranges.WriteCount() != 2 {
		t.Fatalf("expected two writes, got %d", f.ranges.WriteCount())
	}
	testutil.AssertRangesEqual(t, f.ranges.Writes[0].Ranges, f.ranges.Writes[1].Ranges)
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated, events.ChartUpdated)
}

func TestRangeChange_ForeignIDIgnored(t *testing.T) {
	f := countrySales(t)

	f.bus.Dispatch(events.RangeSelectionChangedEvent{ID: "someone-else", Finished: true})
	f.bus.Dispatch(events.RangeSelectionChangedEvent{Finished: true})

	if f.ranges.WriteCount() != 0 {
		t.Errorf("foreign range event triggered %d writes", f.ranges.WriteCount())
	}
	if got := chartEvents(f.events); len(got) != 0 {
		t.Errorf("foreign range event raised %v", got)
	}
}

func TestRangeChange_OwnIDAdoptsUserEdit(t *testing.T) {
	bus := events.NewBus()
	g, _ := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		ChartID: "c1",
		Range:   model.CellRange{EndRow: -1, Columns: []string{"country", "sales"}},
	}, g)
	ctrl := chart.NewController(dm, chart.Services{Ranges: g, Bus: bus, Grid: g, Columns: g})
	ctrl.Init()
	rec := testutil.RecordEvents(bus)

	if err := g.ResizeChartRange("c1", 1, "units"); err != nil {
		t.Fatal(err)
	}

	testutil.AssertEventTypes(t, chartEvents(rec), events.ChartUpdated, events.ChartRangeSelectionChanged)
	// the user drag plus the controller's own untagged write
	if n := rec.Count(events.RangeSelectionChanged); n != 2 {
		t.Errorf("expected 2 rangeSelectionChanged, got %d", n)
	}
	got := g.CellRanges("c1")
	testutil.AssertRangeColumns(t, got, []string{"country"}, []string{"sales"}, []string{"units"})
	for _, r := range got {
		if r.EndRow != 1 {
			t.Errorf("expected adopted end row 1, got %d", r.EndRow)
		}
	}
	data := ctrl.ChartData()
	if len(data.Categories) != 2 || len(data.Series) != 2 {
		t.Errorf("expected 2 categories x 2 series, got %d x %d", len(data.Categories), len(data.Series))
	}
	var last events.ChartRangeSelectionChangedEvent
	for _, ev := range rec.Events() {
		if e, ok := ev.(events.ChartRangeSelectionChangedEvent); ok {
			last = e
		}
	}
	if last.ChartID != "c1" || last.Grid == nil || last.Columns == nil {
		t.Errorf("unexpected chartRangeSelectionChanged payload %+v", last)
	}
	if last.CellRange.RowEndIndex != 1 || !slices.Equal(last.CellRange.Columns, []string{"country", "sales", "units"}) {
		t.Errorf("unexpected cell range %+v", last.CellRange)
	}
}

func TestDetachInvariant(t *testing.T) {
	f := countrySales(t)
	before := f.ctrl.ChartModel().CellRange
	f.ctrl.DetachChartRange()
	f.ranges.Reset()
	f.events.Reset()

	_ = f.grid.SetPinned("sales", model.PinnedRight)
	_ = f.grid.MoveColumn("units", 0)
	_ = f.grid.SetVisible("country", false)
	_ = f.grid.SetRowGroup("region", true)
	_ = f.grid.SetValue(0, "sales", "999")
	f.grid.SetRows(testutil.SalesRows()[:2])
	f.ctrl.UpdateForRangeChange()

	if f.ranges.WriteCount() != 0 {
		t.Errorf("detached chart wrote ranges %d times", f.ranges.WriteCount())
	}
	if f.events.Count(events.ChartUpdated) != 0 {
		t.Errorf("detached chart raised chartUpdated")
	}
	after := f.ctrl.ChartModel().CellRange
	if after.String() != before.String() {
		t.Errorf("detached ranges changed: %s -> %s", before, after)
	}
}

func TestPanelChangeWhileDetachedKeepsRanges(t *testing.T) {
	f := countrySales(t)
	f.ctrl.DetachChartRange()
	before := f.ctrl.ChartModel().CellRange
	f.ranges.Reset()

	f.ctrl.UpdateForPanelChange(model.ColState{ColID: "profit", Selected: true})

	if f.ranges.WriteCount() != 0 {
		t.Errorf("detached panel change wrote ranges")
	}
	if after := f.ctrl.ChartModel().CellRange; after.String() != before.String() {
		t.Errorf("detached panel change altered ranges: %s -> %s", before, after)
	}
	if got := len(f.ctrl.ChartData().Series); got != 2 {
		t.Errorf("expected panel edit reflected in data, got %d series", got)
	}
}

func TestReattach_OneResync(t *testing.T) {
	f := countrySales(t)
	f.ctrl.DetachChartRange()
	_ = f.grid.SetPinned("sales", model.PinnedLeft)
	f.ranges.Reset()
	f.events.Reset()

	f.ctrl.DetachChartRange()

	if f.ranges.WriteCount() != 1 {
		t.Fatalf("expected one write on reattach, got %d", f.ranges.WriteCount())
	}
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated)
	w, _ := f.ranges.LastWrite()
	testutil.AssertRangeColumns(t, w.Ranges, []string{"country"}, []string{"sales"})
	if !f.ctrl.IsChartLinked() {
		t.Error("expected linked chart after reattach")
	}
}

func TestPanelChange_EmitsBothEventsInOrder(t *testing.T) {
	f := countrySales(t)

	f.ctrl.UpdateForPanelChange(model.ColState{ColID: "units", Selected: true})

	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated, events.ChartRangeSelectionChanged)
	w, _ := f.ranges.LastWrite()
	// sales | profit | units: the unselected profit splits the run
	testutil.AssertRangeColumns(t, w.Ranges, []string{"country"}, []string{"sales"}, []string{"units"})
}

func TestPanelChange_SelectDimension(t *testing.T) {
	f := countrySales(t)

	f.ctrl.UpdateForPanelChange(model.ColState{ColID: "region", Selected: true})
	dims, _ := f.ctrl.ColStateForMenu()
	var selected []string
	for _, d := range dims {
		if d.Selected {
			selected = append(selected, d.ColID)
		}
	}
	if !slices.Equal(selected, []string{"region"}) {
		t.Errorf("expected region as sole dimension, got %v", selected)
	}

	f.ctrl.UpdateForPanelChange(model.ColState{ColID: model.DefaultCategoryID, Selected: true})
	if !f.ctrl.IsDefaultCategorySelected() {
		t.Error("expected default category selected")
	}
	w, _ := f.ranges.LastWrite()
	testutil.AssertRangeColumns(t, w.Ranges, []string{"sales"})
}

func TestPalettes(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		custom *model.Palette
		want   func(*theme.Service) []model.Palette
	}{
		{
			name:  "stock themes in order",
			names: []string{"ag-vivid", "ag-pastel"},
			want: func(s *theme.Service) []model.Palette {
				return []model.Palette{
					s.Lookup(theme.ThemeRef{Name: "ag-vivid"}).Palette,
					s.Lookup(theme.ThemeRef{Name: "ag-pastel"}).Palette,
				}
			},
		},
		{
			name:  "custom theme resolved through proxy",
			names: []string{"corporate", "ag-default"},
			want: func(s *theme.Service) []model.Palette {
				return []model.Palette{
					s.Lookup(s.Ref("corporate")).Palette,
					s.Lookup(theme.ThemeRef{Name: "ag-default"}).Palette,
				}
			},
		},
		{
			name:   "custom palette wins",
			names:  []string{"ag-vivid", "ag-pastel"},
			custom: &model.Palette{Fills: []string{"#111111"}, Strokes: []string{"#000000"}},
			want: func(*theme.Service) []model.Palette {
				return []model.Palette{{Fills: []string{"#111111"}, Strokes: []string{"#000000"}}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := events.NewBus()
			g, _ := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
			themes, err := theme.NewService([]theme.CustomTheme{
				{Name: "corporate", Fills: []string{"#003366", "#6699cc"}},
			})
			if err != nil {
				t.Fatal(err)
			}
			dm, _ := chart.NewDataModel(chart.DataModelParams{}, g)
			ctrl := chart.NewController(dm, chart.Services{Bus: bus, Themes: themes, ThemeNames: tt.names})
			ctrl.SetChartProxy(&fakeProxy{bus: bus, themes: themes, custom: tt.custom})

			got := ctrl.Palettes()
			want := tt.want(themes)
			if len(got) != len(want) {
				t.Fatalf("expected %d palettes, got %d", len(want), len(got))
			}
			for i := range want {
				if !slices.Equal(got[i].Fills, want[i].Fills) || !slices.Equal(got[i].Strokes, want[i].Strokes) {
					t.Errorf("palette %d: expected %v, got %v", i, want[i], got[i])
				}
			}
		})
	}

	t.Run("custom fills applied", func(t *testing.T) {
		f := countrySales(t)
		f.ctrl = chart.NewController(mustModel(t, f.grid), chart.Services{
			Bus: f.bus, Themes: f.themes, ThemeNames: []string{"corporate"},
		})
		f.ctrl.SetChartProxy(f.proxy)
		got := f.ctrl.Palettes()
		if len(got) != 1 || got[0].Fill(0) != "#003366" {
			t.Errorf("expected corporate fills, got %v", got)
		}
	})
}

func mustModel(t *testing.T, g *grid.Grid) *chart.DataModel {
	t.Helper()
	dm, err := chart.NewDataModel(chart.DataModelParams{}, g)
	if err != nil {
		t.Fatal(err)
	}
	return dm
}

func TestSetChartType(t *testing.T) {
	f := countrySales(t)

	f.ctrl.SetChartType(model.ChartLine)

	if f.ctrl.ChartType() != model.ChartLine {
		t.Errorf("expected line, got %s", f.ctrl.ChartType())
	}
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated, events.ChartOptionsChanged)
	if f.ranges.WriteCount() != 0 {
		t.Error("chart type change must not touch ranges")
	}
	if f.proxy.optionsRaised != 1 {
		t.Errorf("expected one options-changed notification, got %d", f.proxy.optionsRaised)
	}
	if n := len(f.proxy.updates); n == 0 || f.proxy.updates[n-1].ChartType != model.ChartLine {
		t.Error("proxy should hold the new type before announcing options")
	}
}

func TestSetChartTypeWhileDetachedThenReattach(t *testing.T) {
	f := countrySales(t)
	f.ctrl.DetachChartRange()
	f.ctrl.SetChartType(model.ChartScatter)
	f.ranges.Reset()

	f.ctrl.DetachChartRange()

	if !f.ctrl.IsActiveXYChart() {
		t.Error("expected scatter to stay selected after reattach")
	}
	w, _ := f.ranges.LastWrite()
	testutil.AssertRangeColumns(t, w.Ranges, []string{"country"}, []string{"sales"})
}

func TestSetChartThemeName(t *testing.T) {
	f := countrySales(t)

	f.ctrl.SetChartThemeName("ag-solar")

	if f.ctrl.ThemeName() != "ag-solar" || f.ctrl.ChartModel().ThemeName != "ag-solar" {
		t.Errorf("theme not applied: %s", f.ctrl.ThemeName())
	}
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated, events.ChartOptionsChanged)
}

func TestPreconditionsPanic(t *testing.T) {
	bus := events.NewBus()
	g, _ := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
	dm := mustModel(t, g)
	ctrl := chart.NewController(dm, chart.Services{Bus: bus})

	testutil.AssertPanics(t, "NewController nil model", func() { chart.NewController(nil, chart.Services{Bus: bus}) })
	testutil.AssertPanics(t, "NewController nil bus", func() { chart.NewController(dm, chart.Services{}) })
	testutil.AssertPanics(t, "ChartModel", func() { ctrl.ChartModel() })
	testutil.AssertPanics(t, "Palettes", func() { ctrl.Palettes() })
	testutil.AssertPanics(t, "SetChartType", func() { ctrl.SetChartType(model.ChartPie) })
	testutil.AssertPanics(t, "SetChartThemeName", func() { ctrl.SetChartThemeName("ag-solar") })
	testutil.AssertPanics(t, "SelectedDimension on zero model", func() { (&chart.DataModel{}).SelectedDimension() })

	if ctrl.ChartType() != model.ChartGroupedColumn {
		t.Error("failed SetChartType must not change state")
	}
}

func TestChartModel(t *testing.T) {
	f := countrySales(t)

	cm := f.ctrl.ChartModel()
	if cm.ChartID != "chart-1" || cm.ChartType != model.ChartGroupedColumn || cm.ThemeName != theme.DefaultName {
		t.Errorf("unexpected chart model %+v", cm)
	}
	if cm.Options.Title != "fake" || cm.Chart != f.proxy {
		t.Errorf("chart model not bound to proxy")
	}
	if !slices.Equal(cm.CellRange.Columns, []string{"country", "sales"}) || cm.CellRange.RowEndIndex != 3 {
		t.Errorf("unexpected cell range %+v", cm.CellRange)
	}
	url, err := cm.ImageDataURL("png")
	if err != nil || url != "data:image/png;base64," {
		t.Errorf("ImageDataURL = %q, %v", url, err)
	}
}

func TestDataChange_RefreshesValuesOnly(t *testing.T) {
	f := countrySales(t)

	if err := f.grid.SetValue(0, "sales", "1000"); err != nil {
		t.Fatal(err)
	}

	if f.ranges.WriteCount() != 0 {
		t.Error("cell edit must not rewrite ranges")
	}
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated)
	if got := f.ctrl.ChartData().Series[0].Values[0]; got != 1000 {
		t.Errorf("expected refreshed value 1000, got %v", got)
	}
}

func TestHiddenDimensionRemembered(t *testing.T) {
	f := countrySales(t)

	_ = f.grid.SetVisible("country", false)
	w, _ := f.ranges.LastWrite()
	testutil.AssertRangeColumns(t, w.Ranges, []string{"sales"})
	if !f.ctrl.IsDefaultCategorySelected() {
		t.Error("hidden dimension should fall back to the default category")
	}

	_ = f.grid.SetVisible("country", true)
	w, _ = f.ranges.LastWrite()
	testutil.AssertRangeColumns(t, w.Ranges, []string{"country"}, []string{"sales"})
}

func TestRangeEditKeepsHiddenSelections(t *testing.T) {
	bus := events.NewBus()
	g, _ := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		ChartID: "c1",
		Range:   model.CellRange{EndRow: -1, Columns: []string{"country", "sales", "profit"}},
	}, g)
	ctrl := chart.NewController(dm, chart.Services{Ranges: g, Bus: bus, Grid: g, Columns: g})
	ctrl.Init()

	_ = g.SetVisible("profit", false)
	testutil.AssertRangeColumns(t, g.CellRanges("c1"), []string{"country"}, []string{"sales"})
	if err := g.ResizeChartRange("c1", 1); err != nil {
		t.Fatal(err)
	}
	_ = g.SetVisible("profit", true)
	testutil.AssertRangeColumns(t, g.CellRanges("c1"), []string{"country"}, []string{"sales", "profit"})

	_ = g.SetVisible("country", false)
	if err := g.ResizeChartRange("c1", 2); err != nil {
		t.Fatal(err)
	}
	if !ctrl.IsDefaultCategorySelected() {
		t.Error("hidden dimension should still display as the default category")
	}
	_ = g.SetVisible("country", true)
	got := g.CellRanges("c1")
	testutil.AssertRangeColumns(t, got, []string{"country"}, []string{"sales", "profit"})
	if got[0].EndRow != 2 {
		t.Errorf("expected end row 2, got %d", got[0].EndRow)
	}
	if n := len(ctrl.ChartData().Categories); n != 3 {
		t.Errorf("expected 3 categories, got %d", n)
	}
}

func TestGroupingKeepsLabelCase(t *testing.T) {
	f := newFixture(t, chart.DataModelParams{
		Range: model.CellRange{EndRow: -1, Columns: []string{"region", "sales"}},
	})
	if err := f.grid.SetValue(1, "region", "emea"); err != nil {
		t.Fatal(err)
	}
	_ = f.grid.SetRowGroup("region", true)

	data := f.ctrl.ChartData()
	ids := make([]string, len(data.Categories))
	for i, c := range data.Categories {
		ids[i] = c.ID
	}
	if !slices.Equal(ids, []string{"group:EMEA", "group:emea", "group:APAC"}) {
		t.Errorf("unexpected group ids %v", ids)
	}
}

func TestGrouping(t *testing.T) {
	f := newFixture(t, chart.DataModelParams{
		Range: model.CellRange{EndRow: -1, Columns: []string{"region", "sales"}},
	})
	_ = f.grid.SetRowGroup("region", true)

	if !f.ctrl.IsGrouping() {
		t.Fatal("expected grouping")
	}
	data := f.ctrl.ChartData()
	labels := make([]string, len(data.Categories))
	for i, c := range data.Categories {
		labels[i] = c.Label
	}
	if !slices.Equal(labels, []string{"EMEA", "LATAM", "APAC"}) {
		t.Errorf("unexpected groups %v", labels)
	}
	if data.Series[0].Values[0] != 180 {
		t.Errorf("expected EMEA sales 180, got %v", data.Series[0].Values[0])
	}
}

func TestSuppressChartRanges(t *testing.T) {
	f := newFixture(t, chart.DataModelParams{
		SuppressChartRanges: true,
		Range:               model.CellRange{EndRow: -1, Columns: []string{"country", "sales"}},
	})

	_ = f.grid.SetPinned("sales", model.PinnedLeft)

	if f.ranges.WriteCount() != 0 {
		t.Errorf("suppressed chart wrote ranges")
	}
	testutil.AssertEventTypes(t, chartEvents(f.events), events.ChartUpdated)
}

func TestDestroy(t *testing.T) {
	f := countrySales(t)

	f.ctrl.Destroy()
	f.ctrl.Destroy()

	if f.ranges.WriteCount() != 1 {
		t.Fatalf("expected one release write, got %d", f.ranges.WriteCount())
	}
	w, _ := f.ranges.LastWrite()
	if w.Owner != "chart-1" || len(w.Ranges) != 0 {
		t.Errorf("unexpected release write %+v", w)
	}
	_ = f.grid.SetPinned("sales", model.PinnedLeft)
	if f.events.Count(events.ChartUpdated) != 0 {
		t.Error("destroyed controller still listening")
	}
}

func TestTwoChartsDoNotClobber(t *testing.T) {
	bus := events.NewBus()
	g, _ := grid.New(bus, testutil.SalesColumns(), testutil.SalesRows())
	newCtrl := func(id string, cols ...string) *chart.Controller {
		dm, err := chart.NewDataModel(chart.DataModelParams{
			ChartID: id,
			Range:   model.CellRange{EndRow: -1, Columns: cols},
		}, g)
		if err != nil {
			t.Fatal(err)
		}
		c := chart.NewController(dm, chart.Services{Ranges: g, Bus: bus})
		c.Init()
		return c
	}
	a := newCtrl("a", "country", "sales")
	b := newCtrl("b", "region", "units")

	a.DetachChartRange()

	if got := g.CellRanges("a"); len(got) != 0 {
		t.Errorf("chart a should have released its ranges, got %v", got)
	}
	testutil.AssertRangeColumns(t, g.CellRanges("b"), []string{"region"}, []string{"units"})
	b.Destroy()
	if owners := g.Owners(); len(owners) != 0 {
		t.Errorf("expected no owners left, got %v", owners)
	}
}
