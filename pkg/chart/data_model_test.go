package chart_test

import (
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/grid"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/testutil"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func salesGrid(t fataler) *grid.Grid {
	t.Helper()
	g, err := grid.New(events.NewBus(), testutil.SalesColumns(), testutil.SalesRows())
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func TestNewDataModel_Defaults(t *testing.T) {
	dm, err := chart.NewDataModel(chart.DataModelParams{}, salesGrid(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dm.ChartID(), "chart-") {
		t.Errorf("expected generated chart id, got %q", dm.ChartID())
	}
	if dm.ChartType() != model.ChartGroupedColumn {
		t.Errorf("expected groupedColumn, got %s", dm.ChartType())
	}
	if dm.SelectedDimension().ColID != model.DefaultCategoryID {
		t.Errorf("expected default category")
	}
	if len(dm.CellRanges()) != 0 {
		t.Errorf("expected no ranges without columns, got %v", dm.CellRanges())
	}
}

func TestNewDataModel_Errors(t *testing.T) {
	if _, err := chart.NewDataModel(chart.DataModelParams{}, nil); err == nil {
		t.Error("expected error for nil grid")
	}
	if _, err := chart.NewDataModel(chart.DataModelParams{ChartType: "radar"}, salesGrid(t)); err == nil {
		t.Error("expected error for unknown chart type")
	}
}

func TestNewDataModel_Pivot(t *testing.T) {
	dm, err := chart.NewDataModel(chart.DataModelParams{
		ChartID: "p",
		Pivot:   true,
		Range:   model.CellRange{StartRow: 1, EndRow: 1, Columns: []string{"sales"}},
	}, salesGrid(t))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertRangeColumns(t, dm.CellRanges(), []string{"sales", "profit", "units"})
	if r := dm.CellRanges()[0]; r.StartRow != 0 || r.EndRow != 3 {
		t.Errorf("pivot should span all rows, got %d..%d", r.StartRow, r.EndRow)
	}
	if !dm.IsPivotChart() {
		t.Error("expected pivot chart")
	}
}

func TestComputeRanges(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		mutate  func(*grid.Grid)
		want    [][]string
	}{
		{"dimension and contiguous values", []string{"country", "sales", "profit"}, nil,
			[][]string{{"country"}, {"sales", "profit"}}},
		{"gap splits run", []string{"sales", "units"}, nil,
			[][]string{{"sales"}, {"units"}}},
		{"first non-numeric becomes dimension", []string{"region", "country", "units"}, nil,
			[][]string{{"region"}, {"units"}}},
		{"dimension between values does not split", []string{"country", "sales", "profit"},
			func(g *grid.Grid) { _ = g.MoveColumn("country", 2) },
			[][]string{{"country"}, {"sales", "profit"}}},
		{"non-selected text column splits", []string{"sales", "profit"},
			func(g *grid.Grid) { _ = g.MoveColumn("region", 2) },
			[][]string{{"sales"}, {"profit"}}},
		{"pinned right value moves to end", []string{"country", "sales", "profit", "units"},
			func(g *grid.Grid) { _ = g.SetPinned("sales", model.PinnedRight) },
			[][]string{{"country"}, {"profit", "units", "sales"}}},
		{"unknown columns ignored", []string{"nope", "sales"}, nil,
			[][]string{{"sales"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := salesGrid(t)
			dm, err := chart.NewDataModel(chart.DataModelParams{
				ChartID: "c",
				Range:   model.CellRange{EndRow: -1, Columns: tt.columns},
			}, g)
			if err != nil {
				t.Fatal(err)
			}
			if tt.mutate != nil {
				tt.mutate(g)
				dm.UpdateCellRanges(nil)
			}
			testutil.AssertRangeColumns(t, dm.CellRanges(), tt.want...)
			for _, r := range dm.CellRanges() {
				if r.ID != "c" || r.StartColumn != r.Columns[0] {
					t.Errorf("bad range identity %+v", r)
				}
			}
		})
	}
}

func TestRowBoundsClamp(t *testing.T) {
	g := salesGrid(t)
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		Range: model.CellRange{StartRow: 3, EndRow: 1, Columns: []string{"sales"}},
	}, g)
	if r := dm.CellRanges()[0]; r.StartRow != 1 || r.EndRow != 3 {
		t.Errorf("expected swapped rows 1..3, got %d..%d", r.StartRow, r.EndRow)
	}

	g.SetRows(testutil.SalesRows()[:2])
	dm.UpdateCellRanges(nil)
	if r := dm.CellRanges()[0]; r.StartRow != 1 || r.EndRow != 1 {
		t.Errorf("expected clamped rows 1..1, got %d..%d", r.StartRow, r.EndRow)
	}

	g.SetRows(nil)
	dm.UpdateCellRanges(nil)
	if data := dm.ChartData(); len(data.Categories) != 0 {
		t.Errorf("expected no categories on empty grid, got %d", len(data.Categories))
	}
}

func TestChartData(t *testing.T) {
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		ChartID: "c",
		Range:   model.CellRange{EndRow: -1, Columns: []string{"country", "sales", "units"}},
	}, salesGrid(t))

	data := dm.ChartData()
	if data.Dimension != "country" || len(data.Series) != 2 {
		t.Fatalf("unexpected data %+v", data)
	}
	if data.Categories[1].Label != "Brazil" || data.Series[1].Values[1] != 12 {
		t.Errorf("unexpected values %+v", data)
	}

	data.Series[0].Values[0] = -1
	if dm.ChartData().Series[0].Values[0] == -1 {
		t.Error("ChartData must not share memory with the model")
	}
}

func TestDefaultCategoryLabels(t *testing.T) {
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		Range: model.CellRange{EndRow: -1, Columns: []string{"sales"}},
	}, salesGrid(t))
	var labels []string
	for _, c := range dm.ChartData().Categories {
		labels = append(labels, c.Label)
	}
	if !slices.Equal(labels, []string{"1", "2", "3", "4"}) {
		t.Errorf("expected row-number labels, got %v", labels)
	}
}

func TestColStates(t *testing.T) {
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		Range: model.CellRange{EndRow: -1, Columns: []string{"country", "profit"}},
	}, salesGrid(t))

	dims := dm.DimensionColState()
	if dims[0].ColID != model.DefaultCategoryID || dims[0].DisplayName != model.DefaultCategoryName {
		t.Errorf("default category must come first, got %+v", dims[0])
	}
	if len(dims) != 3 || !dims[1].Selected || dims[1].ColID != "country" {
		t.Errorf("unexpected dimension states %+v", dims)
	}
	vals := dm.ValueColState()
	var selected []string
	for i, v := range vals {
		if v.Order != i {
			t.Errorf("value %s has order %d, want %d", v.ColID, v.Order, i)
		}
		if v.Selected {
			selected = append(selected, v.ColID)
		}
	}
	if !slices.Equal(selected, []string{"profit"}) {
		t.Errorf("expected profit selected, got %v", selected)
	}
}

func TestAdoptCellRanges(t *testing.T) {
	dm, _ := chart.NewDataModel(chart.DataModelParams{
		Range: model.CellRange{EndRow: -1, Columns: []string{"country", "sales"}},
	}, salesGrid(t))

	dm.AdoptCellRanges(nil)
	testutil.AssertRangeColumns(t, dm.CellRanges(), []string{"country"}, []string{"sales"})

	dm.AdoptCellRanges([]model.CellRange{
		{StartRow: 2, EndRow: 1, Columns: []string{"region"}},
		{StartRow: 1, EndRow: 2, Columns: []string{"profit", "units"}},
	})
	dm.UpdateCellRanges(nil)
	testutil.AssertRangeColumns(t, dm.CellRanges(), []string{"region"}, []string{"profit", "units"})
	if r := dm.CellRanges()[0]; r.StartRow != 1 || r.EndRow != 2 {
		t.Errorf("expected rows 1..2, got %d..%d", r.StartRow, r.EndRow)
	}
}

// Recomputing ranges with no grid change in between is a fixed point, and
// every range respects the derivation rules, for any column layout.
func TestRangesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := salesGrid(t)
		all := []string{"country", "region", "sales", "profit", "units"}
		var picked []string
		for _, id := range all {
			if rapid.Bool().Draw(t, "pick-"+id) {
				picked = append(picked, id)
			}
		}
		dm, err := chart.NewDataModel(chart.DataModelParams{
			ChartID: "c",
			Range:   model.CellRange{EndRow: -1, Columns: picked},
		}, g)
		if err != nil {
			t.Fatal(err)
		}

		steps := rapid.IntRange(0, 8).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(all).Draw(t, "col")
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				_ = g.MoveColumn(id, rapid.IntRange(0, len(all)-1).Draw(t, "to"))
			case 1:
				_ = g.SetPinned(id, rapid.SampledFrom([]model.Pinned{model.PinnedNone, model.PinnedLeft, model.PinnedRight}).Draw(t, "pin"))
			case 2:
				_ = g.SetVisible(id, rapid.Bool().Draw(t, "visible"))
			case 3:
				dm.UpdateCellRanges(&model.ColState{ColID: id, Selected: rapid.Bool().Draw(t, "selected")})
			}
		}

		dm.UpdateCellRanges(nil)
		first := dm.CellRanges()
		dm.UpdateCellRanges(nil)
		if !model.RangesEqual(first, dm.CellRanges()) {
			t.Fatalf("ranges not stable: %v vs %v", first, dm.CellRanges())
		}

		shown := g.DisplayedColumns()
		index := make(map[string]int, len(shown))
		for i, c := range shown {
			index[c.ID] = i
		}
		dim := dm.SelectedDimension().ColID
		for i, r := range first {
			if len(r.Columns) == 0 || r.StartColumn != r.Columns[0] || r.ID != "c" {
				t.Fatalf("malformed range %+v", r)
			}
			if dim != model.DefaultCategoryID && i == 0 {
				if !slices.Equal(r.Columns, []string{dim}) {
					t.Fatalf("first range should be the dimension %s, got %v", dim, r.Columns)
				}
				continue
			}
			for j, id := range r.Columns {
				if _, ok := index[id]; !ok {
					t.Fatalf("range column %s not displayed", id)
				}
				if j > 0 && index[id] <= index[r.Columns[j-1]] {
					t.Fatalf("range %v out of display order", r.Columns)
				}
			}
		}
	})
}
