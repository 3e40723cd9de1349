package chart

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// DataModelParams configures a new DataModel.
type DataModelParams struct {
	// ChartID is assigned when empty.
	ChartID   string
	ChartType model.ChartType
	ThemeName string
	// Range is the reference selection the chart starts from: its columns pick
	// the dimension and value columns, its rows bound the data. EndRow < 0
	// means "through the last row".
	Range               model.CellRange
	Pivot               bool
	SuppressChartRanges bool
	// Unlinked creates the chart already detached from the grid.
	Unlinked bool
}

// NewChartID returns a fresh opaque chart id.
func NewChartID() string {
	return "chart-" + uuid.NewString()
}

// DataModel owns a chart's derived state. It has no knowledge of events or
// the range service; the Controller drives it.
type DataModel struct {
	grid GridSource

	chartID             string
	chartType           model.ChartType
	themeName           string
	pivot               bool
	suppressChartRanges bool
	detached            bool

	startRow int
	endRow   int

	// dimensionID and valueSelected are the stored selections. They survive
	// columns being hidden; the column states and ranges are rebuilt from them.
	dimensionID   string
	valueSelected map[string]bool

	dimensionCols []model.ColState
	valueCols     []model.ColState
	cellRanges    []model.CellRange
	data          ChartData
}

// NewDataModel builds a model over grid and computes its initial ranges and
// data.
func NewDataModel(params DataModelParams, grid GridSource) (*DataModel, error) {
	if grid == nil {
		return nil, fmt.Errorf("chart data model needs a grid")
	}
	chartType := params.ChartType
	if chartType == "" {
		chartType = model.ChartGroupedColumn
	}
	if !chartType.IsValid() {
		return nil, fmt.Errorf("unknown chart type %q", chartType)
	}
	m := &DataModel{
		grid:                grid,
		chartID:             params.ChartID,
		chartType:           chartType,
		themeName:           params.ThemeName,
		pivot:               params.Pivot,
		suppressChartRanges: params.SuppressChartRanges,
		detached:            params.Unlinked,
		startRow:            params.Range.StartRow,
		endRow:              params.Range.EndRow,
		dimensionID:         model.DefaultCategoryID,
		valueSelected:       make(map[string]bool),
	}
	if m.chartID == "" {
		m.chartID = NewChartID()
	}
	if m.themeName == "" {
		m.themeName = theme.DefaultName
	}
	if m.startRow > m.endRow && m.endRow >= 0 {
		m.startRow, m.endRow = m.endRow, m.startRow
	}

	displayed := grid.DisplayedColumns()
	if m.pivot {
		m.startRow, m.endRow = 0, -1
		for _, c := range displayed {
			if c.Numeric {
				m.valueSelected[c.ID] = true
			}
		}
	} else {
		byID := columnsByID(displayed)
		for _, id := range params.Range.Columns {
			c, ok := byID[id]
			if !ok {
				continue
			}
			switch {
			case c.Numeric:
				m.valueSelected[id] = true
			case m.dimensionID == model.DefaultCategoryID:
				m.dimensionID = id
			}
		}
	}

	m.rebuild(true)
	return m, nil
}

func columnsByID(cols []model.Column) map[string]model.Column {
	out := make(map[string]model.Column, len(cols))
	for _, c := range cols {
		out[c.ID] = c
	}
	return out
}

// ChartID returns the chart's stable id.
func (m *DataModel) ChartID() string { return m.chartID }

// ChartType returns the current chart type.
func (m *DataModel) ChartType() model.ChartType { return m.chartType }

// ChartThemeName returns the current theme name.
func (m *DataModel) ChartThemeName() string { return m.themeName }

// SetChartType changes the chart type. It never touches ranges.
func (m *DataModel) SetChartType(t model.ChartType) {
	m.chartType = t
	m.data.ChartType = t
}

// SetChartThemeName changes the theme name.
func (m *DataModel) SetChartThemeName(name string) {
	m.themeName = name
	m.data.ThemeName = name
}

// IsDetached reports whether the chart has stopped tracking the grid.
func (m *DataModel) IsDetached() bool { return m.detached }

// ToggleDetached flips the detached flag and nothing else.
func (m *DataModel) ToggleDetached() { m.detached = !m.detached }

// IsSuppressChartRanges reports whether the chart's ranges are kept out of
// the range service.
func (m *DataModel) IsSuppressChartRanges() bool { return m.suppressChartRanges }

// IsPivotChart reports whether the chart plots every numeric column.
func (m *DataModel) IsPivotChart() bool { return m.pivot }

// IsGrouping reports whether the grid has row grouping active, in which case
// values are aggregated per category.
func (m *DataModel) IsGrouping() bool {
	return !m.pivot && len(m.grid.RowGroupColumns()) > 0
}

// UpdateCellRanges merges an optional panel edit into the stored selections
// and recomputes column states, ranges and data from the live grid. Ranges
// are left alone while the chart is detached. Calling it twice without a grid
// change in between yields identical ranges.
func (m *DataModel) UpdateCellRanges(changed *model.ColState) {
	if changed != nil {
		m.mergeColState(*changed)
	}
	m.rebuild(!m.detached)
}

func (m *DataModel) mergeColState(col model.ColState) {
	if col.ColID == model.DefaultCategoryID {
		if col.Selected {
			m.dimensionID = model.DefaultCategoryID
		}
		return
	}
	for _, c := range m.grid.DisplayedColumns() {
		if c.ID != col.ColID {
			continue
		}
		if c.Numeric {
			m.valueSelected[c.ID] = col.Selected
		} else if col.Selected {
			m.dimensionID = c.ID
		}
		return
	}
}

// AdoptCellRanges takes ranges the user edited in the grid as the new
// selection: columns found in them become the dimension and value columns,
// and their row span becomes the chart's row bounds. Selections of hidden
// columns cannot appear in the ranges and are kept as they were.
func (m *DataModel) AdoptCellRanges(ranges []model.CellRange) {
	if len(ranges) == 0 {
		return
	}
	displayed := m.grid.DisplayedColumns()
	byID := columnsByID(displayed)
	inRanges := make(map[string]bool)
	start, end := ranges[0].StartRow, ranges[0].EndRow
	for _, r := range ranges {
		lo, hi := min(r.StartRow, r.EndRow), max(r.StartRow, r.EndRow)
		start, end = min(start, lo), max(end, hi)
		for _, id := range r.Columns {
			inRanges[id] = true
		}
	}

	values := make(map[string]bool, len(m.valueSelected))
	for id, on := range m.valueSelected {
		if _, shown := byID[id]; !shown && on {
			values[id] = true
		}
	}
	dimension := ""
	for _, c := range displayed {
		if !inRanges[c.ID] {
			continue
		}
		if c.Numeric {
			values[c.ID] = true
		} else if dimension == "" {
			dimension = c.ID
		}
	}
	if dimension == "" {
		dimension = model.DefaultCategoryID
		if _, shown := byID[m.dimensionID]; !shown && m.dimensionID != model.DefaultCategoryID {
			dimension = m.dimensionID
		}
	}
	m.dimensionID = dimension
	m.valueSelected = values
	m.startRow, m.endRow = start, end
}

// UpdateData refreshes series data without touching selections or ranges.
func (m *DataModel) UpdateData() {
	m.data = m.buildData(m.grid.DisplayedColumns())
}

// rebuild recomputes column states and data, and ranges when withRanges.
func (m *DataModel) rebuild(withRanges bool) {
	displayed := m.grid.DisplayedColumns()
	dimension := m.effectiveDimension(displayed)

	m.dimensionCols = m.dimensionCols[:0]
	m.dimensionCols = append(m.dimensionCols, model.ColState{
		ColID:       model.DefaultCategoryID,
		DisplayName: model.DefaultCategoryName,
		Selected:    dimension == model.DefaultCategoryID,
		Order:       0,
	})
	m.valueCols = m.valueCols[:0]
	for _, c := range displayed {
		if c.Numeric {
			m.valueCols = append(m.valueCols, model.ColState{
				ColID:       c.ID,
				DisplayName: c.DisplayName(),
				Selected:    m.valueSelected[c.ID],
				Order:       len(m.valueCols),
			})
			continue
		}
		m.dimensionCols = append(m.dimensionCols, model.ColState{
			ColID:       c.ID,
			DisplayName: c.DisplayName(),
			Selected:    c.ID == dimension,
			Order:       len(m.dimensionCols),
		})
	}

	if withRanges {
		m.cellRanges = m.computeRanges(displayed, dimension)
	}
	m.data = m.buildData(displayed)
}

// effectiveDimension falls back to the default category when the stored
// dimension is not currently displayed.
func (m *DataModel) effectiveDimension(displayed []model.Column) string {
	for _, c := range displayed {
		if c.ID == m.dimensionID && !c.Numeric {
			return c.ID
		}
	}
	return model.DefaultCategoryID
}

// rowBounds resolves the stored row bounds against the current row count.
func (m *DataModel) rowBounds() (int, int) {
	last := m.grid.RowCount() - 1
	if last < 0 {
		return 0, 0
	}
	start := max(0, min(m.startRow, last))
	end := m.endRow
	if end < 0 || end > last {
		end = last
	}
	if end < start {
		end = start
	}
	return start, end
}

func (m *DataModel) computeRanges(displayed []model.Column, dimension string) []model.CellRange {
	start, end := m.rowBounds()
	newRange := func(cols []string) model.CellRange {
		return model.CellRange{
			ID:          m.chartID,
			StartRow:    start,
			EndRow:      end,
			Columns:     cols,
			StartColumn: cols[0],
		}
	}

	ranges := []model.CellRange{}
	if dimension != model.DefaultCategoryID {
		ranges = append(ranges, newRange([]string{dimension}))
	}
	var run []string
	for _, c := range displayed {
		switch {
		case c.ID == dimension:
			// the dimension never splits a run of value columns
		case c.Numeric && m.valueSelected[c.ID]:
			run = append(run, c.ID)
		case len(run) > 0:
			ranges = append(ranges, newRange(run))
			run = nil
		}
	}
	if len(run) > 0 {
		ranges = append(ranges, newRange(run))
	}
	return ranges
}

func (m *DataModel) buildData(displayed []model.Column) ChartData {
	dimension := m.effectiveDimension(displayed)
	start, end := m.rowBounds()
	grouping := m.IsGrouping()

	data := ChartData{
		ChartID:   m.chartID,
		ChartType: m.chartType,
		ThemeName: m.themeName,
		Dimension: dimension,
		Grouped:   grouping,
	}
	for _, c := range displayed {
		if c.Numeric && m.valueSelected[c.ID] && c.ID != dimension {
			data.Series = append(data.Series, Series{ColID: c.ID, Name: c.DisplayName()})
		}
	}
	if m.grid.RowCount() == 0 {
		return data
	}

	groupKey := dimension
	if grouping && dimension == model.DefaultCategoryID {
		groupKey = m.grid.RowGroupColumns()[0]
	}

	index := make(map[string]int)
	for row := start; row <= end; row++ {
		label := strconv.Itoa(row + 1)
		if groupKey != model.DefaultCategoryID {
			label = m.grid.Value(row, groupKey)
		}

		pos := len(data.Categories)
		if grouping {
			if i, ok := index[label]; ok {
				pos = i
			} else {
				index[label] = pos
			}
		}
		if pos == len(data.Categories) {
			data.Categories = append(data.Categories, Category{ID: categoryID(row, label, grouping), Label: label})
			for i := range data.Series {
				data.Series[i].Values = append(data.Series[i].Values, 0)
			}
		}
		for i := range data.Series {
			v, _ := model.NumberValue(m.grid.Value(row, data.Series[i].ColID))
			data.Series[i].Values[pos] += v
		}
	}
	return data
}

func categoryID(row int, label string, grouping bool) string {
	if grouping {
		return "group:" + label
	}
	return "row:" + strconv.Itoa(row)
}

// ChartData returns the current series data. The returned value shares no
// memory with the model.
func (m *DataModel) ChartData() ChartData {
	out := m.data
	out.Categories = slices.Clone(m.data.Categories)
	out.Series = make([]Series, len(m.data.Series))
	for i, s := range m.data.Series {
		s.Values = slices.Clone(s.Values)
		out.Series[i] = s
	}
	return out
}

// CellRanges returns a copy of the cached ranges.
func (m *DataModel) CellRanges() []model.CellRange {
	return model.CloneRanges(m.cellRanges)
}

// CellRangeParams describes the cached ranges for events.
func (m *DataModel) CellRangeParams() model.RangeParams {
	p := model.RangeParams{Columns: []string{}}
	for i, r := range m.cellRanges {
		if i == 0 {
			p.RowStartIndex, p.RowEndIndex = r.StartRow, r.EndRow
		}
		p.Columns = append(p.Columns, r.Columns...)
	}
	if len(m.cellRanges) == 0 {
		p.RowStartIndex, p.RowEndIndex = m.rowBounds()
	}
	return p
}

// DimensionColState lists the candidate dimension columns, the default
// category first.
func (m *DataModel) DimensionColState() []model.ColState {
	return slices.Clone(m.dimensionCols)
}

// ValueColState lists the candidate value columns in display order.
func (m *DataModel) ValueColState() []model.ColState {
	return slices.Clone(m.valueCols)
}

// SelectedDimension returns the selected dimension column. A constructed
// model always has one; calling this on a zero DataModel panics.
func (m *DataModel) SelectedDimension() model.ColState {
	for _, c := range m.dimensionCols {
		if c.Selected {
			return c
		}
	}
	panic("chart: data model has no selected dimension")
}
