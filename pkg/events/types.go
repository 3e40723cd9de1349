package events

import "github.com/vanderheijden86/gridchart/pkg/model"

// Event type names. Grid events are raised by the grid; chart events by chart
// controllers and proxies.
const (
	RangeSelectionChanged = "rangeSelectionChanged"
	ColumnMoved           = "columnMoved"
	ColumnPinned          = "columnPinned"
	ColumnVisible         = "columnVisible"
	ColumnRowGroupChanged = "columnRowGroupChanged"
	ModelUpdated          = "modelUpdated"
	CellValueChanged      = "cellValueChanged"

	ChartUpdated               = "chartUpdated"
	ChartRangeSelectionChanged = "chartRangeSelectionChanged"
	ChartOptionsChanged        = "chartOptionsChanged"
	ChartCreated               = "chartCreated"
	ChartDestroyed             = "chartDestroyed"
)

// GridAPI is the read handle on grid data carried in chart events.
type GridAPI interface {
	RowCount() int
	Value(row int, colID string) string
}

// ColumnAPI is the read handle on grid columns carried in chart events.
type ColumnAPI interface {
	DisplayedColumns() []model.Column
	Column(id string) (model.Column, bool)
}

// RangeSelectionChangedEvent is raised whenever the grid's range selection
// changes. ID is set only when a chart-owned range was edited by the user;
// writes made through the range service leave it empty.
type RangeSelectionChangedEvent struct {
	ID       string
	Started  bool
	Finished bool
}

func (RangeSelectionChangedEvent) EventType() string { return RangeSelectionChanged }

// ColumnEvent covers column moved/pinned/visible/row-group notifications.
type ColumnEvent struct {
	Type      string
	ColumnIDs []string
}

func (e ColumnEvent) EventType() string { return e.Type }

// ModelUpdatedEvent is raised after row data is replaced or reordered.
type ModelUpdatedEvent struct {
	RowCount int
}

func (ModelUpdatedEvent) EventType() string { return ModelUpdated }

// CellValueChangedEvent is raised after a single cell edit.
type CellValueChangedEvent struct {
	Row      int
	ColumnID string
	OldValue string
	NewValue string
}

func (CellValueChangedEvent) EventType() string { return CellValueChanged }

// ChartUpdatedEvent signals that a chart's model changed and should be
// redrawn.
type ChartUpdatedEvent struct {
	ChartID string
}

func (ChartUpdatedEvent) EventType() string { return ChartUpdated }

// ChartRangeSelectionChangedEvent signals a user-affecting change to the
// cells a chart reads.
type ChartRangeSelectionChangedEvent struct {
	ID        string
	ChartID   string
	CellRange model.RangeParams
	Grid      GridAPI
	Columns   ColumnAPI
}

func (ChartRangeSelectionChangedEvent) EventType() string { return ChartRangeSelectionChanged }

// ChartOptionsChangedEvent signals that rendering options (type, theme,
// options) of a chart changed.
type ChartOptionsChangedEvent struct {
	ChartID   string
	ChartType model.ChartType
	ThemeName string
	Options   any
}

func (ChartOptionsChangedEvent) EventType() string { return ChartOptionsChanged }

// ChartLifecycleEvent is raised when a chart is created or destroyed.
type ChartLifecycleEvent struct {
	Type    string
	ChartID string
}

func (e ChartLifecycleEvent) EventType() string { return e.Type }
