// Package grid implements the in-memory table that charts are linked to: its
// column layout, row data and the shared range-selection service.
//
// Every mutation dispatches the matching grid event on the bus after the
// grid's own lock is released, so listeners may read the grid freely.
package grid

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// Common errors.
var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrRowOutOfRange   = errors.New("row out of range")
	ErrDuplicateColumn = errors.New("duplicate column id")
)

// Dispatcher is the slice of the event bus the grid needs.
type Dispatcher interface {
	Dispatch(events.Event)
}

// Grid holds columns, rows and the per-owner cell ranges.
type Grid struct {
	mu      sync.RWMutex
	bus     Dispatcher
	columns []model.Column
	rows    []model.Row

	ranges map[string][]model.CellRange
	owners []string
}

// New creates a grid. Columns keep the given order as the initial layout.
func New(bus Dispatcher, columns []model.Column, rows []model.Row) (*Grid, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.ID)
		}
		seen[c.ID] = true
	}
	cloned := make([]model.Row, len(rows))
	for i, r := range rows {
		cloned[i] = r.Clone()
	}
	return &Grid{
		bus:     bus,
		columns: slices.Clone(columns),
		rows:    cloned,
		ranges:  make(map[string][]model.CellRange),
	}, nil
}

func (g *Grid) dispatch(ev events.Event) {
	if g.bus != nil {
		g.bus.Dispatch(ev)
	}
}

// Columns returns every column in layout order, hidden ones included.
func (g *Grid) Columns() []model.Column {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.columns)
}

// DisplayedColumns returns the visible columns in display order: left-pinned,
// then unpinned, then right-pinned, each group in layout order.
func (g *Grid) DisplayedColumns() []model.Column {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return displayed(g.columns)
}

func displayed(columns []model.Column) []model.Column {
	out := make([]model.Column, 0, len(columns))
	for _, side := range []model.Pinned{model.PinnedLeft, model.PinnedNone, model.PinnedRight} {
		for _, c := range columns {
			if !c.Hidden && c.Pinned == side {
				out = append(out, c)
			}
		}
	}
	return out
}

// DisplayIndex returns the position of colID among displayed columns, or -1.
func (g *Grid) DisplayIndex(colID string) int {
	for i, c := range g.DisplayedColumns() {
		if c.ID == colID {
			return i
		}
	}
	return -1
}

// Column looks up a column by id.
func (g *Grid) Column(id string) (model.Column, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx := g.indexOf(id)
	if idx < 0 {
		return model.Column{}, false
	}
	return g.columns[idx], true
}

// RowGroupColumns returns the ids of columns with row grouping active.
func (g *Grid) RowGroupColumns() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var ids []string
	for _, c := range g.columns {
		if c.RowGroup {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rows)
}

// Value returns the raw value at row/colID, or "" when out of range.
func (g *Grid) Value(row int, colID string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	return g.rows[row][colID]
}

// Rows returns a copy of all rows.
func (g *Grid) Rows() []model.Row {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Row, len(g.rows))
	for i, r := range g.rows {
		out[i] = r.Clone()
	}
	return out
}

func (g *Grid) indexOf(id string) int {
	for i, c := range g.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// MoveColumn moves a column to position toIndex in the layout.
func (g *Grid) MoveColumn(id string, toIndex int) error {
	g.mu.Lock()
	from := g.indexOf(id)
	if from < 0 {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	toIndex = max(0, min(toIndex, len(g.columns)-1))
	if from == toIndex {
		g.mu.Unlock()
		return nil
	}
	col := g.columns[from]
	g.columns = slices.Delete(g.columns, from, from+1)
	g.columns = slices.Insert(g.columns, toIndex, col)
	g.mu.Unlock()

	g.dispatch(events.ColumnEvent{Type: events.ColumnMoved, ColumnIDs: []string{id}})
	return nil
}

// MoveColumnBy shifts a column delta positions within the layout.
func (g *Grid) MoveColumnBy(id string, delta int) error {
	g.mu.RLock()
	from := g.indexOf(id)
	g.mu.RUnlock()
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	return g.MoveColumn(id, from+delta)
}

// SetPinned pins a column to a side, or unpins it with model.PinnedNone.
func (g *Grid) SetPinned(id string, pinned model.Pinned) error {
	if !pinned.IsValid() {
		return fmt.Errorf("invalid pinned value %q", pinned)
	}
	return g.updateColumn(id, events.ColumnPinned, func(c *model.Column) bool {
		if c.Pinned == pinned {
			return false
		}
		c.Pinned = pinned
		return true
	})
}

// SetVisible shows or hides a column.
func (g *Grid) SetVisible(id string, visible bool) error {
	return g.updateColumn(id, events.ColumnVisible, func(c *model.Column) bool {
		if c.Hidden == !visible {
			return false
		}
		c.Hidden = !visible
		return true
	})
}

// SetRowGroup turns row grouping on or off for a column.
func (g *Grid) SetRowGroup(id string, on bool) error {
	return g.updateColumn(id, events.ColumnRowGroupChanged, func(c *model.Column) bool {
		if c.RowGroup == on {
			return false
		}
		c.RowGroup = on
		return true
	})
}

// updateColumn applies fn and dispatches eventType when fn reports a change.
func (g *Grid) updateColumn(id, eventType string, fn func(*model.Column) bool) error {
	g.mu.Lock()
	idx := g.indexOf(id)
	if idx < 0 {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	changed := fn(&g.columns[idx])
	g.mu.Unlock()

	if changed {
		g.dispatch(events.ColumnEvent{Type: eventType, ColumnIDs: []string{id}})
	}
	return nil
}

// SetRows replaces all row data.
func (g *Grid) SetRows(rows []model.Row) {
	g.mu.Lock()
	g.rows = make([]model.Row, len(rows))
	for i, r := range rows {
		g.rows[i] = r.Clone()
	}
	n := len(g.rows)
	g.mu.Unlock()

	g.dispatch(events.ModelUpdatedEvent{RowCount: n})
}

// SetColumns replaces the column definitions, keeping layout state (order,
// pinning, visibility, grouping) for columns that survive by id.
func (g *Grid) SetColumns(columns []model.Column) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.ID)
		}
		seen[c.ID] = true
	}

	g.mu.Lock()
	incoming := make(map[string]model.Column, len(columns))
	for _, c := range columns {
		incoming[c.ID] = c
	}
	next := make([]model.Column, 0, len(columns))
	for _, old := range g.columns {
		c, ok := incoming[old.ID]
		if !ok {
			continue
		}
		c.Pinned, c.Hidden, c.RowGroup = old.Pinned, old.Hidden, old.RowGroup
		next = append(next, c)
		delete(incoming, old.ID)
	}
	for _, c := range columns {
		if _, ok := incoming[c.ID]; ok {
			next = append(next, c)
		}
	}
	g.columns = next
	g.mu.Unlock()
	return nil
}

// SetValue edits one cell.
func (g *Grid) SetValue(row int, colID, value string) error {
	g.mu.Lock()
	if row < 0 || row >= len(g.rows) {
		g.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if g.indexOf(colID) < 0 {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownColumn, colID)
	}
	old := g.rows[row][colID]
	if old == value {
		g.mu.Unlock()
		return nil
	}
	if g.rows[row] == nil {
		g.rows[row] = model.Row{}
	}
	g.rows[row][colID] = value
	g.mu.Unlock()

	g.dispatch(events.CellValueChangedEvent{Row: row, ColumnID: colID, OldValue: old, NewValue: value})
	return nil
}
