package grid

import (
	"fmt"
	"slices"

	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// UserOwner is the owner key for the interactive selection made directly in
// the grid.
const UserOwner = ""

// SetCellRanges replaces the ranges claimed by owner. Other owners' ranges are
// untouched. An empty slice releases the owner's claim. The resulting
// rangeSelectionChanged event carries no id, so chart controllers never treat
// their own writes as user edits.
func (g *Grid) SetCellRanges(owner string, ranges []model.CellRange) {
	g.mu.Lock()
	g.storeRanges(owner, ranges)
	g.mu.Unlock()

	g.dispatch(events.RangeSelectionChangedEvent{Started: false, Finished: true})
}

func (g *Grid) storeRanges(owner string, ranges []model.CellRange) {
	if len(ranges) == 0 {
		if _, ok := g.ranges[owner]; ok {
			delete(g.ranges, owner)
			g.owners = slices.DeleteFunc(g.owners, func(o string) bool { return o == owner })
		}
		return
	}
	if _, ok := g.ranges[owner]; !ok {
		g.owners = append(g.owners, owner)
	}
	g.ranges[owner] = model.CloneRanges(ranges)
}

// CellRanges returns a copy of the ranges claimed by owner.
func (g *Grid) CellRanges(owner string) []model.CellRange {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return model.CloneRanges(g.ranges[owner])
}

// AllCellRanges returns every claimed range, grouped by owner in claim order.
func (g *Grid) AllCellRanges() []model.CellRange {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []model.CellRange
	for _, owner := range g.owners {
		out = append(out, model.CloneRanges(g.ranges[owner])...)
	}
	return out
}

// Owners returns the owners currently holding ranges.
func (g *Grid) Owners() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.owners)
}

// SelectUserRange replaces the interactive selection.
func (g *Grid) SelectUserRange(r model.CellRange) {
	r.ID = UserOwner
	g.SetCellRanges(UserOwner, []model.CellRange{r})
}

// UserRange returns the interactive selection, if any.
func (g *Grid) UserRange() (model.CellRange, bool) {
	ranges := g.CellRanges(UserOwner)
	if len(ranges) == 0 {
		return model.CellRange{}, false
	}
	return ranges[0], true
}

// ResizeChartRange simulates the user dragging a chart range handle: every
// range owned by chartID gets the new end row, and addColumns (if any) are
// appended as one more range. The event carries the chart id so the owning
// controller resynchronizes.
func (g *Grid) ResizeChartRange(chartID string, endRow int, addColumns ...string) error {
	g.mu.Lock()
	current := model.CloneRanges(g.ranges[chartID])
	if len(current) == 0 {
		g.mu.Unlock()
		return fmt.Errorf("no ranges claimed by %s", chartID)
	}
	for _, id := range addColumns {
		if g.indexOf(id) < 0 {
			g.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownColumn, id)
		}
	}
	for i := range current {
		current[i].EndRow = endRow
	}
	if len(addColumns) > 0 {
		current = append(current, model.CellRange{
			ID:          chartID,
			StartRow:    current[0].StartRow,
			EndRow:      endRow,
			Columns:     slices.Clone(addColumns),
			StartColumn: addColumns[0],
		})
	}
	g.storeRanges(chartID, current)
	g.mu.Unlock()

	g.dispatch(events.RangeSelectionChangedEvent{ID: chartID, Finished: true})
	return nil
}
