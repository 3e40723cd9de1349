package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/gridchart/pkg/model"
)

// TableDiff describes what changed between two loads of a source.
type TableDiff struct {
	AddedColumns   []string
	RemovedColumns []string
	RowsBefore     int
	RowsAfter      int
	// ChangedCells counts cells that differ in rows present in both loads
	ChangedCells int
	// Samples holds up to MaxSamples changed cells
	Samples []CellDifference
}

// CellDifference is one changed cell.
type CellDifference struct {
	Row      int    `json:"row"`
	ColumnID string `json:"column_id"`
	Before   string `json:"before"`
	After    string `json:"after"`
}

// MaxSamples bounds TableDiff.Samples.
const MaxSamples = 5

// HasChanges reports whether the two loads differ at all.
func (d TableDiff) HasChanges() bool {
	return len(d.AddedColumns) > 0 || len(d.RemovedColumns) > 0 ||
		d.RowsBefore != d.RowsAfter || d.ChangedCells > 0
}

// Summary returns a one-line description suited to a status bar.
func (d TableDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("no changes (%d rows)", d.RowsAfter)
	}
	var parts []string
	if d.RowsBefore != d.RowsAfter {
		parts = append(parts, fmt.Sprintf("rows %d→%d", d.RowsBefore, d.RowsAfter))
	}
	if d.ChangedCells > 0 {
		parts = append(parts, fmt.Sprintf("%d cells changed", d.ChangedCells))
	}
	if len(d.AddedColumns) > 0 {
		parts = append(parts, "+"+strings.Join(d.AddedColumns, ",+"))
	}
	if len(d.RemovedColumns) > 0 {
		parts = append(parts, "-"+strings.Join(d.RemovedColumns, ",-"))
	}
	return strings.Join(parts, ", ")
}

// DiffTables compares two loads row by row. Rows are matched by position.
func DiffTables(before, after *Table) TableDiff {
	var d TableDiff
	if before == nil {
		before = &Table{}
	}
	if after == nil {
		after = &Table{}
	}
	d.RowsBefore = len(before.Rows)
	d.RowsAfter = len(after.Rows)

	oldCols := columnSet(before.Columns)
	newCols := columnSet(after.Columns)
	for id := range newCols {
		if !oldCols[id] {
			d.AddedColumns = append(d.AddedColumns, id)
		}
	}
	for id := range oldCols {
		if !newCols[id] {
			d.RemovedColumns = append(d.RemovedColumns, id)
		}
	}
	sort.Strings(d.AddedColumns)
	sort.Strings(d.RemovedColumns)

	shared := make([]string, 0, len(after.Columns))
	for _, c := range after.Columns {
		if oldCols[c.ID] {
			shared = append(shared, c.ID)
		}
	}

	n := min(len(before.Rows), len(after.Rows))
	for i := 0; i < n; i++ {
		for _, id := range shared {
			b, a := before.Rows[i][id], after.Rows[i][id]
			if a == b {
				continue
			}
			d.ChangedCells++
			if len(d.Samples) < MaxSamples {
				d.Samples = append(d.Samples, CellDifference{Row: i, ColumnID: id, Before: b, After: a})
			}
		}
	}
	return d
}

func columnSet(cols []model.Column) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c.ID] = true
	}
	return set
}
