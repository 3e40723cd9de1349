package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRange is a rectangular selection over the grid: a contiguous run of
// displayed columns between two row indexes (inclusive, zero-based).
type CellRange struct {
	ID          string   `json:"id,omitempty"`
	StartRow    int      `json:"start_row"`
	EndRow      int      `json:"end_row"`
	Columns     []string `json:"columns"`
	StartColumn string   `json:"start_column,omitempty"`
}

// Clone returns a deep copy of r.
func (r CellRange) Clone() CellRange {
	r.Columns = slices.Clone(r.Columns)
	return r
}

// Equal reports whether two ranges describe the same cells and owner.
func (r CellRange) Equal(o CellRange) bool {
	return r.ID == o.ID &&
		r.StartRow == o.StartRow &&
		r.EndRow == o.EndRow &&
		r.StartColumn == o.StartColumn &&
		slices.Equal(r.Columns, o.Columns)
}

// Contains reports whether the cell at row/colID falls inside the range.
func (r CellRange) Contains(row int, colID string) bool {
	lo, hi := r.StartRow, r.EndRow
	if lo > hi {
		lo, hi = hi, lo
	}
	return row >= lo && row <= hi && slices.Contains(r.Columns, colID)
}

// A1 renders the range in spreadsheet notation given the display index of
// each column, e.g. "B2:D10". The header occupies row 1, so grid row 0 is
// spreadsheet row 2.
func (r CellRange) A1(displayIndex func(colID string) int) (string, error) {
	if len(r.Columns) == 0 {
		return "", fmt.Errorf("range has no columns")
	}
	first, last := -1, -1
	for _, id := range r.Columns {
		idx := displayIndex(id)
		if idx < 0 {
			return "", fmt.Errorf("column %s is not displayed", id)
		}
		if first < 0 || idx < first {
			first = idx
		}
		if idx > last {
			last = idx
		}
	}
	lo, hi := r.StartRow, r.EndRow
	if lo > hi {
		lo, hi = hi, lo
	}
	start, err := excelize.CoordinatesToCellName(first+1, lo+2)
	if err != nil {
		return "", err
	}
	end, err := excelize.CoordinatesToCellName(last+1, hi+2)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}

// RangesEqual compares two range sequences element by element.
func RangesEqual(a, b []CellRange) bool {
	return slices.EqualFunc(a, b, CellRange.Equal)
}

// CloneRanges deep-copies a range sequence. A nil input yields an empty,
// non-nil slice so callers can tell "cleared" from "never set".
func CloneRanges(in []CellRange) []CellRange {
	out := make([]CellRange, 0, len(in))
	for _, r := range in {
		out = append(out, r.Clone())
	}
	return out
}

// RangeParams is the event-facing description of a chart's range.
type RangeParams struct {
	RowStartIndex int      `json:"row_start_index"`
	RowEndIndex   int      `json:"row_end_index"`
	Columns       []string `json:"columns"`
}

// String renders the params compactly for status lines and logs.
func (p RangeParams) String() string {
	return fmt.Sprintf("rows %d-%d [%s]", p.RowStartIndex, p.RowEndIndex, strings.Join(p.Columns, ","))
}

// Palette is an ordered set of series colors (hex strings).
type Palette struct {
	Fills   []string `json:"fills" yaml:"fills"`
	Strokes []string `json:"strokes" yaml:"strokes"`
}

// Fill returns the fill color for series i, cycling through the palette.
func (p Palette) Fill(i int) string {
	if len(p.Fills) == 0 {
		return "#888888"
	}
	return p.Fills[i%len(p.Fills)]
}

// Stroke returns the stroke color for series i, cycling through the palette.
func (p Palette) Stroke(i int) string {
	if len(p.Strokes) == 0 {
		return p.Fill(i)
	}
	return p.Strokes[i%len(p.Strokes)]
}
