// Package model holds the value types shared by the grid, the chart core and
// the renderers.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCategoryID is the synthetic dimension used when no category column
// is selected. Charts plot values against row position in that case.
const DefaultCategoryID = "__default_category"

// DefaultCategoryName is the display name of the default category.
const DefaultCategoryName = "(None)"

// Pinned is the pinning side of a column.
type Pinned string

const (
	PinnedNone  Pinned = ""
	PinnedLeft  Pinned = "left"
	PinnedRight Pinned = "right"
)

// IsValid reports whether p is a known pinning side.
func (p Pinned) IsValid() bool {
	switch p {
	case PinnedNone, PinnedLeft, PinnedRight:
		return true
	default:
		return false
	}
}

// Column describes one grid column and its live layout state.
type Column struct {
	ID         string `json:"id" yaml:"id"`
	HeaderName string `json:"header_name" yaml:"header_name"`
	Numeric    bool   `json:"numeric" yaml:"numeric"`
	Pinned     Pinned `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	Hidden     bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	RowGroup   bool   `json:"row_group,omitempty" yaml:"row_group,omitempty"`
}

// DisplayName returns the header name, falling back to the id.
func (c Column) DisplayName() string {
	if strings.TrimSpace(c.HeaderName) != "" {
		return c.HeaderName
	}
	return c.ID
}

// Validate checks that the column is usable in a grid.
func (c Column) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("column id is required")
	}
	if c.ID == DefaultCategoryID {
		return fmt.Errorf("column id %q is reserved", c.ID)
	}
	if !c.Pinned.IsValid() {
		return fmt.Errorf("column %s: invalid pinned value %q", c.ID, c.Pinned)
	}
	return nil
}

// ColState is the menu-facing projection of a column's chart selection.
type ColState struct {
	ColID       string `json:"col_id"`
	DisplayName string `json:"display_name"`
	Selected    bool   `json:"selected"`
	Order       int    `json:"order"`
}

// Row is one grid row keyed by column id. Values are kept as entered.
type Row map[string]string

// Clone returns a copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NumberValue parses a cell value as a number. Thousands separators and
// surrounding whitespace are tolerated.
func NumberValue(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
