package model

import (
	"testing"
)

func TestChartType(t *testing.T) {
	tests := []struct {
		in         string
		want       ChartType
		wantErr    bool
		xy, polar  bool
		horizontal bool
	}{
		{"groupedColumn", ChartGroupedColumn, false, false, false, false},
		{"SCATTER", ChartScatter, false, true, false, false},
		{" bubble ", ChartBubble, false, true, false, false},
		{"pie", ChartPie, false, false, true, false},
		{"doughnut", ChartDoughnut, false, false, true, false},
		{"stackedBar", ChartStackedBar, false, false, false, true},
		{"radar", "", true, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChartType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChartType(%q) err=%v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.wantErr {
				return
			}
			if got.IsXY() != tt.xy || got.IsPolar() != tt.polar || got.IsHorizontal() != tt.horizontal {
				t.Errorf("%s: xy=%v polar=%v horizontal=%v", got, got.IsXY(), got.IsPolar(), got.IsHorizontal())
			}
		})
	}
}

func TestChartType_NextCycles(t *testing.T) {
	all := AllChartTypes()
	seen := make(map[ChartType]bool)
	ct := all[0]
	for range all {
		seen[ct] = true
		ct = ct.Next()
	}
	if ct != all[0] || len(seen) != len(all) {
		t.Errorf("Next does not cycle through all %d types", len(all))
	}
	if ChartType("bogus").Next() != all[0] {
		t.Error("unknown type should restart the cycle")
	}
}

func TestCellRange_A1(t *testing.T) {
	index := map[string]int{"country": 0, "sales": 1, "profit": 2}
	lookup := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		return -1
	}

	tests := []struct {
		name    string
		r       CellRange
		want    string
		wantErr bool
	}{
		{"single column", CellRange{StartRow: 0, EndRow: 3, Columns: []string{"country"}}, "A2:A5", false},
		{"span", CellRange{StartRow: 4, EndRow: 1, Columns: []string{"profit", "sales"}}, "B3:C6", false},
		{"hidden column", CellRange{Columns: []string{"units"}}, "", true},
		{"empty", CellRange{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.A1(lookup)
			if (err != nil) != tt.wantErr {
				t.Fatalf("A1() err=%v", err)
			}
			if got != tt.want {
				t.Errorf("A1() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellRange_CloneAndEqual(t *testing.T) {
	r := CellRange{ID: "c", StartRow: 1, EndRow: 2, Columns: []string{"a", "b"}, StartColumn: "a"}
	c := r.Clone()
	c.Columns[0] = "z"
	if r.Columns[0] != "a" {
		t.Error("Clone shares column slice")
	}
	if r.Equal(c) {
		t.Error("ranges with different columns compare equal")
	}
	if !r.Equal(r.Clone()) {
		t.Error("clone should equal original")
	}
	if !r.Contains(2, "b") || r.Contains(3, "b") || r.Contains(1, "z") {
		t.Error("Contains mismatch")
	}
}

func TestCloneRanges_NonNil(t *testing.T) {
	if got := CloneRanges(nil); got == nil || len(got) != 0 {
		t.Errorf("CloneRanges(nil) = %#v", got)
	}
	if !RangesEqual(nil, []CellRange{}) {
		t.Error("nil and empty should be equal")
	}
}

func TestPalette(t *testing.T) {
	p := Palette{Fills: []string{"#111111", "#222222"}}
	if p.Fill(3) != "#222222" {
		t.Errorf("Fill should cycle, got %s", p.Fill(3))
	}
	if p.Stroke(0) != "#111111" {
		t.Errorf("Stroke should fall back to fill, got %s", p.Stroke(0))
	}
	if (Palette{}).Fill(0) == "" {
		t.Error("empty palette should still yield a color")
	}
}

func TestColumn(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		wantErr bool
	}{
		{"ok", Column{ID: "sales"}, false},
		{"blank id", Column{ID: "  "}, true},
		{"reserved", Column{ID: DefaultCategoryID}, true},
		{"bad pin", Column{ID: "x", Pinned: "middle"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.col.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
	if (Column{ID: "sales"}).DisplayName() != "sales" {
		t.Error("DisplayName should fall back to id")
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 1,250.5 ", 1250.5, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := NumberValue(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NumberValue(%q) = %v, %v", tt.in, got, ok)
		}
	}
}
