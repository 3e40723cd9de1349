package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/gridchart/pkg/debug"
	"github.com/vanderheijden86/gridchart/pkg/metrics"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// Table is a loaded data set ready for the grid.
type Table struct {
	Columns []model.Column
	Rows    []model.Row
	Source  DataSource
}

// Load reads the file at location, dispatching on its extension. SQLite
// databases and workbooks accept a "#table" (or "#sheet") suffix; without
// one the first table or sheet is read.
func Load(location string) (*Table, error) {
	src, err := NewSource(location)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(src)
}

// LoadDir discovers sources in dir, selects the freshest valid one and
// loads it.
func LoadDir(ctx context.Context, dir string) (*Table, error) {
	sources, err := DiscoverSources(ctx, DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		return nil, err
	}
	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return LoadFromSource(best)
}

// LoadFromSource loads a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source DataSource) (*Table, error) {
	defer metrics.Timer(metrics.DataLoad)()
	start := time.Now()

	var (
		header  []string
		records [][]string
		err     error
	)
	switch source.Type {
	case SourceTypeCSV:
		header, records, err = readCSV(source.Path)
	case SourceTypeJSON:
		header, records, err = readJSON(source.Path)
	case SourceTypeXLSX:
		header, records, err = readXLSX(source.Path, source.Table)
	case SourceTypeSQLite:
		var reader *SQLiteReader
		reader, err = NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		header, records, err = reader.ReadTable(source.Table)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source.Location(), err)
	}

	table := buildTable(header, records)
	table.Source = source
	table.Source.RowCount = len(table.Rows)
	table.Source.ColumnCount = len(table.Columns)

	debug.Log("datasource loaded",
		"source", source.Location(),
		"type", source.Type,
		"columns", len(table.Columns),
		"rows", len(table.Rows),
		"took", time.Since(start))
	return table, nil
}

// buildTable turns a header and string records into grid columns and rows.
// A column is numeric when it has at least one value and every non-blank
// value parses as a number.
func buildTable(header []string, records [][]string) *Table {
	ids := columnIDs(header)
	columns := make([]model.Column, len(header))
	for i, name := range header {
		columns[i] = model.Column{
			ID:         ids[i],
			HeaderName: strings.TrimSpace(name),
			Numeric:    isNumericColumn(records, i),
		}
	}

	rows := make([]model.Row, 0, len(records))
	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		row := make(model.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col.ID] = strings.TrimSpace(rec[i])
			} else {
				row[col.ID] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: columns, Rows: rows}
}

// columnIDs derives unique, lower-case identifiers from header names.
func columnIDs(header []string) []string {
	ids := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		id := slug(name)
		if id == "" || id == model.DefaultCategoryID {
			id = "col_" + strconv.Itoa(i+1)
		}
		if n := seen[id]; n > 0 {
			seen[id] = n + 1
			id = id + "_" + strconv.Itoa(n+1)
		}
		seen[id]++
		ids[i] = id
	}
	return ids
}

func slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func isNumericColumn(records [][]string, col int) bool {
	seen := false
	for _, rec := range records {
		if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
			continue
		}
		if _, ok := model.NumberValue(rec[col]); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
