// Package datasource discovers, validates and loads tabular data for the grid.
// It reads CSV, JSON, XLSX and SQLite files and can pick the freshest valid
// file from a directory of candidates.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoSources is returned when discovery finds no usable source.
	ErrNoSources = errors.New("no valid data sources")
	// ErrUnsupportedFormat is returned for files gc cannot read.
	ErrUnsupportedFormat = errors.New("unsupported data format")
)

// SourceType identifies the format of a data source
type SourceType string

const (
	SourceTypeCSV    SourceType = "csv"
	SourceTypeJSON   SourceType = "json"
	SourceTypeXLSX   SourceType = "xlsx"
	SourceTypeSQLite SourceType = "sqlite"
)

// Priority values for source types (higher = preferred when equally fresh)
const (
	PrioritySQLite = 100
	PriorityXLSX   = 80
	PriorityJSON   = 60
	PriorityCSV    = 50
)

// validationLimit caps concurrent validation (file descriptors, memory).
const validationLimit = 8

// DataSource represents a potential source of grid data
type DataSource struct {
	// Type identifies the file format
	Type SourceType `json:"type"`
	// Path is the path to the source file, without any #fragment
	Path string `json:"path"`
	// Table names the SQLite table or XLSX sheet to read (optional)
	Table string `json:"table,omitempty"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int       `json:"priority"`
	ModTime  time.Time `json:"mod_time"`
	Size     int64     `json:"size"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	RowCount        int    `json:"row_count"`
	ColumnCount     int    `json:"column_count"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, rows=%d, %s)",
		s.Location(), s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.RowCount, status)
}

// Location returns the path with the table fragment, as accepted by Load.
func (s DataSource) Location() string {
	if s.Table == "" {
		return s.Path
	}
	return s.Path + "#" + s.Table
}

// SourceTypeFor maps a file extension to a source type.
func SourceTypeFor(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return SourceTypeCSV, nil
	case ".json":
		return SourceTypeJSON, nil
	case ".xlsx", ".xlsm":
		return SourceTypeXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func priorityFor(t SourceType) int {
	switch t {
	case SourceTypeSQLite:
		return PrioritySQLite
	case SourceTypeXLSX:
		return PriorityXLSX
	case SourceTypeJSON:
		return PriorityJSON
	default:
		return PriorityCSV
	}
}

// NewSource describes the file at location, which may carry a #table
// fragment. The file must exist.
func NewSource(location string) (DataSource, error) {
	path, table := splitLocation(location)
	typ, err := SourceTypeFor(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("stat data source: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("data source %s is a directory", path)
	}
	return DataSource{
		Type:     typ,
		Path:     path,
		Table:    table,
		Priority: priorityFor(typ),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// splitLocation separates "file.db#table" into its parts.
func splitLocation(location string) (path, table string) {
	if i := strings.LastIndex(location, "#"); i > 0 {
		return location[:i], location[i+1:]
	}
	return location, ""
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory to scan (uses cwd if empty)
	Dir string
	// ValidateAfterDiscovery loads each discovered source to check it
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds readable data files in a directory, freshest first.
func DiscoverSources(ctx context.Context, opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		// Skip hidden files, editor backups and Excel lock files
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") || strings.HasSuffix(name, "~") {
			continue
		}
		typ, err := SourceTypeFor(name)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sources = append(sources, DataSource{
			Type:     typ,
			Path:     filepath.Join(dir, name),
			Priority: priorityFor(typ),
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found %s: %s (mod=%s)", typ, name, info.ModTime().Format(time.RFC3339)))
		}
	}

	if opts.ValidateAfterDiscovery {
		if err := validateParallel(ctx, sources); err != nil {
			return nil, err
		}
		if opts.Verbose {
			for _, s := range sources {
				if !s.Valid {
					opts.Logger(fmt.Sprintf("Validation failed for %s: %s", s.Path, s.ValidationError))
				}
			}
		}
	}

	if opts.ValidateAfterDiscovery && !opts.IncludeInvalid {
		valid := sources[:0]
		for _, s := range sources {
			if s.Valid {
				valid = append(valid, s)
			}
		}
		sources = valid
	}

	sortSources(sources)

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}
	return sources, nil
}

// validateParallel validates every source concurrently. Individual failures
// are recorded on the source; only cancellation is returned.
func validateParallel(ctx context.Context, sources []DataSource) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(validationLimit)

	for i := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_ = ValidateSource(&sources[i])
			return nil
		})
	}
	return g.Wait()
}

// ValidateSource loads the source and records whether it is usable.
func ValidateSource(src *DataSource) error {
	table, err := LoadFromSource(*src)
	if err == nil && len(table.Columns) == 0 {
		err = fmt.Errorf("no columns")
	}
	if err == nil && len(table.Rows) == 0 {
		err = fmt.Errorf("no rows")
	}
	if err != nil {
		src.Valid = false
		src.ValidationError = err.Error()
		return err
	}
	src.Valid = true
	src.ValidationError = ""
	src.RowCount = len(table.Rows)
	src.ColumnCount = len(table.Columns)
	return nil
}

// SelectBestSource returns the freshest valid source; equally fresh sources
// are ordered by priority.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	candidates := make([]DataSource, 0, len(sources))
	for _, s := range sources {
		if s.Valid {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return DataSource{}, ErrNoSources
	}
	sortSources(candidates)
	return candidates[0], nil
}

func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}
