// Package testutil provides deterministic grid fixtures, recorders and
// assertions shared by the package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/vanderheijden86/gridchart/pkg/model"
)

// SalesColumns is the column layout used across the chart tests:
// country | region | sales | profit | units.
func SalesColumns() []model.Column {
	return []model.Column{
		{ID: "country", HeaderName: "Country"},
		{ID: "region", HeaderName: "Region"},
		{ID: "sales", HeaderName: "Sales", Numeric: true},
		{ID: "profit", HeaderName: "Profit", Numeric: true},
		{ID: "units", HeaderName: "Units", Numeric: true},
	}
}

// SalesRows returns four fixed rows over SalesColumns. Two rows share the
// EMEA region so grouping has something to aggregate.
func SalesRows() []model.Row {
	return []model.Row{
		{"country": "Ireland", "region": "EMEA", "sales": "100", "profit": "20", "units": "5"},
		{"country": "Brazil", "region": "LATAM", "sales": "250", "profit": "40", "units": "12"},
		{"country": "Japan", "region": "APAC", "sales": "175", "profit": "35", "units": "9"},
		{"country": "Spain", "region": "EMEA", "sales": "80", "profit": "10", "units": "4"},
	}
}

// GeneratorConfig controls row generation.
type GeneratorConfig struct {
	Seed      int64 // Random seed; 0 uses 42
	Rows      int   // Number of rows (default 20)
	MaxValue  int   // Upper bound for numeric cells (default 1000)
	BlankRate int   // Percentage of numeric cells left blank
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, Rows: 20, MaxValue: 1000}
}

// Generator creates deterministic rows over SalesColumns.
type Generator struct {
	rng    *rand.Rand
	config GeneratorConfig
}

// NewGenerator creates a generator with the given config.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Seed == 0 {
		config.Seed = 42
	}
	if config.Rows <= 0 {
		config.Rows = 20
	}
	if config.MaxValue <= 0 {
		config.MaxValue = 1000
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(config.Seed)),
		config: config,
	}
}

var (
	regions   = []string{"EMEA", "APAC", "LATAM", "NA"}
	countries = []string{"Ireland", "Japan", "Brazil", "Canada", "Spain", "Kenya", "Chile", "India"}
)

// Rows generates the configured number of rows.
func (g *Generator) Rows() []model.Row {
	rows := make([]model.Row, g.config.Rows)
	for i := range rows {
		rows[i] = model.Row{
			"country": fmt.Sprintf("%s-%d", countries[g.rng.Intn(len(countries))], i),
			"region":  regions[g.rng.Intn(len(regions))],
			"sales":   g.number(),
			"profit":  g.number(),
			"units":   g.number(),
		}
	}
	return rows
}

func (g *Generator) number() string {
	if g.config.BlankRate > 0 && g.rng.Intn(100) < g.config.BlankRate {
		return ""
	}
	return strconv.Itoa(g.rng.Intn(g.config.MaxValue))
}
