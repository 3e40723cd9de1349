// Package theme resolves chart theme names to palettes.
//
// Stock themes are built in and cannot be modified. Custom themes are named
// overrides of a stock base theme, usually declared in the config file.
package theme

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/gridchart/pkg/model"
)

// DefaultName is the theme used when a name cannot be resolved.
const DefaultName = "ag-default"

// Theme is a resolved chart theme.
type Theme struct {
	Name       string
	Palette    model.Palette
	Background string
	Foreground string
	Dark       bool
}

// CustomTheme overrides parts of a stock base theme.
type CustomTheme struct {
	Name      string   `yaml:"name" json:"name"`
	BaseTheme string   `yaml:"base_theme,omitempty" json:"base_theme,omitempty"`
	Fills     []string `yaml:"fills,omitempty" json:"fills,omitempty"`
	Strokes   []string `yaml:"strokes,omitempty" json:"strokes,omitempty"`
}

// ThemeRef names a theme to look up: either a stock theme by name or a custom
// theme definition.
type ThemeRef struct {
	Name   string
	Custom *CustomTheme
}

var stockFills = map[string][]string{
	"ag-default":  {"#f3622d", "#fba71b", "#57b757", "#41a9c9", "#4258c9", "#9a42c8", "#c84164", "#888888"},
	"ag-material": {"#f44336", "#e91e63", "#9c27b0", "#673ab7", "#3f51b5", "#2196f3", "#03a9f4", "#00bcd4"},
	"ag-pastel":   {"#c4a0f6", "#9ce7e7", "#ffc6a0", "#a3d6fb", "#fbc1d6", "#a7e9a7", "#ffe4a3", "#d3d3d3"},
	"ag-solar":    {"#febe76", "#ff7979", "#badc58", "#f9ca23", "#f0932b", "#eb4c4b", "#6ab04c", "#7ed6df"},
	"ag-vivid":    {"#5090dc", "#ffa03a", "#459d55", "#34bfe1", "#e1cc00", "#9669cb", "#b3daff", "#ffe699"},
}

var stockOrder = []string{"ag-default", "ag-material", "ag-pastel", "ag-solar", "ag-vivid"}

// StockNames lists every stock theme, light variants first.
func StockNames() []string {
	names := make([]string, 0, len(stockOrder)*2)
	names = append(names, stockOrder...)
	for _, n := range stockOrder {
		names = append(names, n+"-dark")
	}
	return names
}

// IsStock reports whether name is a built-in theme.
func IsStock(name string) bool {
	_, ok := stockFills[strings.TrimSuffix(name, "-dark")]
	return ok
}

func stock(name string) Theme {
	dark := strings.HasSuffix(name, "-dark")
	base := strings.TrimSuffix(name, "-dark")
	fills, ok := stockFills[base]
	if !ok {
		return stock(DefaultName)
	}
	t := Theme{
		Name: name,
		Palette: model.Palette{
			Fills:   append([]string(nil), fills...),
			Strokes: DeriveStrokes(fills),
		},
		Background: "#ffffff",
		Foreground: "#222222",
		Dark:       dark,
	}
	if dark {
		t.Background = "#1e1e1e"
		t.Foreground = "#dddddd"
	}
	return t
}

// DeriveStrokes darkens each fill to produce a matching stroke color. Invalid
// colors are passed through unchanged.
func DeriveStrokes(fills []string) []string {
	black := colorful.Color{}
	strokes := make([]string, len(fills))
	for i, f := range fills {
		c, err := colorful.Hex(f)
		if err != nil {
			strokes[i] = f
			continue
		}
		strokes[i] = c.BlendLab(black, 0.3).Clamped().Hex()
	}
	return strokes
}

// ValidateColors checks that every entry is a #rrggbb hex color.
func ValidateColors(colors []string) error {
	for _, c := range colors {
		if _, err := colorful.Hex(c); err != nil {
			return fmt.Errorf("invalid color %q: %w", c, err)
		}
	}
	return nil
}

// Validate checks a custom theme definition.
func (c CustomTheme) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("custom theme name is required")
	}
	if IsStock(c.Name) {
		return fmt.Errorf("custom theme %q shadows a stock theme", c.Name)
	}
	if c.BaseTheme != "" && !IsStock(c.BaseTheme) {
		return fmt.Errorf("custom theme %q: unknown base theme %q", c.Name, c.BaseTheme)
	}
	if err := ValidateColors(c.Fills); err != nil {
		return fmt.Errorf("custom theme %q fills: %w", c.Name, err)
	}
	if err := ValidateColors(c.Strokes); err != nil {
		return fmt.Errorf("custom theme %q strokes: %w", c.Name, err)
	}
	return nil
}

// Palette returns the custom palette override, or nil when the theme only
// changes the base.
func (c CustomTheme) Palette() *model.Palette {
	if len(c.Fills) == 0 {
		return nil
	}
	strokes := c.Strokes
	if len(strokes) == 0 {
		strokes = DeriveStrokes(c.Fills)
	}
	return &model.Palette{
		Fills:   append([]string(nil), c.Fills...),
		Strokes: append([]string(nil), strokes...),
	}
}
