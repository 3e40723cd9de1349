// This file implements the interactive chart wizard behind gc -wizard. It
// asks which columns to chart, how to draw them and where to write the image.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/gridchart/pkg/config"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// WizardConfig holds the answers of a wizard run. It is saved so the next
// run can offer the same chart again.
type WizardConfig struct {
	Columns    []string        `json:"columns"`
	ChartType  model.ChartType `json:"chart_type"`
	ThemeName  string          `json:"theme_name"`
	Format     string          `json:"format"`
	OutputPath string          `json:"output_path"`
}

// Wizard handles the interactive chart flow.
type Wizard struct {
	config  *WizardConfig
	columns []model.Column
	themes  []string
}

// NewWizard creates a wizard over the table's columns and the configured
// theme names.
func NewWizard(columns []model.Column, themes []string) *Wizard {
	return &Wizard{
		config: &WizardConfig{
			ChartType: model.ChartGroupedColumn,
			Format:    FormatPNG,
		},
		columns: columns,
		themes:  themes,
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run walks through the wizard and returns the chosen configuration.
func (w *Wizard) Run() (*WizardConfig, error) {
	fmt.Println("gc chart wizard")
	fmt.Println("────────────────")

	if saved, err := LoadWizardConfig(); err == nil && saved != nil && w.Usable(saved) {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
			return w.config, nil
		}
	}

	if len(w.themes) > 0 {
		w.config.ThemeName = w.themes[0]
	}
	if err := w.collectChart(); err != nil {
		return nil, err
	}
	if err := w.collectOutput(); err != nil {
		return nil, err
	}

	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save wizard settings: %v\n", err)
	}
	return w.config, nil
}

// GetConfig returns the current wizard configuration.
func (w *Wizard) GetConfig() *WizardConfig {
	return w.config
}

// Usable reports whether a saved configuration still fits the table: every
// saved column must exist.
func (w *Wizard) Usable(saved *WizardConfig) bool {
	if len(saved.Columns) == 0 || !saved.ChartType.IsValid() {
		return false
	}
	for _, id := range saved.Columns {
		if !w.hasColumn(id) {
			return false
		}
	}
	return true
}

func (w *Wizard) hasColumn(id string) bool {
	for _, c := range w.columns {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Println("Found previous chart settings:")
	fmt.Printf("  Columns: %s\n", strings.Join(saved.Columns, ", "))
	fmt.Printf("  Type:    %s\n", saved.ChartType)
	fmt.Printf("  Theme:   %s\n", saved.ThemeName)
	fmt.Printf("  Output:  %s\n", saved.OutputPath)
	fmt.Println("")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Chart again with these settings?").
				Value(&useSaved).
				Affirmative("Yes").
				Negative("No, reconfigure"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	fmt.Println("")
	return useSaved, nil
}

func (w *Wizard) collectChart() error {
	columnOpts := make([]huh.Option[string], 0, len(w.columns))
	for _, c := range w.columns {
		label := c.DisplayName()
		if c.Numeric {
			label += " (numeric)"
		}
		columnOpts = append(columnOpts, huh.NewOption(label, c.ID))
	}

	typeOpts := make([]huh.Option[model.ChartType], 0)
	for _, t := range model.AllChartTypes() {
		typeOpts = append(typeOpts, huh.NewOption(string(t), t))
	}

	themeOpts := make([]huh.Option[string], 0, len(w.themes))
	for _, name := range w.themes {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	fields := []huh.Field{
		huh.NewMultiSelect[string]().
			Title("Columns to chart").
			Description("The first text column becomes the category").
			Options(columnOpts...).
			Value(&w.config.Columns).
			Validate(w.validateColumns),
		huh.NewSelect[model.ChartType]().
			Title("Chart type").
			Options(typeOpts...).
			Value(&w.config.ChartType),
	}
	if len(themeOpts) > 0 {
		fields = append(fields, huh.NewSelect[string]().
			Title("Theme").
			Options(themeOpts...).
			Value(&w.config.ThemeName))
	}

	if err := newForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}
	fmt.Println("")
	return nil
}

func (w *Wizard) collectOutput() error {
	if w.config.OutputPath == "" {
		w.config.OutputPath = DefaultOutputPath("", w.config.Format)
	}
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Image format").
				Options(
					huh.NewOption("PNG", FormatPNG),
					huh.NewOption("SVG", FormatSVG),
				).
				Value(&w.config.Format),
			huh.NewInput().
				Title("Output file").
				Value(&w.config.OutputPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("output path is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	// Keep the extension in step with the format picked after the default
	// path was filled in.
	w.config.OutputPath = withFormatExt(w.config.OutputPath, w.config.Format)
	fmt.Println("")
	return nil
}

// validateColumns requires at least one numeric column in the selection.
func (w *Wizard) validateColumns(ids []string) error {
	if len(ids) == 0 {
		return errors.New("select at least one column")
	}
	for _, id := range ids {
		for _, c := range w.columns {
			if c.ID == id && c.Numeric {
				return nil
			}
		}
	}
	return errors.New("select at least one numeric column")
}

// DefaultOutputPath returns chart.<format> in dir.
func DefaultOutputPath(dir, format string) string {
	if format == "" {
		format = FormatPNG
	}
	return filepath.Join(dir, "chart."+format)
}

func withFormatExt(path, format string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "."+format {
		return path
	}
	if ext == "."+FormatPNG || ext == "."+FormatSVG {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path + "." + format
}

// WizardConfigPath returns where wizard answers are kept.
func WizardConfigPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "wizard.json")
}

// LoadWizardConfig loads the answers of the previous run, if any.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No saved config
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig saves wizard answers for future runs.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
