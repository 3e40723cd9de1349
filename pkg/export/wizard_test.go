package export

import (
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/testutil"
)

func TestWizardConfig_SaveLoad(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	got, err := LoadWizardConfig()
	if err != nil || got != nil {
		t.Fatalf("expected no saved config, got %+v, %v", got, err)
	}

	want := &WizardConfig{
		Columns:    []string{"country", "sales"},
		ChartType:  model.ChartLine,
		ThemeName:  "ag-pastel",
		Format:     FormatSVG,
		OutputPath: "out/sales.svg",
	}
	if err := SaveWizardConfig(want); err != nil {
		t.Fatalf("SaveWizardConfig: %v", err)
	}
	got, err = LoadWizardConfig()
	if err != nil {
		t.Fatalf("LoadWizardConfig: %v", err)
	}
	testutil.AssertJSONEqual(t, want, got)

	if filepath.Base(WizardConfigPath()) != "wizard.json" {
		t.Errorf("unexpected path %s", WizardConfigPath())
	}
}

func TestWizard_Usable(t *testing.T) {
	w := NewWizard(testutil.SalesColumns(), []string{"ag-default"})

	tests := []struct {
		name string
		cfg  WizardConfig
		want bool
	}{
		{"known columns", WizardConfig{Columns: []string{"country", "sales"}, ChartType: model.ChartPie}, true},
		{"column gone", WizardConfig{Columns: []string{"country", "margin"}, ChartType: model.ChartPie}, false},
		{"no columns", WizardConfig{ChartType: model.ChartPie}, false},
		{"bad type", WizardConfig{Columns: []string{"sales"}, ChartType: "radar"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Usable(&tt.cfg); got != tt.want {
				t.Errorf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWizard_ValidateColumns(t *testing.T) {
	w := NewWizard(testutil.SalesColumns(), nil)
	if err := w.validateColumns(nil); err == nil {
		t.Error("empty selection should fail")
	}
	if err := w.validateColumns([]string{"country", "region"}); err == nil {
		t.Error("selection without a numeric column should fail")
	}
	if err := w.validateColumns([]string{"country", "profit"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWithFormatExt(t *testing.T) {
	tests := []struct{ path, format, want string }{
		{"chart.png", FormatPNG, "chart.png"},
		{"chart.png", FormatSVG, "chart.svg"},
		{"report", FormatSVG, "report.svg"},
		{"a.b", FormatPNG, "a.b.png"},
	}
	for _, tt := range tests {
		if got := withFormatExt(tt.path, tt.format); got != tt.want {
			t.Errorf("withFormatExt(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
	if got := DefaultOutputPath("out", ""); got != filepath.Join("out", "chart.png") {
		t.Errorf("DefaultOutputPath = %q", got)
	}
}
