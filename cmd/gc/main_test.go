package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/gridchart/pkg/debug"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/testutil"
)

const salesCSV = `Country,Region,Sales,Profit
Ireland,EMEA,100,20
Brazil,LATAM,250,40
Japan,APAC,175,35
`

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func TestRun_PrintModel(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sales.csv", salesCSV)

	var out bytes.Buffer
	err := run(options{data: path, printModel: true, chartType: "line", columns: "country, sales"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var got struct {
		ChartID   string `json:"chart_id"`
		ChartType string `json:"chart_type"`
		ThemeName string `json:"theme_name"`
		CellRange struct {
			Columns []string `json:"columns"`
		} `json:"cell_range"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.ChartID == "" || got.ChartType != string(model.ChartLine) {
		t.Errorf("unexpected model: %+v", got)
	}
	if got.ThemeName != "ag-default" {
		t.Errorf("theme = %q", got.ThemeName)
	}
	if strings.Join(got.CellRange.Columns, ",") != "country,sales" {
		t.Errorf("columns = %v", got.CellRange.Columns)
	}
}

func TestRun_PrintModelDumpsWhenDebugging(t *testing.T) {
	isolateConfig(t)
	path := testutil.WriteFile(t, t.TempDir(), "sales.csv", salesCSV)

	var logs bytes.Buffer
	prev := debug.Enabled()
	debug.SetEnabled(true)
	debug.SetOutput(&logs)
	t.Cleanup(func() {
		debug.SetEnabled(prev)
		debug.SetOutput(os.Stderr)
	})

	var out bytes.Buffer
	if err := run(options{data: path, printModel: true, columns: "country,sales"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(logs.String(), "chart model") {
		t.Errorf("debug log should dump the chart model, got:\n%s", logs.String())
	}
	if strings.Contains(out.String(), "GC_DEBUG") {
		t.Error("debug output leaked into stdout")
	}
}

func TestRun_Export(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sales.csv", salesCSV)
	outPath := filepath.Join(dir, "chart.svg")

	if err := run(options{data: path, exportPath: outPath}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("expected SVG output")
	}
}

func TestRun_Errors(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sales.csv", salesCSV)

	tests := []struct {
		name string
		opts options
		want string
	}{
		{"missing file", options{data: filepath.Join(dir, "nope.csv"), printModel: true}, "data source"},
		{"unknown type", options{data: path, chartType: "radar", printModel: true}, "unknown chart type"},
		{"unknown column", options{data: path, columns: "country,margin", printModel: true}, "unknown column"},
		{"empty dir", options{data: t.TempDir(), printModel: true}, "no usable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.opts, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadTable_DirectoryPicksFreshest(t *testing.T) {
	dir := t.TempDir()
	old := testutil.WriteFile(t, dir, "old.csv", "a,b\nx,1\n")
	testutil.WriteFile(t, dir, "new.csv", salesCSV)
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	table, err := loadTable(dir)
	if err != nil {
		t.Fatalf("loadTable: %v", err)
	}
	if filepath.Base(table.Source.Path) != "new.csv" {
		t.Errorf("picked %s, want new.csv", table.Source.Path)
	}
}

func TestChartRequest(t *testing.T) {
	req, err := chartRequest(options{chartType: "PIE", columns: " country,,sales ", theme: "ag-vivid", unlinked: true})
	if err != nil {
		t.Fatal(err)
	}
	if req.ChartType != model.ChartPie {
		t.Errorf("type = %s", req.ChartType)
	}
	if strings.Join(req.Columns, ",") != "country,sales" {
		t.Errorf("columns = %v", req.Columns)
	}
	if req.ThemeName != "ag-vivid" || !req.Unlinked {
		t.Errorf("request = %+v", req)
	}

	req, err = chartRequest(options{})
	if err != nil || len(req.Columns) != 0 || req.ChartType != "" {
		t.Errorf("empty flags should give an empty request, got %+v, %v", req, err)
	}
}

func TestListSources(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "sales.csv", salesCSV)
	testutil.WriteFile(t, dir, "broken.json", "{not json")
	testutil.WriteFile(t, dir, "notes.txt", "ignored")

	var out bytes.Buffer
	if err := listSources(dir, &out); err != nil {
		t.Fatalf("listSources: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "* "+filepath.Join(dir, "sales.csv")) {
		t.Errorf("sales.csv should be marked best:\n%s", text)
	}
	if !strings.Contains(text, "invalid") {
		t.Errorf("broken.json should be listed as invalid:\n%s", text)
	}
	if strings.Contains(text, "notes.txt") {
		t.Errorf("unsupported files should not be listed:\n%s", text)
	}
}

func TestLoadConfig_BrokenFallsBackToDefaults(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.yaml", "default_chart_type: [")
	cfg := loadConfig(path)
	if cfg.DefaultChartType != model.ChartGroupedColumn {
		t.Errorf("expected defaults, got %s", cfg.DefaultChartType)
	}
}

func TestRun_ExportRunsHooks(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sales.csv", salesCSV)
	testutil.WriteFile(t, dir, filepath.Join(".gc", "hooks.yaml"), `
hooks:
  post-export:
    - name: mark
      command: touch "$GC_EXPORT_PATH.done"
`)

	out := filepath.Join(dir, "a.png")
	if err := run(options{data: path, exportPath: out}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(out + ".done"); err != nil {
		t.Errorf("post-export hook did not run: %v", err)
	}

	out = filepath.Join(dir, "b.png")
	if err := run(options{data: path, exportPath: out, noHooks: true}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(out + ".done"); !os.IsNotExist(err) {
		t.Errorf("hooks should be skipped with -no-hooks")
	}
}
