package hooks

import (
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/gridchart/pkg/testutil"
)

func writeHooks(t *testing.T, dir, content string) {
	t.Helper()
	testutil.WriteFile(t, dir, ConfigFile, content)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, warnings, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if !cfg.Empty() || len(warnings) != 0 {
		t.Errorf("expected empty config, got %+v %v", cfg, warnings)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeHooks(t, dir, `
hooks:
  pre-export:
    - command: test -d out
  post-export:
    - name: publish
      command: cp "$GC_EXPORT_PATH" /tmp
      timeout: 90
      env:
        DEST: $HOME/charts
    - name: strict
      command: "true"
      timeout: 1m30s
      on_error: fail
    - name: blank
      command: "  "
`)

	cfg, warnings, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	pre, post := cfg.Phase(PreExport), cfg.Phase(PostExport)
	if len(pre) != 1 || len(post) != 2 {
		t.Fatalf("pre=%d post=%d, want 1 and 2", len(pre), len(post))
	}

	if pre[0].Name != "pre-export-1" || pre[0].OnError != PolicyFail {
		t.Errorf("pre defaults = %+v", pre[0])
	}
	if time.Duration(pre[0].Timeout) != DefaultTimeout {
		t.Errorf("pre timeout = %v", time.Duration(pre[0].Timeout))
	}
	if post[0].OnError != PolicyContinue || time.Duration(post[0].Timeout) != 90*time.Second {
		t.Errorf("publish = %+v", post[0])
	}
	if post[0].Env["DEST"] != "$HOME/charts" {
		t.Errorf("env should be kept unexpanded until run, got %q", post[0].Env["DEST"])
	}
	if post[1].OnError != PolicyFail || time.Duration(post[1].Timeout) != 90*time.Second {
		t.Errorf("strict = %+v", post[1])
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "post-export hook 3") {
		t.Errorf("warnings = %v", warnings)
	}
	if cfg.Phase("never") != nil {
		t.Error("unknown phase should have no hooks")
	}
}

func TestLoadConfig_UnknownPolicyFallsBackToFail(t *testing.T) {
	dir := t.TempDir()
	writeHooks(t, dir, `
hooks:
  post-export:
    - name: odd
      command: "true"
      on_error: retry
`)
	cfg, warnings, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Phase(PostExport)[0].OnError; got != PolicyFail {
		t.Errorf("on_error = %q, want fail", got)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "hooks: [", "parsing"},
		{"bad timeout", "hooks:\n  pre-export:\n    - command: x\n      timeout: soon\n", "invalid timeout"},
		{"negative timeout", "hooks:\n  pre-export:\n    - command: x\n      timeout: -5\n", "invalid timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeHooks(t, dir, tt.content)
			_, _, err := LoadConfig(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestExportContext_Env(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := ExportContext{
		ExportPath:   "/tmp/chart.png",
		ExportFormat: "png",
		ChartID:      "c1",
		ChartType:    "pie",
		RowCount:     4,
		Timestamp:    ts,
	}.Env()

	want := []string{
		"GC_EXPORT_PATH=/tmp/chart.png",
		"GC_EXPORT_FORMAT=png",
		"GC_CHART_ID=c1",
		"GC_CHART_TYPE=pie",
		"GC_ROW_COUNT=4",
		"GC_TIMESTAMP=2026-03-01T12:00:00Z",
	}
	if strings.Join(env, "\n") != strings.Join(want, "\n") {
		t.Errorf("env =\n%s\nwant\n%s", strings.Join(env, "\n"), strings.Join(want, "\n"))
	}
}
