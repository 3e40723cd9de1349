// Package hooks runs user commands around chart image exports. Hooks are
// configured in .gc/hooks.yaml next to the data and run before the image is
// written (pre-export) and after (post-export).
//
//	hooks:
//	  pre-export:
//	    - name: check-dir
//	      command: test -d "$(dirname "$GC_EXPORT_PATH")"
//	  post-export:
//	    - name: publish
//	      command: cp "$GC_EXPORT_PATH" /srv/charts/
//	      timeout: 10s
//	      on_error: fail
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase is when a hook runs relative to the image write.
type Phase string

const (
	PreExport  Phase = "pre-export"
	PostExport Phase = "post-export"
)

// Policy decides what a failing hook does to the export.
type Policy string

const (
	// PolicyFail cancels a pending export, or fails a finished one.
	PolicyFail Policy = "fail"
	// PolicyContinue reports the failure and carries on.
	PolicyContinue Policy = "continue"
)

// DefaultTimeout bounds a hook without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// ConfigFile is the hooks file, relative to the project directory.
var ConfigFile = filepath.Join(".gc", "hooks.yaml")

// Timeout is a hook timeout. YAML accepts Go durations ("1m30s") or a bare
// number of seconds.
type Timeout time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timeout) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if d, err := time.ParseDuration(s); err == nil {
		*t = Timeout(d)
		return nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return fmt.Errorf("line %d: invalid timeout %q", node.Line, s)
	}
	*t = Timeout(secs * float64(time.Second))
	return nil
}

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Timeout Timeout           `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError Policy            `yaml:"on_error,omitempty"`
}

// Config is the parsed hooks file.
type Config struct {
	Hooks struct {
		PreExport  []Hook `yaml:"pre-export,omitempty"`
		PostExport []Hook `yaml:"post-export,omitempty"`
	} `yaml:"hooks"`
}

// Phase returns the hooks configured for p.
func (c *Config) Phase(p Phase) []Hook {
	switch p {
	case PreExport:
		return c.Hooks.PreExport
	case PostExport:
		return c.Hooks.PostExport
	}
	return nil
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return len(c.Hooks.PreExport) == 0 && len(c.Hooks.PostExport) == 0
}

// LoadConfig reads ConfigFile under projectDir. A missing file yields an
// empty config. Hooks without a command are dropped with a warning.
func LoadConfig(projectDir string) (*Config, []string, error) {
	path := filepath.Join(projectDir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var warnings []string
	cfg.Hooks.PreExport, warnings = normalize(cfg.Hooks.PreExport, PreExport, warnings)
	cfg.Hooks.PostExport, warnings = normalize(cfg.Hooks.PostExport, PostExport, warnings)
	return &cfg, warnings, nil
}

// normalize fills in names, timeouts and policies. A pre-export hook fails
// the export by default, a post-export hook does not.
func normalize(list []Hook, phase Phase, warnings []string) ([]Hook, []string) {
	out := list[:0]
	for i, h := range list {
		if strings.TrimSpace(h.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has no command; skipping", phase, i+1))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		if h.Timeout <= 0 {
			h.Timeout = Timeout(DefaultTimeout)
		}
		switch h.OnError {
		case PolicyFail, PolicyContinue:
		case "":
			h.OnError = PolicyContinue
			if phase == PreExport {
				h.OnError = PolicyFail
			}
		default:
			warnings = append(warnings, fmt.Sprintf("%s hook %q: unknown on_error %q, using fail", phase, h.Name, h.OnError))
			h.OnError = PolicyFail
		}
		out = append(out, h)
	}
	return out, warnings
}

// ExportContext describes the export a hook runs around. Hooks receive it as
// GC_* environment variables.
type ExportContext struct {
	ExportPath   string
	ExportFormat string
	ChartID      string
	ChartType    string
	RowCount     int
	Timestamp    time.Time
}

// Env returns the context as environment assignments.
func (c ExportContext) Env() []string {
	return []string{
		"GC_EXPORT_PATH=" + c.ExportPath,
		"GC_EXPORT_FORMAT=" + c.ExportFormat,
		"GC_CHART_ID=" + c.ChartID,
		"GC_CHART_TYPE=" + c.ChartType,
		"GC_ROW_COUNT=" + strconv.Itoa(c.RowCount),
		"GC_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}
