package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/gridchart/internal/datasource"
	"github.com/vanderheijden86/gridchart/pkg/config"
	"github.com/vanderheijden86/gridchart/pkg/debug"
	"github.com/vanderheijden86/gridchart/pkg/export"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/ui"
	"github.com/vanderheijden86/gridchart/pkg/version"
	"github.com/vanderheijden86/gridchart/pkg/watcher"
)

// options are the parsed command-line flags.
type options struct {
	data        string
	configPath  string
	chartType   string
	theme       string
	columns     string
	exportPath  string
	format      string
	printModel  bool
	wizard      bool
	watch       bool
	unlinked    bool
	pivot       bool
	listSources bool
	noHooks     bool
}

func main() {
	var o options
	flag.StringVar(&o.data, "data", ".", "Data file (csv, json, xlsx, sqlite; file.db#table) or directory to pick the freshest from")
	flag.StringVar(&o.configPath, "config", "", "Config file (default ~/.config/gc/config.yaml)")
	flag.StringVar(&o.chartType, "type", "", "Chart type (e.g. groupedColumn, line, pie)")
	flag.StringVar(&o.theme, "theme", "", "Chart theme name")
	flag.StringVar(&o.columns, "columns", "", "Comma-separated column ids to chart")
	flag.StringVar(&o.exportPath, "export", "", "Render the chart to this file and exit")
	flag.StringVar(&o.format, "format", "", "Image format for -export (png or svg; default from extension)")
	flag.BoolVar(&o.printModel, "print-model", false, "Print the chart model as JSON and exit")
	flag.BoolVar(&o.wizard, "wizard", false, "Build the chart interactively, then export it")
	flag.BoolVar(&o.watch, "watch", false, "Reload the data file when it changes (TUI only)")
	flag.BoolVar(&o.unlinked, "unlinked", false, "Create the chart detached from the grid")
	flag.BoolVar(&o.pivot, "pivot", false, "Create a pivot chart")
	flag.BoolVar(&o.listSources, "list-sources", false, "List data sources found in -data and exit")
	flag.BoolVar(&o.noHooks, "no-hooks", false, "Skip export hooks from .gc/hooks.yaml")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *versionFlag {
		fmt.Printf("gc %s\n", version.Version)
		return
	}

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer) error {
	if o.listSources {
		return listSources(o.data, stdout)
	}

	cfg := loadConfig(o.configPath)
	table, err := loadTable(o.data)
	if err != nil {
		return err
	}

	session, err := ui.NewSession(cfg, table)
	if err != nil {
		return err
	}
	defer session.Close()

	req, err := chartRequest(o)
	if err != nil {
		return err
	}

	if o.wizard {
		answers, err := export.NewWizard(table.Columns, cfg.ChartThemes).Run()
		if err != nil {
			return fmt.Errorf("wizard: %w", err)
		}
		req.Columns = answers.Columns
		req.ChartType = answers.ChartType
		req.ThemeName = answers.ThemeName
		o.exportPath, o.format = answers.OutputPath, answers.Format
	}

	if o.exportPath != "" || o.printModel {
		return runHeadless(session, req, o, stdout)
	}
	return runTUI(session, req, o)
}

// runHeadless creates one chart, writes it where requested and returns.
func runHeadless(session *ui.Session, req ui.ChartRequest, o options, stdout io.Writer) error {
	comp, err := session.CreateChart(req)
	if err != nil {
		return fmt.Errorf("creating chart: %w", err)
	}

	if o.exportPath != "" {
		summary, err := session.ExportChart(comp, o.exportPath, o.format, hooksDir(o))
		if summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", o.exportPath)
	}

	if o.printModel {
		cm := comp.Controller().ChartModel()
		debug.Dump("chart model", cm)
		out, err := json.MarshalIndent(cm, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding chart model: %w", err)
		}
		fmt.Fprintln(stdout, string(out))
	}
	return nil
}

func runTUI(session *ui.Session, req ui.ChartRequest, o options) error {
	// An explicit chart request opens with that chart in place.
	if len(req.Columns) > 0 || req.ChartType != "" || req.ThemeName != "" {
		if _, err := session.CreateChart(req); err != nil {
			return fmt.Errorf("creating chart: %w", err)
		}
	}

	location := session.Table.Source.Location()
	opts := ui.Options{
		ExportDir: session.Config.Export.Dir,
		HooksDir:  hooksDir(o),
		Reload: func() (*datasource.Table, error) {
			return datasource.Load(location)
		},
	}

	var p *tea.Program
	if (o.watch || session.Config.Data.Watch) && session.Table.Source.Path != "" {
		w, err := watcher.NewWatcher(session.Table.Source.Path,
			watcher.WithPollInterval(session.Config.Data.PollInterval),
			watcher.WithOnError(func(err error) {
				if p != nil {
					p.Send(ui.WatchErrorMsg{Err: err})
				}
			}),
		)
		if err != nil {
			return fmt.Errorf("watching %s: %w", session.Table.Source.Path, err)
		}
		opts.Watcher = w
		defer w.Stop()
	}

	p = tea.NewProgram(
		ui.NewModel(session, opts),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	if opts.Watcher != nil {
		if err := opts.Watcher.Start(); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
	}
	return runTUIProgram(p)
}

func runTUIProgram(p *tea.Program) error {
	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set GC_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("GC_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// loadConfig reads the config file. A broken config is reported but not
// fatal: gc runs with defaults.
func loadConfig(path string) config.Config {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// hooksDir is the project directory holding .gc/hooks.yaml: the data
// directory, or the directory of the data file.
func hooksDir(o options) string {
	if o.noHooks {
		return ""
	}
	path := stripFragment(o.data)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func stripFragment(location string) string {
	if i := strings.LastIndex(location, "#"); i > 0 {
		return location[:i]
	}
	return location
}

// loadTable loads a file, or the best source found in a directory.
func loadTable(location string) (*datasource.Table, error) {
	path := stripFragment(location)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("data source: %w", err)
	}
	if info.IsDir() {
		table, err := datasource.LoadDir(context.Background(), path)
		if errors.Is(err, datasource.ErrNoSources) {
			return nil, fmt.Errorf("no usable csv, json, xlsx or sqlite file in %s", path)
		}
		return table, err
	}
	return datasource.Load(location)
}

// chartRequest builds the chart request from the flags.
func chartRequest(o options) (ui.ChartRequest, error) {
	req := ui.ChartRequest{
		ThemeName: o.theme,
		Pivot:     o.pivot,
		Unlinked:  o.unlinked,
	}
	if o.chartType != "" {
		t, err := model.ParseChartType(o.chartType)
		if err != nil {
			return req, err
		}
		req.ChartType = t
	}
	for _, c := range strings.Split(o.columns, ",") {
		if c = strings.TrimSpace(c); c != "" {
			req.Columns = append(req.Columns, c)
		}
	}
	return req, nil
}

func listSources(dir string, stdout io.Writer) error {
	sources, err := datasource.DiscoverSources(context.Background(), datasource.DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         true,
	})
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Fprintln(stdout, "No data sources found.")
		return nil
	}
	best, bestErr := datasource.SelectBestSource(sources)
	for _, s := range sources {
		mark := " "
		if bestErr == nil && s.Location() == best.Location() {
			mark = "*"
		}
		fmt.Fprintf(stdout, "%s %s\n", mark, s.String())
	}
	return nil
}
