// Package export renders charts to PNG and SVG images.
//
// A Proxy is the chart.ChartProxy used by gc: it keeps the latest ChartData
// pushed by the chart manager, resolves the chart's theme and draws on
// demand. Rendering goes through a backend-neutral Scene so both formats
// share one layout.
package export

import (
	"fmt"
	"sync"

	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/metrics"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// Dispatcher is the slice of the event bus a proxy needs.
type Dispatcher interface {
	Dispatch(events.Event)
}

// ProxyOptions configures a Proxy.
type ProxyOptions struct {
	Bus     Dispatcher
	Themes  *theme.Service
	Options chart.Options
	// CustomPalette overrides every theme palette when set.
	CustomPalette *model.Palette
}

// Proxy renders one chart.
type Proxy struct {
	mu     sync.Mutex
	bus    Dispatcher
	themes *theme.Service
	opts   chart.Options
	custom *model.Palette
	data   chart.ChartData
}

// NewProxy creates a proxy. A nil theme service resolves stock themes only.
func NewProxy(o ProxyOptions) *Proxy {
	themes := o.Themes
	if themes == nil {
		themes, _ = theme.NewService(nil)
	}
	opts := o.Options
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 500
	}
	return &Proxy{bus: o.Bus, themes: themes, opts: opts, custom: o.CustomPalette}
}

// Factory returns a chart.ProxyFactory that builds proxies with o.
func Factory(o ProxyOptions) chart.ProxyFactory {
	return func(*chart.Controller) chart.ChartProxy {
		return NewProxy(o)
	}
}

// Update replaces the data the proxy draws.
func (p *Proxy) Update(data chart.ChartData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
}

// Data returns the last data pushed to the proxy.
func (p *Proxy) Data() chart.ChartData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// ChartOptions returns the rendering options.
func (p *Proxy) ChartOptions() chart.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}

// SetChartOptions replaces the rendering options and announces the change.
func (p *Proxy) SetChartOptions(opts chart.Options) {
	p.mu.Lock()
	p.opts = opts
	p.mu.Unlock()
	p.RaiseChartOptionsChangedEvent()
}

// Chart returns the scene for the current data.
func (p *Proxy) Chart() any {
	return p.Scene()
}

// Scene lays out the current data.
func (p *Proxy) Scene() *Scene {
	p.mu.Lock()
	data, opts := p.data, p.opts
	p.mu.Unlock()

	th := p.themes.Lookup(p.themes.Ref(data.ThemeName))
	pal := th.Palette
	if custom := p.CustomPalette(); custom != nil {
		pal = *custom
	}
	return BuildScene(data, th, pal, opts)
}

// ChartImageDataURL renders the chart as a base64 data URL.
func (p *Proxy) ChartImageDataURL(format string) (string, error) {
	defer metrics.Timer(metrics.ImageExport)()
	format, err := NormalizeFormat(format, "")
	if err != nil {
		return "", err
	}
	return p.Scene().DataURL(format)
}

// SaveChartImage renders the chart to path. The format is inferred from the
// extension when empty.
func (p *Proxy) SaveChartImage(path, format string) error {
	defer metrics.Timer(metrics.ImageExport)()
	format, err := NormalizeFormat(format, path)
	if err != nil {
		return err
	}
	if err := p.Scene().Save(path, format); err != nil {
		return fmt.Errorf("export chart image: %w", err)
	}
	return nil
}

// CustomPalette returns the palette override, if any.
func (p *Proxy) CustomPalette() *model.Palette {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.custom
}

// SetCustomPalette installs or clears the palette override.
func (p *Proxy) SetCustomPalette(pal *model.Palette) {
	p.mu.Lock()
	p.custom = pal
	p.mu.Unlock()
}

// IsStockTheme reports whether name is a built-in theme.
func (p *Proxy) IsStockTheme(name string) bool {
	return p.themes.IsStock(name)
}

// LookupCustomChartTheme resolves a custom theme name to a lookup reference.
func (p *Proxy) LookupCustomChartTheme(name string) theme.ThemeRef {
	return p.themes.Ref(name)
}

// RaiseChartOptionsChangedEvent announces the current type, theme and options.
func (p *Proxy) RaiseChartOptionsChangedEvent() {
	if p.bus == nil {
		return
	}
	p.mu.Lock()
	ev := events.ChartOptionsChangedEvent{
		ChartID:   p.data.ChartID,
		ChartType: p.data.ChartType,
		ThemeName: p.data.ThemeName,
		Options:   p.opts,
	}
	p.mu.Unlock()
	p.bus.Dispatch(ev)
}
