package chart

import (
	"fmt"
	"slices"

	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/metrics"
)

// ProxyFactory builds the rendering handle for a controller. It runs after
// the controller is initialized, since proxies read model state.
type ProxyFactory func(ctrl *Controller) ChartProxy

// Comp ties a controller to its proxy: every chartUpdated for the chart is
// turned into a proxy update.
type Comp struct {
	ctrl  *Controller
	proxy ChartProxy
	sub   events.Subscription
}

func newComp(ctrl *Controller, proxy ChartProxy, bus EventBus) *Comp {
	ctrl.SetChartProxy(proxy)
	proxy.Update(ctrl.ChartData())

	comp := &Comp{ctrl: ctrl, proxy: proxy}
	comp.sub = bus.Subscribe(events.ChartUpdated, func(ev events.Event) {
		e, ok := ev.(events.ChartUpdatedEvent)
		if !ok || e.ChartID != ctrl.ChartID() {
			return
		}
		defer metrics.Timer(metrics.ChartRender)()
		proxy.Update(ctrl.ChartData())
	})
	return comp
}

// Controller returns the chart's controller.
func (c *Comp) Controller() *Controller { return c.ctrl }

// Proxy returns the chart's rendering handle.
func (c *Comp) Proxy() ChartProxy { return c.proxy }

// Destroy stops proxy updates and tears down the controller.
func (c *Comp) Destroy() {
	c.sub.Unsubscribe()
	c.ctrl.Destroy()
}

// Manager creates and tracks the charts linked to one grid.
type Manager struct {
	grid     GridSource
	svc      Services
	newProxy ProxyFactory
	charts   []*Comp
}

// NewManager returns a manager that builds charts over grid with the given
// shared services.
func NewManager(grid GridSource, svc Services, newProxy ProxyFactory) *Manager {
	return &Manager{grid: grid, svc: svc, newProxy: newProxy}
}

// CreateRangeChart builds model, controller and proxy for a new chart and
// announces it on the bus.
func (m *Manager) CreateRangeChart(params DataModelParams) (*Comp, error) {
	if m.newProxy == nil {
		return nil, fmt.Errorf("chart manager has no proxy factory")
	}
	if params.ChartID != "" {
		if _, exists := m.Chart(params.ChartID); exists {
			return nil, fmt.Errorf("chart %s already exists", params.ChartID)
		}
	}
	dm, err := NewDataModel(params, m.grid)
	if err != nil {
		return nil, fmt.Errorf("creating chart model: %w", err)
	}
	ctrl := NewController(dm, m.svc)
	ctrl.Init()

	comp := newComp(ctrl, m.newProxy(ctrl), m.svc.Bus)
	m.charts = append(m.charts, comp)
	m.svc.Bus.Dispatch(events.ChartLifecycleEvent{Type: events.ChartCreated, ChartID: dm.ChartID()})
	return comp, nil
}

// Charts returns the live charts in creation order.
func (m *Manager) Charts() []*Comp {
	return slices.Clone(m.charts)
}

// Chart looks up a chart by id.
func (m *Manager) Chart(id string) (*Comp, bool) {
	for _, c := range m.charts {
		if c.ctrl.ChartID() == id {
			return c, true
		}
	}
	return nil, false
}

// Destroy tears down one chart.
func (m *Manager) Destroy(id string) error {
	idx := slices.IndexFunc(m.charts, func(c *Comp) bool { return c.ctrl.ChartID() == id })
	if idx < 0 {
		return fmt.Errorf("unknown chart %s", id)
	}
	comp := m.charts[idx]
	m.charts = slices.Delete(m.charts, idx, idx+1)
	comp.Destroy()
	m.svc.Bus.Dispatch(events.ChartLifecycleEvent{Type: events.ChartDestroyed, ChartID: id})
	return nil
}

// DestroyAll tears down every chart.
func (m *Manager) DestroyAll() {
	for len(m.charts) > 0 {
		_ = m.Destroy(m.charts[len(m.charts)-1].ctrl.ChartID())
	}
}
