// Package metrics exports bridge activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/endurox-dev/exgo/pkg/atmi"
	"github.com/endurox-dev/exgo/pkg/atmi/xadrv"
)

const namespace = "exgo"

// Collector counts context bindings, native handles and translated errors.
// It implements atmi.Observer; pass it with atmi.WithObserver.
type Collector struct {
	bound     prometheus.Gauge
	binds     prometheus.Counter
	live      *prometheus.GaugeVec
	acquired  *prometheus.CounterVec
	released  *prometheus.CounterVec
	translate *prometheus.CounterVec
}

var _ atmi.Observer = (*Collector)(nil)

// NewCollector returns an unregistered collector.
func NewCollector() *Collector {
	return &Collector{
		bound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contexts_bound",
			Help:      "ATMI contexts currently installed on an OS thread.",
		}),
		binds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "context_binds_total",
			Help:      "Outermost context bindings.",
		}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handles_live",
			Help:      "Native handles allocated and not yet released.",
		}, []string{"kind"}),
		acquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_acquired_total",
			Help:      "Native handles allocated.",
		}, []string{"kind"}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_released_total",
			Help:      "Native handles released.",
		}, []string{"kind"}),
		translate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_translated_total",
			Help:      "Native errors translated, by type name.",
		}, []string{"type"}),
	}
}

// Register adds the collector to reg, or to the default registry when reg
// is nil.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return reg.Register(c)
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.bound.Describe(ch)
	c.binds.Describe(ch)
	c.live.Describe(ch)
	c.acquired.Describe(ch)
	c.released.Describe(ch)
	c.translate.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.bound.Collect(ch)
	c.binds.Collect(ch)
	c.live.Collect(ch)
	c.acquired.Collect(ch)
	c.released.Collect(ch)
	c.translate.Collect(ch)
}

func (c *Collector) ContextBound(atmi.ContextToken) {
	c.bound.Inc()
	c.binds.Inc()
}

func (c *Collector) ContextUnbound(atmi.ContextToken) { c.bound.Dec() }

func (c *Collector) HandleAcquired(kind string) {
	c.live.WithLabelValues(kind).Inc()
	c.acquired.WithLabelValues(kind).Inc()
}

func (c *Collector) HandleReleased(kind string) {
	c.live.WithLabelValues(kind).Dec()
	c.released.WithLabelValues(kind).Inc()
}

func (c *Collector) ErrorTranslated(typeName string) {
	c.translate.WithLabelValues(typeName).Inc()
}

type resolverCollector struct {
	r *xadrv.Resolver

	state     *prometheus.Desc
	available *prometheus.Desc
}

func (c *resolverCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.available
}

// Collect reads the resolver without triggering a resolution.
func (c *resolverCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.r.State()
	ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(st), st.String())
	var available float64
	if st == xadrv.Initialized {
		available = 1
	}
	ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, available)
}

// NewResolverCollector exports the state of an XA switch resolver.
func NewResolverCollector(r *xadrv.Resolver) prometheus.Collector {
	return &resolverCollector{
		r: r,
		state: prometheus.NewDesc(
			namespace+"_xa_resolver_state",
			"Resolution state of the XA switch, labelled by name",
			[]string{"state"}, nil,
		),
		available: prometheus.NewDesc(
			namespace+"_xa_switch_available",
			"1 if the XA switch is resolved and initialized, otherwise 0",
			nil, nil,
		),
	}
}
