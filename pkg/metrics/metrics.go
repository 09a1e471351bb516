// Package metrics bündelt die Prometheus-Metriken der Weboberfläche.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the admin interface metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Chunks    *prometheus.CounterVec
	Bytes     *prometheus.CounterVec
	Outcomes  *prometheus.CounterVec
	Scans     prometheus.Counter
	Networks  prometheus.Gauge
	Exhausted prometheus.Counter
}

// New registers the metrics against reg, the global registry when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmon_chunks_total",
			Help: "Response chunks produced, labeled by route.",
		}, []string{"route"}),
		Bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmon_chunk_bytes_total",
			Help: "Response bytes produced, labeled by route.",
		}, []string{"route"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmon_settings_outcomes_total",
			Help: "Settings submissions, labeled by merge outcome.",
		}, []string{"outcome"}),
		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heatmon_wifi_scans_total",
			Help: "WiFi scans requested.",
		}),
		Networks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heatmon_wifi_networks",
			Help: "Distinct networks in the last served scan result.",
		}),
		Exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heatmon_form_exhausted_total",
			Help: "Form submissions rejected for exceeding the fragment budget.",
		}),
	}

	for name, col := range map[string]prometheus.Collector{
		"heatmon_chunks_total":            c.Chunks,
		"heatmon_chunk_bytes_total":       c.Bytes,
		"heatmon_settings_outcomes_total": c.Outcomes,
		"heatmon_wifi_scans_total":        c.Scans,
		"heatmon_wifi_networks":           c.Networks,
		"heatmon_form_exhausted_total":    c.Exhausted,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Chunk records one produced chunk of route
func (c *Collector) Chunk(route string, n int) {
	if c == nil {
		return
	}
	c.Chunks.WithLabelValues(route).Inc()
	c.Bytes.WithLabelValues(route).Add(float64(n))
}

// Outcome records a settings merge outcome
func (c *Collector) Outcome(outcome string) {
	if c == nil {
		return
	}
	c.Outcomes.WithLabelValues(outcome).Inc()
}

// ScanServed records a served scan result and the scan it triggered
func (c *Collector) ScanServed(networks int) {
	if c == nil {
		return
	}
	c.Networks.Set(float64(networks))
	c.Scans.Inc()
}

// FormExhausted records a rejected submission
func (c *Collector) FormExhausted() {
	if c == nil {
		return
	}
	c.Exhausted.Inc()
}
