// Package metrics exposes ledger activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rfidledger/m/domain"
	"rfidledger/m/internal/ledger"
)

const namespace = "rfidledger"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	scans     *prometheus.CounterVec
	movements *prometheus.CounterVec
	units     *prometheus.CounterVec
	unknown   prometheus.Counter
}

var _ ledger.Observer = (*Metrics)(nil)

// New registers the collectors. The quarantine gauge reads l on scrape.
func New(l *ledger.Ledger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "RFID scans by outcome (OK or error kind).",
		}, []string{"outcome"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Committed ledger movements by mode.",
		}, []string{"mode"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moved_units_total",
			Help:      "Units moved by committed ledger movements, by mode.",
		}, []string{"mode"}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_scans_total",
			Help:      "Scans quarantined because the tag was not mapped.",
		}),
	}
	m.registry.MustRegister(
		m.scans,
		m.movements,
		m.units,
		m.unknown,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quarantine_entries",
			Help:      "Unresolved scans currently held in quarantine.",
		}, func() float64 { return float64(l.QuarantineLen()) }),
		collectors.NewGoCollector(),
	)
	return m
}

// ScanOutcome counts a scan by outcome.
func (m *Metrics) ScanOutcome(kind ledger.Kind) {
	outcome := "OK"
	if kind != "" {
		outcome = string(kind)
	}
	m.scans.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EntryAppended(e domain.LogEntry) {
	m.movements.WithLabelValues(string(e.Mode)).Inc()
	m.units.WithLabelValues(string(e.Mode)).Add(float64(e.Qty))
}

func (m *Metrics) ScanQuarantined(domain.UnknownScan) {
	m.unknown.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
