package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhcgn/mbox-to-postgres/stats"
)

// Metrics holds the Prometheus metrics of one import run.
type Metrics struct {
	EntriesTotal       prometheus.Counter
	RecordsLoadedTotal prometheus.Counter
	RecordsFailedTotal *prometheus.CounterVec

	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	LastRunDuration  prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EntriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mbox_pg_entries_total",
			Help: "Total number of archive entries scanned",
		}),
		RecordsLoadedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mbox_pg_records_loaded_total",
			Help: "Total number of records inserted into the emails table",
		}),
		RecordsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mbox_pg_records_failed_total",
				Help: "Total number of entries that failed extraction or insert",
			},
			[]string{"kind"},
		),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mbox_pg_last_run_success",
			Help: "1 if the last run finished without failed entries",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mbox_pg_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		LastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mbox_pg_last_run_duration_seconds",
			Help: "Duration of the last run",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.EntriesTotal,
		m.RecordsLoadedTotal,
		m.RecordsFailedTotal,
		m.LastRunSuccess,
		m.LastRunTimestamp,
		m.LastRunDuration,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe updates counters from a runner event.
func (m *Metrics) Observe(evt stats.Event) {
	switch evt.Type {
	case stats.EventTypeScanned:
		m.EntriesTotal.Inc()
	case stats.EventTypePersisted:
		m.RecordsLoadedTotal.Inc()
	case stats.EventTypeFailed:
		m.RecordsFailedTotal.WithLabelValues(evt.Kind.String()).Inc()
	}
}

// Finish records the run result gauges.
func (m *Metrics) Finish(runErr error, finished time.Time, duration time.Duration) {
	if runErr == nil {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunTimestamp.Set(float64(finished.Unix()))
	m.LastRunDuration.Set(duration.Seconds())
}

// WriteTextfile writes all metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
