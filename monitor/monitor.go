// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlineSessions  prometheus.Gauge
	PacketsReceived prometheus.Counter
	PacketLatency   prometheus.Histogram
	Guesses         *prometheus.CounterVec
	SegmentsDrawn   prometheus.Counter
	RoundsStarted   prometheus.Counter
	TimersExpired   *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OnlineSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_sessions",
			Help:      "Number of connected game sessions",
		}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Total number of packets received",
		}),
		PacketLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "packet_latency_seconds",
			Help:      "Packet handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guesses submitted, by result",
		}, []string{"result"}),
		SegmentsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_drawn_total",
			Help:      "Line segments rendered onto drawing surfaces",
		}),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "New words drawn",
		}),
		TimersExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timers_expired_total",
			Help:      "Countdowns that reached zero, by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.OnlineSessions,
		m.PacketsReceived,
		m.PacketLatency,
		m.Guesses,
		m.SegmentsDrawn,
		m.RoundsStarted,
		m.TimersExpired,
	}
}

// Monitor wraps the metrics with the calls the server makes. A nil *Monitor
// records nothing.
type Monitor struct {
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// NewMonitor registers the metrics with reg. Pass prometheus.NewRegistry()
// in tests to avoid clashing with the default registry.
func NewMonitor(namespace string, reg *prometheus.Registry) (*Monitor, error) {
	m := &Monitor{metrics: NewMetrics(namespace), gatherer: reg}
	for _, c := range m.metrics.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Monitor) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}

func (m *Monitor) IncOnlineSessions() {
	if m != nil {
		m.metrics.OnlineSessions.Inc()
	}
}

func (m *Monitor) DecOnlineSessions() {
	if m != nil {
		m.metrics.OnlineSessions.Dec()
	}
}

func (m *Monitor) IncPacketsReceived() {
	if m != nil {
		m.metrics.PacketsReceived.Inc()
	}
}

func (m *Monitor) ObservePacketLatency(d time.Duration) {
	if m != nil {
		m.metrics.PacketLatency.Observe(d.Seconds())
	}
}

func (m *Monitor) ObserveGuess(correct bool) {
	if m == nil {
		return
	}
	result := "missed"
	if correct {
		result = "correct"
	}
	m.metrics.Guesses.WithLabelValues(result).Inc()
}

func (m *Monitor) AddSegments(n int) {
	if m != nil && n > 0 {
		m.metrics.SegmentsDrawn.Add(float64(n))
	}
}

func (m *Monitor) IncRoundsStarted() {
	if m != nil {
		m.metrics.RoundsStarted.Inc()
	}
}

func (m *Monitor) IncTimerExpired(kind string) {
	if m != nil {
		m.metrics.TimersExpired.WithLabelValues(kind).Inc()
	}
}
