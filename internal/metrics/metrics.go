package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lanikai/candidateparser/ice"
)

const namespace = "candidateparser"

// Metrics counts parse outcomes. It has its own registry so that tests and
// multiple servers in one process do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	parsed   *prometheus.CounterVec
	rejected *prometheus.CounterVec
	sessions prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_parsed_total",
			Help:      "Number of candidate lines parsed successfully, by candidate type and transport.",
		}, []string{"type", "transport"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_rejected_total",
			Help:      "Number of candidate lines rejected, by error kind.",
		}, []string{"kind"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open trickle signaling sessions.",
		}),
	}
	m.Registry.MustRegister(m.parsed, m.rejected, m.sessions)
	return m
}

// Observe records the outcome of one ice.ParseCandidate call.
func (m *Metrics) Observe(c ice.Candidate, err error) {
	if err != nil {
		m.rejected.WithLabelValues(ice.Kind(err)).Inc()
		return
	}
	m.parsed.WithLabelValues(typeLabel(c), transportLabel(c)).Inc()
}

func (m *Metrics) SessionOpened() { m.sessions.Inc() }
func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.Registry, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// Candidate types and transports are free-form tokens, so unknown values are
// folded into "other" to keep label cardinality bounded.
func typeLabel(c ice.Candidate) string {
	if c.IsKnownType() {
		return c.Type()
	}
	return "other"
}

func transportLabel(c ice.Candidate) string {
	switch {
	case c.IsUDP():
		return "udp"
	case strings.EqualFold(c.Transport(), "tcp"):
		return "tcp"
	default:
		return "other"
	}
}
