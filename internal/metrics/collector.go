package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"quiz-session-engine/internal/domain"
)

// Collector exports session engine activity as Prometheus metrics.
type Collector struct {
	created   prometheus.Counter
	answers   prometheus.Counter
	finalized *prometheus.CounterVec
	active    prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_created_total",
			Help: "Total number of quiz sessions created",
		}),
		answers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_answers_recorded_total",
			Help: "Total number of accepted answer submissions",
		}),
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_finalized_total",
			Help: "Total number of finalized quiz sessions",
		}, []string{"status", "cause"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_sessions_active",
			Help: "Number of sessions not yet finalized",
		}),
	}
	reg.MustRegister(c.created, c.answers, c.finalized, c.active)
	return c
}

func (c *Collector) SessionCreated() {
	c.created.Inc()
	c.active.Inc()
}

func (c *Collector) AnswerRecorded() {
	c.answers.Inc()
}

func (c *Collector) SessionFinalized(status domain.SessionStatus, cause domain.FinalizeCause) {
	c.finalized.WithLabelValues(string(status), string(cause)).Inc()
	c.active.Dec()
}
