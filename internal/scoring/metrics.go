package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the scoring instruments.
type Metrics struct {
	submissions *prometheus.CounterVec
	unscored    *prometheus.CounterVec
	flags       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics registers the scoring instruments with reg. A nil registerer
// yields unregistered instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accredit",
			Subsystem: "scoring",
			Name:      "submissions_total",
			Help:      "Scored submissions by framework and guard verdict.",
		}, []string{"framework", "status"}),
		unscored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accredit",
			Subsystem: "scoring",
			Name:      "kpi_insufficient_total",
			Help:      "KPI results left without a value for lack of evidence.",
		}, []string{"framework", "kpi"}),
		flags: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accredit",
			Subsystem: "scoring",
			Name:      "compliance_flags_total",
			Help:      "Compliance flags raised by rule and severity.",
		}, []string{"rule", "severity"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accredit",
			Subsystem: "scoring",
			Name:      "duration_seconds",
			Help:      "Time to score one submission.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"framework"}),
	}
}
