package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	stageTransitionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_stage_transitions_total",
			Help: "Total number of lead stage transitions persisted",
		},
	)

	staleTransitionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_stale_transitions_total",
			Help: "Total number of stage transitions rejected as stale",
		},
	)

	payslipsFinalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payroll_payslips_finalized_total",
			Help: "Total number of payslips moved to paid",
		},
	)
)

func RecordRequest(method string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordStageTransition() {
	stageTransitionsTotal.Inc()
}

func RecordStaleTransition() {
	staleTransitionsTotal.Inc()
}

func RecordPayslipFinalized() {
	payslipsFinalizedTotal.Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
