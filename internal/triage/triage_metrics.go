package triage

import "github.com/prometheus/client_golang/prometheus"

// Request results counted by ObserveRequest.
const (
	ResultOK           = "ok"
	ResultBadRequest   = "bad_request"
	ResultCanceled     = "canceled"
	ResultUnauthorized = "unauthorized"
	ResultRateLimited  = "rate_limited"
)

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	EvaluationsTotal     *prometheus.CounterVec
	EvaluationDuration   prometheus.Histogram
	VitalDefaultsTotal   *prometheus.CounterVec
	PredictRequestsTotal *prometheus.CounterVec
	NotificationsTotal   *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_evaluations_total",
			Help: "Total triage evaluations by suggested level and matching rule group.",
		}, []string{"level", "rule"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acuity_evaluation_duration_seconds",
			Help:    "Duration of rule evaluation in seconds, excluding simulated latency.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us .. ~2.6s
		}),
		VitalDefaultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_vital_defaults_total",
			Help: "Evaluations where a rule vital was absent and read as its normal default.",
		}, []string{"vital"}),
		PredictRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_predict_requests_total",
			Help: "Total predict requests by result.",
		}, []string{"result"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_notifications_total",
			Help: "Critical-case notifications by delivery status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.VitalDefaultsTotal,
		m.PredictRequestsTotal,
		m.NotificationsTotal,
	)

	return m
}

// Hooks returns service Hooks that update the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnEvaluate: func(ev *Evaluation) {
			m.EvaluationsTotal.WithLabelValues(ev.Outcome.Level.Code(), ev.Outcome.Rule).Inc()
			m.EvaluationDuration.Observe(ev.Duration)
			for _, v := range ev.DefaultedVitals {
				m.VitalDefaultsTotal.WithLabelValues(v).Inc()
			}
		},
		OnNotify: func(_ *Evaluation, err error) {
			status := "success"
			if err != nil {
				status = "error"
			}
			m.NotificationsTotal.WithLabelValues(status).Inc()
		},
	}
}

// ObserveRequest counts one predict request outcome.
func (m *Metrics) ObserveRequest(result string) {
	m.PredictRequestsTotal.WithLabelValues(result).Inc()
}
