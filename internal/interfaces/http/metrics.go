package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradegate/internal/admission"
	"github.com/sawpanic/tradegate/internal/gate"
)

// MetricsRegistry holds all Prometheus metrics for the admission pipeline.
// Each instance carries its own registry; nothing is registered globally.
type MetricsRegistry struct {
	registry *prometheus.Registry

	// Decision outcomes by policy and mode
	Decisions *prometheus.CounterVec

	// Stage latency
	StageDuration *prometheus.HistogramVec

	// Calibrated score distribution
	CalibratedScore *prometheus.HistogramVec

	// History store lookups by result
	HistoryLookups *prometheus.CounterVec

	// Share of decisions admitted, derived from the decision counters
	AdmissionRate prometheus.Gauge

	// HTTP requests currently being served
	InFlight prometheus.Gauge
}

// NewMetricsRegistry creates and registers all admission metrics.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_decisions_total",
				Help: "Total admission decisions by policy, outcome, and mode",
			},
			[]string{"policy", "outcome", "mode"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradegate_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"stage"},
		),

		CalibratedScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradegate_calibrated_score",
				Help:    "Distribution of calibrated confidence scores",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 85, 90, 95, 100},
			},
			[]string{"mode"},
		),

		HistoryLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_history_lookups_total",
				Help: "Historical performance lookups by status",
			},
			[]string{"status"},
		),

		AdmissionRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradegate_admission_rate",
				Help: "Share of decisions admitted (0.0 to 1.0)",
			},
		),

		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradegate_inflight_requests",
				Help: "HTTP requests currently being served",
			},
		),
	}

	m.registry.MustRegister(
		m.Decisions,
		m.StageDuration,
		m.CalibratedScore,
		m.HistoryLookups,
		m.AdmissionRate,
		m.InFlight,
	)

	return m
}

// ObserveDecision records one admission decision. Implements
// admission.DecisionObserver.
func (m *MetricsRegistry) ObserveDecision(record *admission.DecisionRecord) {
	d := record.Decision
	if d == nil {
		return
	}

	m.Decisions.WithLabelValues(d.Policy, string(d.Outcome), d.Mode).Inc()
	m.CalibratedScore.WithLabelValues(d.Mode).Observe(d.Score)
	m.StageDuration.WithLabelValues("gate").Observe(float64(d.EvaluationTimeMs) / 1000.0)
	if record.Calibration != nil {
		m.StageDuration.WithLabelValues("calibration").Observe(float64(record.Calibration.EvaluationTimeMs) / 1000.0)
	}
	if d.Requirement != nil {
		status := "ok"
		if d.Requirement.Degraded {
			status = "degraded"
		}
		m.HistoryLookups.WithLabelValues(status).Inc()
	}

	m.updateAdmissionRate()
}

// updateAdmissionRate recomputes the admitted share from the decision
// counters across every policy, outcome, and mode combination.
func (m *MetricsRegistry) updateAdmissionRate() {
	metric := &io_prometheus_client.Metric{}

	policies := []string{gate.PolicySMC, gate.PolicyPattern, gate.PolicyMTF, gate.PolicyStandard}
	outcomes := []string{string(gate.OutcomeAdmitted), string(gate.OutcomeStripped), string(gate.OutcomeRejected)}
	modes := []string{"standard", "ultra"}

	admitted := 0.0
	total := 0.0
	for _, policy := range policies {
		for _, outcome := range outcomes {
			for _, mode := range modes {
				counter, err := m.Decisions.GetMetricWithLabelValues(policy, outcome, mode)
				if err != nil {
					log.Warn().Err(err).Msg("Decision counter lookup failed")
					continue
				}
				if err := counter.Write(metric); err != nil {
					continue
				}
				value := metric.GetCounter().GetValue()
				total += value
				if outcome == string(gate.OutcomeAdmitted) {
					admitted += value
				}
			}
		}
	}

	if total > 0 {
		m.AdmissionRate.Set(admitted / total)
	}
}

// MetricsHandler returns the HTTP handler for this registry.
func (m *MetricsRegistry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying registry for tests.
func (m *MetricsRegistry) Gather() ([]*io_prometheus_client.MetricFamily, error) {
	return m.registry.Gather()
}
