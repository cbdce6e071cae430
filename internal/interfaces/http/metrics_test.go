package http

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradegate/internal/admission"
	"github.com/sawpanic/tradegate/internal/calibration"
	"github.com/sawpanic/tradegate/internal/gate"
	"github.com/sawpanic/tradegate/internal/riskreward"
)

func decisionRecord(outcome gate.Outcome, policy, mode string) *admission.DecisionRecord {
	return &admission.DecisionRecord{
		Calibration: &calibration.Result{Score: 80, EvaluationTimeMs: 1},
		Decision: &gate.Decision{
			Policy:           policy,
			Mode:             mode,
			Outcome:          outcome,
			Score:            80,
			EvaluationTimeMs: 2,
			Requirement:      &riskreward.Recommendation{MinRR: 1.6},
		},
	}
}

func findFamily(t *testing.T, m *MetricsRegistry, name string) *io_prometheus_client.MetricFamily {
	t.Helper()
	families, err := m.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func TestMetricsRegistry_CountsDecisionsByOutcome(t *testing.T) {
	m := NewMetricsRegistry()

	m.ObserveDecision(decisionRecord(gate.OutcomeAdmitted, gate.PolicySMC, "standard"))
	m.ObserveDecision(decisionRecord(gate.OutcomeAdmitted, gate.PolicySMC, "standard"))
	m.ObserveDecision(decisionRecord(gate.OutcomeRejected, gate.PolicyStandard, "standard"))

	admitted := m.Decisions.WithLabelValues(gate.PolicySMC, string(gate.OutcomeAdmitted), "standard")
	rejected := m.Decisions.WithLabelValues(gate.PolicyStandard, string(gate.OutcomeRejected), "standard")
	assert.Equal(t, 2.0, testutil.ToFloat64(admitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(rejected))

	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.AdmissionRate), 1e-9)
}

func TestMetricsRegistry_ObservesScoreDistribution(t *testing.T) {
	m := NewMetricsRegistry()

	m.ObserveDecision(decisionRecord(gate.OutcomeAdmitted, gate.PolicySMC, "standard"))
	m.ObserveDecision(decisionRecord(gate.OutcomeStripped, gate.PolicyStandard, "standard"))

	family := findFamily(t, m, "tradegate_calibrated_score")
	require.Len(t, family.GetMetric(), 1, "both observations share the standard mode")
	assert.Equal(t, uint64(2), family.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestMetricsRegistry_TracksHistoryLookupStatus(t *testing.T) {
	m := NewMetricsRegistry()

	healthy := decisionRecord(gate.OutcomeAdmitted, gate.PolicySMC, "standard")
	degraded := decisionRecord(gate.OutcomeRejected, gate.PolicySMC, "standard")
	degraded.Decision.Requirement.Degraded = true
	noLookup := decisionRecord(gate.OutcomeStripped, gate.PolicyStandard, "standard")
	noLookup.Decision.Requirement = nil

	m.ObserveDecision(healthy)
	m.ObserveDecision(degraded)
	m.ObserveDecision(noLookup)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryLookups.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryLookups.WithLabelValues("degraded")))
}

func TestMetricsRegistry_IgnoresEmptyRecords(t *testing.T) {
	m := NewMetricsRegistry()

	m.ObserveDecision(&admission.DecisionRecord{})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.AdmissionRate))
	families, err := m.Gather()
	require.NoError(t, err)
	for _, family := range families {
		assert.NotEqual(t, "tradegate_decisions_total", family.GetName())
	}
}

func TestMetricsRegistry_ExposesAllFamilies(t *testing.T) {
	m := NewMetricsRegistry()
	m.ObserveDecision(decisionRecord(gate.OutcomeAdmitted, gate.PolicySMC, "standard"))

	names := make(map[string]bool)
	families, err := m.Gather()
	require.NoError(t, err)
	for _, family := range families {
		names[family.GetName()] = true
	}

	for _, want := range []string{
		"tradegate_decisions_total",
		"tradegate_stage_duration_seconds",
		"tradegate_calibrated_score",
		"tradegate_history_lookups_total",
		"tradegate_admission_rate",
		"tradegate_inflight_requests",
	} {
		assert.True(t, names[want], "missing family %s", want)
	}
}

func TestMetricsRegistry_Handler(t *testing.T) {
	m := NewMetricsRegistry()
	m.ObserveDecision(decisionRecord(gate.OutcomeAdmitted, gate.PolicySMC, "standard"))

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.MetricsHandler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tradegate_decisions_total")
	assert.Contains(t, body, "tradegate_admission_rate")
}
