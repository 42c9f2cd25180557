package prommetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestPrometheusMetrics_NewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	if metrics == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestPrometheusMetrics_RecordAPICall(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordAPICall("stripe", "/subscriptions", "success")
	metrics.RecordAPICall("stripe", "/subscriptions", "success")
	metrics.RecordAPICall("stripe", "/products", "error")
	metrics.RecordAPICallDuration("stripe", "/subscriptions", 120*time.Millisecond)

	mf := findMetric(t, reg, "test_billing_api_calls_total")
	if mf == nil {
		t.Fatal("Expected api_calls_total to be registered")
	}
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("Expected 2 label sets, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		if labelValue(m, "endpoint") == "/subscriptions" && m.GetCounter().GetValue() != 2 {
			t.Errorf("Expected 2 subscription calls, got %v", m.GetCounter().GetValue())
		}
	}

	hist := findMetric(t, reg, "test_billing_api_call_duration_seconds")
	if hist == nil {
		t.Fatal("Expected api_call_duration_seconds to be registered")
	}
	if got := hist.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
		t.Errorf("Expected 1 observation, got %d", got)
	}
}

func TestPrometheusMetrics_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordOperation("get_subscription", "success")
	metrics.RecordOperation("get_subscription", "config_error")
	metrics.RecordOperationDuration("get_subscription", 10*time.Millisecond)

	mf := findMetric(t, reg, "test_billing_operations_total")
	if mf == nil {
		t.Fatal("Expected operations_total to be registered")
	}
	statuses := map[string]float64{}
	for _, m := range mf.GetMetric() {
		statuses[labelValue(m, "status")] = m.GetCounter().GetValue()
	}
	if statuses["success"] != 1 || statuses["config_error"] != 1 {
		t.Errorf("Unexpected operation counts: %v", statuses)
	}

	if findMetric(t, reg, "test_billing_operation_duration_seconds") == nil {
		t.Error("Expected operation_duration_seconds to be registered")
	}
}

func TestPrometheusMetrics_RecordEnrichmentFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordEnrichmentFallback("stripe", "lookup_failed")
	metrics.RecordEnrichmentFallback("stripe", "lookup_failed")
	metrics.RecordEnrichmentFallback("stripe", "missing_product")

	mf := findMetric(t, reg, "test_billing_enrichment_fallbacks_total")
	if mf == nil {
		t.Fatal("Expected enrichment_fallbacks_total to be registered")
	}
	var total float64
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	if total != 3 {
		t.Errorf("Expected 3 fallbacks, got %v", total)
	}
}

func TestPrometheusMetrics_RecordRateLimited(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordRateLimited("/billing/portal-session")

	mf := findMetric(t, reg, "test_billing_rate_limited_requests_total")
	if mf == nil {
		t.Fatal("Expected rate_limited_requests_total to be registered")
	}
	if got := labelValue(mf.GetMetric()[0], "route"); got != "/billing/portal-session" {
		t.Errorf("Expected route label, got %q", got)
	}
}

func TestPrometheusMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg, "test")

	defer func() {
		if recover() == nil {
			t.Error("Expected second registration on the same registry to panic")
		}
	}()
	NewMetrics(reg, "test")
}
