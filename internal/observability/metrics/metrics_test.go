package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestModalMetricsObserve(t *testing.T) {
	m := NewModalMetrics(nil)
	m.ObserveOpen("purchase")
	m.ObserveDismiss("escape")
	m.ObserveRejection("purchase", "no_license")
	m.ObservePayment("card", "project")
	m.ObserveAppointment()
	m.ObserveRedirect()
	m.ObserveLatency("purchase", 0.9)
}

func TestModalMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewModalMetrics(reg)
	m.ObservePayment("card", "project")
	m.ObservePayment("card", "project")
	m.ObservePayment("wave", "copy")
	m.ObserveAppointment()

	if got := counterValue(t, reg, "vitrine_purchase_simulated_payments_total", map[string]string{"method": "card", "license": "project"}); got != 2 {
		t.Fatalf("expected 2 card/project payments, got %v", got)
	}
	if got := counterValue(t, reg, "vitrine_appointment_requests_sent_total", nil); got != 1 {
		t.Fatalf("expected 1 appointment, got %v", got)
	}
}

func TestModalMetricsNilSafe(t *testing.T) {
	var m *ModalMetrics
	m.ObserveOpen("purchase")
	m.ObserveDismiss("close")
	m.ObserveRejection("appointment", "invalid_request")
	m.ObservePayment("orange", "copy")
	m.ObserveAppointment()
	m.ObserveRedirect()
	m.ObserveLatency("appointment", 0.1)
}
