package metrics

import "github.com/prometheus/client_golang/prometheus"

// ModalMetrics exposes counters/histograms for the storefront modal flows.
type ModalMetrics struct {
	opensTotal      *prometheus.CounterVec
	dismissTotal    *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec
	requestsTotal   prometheus.Counter
	redirectsTotal  prometheus.Counter
	latency         *prometheus.HistogramVec
}

func NewModalMetrics(reg prometheus.Registerer) *ModalMetrics {
	m := &ModalMetrics{
		opensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "modal",
			Name:      "opens_total",
			Help:      "Total modal opens",
		}, []string{"modal"}),
		dismissTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "modal",
			Name:      "dismissals_total",
			Help:      "Total modal dismissals by trigger",
		}, []string{"trigger"}),
		rejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "modal",
			Name:      "gate_rejections_total",
			Help:      "Primary actions refused because the gate evaluated false",
		}, []string{"modal", "reason"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "purchase",
			Name:      "simulated_payments_total",
			Help:      "Total simulated payments",
		}, []string{"method", "license"}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "appointment",
			Name:      "requests_sent_total",
			Help:      "Total simulated appointment requests",
		}),
		redirectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "purchase",
			Name:      "redirects_total",
			Help:      "Buy clicks redirected to the products page",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vitrine",
			Subsystem: "modal",
			Name:      "simulated_latency_seconds",
			Help:      "Duration of the simulated processing step",
			Buckets:   []float64{0.1, 0.25, 0.5, 0.9, 1, 2, 5},
		}, []string{"modal"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.opensTotal, m.dismissTotal, m.rejectionsTotal, m.paymentsTotal, m.requestsTotal, m.redirectsTotal, m.latency)
	return m
}

func (m *ModalMetrics) ObserveOpen(modal string) {
	if m == nil {
		return
	}
	m.opensTotal.WithLabelValues(modal).Inc()
}

func (m *ModalMetrics) ObserveDismiss(trigger string) {
	if m == nil {
		return
	}
	m.dismissTotal.WithLabelValues(trigger).Inc()
}

func (m *ModalMetrics) ObserveRejection(modal, reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(modal, reason).Inc()
}

func (m *ModalMetrics) ObservePayment(method, license string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(method, license).Inc()
}

func (m *ModalMetrics) ObserveAppointment() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

func (m *ModalMetrics) ObserveRedirect() {
	if m == nil {
		return
	}
	m.redirectsTotal.Inc()
}

func (m *ModalMetrics) ObserveLatency(modal string, seconds float64) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(modal).Observe(seconds)
}
