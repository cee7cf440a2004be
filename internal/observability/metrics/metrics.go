package metrics

import "github.com/prometheus/client_golang/prometheus"

// HoneypotMetrics exposes counters/histograms for the engagement pipeline.
type HoneypotMetrics struct {
	messagesTotal   *prometheus.CounterVec
	detectionsTotal *prometheus.CounterVec
	entitiesTotal   *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	llmFallbacks    prometheus.Counter
}

func NewHoneypotMetrics(reg prometheus.Registerer) *HoneypotMetrics {
	m := &HoneypotMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chameleon",
			Subsystem: "honeypot",
			Name:      "messages_total",
			Help:      "Total inbound sender messages by engagement phase",
		}, []string{"phase"}),
		detectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chameleon",
			Subsystem: "honeypot",
			Name:      "detections_total",
			Help:      "Total classifications by category and outcome",
		}, []string{"category", "is_scam"}),
		entitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chameleon",
			Subsystem: "honeypot",
			Name:      "entities_extracted_total",
			Help:      "Total newly extracted entities by kind",
		}, []string{"kind"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chameleon",
			Subsystem: "honeypot",
			Name:      "llm_latency_seconds",
			Help:      "Latency of dialogue generation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chameleon",
			Subsystem: "honeypot",
			Name:      "llm_fallback_replies_total",
			Help:      "Replies substituted with the canned fallback utterance",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.detectionsTotal, m.entitiesTotal, m.llmLatency, m.llmFallbacks)
	return m
}

func (m *HoneypotMetrics) ObserveMessage(phase string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(phase).Inc()
}

func (m *HoneypotMetrics) ObserveDetection(category string, isScam bool) {
	if m == nil {
		return
	}
	label := "false"
	if isScam {
		label = "true"
	}
	if category == "" {
		category = "none"
	}
	m.detectionsTotal.WithLabelValues(category, label).Inc()
}

func (m *HoneypotMetrics) ObserveEntities(kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.entitiesTotal.WithLabelValues(kind).Add(float64(count))
}

func (m *HoneypotMetrics) ObserveLLMLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *HoneypotMetrics) ObserveFallbackReply() {
	if m == nil {
		return
	}
	m.llmFallbacks.Inc()
}
