package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHoneypotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHoneypotMetrics(reg)
	m.ObserveMessage("trust_building")
	m.ObserveDetection("financial", true)
	m.ObserveDetection("", false)
	m.ObserveEntities("upi_ids", 2)
	m.ObserveEntities("urls", 0)
	m.ObserveLLMLatency("ok", 0.42)
	m.ObserveFallbackReply()
}

func TestHoneypotMetricsNilSafe(t *testing.T) {
	var m *HoneypotMetrics
	m.ObserveMessage("extraction")
	m.ObserveDetection("prize", true)
	m.ObserveEntities("names", 1)
	m.ObserveLLMLatency("timeout", 9.9)
	m.ObserveFallbackReply()
}
