package metrics

import (
	"time"

	"github.com/dataspace-ops/emc/pkg/deployment"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

type ToolDurationMetric struct {
	Collector *prometheus.HistogramVec
}

func NewToolDurationMetric() *ToolDurationMetric {
	return &ToolDurationMetric{
		Collector: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prometheusNamespace,
			Name:      "deployment_tool_duration_seconds",
			Help:      "Duration of deployment tool invocations",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 12),
		}, []string{"operation", "result"}),
	}
}

//Observe has the signature of deployment.Observer
func (m *ToolDurationMetric) Observe(op deployment.Operation, success bool, duration time.Duration) {
	result := resultFailure
	if success {
		result = resultSuccess
	}
	m.Collector.WithLabelValues(string(op), result).Observe(duration.Seconds())
}
