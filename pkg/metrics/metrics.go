package metrics

import (
	"net/http"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/features"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//Metrics bundles the collectors of the service in a dedicated registry
type Metrics struct {
	Registry        *prometheus.Registry
	ConnectorStatus *ConnectorStatusCollector
	ToolDuration    *ToolDurationMetric
}

func NewMetrics(conn db.Connection, logger *zap.SugaredLogger) *Metrics {
	m := &Metrics{
		Registry:        prometheus.NewRegistry(),
		ConnectorStatus: NewConnectorStatusCollector(),
		ToolDuration:    NewToolDurationMetric(),
	}
	m.Registry.MustRegister(
		m.ConnectorStatus,
		m.ToolDuration.Collector,
		NewDbPoolCollector(conn, logger),
	)
	if features.Enabled(features.RuntimeMetrics) {
		m.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
