package metrics

import (
	"sync"

	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	prometheusNamespace = "emc"

	statusUnknown   float64 = 0
	statusDeploying float64 = 1
	statusHealthy   float64 = 2
	statusUnhealthy float64 = 3
)

// ConnectorStatusCollector provides the following metrics:
// - emc_connector_status{"connector", "version"}
// The value of the gauge could be:
// 0 - Unknown
// 1 - Deploying
// 2 - Healthy
// 3 - Unhealthy
type ConnectorStatusCollector struct {
	connectorStatusGauge *prometheus.GaugeVec
	mu                   sync.Mutex
	versions             map[string]string
}

func NewConnectorStatusCollector() *ConnectorStatusCollector {
	return &ConnectorStatusCollector{
		connectorStatusGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      "connector_status",
			Help:      "Status of the connector",
		}, []string{"connector", "version"}),
		versions: map[string]string{},
	}
}

func (c *ConnectorStatusCollector) Describe(ch chan<- *prometheus.Desc) {
	c.connectorStatusGauge.Describe(ch)
}

func (c *ConnectorStatusCollector) Collect(ch chan<- prometheus.Metric) {
	c.connectorStatusGauge.Collect(ch)
}

func (c *ConnectorStatusCollector) OnConnectorUpdate(connector *model.ConnectorEntity) {
	var resultValue float64
	switch connector.Status {
	case model.ConnectorStatusDeploying:
		resultValue = statusDeploying
	case model.ConnectorStatusHealthy:
		resultValue = statusHealthy
	case model.ConnectorStatusUnhealthy:
		resultValue = statusUnhealthy
	default:
		resultValue = statusUnknown
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	//an upgrade replaces the series of the previous version
	if previous, ok := c.versions[connector.Name]; ok && previous != connector.Version {
		c.connectorStatusGauge.DeleteLabelValues(connector.Name, previous)
	}
	c.versions[connector.Name] = connector.Version
	c.connectorStatusGauge.WithLabelValues(connector.Name, connector.Version).Set(resultValue)
}

func (c *ConnectorStatusCollector) OnConnectorDelete(connector *model.ConnectorEntity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version, ok := c.versions[connector.Name]; ok {
		c.connectorStatusGauge.DeleteLabelValues(connector.Name, version)
		delete(c.versions, connector.Name)
	}
}
