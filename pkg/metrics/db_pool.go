package metrics

import (
	"database/sql"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	dbInUse              = "in_use"
	dbIdle               = "idle"
	dbMaxOpenConnections = "max_open_connections"
	dbOpenConnections    = "open_connections"
	dbWaitCount          = "wait_count"
	dbWaitDuration       = "wait_duration_milliseconds"
)

//DbPoolCollector exposes the sql.DBStats of the store connection
type DbPoolCollector struct {
	conn   db.Connection
	logger *zap.SugaredLogger
	desc   *prometheus.GaugeVec
}

func NewDbPoolCollector(conn db.Connection, logger *zap.SugaredLogger) *DbPoolCollector {
	return &DbPoolCollector{
		conn:   conn,
		logger: logger,
		desc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      "db_pool_stats",
			Help:      "Stats from go SQL database pool",
		}, []string{"driver", "metric"}),
	}
}

func (c *DbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	c.desc.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (c *DbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.conn == nil || c.conn.DB() == nil {
		c.logger.Debug("Skipping db pool metrics: no database handle available")
		return
	}
	driver := string(c.conn.Type())
	for name, value := range statsToMetrics(c.conn.DB().Stats()) {
		c.desc.WithLabelValues(driver, name).Set(value)
	}
	c.desc.Collect(ch)
}

func statsToMetrics(stats sql.DBStats) map[string]float64 {
	return map[string]float64{
		dbInUse:              float64(stats.InUse),
		dbIdle:               float64(stats.Idle),
		dbMaxOpenConnections: float64(stats.MaxOpenConnections),
		dbOpenConnections:    float64(stats.OpenConnections),
		dbWaitCount:          float64(stats.WaitCount),
		dbWaitDuration:       float64(stats.WaitDuration.Milliseconds()),
	}
}
