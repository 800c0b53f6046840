package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsCollector exposes pgxpool statistics as Prometheus metrics.
type PoolStatsCollector struct {
	pool *pgxpool.Pool

	totalConns    *prometheus.Desc
	idleConns     *prometheus.Desc
	acquiredConns *prometheus.Desc
	maxConns      *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquire  *prometheus.Desc
}

// NewPoolStatsCollector creates a collector for the given pool, labelling all
// metrics with the database name.
func NewPoolStatsCollector(pool *pgxpool.Pool, dbName string) *PoolStatsCollector {
	labels := prometheus.Labels{"db_name": dbName}
	return &PoolStatsCollector{
		pool: pool,
		totalConns: prometheus.NewDesc(
			"pgxpool_total_conns", "Total number of connections in the pool.", nil, labels),
		idleConns: prometheus.NewDesc(
			"pgxpool_idle_conns", "Number of idle connections in the pool.", nil, labels),
		acquiredConns: prometheus.NewDesc(
			"pgxpool_acquired_conns", "Number of currently acquired connections.", nil, labels),
		maxConns: prometheus.NewDesc(
			"pgxpool_max_conns", "Maximum size of the pool.", nil, labels),
		acquireCount: prometheus.NewDesc(
			"pgxpool_acquire_count_total", "Cumulative count of successful acquires.", nil, labels),
		emptyAcquire: prometheus.NewDesc(
			"pgxpool_empty_acquire_count_total", "Cumulative count of acquires that waited for a connection.", nil, labels),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.acquiredConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.emptyAcquire
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stats.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stats.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stats.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stats.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stats.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquire, prometheus.CounterValue, float64(stats.EmptyAcquireCount()))
}
