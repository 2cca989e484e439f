package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type PoolMetrics struct {
	TotalConns    prometheus.Gauge
	IdleConns     prometheus.Gauge
	AcquiredConns prometheus.Gauge
	MaxConns      prometheus.Gauge
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersUpdatedTotal prometheus.Counter
	CustomersDeletedTotal prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_service_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Pool = PoolMetrics{
		TotalConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "customer_service_db_pool_total_conns",
			Help: "Total number of connections currently in the pool.",
		}),
		IdleConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "customer_service_db_pool_idle_conns",
			Help: "Number of idle connections in the pool.",
		}),
		AcquiredConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "customer_service_db_pool_acquired_conns",
			Help: "Number of connections currently checked out of the pool.",
		}),
		MaxConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "customer_service_db_pool_max_conns",
			Help: "Maximum size of the pool.",
		}),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customer_service_customers_created_total",
			Help: "Total number of customers successfully created.",
		}),
		CustomersUpdatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customer_service_customers_updated_total",
			Help: "Total number of customers successfully updated.",
		}),
		CustomersDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customer_service_customers_deleted_total",
			Help: "Total number of successful customer delete requests.",
		}),
	}
)

func RecordDBQuery(queryName string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordPoolStats(total, idle, acquired, max int32) {
	Pool.TotalConns.Set(float64(total))
	Pool.IdleConns.Set(float64(idle))
	Pool.AcquiredConns.Set(float64(acquired))
	Pool.MaxConns.Set(float64(max))
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordCustomerUpdated() {
	Business.CustomersUpdatedTotal.Inc()
}

func RecordCustomerDeleted() {
	Business.CustomersDeletedTotal.Inc()
}
