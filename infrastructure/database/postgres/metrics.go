package postgres

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	retriesTotal prometheus.Counter
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		retriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storage_retries_total",
			Help: "Total number of storage operations retried after a transient failure.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
