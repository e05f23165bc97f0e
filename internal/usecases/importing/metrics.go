package importing

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	rowsTotal *prometheus.CounterVec
	runsTotal *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "import",
			Name:      "rows_total",
			Help:      "Total number of imported rows by outcome.",
		}, []string{"source_type", "outcome"}),
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "import",
			Name:      "runs_total",
			Help:      "Total number of import runs by final status.",
		}, []string{"source_type", "status"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
