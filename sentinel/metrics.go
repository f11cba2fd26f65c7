package sentinel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alopexmon_alerts_total",
		Help: "Security alerts committed to the queue, by kind and severity.",
	}, []string{"kind", "severity"})

	alertsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alopexmon_alerts_dropped_total",
		Help: "Alerts dropped because the queue byte budget was exhausted.",
	})

	storeEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alopexmon_store_evictions_total",
		Help: "Correlation entries removed by sweep or capacity pressure.",
	})
)
