package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pendingWrites = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "order_sync",
		Subsystem: "queue",
		Name:      "pending_writes",
		Help:      "Number of locally accepted writes awaiting acknowledgement.",
	})

	deadWrites = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "order_sync",
		Subsystem: "queue",
		Name:      "dead_writes",
		Help:      "Number of writes that exceeded the retry budget.",
	})

	writesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_sync",
		Subsystem: "queue",
		Name:      "writes_enqueued_total",
		Help:      "Total number of writes queued while offline.",
	})

	writesDrained = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_sync",
		Subsystem: "queue",
		Name:      "writes_drained_total",
		Help:      "Total number of queued writes acknowledged by the remote store.",
	})

	networkOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "order_sync",
		Subsystem: "network",
		Name:      "online",
		Help:      "1 when the remote store is reachable, 0 otherwise.",
	})

	searchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_sync",
		Subsystem: "search",
		Name:      "queries_total",
		Help:      "Total number of debounced search queries issued.",
	})
)
