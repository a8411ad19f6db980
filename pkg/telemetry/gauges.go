package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store gauges published by the maintenance sweep.
var (
	StoreThreads = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "careline",
		Subsystem: "store",
		Name:      "threads",
		Help:      "Number of threads in the store.",
	})
	StoreMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "careline",
		Subsystem: "store",
		Name:      "messages",
		Help:      "Number of messages across all threads.",
	})
	StoreUnread = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "careline",
		Subsystem: "store",
		Name:      "unread_messages",
		Help:      "Unread message backlog across all threads.",
	})
	StoreDiskBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "careline",
		Subsystem: "store",
		Name:      "disk_bytes",
		Help:      "On-disk size of the pebble database.",
	})
)
