package notifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	watcherEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_watcher_events_total",
		Help: "Total number of order change events consumed from the feed.",
	})
	watcherReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_watcher_reconnects_total",
		Help: "Total number of reconnect cycles after an unexpected stream failure.",
	})
	watcherState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_watcher_state",
		Help: "Current watcher state: 0 disconnected, 1 connecting, 2 active, 3 backoff.",
	})
	notifierPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_notifier_publishes_total",
		Help: "Total number of topic publishes during fan-out, grouped by result.",
	}, []string{"result"})
)
