package replication

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scim_gateway_replication_tasks_total",
		Help: "Replication tasks accepted onto the queue, by action.",
	}, []string{"action"})

	tasksSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scim_gateway_replication_success_total",
		Help: "Replication tasks acknowledged by the mirror.",
	})

	tasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scim_gateway_replication_failures_total",
		Help: "Replication tasks the mirror rejected or that timed out.",
	})

	tasksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scim_gateway_replication_dropped_total",
		Help: "Replication tasks dropped because the queue was full.",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scim_gateway_replication_queue_depth",
		Help: "Tasks currently waiting on the replication queue.",
	})
)
