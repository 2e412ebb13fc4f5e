package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts production orders entering the line
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopfloor_orders_created_total",
		Help: "The total number of production orders created",
	})

	// TasksClaimed counts successfully claimed tasks, per station
	TasksClaimed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopfloor_tasks_claimed_total",
		Help: "The total number of tasks claimed by operators",
	}, []string{"station"})

	// TasksCompleted counts closed tasks, per station
	TasksCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopfloor_tasks_completed_total",
		Help: "The total number of tasks completed by operators",
	}, []string{"station"})

	// OrdersCompleted counts orders that passed the last station
	OrdersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopfloor_orders_completed_total",
		Help: "The total number of production orders that finished the line",
	})

	// ClaimConflicts counts claims rejected because the order had already
	// left the pending state (two operators racing for the same order)
	ClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopfloor_claim_conflicts_total",
		Help: "The total number of claims lost to a concurrent claim",
	})
)
