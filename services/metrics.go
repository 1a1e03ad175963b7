package services

import "github.com/prometheus/client_golang/prometheus"

var (
	completionMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_mutations_total",
			Help: "Completion writes by action and outcome",
		},
		[]string{"action", "outcome"},
	)
	goalRecomputeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goal_progress_recompute_failures_total",
			Help: "Goal progress recomputes that failed after a completion change",
		},
	)
	notificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_total",
			Help: "Push notifications by result",
		},
		[]string{"result"},
	)
)

// InitMetrics registers the domain collectors. Call once from main.
func InitMetrics(reg prometheus.Registerer) {
	reg.MustRegister(completionMutations, goalRecomputeFailures, notificationsDispatched)
}
