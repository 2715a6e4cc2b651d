package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "letsettle_vote_requests_total",
		Help: "Vote submissions received, labeled by outcome",
	}, []string{"status"})

	debateSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "letsettle_debate_submissions_total",
		Help: "Debate submissions received, labeled by moderation status",
	}, []string{"status"})

	viewEventsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "letsettle_view_events_processed_total",
		Help: "View events folded into debate counters by the worker",
	})

	reconcileRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "letsettle_reconcile_runs_total",
		Help: "Tally reconciliation runs, labeled by result",
	}, []string{"result"})

	reconcileDriftRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "letsettle_reconcile_drift_repaired_total",
		Help: "Counters rewritten because they diverged from the vote ledger",
	})

	viewProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "letsettle_view_processing_duration_seconds",
		Help:    "Time to process one view event in the worker",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveDebateSubmission(status string) {
	debateSubmissionsTotal.WithLabelValues(status).Inc()
}

func IncViewProcessed() {
	viewEventsProcessedTotal.Inc()
}

func ObserveViewProcessingDuration(seconds float64) {
	viewProcessingDuration.Observe(seconds)
}

func ObserveReconcileRun(result string) {
	reconcileRunsTotal.WithLabelValues(result).Inc()
}

func IncDriftRepaired() {
	reconcileDriftRepaired.Inc()
}
