package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VoucherCheckTotal counts voucher code verification attempts by the
	// calling action and resulting status.
	VoucherCheckTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_check_total",
			Help: "Voucher code verification attempts by action and status",
		},
		[]string{"action", "status"},
	)

	// SubmissionDuration tracks the latency of application submissions.
	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "application_submission_duration_seconds",
			Help:    "Duration of application submission requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"result"}, // success or failed
	)

	// DedupSweepDuration tracks how long a full dedup sweep takes.
	DedupSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dedup_sweep_duration_seconds",
			Help:    "Duration of dedup sweep runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
	)
)

// RecordVoucherCheck records one verification attempt.
func RecordVoucherCheck(action, status string) {
	VoucherCheckTotal.WithLabelValues(action, status).Inc()
}

// RecordSubmissionDuration records the duration of a submission request.
func RecordSubmissionDuration(result string, duration float64) {
	SubmissionDuration.WithLabelValues(result).Observe(duration)
}

// RecordDedupSweepDuration records the duration of a dedup sweep.
func RecordDedupSweepDuration(duration float64) {
	DedupSweepDuration.Observe(duration)
}
