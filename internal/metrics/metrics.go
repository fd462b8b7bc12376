// Package metrics registers the Prometheus collectors for connectivity,
// offline capture and reconciliation. They are served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bus_booking"

var (
	// authorityUp is 1 while the last probe reached the authority.
	authorityUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "connectivity",
		Name:      "authority_up",
		Help:      "Whether the last connectivity probe reached the authority",
	})

	// probeTransitions counts online/offline flips.
	// Labels: to (online, offline)
	probeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "connectivity",
		Name:      "transitions_total",
		Help:      "Connectivity state changes observed by the probe",
	}, []string{"to"})

	// pendingRecords is the offline log size after the last capture or sync.
	pendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "offline",
		Name:      "pending_records",
		Help:      "Records waiting in the offline log",
	})

	// offlineCaptures counts writes accepted into the offline log.
	// Labels: kind (user, booking)
	offlineCaptures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "offline",
		Name:      "captures_total",
		Help:      "Writes accepted into the offline log",
	}, []string{"kind"})

	// syncRecords counts per-record sync outcomes.
	// Labels: kind (user, booking), outcome (synced, duplicate, failed, corrupt)
	syncRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "records_total",
		Help:      "Offline records processed by reconciliation",
	}, []string{"kind", "outcome"})

	// syncDuration measures whole reconciliation runs.
	// Labels: status (success, partial, aborted)
	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Reconciliation run duration in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"status"})

	// bookingsCreated counts bookings by mode.
	// Labels: mode (online, offline)
	bookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bookings",
		Name:      "created_total",
		Help:      "Bookings accepted, by mode",
	}, []string{"mode"})
)

// SetAuthorityUp records the latest probe result.
func SetAuthorityUp(up bool) {
	if up {
		authorityUp.Set(1)
		return
	}
	authorityUp.Set(0)
}

// RecordTransition counts an online/offline flip.
func RecordTransition(online bool) {
	to := "offline"
	if online {
		to = "online"
	}
	probeTransitions.WithLabelValues(to).Inc()
}

func SetPending(n int) {
	pendingRecords.Set(float64(n))
}

func RecordCapture(kind string) {
	offlineCaptures.WithLabelValues(kind).Inc()
}

func RecordSyncOutcome(kind, outcome string) {
	syncRecords.WithLabelValues(kind, outcome).Inc()
}

// RecordSyncRun observes a finished run.
func RecordSyncRun(status string, elapsed time.Duration) {
	syncDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func RecordBooking(mode string) {
	bookingsCreated.WithLabelValues(mode).Inc()
}
