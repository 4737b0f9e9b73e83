package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness_tracker",
		Subsystem: "store",
		Name:      "last_session_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout session mutation.",
	})

	exerciseWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness_tracker",
		Subsystem: "store",
		Name:      "last_exercise_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout exercise mutation.",
	})

	storeOpsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness_tracker",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Number of completed store mutations, labeled by entity and operation.",
	}, []string{"entity", "op"})
)

func init() {
	prometheus.MustRegister(sessionWriteGauge, exerciseWriteGauge, storeOpsCounter)
}

// RecordSessionWrite counts a session mutation and advances the session
// write watermark.
func RecordSessionWrite(op string, ts time.Time) {
	storeOpsCounter.WithLabelValues("session", op).Inc()
	if ts.IsZero() {
		return
	}
	sessionWriteGauge.Set(float64(ts.Unix()))
}

// RecordExerciseWrite counts an exercise mutation and advances the exercise
// write watermark.
func RecordExerciseWrite(op string, ts time.Time) {
	storeOpsCounter.WithLabelValues("exercise", op).Inc()
	if ts.IsZero() {
		return
	}
	exerciseWriteGauge.Set(float64(ts.Unix()))
}
