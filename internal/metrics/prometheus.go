package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation runs by provider, kind (review, swipe) and outcome
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmate_generations_total",
			Help: "Total number of generation runs",
		},
		[]string{"provider", "kind", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmate_generation_duration_seconds",
			Help:    "Duration of generation runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		},
		[]string{"provider", "kind"},
	)

	// Terminal outcome of each relayed stream (result, error, aborted)
	StreamOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmate_stream_outcomes_total",
			Help: "Total number of relayed streams by terminal outcome",
		},
		[]string{"outcome"},
	)

	ProgressEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmate_progress_events_total",
			Help: "Total number of progress frames written to clients",
		},
	)

	// Gateway events with no progress mapping
	DroppedEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmate_dropped_events_total",
			Help: "Total number of gateway events dropped by the relay",
		},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmate_active_streams",
			Help: "Number of streams currently being relayed",
		},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmate_tokens_total",
			Help: "Total number of tokens reported by hosted providers",
		},
		[]string{"provider", "type"},
	)
)

// Stream outcome labels
const (
	StreamOutcomeResult  = "result"
	StreamOutcomeError   = "error"
	StreamOutcomeAborted = "aborted"
)

// RecordGeneration records one finished generation run
func RecordGeneration(provider, kind string, duration time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	GenerationsTotal.WithLabelValues(provider, kind, outcome).Inc()
	GenerationDuration.WithLabelValues(provider, kind).Observe(duration.Seconds())
}

// RecordStreamOutcome records how a relayed stream ended
func RecordStreamOutcome(outcome string) {
	StreamOutcomes.WithLabelValues(outcome).Inc()
}

// RecordProgressEvent records one progress frame written to a client
func RecordProgressEvent() {
	ProgressEventsTotal.Inc()
}

// RecordDroppedEvent records a gateway event that produced no progress message
func RecordDroppedEvent() {
	DroppedEventsTotal.Inc()
}

// RecordTokens adds provider token counts
func RecordTokens(provider string, input, output, reasoning int64) {
	TokensTotal.WithLabelValues(provider, "input").Add(float64(input))
	TokensTotal.WithLabelValues(provider, "output").Add(float64(output))
	if reasoning > 0 {
		TokensTotal.WithLabelValues(provider, "reasoning").Add(float64(reasoning))
	}
}
