package batcher

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mood_reaction_queue_depth",
		Help: "Reaction toggles waiting for the next flush.",
	})

	flushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_reaction_flushes_total",
			Help: "Reaction batch flushes by outcome.",
		},
		[]string{"outcome"},
	)

	flushedEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mood_reaction_flushed_entries_total",
		Help: "Reaction toggles persisted by successful flushes.",
	})

	flushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mood_reaction_flush_duration_seconds",
		Help:    "Time spent writing a reaction batch.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(queueDepth, flushes, flushedEntries, flushDuration)
}
