package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// writesTotal counts autosave writes by result
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumina_autosave_writes_total",
		Help: "Total autosave writes by result",
	}, []string{"result"})

	// writeDuration tracks how long the storage write takes
	writeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lumina_autosave_write_duration_seconds",
		Help:    "Autosave write duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// debouncedEdits counts edits folded into a pending write
	debouncedEdits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lumina_autosave_debounced_edits_total",
		Help: "Edits that re-armed the autosave timer",
	})
)
