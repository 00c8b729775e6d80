package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// JobsProcessed counts consumer jobs by terminal result.
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photopost_queue_jobs_processed_total",
		Help: "Queue jobs processed, labelled by result (ok, failed).",
	}, []string{"result"})

	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photopost_queue_jobs_enqueued_total",
		Help: "Jobs pushed onto the work queue.",
	})

	JobsDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photopost_queue_jobs_dead_lettered_total",
		Help: "Jobs recorded in the dead-letter store after retry exhaustion.",
	})

	PhotosPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photopost_photos_published_total",
		Help: "Submissions successfully published to the channel.",
	})

	SubmissionsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photopost_submissions_received_total",
		Help: "Photo submissions accepted for moderation.",
	})

	ReactionsReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photopost_reactions_reconciled_total",
		Help: "Reaction snapshots applied to stored aggregates.",
	})
)

// Serve exposes /metrics on addr. It blocks, so run it in a goroutine.
func Serve(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info().Str("addr", addr).Msg("Metrics listener started")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics listener failed")
	}
}
