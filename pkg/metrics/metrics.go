// Package metrics exposes pipeline counters and an optional Prometheus
// scrape endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ItemsGenerated counts raw blocks produced by the generator, by mode.
	ItemsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulseforge",
		Name:      "items_generated_total",
		Help:      "Raw work items produced by the generator.",
	}, []string{"mode"})

	// GateClosures counts how many times the busy gate was closed.
	GateClosures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulseforge",
		Name:      "gate_closures_total",
		Help:      "Times the generation busy gate was closed.",
	})

	// GenerationFailures counts external generation calls that produced
	// no content, by mode.
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulseforge",
		Name:      "generation_failures_total",
		Help:      "External generation calls that produced no content.",
	}, []string{"mode"})

	// Validations counts validator verdicts by mode and status.
	Validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulseforge",
		Name:      "validations_total",
		Help:      "Validator verdicts.",
	}, []string{"mode", "status"})

	// ArchiveFailures counts failed archive renames.
	ArchiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulseforge",
		Name:      "archive_failures_total",
		Help:      "Artifact archive renames that failed.",
	})
)

// Serve exposes /metrics on addr in the background. The listener lives for
// the remainder of the process; a serve failure is reported through errFn
// and never interrupts the pipeline.
func Serve(addr string, errFn func(error)) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if errFn != nil {
				errFn(err)
			}
		}
	}()
}
