package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the documentation pipeline.
type Metrics struct {
	ClipsCaptured         prometheus.Counter
	ClipsDiscardedSilence prometheus.Counter

	TranscriptionRequests prometheus.Counter
	TranscriptionFailures prometheus.Counter
	TranscriptEntries     prometheus.Counter

	SynthesisRuns     prometheus.Counter
	SynthesisFailures prometheus.Counter
	SynthesisSkipped  prometheus.Counter

	SessionSaves     prometheus.Counter
	SaveFailures     prometheus.Counter
	StyleCorrections prometheus.Counter
}

// New creates and registers all pipeline metrics against the given
// registerer. Tests pass a fresh registry to avoid duplicate collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClipsCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_clips_captured_total",
			Help: "Total number of audio clips drained from the capture buffer",
		}),
		ClipsDiscardedSilence: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_clips_discarded_silence_total",
			Help: "Total number of clips discarded below the silence threshold",
		}),
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_transcription_requests_total",
			Help: "Total number of transcription requests submitted",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_transcription_failures_total",
			Help: "Total number of transcription requests that failed",
		}),
		TranscriptEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_transcript_entries_total",
			Help: "Total number of transcript entries appended",
		}),
		SynthesisRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_synthesis_runs_total",
			Help: "Total number of successful document synthesis runs",
		}),
		SynthesisFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_synthesis_failures_total",
			Help: "Total number of failed document synthesis runs",
		}),
		SynthesisSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_synthesis_skipped_total",
			Help: "Total number of synthesis ticks skipped (busy or below minimum transcript)",
		}),
		SessionSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_session_saves_total",
			Help: "Total number of session artifacts persisted",
		}),
		SaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_save_failures_total",
			Help: "Total number of persistence failures (swallowed)",
		}),
		StyleCorrections: factory.NewCounter(prometheus.CounterOpts{
			Name: "medscribe_style_corrections_total",
			Help: "Total number of style-correction records appended",
		}),
	}
}
