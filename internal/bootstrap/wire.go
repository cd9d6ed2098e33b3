package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"medscribe/internal/audio"
	"medscribe/internal/config"
	"medscribe/internal/metrics"
	"medscribe/internal/ports"
	"medscribe/internal/providers/notes"
	"medscribe/internal/providers/stt"
	"medscribe/internal/store"
	"medscribe/internal/usecase"
)

// Runtime is the assembled pipeline plus the resources the host must
// close on shutdown.
type Runtime struct {
	Config     config.Config
	Controller *usecase.EncounterController
	Store      *store.SQLite
	Registry   *prometheus.Registry
}

func (r *Runtime) Close() error {
	return r.Store.Close()
}

// Build loads configuration from the environment and assembles the
// pipeline. The event sink is supplied by the host.
func Build(events ports.EventSink) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildWithConfig(cfg, events)
}

// BuildWithConfig assembles the pipeline from explicit configuration.
func BuildWithConfig(cfg config.Config, events ports.EventSink) (*Runtime, error) {
	transcriber, err := stt.NewClient(stt.Config{
		Endpoint: cfg.Transcription.Endpoint,
		APIKey:   cfg.Transcription.APIKey,
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
		Timeout:  cfg.Transcription.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription client: %w", err)
	}

	synthesizer, err := notes.NewClient(notes.Config{
		Endpoint: cfg.Synthesis.Endpoint,
		APIKey:   cfg.Synthesis.APIKey,
		Model:    cfg.Synthesis.Model,
		Timeout:  cfg.Synthesis.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis client: %w", err)
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	registry := prometheus.NewRegistry()

	controller := usecase.NewEncounterController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		transcriber,
		synthesizer,
		db,
		events,
		metrics.New(registry),
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:       cfg.Audio.SampleRate,
				Channels:         cfg.Audio.Channels,
				InputFormat:      cfg.Audio.InputFormat,
				InputDevice:      cfg.Audio.InputDevice,
				EchoCancellation: true,
				NoiseSuppression: true,
			},
			ChunkSize:            cfg.Session.ChunkSize,
			TranscribeInterval:   cfg.Session.TranscribeInterval,
			SynthesisInterval:    cfg.Session.SynthesisInterval,
			SaveDebounce:         cfg.Session.SaveDebounce,
			MinClipBytes:         cfg.Session.MinClipBytes,
			MinTranscriptEntries: cfg.Session.MinTranscriptEntries,
			ClinicianLabel:       cfg.Session.ClinicianLabel,
			PatientLabel:         cfg.Session.PatientLabel,
		},
	)

	return &Runtime{
		Config:     cfg,
		Controller: controller,
		Store:      db,
		Registry:   registry,
	}, nil
}
