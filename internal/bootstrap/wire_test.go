package bootstrap

import (
	"path/filepath"
	"testing"
	"time"

	"medscribe/internal/config"
	"medscribe/internal/domain"
)

type noopSink struct{}

func (noopSink) EncounterStateChanged(domain.EncounterState, domain.StateReason) {}
func (noopSink) TranscriptUpdated([]domain.TranscriptEntry)                      {}
func (noopSink) DocumentUpdated(domain.ClinicalDocument)                         {}
func (noopSink) DiagnosisCodesUpdated([]string)                                  {}
func (noopSink) SessionSaved(string, bool)                                       {}
func (noopSink) EncounterError(domain.ErrorCode, string)                         {}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Audio: config.AudioConfig{SampleRate: 16000, Channels: 1},
		Transcription: config.TranscriptionConfig{
			Endpoint: "http://localhost:9090/transcribe",
			Timeout:  time.Second,
		},
		Synthesis: config.SynthesisConfig{
			Endpoint: "http://localhost:9091/synthesize",
			Timeout:  time.Second,
		},
		Store: config.StoreConfig{Path: filepath.Join(t.TempDir(), "test.sqlite")},
	}
}

func TestBuildWithConfig(t *testing.T) {
	runtime, err := BuildWithConfig(testConfig(t), noopSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer runtime.Close()

	if runtime.Controller == nil {
		t.Fatal("expected assembled controller")
	}
	status := runtime.Controller.Status()
	if status.State != domain.EncounterStateIdle {
		t.Fatalf("expected idle pipeline, got %s", status.State)
	}
	if runtime.Registry == nil {
		t.Fatal("expected metrics registry")
	}
}

func TestBuildRequiresTranscriptionEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.Endpoint = ""
	if _, err := BuildWithConfig(cfg, noopSink{}); err == nil {
		t.Fatal("expected endpoint error")
	}
}

func TestBuildRequiresSynthesisEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Synthesis.Endpoint = ""
	if _, err := BuildWithConfig(cfg, noopSink{}); err == nil {
		t.Fatal("expected endpoint error")
	}
}
