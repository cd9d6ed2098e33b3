package ports

import (
	"context"
	"io"

	"medscribe/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate       int
	Channels         int
	InputFormat      string
	InputDevice      string
	EchoCancellation bool
	NoiseSuppression bool
}

// AudioSession is a live capture session producing s16le PCM.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Clip is one short segment of recorded s16le PCM audio submitted for
// transcription.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// DurationMs returns the clip length in milliseconds.
func (c Clip) DurationMs() int64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := int64(len(c.PCM)) / int64(2*c.Channels)
	return frames * 1000 / int64(c.SampleRate)
}

// Transcriber converts one audio clip into text. Empty or near-silent
// clips may legitimately return empty text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip) (string, error)
}

// SynthesisRequest carries the rendered transcript and style bias.
type SynthesisRequest struct {
	Transcript     string
	PatientLabel   string
	ClinicianLabel string
	Encounter      domain.EncounterRef
	Style          *domain.StyleProfile
}

// NoteSynthesizer produces a structured clinical note from a transcript.
type NoteSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (domain.ClinicalDocument, error)
}

// SessionStore persists session artifacts and style profiles, both as
// upserts by key. No delete or range queries are required.
type SessionStore interface {
	UpsertSession(ctx context.Context, session *domain.ScribeSession) error
	UpsertStyleProfile(ctx context.Context, profile *domain.StyleProfile) error
	StyleProfile(ctx context.Context, ownerID string) (*domain.StyleProfile, error)
}

// EventSink emits pipeline state and documents to the host UI.
type EventSink interface {
	EncounterStateChanged(state domain.EncounterState, reason domain.StateReason)
	TranscriptUpdated(entries []domain.TranscriptEntry)
	DocumentUpdated(doc domain.ClinicalDocument)
	DiagnosisCodesUpdated(codes []string)
	SessionSaved(sessionID string, manual bool)
	EncounterError(code domain.ErrorCode, detail string)
}
