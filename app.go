package medscribe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medscribe/internal/bootstrap"
	"medscribe/internal/domain"
	"medscribe/internal/ports"
)

// App is the host-facing facade over the documentation pipeline. A
// failed boot leaves the app inert: every method reports the boot error
// instead of panicking.
type App struct {
	runtime *bootstrap.Runtime
	bootErr error
}

// NewApp builds the pipeline from environment configuration. Events are
// delivered to the host-supplied sink.
func NewApp(events ports.EventSink) *App {
	runtime, err := bootstrap.Build(events)
	if err != nil {
		return &App{bootErr: err}
	}
	return &App{runtime: runtime}
}

// Ready reports whether the pipeline booted.
func (a *App) Ready() error {
	return a.requireReady()
}

// Close releases the store and other runtime resources.
func (a *App) Close() error {
	if a.runtime == nil {
		return nil
	}
	return a.runtime.Close()
}

// SetEncounter sets the appointment context for the next session.
func (a *App) SetEncounter(ref domain.EncounterRef) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.runtime.Controller.SetEncounter(ref)
	return nil
}

// SetCallActive feeds the external call-activity signal.
func (a *App) SetCallActive(ctx context.Context, active bool) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.SetConnected(ctx, active)
}

// Stop ends the session and finalizes the note.
func (a *App) Stop(ctx context.Context) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.StopEncounter(ctx)
}

// Pause releases the microphone without ending the session.
func (a *App) Pause() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.Pause()
}

// Resume re-acquires the microphone after a pause.
func (a *App) Resume(ctx context.Context) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.Resume(ctx)
}

// Restart clears a finished or failed session.
func (a *App) Restart(ctx context.Context) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.Restart(ctx)
}

// DismissError acknowledges a fatal capture error.
func (a *App) DismissError() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.DismissError()
}

// FlipSpeaker toggles the attribution of one transcript entry.
func (a *App) FlipSpeaker(entryID string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.FlipSpeaker(entryID)
}

// BeginEdit enters note edit mode.
func (a *App) BeginEdit() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.BeginEdit()
}

// UpdateWorkingDocument replaces the working note with the user's edit.
func (a *App) UpdateWorkingDocument(doc domain.ClinicalDocument) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.UpdateWorkingDocument(doc)
}

// CancelEdit discards in-progress edits.
func (a *App) CancelEdit() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.CancelEdit()
}

// SaveNote commits the working document and learns style corrections.
func (a *App) SaveNote(ctx context.Context) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.runtime.Controller.SaveNote(ctx)
}

// Status returns the current pipeline status with a readable message.
func (a *App) Status() domain.Status {
	if a.runtime == nil {
		status := domain.Status{State: domain.EncounterStateIdle}
		if a.bootErr != nil {
			status.State = domain.EncounterStateError
			status.Message = a.bootErr.Error()
		}
		return status
	}
	status := a.runtime.Controller.Status()
	status.Message = stateMessage(status.State)
	return status
}

// Transcript returns a copy of the session transcript.
func (a *App) Transcript() []domain.TranscriptEntry {
	if a.runtime == nil {
		return nil
	}
	return a.runtime.Controller.Transcript()
}

// WorkingDocument returns the editable note, if one exists yet.
func (a *App) WorkingDocument() (domain.ClinicalDocument, bool) {
	if a.runtime == nil {
		return domain.ClinicalDocument{}, false
	}
	return a.runtime.Controller.WorkingDocument()
}

// SynthesizedDocument returns the latest generator output.
func (a *App) SynthesizedDocument() (domain.ClinicalDocument, bool) {
	if a.runtime == nil {
		return domain.ClinicalDocument{}, false
	}
	return a.runtime.Controller.SynthesizedDocument()
}

// MetricsAddr returns the configured metrics listen address, empty when
// the metrics endpoint is disabled.
func (a *App) MetricsAddr() string {
	if a.runtime == nil {
		return ""
	}
	return a.runtime.Config.Metrics.Addr
}

// MetricsHandler serves the pipeline's Prometheus registry.
func (a *App) MetricsHandler() http.Handler {
	if a.runtime == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(a.runtime.Registry, promhttp.HandlerOpts{})
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.runtime == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func stateMessage(state domain.EncounterState) string {
	switch state {
	case domain.EncounterStateIdle:
		return "Waiting for a call"
	case domain.EncounterStateListening:
		return "Documenting visit"
	case domain.EncounterStatePaused:
		return "Recording paused"
	case domain.EncounterStateProcessing:
		return "Finalizing note..."
	case domain.EncounterStateDone:
		return "Note ready for review"
	case domain.EncounterStateError:
		return "Recording failed"
	default:
		return ""
	}
}

// ReasonMessage renders a transition reason for the host UI.
func ReasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonCallConnected:
		return "Call connected; documentation started"
	case domain.ReasonCallDisconnected:
		return "Call ended; finalizing note"
	case domain.ReasonStoppedByUser:
		return "Recording stopped; finalizing note"
	case domain.ReasonPausedByUser:
		return "Recording paused"
	case domain.ReasonResumedByUser:
		return "Recording resumed"
	case domain.ReasonFinalizing:
		return "Finalizing note..."
	case domain.ReasonNoteReady:
		return "Note ready for review"
	case domain.ReasonRestarted:
		return "Ready for the next visit"
	case domain.ReasonErrorDismissed:
		return "Error dismissed"
	case domain.ReasonMicPermission:
		return "Microphone permission denied"
	case domain.ReasonMicAbsent:
		return "No microphone found"
	case domain.ReasonCaptureFailed:
		return "Recording failed"
	default:
		return ""
	}
}

// ErrorMessage renders an error code for the host UI.
func ErrorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeMicPermission:
		return "Microphone permission denied"
	case domain.ErrorCodeMicAbsent:
		return "No microphone found"
	case domain.ErrorCodeCapture:
		return "Audio capture failed"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeSynthesis:
		return "Note generation error"
	case domain.ErrorCodePersistence:
		return "Save failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
