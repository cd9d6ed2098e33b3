package medscribe

import (
	"context"
	"errors"
	"testing"

	"medscribe/internal/domain"
)

func TestReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.StateReason]string{
		domain.ReasonCallConnected:    "Call connected; documentation started",
		domain.ReasonCallDisconnected: "Call ended; finalizing note",
		domain.ReasonStoppedByUser:    "Recording stopped; finalizing note",
		domain.ReasonPausedByUser:     "Recording paused",
		domain.ReasonResumedByUser:    "Recording resumed",
		domain.ReasonFinalizing:       "Finalizing note...",
		domain.ReasonNoteReady:        "Note ready for review",
		domain.ReasonRestarted:        "Ready for the next visit",
		domain.ReasonErrorDismissed:   "Error dismissed",
		domain.ReasonMicPermission:    "Microphone permission denied",
		domain.ReasonMicAbsent:        "No microphone found",
		domain.ReasonCaptureFailed:    "Recording failed",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := ReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := ReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:       "Startup failed",
		domain.ErrorCodeMicPermission: "Microphone permission denied",
		domain.ErrorCodeMicAbsent:     "No microphone found",
		domain.ErrorCodeCapture:       "Audio capture failed",
		domain.ErrorCodeTranscription: "Transcription error",
		domain.ErrorCodeSynthesis:     "Note generation error",
		domain.ErrorCodePersistence:   "Save failed",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := ErrorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := ErrorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := ErrorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestStateMessageCoversAllStates(t *testing.T) {
	t.Parallel()

	states := []domain.EncounterState{
		domain.EncounterStateIdle,
		domain.EncounterStateListening,
		domain.EncounterStatePaused,
		domain.EncounterStateProcessing,
		domain.EncounterStateDone,
		domain.EncounterStateError,
	}
	for _, state := range states {
		if stateMessage(state) == "" {
			t.Fatalf("missing message for state %s", state)
		}
	}
}

func TestAppRequiresBoot(t *testing.T) {
	t.Parallel()

	bootErr := errors.New("boot failed")
	app := &App{bootErr: bootErr}

	if err := app.SetCallActive(context.Background(), true); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if err := app.SaveNote(context.Background()); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}

	status := app.Status()
	if status.State != domain.EncounterStateError || status.Message != "boot failed" {
		t.Fatalf("unexpected status: %+v", status)
	}

	uninitialized := &App{}
	if err := uninitialized.Stop(context.Background()); err == nil {
		t.Fatal("expected uninitialized error")
	}
}
