package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"medscribe"
	"medscribe/internal/domain"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	app := medscribe.NewApp(&logSink{logger: logger})
	if err := app.Ready(); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.SetEncounter(domain.EncounterRef{
		AppointmentID: os.Getenv("MEDSCRIBE_APPOINTMENT_ID"),
		PatientID:     os.Getenv("MEDSCRIBE_PATIENT_ID"),
		ClinicianID:   os.Getenv("MEDSCRIBE_CLINICIAN_ID"),
	}); err != nil {
		logger.Error("failed to set encounter context", "error", err)
		os.Exit(1)
	}

	if addr := app.MetricsAddr(); addr != "" {
		go func() {
			logger.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, app.MetricsHandler()); err != nil {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	// Hosts without a softphone integration toggle the call-activity
	// signal with SIGUSR1.
	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGUSR1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	logger.Info("ready", "pid", os.Getpid())

	active := false
	for {
		select {
		case <-toggle:
			active = !active
			if err := app.SetCallActive(context.Background(), active); err != nil {
				logger.Error("call signal failed", "active", active, "error", err)
			}
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			if err := app.SetCallActive(context.Background(), false); err != nil {
				logger.Error("final note failed", "error", err)
			}
			return
		}
	}
}

type logSink struct {
	logger *slog.Logger
}

func (s *logSink) EncounterStateChanged(state domain.EncounterState, reason domain.StateReason) {
	s.logger.Info("encounter state changed",
		"state", string(state),
		"reason", string(reason),
		"message", medscribe.ReasonMessage(reason),
	)
}

func (s *logSink) TranscriptUpdated(entries []domain.TranscriptEntry) {
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	s.logger.Info("transcript updated",
		"entries", len(entries),
		"speaker", string(last.Speaker),
		"text", last.Text,
	)
}

func (s *logSink) DocumentUpdated(doc domain.ClinicalDocument) {
	lengths := domain.Lengths(doc)
	s.logger.Info("note updated",
		"subjectiveChars", lengths.Subjective,
		"objectiveChars", lengths.Objective,
		"assessmentChars", lengths.Assessment,
		"planChars", lengths.Plan,
	)
}

func (s *logSink) DiagnosisCodesUpdated(codes []string) {
	s.logger.Info("diagnosis codes updated", "codes", codes)
}

func (s *logSink) SessionSaved(sessionID string, manual bool) {
	s.logger.Info("session saved", "sessionId", sessionID, "manual", manual)
}

func (s *logSink) EncounterError(code domain.ErrorCode, detail string) {
	s.logger.Error("encounter error",
		"code", string(code),
		"message", medscribe.ErrorMessage(code, detail),
		"detail", detail,
	)
}
