package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"medscribe/internal/domain"
	"medscribe/internal/metrics"
	"medscribe/internal/ports"
)

var (
	ErrNoActiveEncounter = errors.New("no active encounter session")
	ErrNoDocument        = errors.New("no synthesized document yet")
	ErrNotEditing        = errors.New("not in edit mode")
)

// Config controls the capture and documentation cadences.
type Config struct {
	Audio                ports.AudioConfig
	ChunkSize            int
	TranscribeInterval   time.Duration
	SynthesisInterval    time.Duration
	SaveDebounce         time.Duration
	MinClipBytes         int
	MinTranscriptEntries int
	ClinicianLabel       string
	PatientLabel         string
}

// EncounterController is the session state machine. It reacts to the
// external call-activity signal and user actions, owns every timer in
// the pipeline, and drives capture, ingestion, synthesis and
// persistence. No other component starts or stops a timer.
type EncounterController struct {
	capture ports.AudioCapture
	stt     ports.Transcriber
	synth   ports.NoteSynthesizer
	store   ports.SessionStore
	events  ports.EventSink
	metrics *metrics.Metrics
	cfg     Config

	mu            sync.Mutex
	state         domain.EncounterState
	connected     bool
	noAutoRestart bool
	ref           domain.EncounterRef
	enc           *encounter

	scheduleSave func(func())
}

func NewEncounterController(
	capture ports.AudioCapture,
	stt ports.Transcriber,
	synth ports.NoteSynthesizer,
	store ports.SessionStore,
	events ports.EventSink,
	m *metrics.Metrics,
	cfg Config,
) *EncounterController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.TranscribeInterval <= 0 {
		cfg.TranscribeInterval = 5 * time.Second
	}
	if cfg.SynthesisInterval <= 0 {
		cfg.SynthesisInterval = 60 * time.Second
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = 500 * time.Millisecond
	}
	if cfg.MinTranscriptEntries < 1 {
		cfg.MinTranscriptEntries = 1
	}
	if cfg.ClinicianLabel == "" {
		cfg.ClinicianLabel = "Clinician"
	}
	if cfg.PatientLabel == "" {
		cfg.PatientLabel = "Patient"
	}

	return &EncounterController{
		capture:      capture,
		stt:          stt,
		synth:        synth,
		store:        store,
		events:       events,
		metrics:      m,
		cfg:          cfg,
		state:        domain.EncounterStateIdle,
		scheduleSave: debounce.New(cfg.SaveDebounce),
	}
}

// SetEncounter sets the appointment context used for the next session.
func (c *EncounterController) SetEncounter(ref domain.EncounterRef) {
	c.mu.Lock()
	c.ref = ref
	c.mu.Unlock()
}

// SetConnected feeds the external call-activity signal. Changes are
// edge-triggered: a rising edge auto-starts capture unless the user has
// explicitly stopped the session, a falling edge finalizes it.
func (c *EncounterController) SetConnected(ctx context.Context, connected bool) error {
	c.mu.Lock()
	if c.connected == connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = connected
	state := c.state
	noAuto := c.noAutoRestart
	c.mu.Unlock()

	if connected {
		if state == domain.EncounterStateIdle && !noAuto {
			return c.startListening(ctx)
		}
		return nil
	}
	if state == domain.EncounterStateListening || state == domain.EncounterStatePaused {
		return c.finish(ctx, domain.ReasonCallDisconnected)
	}
	return nil
}

// StopEncounter ends the session manually and suppresses auto-restart
// until the next manual restart.
func (c *EncounterController) StopEncounter(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.EncounterStateListening && c.state != domain.EncounterStatePaused {
		c.mu.Unlock()
		return ErrNoActiveEncounter
	}
	c.noAutoRestart = true
	c.mu.Unlock()

	return c.finish(ctx, domain.ReasonStoppedByUser)
}

// Pause releases the microphone while keeping the session alive.
func (c *EncounterController) Pause() error {
	c.mu.Lock()
	if c.state != domain.EncounterStateListening {
		c.mu.Unlock()
		return ErrNoActiveEncounter
	}
	enc := c.enc
	c.state = domain.EncounterStatePaused
	c.mu.Unlock()

	_ = enc.audio.Stop()
	<-enc.pumpDone

	c.events.EncounterStateChanged(domain.EncounterStatePaused, domain.ReasonPausedByUser)
	return nil
}

// Resume re-acquires the microphone after a pause.
func (c *EncounterController) Resume(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.EncounterStatePaused {
		c.mu.Unlock()
		return ErrNoActiveEncounter
	}
	enc := c.enc
	c.mu.Unlock()

	audioSession, err := c.capture.Start(enc.ctx, c.cfg.Audio)
	if err != nil {
		// The session is over; stop the timer loop so it does not
		// outlive the error state.
		enc.cancel()
		c.enterCaptureError(err)
		return err
	}

	c.mu.Lock()
	enc.audio = audioSession
	enc.pumpDone = make(chan struct{})
	c.state = domain.EncounterStateListening
	c.mu.Unlock()

	go c.pumpAudio(enc, audioSession, enc.pumpDone)

	c.events.EncounterStateChanged(domain.EncounterStateListening, domain.ReasonResumedByUser)
	return nil
}

// Restart clears the finished or failed session and re-evaluates the
// external signal.
func (c *EncounterController) Restart(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case domain.EncounterStateListening, domain.EncounterStatePaused, domain.EncounterStateProcessing:
		c.mu.Unlock()
		return fmt.Errorf("cannot restart while a session is active")
	}
	c.enc = nil
	c.noAutoRestart = false
	c.state = domain.EncounterStateIdle
	connected := c.connected
	c.mu.Unlock()

	c.events.EncounterStateChanged(domain.EncounterStateIdle, domain.ReasonRestarted)

	if connected {
		return c.startListening(ctx)
	}
	return nil
}

// DismissError acknowledges a fatal capture error and returns to idle.
func (c *EncounterController) DismissError() error {
	c.mu.Lock()
	if c.state != domain.EncounterStateError {
		c.mu.Unlock()
		return fmt.Errorf("no error to dismiss")
	}
	c.state = domain.EncounterStateIdle
	c.enc = nil
	c.mu.Unlock()

	c.events.EncounterStateChanged(domain.EncounterStateIdle, domain.ReasonErrorDismissed)
	return nil
}

// FlipSpeaker toggles the attribution of a single transcript entry.
func (c *EncounterController) FlipSpeaker(entryID string) error {
	c.mu.Lock()
	if c.enc == nil {
		c.mu.Unlock()
		return ErrNoActiveEncounter
	}
	var snapshot []domain.TranscriptEntry
	found := false
	for i := range c.enc.transcript {
		if c.enc.transcript[i].ID == entryID {
			c.enc.transcript[i].Speaker = c.enc.transcript[i].Speaker.Flip()
			found = true
			break
		}
	}
	if found {
		snapshot = c.enc.snapshotTranscript()
	}
	c.mu.Unlock()

	if !found {
		return fmt.Errorf("unknown transcript entry %q", entryID)
	}
	c.events.TranscriptUpdated(snapshot)
	c.requestSave()
	return nil
}

// Status returns the current pipeline status.
func (c *EncounterController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := domain.Status{
		State:  c.state,
		Active: c.state == domain.EncounterStateListening || c.state == domain.EncounterStatePaused || c.state == domain.EncounterStateProcessing,
	}
	if c.enc != nil {
		status.SessionID = c.enc.sessionID
		status.TranscriptCount = len(c.enc.transcript)
		status.DurationSeconds = c.enc.durationSeconds
		status.Editing = c.enc.editing
	}
	return status
}

// Transcript returns a copy of the current transcript.
func (c *EncounterController) Transcript() []domain.TranscriptEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil {
		return nil
	}
	return c.enc.snapshotTranscript()
}

// SynthesizedDocument returns the read-only generator output.
func (c *EncounterController) SynthesizedDocument() (domain.ClinicalDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil || !c.enc.hasSynthesized {
		return domain.ClinicalDocument{}, false
	}
	return c.enc.synthesized.Clone(), true
}

// WorkingDocument returns the user-editable copy.
func (c *EncounterController) WorkingDocument() (domain.ClinicalDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil || !c.enc.hasSynthesized {
		return domain.ClinicalDocument{}, false
	}
	return c.enc.working.Clone(), true
}

// BeginEdit enters edit mode: from here on synthesis runs only replace
// the synthesized copy, never the working copy.
func (c *EncounterController) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil || !c.enc.hasSynthesized {
		return ErrNoDocument
	}
	c.enc.editing = true
	return nil
}

// UpdateWorkingDocument replaces the working copy with the user's edit.
func (c *EncounterController) UpdateWorkingDocument(doc domain.ClinicalDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil || !c.enc.hasSynthesized {
		return ErrNoDocument
	}
	if !c.enc.editing {
		return ErrNotEditing
	}
	c.enc.working = doc.Clone()
	return nil
}

// CancelEdit discards in-progress edits and re-syncs the working copy.
func (c *EncounterController) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enc == nil {
		return ErrNoActiveEncounter
	}
	c.enc.editing = false
	c.enc.working = c.enc.synthesized.Clone()
	return nil
}

func (c *EncounterController) startListening(ctx context.Context) error {
	sessionCtx, cancel := context.WithCancel(context.Background())

	audioSession, err := c.capture.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		cancel()
		c.enterCaptureError(err)
		return err
	}

	enc := &encounter{
		sessionID: uuid.NewString(),
		ctx:       sessionCtx,
		cancel:    cancel,
		audio:     audioSession,
		buffer:    newClipBuffer(),
		pumpDone:  make(chan struct{}),
		loopDone:  make(chan struct{}),
		nextSeq:   1,
	}

	c.mu.Lock()
	enc.ref = c.ref
	c.enc = enc
	c.state = domain.EncounterStateListening
	c.mu.Unlock()

	go c.pumpAudio(enc, audioSession, enc.pumpDone)
	go c.runTimers(sessionCtx, enc)

	c.events.EncounterStateChanged(domain.EncounterStateListening, domain.ReasonCallConnected)
	return nil
}

// finish runs the listening → processing → done path: tear down timers,
// flush the last clip, await the final synthesis, autosave once.
func (c *EncounterController) finish(ctx context.Context, reason domain.StateReason) error {
	c.mu.Lock()
	if c.enc == nil || (c.state != domain.EncounterStateListening && c.state != domain.EncounterStatePaused) {
		c.mu.Unlock()
		return ErrNoActiveEncounter
	}
	enc := c.enc
	c.state = domain.EncounterStateProcessing
	enc.cancel()
	c.mu.Unlock()

	c.events.EncounterStateChanged(domain.EncounterStateProcessing, reason)

	<-enc.loopDone
	_ = enc.audio.Stop()
	<-enc.pumpDone

	c.ingestTick(ctx, enc, true)
	c.synthesisTick(ctx, enc, true)
	c.autosave(ctx, enc)

	c.mu.Lock()
	c.state = domain.EncounterStateDone
	c.mu.Unlock()

	c.events.EncounterStateChanged(domain.EncounterStateDone, domain.ReasonNoteReady)
	return nil
}

// runTimers interleaves all recurring pipeline work on one goroutine,
// so ticks never overlap each other.
func (c *EncounterController) runTimers(ctx context.Context, enc *encounter) {
	defer close(enc.loopDone)

	transcribe := time.NewTicker(c.cfg.TranscribeInterval)
	defer transcribe.Stop()
	synthesize := time.NewTicker(c.cfg.SynthesisInterval)
	defer synthesize.Stop()
	second := time.NewTicker(time.Second)
	defer second.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-second.C:
			c.mu.Lock()
			if c.enc == enc && c.state == domain.EncounterStateListening {
				enc.durationSeconds++
			}
			c.mu.Unlock()
		case <-transcribe.C:
			c.ingestTick(context.Background(), enc, false)
		case <-synthesize.C:
			c.synthesisTick(context.Background(), enc, false)
		}
	}
}

func (c *EncounterController) pumpAudio(enc *encounter, session ports.AudioSession, done chan struct{}) {
	defer close(done)

	buf := make([]byte, c.cfg.ChunkSize)
	for {
		n, err := session.Read(buf)
		if n > 0 {
			enc.buffer.Append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				c.captureFault(enc, err)
			}
			return
		}
	}
}

// captureFault handles a mid-session recorder failure: fatal to the
// session, recoverable only via manual restart.
func (c *EncounterController) captureFault(enc *encounter, err error) {
	c.mu.Lock()
	if c.enc != enc || c.state != domain.EncounterStateListening {
		c.mu.Unlock()
		return
	}
	c.state = domain.EncounterStateError
	enc.cancel()
	c.mu.Unlock()

	_ = enc.audio.Stop()

	c.events.EncounterStateChanged(domain.EncounterStateError, domain.ReasonCaptureFailed)
	c.events.EncounterError(domain.ErrorCodeCapture, err.Error())
}

func (c *EncounterController) enterCaptureError(err error) {
	var captureErr *domain.CaptureError
	if !errors.As(err, &captureErr) {
		captureErr = &domain.CaptureError{Cause: domain.CaptureCauseOther, Detail: err.Error()}
	}

	c.mu.Lock()
	c.state = domain.EncounterStateError
	c.mu.Unlock()

	c.events.EncounterStateChanged(domain.EncounterStateError, captureErr.StateReason())
	c.events.EncounterError(captureErr.ErrorCode(), captureErr.Detail)
}

func (c *EncounterController) requestSave() {
	c.scheduleSave(c.persistRolling)
}
