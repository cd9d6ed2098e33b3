package domain

// EncounterState models the ambient documentation lifecycle.
type EncounterState string

const (
	EncounterStateIdle       EncounterState = "idle"
	EncounterStateListening  EncounterState = "listening"
	EncounterStatePaused     EncounterState = "paused"
	EncounterStateProcessing EncounterState = "processing"
	EncounterStateDone       EncounterState = "done"
	EncounterStateError      EncounterState = "error"
)

// Terminal reports whether the state only leaves via a manual restart.
func (s EncounterState) Terminal() bool {
	return s == EncounterStateDone || s == EncounterStateError
}

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonCallConnected    StateReason = "call_connected"
	ReasonCallDisconnected StateReason = "call_disconnected"
	ReasonStoppedByUser    StateReason = "stopped_by_user"
	ReasonPausedByUser     StateReason = "paused_by_user"
	ReasonResumedByUser    StateReason = "resumed_by_user"
	ReasonFinalizing       StateReason = "finalizing"
	ReasonNoteReady        StateReason = "note_ready"
	ReasonRestarted        StateReason = "restarted"
	ReasonErrorDismissed   StateReason = "error_dismissed"
	ReasonMicPermission    StateReason = "mic_permission_denied"
	ReasonMicAbsent        StateReason = "mic_absent"
	ReasonCaptureFailed    StateReason = "capture_failed"
)

// ErrorCode identifies non-fatal and fatal pipeline errors.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeMicPermission ErrorCode = "mic_permission"
	ErrorCodeMicAbsent     ErrorCode = "mic_absent"
	ErrorCodeCapture       ErrorCode = "capture"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeSynthesis     ErrorCode = "synthesis"
	ErrorCodePersistence   ErrorCode = "persistence"
)

// Speaker is a closed two-value attribution for transcript utterances.
type Speaker string

const (
	SpeakerClinician Speaker = "clinician"
	SpeakerPatient   Speaker = "patient"
)

// Flip returns the other speaker.
func (s Speaker) Flip() Speaker {
	if s == SpeakerClinician {
		return SpeakerPatient
	}
	return SpeakerClinician
}

// TranscriptEntry is one attributed utterance. Immutable once created
// except for Speaker, which the user may flip.
type TranscriptEntry struct {
	ID           string  `json:"id"`
	Seq          uint64  `json:"seq"`
	Speaker      Speaker `json:"speaker"`
	Text         string  `json:"text"`
	CapturedAtMs int64   `json:"capturedAtMs"`
}

// ClinicalDocument is a structured SOAP note.
type ClinicalDocument struct {
	Subjective          string   `json:"subjective"`
	Objective           string   `json:"objective"`
	Assessment          string   `json:"assessment"`
	Plan                string   `json:"plan"`
	DiagnosisCodes      []string `json:"diagnosisCodes"`
	PatientInstructions string   `json:"patientInstructions"`
}

// Clone returns a deep copy safe for independent mutation.
func (d ClinicalDocument) Clone() ClinicalDocument {
	out := d
	if d.DiagnosisCodes != nil {
		out.DiagnosisCodes = append([]string(nil), d.DiagnosisCodes...)
	}
	return out
}

// NarrativeEquals compares the four narrative sections, ignoring codes
// and instructions which the user does not author by hand.
func (d ClinicalDocument) NarrativeEquals(other ClinicalDocument) bool {
	return d.Subjective == other.Subjective &&
		d.Objective == other.Objective &&
		d.Assessment == other.Assessment &&
		d.Plan == other.Plan
}

// Empty reports whether no synthesis has populated the document yet.
func (d ClinicalDocument) Empty() bool {
	return d.Subjective == "" && d.Objective == "" && d.Assessment == "" &&
		d.Plan == "" && len(d.DiagnosisCodes) == 0 && d.PatientInstructions == ""
}

// EncounterRef identifies the appointment being documented.
type EncounterRef struct {
	AppointmentID string `json:"appointmentId"`
	PatientID     string `json:"patientId"`
	ClinicianID   string `json:"clinicianId"`
}

// ScribeSession is the persisted session artifact. Upserted by session
// id on every save; never deleted by this pipeline.
type ScribeSession struct {
	SessionID       string            `json:"sessionId"`
	Encounter       EncounterRef      `json:"encounter"`
	Transcript      []TranscriptEntry `json:"transcript"`
	Document        ClinicalDocument  `json:"document"`
	DurationSeconds int               `json:"durationSeconds"`
	Status          EncounterState    `json:"status"`
	UpdatedAtMs     int64             `json:"updatedAtMs"`
}

// SectionLengths records per-section character counts of a note.
type SectionLengths struct {
	Subjective int `json:"subjective"`
	Objective  int `json:"objective"`
	Assessment int `json:"assessment"`
	Plan       int `json:"plan"`
}

// SectionSamples holds truncated excerpts of edited narrative text.
type SectionSamples struct {
	Subjective string `json:"subjective,omitempty"`
	Objective  string `json:"objective,omitempty"`
	Assessment string `json:"assessment,omitempty"`
	Plan       string `json:"plan,omitempty"`
}

// StylePattern captures one manual-edit correction.
type StylePattern struct {
	TimestampMs     int64          `json:"timestampMs"`
	OriginalLengths SectionLengths `json:"originalSectionLengths"`
	EditedLengths   SectionLengths `json:"editedSectionLengths"`
	EditedSamples   SectionSamples `json:"editedSectionSamples"`
}

// MaxStylePatterns bounds the retained pattern history per provider.
const MaxStylePatterns = 10

// StyleProfile accumulates a provider's edit corrections. Read before
// each synthesis call to bias generation toward the provider's style.
type StyleProfile struct {
	OwnerID   string         `json:"ownerId"`
	EditCount int            `json:"editCount"`
	Patterns  []StylePattern `json:"patterns"`
}

// AppendPattern records one correction, dropping the oldest beyond the cap.
func (p *StyleProfile) AppendPattern(pattern StylePattern) {
	p.EditCount++
	p.Patterns = append(p.Patterns, pattern)
	if len(p.Patterns) > MaxStylePatterns {
		p.Patterns = p.Patterns[len(p.Patterns)-MaxStylePatterns:]
	}
}

// Lengths measures the four narrative sections of a document.
func Lengths(d ClinicalDocument) SectionLengths {
	return SectionLengths{
		Subjective: len(d.Subjective),
		Objective:  len(d.Objective),
		Assessment: len(d.Assessment),
		Plan:       len(d.Plan),
	}
}

// Status summarizes the current pipeline status for the host.
type Status struct {
	State           EncounterState `json:"state"`
	Active          bool           `json:"active"`
	SessionID       string         `json:"sessionId,omitempty"`
	TranscriptCount int            `json:"transcriptCount"`
	DurationSeconds int            `json:"durationSeconds"`
	Editing         bool           `json:"editing"`
	Message         string         `json:"message,omitempty"`
}
