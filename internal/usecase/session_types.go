package usecase

import (
	"context"

	"medscribe/internal/domain"
	"medscribe/internal/ports"
)

// encounter holds all mutable state for one documented session. Owned
// by the EncounterController; every field below is guarded by the
// controller mutex except buffer, which has its own lock for the pump.
type encounter struct {
	sessionID string
	ref       domain.EncounterRef

	ctx      context.Context
	cancel   context.CancelFunc
	audio    ports.AudioSession
	buffer   *clipBuffer
	pumpDone chan struct{}
	loopDone chan struct{}

	nextSeq    uint64
	transcript []domain.TranscriptEntry

	// Two-slot document arena: synthesized is the last generator output,
	// working is the user-editable copy. While editing, synthesis only
	// replaces synthesized.
	synthesized domain.ClinicalDocument
	working     domain.ClinicalDocument
	// baseline is the comparison copy for style learning: the last
	// synthesized output or, after a manual save, the saved working
	// copy. Only edits made since the baseline produce patterns.
	baseline       domain.ClinicalDocument
	hasSynthesized bool
	editing        bool

	synthBusy       bool
	autosaved       bool
	durationSeconds int
}

func (e *encounter) snapshotTranscript() []domain.TranscriptEntry {
	out := make([]domain.TranscriptEntry, len(e.transcript))
	copy(out, e.transcript)
	return out
}
