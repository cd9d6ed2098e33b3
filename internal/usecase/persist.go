package usecase

import (
	"context"
	"time"
	"unicode/utf8"

	"medscribe/internal/domain"
)

// editedSampleLimit bounds the excerpt stored per corrected section.
const editedSampleLimit = 160

// SaveNote commits the working document: it persists the session
// artifact and, when the user changed the narrative relative to the
// last synthesized version, records a style pattern for the clinician.
// Persistence failures are absorbed; the in-memory session stays
// authoritative.
func (c *EncounterController) SaveNote(ctx context.Context) error {
	c.mu.Lock()
	enc := c.enc
	if enc == nil {
		c.mu.Unlock()
		return ErrNoActiveEncounter
	}
	if !enc.hasSynthesized {
		c.mu.Unlock()
		return ErrNoDocument
	}
	enc.editing = false
	working := enc.working.Clone()
	baseline := enc.baseline.Clone()
	// Rebaseline so only edits made after this save produce patterns.
	enc.baseline = working.Clone()
	artifact := c.buildArtifactLocked(enc, c.state, working)
	c.mu.Unlock()

	if err := c.store.UpsertSession(ctx, artifact); err != nil {
		c.metrics.SaveFailures.Inc()
	} else {
		c.metrics.SessionSaves.Inc()
		c.events.SessionSaved(artifact.SessionID, true)
	}

	c.learnStyle(ctx, artifact.Encounter.ClinicianID, baseline, working)
	return nil
}

// autosave persists the finished session exactly once per session.
func (c *EncounterController) autosave(ctx context.Context, enc *encounter) {
	c.mu.Lock()
	if enc.autosaved {
		c.mu.Unlock()
		return
	}
	enc.autosaved = true
	artifact := c.buildArtifactLocked(enc, domain.EncounterStateDone, enc.synthesized.Clone())
	c.mu.Unlock()

	if err := c.store.UpsertSession(ctx, artifact); err != nil {
		c.metrics.SaveFailures.Inc()
		return
	}
	c.metrics.SessionSaves.Inc()
	c.events.SessionSaved(artifact.SessionID, false)
}

// persistRolling is the debounced incremental save fired after
// transcript and document updates.
func (c *EncounterController) persistRolling() {
	c.mu.Lock()
	enc := c.enc
	if enc == nil {
		c.mu.Unlock()
		return
	}
	artifact := c.buildArtifactLocked(enc, c.state, enc.synthesized.Clone())
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.store.UpsertSession(ctx, artifact); err != nil {
		c.metrics.SaveFailures.Inc()
		return
	}
	c.metrics.SessionSaves.Inc()
}

// learnStyle diffs the four narrative sections against the baseline and
// appends a bounded pattern to the clinician's style profile when any
// of them changed.
func (c *EncounterController) learnStyle(ctx context.Context, ownerID string, baseline, edited domain.ClinicalDocument) {
	if edited.NarrativeEquals(baseline) {
		return
	}

	profile, err := c.store.StyleProfile(ctx, ownerID)
	if err != nil {
		c.metrics.SaveFailures.Inc()
		return
	}
	if profile == nil {
		profile = &domain.StyleProfile{OwnerID: ownerID}
	}

	profile.AppendPattern(domain.StylePattern{
		TimestampMs:     time.Now().UnixMilli(),
		OriginalLengths: domain.Lengths(baseline),
		EditedLengths:   domain.Lengths(edited),
		EditedSamples:   sampleEdits(baseline, edited),
	})

	if err := c.store.UpsertStyleProfile(ctx, profile); err != nil {
		c.metrics.SaveFailures.Inc()
		return
	}
	c.metrics.StyleCorrections.Inc()
}

// sampleEdits captures a short excerpt of each changed section.
func sampleEdits(baseline, edited domain.ClinicalDocument) domain.SectionSamples {
	samples := domain.SectionSamples{}
	if edited.Subjective != baseline.Subjective {
		samples.Subjective = truncate(edited.Subjective, editedSampleLimit)
	}
	if edited.Objective != baseline.Objective {
		samples.Objective = truncate(edited.Objective, editedSampleLimit)
	}
	if edited.Assessment != baseline.Assessment {
		samples.Assessment = truncate(edited.Assessment, editedSampleLimit)
	}
	if edited.Plan != baseline.Plan {
		samples.Plan = truncate(edited.Plan, editedSampleLimit)
	}
	return samples
}

// truncate cuts text at limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func (c *EncounterController) buildArtifactLocked(enc *encounter, status domain.EncounterState, doc domain.ClinicalDocument) *domain.ScribeSession {
	return &domain.ScribeSession{
		SessionID:       enc.sessionID,
		Encounter:       enc.ref,
		Transcript:      enc.snapshotTranscript(),
		Document:        doc,
		DurationSeconds: enc.durationSeconds,
		Status:          status,
		UpdatedAtMs:     time.Now().UnixMilli(),
	}
}
