package usecase

import (
	"context"
	"strings"

	"medscribe/internal/domain"
	"medscribe/internal/ports"
)

// synthesisTick regenerates the clinical document from the full
// transcript. Runs never overlap: if a run is still in flight when the
// next tick fires, the tick is skipped. A failed run keeps the previous
// document untouched.
func (c *EncounterController) synthesisTick(ctx context.Context, enc *encounter, final bool) {
	c.mu.Lock()
	if c.enc != enc || (!final && c.state != domain.EncounterStateListening) {
		c.mu.Unlock()
		return
	}
	if len(enc.transcript) < c.cfg.MinTranscriptEntries {
		c.mu.Unlock()
		return
	}
	if enc.synthBusy {
		c.metrics.SynthesisSkipped.Inc()
		c.mu.Unlock()
		return
	}
	enc.synthBusy = true
	transcript := renderTranscript(enc.transcript, c.cfg.ClinicianLabel, c.cfg.PatientLabel)
	ref := enc.ref
	c.mu.Unlock()

	// Style bias is best-effort: a missing or unreadable profile never
	// blocks synthesis.
	profile, err := c.store.StyleProfile(ctx, ref.ClinicianID)
	if err != nil {
		profile = nil
	}

	doc, synthErr := c.synth.Synthesize(ctx, ports.SynthesisRequest{
		Transcript:     transcript,
		PatientLabel:   c.cfg.PatientLabel,
		ClinicianLabel: c.cfg.ClinicianLabel,
		Encounter:      ref,
		Style:          profile,
	})

	c.mu.Lock()
	enc.synthBusy = false
	if synthErr != nil {
		c.mu.Unlock()
		c.metrics.SynthesisFailures.Inc()
		return
	}
	if c.enc != enc {
		c.mu.Unlock()
		return
	}
	enc.synthesized = doc.Clone()
	enc.baseline = doc.Clone()
	enc.hasSynthesized = true
	if !enc.editing {
		enc.working = doc.Clone()
	}
	codes := append([]string(nil), doc.DiagnosisCodes...)
	c.mu.Unlock()

	c.metrics.SynthesisRuns.Inc()
	c.events.DocumentUpdated(doc.Clone())
	if len(codes) > 0 {
		c.events.DiagnosisCodesUpdated(codes)
	}
	c.requestSave()
}

// renderTranscript formats the dialogue as labeled lines for the
// synthesis prompt.
func renderTranscript(entries []domain.TranscriptEntry, clinicianLabel, patientLabel string) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		label := patientLabel
		if entry.Speaker == domain.SpeakerClinician {
			label = clinicianLabel
		}
		lines = append(lines, label+": "+entry.Text)
	}
	return strings.Join(lines, "\n")
}
