package speaker

import (
	"testing"

	"medscribe/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want domain.Speaker
	}{
		{"dosage phrase", "Let's do 100mg BID with food", domain.SpeakerClinician},
		{"prescribing language", "Let's start you on Macrobid 100mg twice daily", domain.SpeakerClinician},
		{"exam vocabulary", "On exam your lungs are clear, take a deep breath for me", domain.SpeakerClinician},
		{"decision phrasing", "I recommend we check your thyroid and follow up in two weeks", domain.SpeakerClinician},
		{"frequency phrasing", "Take one tablet twice a day for ten days", domain.SpeakerClinician},
		{"plain symptom description", "It hurts when I swallow and I've been really tired", domain.SpeakerPatient},
		{"gratitude", "Okay, thank you", domain.SpeakerPatient},
		{"empty", "", domain.SpeakerPatient},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestSpeakerFlipToggles(t *testing.T) {
	t.Parallel()

	if domain.SpeakerClinician.Flip() != domain.SpeakerPatient {
		t.Fatalf("expected clinician to flip to patient")
	}
	if domain.SpeakerPatient.Flip() != domain.SpeakerClinician {
		t.Fatalf("expected patient to flip to clinician")
	}
}
