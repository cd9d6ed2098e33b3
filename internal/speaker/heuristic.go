package speaker

import (
	"regexp"

	"medscribe/internal/domain"
)

// Lexical patterns associated with clinician speech. Best effort: the
// host may flip the label on any entry, so misses are cheap.
var clinicianPatterns = []*regexp.Regexp{
	// Prescribing language.
	regexp.MustCompile(`(?i)\b(?:let'?s start you on|i'?m (?:going to|gonna) (?:prescribe|start|order)|i'?ll (?:prescribe|order|send in|write))\b`),
	regexp.MustCompile(`(?i)\b(?:prescription|refill|pharmacy)\b`),
	// Dosage and frequency phrasing.
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|ml|units?)\b`),
	regexp.MustCompile(`(?i)\b(?:once|twice|three times|four times)\s(?:a|per)\s(?:day|week)\b`),
	regexp.MustCompile(`(?i)\b(?:bid|tid|qid|prn|q\d+h)\b`),
	// Exam and assessment vocabulary.
	regexp.MustCompile(`(?i)\b(?:on exam|auscultation|palpation|your (?:labs|blood pressure|results)|vitals|differential)\b`),
	regexp.MustCompile(`(?i)\b(?:take a deep breath|say ah|any allergies)\b`),
	// First-person clinical decision phrasing.
	regexp.MustCompile(`(?i)\b(?:my assessment|i (?:recommend|suggest|want you to|'?d like you to)|we'?ll (?:order|schedule|follow up|check))\b`),
	regexp.MustCompile(`(?i)\b(?:follow up in|come back in|referral|refer you)\b`),
}

// Classify attributes one utterance to the clinician or the patient.
// Pure function; any match on clinician-associated phrasing wins.
func Classify(text string) domain.Speaker {
	for _, pattern := range clinicianPatterns {
		if pattern.MatchString(text) {
			return domain.SpeakerClinician
		}
	}
	return domain.SpeakerPatient
}
