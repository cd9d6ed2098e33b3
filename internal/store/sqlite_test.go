package store

import (
	"context"
	"path/filepath"
	"testing"

	"medscribe/internal/domain"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertSessionOverwritesByKey(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	session := &domain.ScribeSession{
		SessionID: "sess-1",
		Encounter: domain.EncounterRef{AppointmentID: "appt-1", PatientID: "pt-1", ClinicianID: "doc-1"},
		Transcript: []domain.TranscriptEntry{
			{ID: "sess-1-000001", Seq: 1, Speaker: domain.SpeakerClinician, Text: "hello"},
		},
		Status: domain.EncounterStateListening,
	}
	if err := s.UpsertSession(ctx, session); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	session.Status = domain.EncounterStateDone
	session.DurationSeconds = 300
	if err := s.UpsertSession(ctx, session); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	stored, err := s.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if stored == nil {
		t.Fatalf("expected stored session")
	}
	if stored.Status != domain.EncounterStateDone || stored.DurationSeconds != 300 {
		t.Fatalf("upsert did not overwrite: %+v", stored)
	}
	if len(stored.Transcript) != 1 || stored.Transcript[0].Text != "hello" {
		t.Fatalf("transcript did not round-trip: %+v", stored.Transcript)
	}
}

func TestStyleProfileUpsertAndLoad(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	missing, err := s.StyleProfile(ctx, "doc-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil profile before first save")
	}

	profile := &domain.StyleProfile{OwnerID: "doc-1"}
	profile.AppendPattern(domain.StylePattern{TimestampMs: 123})
	if err := s.UpsertStyleProfile(ctx, profile); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	profile.AppendPattern(domain.StylePattern{TimestampMs: 456})
	if err := s.UpsertStyleProfile(ctx, profile); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	stored, err := s.StyleProfile(ctx, "doc-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if stored == nil || stored.EditCount != 2 || len(stored.Patterns) != 2 {
		t.Fatalf("unexpected stored profile: %+v", stored)
	}
	if stored.Patterns[1].TimestampMs != 456 {
		t.Fatalf("pattern order not preserved: %+v", stored.Patterns)
	}
}

func TestSessionMissingReturnsNil(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	stored, err := s.Session(context.Background(), "nope")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if stored != nil {
		t.Fatalf("expected nil for missing session")
	}
}
