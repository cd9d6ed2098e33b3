package usecase

import (
	"context"
	"io"
	"sync"

	"medscribe/internal/domain"
	"medscribe/internal/ports"
)

type fakeAudioSession struct {
	chunks   chan []byte
	stopOnce sync.Once
}

func newFakeAudioSession() *fakeAudioSession {
	return &fakeAudioSession{chunks: make(chan []byte, 64)}
}

func (s *fakeAudioSession) Read(p []byte) (int, error) {
	chunk, ok := <-s.chunks
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (s *fakeAudioSession) Feed(chunk []byte) {
	s.chunks <- chunk
}

func (s *fakeAudioSession) Stop() error {
	s.stopOnce.Do(func() { close(s.chunks) })
	return nil
}

func (s *fakeAudioSession) Close() error {
	return s.Stop()
}

type fakeCapture struct {
	mu       sync.Mutex
	sessions []*fakeAudioSession
	startErr error
}

func (c *fakeCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startErr != nil {
		return nil, c.startErr
	}
	session := newFakeAudioSession()
	c.sessions = append(c.sessions, session)
	return session, nil
}

func (c *fakeCapture) startCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

type fakeTranscriber struct {
	mu    sync.Mutex
	calls int
	clips []ports.Clip
	fn    func(context.Context, ports.Clip) (string, error)
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, clip ports.Clip) (string, error) {
	t.mu.Lock()
	t.calls++
	t.clips = append(t.clips, clip)
	fn := t.fn
	t.mu.Unlock()

	if fn != nil {
		return fn(ctx, clip)
	}
	return "the patient reports a sore throat", nil
}

func (t *fakeTranscriber) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

type fakeSynthesizer struct {
	mu    sync.Mutex
	calls int
	reqs  []ports.SynthesisRequest
	fn    func(context.Context, ports.SynthesisRequest) (domain.ClinicalDocument, error)
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, req ports.SynthesisRequest) (domain.ClinicalDocument, error) {
	s.mu.Lock()
	s.calls++
	s.reqs = append(s.reqs, req)
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return domain.ClinicalDocument{
		Subjective: "Patient reports a sore throat.",
		Objective:  "Oropharynx erythematous.",
		Assessment: "Acute pharyngitis.",
		Plan:       "Supportive care, fluids, rest.",
	}, nil
}

func (s *fakeSynthesizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeSynthesizer) lastRequest() ports.SynthesisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reqs) == 0 {
		return ports.SynthesisRequest{}
	}
	return s.reqs[len(s.reqs)-1]
}

type fakeStore struct {
	mu               sync.Mutex
	sessions         map[string]*domain.ScribeSession
	sessionUpserts   int
	profiles         map[string]*domain.StyleProfile
	upsertSessionErr error
	profileReadErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]*domain.ScribeSession),
		profiles: make(map[string]*domain.StyleProfile),
	}
}

func (s *fakeStore) UpsertSession(_ context.Context, session *domain.ScribeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertSessionErr != nil {
		return s.upsertSessionErr
	}
	s.sessionUpserts++
	s.sessions[session.SessionID] = session
	return nil
}

func (s *fakeStore) UpsertStyleProfile(_ context.Context, profile *domain.StyleProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.OwnerID] = profile
	return nil
}

func (s *fakeStore) StyleProfile(_ context.Context, ownerID string) (*domain.StyleProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileReadErr != nil {
		return nil, s.profileReadErr
	}
	profile, ok := s.profiles[ownerID]
	if !ok {
		return nil, nil
	}
	clone := *profile
	clone.Patterns = append([]domain.StylePattern(nil), profile.Patterns...)
	return &clone, nil
}

func (s *fakeStore) session(id string) *domain.ScribeSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *fakeStore) profile(ownerID string) *domain.StyleProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[ownerID]
}

type stateEvent struct {
	state  domain.EncounterState
	reason domain.StateReason
}

type saveEvent struct {
	sessionID string
	manual    bool
}

type errorEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeSink struct {
	mu          sync.Mutex
	states      []stateEvent
	transcripts [][]domain.TranscriptEntry
	docs        []domain.ClinicalDocument
	codes       [][]string
	saves       []saveEvent
	errors      []errorEvent
}

func (s *fakeSink) EncounterStateChanged(state domain.EncounterState, reason domain.StateReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, stateEvent{state: state, reason: reason})
}

func (s *fakeSink) TranscriptUpdated(entries []domain.TranscriptEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = append(s.transcripts, entries)
}

func (s *fakeSink) DocumentUpdated(doc domain.ClinicalDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

func (s *fakeSink) DiagnosisCodesUpdated(codes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, codes)
}

func (s *fakeSink) SessionSaved(sessionID string, manual bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, saveEvent{sessionID: sessionID, manual: manual})
}

func (s *fakeSink) EncounterError(code domain.ErrorCode, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errorEvent{code: code, detail: detail})
}

func (s *fakeSink) stateHistory() []stateEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stateEvent(nil), s.states...)
}

func (s *fakeSink) saveHistory() []saveEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]saveEvent(nil), s.saves...)
}

func (s *fakeSink) errorHistory() []errorEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]errorEvent(nil), s.errors...)
}
