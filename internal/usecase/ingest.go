package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medscribe/internal/domain"
	"medscribe/internal/ports"
	"medscribe/internal/speaker"
)

// minUsefulTextLen filters recognizer noise such as lone punctuation.
const minUsefulTextLen = 3

// ingestTick drains the clip buffer, transcribes the clip and appends
// the recognized entry. Transcription failures drop the clip silently:
// the next cadence captures fresh audio, losing at most one interval.
func (c *EncounterController) ingestTick(ctx context.Context, enc *encounter, final bool) {
	c.mu.Lock()
	if c.enc != enc || (!final && c.state != domain.EncounterStateListening) {
		c.mu.Unlock()
		return
	}
	pcm := enc.buffer.Drain()
	if len(pcm) == 0 || len(pcm) < c.cfg.MinClipBytes {
		if len(pcm) > 0 {
			c.metrics.ClipsDiscardedSilence.Inc()
		}
		c.mu.Unlock()
		return
	}
	seq := enc.nextSeq
	enc.nextSeq++
	sessionID := enc.sessionID
	c.mu.Unlock()

	c.metrics.ClipsCaptured.Inc()
	capturedAt := time.Now().UnixMilli()

	clip := ports.Clip{
		PCM:        pcm,
		SampleRate: c.cfg.Audio.SampleRate,
		Channels:   c.cfg.Audio.Channels,
	}

	c.metrics.TranscriptionRequests.Inc()
	text, err := c.stt.Transcribe(ctx, clip)
	if err != nil {
		c.metrics.TranscriptionFailures.Inc()
		return
	}

	text = strings.TrimSpace(text)
	if len(text) < minUsefulTextLen {
		return
	}

	entry := domain.TranscriptEntry{
		ID:           fmt.Sprintf("%s-%06d", sessionID, seq),
		Seq:          seq,
		Speaker:      speaker.Classify(text),
		Text:         text,
		CapturedAtMs: capturedAt,
	}

	c.mu.Lock()
	if c.enc != enc {
		c.mu.Unlock()
		return
	}
	// Entries land in arrival order. Sequence numbers record capture
	// order so out-of-order completions remain traceable.
	enc.transcript = append(enc.transcript, entry)
	snapshot := enc.snapshotTranscript()
	c.mu.Unlock()

	c.metrics.TranscriptEntries.Inc()
	c.events.TranscriptUpdated(snapshot)
	c.requestSave()
}
