package audio

import (
	"bytes"
	"fmt"

	wav "github.com/youpy/go-wav"
)

const bitsPerSample = 16

// EncodeWAV wraps raw s16le PCM into a WAV container suitable for a
// one-shot transcription upload.
func EncodeWAV(pcm []byte, sampleRate int, channels int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio clip")
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid clip parameters: rate=%d channels=%d", sampleRate, channels)
	}

	bytesPerFrame := channels * bitsPerSample / 8
	numSamples := uint32(len(pcm) / bytesPerFrame)

	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, numSamples, uint16(channels), uint32(sampleRate), bitsPerSample)
	if _, err := writer.Write(pcm); err != nil {
		return nil, fmt.Errorf("failed to write clip samples: %w", err)
	}
	return buf.Bytes(), nil
}
