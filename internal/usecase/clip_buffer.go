package usecase

import "sync"

// clipBuffer accumulates recorded PCM between ingestion ticks. The pump
// goroutine appends; the ingestion worker drains it into one clip.
type clipBuffer struct {
	mu  sync.Mutex
	pcm []byte
}

func newClipBuffer() *clipBuffer {
	return &clipBuffer{}
}

func (b *clipBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.mu.Lock()
	b.pcm = append(b.pcm, chunk...)
	b.mu.Unlock()
}

// Drain returns all buffered audio and resets the buffer.
func (b *clipBuffer) Drain() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	pcm := b.pcm
	b.pcm = nil
	return pcm
}

func (b *clipBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pcm)
}
