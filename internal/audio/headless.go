package audio

import (
	"context"
	"io"
	"sync"
	"time"
)

// HeadlessTick is how often a Headless backend pulls audio.
const HeadlessTick = 10 * time.Millisecond

// Headless pulls audio in real time and discards it, or copies it to a
// sink. It drives the source at the same pace a sound card would, which
// makes it useful on machines without an audio device.
type Headless struct {
	sampleRate int
	reader     *StreamReader
	sink       io.Writer

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
	owed    float64 // fractional frames carried between ticks
}

func NewHeadless(sampleRate int, source SampleSource) *Headless {
	return &Headless{sampleRate: sampleRate, reader: NewStreamReader(source)}
}

// SetSink copies every pulled buffer to w. Call before Play.
func (h *Headless) SetSink(w io.Writer) {
	h.mu.Lock()
	h.sink = w
	h.mu.Unlock()
}

func (h *Headless) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})
	go h.run(ctx, h.done, h.sink)
}

func (h *Headless) run(ctx context.Context, done chan struct{}, sink io.Writer) {
	defer close(done)
	ticker := time.NewTicker(HeadlessTick)
	defer ticker.Stop()
	last := time.Now()
	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.mu.Lock()
			h.owed += now.Sub(last).Seconds() * float64(h.sampleRate)
			frames := int(h.owed)
			h.owed -= float64(frames)
			h.mu.Unlock()
			last = now
			buf = h.pull(buf, frames)
			if sink != nil && len(buf) > 0 {
				if _, err := sink.Write(buf); err != nil {
					return
				}
			}
		}
	}
}

func (h *Headless) pull(buf []byte, frames int) []byte {
	n := frames * bytesPerFrame
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	if n > 0 {
		_, _ = h.reader.Read(buf)
	}
	return buf
}

// Pull renders frames synchronously, as if that much time had passed.
func (h *Headless) Pull(frames int) []byte {
	return h.pull(nil, frames)
}

func (h *Headless) Pause() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Position reports the frames pulled so far; nothing is buffered.
func (h *Headless) Position() time.Duration {
	return framesToDuration(h.reader.Frames(), h.sampleRate)
}

func (h *Headless) Latency() time.Duration { return 0 }

func (h *Headless) Close() error {
	h.Pause()
	return h.reader.Close()
}
