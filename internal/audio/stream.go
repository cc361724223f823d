package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

// SampleSource fills interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the float32 little-endian byte
// stream audio drivers pull from.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	frames atomic.Int64 // frames handed to the driver so far
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, v := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	r.frames.Add(int64(frames))
	return frames * bytesPerFrame, nil
}

// Frames returns how many frames have been read.
func (r *StreamReader) Frames() int64 {
	return r.frames.Load()
}

func (r *StreamReader) Close() error { return nil }

// stereo float32
const bytesPerFrame = 8
