package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"
)

type rampSource struct {
	mu    sync.Mutex
	next  float32
	calls int
}

func (s *rampSource) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for i := range dst {
		dst[i] = s.next
		s.next += 0.25
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	p := make([]byte, 2*bytesPerFrame+3)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2*bytesPerFrame {
		t.Fatalf("n=%d want %d", n, 2*bytesPerFrame)
	}
	for i, want := range []float32{0, 0.25, 0.5, 0.75} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != want {
			t.Fatalf("sample %d = %v want %v", i, got, want)
		}
	}
	if r.Frames() != 2 {
		t.Fatalf("Frames=%d want 2", r.Frames())
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	n, err := r.Read(make([]byte, bytesPerFrame-1))
	if n != 0 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if src.calls != 0 {
		t.Fatalf("source called for empty read")
	}
}

func TestHeadlessPullAdvancesPosition(t *testing.T) {
	h := NewHeadless(1000, &rampSource{})
	buf := h.Pull(250)
	if len(buf) != 250*bytesPerFrame {
		t.Fatalf("len=%d", len(buf))
	}
	if got := h.Position(); got != 250*time.Millisecond {
		t.Fatalf("Position=%v want 250ms", got)
	}
	if h.Latency() != 0 {
		t.Fatalf("headless latency should be zero")
	}
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Len()
}

func TestHeadlessPlayPullsInRealTime(t *testing.T) {
	h := NewHeadless(8000, &rampSource{})
	sink := &lockedBuffer{}
	h.SetSink(sink)
	h.Play()
	h.Play() // second Play is a no-op
	deadline := time.Now().Add(2 * time.Second)
	for h.Position() < 20*time.Millisecond && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	pos := h.Position()
	if pos < 20*time.Millisecond {
		t.Fatalf("headless did not advance: %v", pos)
	}
	if int64(sink.Len()) != h.reader.Frames()*bytesPerFrame {
		t.Fatalf("sink has %d bytes, reader produced %d frames", sink.Len(), h.reader.Frames())
	}
	time.Sleep(3 * HeadlessTick)
	if h.Position() != pos {
		t.Fatalf("position moved after Close")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"ebiten", "oto", "headless"} {
		if k, err := ParseKind(s); err != nil || string(k) != s {
			t.Fatalf("ParseKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := ParseKind("alsa"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestOpenHeadless(t *testing.T) {
	b, err := Open(KindHeadless, 1000, &rampSource{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*Headless); !ok {
		t.Fatalf("Open returned %T", b)
	}
}
