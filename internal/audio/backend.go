package audio

import (
	"fmt"
	"time"
)

// Kind names an output backend.
type Kind string

const (
	KindEbiten   Kind = "ebiten"
	KindOto      Kind = "oto"
	KindHeadless Kind = "headless"
)

// Backend is a running audio output pulling from a SampleSource.
type Backend interface {
	Play()
	Pause()
	// Position is how much audio the listener has actually heard.
	Position() time.Duration
	// Latency is how much audio has been rendered but not yet heard.
	Latency() time.Duration
	Close() error
}

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindEbiten, KindOto, KindHeadless:
		return k, nil
	}
	return "", fmt.Errorf("audio: unknown backend %q", s)
}

// Open starts the named backend paused.
func Open(kind Kind, sampleRate int, source SampleSource) (Backend, error) {
	switch kind {
	case KindEbiten, "":
		return NewPlayer(sampleRate, source)
	case KindOto:
		return NewOtoPlayer(sampleRate, source)
	case KindHeadless:
		return NewHeadless(sampleRate, source), nil
	}
	return nil, fmt.Errorf("audio: unknown backend %q", kind)
}

func framesToDuration(frames int64, sampleRate int) time.Duration {
	if frames < 0 {
		frames = 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
