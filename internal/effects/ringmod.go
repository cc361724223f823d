package effects

import (
	"math"

	"github.com/cbegin/graphsynth-go/internal/lfo"
)

// RingMod multiplies the signal by a cosine carrier. At 0 Hz the carrier
// is cos(0) = 1 and the signal passes through unchanged.
type RingMod struct {
	sampleRate float64
	freq       float64
	carrier    *lfo.LFO
}

// NewRingMod creates a ring modulator with the carrier at freq Hz.
func NewRingMod(sampleRate int, freq float64) *RingMod {
	m := &RingMod{
		sampleRate: float64(sampleRate),
		// a sine a quarter cycle ahead is a cosine
		carrier: lfo.New(0, 90, lfo.WaveSine),
	}
	m.SetFrequency(freq)
	return m
}

// SetFrequency changes the carrier frequency. Non-finite and negative values
// are treated as 0.
func (m *RingMod) SetFrequency(hz float64) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz < 0 {
		hz = 0
	}
	if m.freq == 0 && hz > 0 {
		m.carrier.Reset()
	}
	m.freq = hz
	m.carrier.SetRate(hz)
}

// SetValue drives the carrier frequency from a modulation source.
func (m *RingMod) SetValue(v float64) { m.SetFrequency(v) }

// Frequency returns the carrier frequency in Hz.
func (m *RingMod) Frequency() float64 { return m.freq }

func (m *RingMod) Process(l, r float32) (float32, float32) {
	if m.freq == 0 {
		return l, r
	}
	c := float32(m.carrier.Sample(m.sampleRate))
	return l * c, r * c
}

func (m *RingMod) Reset() {
	m.carrier.Reset()
}
