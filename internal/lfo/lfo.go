package lfo

import "math"

// Waveform selects the LFO shape.
type Waveform int

const (
	WaveSawtooth Waveform = iota // rising ramp
	WaveTriangle
	WaveSquare
	WaveSine
)

// LFO is a low-frequency oscillator producing values in [-1, +1]. It can be
// addressed by elapsed time (At), which keeps it phase-locked to an external
// clock, or advanced one sample at a time (Sample).
type LFO struct {
	rateHz   float64 // oscillation rate in Hz
	offset   float64 // starting phase as a fraction of a cycle [0, 1)
	waveform Waveform
	phase    float64 // running phase for Sample [0, 1)
}

// New returns an LFO at rateHz starting at phaseDeg degrees.
func New(rateHz, phaseDeg float64, waveform Waveform) *LFO {
	l := &LFO{}
	l.Set(rateHz, phaseDeg, waveform)
	return l
}

// Set configures the LFO parameters and rewinds it to its starting phase.
func (l *LFO) Set(rateHz, phaseDeg float64, waveform Waveform) {
	l.rateHz = rateHz
	if waveform < WaveSawtooth || waveform > WaveSine {
		waveform = WaveSawtooth
	}
	l.waveform = waveform
	l.offset = wrap(phaseDeg / 360)
	l.phase = l.offset
}

// SetRate changes the rate without touching the phase.
func (l *LFO) SetRate(rateHz float64) {
	l.rateHz = rateHz
}

// Rate returns the oscillation rate in Hz.
func (l *LFO) Rate() float64 {
	return l.rateHz
}

// PhaseDegrees returns the starting phase in [0, 360).
func (l *LFO) PhaseDegrees() float64 {
	return l.offset * 360
}

// At returns the value elapsed seconds after the LFO was started. Before it
// starts (elapsed < 0) the LFO rests at 0, the middle of its range.
func (l *LFO) At(elapsed float64) float64 {
	if elapsed < 0 || l.rateHz == 0 {
		return 0
	}
	return shape(l.waveform, wrap(l.offset+l.rateHz*elapsed))
}

// Sample returns the current value and advances the running phase by one
// sample. Returns 0 if rate or sample rate is zero.
func (l *LFO) Sample(sampleRate float64) float64 {
	if l.rateHz == 0 || sampleRate == 0 {
		return 0
	}
	v := shape(l.waveform, l.phase)
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1.0 {
		l.phase -= 1.0
	}
	for l.phase < 0 {
		l.phase += 1.0
	}
	return v
}

// Reset rewinds the running phase to the starting phase.
func (l *LFO) Reset() {
	l.phase = l.offset
}

// shape evaluates a waveform at phase p in [0, 1). Phase 0 sits at the
// midpoint of a rising edge for every shape, so a half-cycle offset
// starts the sawtooth at its trough.
func shape(w Waveform, p float64) float64 {
	switch w {
	case WaveTriangle:
		// rises 0 -> 1 over the first quarter, falls to -1, returns to 0
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	case WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case WaveSine:
		return math.Sin(2 * math.Pi * p)
	default:
		return 2*wrap(p+0.5) - 1
	}
}

func wrap(p float64) float64 {
	p -= math.Floor(p)
	if p >= 1 {
		p = 0
	}
	return p
}
