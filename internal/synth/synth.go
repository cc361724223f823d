// Package synth provides the monophonic instruments that sound an
// equation's note schedule.
package synth

import (
	"fmt"
	"math"
)

const twoPi = 2 * math.Pi

// Kind selects an instrument.
type Kind int

const (
	KindFM Kind = iota
	KindMembrane
	KindSnare
	KindPad
)

var kindNames = map[Kind]string{
	KindFM:       "fm",
	KindMembrane: "membrane",
	KindSnare:    "snare",
	KindPad:      "pad",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Instrument is a single-voice sound source. NoteOn restarts the voice at a
// frequency, SetFrequency retunes it while it sounds. A frequency of 0 or
// less renders silence.
type Instrument interface {
	NoteOn(freq float64)
	NoteOff()
	SetFrequency(hz float64)
	Frequency() float64
	// Render produces the next mono sample.
	Render() float32
	// Active reports whether the voice is still audible, release tail
	// included.
	Active() bool
}

// New returns an instrument of the given kind.
func New(kind Kind, sampleRate int) Instrument {
	sr := float64(sampleRate)
	switch kind {
	case KindMembrane:
		return NewMembrane(sr)
	case KindSnare:
		return NewSnare(sr)
	case KindPad:
		return NewPad(sr)
	default:
		return NewFM(sr)
	}
}

// FM is a two-operator FM synth: a sine modulator at harmonicity times the
// carrier frequency bends the phase of a sawtooth carrier.
type FM struct {
	sampleRate  float64
	freq        float64
	Harmonicity float64
	Index       float64 // modulation index in radians
	carrier     float64 // phases in radians
	modulator   float64
	env         Envelope
}

// NewFM returns an FM synth with a soft attack and a one-second release.
func NewFM(sampleRate float64) *FM {
	return &FM{
		sampleRate:  sampleRate,
		Harmonicity: 5,
		Index:       2,
		env:         Envelope{Attack: 0.1, Decay: 0.01, Sustain: 1, Release: 1},
	}
}

func (s *FM) NoteOn(freq float64) {
	s.freq = freq
	s.env.Gate(true)
}

func (s *FM) NoteOff()                { s.env.Gate(false) }
func (s *FM) SetFrequency(hz float64) { s.freq = hz }
func (s *FM) Frequency() float64      { return s.freq }
func (s *FM) Active() bool            { return s.env.Active() }

func (s *FM) Render() float32 {
	level := s.env.Next(s.sampleRate)
	if s.freq <= 0 || math.IsNaN(s.freq) || level == 0 {
		return 0
	}
	mod := math.Sin(s.modulator) * s.Index
	out := saw(s.carrier+mod) * level
	s.carrier = advance(s.carrier, s.freq, s.sampleRate)
	s.modulator = advance(s.modulator, s.freq*s.Harmonicity, s.sampleRate)
	return float32(out * 0.5)
}

// Membrane is a kick drum: a sine whose pitch drops exponentially from
// Octaves times the note frequency down to the note over PitchDecay.
type Membrane struct {
	sampleRate float64
	freq       float64
	Octaves    float64
	PitchDecay float64 // seconds
	phase      float64
	elapsed    int // samples since NoteOn
	env        Envelope
}

// NewMembrane returns a kick with a short pitch sweep and a long release.
func NewMembrane(sampleRate float64) *Membrane {
	return &Membrane{
		sampleRate: sampleRate,
		Octaves:    10,
		PitchDecay: 0.05,
		env:        Envelope{Attack: 0.001, Decay: 0.4, Sustain: 0.01, Release: 1.4},
	}
}

func (m *Membrane) NoteOn(freq float64) {
	m.freq = freq
	m.elapsed = 0
	m.phase = 0
	m.env.Gate(true)
}

func (m *Membrane) NoteOff()                { m.env.Gate(false) }
func (m *Membrane) SetFrequency(hz float64) { m.freq = hz }
func (m *Membrane) Frequency() float64      { return m.freq }
func (m *Membrane) Active() bool            { return m.env.Active() }

// sweep returns the instantaneous frequency t seconds after NoteOn.
func (m *Membrane) sweep(t float64) float64 {
	if t >= m.PitchDecay || m.Octaves <= 1 {
		return m.freq
	}
	return m.freq * math.Pow(m.Octaves, 1-t/m.PitchDecay)
}

func (m *Membrane) Render() float32 {
	level := m.env.Next(m.sampleRate)
	if m.freq <= 0 || level == 0 {
		return 0
	}
	f := m.sweep(float64(m.elapsed) / m.sampleRate)
	m.elapsed++
	out := math.Sin(m.phase) * level
	m.phase = advance(m.phase, f, m.sampleRate)
	return float32(out * 0.8)
}

// Snare mixes a noise burst with a short sine body at the note frequency.
type Snare struct {
	sampleRate float64
	freq       float64
	phase      float64
	lfsr       uint16
	noise      Envelope
	body       Envelope
}

// NewSnare returns a snare with a 0.2 s noise decay.
func NewSnare(sampleRate float64) *Snare {
	return &Snare{
		sampleRate: sampleRate,
		lfsr:       0xACE1,
		noise:      Envelope{Attack: 0.001, Decay: 0.2, Sustain: 0, Release: 0.2},
		body:       Envelope{Attack: 0.001, Decay: 0.08, Sustain: 0, Release: 0.05},
	}
}

func (s *Snare) NoteOn(freq float64) {
	s.freq = freq
	s.phase = 0
	s.noise.Gate(true)
	s.body.Gate(true)
}

func (s *Snare) NoteOff() {
	s.noise.Gate(false)
	s.body.Gate(false)
}

func (s *Snare) SetFrequency(hz float64) { s.freq = hz }
func (s *Snare) Frequency() float64      { return s.freq }
func (s *Snare) Active() bool            { return s.noise.Active() || s.body.Active() }

func (s *Snare) Render() float32 {
	n := s.noise.Next(s.sampleRate)
	b := s.body.Next(s.sampleRate)
	// 16-bit Galois LFSR
	bit := s.lfsr & 1
	s.lfsr >>= 1
	if bit == 1 {
		s.lfsr ^= 0xB400
	}
	out := (float64(s.lfsr)/32767.5 - 1) * n * 0.6
	if s.freq > 0 {
		out += math.Sin(s.phase) * b * 0.4
		s.phase = advance(s.phase, s.freq, s.sampleRate)
	}
	return float32(out)
}

// padDetune is the spread of the pad's three oscillators, in cents.
var padDetune = [3]float64{-7, 0, 7}

// Pad layers three detuned sawtooth oscillators under a slow envelope.
type Pad struct {
	sampleRate float64
	freq       float64
	phases     [3]float64
	ratios     [3]float64
	env        Envelope
}

// NewPad returns a pad with 0.2 s attack and release.
func NewPad(sampleRate float64) *Pad {
	p := &Pad{
		sampleRate: sampleRate,
		env:        Envelope{Attack: 0.2, Decay: 0.1, Sustain: 0.8, Release: 0.2},
	}
	for i, c := range padDetune {
		p.ratios[i] = math.Pow(2, c/1200)
	}
	return p
}

func (p *Pad) NoteOn(freq float64) {
	p.freq = freq
	p.env.Gate(true)
}

func (p *Pad) NoteOff()                { p.env.Gate(false) }
func (p *Pad) SetFrequency(hz float64) { p.freq = hz }
func (p *Pad) Frequency() float64      { return p.freq }
func (p *Pad) Active() bool            { return p.env.Active() }

func (p *Pad) Render() float32 {
	level := p.env.Next(p.sampleRate)
	if p.freq <= 0 || level == 0 {
		return 0
	}
	var out float64
	for i := range p.phases {
		out += saw(p.phases[i])
		p.phases[i] = advance(p.phases[i], p.freq*p.ratios[i], p.sampleRate)
	}
	return float32(out / 3 * level * 0.5)
}

// saw is a rising sawtooth over one 2π period, in [-1, 1).
func saw(phase float64) float64 {
	p := math.Mod(phase, twoPi)
	if p < 0 {
		p += twoPi
	}
	return p/math.Pi - 1
}

func advance(phase, freq, sampleRate float64) float64 {
	phase += twoPi * freq / sampleRate
	if phase >= twoPi {
		phase = math.Mod(phase, twoPi)
	}
	return phase
}
