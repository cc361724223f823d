package scheduler

import (
	"github.com/cbegin/graphsynth-go/internal/function"
	"github.com/cbegin/graphsynth-go/internal/lfo"
	"github.com/cbegin/graphsynth-go/internal/mapper"
	"github.com/cbegin/graphsynth-go/internal/synth"
)

// Target is the audio parameter a voice's modulation chain drives.
type Target int

const (
	TargetCutoff Target = iota // per-voice low-pass cutoff
	TargetPitch                // instrument frequency
	TargetRing                 // ring modulator carrier frequency
)

func (t Target) String() string {
	switch t {
	case TargetPitch:
		return "pitch"
	case TargetRing:
		return "ring"
	default:
		return "cutoff"
	}
}

// Profile is how a family sounds: which instrument plays its notes and how
// its curve is mapped onto a parameter.
type Profile struct {
	Instrument synth.Kind
	Mapping    mapper.Config
	Target     Target
	Waveform   lfo.Waveform
	// PhaseDeg is the driver phase at the start of every phrase. 180 puts a
	// rising saw at its trough so each sweep runs left to right across the
	// window.
	PhaseDeg float64
}

// ProfileFor returns the sound profile for a family.
func ProfileFor(f function.Family) Profile {
	p := Profile{
		Instrument: synth.KindFM,
		Mapping:    mapper.Config{Mode: mapper.ModeCutoff, Band: mapper.CutoffBand},
		Target:     TargetCutoff,
		Waveform:   lfo.WaveSawtooth,
		PhaseDeg:   180,
	}
	switch f {
	case function.Quadratic:
		p.Instrument = synth.KindMembrane
		p.Mapping.Band = mapper.PercussiveBand
		p.Mapping.Ramp = mapper.PercussiveRamp
	case function.Cubic:
		p.Instrument = synth.KindSnare
	case function.Logarithm, function.PowerOfTwo, function.Reciprocal:
		p.Mapping = mapper.Config{Mode: mapper.ModeFrequency}
		p.Target = TargetPitch
	case function.Exponential:
		p.Instrument = synth.KindPad
		p.Mapping = mapper.Config{Mode: mapper.ModeRing, Band: mapper.RingBand, ToEdge: true}
		p.Target = TargetRing
	}
	return p
}
