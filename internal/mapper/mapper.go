// Package mapper turns a normalized driver position into an audio parameter
// value by evaluating a curve over its domain window.
package mapper

import (
	"math"

	"github.com/cbegin/graphsynth-go/internal/domain"
	"github.com/cbegin/graphsynth-go/internal/function"
)

// Mode selects which audio parameter a curve drives.
type Mode int

const (
	// ModeFrequency maps y to an equal-tempered oscillator pitch.
	ModeFrequency Mode = iota
	// ModeCutoff rescales y linearly into a filter cutoff band.
	ModeCutoff
	// ModeRing rescales y exponentially into a ring-modulator frequency.
	ModeRing
)

func (m Mode) String() string {
	switch m {
	case ModeFrequency:
		return "frequency"
	case ModeCutoff:
		return "cutoff"
	case ModeRing:
		return "ring"
	}
	return "unknown"
}

const (
	// Silent marks a pitch that falls outside the playable range.
	Silent = 0.0
	// FallbackFrequency is used when a curve evaluates to a non-finite value.
	FallbackFrequency = 440.0
	// NoRing leaves the ring modulator's carrier at DC.
	NoRing = 0.0
)

// Band is a closed output range in Hz.
type Band struct {
	Min float64
	Max float64
}

var (
	CutoffBand     = Band{Min: 200, Max: 4000}
	PercussiveBand = Band{Min: 500, Max: 1000}
	// PercussiveRamp is stretched across the curve before clamping to
	// PercussiveBand, so the lower part of the sweep holds at 500 Hz.
	PercussiveRamp = Band{Min: 200, Max: 700}
	RingBand       = Band{Min: 1, Max: 2000}
)

// Mid is the arithmetic midpoint of the band.
func (b Band) Mid() float64 {
	return (b.Min + b.Max) / 2
}

// Clamp limits v to the band.
func (b Band) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Config describes one mapping.
type Config struct {
	Mode Mode
	// Band is the output range for ModeCutoff and ModeRing. Zero selects the
	// mode's default.
	Band Band
	// Ramp is the cutoff range the curve is rescaled into before it is
	// clamped to Band. Zero means Band.
	Ramp Band
	// ToEdge traverses from the window start to the right viewport edge
	// instead of to the window end; positions past the window end are silent.
	ToEdge bool
}

// Mapper evaluates a resolved function along its window.
type Mapper struct {
	fn      function.Function
	window  domain.Window
	cfg     Config
	pole    float64
	hasPole bool
}

// New builds a mapper for fn over window w.
func New(fn function.Function, w domain.Window, cfg Config) *Mapper {
	if cfg.Band == (Band{}) {
		switch cfg.Mode {
		case ModeCutoff:
			cfg.Band = CutoffBand
		case ModeRing:
			cfg.Band = RingBand
		}
	}
	pole, ok := fn.Family.Pole()
	return &Mapper{fn: fn, window: w, cfg: cfg, pole: pole, hasPole: ok}
}

// Config returns the mapping configuration with defaults filled in.
func (m *Mapper) Config() Config {
	return m.cfg
}

// Position converts a driver value x in [-1, 1] into a domain position t.
// x is clamped first.
func (m *Mapper) Position(x float64) float64 {
	x = clampUnit(x)
	end := m.window.End
	if m.cfg.ToEdge {
		end = function.ViewRight
	}
	return (x+1)/2*(end-m.window.Start) + m.window.Start
}

// Map returns the parameter value for driver position x.
func (m *Mapper) Map(x float64) float64 {
	t := m.Position(x)
	switch m.cfg.Mode {
	case ModeCutoff:
		return m.cutoff(t)
	case ModeRing:
		return m.ring(t)
	default:
		return m.frequency(t)
	}
}

// Point returns the domain position for driver position x and the curve's
// value there. ok is false when the curve has no finite value at that
// position.
func (m *Mapper) Point(x float64) (t, y float64, ok bool) {
	t = m.Position(x)
	y, ok = m.eval(t)
	return t, y, ok
}

// eval evaluates at t unless t sits on the family's pole.
func (m *Mapper) eval(t float64) (float64, bool) {
	if m.hasPole && t == m.pole {
		return math.NaN(), false
	}
	y := m.fn.Eval(t)
	return y, finite(y)
}

func (m *Mapper) frequency(t float64) float64 {
	if m.cfg.ToEdge && t > m.window.End {
		return Silent
	}
	y, ok := m.eval(t)
	if !ok {
		return FallbackFrequency
	}
	if y < function.ViewBottom || y > function.ViewTop {
		return Silent
	}
	return YToFrequency(y)
}

// endpoints returns the curve's range over the window, ordered.
func (m *Mapper) endpoints() (lo, hi float64, ok bool) {
	a, okA := m.eval(m.window.Start)
	b, okB := m.eval(m.window.End)
	if !okA || !okB {
		return 0, 0, false
	}
	return math.Min(a, b), math.Max(a, b), true
}

func (m *Mapper) cutoff(t float64) float64 {
	band := m.cfg.Band
	y, ok := m.eval(t)
	lo, hi, okEnds := m.endpoints()
	if !ok || !okEnds || lo == hi {
		return band.Mid()
	}
	ramp := m.cfg.Ramp
	if ramp == (Band{}) {
		ramp = band
	}
	v := (y-lo)/(hi-lo)*(ramp.Max-ramp.Min) + ramp.Min
	return band.Clamp(v)
}

func (m *Mapper) ring(t float64) float64 {
	if m.cfg.ToEdge && t > m.window.End {
		return NoRing
	}
	y, ok := m.eval(t)
	lo, hi, okEnds := m.endpoints()
	if !ok || !okEnds || lo == hi {
		return NoRing
	}
	n := (y - lo) / (hi - lo)
	band := m.cfg.Band
	return band.Clamp(band.Min * math.Pow(band.Max/band.Min, n))
}

// YToFrequency treats y as a semitone offset from MIDI note 60.
func YToFrequency(y float64) float64 {
	return 440 * math.Pow(2, (y+60-69)/12)
}

func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(-1, math.Min(1, x))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
