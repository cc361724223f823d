package effects

import "math"

// DefaultGainRamp is how long a gain change takes to complete, in seconds.
const DefaultGainRamp = 0.1

// Gain scales the signal and moves linearly to a new level over a fixed
// ramp instead of jumping, which would click.
type Gain struct {
	current float64
	target  float64
	step    float64
	frames  int // remaining ramp frames
	ramp    int // frames per full ramp
}

// NewGain creates a gain stage at level with the given ramp time in seconds.
func NewGain(sampleRate int, level, ramp float64) *Gain {
	return &Gain{
		current: level,
		target:  level,
		ramp:    max(int(math.Round(ramp*float64(sampleRate))), 1),
	}
}

// SetTarget starts a ramp from the current level to level.
func (g *Gain) SetTarget(level float64) {
	if math.IsNaN(level) {
		return
	}
	g.target = level
	g.frames = g.ramp
	g.step = (level - g.current) / float64(g.ramp)
}

// SetValue drives the gain target from a modulation source.
func (g *Gain) SetValue(v float64) { g.SetTarget(v) }

// Level returns the current gain.
func (g *Gain) Level() float64 { return g.current }

// Target returns the level the ramp is heading to.
func (g *Gain) Target() float64 { return g.target }

func (g *Gain) Process(l, r float32) (float32, float32) {
	if g.frames > 0 {
		g.frames--
		if g.frames == 0 {
			g.current = g.target
		} else {
			g.current += g.step
		}
	}
	v := float32(g.current)
	return l * v, r * v
}

// Reset jumps to the target level.
func (g *Gain) Reset() {
	g.current = g.target
	g.frames = 0
}
