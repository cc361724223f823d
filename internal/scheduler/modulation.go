package scheduler

import (
	"github.com/cbegin/graphsynth-go/internal/lfo"
	"github.com/cbegin/graphsynth-go/internal/mapper"
)

// Param is an audio-rate parameter that accepts a new value every frame.
type Param interface {
	SetValue(v float64)
}

// ParamFunc adapts a function to Param.
type ParamFunc func(v float64)

func (f ParamFunc) SetValue(v float64) { f(v) }

// ModulationChain is driver -> shaper -> parameter. The driver is addressed
// by transport time, so every chain started against the same transport is
// phase-locked to it.
type ModulationChain struct {
	Driver *lfo.LFO
	Shaper *mapper.Table
	Target Param
	origin float64 // transport time at which the driver's phase is PhaseDeg
}

// NewModulationChain wires a driver through a shaper into target.
func NewModulationChain(driver *lfo.LFO, shaper *mapper.Table, target Param, origin float64) *ModulationChain {
	return &ModulationChain{Driver: driver, Shaper: shaper, Target: target, origin: origin}
}

// Restart moves the chain's origin so the driver is back at its starting
// phase at transport time origin.
func (c *ModulationChain) Restart(origin float64) {
	c.origin = origin
}

// Origin returns the transport time at which the driver is at its starting
// phase.
func (c *ModulationChain) Origin() float64 { return c.origin }

// Drive returns the driver position at transport time now.
func (c *ModulationChain) Drive(now float64) float64 {
	return c.Driver.At(now - c.origin)
}

// Apply pushes the shaped value for transport time now into the target and
// returns it.
func (c *ModulationChain) Apply(now float64) float64 {
	v := c.Shaper.Lookup(c.Drive(now))
	c.Target.SetValue(v)
	return v
}
