package function

import (
	"fmt"
	"math"
)

// Epsilon stands in for log(0) and the left edge of the log domain. It is the
// gap between 1 and the next float64.
const Epsilon = 2.220446049250313e-16

// Params are the stretch/shift transform applied to a family's base shape.
type Params struct {
	Scale  float64
	XShift float64
	YShift float64
}

// Validate rejects parameters that can never be admitted to the core.
func (p Params) Validate() error {
	if p.Scale == 0 {
		return ErrZeroScale
	}
	for _, v := range []float64{p.Scale, p.XShift, p.YShift} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite parameter %v", v)
		}
	}
	return nil
}

// Func evaluates a resolved function at t.
type Func func(t float64) float64

// Function is a family bound to its parameters.
type Function struct {
	Family Family
	Params Params
	Eval   Func
}

// Resolve binds family f to p.
func Resolve(f Family, p Params) (Function, error) {
	if !f.Valid() {
		return Function{}, fmt.Errorf("%w: %v", ErrUnknownFamily, f)
	}
	if err := p.Validate(); err != nil {
		return Function{}, err
	}
	return Function{Family: f, Params: p, Eval: evaluator(f, p)}, nil
}

// Timing returns the tempo-dependent schedule for fn over [xStart, xEnd].
func (fn Function) Timing(xStart, xEnd, bpm float64) Timing {
	return TimingFor(fn.Family, fn.Params, xStart, xEnd, bpm)
}

// evaluator returns a·g(t)+k for the family's base shape g. The x-shift is
// applied by the domain window, not here; reciprocal and cube root carry no
// y-shift.
func evaluator(f Family, p Params) Func {
	a, k := p.Scale, p.YShift
	switch f {
	case Quadratic:
		return func(t float64) float64 { return a*t*t + k }
	case Cubic:
		return func(t float64) float64 { return a*t*t*t + k }
	case AbsoluteValue:
		return func(t float64) float64 { return a*math.Abs(t) + k }
	case Logarithm:
		return func(t float64) float64 {
			if t <= 0 {
				return a*Epsilon + k
			}
			return a*math.Log(t) + k
		}
	case Exponential:
		return func(t float64) float64 { return a*math.Exp(t) + k }
	case PowerOfTwo:
		return func(t float64) float64 { return a*math.Exp2(t) + k }
	case Reciprocal:
		return func(t float64) float64 { return a / t }
	case SquareRoot:
		return func(t float64) float64 {
			if t < 0 {
				return k
			}
			return a*math.Sqrt(t) + k
		}
	case CubeRoot:
		return func(t float64) float64 { return a * math.Cbrt(t) }
	}
	return func(t float64) float64 { return t }
}
