// Package domain computes the x-range over which a transformed curve stays
// inside the fixed viewport, and the representative point used for pitch.
package domain

import (
	"math"

	"github.com/cbegin/graphsynth-go/internal/function"
)

// Window is the x-range a voice traverses. Start <= End for every window
// Compute reports as ok.
type Window struct {
	Start float64
	End   float64
}

// Width is End-Start.
func (w Window) Width() float64 {
	return w.End - w.Start
}

// Contains reports whether t lies inside the closed window.
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// Compute returns the window for family f under p. ok is false for unknown
// families and for windows that are empty or not finite; no voice may be
// scheduled against such a window.
func Compute(f function.Family, p function.Params) (Window, bool) {
	a, h, k := p.Scale, p.XShift, p.YShift
	top, right := function.ViewTop, function.ViewRight
	var x1, x2 float64
	switch f {
	case function.Quadratic:
		d := math.Sqrt(math.Abs((top - k) / a))
		x1, x2 = -d, d
	case function.Cubic:
		x1 = math.Cbrt((-top - k) / math.Abs(a))
		x2 = math.Cbrt((top - k) / math.Abs(a))
	case function.AbsoluteValue:
		d := math.Abs((top - k) / a)
		x1, x2 = -d, d
	case function.Logarithm:
		x1, x2 = function.Epsilon, right-h
	case function.Exponential:
		threshold := math.Log((top - k) / math.Abs(a))
		x1, x2 = -right-h, math.Min(threshold, right-h)
	case function.PowerOfTwo:
		threshold := math.Log2(top / math.Abs(a))
		x1, x2 = -right-h, math.Min(threshold, right-h)
	case function.Reciprocal, function.CubeRoot:
		x1, x2 = -right-h, right-h
	case function.SquareRoot:
		x1, x2 = 0, right-h
	default:
		return Window{}, false
	}
	w := Window{Start: math.Min(x1, x2), End: math.Max(x1, x2)}
	if !finite(w.Start) || !finite(w.End) || w.End <= w.Start {
		return w, false
	}
	return w, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Point is a position on the plotted curve.
type Point struct {
	X float64
	Y float64
}

// Critical returns the representative point of the curve: its shift.
func Critical(p function.Params) Point {
	return Point{X: p.XShift, Y: p.YShift}
}

// MiddleC is the MIDI number the representative y of 0 maps to (C3).
const MiddleC = 48

// Note returns the chromatic MIDI note for a representative y: y is rounded to
// the nearest integer and must land in [-12, 12].
func Note(y float64) (int, bool) {
	r := math.Round(y)
	if math.IsNaN(r) || r < function.ViewBottom || r > function.ViewTop {
		return 0, false
	}
	return MiddleC + int(r), true
}

// NoteFrequency is the equal-tempered frequency of a MIDI note.
func NoteFrequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}
