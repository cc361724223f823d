package function

import "math"

const (
	// ViewRight is the right edge of the fixed viewport; ViewLeft its mirror.
	ViewRight = 16.0
	ViewLeft  = -16.0
	// ViewTop bounds the curve vertically; ViewBottom its mirror.
	ViewTop    = 12.0
	ViewBottom = -12.0

	// PhraseBeats is the length of one musical phrase: 8 measures of 4 beats.
	PhraseBeats = 32.0
)

// Timing is the per-family schedule derived from tempo, in seconds and Hz.
type Timing struct {
	LoopDuration float64 // how long each phrase's note and sweep hold
	StartOffset  float64 // transport time of the first phrase
	DriverRate   float64 // periodic driver frequency
}

// Valid reports whether every field is finite and the loop has a length.
func (t Timing) Valid() bool {
	for _, v := range []float64{t.LoopDuration, t.StartOffset, t.DriverRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return t.LoopDuration > 0 && t.DriverRate > 0
}

// Beat is the length of one beat in seconds.
func Beat(bpm float64) float64 {
	return 60 / bpm
}

// Phrase is the length of one phrase in seconds.
func Phrase(bpm float64) float64 {
	return PhraseBeats * Beat(bpm)
}

// TimingFor computes the schedule table: every duration and offset is a
// multiple of one beat so each phrase closes inside 8 measures at any tempo.
func TimingFor(f Family, p Params, xStart, xEnd, bpm float64) Timing {
	beat := Beat(bpm)
	a := math.Abs(p.Scale)
	span := xEnd - xStart
	switch f {
	case Quadratic, Cubic, AbsoluteValue:
		return Timing{
			LoopDuration: beat / a,
			StartOffset:  (p.XShift + 16) * beat,
			DriverRate:   beat * a,
		}
	case Logarithm, SquareRoot:
		return Timing{
			LoopDuration: (16 - p.XShift) * beat,
			StartOffset:  (p.XShift + 16) * beat,
			DriverRate:   (bpm / 60) / (16 - p.XShift),
		}
	case Exponential, Reciprocal:
		return Timing{
			LoopDuration: span * beat,
			DriverRate:   bpm / (60 * PhraseBeats),
		}
	case PowerOfTwo:
		return Timing{
			LoopDuration: span * beat,
			DriverRate:   (bpm / 60) / span,
		}
	case CubeRoot:
		return Timing{
			LoopDuration: PhraseBeats * beat,
			DriverRate:   bpm / (60 * PhraseBeats),
		}
	}
	return Timing{}
}
