package effects

import (
	"math"
	"sync/atomic"
)

// EQBands is the number of bands in EQ5Band.
const EQBands = 5

// EQCrossovers are the split points between adjacent EQ5Band bands, in Hz.
var EQCrossovers = [EQBands - 1]float64{200, 800, 2500, 8000}

// EQ5Band is a master equalizer. The signal is peeled into five bands by
// cascaded one-pole low-passes, each band is scaled, and the bands are
// summed back. Gains are stored as float32 bit patterns so the control side
// can change them while the audio side reads them without a lock.
type EQ5Band struct {
	gains  [EQBands]atomic.Uint32 // 1.0 = unity
	alphas [EQBands - 1]float32
	state  [2][EQBands - 1]float32 // per channel, per crossover
}

// NewEQ5Band creates an EQ with every band at unity.
func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	dt := 1 / float64(sampleRate)
	for i, hz := range EQCrossovers {
		rc := 1 / (2 * math.Pi * hz)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1))
	}
	return eq
}

// SetGain sets a band's linear gain. Out-of-range bands are ignored and
// negative gains clamp to silence.
func (eq *EQ5Band) SetGain(band int, gain float32) {
	if band < 0 || band >= EQBands {
		return
	}
	eq.gains[band].Store(math.Float32bits(max(gain, 0)))
}

// Gain returns a band's linear gain; 1 for out-of-range bands.
func (eq *EQ5Band) Gain(band int) float32 {
	if band < 0 || band >= EQBands {
		return 1
	}
	return math.Float32frombits(eq.gains[band].Load())
}

func (eq *EQ5Band) Process(l, r float32) (float32, float32) {
	return eq.channel(0, l), eq.channel(1, r)
}

func (eq *EQ5Band) channel(ch int, in float32) float32 {
	st := &eq.state[ch]
	rest := in
	var out float32
	for i := range eq.alphas {
		st[i] += eq.alphas[i] * (rest - st[i])
		out += st[i] * math.Float32frombits(eq.gains[i].Load())
		rest -= st[i]
	}
	return out + rest*math.Float32frombits(eq.gains[EQBands-1].Load())
}

func (eq *EQ5Band) Reset() {
	eq.state = [2][EQBands - 1]float32{}
}
