package effects

import "math"

// Compressor is a stereo-linked peak compressor for the master bus. Both
// channels share one envelope so the stereo image does not shift under
// gain reduction.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	attack      float64 // one-pole coefficients
	release     float64
	makeup      float32
	env         float64
}

// NewCompressor creates a compressor.
// thresholdDB: level above which gain is reduced (e.g. -24)
// ratio: input/output slope above the threshold (e.g. 4 for 4:1)
// attack, release: envelope times in seconds
// makeupDB: gain applied after compression
func NewCompressor(sampleRate int, thresholdDB, ratio, attack, release, makeupDB float64) *Compressor {
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		thresholdDB: thresholdDB,
		ratio:       ratio,
		attack:      onePole(attack, sampleRate),
		release:     onePole(release, sampleRate),
		makeup:      float32(dbToGain(makeupDB)),
	}
}

// NewMasterCompressor returns the bus compressor used on the mixed output.
func NewMasterCompressor(sampleRate int) *Compressor {
	return NewCompressor(sampleRate, -24, 4, 0.003, 0.25, 0)
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	peak := math.Max(math.Abs(float64(l)), math.Abs(float64(r)))
	if peak > c.env {
		c.env += c.attack * (peak - c.env)
	} else {
		c.env += c.release * (peak - c.env)
	}
	g := float32(c.gain()) * c.makeup
	return l * g, r * g
}

// GainReductionDB returns the current reduction as a non-positive dB value.
func (c *Compressor) GainReductionDB() float64 {
	return 20 * math.Log10(c.gain())
}

func (c *Compressor) gain() float64 {
	if c.env <= 0 {
		return 1
	}
	levelDB := 20 * math.Log10(c.env)
	over := levelDB - c.thresholdDB
	if over <= 0 {
		return 1
	}
	return dbToGain(over/c.ratio - over)
}

func (c *Compressor) Reset() {
	c.env = 0
}

func onePole(seconds float64, sampleRate int) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(seconds*float64(sampleRate)))
}

func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
