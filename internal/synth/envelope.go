package synth

type envStage int

const (
	envOff envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// Envelope is a linear ADSR amplitude envelope. Times are in seconds,
// sustain is a level in [0, 1].
type Envelope struct {
	Attack, Decay, Sustain, Release float64

	level float64
	stage envStage
	from  float64 // level at the start of the release
}

// Gate opens (note on) or closes (note off) the envelope. Opening restarts
// the attack from the current level so retriggers do not click.
func (e *Envelope) Gate(on bool) {
	if on {
		e.stage = envAttack
		return
	}
	if e.stage != envOff {
		e.stage = envRelease
		e.from = e.level
	}
}

// Active reports whether the envelope is producing a non-zero level.
func (e *Envelope) Active() bool {
	return e.stage != envOff
}

// Level returns the current level.
func (e *Envelope) Level() float64 {
	return e.level
}

// Next advances one sample and returns the new level.
func (e *Envelope) Next(sampleRate float64) float64 {
	switch e.stage {
	case envAttack:
		e.level += step(1, e.Attack, sampleRate)
		if e.level >= 1 {
			e.level = 1
			e.stage = envDecay
		}
	case envDecay:
		e.level -= step(1-e.Sustain, e.Decay, sampleRate)
		if e.level <= e.Sustain {
			e.level = e.Sustain
			e.stage = envSustain
		}
	case envSustain:
	case envRelease:
		e.level -= step(e.from, e.Release, sampleRate)
		if e.level <= 0.0001 {
			e.level = 0
			e.stage = envOff
		}
	case envOff:
		e.level = 0
	}
	return e.level
}

// Reset silences the envelope immediately.
func (e *Envelope) Reset() {
	e.level = 0
	e.stage = envOff
}

func step(span, seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return span / (seconds * sampleRate)
}
