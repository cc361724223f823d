package scheduler

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cbegin/graphsynth-go/internal/domain"
	"github.com/cbegin/graphsynth-go/internal/effects"
	"github.com/cbegin/graphsynth-go/internal/function"
	"github.com/cbegin/graphsynth-go/internal/lfo"
	"github.com/cbegin/graphsynth-go/internal/mapper"
	"github.com/cbegin/graphsynth-go/internal/synth"
	"github.com/cbegin/graphsynth-go/internal/transport"
)

// AnimationInterval is the spacing of position updates during a sweep.
const AnimationInterval = 1.0 / 32

// VoiceID identifies a voice within a Scheduler.
type VoiceID int

// State is a voice's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Position is the live point a voice reports for display. OK is false when
// the voice has nothing to show (between sweeps, or after it stopped).
type Position struct {
	Voice VoiceID
	X, Y  float64
	OK    bool
	At    float64 // transport time the point belongs to
}

// NoteEvent describes one triggered note.
type NoteEvent struct {
	Voice     VoiceID
	Note      int // MIDI note number
	Frequency float64
	At        float64 // transport time of the attack
	Duration  float64
}

// Voice is one sonified equation and the audio resources it owns while
// running.
type Voice struct {
	id         VoiceID
	fn         function.Function
	profile    Profile
	gain       float64
	sampleRate int
	log        *slog.Logger
	onPosition func(Position)
	onNote     func(NoteEvent)

	state    State
	window   domain.Window
	windowOK bool
	timing   function.Timing
	phrase   float64
	note     int
	hasNote  bool

	// Built by Start, released by Stop.
	inst    synth.Instrument
	mapper  *mapper.Mapper
	mod     *ModulationChain
	fx      *effects.Chain
	level   *effects.Gain
	handles []transport.Handle
	// gen changes on every Stop so draw callbacks queued by an earlier
	// generation drop their update.
	gen atomic.Uint64
}

func newVoice(id VoiceID, fn function.Function, gain float64, sampleRate int, log *slog.Logger) *Voice {
	return &Voice{
		id:         id,
		fn:         fn,
		profile:    ProfileFor(fn.Family),
		gain:       gain,
		sampleRate: sampleRate,
		log:        log.With("voice", int(id), "family", fn.Family.String()),
	}
}

// ID returns the voice's identifier.
func (v *Voice) ID() VoiceID { return v.id }

// State returns the lifecycle state.
func (v *Voice) State() State { return v.state }

// Function returns the bound function.
func (v *Voice) Function() function.Function { return v.fn }

// Window returns the domain window and whether it is usable.
func (v *Voice) Window() (domain.Window, bool) { return v.window, v.windowOK }

// Timing returns the schedule computed by the last Arm.
func (v *Voice) Timing() function.Timing { return v.timing }

// Note returns the representative MIDI note, if the critical y has one.
func (v *Voice) Note() (int, bool) { return v.note, v.hasNote }

// Audible reports whether the voice has a live audio graph.
func (v *Voice) Audible() bool { return v.state == StateRunning }

// Arm computes the domain window and timing for tempo bpm. No audio
// resources are created.
func (v *Voice) Arm(bpm float64) {
	v.window, v.windowOK = domain.Compute(v.fn.Family, v.fn.Params)
	v.timing = v.fn.Timing(v.window.Start, v.window.End, bpm)
	v.phrase = function.Phrase(bpm)
	v.note, v.hasNote = domain.Note(domain.Critical(v.fn.Params).Y)
	v.state = StateArmed
	v.log.Debug("voice armed", "window_ok", v.windowOK, "start", v.window.Start, "end", v.window.End,
		"loop", v.timing.LoopDuration, "offset", v.timing.StartOffset, "rate", v.timing.DriverRate)
}

// Start builds the audio graph and schedules the voice against tr. Any
// previous generation is torn down first. A voice whose window or timing is
// unusable stays armed and silent.
func (v *Voice) Start(tr *transport.Transport) {
	v.Stop(tr)
	v.state = StateArmed
	if !v.windowOK || !v.timing.Valid() {
		v.log.Debug("voice silent: degenerate domain")
		return
	}

	v.inst = synth.New(v.profile.Instrument, v.sampleRate)
	v.mapper = mapper.New(v.fn, v.window, v.profile.Mapping)
	driver := lfo.New(v.timing.DriverRate, v.profile.PhaseDeg, v.profile.Waveform)
	shaper := mapper.NewTable(v.mapper.Map, mapper.DefaultTableSize)

	var target Param
	var shape effects.Effector
	switch v.profile.Target {
	case TargetPitch:
		target = ParamFunc(v.inst.SetFrequency)
		shape = effects.NewLowPass(v.sampleRate, effects.DefaultCutoff, effects.DefaultQ, 24)
	case TargetRing:
		ring := effects.NewRingMod(v.sampleRate, mapper.NoRing)
		target, shape = ring, ring
	default:
		lp := effects.NewLowPass(v.sampleRate, effects.DefaultCutoff, effects.DefaultQ, 24)
		target, shape = lp, lp
	}
	v.mod = NewModulationChain(driver, shaper, target, v.timing.StartOffset)
	v.level = effects.NewGain(v.sampleRate, v.gain, effects.DefaultGainRamp)
	v.fx = effects.NewChain(shape, effects.NewReverb(v.sampleRate, effects.DefaultReverbDecay, 0.3), v.level)

	v.track(tr.ScheduleRepeat(func(at float64) { v.phraseStart(tr, at) },
		v.phrase, v.timing.StartOffset, 0))
	v.state = StateRunning
	v.log.Debug("voice started", "note", v.note, "has_note", v.hasNote)
}

// phraseStart triggers the note and the animation sweep for one phrase.
func (v *Voice) phraseStart(tr *transport.Transport, at float64) {
	v.prune(tr)
	// Each sweep starts from the driver's trough at the left of the window.
	v.mod.Restart(at)
	dur := v.timing.LoopDuration
	if v.hasNote {
		inst := v.inst
		freq := domain.NoteFrequency(v.note)
		inst.NoteOn(freq)
		v.track(tr.ScheduleOnce(func(float64) { inst.NoteOff() }, at+dur))
		if v.onNote != nil {
			v.onNote(NoteEvent{Voice: v.id, Note: v.note, Frequency: freq, At: at, Duration: dur})
		}
	}
	draw := tr.Draw()
	gen := v.gen.Load()
	m, mod := v.mapper, v.mod
	v.track(tr.ScheduleRepeat(func(t float64) {
		x, y, ok := m.Point(mod.Drive(t))
		p := Position{Voice: v.id, X: x, Y: y, OK: ok, At: t}
		draw.Schedule(func() { v.publishGen(gen, p) }, t)
	}, AnimationInterval, at, dur))
	v.track(tr.ScheduleOnce(func(end float64) {
		draw.Schedule(func() { v.publishGen(gen, Position{Voice: v.id, At: end}) }, end)
	}, at+dur))
}

// Stop cancels every callback the voice scheduled, releases its audio graph
// and clears its displayed position. On a voice that is not running it only
// cancels leftover callbacks.
func (v *Voice) Stop(tr *transport.Transport) {
	for _, h := range v.handles {
		tr.Cancel(h)
	}
	v.handles = v.handles[:0]
	if v.state != StateRunning {
		return
	}
	v.state = StateStopped
	v.gen.Add(1)
	v.inst, v.mapper, v.mod, v.fx, v.level = nil, nil, nil, nil, nil
	v.publish(Position{Voice: v.id})
	v.state = StateIdle
	v.log.Debug("voice stopped")
}

// SetGain ramps the output level to gain.
func (v *Voice) SetGain(gain float64) {
	v.gain = gain
	if v.level != nil {
		v.level.SetTarget(gain)
	}
}

// Render produces one stereo frame for transport time now.
func (v *Voice) Render(now float64) (float32, float32) {
	if v.state != StateRunning {
		return 0, 0
	}
	v.mod.Apply(now)
	s := v.inst.Render()
	return v.fx.Process(s, s)
}

// Pending counts the voice's callbacks that can still fire on tr.
func (v *Voice) Pending(tr *transport.Transport) int {
	n := 0
	for _, h := range v.handles {
		if tr.IsPending(h) {
			n++
		}
	}
	return n
}

func (v *Voice) track(h transport.Handle) {
	v.handles = append(v.handles, h)
}

// prune forgets handles that have already fired or finished.
func (v *Voice) prune(tr *transport.Transport) {
	live := v.handles[:0]
	for _, h := range v.handles {
		if tr.IsPending(h) {
			live = append(live, h)
		}
	}
	v.handles = live
}

func (v *Voice) publishGen(gen uint64, p Position) {
	if v.gen.Load() == gen {
		v.publish(p)
	}
}

func (v *Voice) publish(p Position) {
	if v.onPosition != nil {
		v.onPosition(p)
	}
}
