// Package scheduler runs sonified equations as voices against one shared
// transport and mixes them to stereo.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cbegin/graphsynth-go/internal/domain"
	"github.com/cbegin/graphsynth-go/internal/effects"
	"github.com/cbegin/graphsynth-go/internal/function"
	"github.com/cbegin/graphsynth-go/internal/transport"
)

var (
	ErrUnknownVoice = errors.New("scheduler: unknown voice")
	ErrInvalidTempo = errors.New("scheduler: tempo must be positive and finite")
)

// Defaults used when Config leaves a field zero.
const (
	DefaultSampleRate = 48000
	DefaultTempo      = 60.0
	DefaultLeadTime   = 0.1
	MaxGain           = 10.0
)

// Config configures a Scheduler.
type Config struct {
	SampleRate int
	Tempo      float64
	LeadTime   float64 // seconds between Start and transport time zero
	Logger     *slog.Logger
	// OnPosition receives display updates. Updates from audio callbacks
	// arrive through the transport's draw channel; clears on stop arrive
	// directly from the control call, with the scheduler locked, so the
	// handler must not call back into the Scheduler.
	OnPosition func(Position)
	// OnNote is called from the audio path whenever a voice triggers a note.
	OnNote func(NoteEvent)
}

// Scheduler owns the transport and every voice. All methods are safe for
// concurrent use; Process is meant to be called from the audio thread.
type Scheduler struct {
	mu      sync.Mutex
	cfg     Config
	log     *slog.Logger
	tr      *transport.Transport
	voices  map[VoiceID]*Voice
	order   []VoiceID
	nextID  VoiceID
	playing bool

	eq     *effects.EQ5Band
	master *effects.Chain
	volume float64
}

// New creates a stopped scheduler.
func New(cfg Config) *Scheduler {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if !validTempo(cfg.Tempo) {
		cfg.Tempo = DefaultTempo
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = DefaultLeadTime
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	eq := effects.NewEQ5Band(cfg.SampleRate)
	return &Scheduler{
		cfg:    cfg,
		log:    cfg.Logger,
		tr:     transport.New(cfg.SampleRate, cfg.Tempo),
		voices: make(map[VoiceID]*Voice),
		eq:     eq,
		master: effects.NewChain(effects.NewMasterCompressor(cfg.SampleRate), eq),
		volume: 1,
	}
}

// Transport returns the shared transport.
func (s *Scheduler) Transport() *transport.Transport { return s.tr }

// SampleRate returns the output sample rate.
func (s *Scheduler) SampleRate() int { return s.cfg.SampleRate }

// Submit adds a voice for fn. It is armed immediately and started if
// playback is on.
func (s *Scheduler) Submit(fn function.Function, gain float64) VoiceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	v := newVoice(id, fn, clampGain(gain), s.cfg.SampleRate, s.log)
	v.onPosition = s.cfg.OnPosition
	v.onNote = s.cfg.OnNote
	s.voices[id] = v
	s.order = append(s.order, id)
	v.Arm(s.tr.BPM())
	if s.playing {
		v.Start(s.tr)
	}
	return id
}

// Update rebinds a voice to a new function. The old generation is fully
// cancelled before the new one is built.
func (s *Scheduler) Update(id VoiceID, fn function.Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.voice(id)
	if err != nil {
		return err
	}
	v.Stop(s.tr)
	v.fn = fn
	v.profile = ProfileFor(fn.Family)
	v.Arm(s.tr.BPM())
	if s.playing {
		v.Start(s.tr)
	}
	return nil
}

// Remove stops a voice and forgets it.
func (s *Scheduler) Remove(id VoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.voice(id)
	if err != nil {
		return err
	}
	v.Stop(s.tr)
	v.state = StateIdle
	delete(s.voices, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetGain ramps a voice's level to gain, clamped to [0, MaxGain].
func (s *Scheduler) SetGain(id VoiceID, gain float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.voice(id)
	if err != nil {
		return err
	}
	v.SetGain(clampGain(gain))
	return nil
}

// SetTempo changes the tempo. Every offset and duration depends on it, so
// while playing the transport is restarted and every voice rebuilt.
func (s *Scheduler) SetTempo(bpm float64) error {
	if !validTempo(bpm) {
		return fmt.Errorf("%w: %v", ErrInvalidTempo, bpm)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if bpm == s.tr.BPM() {
		return nil
	}
	if !s.playing {
		s.tr.SetBPM(bpm)
		s.armAll()
		return nil
	}
	s.stopAll()
	s.tr.SetBPM(bpm)
	s.startAll()
	s.log.Debug("tempo changed while playing", "bpm", bpm)
	return nil
}

// Tempo returns the current tempo.
func (s *Scheduler) Tempo() float64 { return s.tr.BPM() }

// SetPlaying starts or stops playback of every voice.
func (s *Scheduler) SetPlaying(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on == s.playing {
		return
	}
	if on {
		s.startAll()
	} else {
		s.stopAll()
	}
}

// Playing reports whether playback is on.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Scheduler) startAll() {
	s.tr.Start(s.cfg.LeadTime)
	for _, id := range s.order {
		v := s.voices[id]
		v.Arm(s.tr.BPM())
		v.Start(s.tr)
	}
	s.playing = true
	s.log.Debug("playback started", "voices", len(s.order), "bpm", s.tr.BPM())
}

func (s *Scheduler) stopAll() {
	for _, id := range s.order {
		s.voices[id].Stop(s.tr)
	}
	s.tr.Stop()
	s.master.Reset()
	s.armAll()
	s.playing = false
	s.log.Debug("playback stopped")
}

func (s *Scheduler) armAll() {
	for _, id := range s.order {
		s.voices[id].Arm(s.tr.BPM())
	}
}

// State returns a voice's lifecycle state.
func (s *Scheduler) State(id VoiceID) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.voice(id)
	if err != nil {
		return StateIdle, err
	}
	return v.state, nil
}

// Voice returns a snapshot of a voice's derived values: window, timing and
// representative note.
func (s *Scheduler) Voice(id VoiceID) (VoiceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.voice(id)
	if err != nil {
		return VoiceInfo{}, err
	}
	info := VoiceInfo{ID: id, Function: v.fn, State: v.state, Window: v.window, WindowOK: v.windowOK, Timing: v.timing, Gain: v.gain}
	info.Note, info.HasNote = v.note, v.hasNote
	return info, nil
}

// Voices returns the voice IDs in submission order.
func (s *Scheduler) Voices() []VoiceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]VoiceID(nil), s.order...)
}

// Pending returns how many transport callbacks a voice still has queued.
func (s *Scheduler) Pending(id VoiceID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.voice(id)
	if err != nil {
		return 0, err
	}
	return v.Pending(s.tr), nil
}

// SetEQBand sets a master EQ band's linear gain.
func (s *Scheduler) SetEQBand(band int, gain float32) {
	s.eq.SetGain(band, gain)
}

// EQBand returns a master EQ band's linear gain.
func (s *Scheduler) EQBand(band int) float32 {
	return s.eq.Gain(band)
}

// SetMasterVolume scales the mixed output; negative values mute.
func (s *Scheduler) SetMasterVolume(v float64) {
	s.mu.Lock()
	s.volume = math.Max(v, 0)
	s.mu.Unlock()
}

// MasterVolume returns the output scale.
func (s *Scheduler) MasterVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Process renders len(dst)/2 interleaved stereo frames. For each frame the
// transport fires the callbacks due at that frame before the voices render
// it.
func (s *Scheduler) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := len(dst) / 2
	vol := float32(s.volume)
	for f := 0; f < frames; f++ {
		now := s.tr.Now()
		s.tr.Tick()
		var l, r float32
		for _, id := range s.order {
			vl, vr := s.voices[id].Render(now)
			l += vl
			r += vr
		}
		l, r = s.master.Process(l, r)
		dst[f*2] = l * vol
		dst[f*2+1] = r * vol
	}
}

func (s *Scheduler) voice(id VoiceID) (*Voice, error) {
	v, ok := s.voices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVoice, id)
	}
	return v, nil
}

// VoiceInfo is a read-only view of a voice.
type VoiceInfo struct {
	ID       VoiceID
	Function function.Function
	State    State
	Window   domain.Window
	WindowOK bool
	Timing   function.Timing
	Gain     float64
	Note     int
	HasNote  bool
}

func validTempo(bpm float64) bool {
	return bpm > 0 && !math.IsInf(bpm, 0) && !math.IsNaN(bpm)
}

func clampGain(g float64) float64 {
	if math.IsNaN(g) {
		return 1
	}
	return math.Min(math.Max(g, 0), MaxGain)
}
