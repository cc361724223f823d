// Package graphsynth turns plotted equations into sound. Each submitted
// equation becomes a voice whose note, timbre and sweep follow the shape of
// its curve, all locked to one shared musical clock.
package graphsynth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	intaudio "github.com/cbegin/graphsynth-go/internal/audio"
	"github.com/cbegin/graphsynth-go/internal/function"
	"github.com/cbegin/graphsynth-go/internal/scheduler"
)

var ErrClosed = errors.New("graphsynth: session closed")

type (
	VoiceID       = scheduler.VoiceID
	VoiceState    = scheduler.State
	VoiceInfo     = scheduler.VoiceInfo
	PositionEvent = scheduler.Position
	NoteEvent     = scheduler.NoteEvent
)

const (
	StateIdle    = scheduler.StateIdle
	StateArmed   = scheduler.StateArmed
	StateRunning = scheduler.StateRunning
	StateStopped = scheduler.StateStopped
)

// Backend selects the audio output.
type Backend string

const (
	BackendEbiten   Backend = Backend(intaudio.KindEbiten)
	BackendOto      Backend = Backend(intaudio.KindOto)
	BackendHeadless Backend = Backend(intaudio.KindHeadless)
)

// DrawInterval is how often queued display updates are released.
const DrawInterval = time.Second / 60

// Equation is one curve as entered by the user. Family accepts a short name
// ("quadratic", "ln"), a LaTeX base equation ("x^{2}") or an equation type
// ("Square Root"); "Polynomial" also needs Exponent 2 or 3.
type Equation struct {
	Family   string
	Exponent int
	Scale    float64
	XShift   float64
	YShift   float64
	// Gain is the voice's linear level in [0, 10]. Nil selects 1 on submit
	// and keeps the current level on update; Gain(0) submits a muted voice.
	Gain *float64
}

// Gain returns a pointer to v for Equation.Gain.
func Gain(v float64) *float64 { return &v }

// Function resolves the equation against the function library.
func (e Equation) Function() (function.Function, error) {
	fam, err := function.Lookup(e.Family, e.Exponent)
	if err != nil {
		return function.Function{}, err
	}
	return function.Resolve(fam, function.Params{Scale: e.Scale, XShift: e.XShift, YShift: e.YShift})
}

func (e Equation) gain() float64 {
	if e.Gain == nil {
		return 1
	}
	return *e.Gain
}

type Option func(*sessionConfig)

type sessionConfig struct {
	backend    Backend
	tempo      float64
	leadTime   float64
	logger     *slog.Logger
	onPosition func(PositionEvent)
	onNote     func(NoteEvent)
	sampleTap  func([]float32)
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		backend:  BackendEbiten,
		tempo:    scheduler.DefaultTempo,
		leadTime: scheduler.DefaultLeadTime,
		logger:   slog.Default(),
	}
}

func WithBackend(b Backend) Option {
	return func(cfg *sessionConfig) { cfg.backend = b }
}

// WithTempo sets the initial tempo in beats per minute.
func WithTempo(bpm float64) Option {
	return func(cfg *sessionConfig) { cfg.tempo = bpm }
}

// WithLeadTime sets the delay between starting playback and transport
// time zero.
func WithLeadTime(seconds float64) Option {
	return func(cfg *sessionConfig) { cfg.leadTime = seconds }
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *sessionConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithPositionHandler installs a callback for display updates. It runs on
// the session's draw goroutine, except for the clear sent when a voice
// stops, which runs inside the stopping call. It must not call back into
// the Session.
func WithPositionHandler(fn func(PositionEvent)) Option {
	return func(cfg *sessionConfig) { cfg.onPosition = fn }
}

// WithNoteHandler installs a callback for note triggers. It runs on the
// audio thread; keep work brief and non-blocking.
func WithNoteHandler(fn func(NoteEvent)) Option {
	return func(cfg *sessionConfig) { cfg.onNote = fn }
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *sessionConfig) { cfg.sampleTap = tap }
}

// Session is a live set of sonified equations playing through one audio
// backend.
type Session struct {
	mu         sync.Mutex
	sampleRate int
	log        *slog.Logger
	sched      *scheduler.Scheduler
	backend    intaudio.Backend
	onPosition func(PositionEvent)
	closed     bool

	watchMu sync.Mutex
	watchCh chan PositionEvent

	cancel context.CancelFunc
	done   chan struct{}
}

// tapSource runs the scheduler and hands each buffer to a tap.
type tapSource struct {
	sched *scheduler.Scheduler
	tap   func([]float32)
}

func (t *tapSource) Process(dst []float32) {
	t.sched.Process(dst)
	if t.tap != nil {
		t.tap(dst)
	}
}

func NewSession(sampleRate int, opts ...Option) (*Session, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	kind, err := intaudio.ParseKind(string(cfg.backend))
	if err != nil {
		return nil, err
	}

	s := &Session{sampleRate: sampleRate, log: cfg.logger, onPosition: cfg.onPosition}
	s.sched = scheduler.New(scheduler.Config{
		SampleRate: sampleRate,
		Tempo:      cfg.tempo,
		LeadTime:   cfg.leadTime,
		Logger:     cfg.logger,
		OnPosition: s.publish,
		OnNote:     cfg.onNote,
	})
	if err := s.sched.SetTempo(cfg.tempo); err != nil {
		return nil, err
	}
	backend, err := intaudio.Open(kind, sampleRate, &tapSource{sched: s.sched, tap: cfg.sampleTap})
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", kind, err)
	}
	s.backend = backend

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.drawLoop(ctx)
	s.log.Debug("session opened", "sample_rate", sampleRate, "backend", string(kind), "bpm", cfg.tempo)
	return s, nil
}

// drawLoop releases display updates once the audio they belong to is heard.
func (s *Session) drawLoop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(DrawInterval)
	defer ticker.Stop()
	tr := s.sched.Transport()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			heard := tr.Now() - s.backend.Latency().Seconds()
			tr.Draw().Flush(heard)
		}
	}
}

func (s *Session) publish(p PositionEvent) {
	if s.onPosition != nil {
		s.onPosition(p)
	}
	s.watchMu.Lock()
	ch := s.watchCh
	s.watchMu.Unlock()
	if ch != nil {
		select {
		case ch <- p:
		default:
			// Channel full; drop the update
		}
	}
}

// Watch returns a channel that receives every display update: live points
// while a voice sweeps, and OK=false clears at the end of each sweep and
// when a voice stops. The channel is buffered (cap 64); updates that do not
// fit are dropped. Only the most recent Watch channel receives updates.
func (s *Session) Watch() <-chan PositionEvent {
	ch := make(chan PositionEvent, 64)
	s.watchMu.Lock()
	s.watchCh = ch
	s.watchMu.Unlock()
	return ch
}

func (s *Session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// SubmitEquation validates e and adds it as a new voice. Invalid equations
// are rejected and no voice is created.
func (s *Session) SubmitEquation(e Equation) (VoiceID, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	fn, err := e.Function()
	if err != nil {
		s.log.Warn("equation rejected", "family", e.Family, "err", err)
		return 0, err
	}
	id := s.sched.Submit(fn, e.gain())
	if info, err := s.sched.Voice(id); err == nil && !info.WindowOK {
		s.log.Debug("equation has no audible domain", "voice", int(id), "family", fn.Family.String())
	}
	return id, nil
}

// UpdateEquation rebinds a voice to e. An invalid equation leaves the voice
// untouched. A nil Gain keeps the voice's level.
func (s *Session) UpdateEquation(id VoiceID, e Equation) error {
	if err := s.check(); err != nil {
		return err
	}
	fn, err := e.Function()
	if err != nil {
		s.log.Warn("equation update rejected", "voice", int(id), "family", e.Family, "err", err)
		return err
	}
	if err := s.sched.Update(id, fn); err != nil {
		return err
	}
	if e.Gain != nil {
		return s.sched.SetGain(id, *e.Gain)
	}
	return nil
}

func (s *Session) RemoveEquation(id VoiceID) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.sched.Remove(id)
}

// SetGain ramps a voice's level.
func (s *Session) SetGain(id VoiceID, gain float64) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.sched.SetGain(id, gain)
}

// SetTempo changes the tempo; running voices restart against it.
func (s *Session) SetTempo(bpm float64) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.sched.SetTempo(bpm)
}

func (s *Session) Tempo() float64 { return s.sched.Tempo() }

// SetPlaying starts or stops every voice together.
func (s *Session) SetPlaying(on bool) error {
	if err := s.check(); err != nil {
		return err
	}
	s.sched.SetPlaying(on)
	if on {
		s.backend.Play()
	}
	return nil
}

func (s *Session) Playing() bool { return s.sched.Playing() }

// Voice returns a snapshot of one voice.
func (s *Session) Voice(id VoiceID) (VoiceInfo, error) { return s.sched.Voice(id) }

// Voices lists voice IDs in submission order.
func (s *Session) Voices() []VoiceID { return s.sched.Voices() }

// SetEQBand sets a master EQ band (0..4, low to high) to a linear gain.
func (s *Session) SetEQBand(band int, gain float32) { s.sched.SetEQBand(band, gain) }

func (s *Session) EQBand(band int) float32 { return s.sched.EQBand(band) }

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (s *Session) SetMasterVolume(volume float64) { s.sched.SetMasterVolume(volume) }

func (s *Session) MasterVolume() float64 { return s.sched.MasterVolume() }

// PlaybackPosition returns how much audio the listener has heard.
func (s *Session) PlaybackPosition() time.Duration { return s.backend.Position() }

// TransportTime returns the current transport time in seconds. It is
// negative during the lead-in after playback starts.
func (s *Session) TransportTime() float64 { return s.sched.Transport().Now() }

// Close stops playback and releases the audio backend.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	s.sched.SetPlaying(false)
	s.cancel()
	<-s.done
	err := s.backend.Close()
	s.log.Debug("session closed")
	return err
}
