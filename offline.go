package graphsynth

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/graphsynth-go/internal/scheduler"
)

// renderBlock is how many frames are rendered between draw flushes.
const renderBlock = 64

// RenderOptions configures an offline render. Zero fields take the live
// session defaults.
type RenderOptions struct {
	Tempo    float64
	LeadTime float64
	Logger   *slog.Logger
}

// Render is the result of an offline render.
type Render struct {
	SampleRate int
	Tempo      float64
	LeadTime   float64
	Samples    []float32 // interleaved stereo
	Voices     []VoiceID
	Notes      []NoteEvent
	Positions  []PositionEvent
}

// Frames returns the number of stereo frames rendered.
func (r *Render) Frames() int { return len(r.Samples) / 2 }

// RenderEquations plays equations for seconds without an audio device. The
// output is deterministic: the same input always renders the same samples,
// notes and positions.
func RenderEquations(equations []Equation, sampleRate int, seconds float64, opts RenderOptions) (*Render, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sampleRate must be positive")
	}
	if opts.Tempo == 0 {
		opts.Tempo = scheduler.DefaultTempo
	}
	if opts.LeadTime <= 0 {
		opts.LeadTime = scheduler.DefaultLeadTime
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Render{SampleRate: sampleRate, Tempo: opts.Tempo, LeadTime: opts.LeadTime}
	sched := scheduler.New(scheduler.Config{
		SampleRate: sampleRate,
		Tempo:      opts.Tempo,
		LeadTime:   opts.LeadTime,
		Logger:     opts.Logger,
		OnPosition: func(p PositionEvent) { r.Positions = append(r.Positions, p) },
		OnNote:     func(n NoteEvent) { r.Notes = append(r.Notes, n) },
	})
	if err := sched.SetTempo(opts.Tempo); err != nil {
		return nil, err
	}
	for i, e := range equations {
		fn, err := e.Function()
		if err != nil {
			return nil, fmt.Errorf("equation %d: %w", i, err)
		}
		r.Voices = append(r.Voices, sched.Submit(fn, e.gain()))
	}

	frames := int(float64(sampleRate) * seconds)
	r.Samples = make([]float32, frames*2)
	sched.SetPlaying(true)
	draw := sched.Transport().Draw()
	for f := 0; f < frames; f += renderBlock {
		end := min(f+renderBlock, frames)
		sched.Process(r.Samples[f*2 : end*2])
		draw.Flush(sched.Transport().Now())
	}
	sched.SetPlaying(false)
	return r, nil
}

// WriteWAV encodes the render as 16-bit stereo PCM.
func (r *Render) WriteWAV(w io.WriteSeeker) error {
	enc := wav.NewEncoder(w, r.SampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: r.SampleRate},
		Data:           make([]int, len(r.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range r.Samples {
		buf.Data[i] = int(clampSample(s) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// WriteWAVFile writes the render to a WAV file at path.
func (r *Render) WriteWAVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteWAV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// midiResolution is ticks per quarter note.
const midiResolution = 960

// WriteMIDI exports the note triggers as a format 1 standard MIDI file: a
// tempo track followed by one track per voice, each on its own channel.
// Note times include the lead time so they line up with the WAV.
func (r *Render) WriteMIDI(w io.Writer) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(midiResolution)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(r.Tempo))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return err
	}

	for i, id := range r.Voices {
		ch := uint8(i % 16)
		type msg struct {
			tick uint32
			on   bool
			key  uint8
		}
		var msgs []msg
		for _, n := range r.Notes {
			if n.Voice != id || n.Note < 0 || n.Note > 127 {
				continue
			}
			start := r.ticks(n.At)
			msgs = append(msgs, msg{start, true, uint8(n.Note)}, msg{max(r.ticks(n.At+n.Duration), start+1), false, uint8(n.Note)})
		}
		// A loop longer than a phrase overlaps the next note.
		slices.SortStableFunc(msgs, func(a, b msg) int {
			if a.tick != b.tick {
				return cmp.Compare(a.tick, b.tick)
			}
			if a.on == b.on {
				return 0
			}
			if a.on {
				return 1
			}
			return -1
		})
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("voice %d", int(id))))
		var last uint32
		for _, m := range msgs {
			delta := m.tick - last
			if m.on {
				tr.Add(delta, midi.NoteOn(ch, m.key, 100))
			} else {
				tr.Add(delta, midi.NoteOff(ch, m.key))
			}
			last = m.tick
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return err
		}
	}
	_, err := s.WriteTo(w)
	return err
}

// WriteMIDIFile writes the note timeline to a MIDI file at path.
func (r *Render) WriteMIDIFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteMIDI(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ticks converts a transport time to MIDI ticks from the start of the
// render.
func (r *Render) ticks(at float64) uint32 {
	beats := (at + r.LeadTime) * r.Tempo / 60
	if beats < 0 {
		return 0
	}
	return uint32(beats*midiResolution + 0.5)
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
