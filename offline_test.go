package graphsynth

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/graphsynth-go/internal/analysis"
	"github.com/cbegin/graphsynth-go/internal/function"
)

var kick = Equation{Family: "quadratic", Scale: 1, XShift: -16}

func render(t *testing.T, eqs []Equation, seconds float64) *Render {
	t.Helper()
	r, err := RenderEquations(eqs, 8000, seconds, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderEquations: %v", err)
	}
	return r
}

func TestRenderIsDeterministic(t *testing.T) {
	eqs := []Equation{kick, {Family: "ln", Scale: 1, XShift: -8, YShift: 2}}
	a := render(t, eqs, 1.5)
	b := render(t, eqs, 1.5)
	if len(a.Samples) != 2*12000 {
		t.Fatalf("samples = %d", len(a.Samples))
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a.Samples[i], b.Samples[i])
		}
	}
	if len(a.Positions) != len(b.Positions) || len(a.Notes) != len(b.Notes) {
		t.Fatalf("event counts differ")
	}
}

func TestRenderNotesAndPositions(t *testing.T) {
	r := render(t, []Equation{kick}, 1.5)
	if len(r.Notes) != 1 {
		t.Fatalf("notes = %+v", r.Notes)
	}
	n := r.Notes[0]
	if n.Note != 48 || n.At != 0 || n.Duration != 1 {
		t.Fatalf("note = %+v", n)
	}
	live := 0
	for _, p := range r.Positions {
		if p.OK {
			live++
			if p.At < 0 || p.At >= 1 {
				t.Fatalf("position outside sweep: %+v", p)
			}
		}
	}
	if live < 30 || live > 33 {
		t.Fatalf("live positions = %d, want ~32", live)
	}
	if last := r.Positions[len(r.Positions)-1]; last.OK {
		t.Fatalf("render should end with a clear, got %+v", last)
	}
	if rms := analysis.RMS(analysis.Mono(r.Samples)); rms == 0 {
		t.Fatal("render is silent")
	}
}

func TestRenderRejectsInvalidEquation(t *testing.T) {
	_, err := RenderEquations([]Equation{kick, {Family: "cbrt"}}, 8000, 1, RenderOptions{})
	if !errors.Is(err, function.ErrZeroScale) {
		t.Fatalf("err = %v", err)
	}
	if _, err := RenderEquations(nil, 8000, 1, RenderOptions{Tempo: math.Inf(1)}); err == nil {
		t.Fatal("expected tempo error")
	}
}

func TestWriteWAVFile(t *testing.T) {
	r := render(t, []Equation{kick}, 0.5)
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := r.WriteWAVFile(path); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != 8000 {
		t.Fatalf("format = %+v", buf.Format)
	}
	if len(buf.Data) != len(r.Samples) {
		t.Fatalf("decoded %d samples, rendered %d", len(buf.Data), len(r.Samples))
	}
}

func TestWriteMIDI(t *testing.T) {
	r := render(t, []Equation{kick, {Family: "cubic", Scale: 1, XShift: -16, YShift: 3}}, 1.5)
	var out bytes.Buffer
	if err := r.WriteMIDI(&out); err != nil {
		t.Fatalf("WriteMIDI: %v", err)
	}
	s, err := smf.ReadFrom(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(s.Tracks) != 3 {
		t.Fatalf("tracks = %d, want tempo + 2 voices", len(s.Tracks))
	}
	wantKeys := []uint8{48, 51}
	for i, tr := range s.Tracks[1:] {
		var abs uint32
		ons := 0
		for _, ev := range tr {
			abs += ev.Delta
			var ch, key, vel uint8
			if midi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) && vel > 0 {
				ons++
				if key != wantKeys[i] || ch != uint8(i) {
					t.Fatalf("track %d: note %d on channel %d", i, key, ch)
				}
				// Lead time of 0.1 s at 60 bpm.
				if abs != 96 {
					t.Fatalf("track %d: note at tick %d, want 96", i, abs)
				}
			}
		}
		if ons != 1 {
			t.Fatalf("track %d: %d note-ons", i, ons)
		}
	}
}
