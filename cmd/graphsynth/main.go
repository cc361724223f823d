package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/cbegin/graphsynth-go"
	"github.com/cbegin/graphsynth-go/internal/analysis"
)

var defaultEquations = []string{"quadratic:1,-16,0", "ln:1,-8,3"}

// tempoStep is how far +/- move the tempo in interactive mode.
const tempoStep = 10.0

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 48000, "output sample rate")
		tempo       = flag.Float64("tempo", 60, "tempo in beats per minute")
		backendName = flag.String("backend", "ebiten", "audio backend: ebiten|oto|headless")
		seconds     = flag.Float64("seconds", 0, "stop after N seconds (0 = until interrupted; offline renders default to one phrase)")
		wavPath     = flag.String("render", "", "render offline to a WAV file instead of playing")
		midiPath    = flag.String("midi", "", "render offline and write the note timeline as MIDI")
		analyze     = flag.Bool("analyze", false, "render offline and print level and dominant frequency")
		interactive = flag.Bool("interactive", false, "keyboard control: space play/stop, +/- tempo, q quit")
		volume      = flag.Float64("volume", 1.0, "master volume scalar")
		debug       = flag.Bool("debug", false, "debug logging")
		equations   equationList
	)
	flag.Var(&equations, "eq", "equation family:scale,xshift,yshift[,gain] (repeatable)")
	flag.Parse()

	initLogger(*debug)
	if len(equations) == 0 {
		for _, v := range defaultEquations {
			_ = equations.Set(v)
		}
	}

	if *wavPath != "" || *midiPath != "" || *analyze {
		if err := renderOffline(equations, *sampleRate, *tempo, *seconds, *wavPath, *midiPath, *analyze); err != nil {
			log.Fatal(err)
		}
		return
	}

	backend, err := parseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	s, err := graphsynth.NewSession(*sampleRate, graphsynth.WithBackend(backend), graphsynth.WithTempo(*tempo))
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	s.SetMasterVolume(*volume)
	for _, e := range equations {
		id, err := s.SubmitEquation(e)
		if err != nil {
			log.Fatalf("equation %s: %v", e.Family, err)
		}
		if info, err := s.Voice(id); err == nil {
			slog.Info("voice", "id", int(id), "family", info.Function.Family.String(),
				"audible", info.WindowOK, "note", info.Note, "has_note", info.HasNote)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*seconds*float64(time.Second)))
		defer cancel()
	}
	go logPositions(ctx, s.Watch())

	if err := s.SetPlaying(true); err != nil {
		log.Fatal(err)
	}
	if *interactive {
		if err := runInteractive(ctx, s); err != nil {
			log.Fatal(err)
		}
		return
	}
	<-ctx.Done()
}

// initLogger installs a text handler on stderr as the default logger.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}

func parseBackend(name string) (graphsynth.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ebiten", "":
		return graphsynth.BackendEbiten, nil
	case "oto":
		return graphsynth.BackendOto, nil
	case "headless":
		return graphsynth.BackendHeadless, nil
	default:
		return "", fmt.Errorf("invalid -backend %q (expected ebiten|oto|headless)", name)
	}
}

func logPositions(ctx context.Context, ch <-chan graphsynth.PositionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-ch:
			slog.Debug("position", "voice", int(p.Voice), "x", p.X, "y", p.Y, "ok", p.OK, "at", p.At)
		}
	}
}

func renderOffline(eqs []graphsynth.Equation, sampleRate int, tempo, seconds float64, wavPath, midiPath string, analyze bool) error {
	if seconds <= 0 {
		seconds = 32 * 60 / tempo
	}
	r, err := graphsynth.RenderEquations(eqs, sampleRate, seconds, graphsynth.RenderOptions{Tempo: tempo})
	if err != nil {
		return err
	}
	slog.Info("rendered", "seconds", seconds, "frames", r.Frames(), "notes", len(r.Notes), "positions", len(r.Positions))
	if wavPath != "" {
		if err := r.WriteWAVFile(wavPath); err != nil {
			return fmt.Errorf("write %s: %w", wavPath, err)
		}
		fmt.Printf("wrote %s\n", wavPath)
	}
	if midiPath != "" {
		if err := r.WriteMIDIFile(midiPath); err != nil {
			return fmt.Errorf("write %s: %w", midiPath, err)
		}
		fmt.Printf("wrote %s\n", midiPath)
	}
	if analyze {
		mono := analysis.Mono(r.Samples)
		fmt.Printf("rms %.4f\n", analysis.RMS(mono))
		if hz, err := analysis.DominantFrequency(mono, sampleRate); err == nil {
			fmt.Printf("dominant %.1f Hz\n", hz)
		} else {
			fmt.Printf("dominant: %v\n", err)
		}
		for _, n := range r.Notes {
			fmt.Printf("note voice=%d midi=%d at=%.3fs dur=%.3fs\n", int(n.Voice), n.Note, n.At, n.Duration)
		}
	}
	return nil
}

// runInteractive reads single keys from a raw terminal until q, Ctrl-C or
// ctx ends.
func runInteractive(ctx context.Context, s *graphsynth.Session) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("-interactive needs a terminal on stdin")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() { _ = term.Restore(fd, old) }()

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				close(keys)
				return
			}
			keys <- buf[0]
		}
	}()

	fmt.Print("space play/stop, +/- tempo, q quit\r\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			switch k {
			case 'q', 3:
				return nil
			case ' ':
				if err := s.SetPlaying(!s.Playing()); err != nil {
					return err
				}
				fmt.Printf("playing=%v\r\n", s.Playing())
			case '+', '=':
				changeTempo(s, tempoStep)
			case '-', '_':
				changeTempo(s, -tempoStep)
			}
		}
	}
}

func changeTempo(s *graphsynth.Session, delta float64) {
	bpm := s.Tempo() + delta
	if err := s.SetTempo(bpm); err != nil {
		fmt.Printf("tempo: %v\r\n", err)
		return
	}
	fmt.Printf("tempo=%.0f\r\n", bpm)
}
