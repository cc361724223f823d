package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer plays through an oto context directly, without ebiten.
type OtoPlayer struct {
	sampleRate int
	player     *oto.Player
	reader     *StreamReader
}

var (
	otoOnce       sync.Once
	otoContext    *oto.Context
	otoContextErr error
	otoRate       int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   50 * time.Millisecond,
		})
		if err != nil {
			otoContextErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoRate, sampleRate)
	}
	return otoContext, nil
}

func NewOtoPlayer(sampleRate int, source SampleSource) (*OtoPlayer, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	return &OtoPlayer{sampleRate: sampleRate, player: ctx.NewPlayer(reader), reader: reader}, nil
}

func (p *OtoPlayer) Play()  { p.player.Play() }
func (p *OtoPlayer) Pause() { p.player.Pause() }

// Position subtracts what oto still holds in its buffer from what it has
// pulled.
func (p *OtoPlayer) Position() time.Duration {
	heard := p.reader.Frames() - int64(p.player.BufferedSize()/bytesPerFrame)
	return framesToDuration(heard, p.sampleRate)
}

func (p *OtoPlayer) Latency() time.Duration {
	return framesToDuration(int64(p.player.BufferedSize()/bytesPerFrame), p.sampleRate)
}

func (p *OtoPlayer) Close() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
