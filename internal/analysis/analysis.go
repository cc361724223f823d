// Package analysis inspects rendered audio in the frequency domain.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/ktye/fft"
)

// MaxSize caps the transform length used by DominantFrequency.
const MaxSize = 1 << 16

var ErrTooShort = errors.New("analysis: not enough samples")

// Spectrum is the unnormalized magnitude spectrum of one Hann-windowed
// frame.
type Spectrum struct {
	Magnitudes []float64 // bins 0..size/2
	BinHz      float64
}

// Frequency returns the center frequency of bin i.
func (s Spectrum) Frequency(i int) float64 { return float64(i) * s.BinHz }

// Peak returns the strongest bin above DC, refined by parabolic
// interpolation, and its magnitude.
func (s Spectrum) Peak() (hz, mag float64) {
	best := 1
	for i := 2; i < len(s.Magnitudes); i++ {
		if s.Magnitudes[i] > s.Magnitudes[best] {
			best = i
		}
	}
	mag = s.Magnitudes[best]
	offset := 0.0
	if best+1 < len(s.Magnitudes) {
		a, b, c := s.Magnitudes[best-1], mag, s.Magnitudes[best+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return (float64(best) + offset) * s.BinHz, mag
}

// Analyze transforms the first size samples. size must be a power of two.
func Analyze(samples []float32, sampleRate, size int) (Spectrum, error) {
	if size < 4 || bits.OnesCount(uint(size)) != 1 {
		return Spectrum{}, fmt.Errorf("analysis: size %d is not a power of two", size)
	}
	if len(samples) < size {
		return Spectrum{}, fmt.Errorf("%w: have %d, need %d", ErrTooShort, len(samples), size)
	}
	f, err := fft.New(size)
	if err != nil {
		return Spectrum{}, err
	}
	buf := make([]complex128, size)
	for i := range buf {
		w := (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
		buf[i] = complex(float64(samples[i])*w, 0)
	}
	buf = f.Transform(buf)
	mags := make([]float64, size/2+1)
	for i := range mags {
		mags[i] = math.Hypot(real(buf[i]), imag(buf[i]))
	}
	return Spectrum{Magnitudes: mags, BinHz: float64(sampleRate) / float64(size)}, nil
}

// DominantFrequency estimates the strongest frequency in samples using the
// largest power-of-two frame that fits.
func DominantFrequency(samples []float32, sampleRate int) (float64, error) {
	size := min(largestPow2(len(samples)), MaxSize)
	sp, err := Analyze(samples, sampleRate, size)
	if err != nil {
		return 0, err
	}
	hz, _ := sp.Peak()
	return hz, nil
}

// Mono averages interleaved stereo frames.
func Mono(interleaved []float32) []float32 {
	out := make([]float32, len(interleaved)/2)
	for i := range out {
		out[i] = (interleaved[2*i] + interleaved[2*i+1]) / 2
	}
	return out
}

// RMS is the root-mean-square level of samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func largestPow2(n int) int {
	if n < 4 {
		return 4
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
