package analyze

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-vecmath"
)

// Spectrum is a streaming magnitude analyzer: rendered blocks feed a ring
// buffer, and every hop a Hann-windowed FFT frame is taken and converted to
// a smoothed dB curve. Sized for debugging and frequency verification, not
// for the render deadline; run it on tapped copies of the output.
type Spectrum struct {
	sampleRate float64
	fftSize    int
	hop        int
	smoothing  float64

	plan       *algofft.Plan[complex128]
	window     []float64
	windowGain float64

	ring      []float64
	write     int
	filled    int
	toHop     int

	input  []complex128
	output []complex128
	re     []float64
	im     []float64
	mag    []float64

	db    []float64
	ready bool
}

// SpectrumOption adjusts analyzer construction.
type SpectrumOption func(*Spectrum)

// WithHop sets the analysis hop in samples. The default is half the FFT
// size.
func WithHop(hop int) SpectrumOption {
	return func(s *Spectrum) {
		if hop > 0 {
			s.hop = hop
		}
	}
}

// WithSmoothing sets the inter-frame dB smoothing factor in [0, 0.95],
// where 0 disables smoothing.
func WithSmoothing(smooth float64) SpectrumOption {
	return func(s *Spectrum) {
		s.smoothing = core.Clamp(smooth, 0, 0.95)
	}
}

// NewSpectrum creates an analyzer with a power-of-two FFT size.
func NewSpectrum(sampleRate float64, fftSize int, opts ...SpectrumOption) (*Spectrum, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("spectrum sample rate must be > 0: %f", sampleRate)
	}
	if fftSize < 16 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("spectrum fft size must be a power of two >= 16: %d", fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum fft plan: %w", err)
	}

	bins := fftSize/2 + 1
	s := &Spectrum{
		sampleRate: sampleRate,
		fftSize:    fftSize,
		hop:        fftSize / 2,
		plan:       plan,
		window:     make([]float64, fftSize),
		ring:       make([]float64, fftSize),
		input:      make([]complex128, fftSize),
		output:     make([]complex128, fftSize),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		db:         make([]float64, bins),
	}

	// Periodic Hann window.
	sum := 0.0
	for i := range s.window {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize))
		s.window[i] = w
		sum += w
	}
	s.windowGain = sum / float64(fftSize)

	for i := range s.db {
		s.db[i] = -130
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bins returns the number of magnitude bins (fftSize/2 + 1).
func (s *Spectrum) Bins() int {
	return len(s.db)
}

// BinHz returns the frequency width of one bin.
func (s *Spectrum) BinHz() float64 {
	return s.sampleRate / float64(s.fftSize)
}

// Ready reports whether at least one full frame has been analyzed.
func (s *Spectrum) Ready() bool {
	return s.ready
}

// Push feeds one block of samples and runs an analysis frame whenever the
// hop boundary is crossed.
func (s *Spectrum) Push(block []float64) {
	for _, x := range block {
		s.ring[s.write] = x
		s.write++
		if s.write >= s.fftSize {
			s.write = 0
		}
		if s.filled < s.fftSize {
			s.filled++
		}

		s.toHop++
		if s.filled < s.fftSize || s.toHop < s.hop {
			continue
		}
		s.toHop = 0
		s.analyzeFrame()
	}
}

func (s *Spectrum) analyzeFrame() {
	const (
		minDB = -130.0
		eps   = 1e-12
	)

	read := s.write
	for i := 0; i < s.fftSize; i++ {
		s.input[i] = complex(s.ring[read]*s.window[i], 0)
		read++
		if read >= s.fftSize {
			read = 0
		}
	}

	if err := s.plan.Forward(s.output, s.input); err != nil {
		return
	}

	for k := range s.re {
		s.re[k] = real(s.output[k])
		s.im[k] = imag(s.output[k])
	}
	vecmath.Magnitude(s.mag, s.re, s.im)

	norm := float64(s.fftSize) * math.Max(s.windowGain, eps)
	last := len(s.db) - 1
	for k := 0; k <= last; k++ {
		mag := s.mag[k] / norm
		if k > 0 && k < last {
			mag *= 2
		}

		db := 20 * math.Log10(math.Max(eps, mag))
		if db < minDB {
			db = minDB
		}

		if !s.ready || s.smoothing == 0 {
			s.db[k] = db
			continue
		}
		s.db[k] = s.smoothing*s.db[k] + (1-s.smoothing)*db
	}
	s.ready = true
}

// MagnitudeDB copies the current dB curve into dst, allocating only when
// dst is too small, and returns it.
func (s *Spectrum) MagnitudeDB(dst []float64) []float64 {
	if cap(dst) < len(s.db) {
		dst = make([]float64, len(s.db))
	}
	dst = dst[:len(s.db)]
	copy(dst, s.db)
	return dst
}

// PeakFrequency returns the frequency of the strongest bin, refined by
// parabolic interpolation over its dB neighbors. It returns 0 before the
// first frame.
func (s *Spectrum) PeakFrequency() float64 {
	if !s.ready {
		return 0
	}

	best := 1
	for k := 2; k < len(s.db)-1; k++ {
		if s.db[k] > s.db[best] {
			best = k
		}
	}

	bin := float64(best)
	d0, d1, d2 := s.db[best-1], s.db[best], s.db[best+1]
	denom := d0 - 2*d1 + d2
	if denom != 0 {
		delta := 0.5 * (d0 - d2) / denom
		if delta > -0.5 && delta < 0.5 {
			bin += delta
		}
	}
	return bin * s.BinHz()
}

// Reset clears the ring buffer and analysis state.
func (s *Spectrum) Reset() {
	s.write = 0
	s.filled = 0
	s.toHop = 0
	s.ready = false
	for i := range s.ring {
		s.ring[i] = 0
	}
	for i := range s.db {
		s.db[i] = -130
	}
}
