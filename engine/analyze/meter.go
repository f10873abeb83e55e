package analyze

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-vecmath"
)

// Meter tracks the peak and RMS level of a block stream. The peak holds the
// largest absolute sample seen and decays exponentially between blocks; RMS
// is smoothed with a one-pole lowpass over block energies.
//
// Push is allocation-free; Meter is intended to sit on the render output
// with readings polled from the control context.
type Meter struct {
	peakDecay float64
	rmsCoeff  float64

	peak float64
	rms  float64

	squares []float64
}

// NewMeter creates a meter for the given block size with a 1.5 s peak decay
// and 300 ms RMS integration, both scaled to the sample rate.
func NewMeter(sampleRate float64, blockSize int) (*Meter, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("meter sample rate must be > 0: %f", sampleRate)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("meter block size must be > 0: %d", blockSize)
	}

	blockDur := float64(blockSize) / sampleRate
	return &Meter{
		peakDecay: math.Exp(-blockDur / 1.5),
		rmsCoeff:  1 - math.Exp(-blockDur/0.3),
		squares:   make([]float64, blockSize),
	}, nil
}

// Push feeds one rendered block into the meter. Blocks longer than the
// configured size are truncated.
func (m *Meter) Push(block []float64) {
	if len(block) > len(m.squares) {
		block = block[:len(m.squares)]
	}
	if len(block) == 0 {
		return
	}

	sq := m.squares[:len(block)]
	vecmath.MulBlock(sq, block, block)

	sum := 0.0
	peak := 0.0
	for _, s := range sq {
		sum += s
		if s > peak {
			peak = s
		}
	}
	peak = math.Sqrt(peak)

	m.peak *= m.peakDecay
	if peak > m.peak {
		m.peak = peak
	}

	mean := sum / float64(len(block))
	m.rms += m.rmsCoeff * (mean - m.rms)
}

// Peak returns the decaying peak level as linear amplitude.
func (m *Meter) Peak() float64 {
	return m.peak
}

// RMS returns the smoothed RMS level as linear amplitude.
func (m *Meter) RMS() float64 {
	return math.Sqrt(m.rms)
}

// PeakDB returns the peak level in dBFS, floored at -130 dB.
func (m *Meter) PeakDB() float64 {
	return floorDB(m.peak)
}

// RMSDB returns the RMS level in dBFS, floored at -130 dB.
func (m *Meter) RMSDB() float64 {
	return floorDB(m.RMS())
}

// Reset clears the meter state.
func (m *Meter) Reset() {
	m.peak = 0
	m.rms = 0
}

func floorDB(amp float64) float64 {
	const minDB = -130.0
	db := core.LinearToDB(math.Max(amp, 1e-12))
	if db < minDB {
		return minDB
	}
	return db
}
