package node

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/engine/core"
)

// FilterMode selects which state-variable output the filter emits.
type FilterMode int

const (
	ModeLowPass FilterMode = iota
	ModeBandPass
	ModeHighPass
)

// SVF is a Chamberlin state-variable filter. Cutoff and resonance can be
// bound to parameter store ids; bound values are sampled once per block, so
// control writes never cause mid-block discontinuities.
type SVF struct {
	sampleRate float64
	mode       FilterMode
	cutoff     float64
	resonance  float64

	cutoffParam    int
	resonanceParam int

	low  float64
	band float64
}

// NewSVF creates a low-pass filter at 2 kHz with light resonance.
func NewSVF(sampleRate float64) (*SVF, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("svf sample rate must be > 0: %f", sampleRate)
	}
	return &SVF{
		sampleRate:     sampleRate,
		mode:           ModeLowPass,
		cutoff:         2000,
		resonance:      0.7,
		cutoffParam:    -1,
		resonanceParam: -1,
	}, nil
}

// SetMode selects the filter output.
func (f *SVF) SetMode(mode FilterMode) {
	f.mode = mode
}

// SetCutoff sets the cutoff frequency in Hz. The Chamberlin topology is
// stable up to about a sixth of the sample rate; higher values are rejected.
func (f *SVF) SetCutoff(hz float64) error {
	if hz <= 0 || hz > f.sampleRate/6 || !core.IsFinite(hz) {
		return fmt.Errorf("svf cutoff must be in (0, %f]: %f", f.sampleRate/6, hz)
	}
	f.cutoff = hz
	return nil
}

// SetResonance sets the resonance in [0.5, 10], where 0.5 is maximally
// damped.
func (f *SVF) SetResonance(q float64) error {
	if q < 0.5 || q > 10 || !core.IsFinite(q) {
		return fmt.Errorf("svf resonance must be in [0.5, 10]: %f", q)
	}
	f.resonance = q
	return nil
}

// BindCutoff makes the filter read its cutoff from the given parameter id
// at each block boundary. Pass a negative id to unbind.
func (f *SVF) BindCutoff(paramID int) {
	f.cutoffParam = paramID
}

// BindResonance is the parameter-store binding for resonance.
func (f *SVF) BindResonance(paramID int) {
	f.resonanceParam = paramID
}

// Render implements Node, filtering inputs[0] into dst. With no input it
// renders silence while still advancing state decay.
func (f *SVF) Render(dst []float64, inputs [][]float64, params ParamReader) {
	cutoff := f.cutoff
	if f.cutoffParam >= 0 && params != nil {
		if hz := params.Get(f.cutoffParam); hz > 0 && hz <= f.sampleRate/6 {
			cutoff = hz
		}
	}
	q := f.resonance
	if f.resonanceParam >= 0 && params != nil {
		if v := params.Get(f.resonanceParam); v >= 0.5 && v <= 10 {
			q = v
		}
	}

	// Chamberlin coefficients, fixed for the whole block.
	g := 2 * math.Sin(math.Pi*cutoff/f.sampleRate)
	damp := 1 / q

	var in []float64
	if len(inputs) > 0 {
		in = inputs[0]
	}

	low, band := f.low, f.band
	for i := range dst {
		x := 0.0
		if in != nil {
			x = in[i]
		}

		low += g * band
		high := x - low - damp*band
		band += g * high

		low = core.FlushDenormals(low)
		band = core.FlushDenormals(band)

		switch f.mode {
		case ModeBandPass:
			dst[i] = band
		case ModeHighPass:
			dst[i] = high
		default:
			dst[i] = low
		}
	}
	f.low, f.band = low, band
}

// Reset implements Node, clearing the filter history.
func (f *SVF) Reset() {
	f.low = 0
	f.band = 0
}
