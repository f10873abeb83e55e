package node

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/engine/core"
)

// Shape selects the oscillator waveform.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeTriangle
	ShapeSaw
	ShapeSquare
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeTriangle:
		return "triangle"
	case ShapeSaw:
		return "saw"
	case ShapeSquare:
		return "square"
	default:
		return "sine"
	}
}

// ShapeByName maps a waveform name to its Shape, defaulting to sine.
func ShapeByName(name string) Shape {
	switch name {
	case "triangle":
		return ShapeTriangle
	case "saw":
		return ShapeSaw
	case "square":
		return ShapeSquare
	default:
		return ShapeSine
	}
}

// Oscillator is a phase-accumulating waveform generator. Phase is kept in
// turns in [0, 1) and wrapped every sample, so it cannot drift or lose
// precision over arbitrarily long runtimes.
type Oscillator struct {
	sampleRate float64
	shape      Shape
	freq       float64
	amp        float64

	// freqParam, when >= 0, overrides freq from the parameter store once
	// per block.
	freqParam int

	phase float64
}

// NewOscillator creates a sine oscillator at 440 Hz with unit amplitude.
func NewOscillator(sampleRate float64) (*Oscillator, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("oscillator sample rate must be > 0: %f", sampleRate)
	}
	return &Oscillator{
		sampleRate: sampleRate,
		shape:      ShapeSine,
		freq:       440,
		amp:        1,
		freqParam:  -1,
	}, nil
}

// SetShape selects the waveform.
func (o *Oscillator) SetShape(shape Shape) {
	o.shape = shape
}

// SetFreq sets the oscillator frequency in Hz. Frequencies at or above
// Nyquist are rejected.
func (o *Oscillator) SetFreq(hz float64) error {
	if hz <= 0 || hz >= o.sampleRate/2 || !core.IsFinite(hz) {
		return fmt.Errorf("oscillator frequency must be in (0, %f): %f", o.sampleRate/2, hz)
	}
	o.freq = hz
	return nil
}

// SetAmp sets the output amplitude in [0, 1].
func (o *Oscillator) SetAmp(amp float64) error {
	if amp < 0 || amp > 1 || !core.IsFinite(amp) {
		return fmt.Errorf("oscillator amplitude must be in [0, 1]: %f", amp)
	}
	o.amp = amp
	return nil
}

// BindFreq makes the oscillator read its frequency from the given parameter
// id at each block boundary. Pass a negative id to unbind.
func (o *Oscillator) BindFreq(paramID int) {
	o.freqParam = paramID
}

// Render implements Node. The oscillator is a pure source; inputs are ignored.
func (o *Oscillator) Render(dst []float64, _ [][]float64, params ParamReader) {
	freq := o.freq
	if o.freqParam >= 0 && params != nil {
		if hz := params.Get(o.freqParam); hz > 0 && hz < o.sampleRate/2 {
			freq = hz
		}
	}

	step := freq / o.sampleRate
	phase := o.phase
	for i := range dst {
		dst[i] = o.amp * waveSample(o.shape, phase)
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	o.phase = phase
}

// Reset implements Node, returning the phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// waveSample evaluates one waveform at the given phase in turns [0, 1).
// All shapes are naive (non-bandlimited); antialiasing would be a separate
// node concern.
func waveSample(s Shape, phase float64) float64 {
	switch s {
	case ShapeTriangle:
		return 4*math.Abs(phase-0.5) - 1
	case ShapeSaw:
		return 2*phase - 1
	case ShapeSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
