package voice

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-synth/engine/node"
)

// State is the lifecycle position of one voice slot.
type State uint8

const (
	StateFree State = iota
	StateActive
	StateReleasing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateReleasing:
		return "releasing"
	default:
		return "free"
	}
}

// Profile fixes the signal structure shared by all voices in a pool:
// waveform, envelope times, and optional parameter-store bindings for the
// per-voice filter.
type Profile struct {
	Shape   node.Shape
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64

	// CutoffParam and ResonanceParam bind every voice filter to the
	// parameter store. Negative ids leave the filter at its defaults.
	CutoffParam    int
	ResonanceParam int
}

// DefaultProfile returns a plucky saw voice with store-unbound filters.
func DefaultProfile() Profile {
	return Profile{
		Shape:          node.ShapeSaw,
		Attack:         0.003,
		Decay:          0.08,
		Sustain:        0.6,
		Release:        0.15,
		CutoffParam:    -1,
		ResonanceParam: -1,
	}
}

// Voice is one leased polyphonic note: an oscillator through a filter and
// an envelope, plus the note identity used for matching and stealing. A
// voice owns its nodes and scratch buffers exclusively.
type Voice struct {
	osc    *node.Oscillator
	filter *node.SVF
	env    *node.Envelope

	state    State
	note     uint8
	velocity float64
	seq      uint64

	oscBuf []float64
	outBuf []float64
	inView [][]float64
}

func newVoice(cfg core.Config, profile Profile) (*Voice, error) {
	osc, err := node.NewOscillator(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	osc.SetShape(profile.Shape)

	filter, err := node.NewSVF(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	filter.BindCutoff(profile.CutoffParam)
	filter.BindResonance(profile.ResonanceParam)

	env, err := node.NewEnvelope(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	env.SetAttack(profile.Attack)
	env.SetDecay(profile.Decay)
	env.SetRelease(profile.Release)
	if err := env.SetSustain(profile.Sustain); err != nil {
		return nil, fmt.Errorf("voice profile: %w", err)
	}

	return &Voice{
		osc:    osc,
		filter: filter,
		env:    env,
		oscBuf: make([]float64, cfg.BlockSize),
		outBuf: make([]float64, cfg.BlockSize),
		inView: make([][]float64, 1),
	}, nil
}

// State returns the voice lifecycle state.
func (v *Voice) State() State {
	return v.state
}

// Note returns the MIDI note the voice is playing.
func (v *Voice) Note() uint8 {
	return v.note
}

func (v *Voice) trigger(note, velocity uint8, seq uint64) {
	v.reset()
	v.state = StateActive
	v.note = note
	v.velocity = float64(velocity) / 127
	v.seq = seq

	// Out-of-range notes would put the oscillator past Nyquist at low
	// sample rates; the setter rejects those and the voice plays its
	// previous (reset) frequency instead of going silent.
	_ = v.osc.SetFreq(core.MIDINoteHz(int(note)))
	v.env.Gate(true)
}

func (v *Voice) release() {
	v.state = StateReleasing
	v.env.Gate(false)
}

func (v *Voice) reset() {
	v.osc.Reset()
	v.filter.Reset()
	v.env.Reset()
	v.state = StateFree
	v.velocity = 0
	v.seq = 0
}

// renderAdd renders one block of the voice and adds it, velocity-scaled,
// into dst.
func (v *Voice) renderAdd(dst []float64, params node.ParamReader) {
	v.osc.Render(v.oscBuf, nil, params)

	v.inView[0] = v.oscBuf
	v.filter.Render(v.outBuf, v.inView, params)

	v.inView[0] = v.outBuf
	v.env.Render(v.outBuf, v.inView, params)

	vecmath.ScaleBlock(v.outBuf, v.outBuf, v.velocity)
	vecmath.AddBlockInPlace(dst, v.outBuf)
}
